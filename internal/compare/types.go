// Package compare runs batch numeric comparisons between FBS slices and
// registry sources, driven solely by the curated mapping file.
package compare

// Vector holds amounts keyed by sector code.
type Vector map[string]float64

// Total sums all sector amounts.
func (v Vector) Total() float64 {
	var total float64
	for _, amount := range v {
		total += amount
	}
	return total
}

// Matrix holds sector vectors keyed by gas.
type Matrix map[string]Vector

// GasTotal sums one gas's row; zero when the gas is absent.
func (m Matrix) GasTotal(gas string) float64 {
	return m[gas].Total()
}

// Add accumulates an amount into the matrix.
func (m Matrix) Add(gas, sector string, amount float64) {
	row, ok := m[gas]
	if !ok {
		row = Vector{}
		m[gas] = row
	}
	row[sector] += amount
}
