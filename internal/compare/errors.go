package compare

import "fmt"

// SliceReconstructionError means a mapping entry references a slice or source
// that cannot be rebuilt from the current data, e.g. an activity set removed
// from the method since the mapping file was curated. It is recorded per row
// and never aborts the batch.
type SliceReconstructionError struct {
	Slice  string
	Source string
	Reason string
	Err    error
}

func (e *SliceReconstructionError) Error() string {
	return fmt.Sprintf("compare: pair (%s, %s): %s", e.Slice, e.Source, e.Reason)
}

func (e *SliceReconstructionError) Unwrap() error { return e.Err }
