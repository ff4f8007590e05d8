package service

import "fmt"

// CandidateSelectionError is fatal for a comparison: nothing is streamed.
type CandidateSelectionError struct {
	Err error
}

func (e *CandidateSelectionError) Error() string {
	return fmt.Sprintf("candidate selection failed: %v", e.Err)
}

func (e *CandidateSelectionError) Unwrap() error { return e.Err }

// BatchScoringError covers one batch only; the stream goes on. Batch is the
// 1-based batch number within a stream, 0 for a standalone call.
type BatchScoringError struct {
	Batch int
	Err   error
}

func (e *BatchScoringError) Error() string {
	return fmt.Sprintf("batch %d scoring failed: %v", e.Batch, e.Err)
}

func (e *BatchScoringError) Unwrap() error { return e.Err }

type NotFoundError struct {
	SetNum string
	Err    error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("set %q not found", e.SetNum)
}

func (e *NotFoundError) Unwrap() error { return e.Err }
