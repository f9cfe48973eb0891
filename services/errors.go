package services

import "errors"

var (
	// ErrSubmissionInProgress is returned while an earlier submission with the
	// same idempotency key has not finished.
	ErrSubmissionInProgress = errors.New("submission_in_progress")

	ErrTourNotFound = errors.New("virtual tour not found")
)
