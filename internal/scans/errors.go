package scans

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrNotRetryable = errors.New("scan is not in a retryable state")
)
