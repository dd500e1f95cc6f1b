package errors

import "errors"

var (
	ErrTaskNotFound  = errors.New("task not found")
	ErrTaskExists    = errors.New("task already exists")
	ErrTaskFinalized = errors.New("task already in a terminal status")
	ErrShuttingDown  = errors.New("service is shutting down")
)
