package services

// Custom errors
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "Validation error" }

type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

type UnauthorizedError struct{ Message string }

func (e *UnauthorizedError) Error() string { return e.Message }

// NotConfiguredError means an optional integration has no credentials.
type NotConfiguredError struct{ Message string }

func (e *NotConfiguredError) Error() string { return e.Message }
