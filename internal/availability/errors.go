package availability

// ValidationError rejects a malformed request before any state is touched.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationErrorf(msg string) *ValidationError {
	return &ValidationError{Msg: msg}
}
