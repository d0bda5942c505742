package service

// Validation failure reasons.
const (
	ReasonMissingField = "missing field"
	ReasonInvalidPrice = "invalid price"
	ReasonNoSelection  = "no selection"
	ReasonNotFound     = "not found"
)

// ValidationError reports user input that failed a precondition.
// No state was changed.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}
