package summary

import "fmt"

// SchemaValidationError indicates model output that, after curation,
// does not conform to the PRSummary schema. The caller may choose to
// re-prompt; the core does not retry.
type SchemaValidationError struct {
	Err error
	Raw string
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("model output failed schema validation: %v", e.Err)
}

func (e *SchemaValidationError) Unwrap() error {
	return e.Err
}

// InvalidWindowError indicates a weekly roll-up start date that is
// unparseable or not a Sunday/Monday.
type InvalidWindowError struct {
	Value  string
	Reason string
}

func (e *InvalidWindowError) Error() string {
	return fmt.Sprintf("invalid week window %q: %s", e.Value, e.Reason)
}
