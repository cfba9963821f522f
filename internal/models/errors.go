package models

import "fmt"

// InvalidInputError reports malformed input to a transformation, such as
// unsorted or duplicated price history.
type InvalidInputError struct {
	Index  int
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("invalid input: %s", e.Reason)
	}
	return fmt.Sprintf("invalid input at row %d: %s", e.Index, e.Reason)
}

// DateParseError reports a scraped news date that does not match the
// expected layout. It aborts the whole scoring call.
type DateParseError struct {
	Row   int
	Value string
	Err   error
}

func (e *DateParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("news row %d: no date for %q", e.Row, e.Value)
	}
	return fmt.Sprintf("news row %d: cannot parse date %q: %v", e.Row, e.Value, e.Err)
}

func (e *DateParseError) Unwrap() error {
	return e.Err
}

// ConfigurationError reports an unusable request parameter, detected
// before any data is fetched.
type ConfigurationError struct {
	Field string
	Value string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: unrecognised %s %q", e.Field, e.Value)
}
