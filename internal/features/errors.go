package features

import "fmt"

// MissingRecordError reports an identifier with no stored record.
type MissingRecordError struct {
	ID string
}

func (e *MissingRecordError) Error() string {
	return fmt.Sprintf("record %s not found", e.ID)
}

// ErrorKind classifies the error for response mapping.
func (e *MissingRecordError) ErrorKind() string { return "not_found" }

// SchemaError reports a comparison row lacking a required column.
type SchemaError struct {
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing column %s", e.Column)
}

// ErrorKind classifies the error for response mapping.
func (e *SchemaError) ErrorKind() string { return "schema" }
