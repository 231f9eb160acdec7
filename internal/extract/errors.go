package extract

import "fmt"

// UnsupportedFormatError is returned when neither the media type nor the file
// extension maps to a known format.
type UnsupportedFormatError struct {
	Name     string
	MIMEType string
}

func (e *UnsupportedFormatError) Error() string {
	if e.MIMEType != "" {
		return fmt.Sprintf("unsupported format: %s (%s)", e.Name, e.MIMEType)
	}
	return fmt.Sprintf("unsupported format: %s", e.Name)
}

// ExtractionError wraps a format-specific decode failure.
type ExtractionError struct {
	Format Format
	Name   string
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s from %s: %v", e.Format, e.Name, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
