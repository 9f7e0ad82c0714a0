package tableio

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel kinds for table I/O errors.
var (
	ErrMissingColumns = errors.New("missing required columns")
	ErrUnknownFormat  = errors.New("unknown output format")
	ErrNoOutputPath   = errors.New("output path is empty")
)

// SchemaError reports a file whose header lacks required columns.
type SchemaError struct {
	File    string
	Missing []string
	Present []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: %v: [%s] (present: [%s])",
		e.File, ErrMissingColumns, strings.Join(e.Missing, ", "), strings.Join(e.Present, ", "))
}

// Is reports whether target is ErrMissingColumns.
func (e *SchemaError) Is(target error) bool { return target == ErrMissingColumns }
