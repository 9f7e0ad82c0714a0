package interval

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel kinds for interval errors.
var (
	ErrEmptySizes       = errors.New("interval sizes are empty")
	ErrNonPositiveSize  = errors.New("interval sizes must be positive integers")
	ErrNoFiles          = errors.New("no input files matched")
	ErrCountMismatch    = errors.New("file count does not match interval sizes")
	ErrMissingDateToken = errors.New("filename has no 6-digit date token")
)

// MismatchError reports a discovery count that does not equal the sum of the
// requested interval sizes.
type MismatchError struct {
	Sizes    []int
	Expected int
	Found    int
	Files    []string // matched file names in chronological order
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("expected exactly %d files for intervals %v, but found %d; matched files (sorted): [%s]",
		e.Expected, e.Sizes, e.Found, strings.Join(e.Files, ", "))
}

// Is reports whether target is ErrCountMismatch.
func (e *MismatchError) Is(target error) bool { return target == ErrCountMismatch }
