package padding

import (
	"errors"
	"fmt"
)

// ErrInvalidPattern is matched by every pattern compilation failure.
var ErrInvalidPattern = errors.New("invalid pattern")

// PatternCompileError reports a configured pattern that is not a valid
// regular expression.
type PatternCompileError struct {
	Pattern string // Pattern source as configured
	Err     error  // Underlying syntax error
}

func (e *PatternCompileError) Error() string {
	return fmt.Sprintf("%s %q: %v", ErrInvalidPattern, e.Pattern, e.Err)
}

func (e *PatternCompileError) Unwrap() []error {
	return []error{ErrInvalidPattern, e.Err}
}
