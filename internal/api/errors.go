package api

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse matches any MalformedResponseError via errors.Is.
var ErrMalformedResponse = errors.New("malformed model response")

// MalformedResponseError indicates the model returned a structure that
// could not be parsed even after stripping code-fence wrapping. It carries
// a truncated excerpt of the raw response for diagnostics.
type MalformedResponseError struct {
	Call    string
	Excerpt string
	Err     error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s returned unparsable output: %v (raw: %s)", e.Call, e.Err, e.Excerpt)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

func (e *MalformedResponseError) Is(target error) bool {
	return target == ErrMalformedResponse
}

// excerptLen bounds the raw response excerpt carried in errors.
const excerptLen = 500
