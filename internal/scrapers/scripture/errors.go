package scripture

import (
	"errors"
	"fmt"
	"scripture-scraper/lib/htmlutil"

	"golang.org/x/net/html"
)

var (
	ErrUnrecognizedAnnotation = errors.New("unrecognized annotation")
	ErrMalformedAnnotation    = errors.New("malformed annotation")
	ErrUnknownMarkup          = errors.New("unknown markup")
	ErrUnknownStructure       = errors.New("unknown structure")
	ErrTableSpanConflict      = errors.New("table span conflict")
	ErrFetchFailure           = errors.New("fetch failure")
	ErrUnexpectedNodeShape    = errors.New("unexpected node shape")
	ErrInvalidAddress         = errors.New("invalid page address")
)

const fragmentLimit = 300

// FragmentError carries the markup that could not be handled, so a new
// document variant can be diagnosed from the error alone.
type FragmentError struct {
	Err      error
	Detail   string
	Fragment string
}

func (e *FragmentError) Error() string {
	if e.Fragment == "" {
		return fmt.Sprintf("%s: %s", e.Err, e.Detail)
	}
	return fmt.Sprintf("%s: %s: %s", e.Err, e.Detail, e.Fragment)
}

func (e *FragmentError) Unwrap() error {
	return e.Err
}

func fragmentError(err error, node *html.Node, format string, args ...any) error {
	fragment := ""
	if node != nil {
		fragment = htmlutil.Render(node, fragmentLimit)
	}
	return &FragmentError{
		Err:      err,
		Detail:   fmt.Sprintf(format, args...),
		Fragment: fragment,
	}
}
