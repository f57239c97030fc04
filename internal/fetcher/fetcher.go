// Package fetcher retrieves JSON documents from the remote statistics source.
package fetcher

import (
	"context"
	"errors"
	"fmt"
)

// Fetcher retrieves the raw body of a remote document.
type Fetcher interface {
	// Get fetches url and returns the full response body. Failures are
	// reported as *RequestError whose Kind is ErrUnreachable or
	// ErrMalformedPayload.
	Get(ctx context.Context, url string) ([]byte, error)
}

var (
	// ErrUnreachable covers transport failures, timeouts and non-success statuses.
	ErrUnreachable = errors.New("source unreachable")

	// ErrMalformedPayload covers bodies that are not valid UTF-8 JSON of the expected shape.
	ErrMalformedPayload = errors.New("malformed payload")
)

// RequestError records which URL failed and how.
type RequestError struct {
	URL  string
	Kind error
	Err  error
}

func (e *RequestError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%v: %s", e.Kind, e.URL)
	}
	return fmt.Sprintf("%v: %s: %v", e.Kind, e.URL, e.Err)
}

func (e *RequestError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Unreachable builds a RequestError of kind ErrUnreachable.
func Unreachable(url string, err error) *RequestError {
	return &RequestError{URL: url, Kind: ErrUnreachable, Err: err}
}

// Malformed builds a RequestError of kind ErrMalformedPayload.
func Malformed(url string, err error) *RequestError {
	return &RequestError{URL: url, Kind: ErrMalformedPayload, Err: err}
}

// URLOf returns the URL carried by a RequestError anywhere in err's chain.
func URLOf(err error) string {
	var re *RequestError
	if errors.As(err, &re) {
		return re.URL
	}
	return ""
}
