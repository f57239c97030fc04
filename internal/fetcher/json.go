package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"unicode/utf8"
)

var (
	errInvalidUTF8  = errors.New("body is not valid UTF-8")
	errTrailingData = errors.New("trailing data after JSON value")
)

// DecodeJSON decodes data into a T. Any failure, including invalid UTF-8 or
// trailing garbage, is returned as an ErrMalformedPayload RequestError.
func DecodeJSON[T any](url string, data []byte) (T, error) {
	var out T
	if !utf8.Valid(data) {
		return out, Malformed(url, errInvalidUTF8)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return out, Malformed(url, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return out, Malformed(url, errTrailingData)
	}
	return out, nil
}

// GetJSON fetches url with f and decodes the body into a T.
func GetJSON[T any](ctx context.Context, f Fetcher, url string) (T, error) {
	data, err := f.Get(ctx, url)
	if err != nil {
		var zero T
		return zero, err
	}
	return DecodeJSON[T](url, data)
}
