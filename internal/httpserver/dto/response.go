package dto

import (
	"encoding/json"
	"errors"
)

// Response is the envelope around every bookmark API reply. It holds either
// an ordered list of results or an error message, never both. Build it with
// OK or Fail.
type Response[T any] struct {
	data   []T
	err    string
	failed bool
}

// OK wraps a successful result. A nil slice is sent as [].
func OK[T any](data []T) Response[T] {
	if data == nil {
		data = []T{}
	}
	return Response[T]{data: data}
}

// Fail wraps an error message.
func Fail[T any](msg string) Response[T] {
	if msg == "" {
		msg = "unknown error"
	}
	return Response[T]{err: msg, failed: true}
}

// Data returns the results of a successful response.
func (r Response[T]) Data() []T { return r.data }

// Err returns the message of a failed response.
func (r Response[T]) Err() string { return r.err }

// Failed reports whether r carries an error.
func (r Response[T]) Failed() bool { return r.failed }

type envelope[T any] struct {
	Data  *[]T    `json:"data,omitempty"`
	Error *string `json:"error,omitempty"`
}

// MarshalJSON emits exactly one of {"data": [...]} or {"error": "..."}.
func (r Response[T]) MarshalJSON() ([]byte, error) {
	if r.failed {
		return json.Marshal(envelope[T]{Error: &r.err})
	}
	data := r.data
	if data == nil {
		data = []T{}
	}
	return json.Marshal(envelope[T]{Data: &data})
}

// UnmarshalJSON accepts an envelope holding exactly one of data or error.
func (r *Response[T]) UnmarshalJSON(b []byte) error {
	var env envelope[T]
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}
	switch {
	case env.Data != nil && env.Error != nil:
		return errors.New("envelope has both data and error")
	case env.Error != nil:
		*r = Fail[T](*env.Error)
	case env.Data != nil:
		*r = OK(*env.Data)
	default:
		return errors.New("envelope has neither data nor error")
	}
	return nil
}
