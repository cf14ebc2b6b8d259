// Package nullable distinguishes a JSON field that was omitted from one that
// was sent as null.
package nullable

import (
	"bytes"
	"encoding/json"
)

// Field is a request field with three states: absent (Present false), null
// (Present true, Valid false) and a value (Present and Valid true).
//
// encoding/json only calls UnmarshalJSON for keys that appear in the payload,
// so a zero Field after decoding means the key was omitted.
type Field[T any] struct {
	Present bool
	Valid   bool
	Value   T
}

// Of returns a present, non-null field.
func Of[T any](v T) Field[T] {
	return Field[T]{Present: true, Valid: true, Value: v}
}

// Null returns a present field explicitly set to null.
func Null[T any]() Field[T] {
	return Field[T]{Present: true}
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Present = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.Valid = false
		var zero T
		f.Value = zero
		return nil
	}
	if err := json.Unmarshal(data, &f.Value); err != nil {
		return err
	}
	f.Valid = true
	return nil
}

// MarshalJSON implements json.Marshaler. Absent and null both encode as null.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Ptr returns nil for an absent or null field and a pointer to the value
// otherwise.
func (f Field[T]) Ptr() *T {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}
