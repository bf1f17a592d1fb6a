package sqlbuilder

import "encoding/json"

// Nullable is a patch value for a column that accepts NULL. Set is false when
// the key was absent from the request; an explicit JSON null sets it with a
// nil Value.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

// Some is a set, non-null value.
func Some[T any](v T) Nullable[T] { return Nullable[T]{Set: true, Value: &v} }

// Null clears the column.
func Null[T any]() Nullable[T] { return Nullable[T]{Set: true} }

func (n *Nullable[T]) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

// Arg is the statement argument, nil for NULL.
func (n Nullable[T]) Arg() any {
	if n.Value == nil {
		return nil
	}
	return *n.Value
}

// Field appends column to f when n is set.
func (n Nullable[T]) Field(f []Field, column string) []Field {
	if !n.Set {
		return f
	}
	return append(f, Field{Column: column, Value: n.Arg()})
}
