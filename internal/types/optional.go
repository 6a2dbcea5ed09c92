package types

import "encoding/json"

// Optional records whether a JSON field was supplied. A field that is missing
// from the payload or explicitly null decodes to an unset Optional.
type Optional[T any] struct {
	Value T
	Set   bool
}

// Some returns a set Optional holding v
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// None returns an unset Optional
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it was set
func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Set
}

// Apply calls fn with the value when it is set
func (o Optional[T]) Apply(fn func(T)) {
	if o.Set {
		fn(o.Value)
	}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = Optional[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = v
	o.Set = true
	return nil
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}
