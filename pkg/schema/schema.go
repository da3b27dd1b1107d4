// pkg/schema/schema.go
package schema

import (
	"reflect"

	"github.com/svishnu88/jlserve/pkg/codec"
)

// Type binds a symbolic schema name to a concrete Go struct, its codec and
// a zero-value constructor. Endpoint declarations carry one Type for input
// and one for output; the dispatcher decodes and encodes through them.
type Type struct {
	Name  string
	Codec codec.Codec
	Zero  func() any // returns *T
	kind  reflect.Kind
}

// Of derives a schema Type for T using the strict JSON codec.
func Of[T any]() Type {
	rt := reflect.TypeOf((*T)(nil)).Elem()
	return Type{
		Name:  rt.Name(),
		Codec: codec.JSONStrict,
		Zero:  func() any { return new(T) },
		kind:  rt.Kind(),
	}
}

// IsModel reports whether t is a usable schema model: struct-backed, with a
// codec and zero constructor. Anything else is rejected at validation time.
func (t Type) IsModel() bool {
	return t.Codec != nil && t.Zero != nil && t.kind == reflect.Struct
}

// Decode unmarshals data into a fresh *T. The returned value is always a
// pointer to the model struct.
func (t Type) Decode(data []byte) (any, error) {
	dst := t.Zero()
	if err := t.Codec.Unmarshal(data, dst); err != nil {
		return nil, err
	}
	return dst, nil
}

// Encode marshals v through the schema's codec.
func (t Type) Encode(v any) ([]byte, error) {
	return t.Codec.Marshal(v)
}
