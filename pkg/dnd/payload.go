package dnd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/vango-dev/dndlist/internal/errors"
)

// encMode uses Core Deterministic Encoding so equal values produce equal
// bytes and Payload.Equal is meaningful.
var encMode cbor.EncMode

// decMode decodes untyped maps nested in typed targets as map[string]any.
var decMode cbor.DecMode

// valueMode accepts any map key. Value converts the keys to strings.
var valueMode cbor.DecMode

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("dnd: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("dnd: CBOR decoder initialization failed: " + err.Error())
	}

	valueMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[any]any(nil)),
	}.DecMode()
	if err != nil {
		panic("dnd: CBOR decoder initialization failed: " + err.Error())
	}
}

// Payload is an immutable deep copy of dragged data.
// The zero Payload means "no data".
type Payload struct {
	raw []byte
}

// Clone deep-copies v into a Payload. A Payload argument is returned as is.
// Values that cannot be encoded (functions, channels, complex numbers,
// cyclic references) return a D001 error.
func Clone(v any) (Payload, error) {
	if p, ok := v.(Payload); ok {
		return p, nil
	}
	if err := checkAcyclic(reflect.ValueOf(v), make(map[visit]struct{})); err != nil {
		return Payload{}, err
	}
	raw, err := encMode.Marshal(v)
	if err != nil {
		return Payload{}, errors.New("D001").
			WithSuggestion("Bind plain data: structs, maps, slices, strings, numbers and booleans").
			Wrap(err)
	}
	p := Payload{raw: raw}
	// Every payload must have a generic form for JSON views and untyped readers.
	if _, err := p.Value(); err != nil {
		return Payload{}, errors.FromError(err, "D001")
	}
	return p, nil
}

// IsZero reports whether p holds no data.
func (p Payload) IsZero() bool {
	return len(p.raw) == 0
}

// Decode copies the payload into v, which must be a non-nil pointer. A *any
// target receives the same value as Value.
func (p Payload) Decode(v any) error {
	if p.IsZero() {
		return errors.New("D003").WithDetail("There is no payload to decode.")
	}
	if target, ok := v.(*any); ok && target != nil {
		val, err := p.Value()
		if err != nil {
			return err
		}
		*target = val
		return nil
	}
	if err := decMode.Unmarshal(p.raw, v); err != nil {
		return errors.New("D003").Wrap(err)
	}
	return nil
}

// Value returns a fresh generic copy of the payload. Maps decode as
// map[string]any, arrays as []any and integers as int64 or uint64. Map keys
// that are not strings are formatted the way encoding/json formats them, so
// map[int]string{1: "a"} reads back as map[string]any{"1": "a"}.
func (p Payload) Value() (any, error) {
	if p.IsZero() {
		return nil, nil
	}
	var v any
	if err := valueMode.Unmarshal(p.raw, &v); err != nil {
		return nil, errors.New("D003").Wrap(err)
	}
	return stringKeys(v)
}

func stringKeys(v any) (any, error) {
	switch v := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, elem := range v {
			key := fmt.Sprint(k)
			if _, dup := out[key]; dup {
				return nil, errors.New("D001").
					WithDetail(fmt.Sprintf("Map keys collide once converted to strings: %q.", key))
			}
			conv, err := stringKeys(elem)
			if err != nil {
				return nil, err
			}
			out[key] = conv
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			conv, err := stringKeys(elem)
			if err != nil {
				return nil, err
			}
			out[i] = conv
		}
		return out, nil
	default:
		return v, nil
	}
}

// Bytes returns a copy of the deterministic CBOR encoding.
func (p Payload) Bytes() []byte {
	return bytes.Clone(p.raw)
}

// Equal reports whether two payloads encode the same value.
func (p Payload) Equal(other Payload) bool {
	return bytes.Equal(p.raw, other.raw)
}

// MarshalJSON renders the payload value, or null for the zero Payload.
func (p Payload) MarshalJSON() ([]byte, error) {
	v, err := p.Value()
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

type visit struct {
	ptr uintptr
	typ reflect.Type
	len int
}

// checkAcyclic fails when a pointer, map or slice in v refers back to one of
// its own ancestors. Shared references that do not loop are allowed.
func checkAcyclic(v reflect.Value, path map[visit]struct{}) error {
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice:
		if v.IsNil() {
			return nil
		}
		key := visit{ptr: v.Pointer(), typ: v.Type()}
		if v.Kind() == reflect.Slice {
			key.len = v.Len()
		}
		if _, seen := path[key]; seen {
			return errors.New("D001").
				WithDetail("The value refers to itself. Cyclic data cannot be copied.")
		}
		path[key] = struct{}{}
		defer delete(path, key)

		switch v.Kind() {
		case reflect.Pointer:
			return checkAcyclic(v.Elem(), path)
		case reflect.Map:
			if !mayCycle(v.Type().Elem()) {
				return nil
			}
			iter := v.MapRange()
			for iter.Next() {
				if err := checkAcyclic(iter.Value(), path); err != nil {
					return err
				}
			}
			return nil
		default:
			return checkElems(v, path)
		}
	case reflect.Array:
		return checkElems(v, path)
	case reflect.Interface:
		return checkAcyclic(v.Elem(), path)
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			if !t.Field(i).IsExported() || !mayCycle(t.Field(i).Type) {
				continue
			}
			if err := checkAcyclic(v.Field(i), path); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkElems(v reflect.Value, path map[visit]struct{}) error {
	if !mayCycle(v.Type().Elem()) {
		return nil
	}
	for i := 0; i < v.Len(); i++ {
		if err := checkAcyclic(v.Index(i), path); err != nil {
			return err
		}
	}
	return nil
}

// mayCycle reports whether values of t can hold references.
func mayCycle(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Struct, reflect.Array:
		return true
	}
	return false
}
