// Package value provides the closed value model used across the Ferry
// bridge boundary. Every payload and style that crosses between the
// declarative UI layer and native code is a Value: null, bool, number,
// string, object, or array, mirroring the JSON grammar. Using a tagged
// union instead of raw any lets transforms and fingerprinting switch
// exhaustively over kinds instead of probing at runtime.
package value

import (
	"fmt"
	"sort"
)

// Kind identifies the variant a Value holds.
type Kind int

const (
	// KindNull is the zero Value.
	KindNull Kind = iota
	// KindBool holds true or false.
	KindBool
	// KindNumber holds a float64, covering all JSON numbers.
	KindNumber
	// KindString holds a string.
	KindString
	// KindObject holds a string-keyed mapping. Key order carries no
	// meaning; iteration helpers sort keys for determinism.
	KindObject
	// KindArray holds an ordered sequence.
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "invalid"
	}
}

// Value is an immutable JSON-compatible value. The zero Value is null.
// Values are cheap to copy; object and array contents are shared but
// never mutated after construction.
type Value struct {
	kind Kind
	b    bool
	num  float64
	str  string
	obj  map[string]Value
	arr  []Value
}

// Null returns the null Value.
func Null() Value {
	return Value{}
}

// Bool returns a boolean Value.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Number returns a numeric Value.
func Number(n float64) Value {
	return Value{kind: KindNumber, num: n}
}

// String returns a string Value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Object returns an object Value. The map is copied so later mutation
// of the argument cannot alias into the Value.
func Object(fields map[string]Value) Value {
	obj := make(map[string]Value, len(fields))
	for k, v := range fields {
		obj[k] = v
	}
	return Value{kind: KindObject, obj: obj}
}

// Array returns an array Value. The elements are copied.
func Array(elems ...Value) Value {
	arr := make([]Value, len(elems))
	copy(arr, elems)
	return Value{kind: KindArray, arr: arr}
}

// Kind returns the variant this Value holds.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether the Value is null.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// AsBool returns the boolean content. ok is false for non-bool kinds.
func (v Value) AsBool() (b, ok bool) {
	return v.b, v.kind == KindBool
}

// AsNumber returns the numeric content. ok is false for non-number kinds.
func (v Value) AsNumber() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// AsString returns the string content. ok is false for non-string kinds.
func (v Value) AsString() (string, bool) {
	return v.str, v.kind == KindString
}

// Get returns the field with the given key. ok is false when the Value
// is not an object or the key is absent.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	f, ok := v.obj[key]
	return f, ok
}

// Len returns the number of fields (object) or elements (array), and 0
// for every other kind.
func (v Value) Len() int {
	switch v.kind {
	case KindObject:
		return len(v.obj)
	case KindArray:
		return len(v.arr)
	default:
		return 0
	}
}

// Index returns the array element at i. ok is false when the Value is
// not an array or i is out of range.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != KindArray || i < 0 || i >= len(v.arr) {
		return Value{}, false
	}
	return v.arr[i], true
}

// Keys returns the object's keys in sorted order, nil for non-objects.
func (v Value) Keys() []string {
	if v.kind != KindObject {
		return nil
	}
	keys := make([]string, 0, len(v.obj))
	for k := range v.obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Merge returns a new object holding the fields of v overlaid with the
// fields of overlay; on conflicting keys the overlay wins. Both inputs
// must be objects (null is treated as empty).
func (v Value) Merge(overlay Value) Value {
	merged := make(map[string]Value, v.Len()+overlay.Len())
	for k, f := range v.obj {
		merged[k] = f
	}
	for k, f := range overlay.obj {
		merged[k] = f
	}
	return Value{kind: KindObject, obj: merged}
}

// Equal reports structural equality: same kind and same content,
// independent of object key order or container identity.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		return a.num == b.num
	case KindString:
		return a.str == b.str
	case KindObject:
		if len(a.obj) != len(b.obj) {
			return false
		}
		for k, av := range a.obj {
			bv, ok := b.obj[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	case KindArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// FromGo converts a JSON-compatible Go value (nil, bool, numeric types,
// string, map[string]any, []any, or nested Values) into a Value.
// Unsupported types are rejected rather than coerced.
func FromGo(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case int:
		return Number(float64(t)), nil
	case int8:
		return Number(float64(t)), nil
	case int16:
		return Number(float64(t)), nil
	case int32:
		return Number(float64(t)), nil
	case int64:
		return Number(float64(t)), nil
	case uint:
		return Number(float64(t)), nil
	case uint8:
		return Number(float64(t)), nil
	case uint16:
		return Number(float64(t)), nil
	case uint32:
		return Number(float64(t)), nil
	case uint64:
		return Number(float64(t)), nil
	case float32:
		return Number(float64(t)), nil
	case float64:
		return Number(t), nil
	case map[string]any:
		obj := make(map[string]Value, len(t))
		for k, raw := range t {
			f, err := FromGo(raw)
			if err != nil {
				return Value{}, fmt.Errorf("field %q: %w", k, err)
			}
			obj[k] = f
		}
		return Value{kind: KindObject, obj: obj}, nil
	case map[string]Value:
		return Object(t), nil
	case []any:
		arr := make([]Value, len(t))
		for i, raw := range t {
			e, err := FromGo(raw)
			if err != nil {
				return Value{}, fmt.Errorf("index %d: %w", i, err)
			}
			arr[i] = e
		}
		return Value{kind: KindArray, arr: arr}, nil
	case []Value:
		return Array(t...), nil
	default:
		return Value{}, fmt.Errorf("unsupported value type %T", v)
	}
}

// MustFromGo is FromGo that panics on unsupported input. Intended for
// literals in tests and examples.
func MustFromGo(v any) Value {
	val, err := FromGo(v)
	if err != nil {
		panic(err)
	}
	return val
}

// ToGo converts the Value back into plain Go data (nil, bool, float64,
// string, map[string]any, []any), suitable for encoding/json.
func (v Value) ToGo() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.num
	case KindString:
		return v.str
	case KindObject:
		m := make(map[string]any, len(v.obj))
		for k, f := range v.obj {
			m[k] = f.ToGo()
		}
		return m
	case KindArray:
		s := make([]any, len(v.arr))
		for i, e := range v.arr {
			s[i] = e.ToGo()
		}
		return s
	default:
		return nil
	}
}
