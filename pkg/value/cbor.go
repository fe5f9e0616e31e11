package value

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// cborDec decodes CBOR maps with string keys so the result stays inside
// the JSON-compatible grammar.
var cborDec cbor.DecMode

func init() {
	dm, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic(err)
	}
	cborDec = dm
}

// MarshalCBOR encodes the Value for binary transports.
func (v Value) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(v.ToGo())
}

// UnmarshalCBOR decodes any CBOR value whose structure fits the
// JSON-compatible grammar (string-keyed maps, numbers, strings, bools).
func (v *Value) UnmarshalCBOR(data []byte) error {
	var raw any
	if err := cborDec.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded, err := FromGo(normalizeCBOR(raw))
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

// normalizeCBOR rewrites CBOR-specific container and integer types into
// their JSON-compatible equivalents.
func normalizeCBOR(raw any) any {
	switch t := raw.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = normalizeCBOR(e)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			if ks, ok := k.(string); ok {
				m[ks] = normalizeCBOR(e)
			}
		}
		return m
	case []any:
		for i, e := range t {
			t[i] = normalizeCBOR(e)
		}
		return t
	default:
		return raw
	}
}
