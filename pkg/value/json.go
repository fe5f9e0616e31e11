package value

import "encoding/json"

// MarshalJSON encodes the Value using the standard JSON grammar.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.ToGo())
}

// UnmarshalJSON decodes any JSON value.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded, err := FromGo(raw)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}
