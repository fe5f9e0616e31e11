package value

import (
	"encoding/json"
	"testing"
)

func TestFromGoRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   any
		kind Kind
	}{
		{name: "nil", in: nil, kind: KindNull},
		{name: "bool", in: true, kind: KindBool},
		{name: "int", in: 42, kind: KindNumber},
		{name: "float", in: 1.5, kind: KindNumber},
		{name: "string", in: "hello", kind: KindString},
		{name: "object", in: map[string]any{"a": 1.0, "b": "x"}, kind: KindObject},
		{name: "array", in: []any{1.0, "two", nil}, kind: KindArray},
		{name: "nested", in: map[string]any{"shadow": map[string]any{"width": 0.0, "height": 2.0}}, kind: KindObject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := FromGo(tt.in)
			if err != nil {
				t.Fatalf("FromGo(%v): %v", tt.in, err)
			}
			if v.Kind() != tt.kind {
				t.Errorf("kind = %s, want %s", v.Kind(), tt.kind)
			}
			back, err := FromGo(v.ToGo())
			if err != nil {
				t.Fatalf("FromGo(ToGo()): %v", err)
			}
			if !Equal(v, back) {
				t.Errorf("round trip changed value: %v vs %v", v.ToGo(), back.ToGo())
			}
		})
	}
}

func TestFromGoRejectsUnsupported(t *testing.T) {
	if _, err := FromGo(struct{ X int }{1}); err == nil {
		t.Error("expected error for struct input")
	}
	if _, err := FromGo(map[string]any{"fn": func() {}}); err == nil {
		t.Error("expected error for nested func input")
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{name: "same object different key insertion", a: map[string]any{"a": 1.0, "b": 2.0}, b: map[string]any{"b": 2.0, "a": 1.0}, want: true},
		{name: "string vs number", a: "1", b: 1.0, want: false},
		{name: "null vs false", a: nil, b: false, want: false},
		{name: "differing nested", a: map[string]any{"s": map[string]any{"w": 1.0}}, b: map[string]any{"s": map[string]any{"w": 2.0}}, want: false},
		{name: "array order matters", a: []any{1.0, 2.0}, b: []any{2.0, 1.0}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(MustFromGo(tt.a), MustFromGo(tt.b)); got != tt.want {
				t.Errorf("Equal = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMergeOverlayWins(t *testing.T) {
	base := MustFromGo(map[string]any{"color": "red", "width": 10.0})
	overlay := MustFromGo(map[string]any{"color": "blue"})

	merged := base.Merge(overlay)

	c, _ := merged.Get("color")
	if s, _ := c.AsString(); s != "blue" {
		t.Errorf("color = %q, want overlay value \"blue\"", s)
	}
	w, _ := merged.Get("width")
	if n, _ := w.AsNumber(); n != 10 {
		t.Errorf("width = %v, want base value 10", n)
	}
	// Inputs untouched.
	bc, _ := base.Get("color")
	if s, _ := bc.AsString(); s != "red" {
		t.Error("Merge mutated its receiver")
	}
}

func TestObjectCopiesInput(t *testing.T) {
	fields := map[string]Value{"a": Number(1)}
	v := Object(fields)
	fields["a"] = Number(2)
	fields["b"] = Number(3)

	got, _ := v.Get("a")
	if n, _ := got.AsNumber(); n != 1 {
		t.Error("Object aliased the caller's map")
	}
	if v.Len() != 1 {
		t.Errorf("Len = %d, want 1", v.Len())
	}
}

func TestKeysSorted(t *testing.T) {
	v := MustFromGo(map[string]any{"c": 1.0, "a": 2.0, "b": 3.0})
	keys := v.Keys()
	want := []string{"a", "b", "c"}
	if len(keys) != len(want) {
		t.Fatalf("Keys = %v", keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("Keys = %v, want %v", keys, want)
		}
	}
}

func TestJSON(t *testing.T) {
	v := MustFromGo(map[string]any{"width": 10.0, "label": "ok", "on": true})
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var back Value
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !Equal(v, back) {
		t.Errorf("JSON round trip changed value: %s", data)
	}
}
