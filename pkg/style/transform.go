package style

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-ferry/ferry/pkg/value"
)

var errNotObject = errors.New("style must be an object")

// TransformError reports a malformed style value. Transform fails fast
// with this error instead of caching a poisoned entry; other styles in
// the same render pass are unaffected.
type TransformError struct {
	// Property is the offending style property, empty when the style
	// as a whole is malformed.
	Property string
	// Err describes what was wrong with the value.
	Err error
}

func (e *TransformError) Error() string {
	if e.Property != "" {
		return fmt.Sprintf("style transform: property %q: %v", e.Property, e.Err)
	}
	return fmt.Sprintf("style transform: %v", e.Err)
}

func (e *TransformError) Unwrap() error {
	return e.Err
}

// Box shorthand properties expanded into per-side longhands.
var boxShorthands = map[string][4]string{
	"margin":  {"marginTop", "marginRight", "marginBottom", "marginLeft"},
	"padding": {"paddingTop", "paddingRight", "paddingBottom", "paddingLeft"},
}

// Properties whose values are lengths. Numeric strings are coerced to
// numbers for these; percentage strings pass through for the native
// side to resolve.
var dimensionProps = map[string]bool{
	"width": true, "height": true,
	"minWidth": true, "minHeight": true, "maxWidth": true, "maxHeight": true,
	"top": true, "right": true, "bottom": true, "left": true,
	"marginTop": true, "marginRight": true, "marginBottom": true, "marginLeft": true,
	"paddingTop": true, "paddingRight": true, "paddingBottom": true, "paddingLeft": true,
	"borderWidth": true, "borderRadius": true,
	"fontSize": true, "lineHeight": true, "letterSpacing": true,
	"shadowRadius": true, "flexBasis": true, "gap": true,
}

// transformStyle normalizes a declarative style object into its
// native-consumable form: shorthands expanded, colors resolved to ARGB
// numbers, elevation turned into concrete shadow values, dimension
// strings coerced. The input object is never modified.
func transformStyle(style value.Value) (value.Value, error) {
	if style.Kind() != value.KindObject {
		return value.Value{}, &TransformError{Err: errNotObject}
	}

	out := make(map[string]value.Value, style.Len()+4)

	// Shorthands first so explicit longhands written below win.
	for _, key := range style.Keys() {
		sides, ok := boxShorthands[key]
		if !ok {
			continue
		}
		raw, _ := style.Get(key)
		n, err := dimensionValue(key, raw)
		if err != nil {
			return value.Value{}, err
		}
		for _, side := range sides {
			out[side] = n
		}
	}

	for _, key := range style.Keys() {
		if _, isShorthand := boxShorthands[key]; isShorthand {
			continue
		}
		raw, _ := style.Get(key)

		switch {
		case isColorProp(key):
			argb, err := resolveColor(raw)
			if err != nil {
				return value.Value{}, &TransformError{Property: key, Err: err}
			}
			out[key] = value.Number(float64(argb))

		case dimensionProps[key]:
			n, err := dimensionValue(key, raw)
			if err != nil {
				return value.Value{}, err
			}
			out[key] = n

		case key == "elevation":
			if err := applyElevation(raw, out); err != nil {
				return value.Value{}, err
			}

		case key == "shadowOffset":
			off, err := normalizeShadowOffset(raw)
			if err != nil {
				return value.Value{}, err
			}
			out[key] = off

		default:
			out[key] = raw
		}
	}

	return value.Object(out), nil
}

// isColorProp reports whether the property carries a color value.
func isColorProp(key string) bool {
	return key == "color" || strings.HasSuffix(key, "Color")
}

// dimensionValue normalizes a length value. Numbers pass through,
// numeric strings ("12", "1.5") are coerced to numbers, and percentage
// strings ("50%") are preserved verbatim.
func dimensionValue(key string, raw value.Value) (value.Value, error) {
	switch raw.Kind() {
	case value.KindNumber:
		return raw, nil
	case value.KindString:
		s, _ := raw.AsString()
		if strings.HasSuffix(s, "%") {
			return raw, nil
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return value.Value{}, &TransformError{Property: key, Err: fmt.Errorf("invalid dimension %q", s)}
		}
		return value.Number(n), nil
	default:
		return value.Value{}, &TransformError{Property: key, Err: fmt.Errorf("expected number, got %s", raw.Kind())}
	}
}

// normalizeShadowOffset coerces the width/height fields of a shadow
// offset sub-object.
func normalizeShadowOffset(raw value.Value) (value.Value, error) {
	if raw.Kind() != value.KindObject {
		return value.Value{}, &TransformError{Property: "shadowOffset", Err: fmt.Errorf("expected object, got %s", raw.Kind())}
	}
	out := make(map[string]value.Value, 2)
	for _, axis := range []string{"width", "height"} {
		f, ok := raw.Get(axis)
		if !ok {
			out[axis] = value.Number(0)
			continue
		}
		n, err := dimensionValue("shadowOffset."+axis, f)
		if err != nil {
			return value.Value{}, err
		}
		out[axis] = n
	}
	return value.Object(out), nil
}
