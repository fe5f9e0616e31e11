package style

import (
	"fmt"

	"github.com/go-ferry/ferry/pkg/value"
)

// Material-style elevation levels 1-5. Index 0 is level 1.
var (
	elevationOffsets   = []float64{1, 2, 4, 6, 8}
	elevationBlurs     = []float64{3, 6, 10, 14, 18}
	elevationOpacities = []float64{0.18, 0.20, 0.23, 0.25, 0.30}
)

// defaultShadowColor is opaque black; opacity is carried separately.
const defaultShadowColor = 0xFF000000

// applyElevation expands an elevation level into the concrete shadow
// values iOS consumes, while keeping the elevation itself for Android.
// The derived keys sort after "elevation", so explicit shadow*
// properties in the same style override the derived ones.
func applyElevation(raw value.Value, out map[string]value.Value) error {
	n, ok := raw.AsNumber()
	if !ok {
		return &TransformError{Property: "elevation", Err: fmt.Errorf("expected number, got %s", raw.Kind())}
	}
	if n < 0 {
		return &TransformError{Property: "elevation", Err: fmt.Errorf("negative elevation %v", n)}
	}

	out["elevation"] = value.Number(n)
	if n == 0 {
		return nil
	}

	level := int(n)
	if level < 1 {
		level = 1
	}
	if level > len(elevationOffsets) {
		level = len(elevationOffsets)
	}
	idx := level - 1

	out["shadowColor"] = value.Number(float64(uint32(defaultShadowColor)))
	out["shadowOffset"] = value.Object(map[string]value.Value{
		"width":  value.Number(0),
		"height": value.Number(elevationOffsets[idx]),
	})
	out["shadowRadius"] = value.Number(elevationBlurs[idx])
	out["shadowOpacity"] = value.Number(elevationOpacities[idx])
	return nil
}
