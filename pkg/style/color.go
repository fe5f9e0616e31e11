package style

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/go-ferry/ferry/pkg/value"
)

// resolveColor normalizes any supported color representation into a
// packed ARGB integer (0xAARRGGBB). Accepted forms:
//
//   - numbers already packed as ARGB (must be integral, fit 32 bits)
//   - hex strings: #RGB, #RGBA, #RRGGBB, #RRGGBBAA
//   - functional strings: rgb(r, g, b), rgba(r, g, b, a)
//   - SVG 1.1 color names ("rebeccapurple", "steelblue", ...)
func resolveColor(raw value.Value) (uint32, error) {
	switch raw.Kind() {
	case value.KindNumber:
		n, _ := raw.AsNumber()
		if n != math.Trunc(n) || n < 0 || n > float64(math.MaxUint32) {
			return 0, fmt.Errorf("numeric color %v out of ARGB range", n)
		}
		return uint32(n), nil
	case value.KindString:
		s, _ := raw.AsString()
		return parseColorString(s)
	default:
		return 0, fmt.Errorf("expected color string or number, got %s", raw.Kind())
	}
}

func parseColorString(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "#"):
		return parseHexColor(s[1:])
	case strings.HasPrefix(s, "rgba(") && strings.HasSuffix(s, ")"):
		return parseFunctionalColor(s[5:len(s)-1], true)
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		return parseFunctionalColor(s[4:len(s)-1], false)
	default:
		if c, ok := colornames.Map[strings.ToLower(s)]; ok {
			return pack(c.R, c.G, c.B, c.A), nil
		}
		return 0, fmt.Errorf("unknown color %q", s)
	}
}

func parseHexColor(hex string) (uint32, error) {
	// Expand short forms: #abc -> #aabbcc, #abcd -> #aabbccdd.
	if len(hex) == 3 || len(hex) == 4 {
		var sb strings.Builder
		for _, r := range hex {
			sb.WriteRune(r)
			sb.WriteRune(r)
		}
		hex = sb.String()
	}

	switch len(hex) {
	case 6:
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid hex color %q", "#"+hex)
		}
		return 0xFF000000 | uint32(v), nil
	case 8:
		// CSS order is RRGGBBAA; packed order is AARRGGBB.
		v, err := strconv.ParseUint(hex, 16, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid hex color %q", "#"+hex)
		}
		rgb := uint32(v >> 8)
		a := uint32(v & 0xFF)
		return a<<24 | rgb, nil
	default:
		return 0, fmt.Errorf("invalid hex color %q", "#"+hex)
	}
}

func parseFunctionalColor(args string, hasAlpha bool) (uint32, error) {
	parts := strings.Split(args, ",")
	want := 3
	if hasAlpha {
		want = 4
	}
	if len(parts) != want {
		return 0, fmt.Errorf("expected %d color components, got %d", want, len(parts))
	}

	var rgb [3]uint8
	for i := 0; i < 3; i++ {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || n < 0 || n > 255 {
			return 0, fmt.Errorf("invalid color component %q", strings.TrimSpace(parts[i]))
		}
		rgb[i] = uint8(n)
	}

	a := uint8(0xFF)
	if hasAlpha {
		f, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || f < 0 || f > 1 {
			return 0, fmt.Errorf("invalid alpha component %q", strings.TrimSpace(parts[3]))
		}
		a = uint8(math.Round(f * 255))
	}
	return pack(rgb[0], rgb[1], rgb[2], a), nil
}

// pack stores components as ARGB (0xAARRGGBB).
func pack(r, g, b, a uint8) uint32 {
	return uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}
