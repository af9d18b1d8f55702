package format

import (
	"fmt"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

var namedColors = map[string]string{
	"black":       "#000000",
	"white":       "#ffffff",
	"red":         "#ff0000",
	"green":       "#008000",
	"blue":        "#0000ff",
	"yellow":      "#ffff00",
	"cyan":        "#00ffff",
	"magenta":     "#ff00ff",
	"gray":        "#808080",
	"grey":        "#808080",
	"orange":      "#ffa500",
	"purple":      "#800080",
	"pink":        "#ffc0cb",
	"brown":       "#a52a2a",
	"navy":        "#000080",
	"teal":        "#008080",
	"olive":       "#808000",
	"lime":        "#00ff00",
	"aqua":        "#00ffff",
	"fuchsia":     "#ff00ff",
	"silver":      "#c0c0c0",
	"maroon":      "#800000",
	"transparent": "",
}

// NormalizeColor validates a CSS color value. Hex values are returned in
// lowercase #rrggbb (or #rrggbbaa) form; names and rgb()/rgba() functions
// are returned lowercased with whitespace removed.
func NormalizeColor(value string) (string, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	switch {
	case strings.HasPrefix(v, "#"):
		return normalizeHex(v)
	case strings.HasPrefix(v, "rgb(") || strings.HasPrefix(v, "rgba("):
		if _, _, err := parseRGBFunc(v); err != nil {
			return "", err
		}
		return strings.ReplaceAll(v, " ", ""), nil
	}
	if _, ok := namedColors[v]; ok {
		return v, nil
	}
	return "", ErrInvalidValue
}

// ParseColor returns the color a normalised value denotes and its alpha in
// [0, 1]. Transparent yields alpha 0.
func ParseColor(value string) (colorful.Color, float64, error) {
	v, err := NormalizeColor(value)
	if err != nil {
		return colorful.Color{}, 0, err
	}
	if hex, ok := namedColors[v]; ok {
		if hex == "" {
			return colorful.Color{}, 0, nil
		}
		c, err := colorful.Hex(hex)
		return c, 1, err
	}
	if strings.HasPrefix(v, "rgb") {
		return parseRGBFunc(v)
	}
	alpha := 1.0
	if len(v) == 9 {
		a, err := strconv.ParseUint(v[7:], 16, 8)
		if err != nil {
			return colorful.Color{}, 0, ErrInvalidValue
		}
		alpha = float64(a) / 255
		v = v[:7]
	}
	c, err := colorful.Hex(v)
	if err != nil {
		return colorful.Color{}, 0, ErrInvalidValue
	}
	return c, alpha, nil
}

func normalizeHex(v string) (string, error) {
	var alpha string
	switch len(v) {
	case 4, 7:
	case 9:
		alpha = v[7:]
		if _, err := strconv.ParseUint(alpha, 16, 8); err != nil {
			return "", ErrInvalidValue
		}
		v = v[:7]
	default:
		return "", ErrInvalidValue
	}
	c, err := colorful.Hex(v)
	if err != nil {
		return "", ErrInvalidValue
	}
	return c.Hex() + alpha, nil
}

// parseRGBFunc parses rgb(r, g, b) and rgba(r, g, b, a). Channels may be
// integers in [0, 255] or percentages.
func parseRGBFunc(v string) (colorful.Color, float64, error) {
	open := strings.IndexByte(v, '(')
	if open < 0 || !strings.HasSuffix(v, ")") {
		return colorful.Color{}, 0, ErrInvalidValue
	}
	name := v[:open]
	parts := strings.Split(v[open+1:len(v)-1], ",")
	want := 3
	if name == "rgba" {
		want = 4
	}
	if len(parts) != want {
		return colorful.Color{}, 0, fmt.Errorf("%s expects %d components: %w", name, want, ErrInvalidValue)
	}

	var ch [3]float64
	for i := 0; i < 3; i++ {
		p := strings.TrimSpace(parts[i])
		scale := 255.0
		if strings.HasSuffix(p, "%") {
			p = strings.TrimSuffix(p, "%")
			scale = 100
		}
		n, err := strconv.ParseFloat(p, 64)
		if err != nil || n < 0 || n > scale {
			return colorful.Color{}, 0, ErrInvalidValue
		}
		ch[i] = n / scale
	}

	alpha := 1.0
	if want == 4 {
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || a < 0 || a > 1 {
			return colorful.Color{}, 0, ErrInvalidValue
		}
		alpha = a
	}
	return colorful.Color{R: ch[0], G: ch[1], B: ch[2]}, alpha, nil
}
