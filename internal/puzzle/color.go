package puzzle

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is an opaque RGB triple.
type Color struct {
	R, G, B uint8
}

// ColorScheme maps a face name to its sticker color.
type ColorScheme map[string]Color

var (
	White  = Color{0xff, 0xff, 0xff}
	Yellow = Color{0xff, 0xff, 0x00}
	Red    = Color{0xff, 0x00, 0x00}
	Orange = Color{0xff, 0x80, 0x40}
	Green  = Color{0x00, 0xff, 0x00}
	Blue   = Color{0x00, 0x00, 0xff}
	Black  = Color{0x00, 0x00, 0x00}
	Gray   = Color{0x80, 0x80, 0x80}
	Purple = Color{0x80, 0x00, 0x80}
	Pink   = Color{0xff, 0xc0, 0xcb}
	Navy   = Color{0x00, 0x00, 0x80}
	Beige  = Color{0xf5, 0xf5, 0xdc}
	Lime   = Color{0x80, 0xff, 0x00}
)

var namedColors = map[string]Color{
	"white":  White,
	"yellow": Yellow,
	"red":    Red,
	"orange": Orange,
	"green":  Green,
	"blue":   Blue,
	"black":  Black,
	"gray":   Gray,
	"grey":   Gray,
	"purple": Purple,
	"pink":   Pink,
	"navy":   Navy,
	"beige":  Beige,
	"lime":   Lime,
}

// String renders c as #rrggbb.
func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// MarshalText lets schemes encode as {"U":"#ffffff",...}.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// ParseColor accepts a color name or a hex triple with or without '#'.
func ParseColor(s string) (Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c, nil
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// parseColorScheme accepts either a comma separated list with one color per
// face (in face order) or FACE=color pairs that override the defaults.
func parseColorScheme(faces []string, defaults ColorScheme, text string) (ColorScheme, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return defaults, nil
	}

	parts := strings.Split(text, ",")
	if strings.Contains(text, "=") {
		scheme := defaults
		for _, part := range parts {
			face, value, ok := strings.Cut(part, "=")
			if !ok {
				return nil, fmt.Errorf("color scheme entry %q is not FACE=color", part)
			}
			name, ok := lookupFace(faces, strings.TrimSpace(face))
			if !ok {
				return nil, fmt.Errorf("unknown face %q", face)
			}
			c, err := ParseColor(value)
			if err != nil {
				return nil, err
			}
			scheme[name] = c
		}
		return scheme, nil
	}

	if len(parts) != len(faces) {
		return nil, fmt.Errorf("color scheme has %d colors, want %d", len(parts), len(faces))
	}
	scheme := make(ColorScheme, len(faces))
	for i, part := range parts {
		c, err := ParseColor(part)
		if err != nil {
			return nil, err
		}
		scheme[faces[i]] = c
	}
	return scheme, nil
}

func lookupFace(faces []string, name string) (string, bool) {
	for _, f := range faces {
		if strings.EqualFold(f, name) {
			return f, true
		}
	}
	return "", false
}
