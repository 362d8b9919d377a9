package render

import (
	"strconv"
	"strings"
)

// RGB is a color with components in [0, 1].
type RGB struct{ R, G, B float64 }

// Ints returns the 0-255 components expected by fpdf.
func (c RGB) Ints() (int, int, int) {
	return int(c.R*255 + 0.5), int(c.G*255 + 0.5), int(c.B*255 + 0.5)
}

// Default palette.
var (
	DefaultBackground = RGB{0.992, 0.984, 0.961} // cream
	DefaultPrimary    = RGB{0.114, 0.208, 0.341} // navy
	DefaultSecondary  = RGB{0.722, 0.557, 0.235} // gold
	Ink               = RGB{0.133, 0.133, 0.133}
	Muted             = RGB{0.42, 0.42, 0.42}
	Light             = RGB{0.55, 0.55, 0.55}
)

// ParseHex parses "#RRGGBB". Anything else reports ok=false.
func ParseHex(s string) (RGB, bool) {
	s = strings.TrimSpace(s)
	if len(s) != 7 || s[0] != '#' {
		return RGB{}, false
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return RGB{}, false
	}
	return RGB{
		R: float64((v>>16)&0xff) / 255,
		G: float64((v>>8)&0xff) / 255,
		B: float64(v&0xff) / 255,
	}, true
}

// ColorOr parses s and falls back to def when s is missing or malformed.
func ColorOr(s string, def RGB) RGB {
	if c, ok := ParseHex(s); ok {
		return c
	}
	return def
}
