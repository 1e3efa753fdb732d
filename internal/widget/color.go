package widget

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/koios/api-widget/pkg/models"
)

var namedColors = map[string]models.Color{
	"black":     {A: 0xFF, R: 0x00, G: 0x00, B: 0x00},
	"darkgray":  {A: 0xFF, R: 0x44, G: 0x44, B: 0x44},
	"darkgrey":  {A: 0xFF, R: 0x44, G: 0x44, B: 0x44},
	"gray":      {A: 0xFF, R: 0x88, G: 0x88, B: 0x88},
	"grey":      {A: 0xFF, R: 0x88, G: 0x88, B: 0x88},
	"lightgray": {A: 0xFF, R: 0xCC, G: 0xCC, B: 0xCC},
	"lightgrey": {A: 0xFF, R: 0xCC, G: 0xCC, B: 0xCC},
	"white":     {A: 0xFF, R: 0xFF, G: 0xFF, B: 0xFF},
	"red":       {A: 0xFF, R: 0xFF, G: 0x00, B: 0x00},
	"green":     {A: 0xFF, R: 0x00, G: 0xFF, B: 0x00},
	"blue":      {A: 0xFF, R: 0x00, G: 0x00, B: 0xFF},
	"yellow":    {A: 0xFF, R: 0xFF, G: 0xFF, B: 0x00},
	"cyan":      {A: 0xFF, R: 0x00, G: 0xFF, B: 0xFF},
	"magenta":   {A: 0xFF, R: 0xFF, G: 0x00, B: 0xFF},
	"aqua":      {A: 0xFF, R: 0x00, G: 0xFF, B: 0xFF},
	"fuchsia":   {A: 0xFF, R: 0xFF, G: 0x00, B: 0xFF},
	"lime":      {A: 0xFF, R: 0x00, G: 0xFF, B: 0x00},
	"maroon":    {A: 0xFF, R: 0x80, G: 0x00, B: 0x00},
	"navy":      {A: 0xFF, R: 0x00, G: 0x00, B: 0x80},
	"olive":     {A: 0xFF, R: 0x80, G: 0x80, B: 0x00},
	"purple":    {A: 0xFF, R: 0x80, G: 0x00, B: 0x80},
	"silver":    {A: 0xFF, R: 0xC0, G: 0xC0, B: 0xC0},
	"teal":      {A: 0xFF, R: 0x00, G: 0x80, B: 0x80},
}

// ParseColor parses #RRGGBB, #AARRGGBB or a named color.
func ParseColor(s string) (models.Color, error) {
	if !strings.HasPrefix(s, "#") {
		if c, ok := namedColors[strings.ToLower(s)]; ok {
			return c, nil
		}
		return models.Color{}, fmt.Errorf("unknown color %q", s)
	}

	digits := s[1:]
	if !isHex(digits) {
		return models.Color{}, fmt.Errorf("invalid color %q", s)
	}

	alpha := uint8(0xFF)
	switch len(digits) {
	case 6:
	case 8:
		a, err := strconv.ParseUint(digits[:2], 16, 8)
		if err != nil {
			return models.Color{}, fmt.Errorf("invalid alpha in %q: %w", s, err)
		}
		alpha = uint8(a)
		digits = digits[2:]
	default:
		return models.Color{}, fmt.Errorf("invalid color length %q", s)
	}

	rgb, err := colorful.Hex("#" + digits)
	if err != nil {
		return models.Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := rgb.RGB255()
	return models.Color{A: alpha, R: r, G: g, B: b}, nil
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
