package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Color is a non-premultiplied 8-bit ARGB color.
type Color struct {
	A uint8
	R uint8
	G uint8
	B uint8
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	a = uint32(c.A)
	a |= a << 8
	r = uint32(c.R) * a / 0xff
	g = uint32(c.G) * a / 0xff
	b = uint32(c.B) * a / 0xff
	return r, g, b, a
}

// ARGB packs the color as 0xAARRGGBB.
func (c Color) ARGB() uint32 {
	return uint32(c.A)<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// String formats the color as #AARRGGBB.
func (c Color) String() string {
	return fmt.Sprintf("#%02X%02X%02X%02X", c.A, c.R, c.G, c.B)
}

func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Color) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	s = strings.TrimPrefix(s, "#")
	if len(s) != 8 {
		return fmt.Errorf("color must be #AARRGGBB, got %q", s)
	}
	// ParseUint rejects signs, so only the eight hex digits get through
	argb, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return fmt.Errorf("color must be #AARRGGBB, got %q", s)
	}
	*c = Color{A: uint8(argb >> 24), R: uint8(argb >> 16), G: uint8(argb >> 8), B: uint8(argb)}
	return nil
}
