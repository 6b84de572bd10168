package image2bit

import "image/color"

// RGB565 is a color packed as 5 bits red, 6 bits green and 5 bits blue,
// red in the most significant bits.
type RGB565 uint16

// Named grey levels in RGB565 form. They classify to exactly the level they
// name.
const (
	Black565     RGB565 = 0x0000
	DarkGrey565  RGB565 = 0x7BEF
	LightGrey565 RGB565 = 0xC618
	White565     RGB565 = 0xFFFF
)

// Channel masks of the 5-6-5 packing.
const (
	redMask   = 0xF800
	greenMask = 0x07E0
	blueMask  = 0x001F
)

// RGBA implements color.Color.
func (c RGB565) RGBA() (r, g, b, a uint32) {
	r8, g8, b8 := c.Channels()
	return uint32(r8) * 0x101, uint32(g8) * 0x101, uint32(b8) * 0x101, 0xFFFF
}

// Channels returns the three channels expanded to 8 bits each. The low bits
// are filled by replicating the high bits so that full scale maps to 0xFF.
func (c RGB565) Channels() (r, g, b uint8) {
	r5 := uint8((uint16(c) & redMask) >> 11)
	g6 := uint8((uint16(c) & greenMask) >> 5)
	b5 := uint8(uint16(c) & blueMask)
	return r5<<3 | r5>>2, g6<<2 | g6>>4, b5<<3 | b5>>2
}

// Pack565 converts any color to RGB565 by truncating each channel.
func Pack565(c color.Color) RGB565 {
	if v, ok := c.(RGB565); ok {
		return v
	}
	r, g, b, _ := c.RGBA()
	return RGB565((r>>11)<<11 | (g>>10)<<5 | b>>11)
}

// Brightness is the sum of the three 8-bit channels, in [0, 765].
func Brightness(c RGB565) int {
	r, g, b := c.Channels()
	return int(r) + int(g) + int(b)
}

// Level boundaries, halfway between the brightness of adjacent named greys.
var (
	darkGreyThreshold  = midpoint(Black565, DarkGrey565)
	lightGreyThreshold = midpoint(DarkGrey565, LightGrey565)
	whiteThreshold     = midpoint(LightGrey565, White565)
)

func midpoint(lo, hi RGB565) int {
	return (Brightness(lo) + Brightness(hi) + 1) / 2
}

// Classify reduces an RGB565 color to one of the four drive levels.
//
// The named greys map exactly; every other value is quantised on Brightness.
// Brighter input never yields a darker level.
//
// Brightness sums all three channels using the standard 5-6-5 masks
// (0xF800, 0x07E0, 0x001F). The GxEPD form, (R+G)&B with a 0xF100 red mask,
// is not kept: it leaks green bit 8 into red and no colour other than the
// named greys can reach its thresholds.
func Classify(c RGB565) Gray2 {
	switch c {
	case Black565:
		return Black
	case DarkGrey565:
		return DarkGrey
	case LightGrey565:
		return LightGrey
	case White565:
		return White
	}
	switch br := Brightness(c); {
	case br < darkGreyThreshold:
		return Black
	case br < lightGreyThreshold:
		return DarkGrey
	case br < whiteThreshold:
		return LightGrey
	default:
		return White
	}
}
