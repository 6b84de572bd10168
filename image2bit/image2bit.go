// Package image2bit provides a 2-bit grayscale image format for the GDE060BA e-paper panel.
//
// The panel stores pixels packed four to a byte, most significant pair first:
// bits 7-6 hold the leftmost pixel, bits 1-0 the rightmost.
package image2bit

import (
	"image"
	"image/color"
)

// Gray2 is one of the four drive levels of the panel.
// Only the lower 2 bits of Y are used.
type Gray2 struct {
	Y uint8
}

// The four drive levels, in increasing brightness.
var (
	Black     = Gray2{Y: 0}
	DarkGrey  = Gray2{Y: 1}
	LightGrey = Gray2{Y: 2}
	White     = Gray2{Y: 3}
)

// RGBA converts the Gray2 color to standard RGBA.
// The 2-bit value (0-3) is scaled to 16-bit (0-65535).
func (c Gray2) RGBA() (r, g, b, a uint32) {
	y := uint32(c.Y&0x03) * 0x5555
	return y, y, y, 0xFFFF
}

// String returns the level name.
func (c Gray2) String() string {
	switch c.Y & 0x03 {
	case 0:
		return "black"
	case 1:
		return "dark-grey"
	case 2:
		return "light-grey"
	default:
		return "white"
	}
}

// Replicate returns a byte holding c in all four pixel slots.
func Replicate(c Gray2) byte {
	return (c.Y & 0x03) * 0x55
}

// toGray2 converts any color.Color to Gray2.
func toGray2(c color.Color) color.Color {
	switch v := c.(type) {
	case Gray2:
		return Gray2{Y: v.Y & 0x03}
	case RGB565:
		return Classify(v)
	}
	return Classify(Pack565(c))
}

// Gray2Model converts colors to Gray2.
var Gray2Model = color.ModelFunc(toGray2)

// HorizontalCrumb is a 2-bit grayscale image where four horizontally adjacent
// pixels share a byte, leftmost pixel in the two most significant bits.
type HorizontalCrumb struct {
	Pix    []byte          // Pixel data (4 pixels per byte)
	Stride int             // Bytes per row
	Rect   image.Rectangle // Image bounds
}

// NewHorizontalCrumb creates a new HorizontalCrumb image with the specified bounds.
// The width must be a multiple of 4.
func NewHorizontalCrumb(r image.Rectangle) *HorizontalCrumb {
	w, h := r.Dx(), r.Dy()
	if w < 0 || h < 0 {
		return &HorizontalCrumb{Rect: r}
	}
	if w%4 != 0 {
		panic("image2bit: width must be a multiple of 4")
	}
	stride := w / 4
	return &HorizontalCrumb{
		Pix:    make([]byte, stride*h),
		Stride: stride,
		Rect:   r,
	}
}

// ColorModel returns the color model of the image.
func (p *HorizontalCrumb) ColorModel() color.Model {
	return Gray2Model
}

// Bounds returns the image bounds.
func (p *HorizontalCrumb) Bounds() image.Rectangle {
	return p.Rect
}

// At implements image.Image.
func (p *HorizontalCrumb) At(x, y int) color.Color {
	return p.Gray2At(x, y)
}

// Gray2At returns the Gray2 color of the pixel at (x, y).
func (p *HorizontalCrumb) Gray2At(x, y int) Gray2 {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return Gray2{}
	}
	offset, shift := p.pixOffset(x, y)
	return Gray2{Y: (p.Pix[offset] >> shift) & 0x03}
}

// Set sets the color of the pixel at (x, y). Points outside the image are
// ignored.
func (p *HorizontalCrumb) Set(x, y int, c color.Color) {
	p.SetGray2(x, y, Gray2Model.Convert(c).(Gray2))
}

// SetGray2 sets the Gray2 color of the pixel at (x, y).
// The other three pixels sharing the byte are left untouched.
func (p *HorizontalCrumb) SetGray2(x, y int, c Gray2) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	offset, shift := p.pixOffset(x, y)
	p.Pix[offset] = (p.Pix[offset] &^ (0x03 << shift)) | ((c.Y & 0x03) << shift)
}

// Fill sets every pixel to c.
func (p *HorizontalCrumb) Fill(c Gray2) {
	b := Replicate(c)
	for i := range p.Pix {
		p.Pix[i] = b
	}
}

// pixOffset returns the byte offset and bit shift for the pixel at (x, y).
// x%4 == 0 uses shift 6, x%4 == 3 uses shift 0.
func (p *HorizontalCrumb) pixOffset(x, y int) (offset int, shift uint) {
	dx := x - p.Rect.Min.X
	offset = (y-p.Rect.Min.Y)*p.Stride + dx/4
	shift = uint(2 * (3 - dx%4))
	return
}
