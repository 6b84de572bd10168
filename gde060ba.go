// Package gde060ba drives the GDE060BA 800x600 4-grey e-paper panel.
//
// See the examples for how to use this package.
package gde060ba

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"periph.io/x/conn/v3/display"
	"periph.io/x/devices/v3/gde060ba/image2bit"
	"periph.io/x/devices/v3/gde060ba/waveform"
)

// Native panel geometry.
const (
	Width  = 800
	Height = 600
)

// DefaultSettleDelay is the pause around power transitions.
const DefaultSettleDelay = 25 * time.Millisecond

var errHalted = errors.New("gde060ba: halted")

// Opts is the configuration for the GDE060BA display.
type Opts struct {
	// Native panel dimensions in pixels
	W int // Width (default: 800, must be a multiple of 4)
	H int // Height (default: 600)

	// Rotation of the logical image.
	Rotation Rotation

	// Waveform drives the erase and draw phases (default: waveform.GDE060BA).
	Waveform *waveform.Waveform

	// SettleDelay is held after power on and before power off
	// (default: DefaultSettleDelay).
	SettleDelay time.Duration

	// Logger receives refresh diagnostics (default: discard).
	Logger hclog.Logger
}

// Dev is the device handle for the GDE060BA display.
type Dev struct {
	t   Transport
	log hclog.Logger

	// Display geometry, native orientation
	rect     image.Rectangle
	rotation Rotation

	settle time.Duration

	// Expanded waveform tables, read-only after New
	erase *waveform.Table
	draw  *waveform.Table

	// mu serializes refreshes and pixel writes.
	mu sync.Mutex

	// Pixel buffers: active receives writes, reference holds the image
	// currently on the panel, which the next erase pass neutralises.
	active    *image2bit.HorizontalCrumb
	reference *image2bit.HorizontalCrumb

	// Scratch row, reused across rows and frames
	row []byte

	pictures [2][]byte

	// dirty is set when active was written since the last refresh or erase.
	dirty bool

	halted bool
}

// New creates a new GDE060BA device driving the panel through t.
//
// opts can be nil to use defaults (800x600 panel, default waveform).
// Both framebuffers start white.
func New(t Transport, opts *Opts) (*Dev, error) {
	if t == nil {
		return nil, errors.New("gde060ba: nil transport")
	}
	o := Opts{}
	if opts != nil {
		o = *opts
	}
	if o.W == 0 && o.H == 0 {
		o.W, o.H = Width, Height
	}
	if o.W <= 0 || o.W%4 != 0 {
		return nil, errors.New("gde060ba: width must be a positive multiple of 4")
	}
	if o.H <= 0 {
		return nil, errors.New("gde060ba: height must be positive")
	}
	if o.Rotation > Rotate270 {
		return nil, fmt.Errorf("gde060ba: invalid rotation %d", o.Rotation)
	}
	if o.Waveform == nil {
		o.Waveform = &waveform.GDE060BA
	}
	if o.SettleDelay == 0 {
		o.SettleDelay = DefaultSettleDelay
	}
	if o.Logger == nil {
		o.Logger = hclog.NewNullLogger()
	}

	erase, draw, err := o.Waveform.Tables()
	if err != nil {
		return nil, fmt.Errorf("gde060ba: %w", err)
	}

	rect := image.Rect(0, 0, o.W, o.H)
	d := &Dev{
		t:         t,
		log:       o.Logger,
		rect:      rect,
		rotation:  o.Rotation,
		settle:    o.SettleDelay,
		erase:     erase,
		draw:      draw,
		active:    image2bit.NewHorizontalCrumb(rect),
		reference: image2bit.NewHorizontalCrumb(rect),
		row:       make([]byte, o.W/4),
	}
	d.active.Fill(image2bit.White)
	d.reference.Fill(image2bit.White)
	return d, nil
}

// ColorModel returns the color model of the display.
func (d *Dev) ColorModel() color.Model {
	return image2bit.Gray2Model
}

// Bounds returns the visible bounds, taking rotation into account.
func (d *Dev) Bounds() image.Rectangle {
	w, h := logicalSize(d.Rotation(), d.rect.Dx(), d.rect.Dy())
	return image.Rect(0, 0, w, h)
}

// Rotation returns the current rotation.
func (d *Dev) Rotation() Rotation {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rotation
}

// SetRotation changes how logical coordinates map onto the panel. Pixels
// already written stay where they are on the panel.
func (d *Dev) SetRotation(r Rotation) error {
	if r > Rotate270 {
		return fmt.Errorf("gde060ba: invalid rotation %d", r)
	}
	d.mu.Lock()
	d.rotation = r
	d.mu.Unlock()
	return nil
}

// At returns the color written at (x, y) in the active buffer.
func (d *Dev) At(x, y int) color.Color {
	return d.Gray2At(x, y)
}

// Gray2At returns the level written at (x, y) in the active buffer.
func (d *Dev) Gray2At(x, y int) image2bit.Gray2 {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := nativePoint(x, y, d.rotation, d.rect.Dx(), d.rect.Dy())
	if !ok {
		return image2bit.Gray2{}
	}
	return d.active.Gray2At(p.X, p.Y)
}

// Set writes c at (x, y) in the active buffer. Points outside the visible
// rectangle are ignored.
func (d *Dev) Set(x, y int, c color.Color) {
	d.SetGray2(x, y, image2bit.Gray2Model.Convert(c).(image2bit.Gray2))
}

// SetGray2 writes level c at (x, y) in the active buffer.
func (d *Dev) SetGray2(x, y int, c image2bit.Gray2) {
	d.mu.Lock()
	d.setLocked(x, y, c)
	d.mu.Unlock()
}

func (d *Dev) setLocked(x, y int, c image2bit.Gray2) {
	p, ok := nativePoint(x, y, d.rotation, d.rect.Dx(), d.rect.Dy())
	if !ok {
		return
	}
	d.active.SetGray2(p.X, p.Y, c)
	d.dirty = true
}

// Fill sets the whole active buffer to c.
func (d *Dev) Fill(c color.Color) {
	g := image2bit.Gray2Model.Convert(c).(image2bit.Gray2)
	d.mu.Lock()
	d.active.Fill(g)
	d.dirty = true
	d.mu.Unlock()
}

// DrawBitmap plots a 1 bit per pixel, row-major, MSB-first bitmap of w×h
// pixels at (x, y). Set bits are plotted white, clear bits in fg.
func (d *Dev) DrawBitmap(x, y int, bitmap []byte, w, h int, fg color.Color) {
	g := image2bit.Gray2Model.Convert(fg).(image2bit.Gray2)
	stride := (w + 7) / 8
	d.mu.Lock()
	defer d.mu.Unlock()
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			idx := j*stride + i/8
			if idx >= len(bitmap) {
				return
			}
			c := g
			if bitmap[idx]&(0x80>>(i%8)) != 0 {
				c = image2bit.White
			}
			d.setLocked(x+i, y+j, c)
		}
	}
}

// FillTest writes a banded grey test layout into the active buffer: black,
// dark grey, a black and white stripe pattern, then white.
func (d *Dev) FillTest() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dirty = true
	n := len(d.active.Pix)
	for i := range d.active.Pix {
		switch {
		case i < n*3/8:
			d.active.Pix[i] = 0x00
		case i < n/2:
			d.active.Pix[i] = 0x55
		case i < n*3/4:
			d.active.Pix[i] = 0xCC
		default:
			d.active.Pix[i] = 0xFF
		}
	}
}

// Write copies raw pixel data in HorizontalCrumb format, native orientation,
// into the active buffer and refreshes the panel.
// The data must be exactly W*H/4 bytes.
func (d *Dev) Write(pixels []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return 0, errHalted
	}
	if len(pixels) != len(d.active.Pix) {
		return 0, errors.New("gde060ba: invalid buffer size")
	}
	copy(d.active.Pix, pixels)
	if err := d.refreshLocked(); err != nil {
		return 0, err
	}
	return len(pixels), nil
}

// Draw draws src over the image currently shown, or over the active buffer
// when it holds writes not yet refreshed, and refreshes the panel.
// The dst rectangle is in logical (rotated) coordinates.
func (d *Dev) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return errHalted
	}

	w, h := logicalSize(d.rotation, d.rect.Dx(), d.rect.Dy())
	bounds := image.Rect(0, 0, w, h)
	dst = dst.Intersect(bounds)
	if dst.Empty() {
		return nil
	}

	// Fast path: a full-size native image needs no conversion
	if srcImg, ok := src.(*image2bit.HorizontalCrumb); ok {
		if d.rotation == NoRotation && dst == d.rect && sp == (image.Point{}) && srcImg.Rect == d.rect {
			copy(d.active.Pix, srcImg.Pix)
			return d.refreshLocked()
		}
	}

	// Start from what the panel shows so that only dst changes, unless
	// writes are pending in active.
	if !d.dirty {
		copy(d.active.Pix, d.reference.Pix)
	}
	draw.Draw(canvas{d: d, rect: bounds}, dst, src, sp, draw.Src)
	return d.refreshLocked()
}

// Halt erases the panel. After calling Halt, the device refuses further
// refreshes.
func (d *Dev) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return nil
	}
	err := d.eraseLocked()
	d.halted = true
	return err
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("gde060ba.Dev{%dx%d}", d.rect.Dx(), d.rect.Dy())
}

// canvas exposes the active buffer in logical coordinates to image/draw
// while d.mu is held.
type canvas struct {
	d    *Dev
	rect image.Rectangle
}

func (c canvas) ColorModel() color.Model { return image2bit.Gray2Model }

func (c canvas) Bounds() image.Rectangle { return c.rect }

func (c canvas) At(x, y int) color.Color {
	p, ok := nativePoint(x, y, c.d.rotation, c.d.rect.Dx(), c.d.rect.Dy())
	if !ok {
		return image2bit.Gray2{}
	}
	return c.d.active.Gray2At(p.X, p.Y)
}

func (c canvas) Set(x, y int, col color.Color) {
	c.d.setLocked(x, y, image2bit.Gray2Model.Convert(col).(image2bit.Gray2))
}

var _ display.Drawer = &Dev{}
var _ draw.Image = &Dev{}
