// Package epdsim emulates a GDE060BA panel behind its row bus.
//
// A Panel accepts the same calls as the physical bus, tracks the optical
// state each pixel reaches under the drive codes it receives, and can print
// the result to a terminal using ANSI colors.
//
// Useful while you are waiting for your panel to come by mail, and for tests.
package epdsim

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"sync"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/devices/v3/gde060ba/image2bit"
	"periph.io/x/devices/v3/gde060ba/waveform"
)

// MaxLevel is the optical state of a fully white pixel; 0 is fully black.
// Each ToBlack or ToWhite frame moves a pixel by one state.
const MaxLevel = 15

// levelStep is the optical distance between adjacent grey levels.
const levelStep = MaxLevel / 3

// Opts represents the options available for the emulated panel.
type Opts struct {
	W, H    int
	Palette *ansi256.Palette

	_ struct{}
}

// Stats counts the bus traffic received.
type Stats struct {
	PowerCycles int
	Frames      int
	Rows        int
}

// Panel is an emulated panel. It is safe for concurrent use.
type Panel struct {
	palette *ansi256.Palette

	mu      sync.Mutex
	w, h    int
	powered bool
	line    int
	latched bool
	latch   []byte
	optical []uint8
	stats   Stats
}

// New returns a white Panel.
func New(opts *Opts) *Panel {
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	optical := bytes.Repeat([]byte{MaxLevel}, opts.W*opts.H)
	return &Panel{
		palette: p,
		w:       opts.W,
		h:       opts.H,
		latch:   make([]byte, opts.W/4),
		optical: optical,
	}
}

func (p *Panel) String() string {
	return fmt.Sprintf("epdsim.Panel{%dx%d}", p.w, p.h)
}

// PowerOn engages the rails.
func (p *Panel) PowerOn() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.powered {
		return errors.New("epdsim: already powered on")
	}
	p.powered = true
	p.stats.PowerCycles++
	return nil
}

// PowerOff disengages the rails.
func (p *Panel) PowerOff() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.powered {
		return errors.New("epdsim: not powered on")
	}
	p.powered = false
	return nil
}

// StartScan starts a frame at the first gate row. Data left in the source
// latch from the previous frame is discarded.
func (p *Panel) StartScan() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.powered {
		return errors.New("epdsim: scan started while powered off")
	}
	p.line = 0
	p.latched = false
	p.stats.Frames++
	return nil
}

// SendRow shifts row into the source latch. The row latched by the previous
// call is driven onto the current gate row, so the last row of a frame only
// reaches the panel when one more row is sent.
func (p *Panel) SendRow(row []byte, width int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.powered {
		return errors.New("epdsim: row sent while powered off")
	}
	if width != p.w {
		return fmt.Errorf("epdsim: row width %d, want %d", width, p.w)
	}
	if len(row) != len(p.latch) {
		return fmt.Errorf("epdsim: row of %d bytes, want %d", len(row), len(p.latch))
	}
	if p.latched {
		if p.line < p.h {
			p.driveLocked(p.line)
		}
		p.line++
	}
	copy(p.latch, row)
	p.latched = true
	p.stats.Rows++
	return nil
}

// driveLocked applies the latched drive codes to gate row y.
func (p *Panel) driveLocked(y int) {
	px := p.optical[y*p.w : (y+1)*p.w]
	for i, b := range p.latch {
		for slot := 0; slot < 4; slot++ {
			x := i*4 + slot
			switch waveform.DriveCode(b >> (6 - 2*slot) & 0x3) {
			case waveform.ToBlack:
				if px[x] > 0 {
					px[x]--
				}
			case waveform.ToWhite:
				if px[x] < MaxLevel {
					px[x]++
				}
			}
		}
	}
}

// Powered reports whether the rails are on.
func (p *Panel) Powered() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.powered
}

// Stats returns the traffic counters.
func (p *Panel) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Optical returns the optical state of the pixel at native (x, y).
func (p *Panel) Optical(x, y int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return int(p.optical[y*p.w+x])
}

// Level returns the grey level nearest to the optical state at (x, y).
func (p *Panel) Level(x, y int) image2bit.Gray2 {
	o := p.Optical(x, y)
	return image2bit.Gray2{Y: uint8((o + levelStep/2) / levelStep)}
}

// Image returns a snapshot of the panel.
func (p *Panel) Image() *image.Gray {
	p.mu.Lock()
	defer p.mu.Unlock()
	img := image.NewGray(image.Rect(0, 0, p.w, p.h))
	for i, o := range p.optical {
		img.Pix[i] = o * (0xFF / MaxLevel)
	}
	return img
}

// Render writes the panel to w using ANSI colors, one block for every step
// pixels in each direction.
func (p *Panel) Render(w io.Writer, step int) error {
	if step < 1 {
		step = 1
	}
	img := p.Image()
	var buf bytes.Buffer
	for y := 0; y < p.h; y += step {
		_, _ = buf.WriteString("\033[0m")
		for x := 0; x < p.w; x += step {
			g := img.GrayAt(x, y).Y
			_, _ = buf.WriteString(p.palette.Block(color.NRGBA{R: g, G: g, B: g, A: 0xFF}))
		}
		_, _ = buf.WriteString("\033[0m\n")
	}
	_, err := buf.WriteTo(w)
	return err
}

// RenderStdout renders the panel on the console.
func (p *Panel) RenderStdout(step int) error {
	return p.Render(colorable.NewColorableStdout(), step)
}
