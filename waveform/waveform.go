// Package waveform expands per-level drive sequences into the per-byte lookup
// tables consumed while scanning a 2-bit packed framebuffer.
//
// A Seed says, for each of the four grey levels, which drive code the source
// driver must latch at each frame of a refresh phase. A Table holds the same
// information for every possible packed byte, so a row of four-pixel bytes can
// be converted with one lookup per byte.
package waveform

import (
	"errors"
	"fmt"
)

// DriveCode is the 2-bit value latched per pixel by the source drivers.
type DriveCode uint8

// Source driver codes.
const (
	Hold    DriveCode = 0x0
	ToBlack DriveCode = 0x1
	ToWhite DriveCode = 0x2
	HoldAlt DriveCode = 0x3
)

func (c DriveCode) String() string {
	switch c {
	case Hold:
		return "hold"
	case ToBlack:
		return "black"
	case ToWhite:
		return "white"
	case HoldAlt:
		return "hold-alt"
	}
	return fmt.Sprintf("DriveCode(%d)", uint8(c))
}

// Seed is a drive sequence per grey level, indexed [level][frame].
type Seed [4][]DriveCode

// Frames returns the number of frames of the seed.
func (s *Seed) Frames() int {
	return len(s[0])
}

// Validate checks that all levels have the same non-zero length and that all
// codes fit in 2 bits.
func (s *Seed) Validate() error {
	n := len(s[0])
	if n == 0 {
		return errors.New("waveform: empty seed")
	}
	for lvl, row := range s {
		if len(row) != n {
			return fmt.Errorf("waveform: level %d has %d frames, want %d", lvl, len(row), n)
		}
		for f, c := range row {
			if c > 0x3 {
				return fmt.Errorf("waveform: level %d frame %d: code %d does not fit in 2 bits", lvl, f, c)
			}
		}
	}
	return nil
}

// Table maps every packed byte value at every frame to the byte the transport
// must emit.
type Table struct {
	frames int
	lut    []byte // 256 rows of frames bytes
}

// Build expands the first frames frames of seed into a Table.
//
// Each 2-bit field of a byte is substituted independently through the seed,
// and the result keeps the field in the same bit position. Build has no side
// effects and always returns the same table for the same input.
func Build(seed Seed, frames int) (*Table, error) {
	if err := seed.Validate(); err != nil {
		return nil, err
	}
	if frames <= 0 || frames > seed.Frames() {
		return nil, fmt.Errorf("waveform: %d frames requested from a %d frame seed", frames, seed.Frames())
	}
	t := &Table{
		frames: frames,
		lut:    make([]byte, 256*frames),
	}
	for b := 0; b < 256; b++ {
		row := t.lut[b*frames : (b+1)*frames]
		for f := range row {
			var out byte
			for shift := uint(0); shift < 8; shift += 2 {
				lvl := (b >> shift) & 0x3
				out |= byte(seed[lvl][f]) << shift
			}
			row[f] = out
		}
	}
	return t, nil
}

// Frames returns the number of frames in the table.
func (t *Table) Frames() int {
	return t.frames
}

// At returns the output byte for packed byte b at frame f.
func (t *Table) At(b byte, f int) byte {
	return t.lut[int(b)*t.frames+f]
}

// Waveform is the pair of seeds driving one refresh: Erase neutralises the
// previous image, Draw commits the new one.
type Waveform struct {
	Erase Seed
	Draw  Seed
}

// Tables builds the full-length erase and draw tables.
func (w *Waveform) Tables() (erase, draw *Table, err error) {
	if w.Draw.Frames() < 2 {
		return nil, nil, errors.New("waveform: draw seed needs at least 2 frames")
	}
	if erase, err = Build(w.Erase, w.Erase.Frames()); err != nil {
		return nil, nil, fmt.Errorf("erase: %w", err)
	}
	if draw, err = Build(w.Draw, w.Draw.Frames()); err != nil {
		return nil, nil, fmt.Errorf("draw: %w", err)
	}
	return erase, draw, nil
}
