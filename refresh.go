package gde060ba

import (
	"fmt"
	"time"

	"periph.io/x/devices/v3/gde060ba/image2bit"
	"periph.io/x/devices/v3/gde060ba/testpattern"
	"periph.io/x/devices/v3/gde060ba/waveform"
)

// Refresh updates the panel to the content of the active buffer.
//
// The image currently on the panel is erased, the active buffer is drawn,
// then the two buffers swap roles: the image just drawn becomes the reference
// for the next erase, and the other buffer receives further writes. The new
// active buffer still holds the image from two refreshes ago.
//
// On a transport error the panel is powered off and the error is returned.
// The buffers are swapped only if every frame was sent, so a failing PowerOff
// alone still records the new image as shown.
func (d *Dev) Refresh() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return errHalted
	}
	return d.refreshLocked()
}

func (d *Dev) refreshLocked() error {
	start := time.Now()
	eraseFrames, drawFrames := d.erase.Frames(), d.draw.Frames()-1

	eh := d.powerUp()
	d.pass(&eh, d.erase, d.reference.Pix, eraseFrames)
	d.pass(&eh, d.draw, d.active.Pix, drawFrames)
	// Once every frame is out the panel shows active, even if PowerOff fails.
	drawn := eh.err == nil
	err := d.powerDown(&eh)
	if drawn {
		d.active, d.reference = d.reference, d.active
		d.dirty = false
	}
	if err != nil {
		d.log.Error("refresh failed", "error", err, "swapped", drawn)
		return fmt.Errorf("gde060ba: refresh: %w", err)
	}
	d.log.Debug("refresh", "erase_frames", eraseFrames, "draw_frames", drawFrames, "duration", time.Since(start))
	return nil
}

// EraseDisplay forces the panel to white regardless of the buffer contents,
// then fills both buffers with white.
func (d *Dev) EraseDisplay() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return errHalted
	}
	return d.eraseLocked()
}

func (d *Dev) eraseLocked() error {
	start := time.Now()
	eh := d.powerUp()
	// A nil source pads every byte with the all-white entry.
	d.pass(&eh, d.erase, nil, d.erase.Frames())
	if err := d.powerDown(&eh); err != nil {
		d.log.Error("erase failed", "error", err)
		return fmt.Errorf("gde060ba: erase: %w", err)
	}
	d.active.Fill(image2bit.White)
	d.reference.Fill(image2bit.White)
	d.dirty = false
	d.log.Debug("erase", "frames", d.erase.Frames(), "duration", time.Since(start))
	return nil
}

// ShowTestPicture runs the self-test: the panel is erased as if it showed
// test picture nr, then the other test picture is drawn using the full draw
// waveform. The active buffer is left untouched; the reference buffer is set
// to the picture shown.
func (d *Dev) ShowTestPicture(nr int) error {
	if nr != 0 && nr != 1 {
		return fmt.Errorf("gde060ba: no test picture %d", nr)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return errHalted
	}
	if d.pictures[0] == nil {
		w, h := d.rect.Dx(), d.rect.Dy()
		d.pictures[0] = testpattern.Picture(0, w, h)
		d.pictures[1] = testpattern.Picture(1, w, h)
	}
	erased, drawn := d.pictures[nr], d.pictures[1-nr]

	eh := d.powerUp()
	d.pass(&eh, d.erase, erased, d.erase.Frames())
	if eh.err == nil {
		time.Sleep(d.settle)
	}
	d.pass(&eh, d.draw, drawn, d.draw.Frames())
	if err := d.powerDown(&eh); err != nil {
		return fmt.Errorf("gde060ba: test picture: %w", err)
	}
	copy(d.reference.Pix, drawn)
	d.log.Debug("test picture", "nr", nr)
	return nil
}

// powerUp powers the panel and waits for the rails to settle.
func (d *Dev) powerUp() errorHandler {
	eh := errorHandler{t: d.t}
	eh.powerOn()
	if eh.err == nil {
		time.Sleep(d.settle)
	}
	return eh
}

// powerDown waits for the last frame to settle and powers the panel off. It
// returns the first error seen since powerUp.
func (d *Dev) powerDown(eh *errorHandler) error {
	if eh.powered && eh.err == nil {
		time.Sleep(d.settle)
	}
	eh.powerOff()
	return eh.err
}

// pass scans frames frames of src through tbl. Bytes beyond len(src) are
// sent as white. Every frame ends with a repeat of the last row, which
// flushes it out of the source driver latch.
func (d *Dev) pass(eh *errorHandler, tbl *waveform.Table, src []byte, frames int) {
	n := len(d.row)
	width := d.rect.Dx()
	for f := 0; f < frames && eh.err == nil; f++ {
		eh.startScan()
		for line := 0; line < d.rect.Dy(); line++ {
			x := line * n
			i := 0
			for ; i < n && x < len(src); i, x = i+1, x+1 {
				d.row[i] = tbl.At(src[x], f)
			}
			for ; i < n; i++ {
				d.row[i] = tbl.At(0xFF, f)
			}
			eh.sendRow(d.row, width)
		}
		eh.sendRow(d.row, width)
		d.log.Trace("frame", "frame", f, "of", frames)
	}
}
