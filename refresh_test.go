package gde060ba

import (
	"bytes"
	"errors"
	"image"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/go-hclog"
	"periph.io/x/devices/v3/gde060ba/edbus"
	"periph.io/x/devices/v3/gde060ba/epdsim"
	"periph.io/x/devices/v3/gde060ba/image2bit"
	"periph.io/x/devices/v3/gde060ba/testpattern"
	"periph.io/x/devices/v3/gde060ba/waveform"
)

var (
	_ Transport = (*epdsim.Panel)(nil)
	_ Transport = (*edbus.Bus)(nil)
)

// fakeBus records the traffic it receives. Rows are grouped per frame.
type fakeBus struct {
	on, off int
	frames  [][][]byte
	calls   []string

	// failRow makes the n-th SendRow call fail, counting from 1.
	failRow int
	rows    int

	failOff bool
}

var errBus = errors.New("bus failure")

func (f *fakeBus) PowerOn() error {
	f.on++
	f.calls = append(f.calls, "on")
	return nil
}

func (f *fakeBus) PowerOff() error {
	f.off++
	f.calls = append(f.calls, "off")
	if f.failOff {
		return errBus
	}
	return nil
}

func (f *fakeBus) StartScan() error {
	f.frames = append(f.frames, nil)
	f.calls = append(f.calls, "scan")
	return nil
}

func (f *fakeBus) SendRow(row []byte, width int) error {
	f.rows++
	if f.rows == f.failRow {
		return errBus
	}
	if len(row) != width/4 {
		return errors.New("bad row length")
	}
	last := len(f.frames) - 1
	f.frames[last] = append(f.frames[last], append([]byte(nil), row...))
	return nil
}

func (f *fakeBus) scans() int {
	n := 0
	for _, c := range f.calls {
		if c == "scan" {
			n++
		}
	}
	return n
}

func (f *fakeBus) reset() {
	*f = fakeBus{failRow: f.failRow, failOff: f.failOff}
}

func TestRefreshTraffic(t *testing.T) {
	d, bus := newTestDev(t, 8, 4, NoRotation)
	if err := d.Refresh(); err != nil {
		t.Fatal(err)
	}
	eraseFrames := waveform.GDE060BA.Erase.Frames()
	drawFrames := waveform.GDE060BA.Draw.Frames() - 1
	if got := bus.scans(); got != eraseFrames+drawFrames {
		t.Errorf("frames = %d, want %d", got, eraseFrames+drawFrames)
	}
	if bus.calls[0] != "on" || bus.calls[len(bus.calls)-1] != "off" {
		t.Errorf("calls not bracketed by power: first %q last %q", bus.calls[0], bus.calls[len(bus.calls)-1])
	}
	for i, f := range bus.frames {
		// One row per line plus the trailing flush row.
		if len(f) != 5 {
			t.Fatalf("frame %d has %d rows, want 5", i, len(f))
		}
		if !bytes.Equal(f[4], f[3]) {
			t.Errorf("frame %d flush row %x differs from the last row %x", i, f[4], f[3])
		}
	}
}

func TestRefreshRows(t *testing.T) {
	d, bus := newTestDev(t, 8, 4, NoRotation)
	d.SetGray2(0, 0, image2bit.Black)
	if err := d.Refresh(); err != nil {
		t.Fatal(err)
	}
	erased, drawn := d.erase.Frames(), d.draw
	// First draw frame: the black pixel is driven, the rest of the row held.
	got := bus.frames[erased][0]
	want := []byte{drawn.At(0x3F, 0), drawn.At(0xFF, 0)}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("first draw row (-got +want):\n%s", diff)
	}
	if got[0] != 0x40 {
		t.Errorf("first draw byte = %#x, want 0x40 (ToBlack on the first pixel)", got[0])
	}

	// The next erase starts from the image just drawn.
	bus.reset()
	if err := d.Refresh(); err != nil {
		t.Fatal(err)
	}
	if got := bus.frames[0][0][0]; got != 0x80 {
		t.Errorf("first erase byte = %#x, want 0x80 (ToWhite on the first pixel)", got)
	}
}

func TestRefreshSwapsBuffers(t *testing.T) {
	d, _ := newTestDev(t, 8, 4, NoRotation)
	d.SetGray2(1, 1, image2bit.Black)
	if err := d.Refresh(); err != nil {
		t.Fatal(err)
	}
	if got := d.reference.Gray2At(1, 1); got != image2bit.Black {
		t.Errorf("reference (1, 1) = %v, want black", got)
	}
	// The new active buffer is the previous reference.
	if got := d.Gray2At(1, 1); got != image2bit.White {
		t.Errorf("active (1, 1) = %v, want white", got)
	}
	d.SetGray2(2, 2, image2bit.DarkGrey)
	if err := d.Refresh(); err != nil {
		t.Fatal(err)
	}
	if got := d.Gray2At(1, 1); got != image2bit.Black {
		t.Errorf("active (1, 1) = %v, want the image from two refreshes ago", got)
	}
}

func TestRefreshError(t *testing.T) {
	d, bus := newTestDev(t, 8, 4, NoRotation)
	bus.failRow = 7
	d.SetGray2(0, 0, image2bit.Black)
	err := d.Refresh()
	if !errors.Is(err, errBus) {
		t.Fatalf("Refresh() = %v, want %v", err, errBus)
	}
	if bus.off != 1 {
		t.Errorf("PowerOff calls = %d, want 1", bus.off)
	}
	if bus.rows != 7 {
		t.Errorf("rows sent = %d, traffic continued after the error", bus.rows)
	}
	if got := d.Gray2At(0, 0); got != image2bit.Black {
		t.Errorf("buffers swapped after a failed refresh: active (0, 0) = %v", got)
	}
	if got := d.reference.Gray2At(0, 0); got != image2bit.White {
		t.Errorf("reference (0, 0) = %v, want white", got)
	}
}

func TestRefreshPowerOffError(t *testing.T) {
	d, bus := newTestDev(t, 8, 4, NoRotation)
	bus.failOff = true
	d.SetGray2(0, 0, image2bit.Black)
	if err := d.Refresh(); !errors.Is(err, errBus) {
		t.Fatalf("Refresh() = %v, want %v", err, errBus)
	}
	// Every frame went out, so the panel shows the new image.
	if got := d.reference.Gray2At(0, 0); got != image2bit.Black {
		t.Errorf("reference (0, 0) = %v, want black", got)
	}

	bus.reset()
	bus.failOff = false
	if err := d.Refresh(); err != nil {
		t.Fatal(err)
	}
	if got := bus.frames[0][0][0]; got != 0x80 {
		t.Errorf("first erase byte = %#x, want 0x80 (ToWhite on the first pixel)", got)
	}
}

type failPowerOn struct{ fakeBus }

func (f *failPowerOn) PowerOn() error { return errBus }

func TestRefreshPowerOnError(t *testing.T) {
	bus := &failPowerOn{}
	d, err := New(bus, &Opts{W: 8, H: 4, SettleDelay: time.Nanosecond})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Refresh(); !errors.Is(err, errBus) {
		t.Fatalf("Refresh() = %v, want %v", err, errBus)
	}
	if bus.off != 0 || len(bus.calls) != 0 {
		t.Errorf("bus used after a failed PowerOn: %v", bus.calls)
	}
}

func TestEraseDisplay(t *testing.T) {
	d, bus := newTestDev(t, 8, 4, NoRotation)
	d.Fill(image2bit.Black)
	if err := d.EraseDisplay(); err != nil {
		t.Fatal(err)
	}
	if got := bus.scans(); got != d.erase.Frames() {
		t.Errorf("frames = %d, want %d", got, d.erase.Frames())
	}
	// Every row is padded with the white entry, whatever the buffers hold.
	for f, rows := range bus.frames {
		want := d.erase.At(0xFF, f)
		for _, r := range rows {
			for _, b := range r {
				if b != want {
					t.Fatalf("frame %d byte %#x, want %#x", f, b, want)
				}
			}
		}
	}
	for i := range d.active.Pix {
		if d.active.Pix[i] != 0xFF || d.reference.Pix[i] != 0xFF {
			t.Fatalf("buffers not white after erase at byte %d", i)
		}
	}
}

func TestShowTestPicture(t *testing.T) {
	d, bus := newTestDev(t, 16, 8, NoRotation)
	if err := d.ShowTestPicture(2); err == nil {
		t.Error("ShowTestPicture(2) should fail")
	}
	if bus.on != 0 {
		t.Error("invalid picture number touched the bus")
	}
	d.SetGray2(0, 0, image2bit.DarkGrey)
	if err := d.ShowTestPicture(0); err != nil {
		t.Fatal(err)
	}
	if got, want := bus.scans(), d.erase.Frames()+d.draw.Frames(); got != want {
		t.Errorf("frames = %d, want %d", got, want)
	}
	if bus.on != 1 || bus.off != 1 {
		t.Errorf("power cycles = %d/%d, want 1/1", bus.on, bus.off)
	}
	want := testpattern.Picture(1, 16, 8)
	if !bytes.Equal(d.reference.Pix, want) {
		t.Errorf("reference = %x, want picture 1 %x", d.reference.Pix, want)
	}
	if got := d.Gray2At(0, 0); got != image2bit.DarkGrey {
		t.Errorf("active buffer changed: (0, 0) = %v", got)
	}
}

func TestRefreshLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := hclog.New(&hclog.LoggerOptions{Name: "gde060ba", Output: &buf, Level: hclog.Debug})
	d, err := New(&fakeBus{}, &Opts{W: 8, H: 4, SettleDelay: time.Nanosecond, Logger: logger})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Refresh(); err != nil {
		t.Fatal(err)
	}
	if out := buf.String(); !strings.Contains(out, "refresh") || !strings.Contains(out, "erase_frames=45") {
		t.Errorf("log output = %q", out)
	}
}

// levelAt is the test image: columns of 4 pixels cycle through the greys,
// shifted by one on every row.
func levelAt(x, y int) image2bit.Gray2 {
	return image2bit.Gray2{Y: uint8((x/4 + y) % 4)}
}

func checkPanel(t *testing.T, p *epdsim.Panel, want func(x, y int) image2bit.Gray2) {
	t.Helper()
	for y := 0; y < 8; y++ {
		for x := 0; x < 16; x++ {
			if got := p.Level(x, y); got != want(x, y) {
				t.Fatalf("panel (%d, %d) = %v (optical %d), want %v", x, y, got, p.Optical(x, y), want(x, y))
			}
		}
	}
}

func TestRefreshPanel(t *testing.T) {
	p := epdsim.New(&epdsim.Opts{W: 16, H: 8})
	d, err := New(p, &Opts{W: 16, H: 8, SettleDelay: time.Nanosecond})
	if err != nil {
		t.Fatal(err)
	}
	for y := 0; y < 8; y++ {
		for x := 0; x < 16; x++ {
			d.SetGray2(x, y, levelAt(x, y))
		}
	}
	if err := d.Refresh(); err != nil {
		t.Fatal(err)
	}
	checkPanel(t, p, levelAt)

	// Replace with the inverse; the erase pass must clear the first image.
	inverse := func(x, y int) image2bit.Gray2 {
		return image2bit.Gray2{Y: 3 - levelAt(x, y).Y}
	}
	for y := 0; y < 8; y++ {
		for x := 0; x < 16; x++ {
			d.SetGray2(x, y, inverse(x, y))
		}
	}
	if err := d.Refresh(); err != nil {
		t.Fatal(err)
	}
	checkPanel(t, p, inverse)

	if err := d.EraseDisplay(); err != nil {
		t.Fatal(err)
	}
	checkPanel(t, p, func(x, y int) image2bit.Gray2 { return image2bit.White })

	if p.Powered() {
		t.Error("panel left powered")
	}
	if got := p.Stats().PowerCycles; got != 3 {
		t.Errorf("power cycles = %d, want 3", got)
	}
}

func TestShowTestPicturePanel(t *testing.T) {
	p := epdsim.New(&epdsim.Opts{W: 16, H: 8})
	d, err := New(p, &Opts{W: 16, H: 8, SettleDelay: time.Nanosecond})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.ShowTestPicture(1); err != nil {
		t.Fatal(err)
	}
	pic := image2bit.NewHorizontalCrumb(image.Rect(0, 0, 16, 8))
	copy(pic.Pix, testpattern.Picture(0, 16, 8))
	checkPanel(t, p, pic.Gray2At)
}
