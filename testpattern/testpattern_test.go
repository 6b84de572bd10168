package testpattern

import (
	"bytes"
	"image"
	"testing"

	"periph.io/x/devices/v3/gde060ba/image2bit"
)

func TestPictureSize(t *testing.T) {
	tests := []struct {
		name string
		w, h int
	}{
		{"panel", 800, 600},
		{"small", 64, 48},
		{"tiny", 4, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for nr := 0; nr < 2; nr++ {
				if got, want := len(Picture(nr, tt.w, tt.h)), tt.w*tt.h/4; got != want {
					t.Errorf("len(Picture(%d)) = %d, want %d", nr, got, want)
				}
			}
		})
	}
}

func TestPictureDeterministic(t *testing.T) {
	for nr := 0; nr < 2; nr++ {
		a, b := Picture(nr, 160, 120), Picture(nr, 160, 120)
		if !bytes.Equal(a, b) {
			t.Errorf("Picture(%d) differs between calls", nr)
		}
	}
}

func TestPicturesDiffer(t *testing.T) {
	if bytes.Equal(Picture(0, 160, 120), Picture(1, 160, 120)) {
		t.Error("test pictures 0 and 1 are identical")
	}
}

func TestGreyBarsUseAllLevels(t *testing.T) {
	const w, h = 160, 120
	img := &image2bit.HorizontalCrumb{
		Pix:    Picture(0, w, h),
		Stride: w / 4,
		Rect:   image.Rect(0, 0, w, h),
	}
	// Sample the lower part of each bar, away from labels and edges.
	y := h - 4
	for i, want := range []image2bit.Gray2{image2bit.Black, image2bit.DarkGrey, image2bit.LightGrey, image2bit.White} {
		x := i*w/4 + 4
		if got := img.Gray2At(x, y); got != want {
			t.Errorf("bar %d at (%d, %d) = %v, want %v", i, x, y, got, want)
		}
	}
}

func TestUnknownPictureIsWhite(t *testing.T) {
	for i, b := range Picture(7, 8, 4) {
		if b != 0xFF {
			t.Fatalf("Pix[%d] = 0x%02X, want 0xFF", i, b)
		}
	}
}

func TestPack(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 4, 1))
	src.Pix = []byte{0x00, 0xFF, 0x80, 0xC0}
	got := Pack(src)
	// black, white, dark grey, light grey
	if len(got) != 1 || got[0] != 0x36 {
		t.Errorf("Pack() = %x, want 36", got)
	}
}
