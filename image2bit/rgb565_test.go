package image2bit

import (
	"image/color"
	"testing"
)

func TestClassifySentinels(t *testing.T) {
	tests := []struct {
		c    RGB565
		want Gray2
	}{
		{Black565, Black},
		{DarkGrey565, DarkGrey},
		{LightGrey565, LightGrey},
		{White565, White},
	}
	for _, tt := range tests {
		if got := Classify(tt.c); got != tt.want {
			t.Errorf("Classify(0x%04X) = %v, want %v", uint16(tt.c), got, tt.want)
		}
	}
}

func TestClassifyMonotonic(t *testing.T) {
	// Walk the grey ramp of the 5-6-5 space; level must never decrease.
	prev := Black
	prevBr := -1
	for v := 0; v < 32; v++ {
		c := RGB565(v<<11 | (v*2)<<5 | v)
		br := Brightness(c)
		if br < prevBr {
			t.Fatalf("brightness ramp not increasing at %d", v)
		}
		got := Classify(c)
		if got.Y < prev.Y {
			t.Errorf("Classify(0x%04X) = %v, darker than previous %v", uint16(c), got, prev)
		}
		prev, prevBr = got, br
	}
	if prev != White {
		t.Errorf("top of ramp classified as %v, want white", prev)
	}
}

func TestClassifyAcrossThresholds(t *testing.T) {
	// a < b < c straddle the boundaries.
	a := RGB565(0x2104) // r=4 g=8 b=4
	b := RGB565(0x8410) // r=16 g=32 b=16
	c := RGB565(0xE71C) // r=28 g=56 b=28
	ga, gb, gc := Classify(a), Classify(b), Classify(c)
	if !(Brightness(a) < Brightness(b) && Brightness(b) < Brightness(c)) {
		t.Fatal("test inputs not ordered by brightness")
	}
	if ga != Black || gb != DarkGrey || gc != White {
		t.Errorf("Classify = %v, %v, %v; want black, dark-grey, white", ga, gb, gc)
	}
}

func TestChannels(t *testing.T) {
	tests := []struct {
		name    string
		c       RGB565
		r, g, b uint8
	}{
		{"red", 0xF800, 0xFF, 0, 0},
		{"green", 0x07E0, 0, 0xFF, 0},
		{"blue", 0x001F, 0, 0, 0xFF},
		// Bit 8 belongs to green in 5-6-5; it must not leak into red.
		{"green bit 8", 0x0100, 0, 0x20, 0},
		{"red bit 11", 0x0800, 0x08, 0, 0},
		{"dark grey", DarkGrey565, 123, 125, 123},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b := tt.c.Channels()
			if r != tt.r || g != tt.g || b != tt.b {
				t.Errorf("Channels() = (%d, %d, %d), want (%d, %d, %d)", r, g, b, tt.r, tt.g, tt.b)
			}
		})
	}
}

func TestPureChannelsClassify(t *testing.T) {
	// A single saturated channel sums to 255: dark grey.
	for _, c := range []RGB565{0xF800, 0x07E0, 0x001F} {
		if got := Classify(c); got != DarkGrey {
			t.Errorf("Classify(0x%04X) = %v, want dark-grey", uint16(c), got)
		}
	}
}

func TestClassifyReachesEveryLevel(t *testing.T) {
	// Near misses of each named grey, none of them a sentinel.
	tests := []struct {
		c    RGB565
		want Gray2
	}{
		{0x0821, Black},
		{0x7BEE, DarkGrey},
		{0xC619, LightGrey},
		{0xFFDF, White},
	}
	for _, tt := range tests {
		if got := Classify(tt.c); got != tt.want {
			t.Errorf("Classify(0x%04X) = %v, want %v", uint16(tt.c), got, tt.want)
		}
	}
}

func TestPack565(t *testing.T) {
	tests := []struct {
		name string
		in   color.Color
		want RGB565
	}{
		{"black", color.Black, Black565},
		{"white", color.White, White565},
		{"red", color.RGBA{0xFF, 0, 0, 0xFF}, 0xF800},
		{"passthrough", RGB565(0x1234), 0x1234},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Pack565(tt.in); got != tt.want {
				t.Errorf("Pack565(%v) = 0x%04X, want 0x%04X", tt.in, uint16(got), uint16(tt.want))
			}
		})
	}
}
