// Package testpattern renders the two self-test pictures shown by
// gde060ba.Dev.ShowTestPicture.
//
// Pictures are returned in the panel's native packing (see image2bit) so they
// can be scanned directly.
package testpattern

import (
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"periph.io/x/devices/v3/gde060ba/image2bit"
)

var (
	regularOnce sync.Once
	regular     *truetype.Font
)

// headingFace returns a goregular face scaled to the picture height.
func headingFace(h int) font.Face {
	regularOnce.Do(func() {
		f, err := truetype.Parse(goregular.TTF)
		if err != nil {
			panic(err)
		}
		regular = f
	})
	return truetype.NewFace(regular, &truetype.Options{Size: max(float64(h)/10, 8)})
}

// levels are the four panel greys, darkest first.
var levels = []color.Color{
	image2bit.Black565,
	image2bit.DarkGrey565,
	image2bit.LightGrey565,
	image2bit.White565,
}

// Picture renders test picture nr (0 or 1) at w×h and returns it packed. w
// must be a multiple of 4. Any other nr renders a blank white picture.
func Picture(nr, w, h int) []byte {
	dc := gg.NewContext(w, h)
	dc.SetColor(image2bit.White565)
	dc.Clear()
	switch nr {
	case 0:
		greyBars(dc, w, h)
	case 1:
		rings(dc, w, h)
	}
	return Pack(dc.Image())
}

// Pack quantises img to the four panel greys.
func Pack(img image.Image) []byte {
	b := img.Bounds()
	dst := image2bit.NewHorizontalCrumb(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst.Pix
}

// greyBars draws one vertical bar per grey level, labelled, under a heading.
func greyBars(dc *gg.Context, w, h int) {
	top := float64(h) / 5
	bw := float64(w) / float64(len(levels))
	names := []string{"black", "dark grey", "light grey", "white"}
	for i, c := range levels {
		dc.SetColor(c)
		dc.DrawRectangle(float64(i)*bw, top, bw, float64(h)-top)
		dc.Fill()

		// Label in the opposite extreme for contrast.
		if i < 2 {
			dc.SetColor(image2bit.White565)
		} else {
			dc.SetColor(image2bit.Black565)
		}
		dc.SetFontFace(basicfont.Face7x13)
		dc.DrawStringAnchored(names[i], float64(i)*bw+bw/2, top+float64(h-int(top))/2, 0.5, 0.5)
	}
	dc.SetColor(image2bit.Black565)
	dc.SetFontFace(headingFace(h))
	dc.DrawStringAnchored("GDE060BA", float64(w)/2, top/2, 0.5, 0.5)
}

// rings draws concentric rings cycling through the grey levels inside a
// checkered border.
func rings(dc *gg.Context, w, h int) {
	cell := max(float64(min(w, h))/20, 1)
	for y := 0.0; y < float64(h); y += cell {
		for x := 0.0; x < float64(w); x += cell {
			border := x < cell || y < cell || x+cell >= float64(w) || y+cell >= float64(h)
			if border && int(x/cell+y/cell)%2 == 0 {
				dc.SetColor(image2bit.Black565)
				dc.DrawRectangle(x, y, cell, cell)
				dc.Fill()
			}
		}
	}

	cx, cy := float64(w)/2, float64(h)/2
	r := float64(min(w, h))/2 - 2*cell
	for i := 0; r > 0; i++ {
		dc.SetColor(levels[i%len(levels)])
		dc.DrawCircle(cx, cy, r)
		dc.Fill()
		r -= cell
	}

	dc.SetColor(image2bit.Black565)
	dc.SetFontFace(headingFace(h))
	dc.DrawStringAnchored("self test", cx, cell*2, 0.5, 1)
}
