// Package gde060ba drives the GDE060BA e-paper panel.
//
// The GDE060BA is a 6" 800×600 electrophoretic panel with no timing
// controller of its own. Pixels are moved by applying a sequence of frames in
// which each pixel is pushed towards black, pushed towards white, or left
// alone. This driver computes those frames on the host and streams them row
// by row through a Transport.
// This driver implements the display.Drawer interface from periph.io.
//
// # Display Characteristics
//
// - 4 grey levels: black, dark grey, light grey, white
// - 800×600 native resolution (other sizes with a width multiple of 4)
// - 2 bits per pixel, 4 pixels per byte, leftmost pixel in the top bits
// - Rotation by 0°, 90°, 180° and 270°
// - Two framebuffers: one receives writes while the other records the
// image on the panel
//
// # Hardware Connection
//
// The panel is driven through its source and gate driver bus. Package edbus
// implements Transport over GPIO pins:
//
//	Panel signal  → System Pin
//	D0..D7        → 8 GPIO (data bus)
//	CL            → GPIO (source clock)
//	LE            → GPIO (source latch)
//	OE            → GPIO (source output enable)
//	SPH           → GPIO (source start pulse)
//	GMODE         → GPIO (gate output mode)
//	SPV           → GPIO (gate start pulse)
//	CKV           → GPIO (gate clock)
//	SMPS/VNEG/VPOS → GPIO (supply enables on the adapter board)
//
// Package epdsim implements Transport on an emulated panel, for tests and for
// trying the driver without hardware.
//
// # Basic Usage
//
//	package main
//
//	import (
//		"image"
//
//		"periph.io/x/devices/v3/gde060ba"
//		"periph.io/x/devices/v3/gde060ba/edbus"
//		"periph.io/x/devices/v3/gde060ba/image2bit"
//		"periph.io/x/host/v3"
//	)
//
//	func main() {
//		// Initialize periph.io
//		host.Init()
//
//		// Open the row bus on the default pin map
//		bus, _ := edbus.Open(edbus.DefaultConfig())
//		defer bus.Halt()
//
//		// Create device
//		dev, _ := gde060ba.New(bus, nil)
//		defer dev.Halt()
//
//		// Draw four grey bars
//		img := image2bit.NewHorizontalCrumb(dev.Bounds())
//		for x := 0; x < 800; x++ {
//			for y := 0; y < 600; y++ {
//				img.SetGray2(x, y, image2bit.Gray2{Y: uint8(x / 200)})
//			}
//		}
//		dev.Draw(dev.Bounds(), img, image.Point{})
//	}
//
// # Refresh
//
// Every refresh powers the panel up, runs the erase phase over the image
// currently shown, runs the draw phase over the new image, and powers the
// panel down. Each phase is a series of frames; each frame scans every row
// once, then repeats the last row to flush it out of the source driver
// latch. The frame content comes from lookup tables expanded by package
// waveform: for every packed byte and frame, the byte of drive codes to send.
//
// Set, SetGray2, Fill, DrawBitmap and FillTest only change the active buffer.
// Refresh, Write and Draw update the panel. Draw paints over the image shown,
// or over the active buffer if it was written since the last refresh. After a
// refresh the buffers swap roles, so the image just drawn is the one the next
// refresh erases.
//
// # Grey Levels
//
// Colors are converted to the panel greys by packing them to RGB565 and
// comparing their brightness against fixed thresholds. The four RGB565
// sentinels (image2bit.Black565, DarkGrey565, LightGrey565, White565) map
// exactly to their level.
//
// # Compatibility with periph.io
//
// It can be used with any periph.io tool or library expecting a display.Drawer.
package gde060ba
