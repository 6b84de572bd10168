// Package image2bit provides a 2-bit grayscale image format for the GDE060BA e-paper panel.
//
// The panel has four physical grey levels. Pixels are stored four to a byte,
// most significant pair first.
//
// Memory layout example for a 4-pixel row:
//
//	Pixels: 0      1      2          3
//	Levels: black  white  dark-grey  light-grey
//	Codes:  00     11     01         10
//	Byte:   0x36 (0b00_11_01_10)
//
// This package provides:
//
// - Gray2: a color type holding one of the four drive levels
// - RGB565 and Classify: 5-6-5 packed colors and their reduction to a level
// - Gray2Model: a color model converting any Go color to Gray2
// - HorizontalCrumb: an image.Image implementation in the panel's packing
//
// Example usage:
//
//	img := image2bit.NewHorizontalCrumb(image.Rect(0, 0, 800, 600))
//	img.Fill(image2bit.White)
//	img.SetGray2(10, 20, image2bit.DarkGrey)
//	img.Set(11, 20, image2bit.LightGrey565)
//	println(img.Gray2At(10, 20).Y) // Output: 1
package image2bit
