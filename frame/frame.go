// Package frame holds decoded images as H×W×C float32 arrays in [0,1].
package frame

import (
	"image"
	"image/color"

	"gorgonia.org/tensor"
)

// Channels is the channel count of every frame (RGB).
const Channels = 3

// Frame is a row-major H×W×C image. Values are nominally in [0,1] but are
// not clamped; noise may push them outside.
type Frame struct {
	Width, Height int
	Pix           []float32
}

func New(width, height int) *Frame {
	return &Frame{
		Width:  width,
		Height: height,
		Pix:    make([]float32, width*height*Channels),
	}
}

// FromImage converts any decoded image to RGB values in [0,1].
func FromImage(img image.Image) *Frame {
	b := img.Bounds()
	f := New(b.Dx(), b.Dy())

	if nrgba, ok := img.(*image.NRGBA); ok {
		for y := 0; y < f.Height; y++ {
			row := nrgba.Pix[y*nrgba.Stride:]
			for x := 0; x < f.Width; x++ {
				i := f.offset(x, y)
				f.Pix[i] = float32(row[x*4]) / 255.0
				f.Pix[i+1] = float32(row[x*4+1]) / 255.0
				f.Pix[i+2] = float32(row[x*4+2]) / 255.0
			}
		}
		return f
	}

	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			i := f.offset(x, y)
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			f.Pix[i] = float32(r>>8) / 255.0
			f.Pix[i+1] = float32(g>>8) / 255.0
			f.Pix[i+2] = float32(bl>>8) / 255.0
		}
	}
	return f
}

// NRGBA quantizes the frame to 8 bits, clamping out-of-range values.
func (f *Frame) NRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			i := f.offset(x, y)
			img.SetNRGBA(x, y, color.NRGBA{
				R: toByte(f.Pix[i]),
				G: toByte(f.Pix[i+1]),
				B: toByte(f.Pix[i+2]),
				A: 255,
			})
		}
	}
	return img
}

// Shape reports (H, W, C).
func (f *Frame) Shape() tensor.Shape {
	return tensor.Shape{f.Height, f.Width, Channels}
}

func (f *Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Width, f.Height)
}

func (f *Frame) At(x, y, c int) float32 {
	return f.Pix[f.offset(x, y)+c]
}

func (f *Frame) Set(x, y, c int, v float32) {
	f.Pix[f.offset(x, y)+c] = v
}

func (f *Frame) Clone() *Frame {
	out := New(f.Width, f.Height)
	copy(out.Pix, f.Pix)
	return out
}

func (f *Frame) offset(x, y int) int {
	return (y*f.Width + x) * Channels
}

func toByte(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}
