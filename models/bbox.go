package models

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/Tutortoise/gerald-loader/labels"
)

var ErrInvalidSourceSize = errors.New("bounding box has no valid source size")

// Normalized holds box geometry divided by the source image size.
type Normalized struct {
	XMin, YMin, XMax, YMax float64
	XC, YC                 float64
	W, H                   float64
	Area                   float64
}

// BoundingBox is a labeled region in pixel coordinates. The derived fields
// are recomputed whenever the corners change; do not set them directly.
type BoundingBox struct {
	XMin, YMin, XMax, YMax int

	Label      labels.Label
	Relevant   bool
	Weather    labels.Weather
	Light      labels.Light
	Identifier string

	// Image size the coordinates refer to; zero means unknown.
	SrcWidth, SrcHeight int

	XC, YC int
	W, H   int
	Area   int
	// Aspect is W/H, nil when H is zero.
	Aspect *float64
	// Normalized is nil unless both source dimensions are known.
	Normalized *Normalized
}

// NewBoundingBox builds a box from corner coordinates. srcWidth and srcHeight
// may be zero when the image size is not known.
func NewBoundingBox(xMin, yMin, xMax, yMax int, label labels.Label, relevant bool, srcWidth, srcHeight int) BoundingBox {
	b := BoundingBox{
		XMin:      xMin,
		YMin:      yMin,
		XMax:      xMax,
		YMax:      yMax,
		Label:     label,
		Relevant:  relevant,
		SrcWidth:  srcWidth,
		SrcHeight: srcHeight,
	}
	b.update()
	return b
}

func (b *BoundingBox) update() {
	b.XC = roundInt(float64(b.XMax+b.XMin) / 2)
	b.YC = roundInt(float64(b.YMax+b.YMin) / 2)
	b.W = b.XMax - b.XMin
	b.H = b.YMax - b.YMin
	b.Area = b.W * b.H

	b.Aspect = nil
	if b.H != 0 {
		aspect := float64(b.W) / float64(b.H)
		b.Aspect = &aspect
	}

	b.Normalized = nil
	if b.SrcWidth > 0 && b.SrcHeight > 0 {
		sw, sh := float64(b.SrcWidth), float64(b.SrcHeight)
		n := &Normalized{
			XMin: float64(b.XMin) / sw,
			YMin: float64(b.YMin) / sh,
			XMax: float64(b.XMax) / sw,
			YMax: float64(b.YMax) / sh,
			XC:   float64(b.XMax+b.XMin) / (2 * sw),
			YC:   float64(b.YMax+b.YMin) / (2 * sh),
			W:    float64(b.W) / sw,
			H:    float64(b.H) / sh,
		}
		n.Area = n.W * n.H
		b.Normalized = n
	}
}

// Rescale maps the box onto an image of the given size.
func (b *BoundingBox) Rescale(size image.Point) error {
	if b.SrcWidth <= 0 || b.SrcHeight <= 0 {
		return ErrInvalidSourceSize
	}

	scaleW := float64(size.X) / float64(b.SrcWidth)
	scaleH := float64(size.Y) / float64(b.SrcHeight)

	b.XMin = roundInt(float64(b.XMin) * scaleW)
	b.YMin = roundInt(float64(b.YMin) * scaleH)
	b.XMax = roundInt(float64(b.XMax) * scaleW)
	b.YMax = roundInt(float64(b.YMax) * scaleH)
	b.SrcWidth = size.X
	b.SrcHeight = size.Y

	b.update()
	return nil
}

// Coords returns [x_min, y_min, x_max, y_max].
func (b BoundingBox) Coords() [4]int {
	return [4]int{b.XMin, b.YMin, b.XMax, b.YMax}
}

func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(b.XMin, b.YMin, b.XMax, b.YMax)
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("Label %s, x_c: %d, y_c: %d, w: %d, h: %d, ID: %s",
		b.Label, b.XC, b.YC, b.W, b.H, b.Identifier)
}

// Half-way cases go to the even neighbour, matching the dataset tooling the
// annotations were produced with.
func roundInt(v float64) int {
	return int(math.RoundToEven(v))
}
