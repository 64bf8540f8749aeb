package transforms

import (
	"fmt"
	"math"

	"github.com/Tutortoise/gerald-loader/models"

	"github.com/chewxy/math32"
	"gonum.org/v1/gonum/mat"
)

// Rotate turns the image counter-clockwise by a multiple of 90 degrees.
type Rotate struct {
	Angle int
}

// NewRotate rejects angles other than 0, 90, 180 and 270.
func NewRotate(angle int) (Rotate, error) {
	if !validAngle(angle) {
		return Rotate{}, fmt.Errorf("%w: got %d", ErrInvalidAngle, angle)
	}
	return Rotate{Angle: angle}, nil
}

func validAngle(angle int) bool {
	switch angle {
	case 0, 90, 180, 270:
		return true
	}
	return false
}

func (r Rotate) Apply(s Sample) (Sample, error) {
	if !validAngle(r.Angle) {
		return s, fmt.Errorf("%w: got %d", ErrInvalidAngle, r.Angle)
	}
	if r.Angle == 0 {
		return s, nil
	}

	f, err := asFrame(s.Image)
	if err != nil {
		return s, err
	}
	rotated := f.Rot90(r.Angle / 90)
	w, h := float32(rotated.Width), float32(rotated.Height)

	// Image rows grow downwards, so a counter-clockwise image rotation is a
	// clockwise rotation of the points; the result is shifted back into the
	// new frame.
	centers := rotatePoints(s.Targets, -float64(r.Angle)*math.Pi/180)

	targets := make(models.Targets, len(s.Targets))
	for i, src := range s.Targets {
		row := src
		x, y := centers[i][0], centers[i][1]
		switch r.Angle {
		case 90:
			y += h
			row[2], row[3] = src[3], src[2]
		case 180:
			x += w
			y += h
		case 270:
			x += w
			row[2], row[3] = src[3], src[2]
		}
		row[0], row[1] = x, y
		targets[i] = row
	}

	s.Image = rotated
	s.Targets = targets
	return s, nil
}

// rotatePoints applies the rotation matrix for angle (radians) to the
// center point of each row and rounds the result.
func rotatePoints(rows models.Targets, angle float64) [][2]float32 {
	out := make([][2]float32, len(rows))
	if len(rows) == 0 {
		return out
	}

	cos, sin := float64(math32.Cos(float32(angle))), float64(math32.Sin(float32(angle)))
	rot := mat.NewDense(2, 2, []float64{
		cos, -sin,
		sin, cos,
	})

	points := mat.NewDense(2, len(rows), nil)
	for i, row := range rows {
		points.Set(0, i, float64(row[0]))
		points.Set(1, i, float64(row[1]))
	}

	var rotated mat.Dense
	rotated.Mul(rot, points)
	for i := range rows {
		out[i][0] = roundHalfEven(float32(rotated.At(0, i)))
		out[i][1] = roundHalfEven(float32(rotated.At(1, i)))
	}
	return out
}
