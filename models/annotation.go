package models

import (
	"fmt"

	"github.com/Tutortoise/gerald-loader/labels"
)

// AnnotationKey identifies the annotation that owns a ground-truth object.
// It is the source image filename.
type AnnotationKey string

// GroundTruthObject is a labeled box belonging to one annotation.
type GroundTruthObject struct {
	BoundingBox
	Annotation AnnotationKey
}

func (o GroundTruthObject) String() string {
	return fmt.Sprintf("Ground Truth Object | Label %s, x_c: %d, y_c: %d, w: %d, h: %d, ID: %s, Relevant: %t",
		o.Label, o.XC, o.YC, o.W, o.H, o.Identifier, o.Relevant)
}

// Annotation is the ground truth and capture metadata for a single image.
type Annotation struct {
	SrcName   string
	SrcWidth  int
	SrcHeight int
	SrcDepth  int
	// SrcTime is the capture time encoded in the filename, 0 if absent.
	SrcTime float64
	SrcURL  string

	Author    string
	AuthorURL string

	Weather labels.Weather
	Light   labels.Light

	// Hash is the perceptual hash from info.json, carried through untouched.
	Hash string

	objects []GroundTruthObject
}

func NewAnnotation(name string, width, height, depth int) *Annotation {
	return &Annotation{
		SrcName:   name,
		SrcWidth:  width,
		SrcHeight: height,
		SrcDepth:  depth,
	}
}

func (a *Annotation) Key() AnnotationKey {
	return AnnotationKey(a.SrcName)
}

// AddGroundTruthObject appends a box that inherits the annotation's
// weather, light and source size.
func (a *Annotation) AddGroundTruthObject(xMin, yMin, xMax, yMax int, label labels.Label, relevant bool) GroundTruthObject {
	box := NewBoundingBox(xMin, yMin, xMax, yMax, label, relevant, a.SrcWidth, a.SrcHeight)
	box.Weather = a.Weather
	box.Light = a.Light

	o := GroundTruthObject{BoundingBox: box, Annotation: a.Key()}
	a.objects = append(a.objects, o)
	return o
}

// Objects returns a copy of the ground-truth objects in insertion order.
func (a *Annotation) Objects() []GroundTruthObject {
	out := make([]GroundTruthObject, len(a.objects))
	copy(out, a.objects)
	return out
}

// Len is the number of ground-truth objects.
func (a *Annotation) Len() int {
	return len(a.objects)
}

// ObjectCoords stacks [x_min, y_min, x_max, y_max] of every object. An
// annotation without objects yields an empty slice.
func (a *Annotation) ObjectCoords() [][4]int {
	coords := make([][4]int, len(a.objects))
	for i, o := range a.objects {
		coords[i] = o.Coords()
	}
	return coords
}

// Targets builds one row per object in insertion order with the batch slot
// left at zero.
func (a *Annotation) Targets() Targets {
	rows := make(Targets, len(a.objects))
	for i, o := range a.objects {
		rows[i] = Row{
			float32(o.XC),
			float32(o.YC),
			float32(o.W),
			float32(o.H),
			float32(o.Label),
			0,
		}
	}
	return rows
}

func (a *Annotation) String() string {
	return "Annotation | " + a.SrcName
}
