package dataset

import (
	"encoding/xml"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Tutortoise/gerald-loader/labels"
	"github.com/Tutortoise/gerald-loader/models"

	"github.com/pkg/errors"
)

type xmlAnnotation struct {
	XMLName  xml.Name    `xml:"annotation"`
	Filename *string     `xml:"filename"`
	Size     *xmlSize    `xml:"size"`
	Weather  *string     `xml:"weather"`
	Light    *string     `xml:"light"`
	Objects  []xmlObject `xml:"object"`
}

type xmlSize struct {
	Width  *string `xml:"width"`
	Height *string `xml:"height"`
	Depth  *string `xml:"depth"`
}

type xmlObject struct {
	Name      string     `xml:"name"`
	Difficult *string    `xml:"difficult"`
	BndBox    *xmlBndBox `xml:"bndbox"`
}

type xmlBndBox struct {
	XMin string `xml:"xmin"`
	YMin string `xml:"ymin"`
	XMax string `xml:"xmax"`
	YMax string `xml:"ymax"`
}

// Loader parses annotation files below a dataset root. It is not safe for
// concurrent use because it counts skipped objects.
type Loader struct {
	Root string
	Info InfoTable

	counting bool
	skipped  int
}

func NewLoader(root string, info InfoTable) *Loader {
	if info == nil {
		info = InfoTable{}
	}
	return &Loader{Root: root, Info: info, counting: true}
}

// Uncounted returns a loader over the same root and info table that
// neither counts nor logs skipped objects.
func (l *Loader) Uncounted() *Loader {
	return &Loader{Root: l.Root, Info: l.Info}
}

func (l *Loader) AnnotationPath(stem string) string {
	return filepath.Join(l.Root, AnnotationsDir, stem+".xml")
}

func (l *Loader) ImagePath(stem string) string {
	return filepath.Join(l.Root, ImagesDir, stem+ImageExt)
}

// SkippedObjects is the running total of objects dropped for lacking a
// bounding box.
func (l *Loader) SkippedObjects() int {
	return l.skipped
}

// Load parses Annotations/<stem>.xml.
func (l *Loader) Load(stem string) (*models.Annotation, error) {
	path := l.AnnotationPath(stem)
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open annotation %s", stem)
	}
	defer f.Close()

	return l.Parse(f, path)
}

// Parse decodes one annotation record. file is only used in errors and logs.
func (l *Loader) Parse(r io.Reader, file string) (*models.Annotation, error) {
	var raw xmlAnnotation
	if err := xml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, &ParseError{File: file, Field: "annotation", Cause: err}
	}

	if raw.Filename == nil {
		return nil, &ParseError{File: file, Field: "filename"}
	}
	if raw.Size == nil {
		return nil, &ParseError{File: file, Field: "size"}
	}
	width, err := requiredInt(file, "size/width", raw.Size.Width)
	if err != nil {
		return nil, err
	}
	height, err := requiredInt(file, "size/height", raw.Size.Height)
	if err != nil {
		return nil, err
	}
	depth, err := requiredInt(file, "size/depth", raw.Size.Depth)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(*raw.Filename)
	an := models.NewAnnotation(name, width, height, depth)
	an.SrcTime = parseSrcTime(name)

	if info, ok := l.Info[name]; ok {
		an.Weather = info.Weather
		an.Light = info.Light
		an.Author = info.Author
		an.AuthorURL = info.AuthorURL
		an.SrcURL = info.SourceURL
		an.Hash = info.PHash
	}

	if raw.Weather != nil {
		w, err := labels.ParseWeather(strings.TrimSpace(*raw.Weather))
		if err != nil {
			return nil, &ParseError{File: file, Field: "weather", Cause: err}
		}
		an.Weather = w
	}
	if raw.Light != nil {
		lt, err := labels.ParseLight(strings.TrimSpace(*raw.Light))
		if err != nil {
			return nil, &ParseError{File: file, Field: "light", Cause: err}
		}
		an.Light = lt
	}

	skipped := 0
	for _, obj := range raw.Objects {
		if obj.BndBox == nil {
			skipped++
			continue
		}
		if err := addObject(an, obj, file); err != nil {
			return nil, err
		}
	}
	if skipped > 0 && l.counting {
		l.skipped += skipped
		log.Printf("Skipped %d object(s) without bndbox in %s (%d total)", skipped, file, l.skipped)
	}

	return an, nil
}

func addObject(an *models.Annotation, obj xmlObject, file string) error {
	label, err := labels.ParseLabel(strings.TrimSpace(obj.Name))
	if err != nil {
		return &ParseError{File: file, Field: "object/name", Cause: err}
	}

	relevant := false
	if obj.Difficult != nil {
		v, err := strconv.Atoi(strings.TrimSpace(*obj.Difficult))
		if err != nil {
			return &ParseError{File: file, Field: "object/difficult", Cause: err}
		}
		relevant = v != 0
	}

	var coords [4]int
	fields := [4]struct {
		name, text string
	}{
		{"xmin", obj.BndBox.XMin},
		{"ymin", obj.BndBox.YMin},
		{"xmax", obj.BndBox.XMax},
		{"ymax", obj.BndBox.YMax},
	}
	for i, fld := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(fld.text), 64)
		if err != nil {
			return &ParseError{File: file, Field: "object/bndbox/" + fld.name, Cause: err}
		}
		coords[i] = int(math.RoundToEven(v))
	}

	an.AddGroundTruthObject(coords[0], coords[1], coords[2], coords[3], label, relevant)
	return nil
}

func requiredInt(file, field string, text *string) (int, error) {
	if text == nil {
		return 0, &ParseError{File: file, Field: field}
	}
	v, err := strconv.Atoi(strings.TrimSpace(*text))
	if err != nil {
		return 0, &ParseError{File: file, Field: field, Cause: err}
	}
	return v, nil
}

// parseSrcTime reads the capture time from names like "clip=12.5.jpg".
// Names without a parseable suffix yield 0.
func parseSrcTime(name string) float64 {
	i := strings.Index(name, "=")
	if i < 0 {
		return 0
	}
	rest := name[i+1:]
	if j := strings.Index(rest, "="); j >= 0 {
		rest = rest[:j]
	}
	if len(rest) < 4 {
		return 0
	}
	t, err := strconv.ParseFloat(rest[:len(rest)-4], 64)
	if err != nil {
		return 0
	}
	return t
}
