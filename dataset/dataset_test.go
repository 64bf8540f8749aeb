package dataset

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Tutortoise/gerald-loader/frame"
	"github.com/Tutortoise/gerald-loader/labels"
	"github.com/Tutortoise/gerald-loader/models"
	"github.com/Tutortoise/gerald-loader/transforms"

	"github.com/disintegration/imaging"
)

type fixtureImage struct {
	stem    string
	width   int
	height  int
	weather string
	light   string
	objects []string
}

func object(name string, difficult int, xMin, yMin, xMax, yMax float64) string {
	return fmt.Sprintf(`<object><name>%s</name><difficult>%d</difficult>`+
		`<bndbox><xmin>%g</xmin><ymin>%g</ymin><xmax>%g</xmax><ymax>%g</ymax></bndbox></object>`,
		name, difficult, xMin, yMin, xMax, yMax)
}

func annotationXML(im fixtureImage) string {
	var b strings.Builder
	b.WriteString("<annotation>")
	fmt.Fprintf(&b, "<filename>%s.jpg</filename>", im.stem)
	fmt.Fprintf(&b, "<size><width>%d</width><height>%d</height><depth>3</depth></size>", im.width, im.height)
	if im.weather != "" {
		fmt.Fprintf(&b, "<weather>%s</weather>", im.weather)
	}
	if im.light != "" {
		fmt.Fprintf(&b, "<light>%s</light>", im.light)
	}
	for _, o := range im.objects {
		b.WriteString(o)
	}
	b.WriteString("</annotation>")
	return b.String()
}

// writeFixture lays out a dataset root. JPEGs are only written when
// withImages is set.
func writeFixture(t *testing.T, images []fixtureImage, info string, withImages bool) string {
	t.Helper()
	root := t.TempDir()
	for _, dir := range []string{AnnotationsDir, ImagesDir} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			t.Fatalf("Failed to create %s: %v", dir, err)
		}
	}
	if info == "" {
		info = "{}"
	}
	if err := os.WriteFile(filepath.Join(root, InfoFile), []byte(info), 0o644); err != nil {
		t.Fatalf("Failed to write info: %v", err)
	}

	for _, im := range images {
		path := filepath.Join(root, AnnotationsDir, im.stem+".xml")
		if err := os.WriteFile(path, []byte(annotationXML(im)), 0o644); err != nil {
			t.Fatalf("Failed to write annotation: %v", err)
		}
		if withImages {
			img := imaging.New(im.width, im.height, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
			if err := imaging.Save(img, filepath.Join(root, ImagesDir, im.stem+ImageExt)); err != nil {
				t.Fatalf("Failed to write image: %v", err)
			}
		}
	}
	return root
}

func numberedImages(n int, weather func(i int) string) []fixtureImage {
	images := make([]fixtureImage, n)
	for i := range images {
		images[i] = fixtureImage{
			stem:    fmt.Sprintf("img_%03d", i),
			width:   64,
			height:  32,
			weather: weather(i),
			objects: []string{object("Hp_1", 1, 10, 10, 20, 20)},
		}
	}
	return images
}

func noWeather(int) string { return "" }

func loadTable(t *testing.T, root string, shuffle bool) *Table {
	t.Helper()
	table, err := LoadTable(root, TableOptions{Shuffle: shuffle, Seed: DefaultSeed})
	if err != nil {
		t.Fatalf("LoadTable failed: %v", err)
	}
	return table
}

func newDataset(t *testing.T, table *Table, subset string) *Dataset {
	t.Helper()
	opts := DefaultOptions()
	opts.Subset = subset
	opts.RandomAugment = false
	ds, err := New(table, opts)
	if err != nil {
		t.Fatalf("New(%q) failed: %v", subset, err)
	}
	return ds
}

func TestLoaderParse(t *testing.T) {
	info := `{"cab=12.5.jpg": {"weather": "Rainy", "light": "Dark", "author": "A. Driver",
		"author url": "https://example.org/a", "source url": "https://example.org/v", "pHash": "c3d4"}}`
	table, err := ParseInfo([]byte(info))
	if err != nil {
		t.Fatalf("ParseInfo failed: %v", err)
	}

	xmlText := `<annotation>
		<filename>cab=12.5.jpg</filename>
		<size><width>1920</width><height>1080</height><depth>3</depth></size>
		<weather>Sunny</weather>
		<object><name>Hp_1</name><difficult>1</difficult>
			<bndbox><xmin>10.5</xmin><ymin>11.5</ymin><xmax>30.2</xmax><ymax>40.7</ymax></bndbox></object>
		<object><name>Ne_1</name><difficult>0</difficult></object>
		<object><name>Zs_3</name>
			<bndbox><xmin>100</xmin><ymin>100</ymin><xmax>120</xmax><ymax>150</ymax></bndbox></object>
	</annotation>`

	l := NewLoader("", table)
	an, err := l.Parse(strings.NewReader(xmlText), "cab.xml")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if an.SrcName != "cab=12.5.jpg" || an.SrcWidth != 1920 || an.SrcHeight != 1080 || an.SrcDepth != 3 {
		t.Errorf("Unexpected image metadata: %+v", an)
	}
	if an.SrcTime != 12.5 {
		t.Errorf("Expected src time 12.5, got %v", an.SrcTime)
	}
	if an.Weather != labels.Sunny {
		t.Errorf("Expected XML weather to override info table, got %v", an.Weather)
	}
	if an.Light != labels.Dark {
		t.Errorf("Expected light from info table, got %v", an.Light)
	}
	if an.Author != "A. Driver" || an.SrcURL != "https://example.org/v" || an.Hash != "c3d4" {
		t.Errorf("Info table metadata not applied: %+v", an)
	}

	if an.Len() != 2 {
		t.Fatalf("Expected 2 objects, got %d", an.Len())
	}
	if l.SkippedObjects() != 1 {
		t.Errorf("Expected 1 skipped object, got %d", l.SkippedObjects())
	}

	objs := an.Objects()
	if got := objs[0].Coords(); got != [4]int{10, 12, 30, 41} {
		t.Errorf("Expected half-even rounded coords, got %v", got)
	}
	if !objs[0].Relevant || objs[1].Relevant {
		t.Errorf("Unexpected relevance flags %t, %t", objs[0].Relevant, objs[1].Relevant)
	}
	if objs[1].Label != labels.Zs3 {
		t.Errorf("Expected Zs_3, got %v", objs[1].Label)
	}
	if objs[0].Annotation != models.AnnotationKey("cab=12.5.jpg") {
		t.Errorf("Unexpected annotation key %q", objs[0].Annotation)
	}
}

func TestLoaderMissingFields(t *testing.T) {
	tests := []struct {
		name  string
		xml   string
		field string
	}{
		{
			name:  "filename",
			xml:   `<annotation><size><width>1</width><height>1</height><depth>3</depth></size></annotation>`,
			field: "filename",
		},
		{
			name:  "size",
			xml:   `<annotation><filename>a.jpg</filename></annotation>`,
			field: "size",
		},
		{
			name:  "width",
			xml:   `<annotation><filename>a.jpg</filename><size><height>1</height><depth>3</depth></size></annotation>`,
			field: "size/width",
		},
		{
			name:  "malformed height",
			xml:   `<annotation><filename>a.jpg</filename><size><width>1</width><height>x</height><depth>3</depth></size></annotation>`,
			field: "size/height",
		},
		{
			name: "unknown label",
			xml: `<annotation><filename>a.jpg</filename><size><width>1</width><height>1</height><depth>3</depth></size>` +
				object("Nope", 0, 0, 0, 1, 1) + `</annotation>`,
			field: "object/name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader("", nil).Parse(strings.NewReader(tt.xml), "a.xml")
			if !errors.Is(err, ErrAnnotationParse) {
				t.Fatalf("Expected ErrAnnotationParse, got %v", err)
			}
			var pe *ParseError
			if !errors.As(err, &pe) || pe.Field != tt.field {
				t.Errorf("Expected field %s, got %v", tt.field, err)
			}
		})
	}
}

func TestParseSrcTime(t *testing.T) {
	tests := map[string]float64{
		"clip=12.5.jpg": 12.5,
		"clip=300.jpg":  300,
		"plain.jpg":     0,
		"clip=abc.jpg":  0,
		"clip=.jpg":     0,
	}
	for name, want := range tests {
		if got := parseSrcTime(name); got != want {
			t.Errorf("parseSrcTime(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestParseInfoUnknownWeather(t *testing.T) {
	if _, err := ParseInfo([]byte(`{"a.jpg": {"weather": "Hail", "light": "Dark"}}`)); !errors.Is(err, labels.ErrUnknownWeather) {
		t.Errorf("Expected ErrUnknownWeather, got %v", err)
	}
}

func TestShuffleIsDeterministic(t *testing.T) {
	sorted := make([]string, 50)
	for i := range sorted {
		sorted[i] = fmt.Sprintf("%02d", i)
	}
	a := append([]string(nil), sorted...)
	b := append([]string(nil), sorted...)
	ShuffleStems(a, DefaultSeed)
	ShuffleStems(b, DefaultSeed)

	same := true
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Shuffles with the same seed differ at %d", i)
		}
		if a[i] != sorted[i] {
			same = false
		}
	}
	if same {
		t.Errorf("Shuffle left the order unchanged")
	}
}

func TestTrainValSplit(t *testing.T) {
	root := writeFixture(t, numberedImages(100, noWeather), "", false)
	table := loadTable(t, root, true)

	train := newDataset(t, table, SubsetTrain)
	val := newDataset(t, table, SubsetVal)

	if train.Len() != 80 || val.Len() != 20 {
		t.Fatalf("Expected 80/20, got %d/%d", train.Len(), val.Len())
	}

	seen := make(map[string]bool)
	var union []string
	for _, ds := range []*Dataset{train, val} {
		for i := 0; i < ds.Len(); i++ {
			stem := ds.Stem(i)
			if seen[stem] {
				t.Fatalf("Stem %s appears in both subsets", stem)
			}
			seen[stem] = true
			union = append(union, stem)
		}
	}
	for i, stem := range table.Stems {
		if union[i] != stem {
			t.Fatalf("Union differs from table order at %d: %s != %s", i, union[i], stem)
		}
	}

	nTrain, nVal, nTest := train.Counts()
	if nTrain != 80 || nVal != 20 || nTest != 10 {
		t.Errorf("Unexpected counts %d/%d/%d", nTrain, nVal, nTest)
	}
}

func TestTestSubsetDrawsFromTable(t *testing.T) {
	root := writeFixture(t, numberedImages(20, noWeather), "", false)
	table := loadTable(t, root, false)

	opts := DefaultOptions()
	opts.Subset = SubsetTest
	opts.Test = 0.5
	ds, err := New(table, opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if ds.Len() != 10 {
		t.Fatalf("Expected 10 test images, got %d", ds.Len())
	}

	known := make(map[string]bool)
	for _, s := range table.Stems {
		known[s] = true
	}
	for i := 0; i < ds.Len(); i++ {
		if !known[ds.Stem(i)] {
			t.Errorf("Test image %s not in table", ds.Stem(i))
		}
	}

	again, _ := New(table, opts)
	for i := 0; i < ds.Len(); i++ {
		if ds.Stem(i) != again.Stem(i) {
			t.Fatalf("Test subset is not reproducible for a fixed seed")
		}
	}
}

func TestWeatherPartition(t *testing.T) {
	names := []string{"Sunny", "Cloudy", "Rainy", "", "Foggy", "Snowy"}
	root := writeFixture(t, numberedImages(30, func(i int) string { return names[i%len(names)] }), "", false)
	table := loadTable(t, root, true)

	counts := make(map[string]int)
	for _, w := range labels.AllWeather() {
		ds := newDataset(t, table, strings.ToLower(w.String()))
		for i := 0; i < ds.Len(); i++ {
			if ds.Annotation(i).Weather != w {
				t.Errorf("Subset %v contains weather %v", w, ds.Annotation(i).Weather)
			}
			counts[ds.Stem(i)]++
		}
	}

	if len(counts) != table.Len() {
		t.Fatalf("Weather subsets cover %d of %d images", len(counts), table.Len())
	}
	for stem, n := range counts {
		if n != 1 {
			t.Errorf("Image %s appears in %d weather subsets", stem, n)
		}
	}

	valSunny := newDataset(t, table, "val_sunny")
	val := newDataset(t, table, SubsetVal)
	if valSunny.Len() > val.Len() {
		t.Errorf("val_sunny larger than val")
	}
	for i := 0; i < valSunny.Len(); i++ {
		if valSunny.Annotation(i).Weather != labels.Sunny {
			t.Errorf("val_sunny contains %v", valSunny.Annotation(i).Weather)
		}
	}
}

func TestLightSubset(t *testing.T) {
	images := numberedImages(6, noWeather)
	images[1].light = "Twilight"
	images[4].light = "Twilight"
	root := writeFixture(t, images, "", false)
	table := loadTable(t, root, false)

	ds := newDataset(t, table, "twilight")
	if ds.Len() != 2 || ds.Stem(0) != "img_001" || ds.Stem(1) != "img_004" {
		t.Errorf("Unexpected twilight subset of size %d", ds.Len())
	}
}

func TestInvalidSubsetName(t *testing.T) {
	root := writeFixture(t, numberedImages(3, noWeather), "", false)
	table := loadTable(t, root, false)

	for _, name := range []string{"holdout", "val_", "val_hail", "", "SUNNY", "val_Dark", "Unknown"} {
		opts := DefaultOptions()
		opts.Subset = name
		if _, err := New(table, opts); !errors.Is(err, ErrInvalidSubsetName) {
			t.Errorf("Subset %q: expected ErrInvalidSubsetName, got %v", name, err)
		}
	}
}

func TestSkippedObjectsCountedOnce(t *testing.T) {
	images := []fixtureImage{
		{stem: "a", width: 20, height: 20, objects: []string{
			object("Hp_1", 1, 2, 2, 10, 10),
			"<object><name>Ne_1</name><difficult>0</difficult></object>",
		}},
	}
	root := writeFixture(t, images, "", true)
	table := loadTable(t, root, false)
	if table.Loader().SkippedObjects() != 1 {
		t.Fatalf("Expected 1 skipped object after loading, got %d", table.Loader().SkippedObjects())
	}

	ds := newDataset(t, table, SubsetAll)
	for i := 0; i < 3; i++ {
		s, err := ds.Get(0)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if len(s.Targets) != 1 {
			t.Fatalf("Expected 1 target, got %d", len(s.Targets))
		}
	}
	if table.Loader().SkippedObjects() != 1 {
		t.Errorf("Re-parsing changed the skipped total to %d", table.Loader().SkippedObjects())
	}
}

func TestDistribution(t *testing.T) {
	images := []fixtureImage{
		{stem: "a", width: 10, height: 10, weather: "Sunny", objects: []string{
			object("Hp_1", 1, 0, 0, 2, 2), object("Hp_1", 0, 3, 3, 5, 5),
		}},
		{stem: "b", width: 10, height: 10, weather: "Rainy", light: "Dark", objects: []string{
			object("Ne_1", 1, 0, 0, 2, 2),
		}},
	}
	root := writeFixture(t, images, "", false)
	ds := newDataset(t, loadTable(t, root, false), SubsetAll)

	d := ds.Distribution()
	if d.Images != 2 || d.Targets != 3 {
		t.Errorf("Expected 2 images and 3 targets, got %d and %d", d.Images, d.Targets)
	}
	if c := d.Signals[labels.Hp1]; c != (SignalCount{Relevant: 1, Irrelevant: 1, Total: 2}) {
		t.Errorf("Unexpected Hp_1 counts %+v", c)
	}
	if d.Weather[labels.Sunny] != 1 || d.Weather[labels.Rainy] != 1 || d.Light[labels.Dark] != 1 {
		t.Errorf("Unexpected condition counts %v %v", d.Weather, d.Light)
	}
	if ds.NumClasses() != labels.NumLabels || ds.ImageArea() != 512*512 {
		t.Errorf("Unexpected metadata %d classes, area %d", ds.NumClasses(), ds.ImageArea())
	}
}

func TestGet(t *testing.T) {
	images := []fixtureImage{
		{stem: "a", width: 40, height: 20, objects: []string{
			object("Hp_1", 1, 4, 2, 14, 12), object("Ne_1", 0, 20, 10, 30, 18),
		}},
	}
	root := writeFixture(t, images, "", true)
	table := loadTable(t, root, false)
	ds := newDataset(t, table, SubsetAll)

	s, err := ds.Get(0)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	f, ok := s.Image.(*frame.Frame)
	if !ok {
		t.Fatalf("Expected *frame.Frame, got %T", s.Image)
	}
	if f.Width != 40 || f.Height != 20 {
		t.Errorf("Expected 40x20 image, got %dx%d", f.Width, f.Height)
	}
	for _, v := range f.Pix {
		if v < 0 || v > 1 {
			t.Fatalf("Pixel value %f outside [0,1]", v)
		}
	}

	want := models.Targets{
		{9, 7, 10, 10, float32(labels.Hp1), 0},
		{25, 14, 10, 8, float32(labels.Ne1), 0},
	}
	if len(s.Targets) != len(want) {
		t.Fatalf("Expected %d targets, got %d", len(want), len(s.Targets))
	}
	for i := range want {
		if s.Targets[i] != want[i] {
			t.Errorf("Target %d: expected %v, got %v", i, want[i], s.Targets[i])
		}
	}
	if s.Index != 0 {
		t.Errorf("Expected index 0, got %d", s.Index)
	}

	if _, err := ds.Get(1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestGetAppliesTransformAndAugmentation(t *testing.T) {
	images := []fixtureImage{
		{stem: "a", width: 40, height: 20, objects: []string{object("Hp_1", 1, 4, 2, 14, 12)}},
	}
	root := writeFixture(t, images, "", true)
	table := loadTable(t, root, false)

	opts := DefaultOptions()
	opts.Transform = transforms.NewRescale(80, 40)
	opts.AugmentSeed = 17
	opts.Debug = true
	ds, err := New(table, opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	for i := 0; i < 20; i++ {
		s, err := ds.Get(0)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if shape := s.Image.Shape(); shape[0] != 40 || shape[1] != 80 {
			t.Fatalf("Expected 40x80 image, got %v", shape)
		}
		row := s.Targets[0]
		// Only an up-down flip can move the box.
		if row[0] != 18 || (row[1] != 14 && row[1] != 26) || row[2] != 20 || row[3] != 20 {
			t.Errorf("Unexpected target %v", row)
		}
	}
}

func TestLoadTableMissingRoot(t *testing.T) {
	if _, err := LoadTable(filepath.Join(t.TempDir(), "missing"), TableOptions{}); err == nil {
		t.Errorf("Expected error for a missing root")
	}
}

func TestImageSizeFromFixture(t *testing.T) {
	root := writeFixture(t, []fixtureImage{{stem: "x", width: 12, height: 8}}, "", true)
	img, err := imaging.Open(filepath.Join(root, ImagesDir, "x"+ImageExt))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 12, 8) {
		t.Errorf("Unexpected bounds %v", img.Bounds())
	}
}
