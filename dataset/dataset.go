// Package dataset indexes a GERALD dataset root and produces per-index
// training samples.
package dataset

import (
	"image"
	"log"
	"math"
	"math/rand"
	"time"

	"github.com/Tutortoise/gerald-loader/frame"
	"github.com/Tutortoise/gerald-loader/labels"
	"github.com/Tutortoise/gerald-loader/models"
	"github.com/Tutortoise/gerald-loader/transforms"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type Options struct {
	Subset        string
	RandomAugment bool
	// ModelInputSize is reported to consumers, not enforced.
	ModelInputSize image.Point
	Split          float64
	Test           float64
	// Transform runs before the random augmentations. May be nil.
	Transform transforms.Transform
	// Seed drives the test subset draw.
	Seed int64
	// AugmentSeed seeds the augmentation source; 0 uses the clock.
	AugmentSeed int64
	Debug       bool
}

func DefaultOptions() Options {
	return Options{
		Subset:         SubsetAll,
		RandomAugment:  true,
		ModelInputSize: image.Pt(512, 512),
		Split:          DefaultSplit,
		Test:           DefaultTest,
		Seed:           DefaultSeed,
	}
}

// Dataset is one named subset over a shared Table.
type Dataset struct {
	table  *Table
	loader *Loader
	opts   Options

	stems       []string
	annotations []*models.Annotation

	nTrain, nVal, nTest int

	rng    *rand.Rand
	flip   transforms.Flip
	jitter *transforms.ColorJitter
	noise  *transforms.GaussianNoise
}

func New(table *Table, opts Options) (*Dataset, error) {
	if opts.Split < 0 || opts.Split > 1 {
		return nil, errors.Errorf("split %v outside [0, 1]", opts.Split)
	}
	if opts.Test < 0 || opts.Test > 1 {
		return nil, errors.Errorf("test fraction %v outside [0, 1]", opts.Test)
	}

	log.Printf("Initializing GERALD dataset from %s", table.Root)
	log.Printf("Using %s subset", opts.Subset)
	log.Printf("Model input size: %dx%d", opts.ModelInputSize.X, opts.ModelInputSize.Y)

	n := table.Len()
	d := &Dataset{
		table:  table,
		loader: table.Loader().Uncounted(),
		opts:   opts,
		nTrain: int(math.RoundToEven(opts.Split * float64(n))),
		nVal:   int(math.RoundToEven((1 - opts.Split) * float64(n))),
		nTest:  int(math.RoundToEven(opts.Test * float64(n))),
	}

	sub, err := selectSubset(table, opts.Subset, d.nTrain, d.nTest, rand.New(rand.NewSource(opts.Seed)))
	if err != nil {
		return nil, err
	}
	d.stems = sub.stems
	d.annotations = sub.annotations

	seed := opts.AugmentSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	d.rng = rand.New(rand.NewSource(seed))
	d.flip = transforms.Flip{Kind: transforms.FlipUpDown}
	d.jitter, err = transforms.NewColorJitter(
		transforms.Range{Lo: JitterBrightnessLo, Hi: JitterBrightnessHi},
		transforms.Range{Lo: JitterSaturationLo, Hi: JitterSaturationHi},
		JitterHue, d.rng)
	if err != nil {
		return nil, err
	}
	d.noise = transforms.NewGaussianNoise(NoiseMean, NoiseStd, d.rng)

	log.Printf("Total number of images: %5d", n)
	log.Printf("Number of train images: %5d", d.nTrain)
	log.Printf("Number of validation images: %5d", d.nVal)
	log.Printf("Number of test images: %5d", d.nTest)
	log.Printf("Images in %s subset: %5d", opts.Subset, len(d.stems))
	log.Printf("Use random data augmentation: %t", opts.RandomAugment)
	log.Printf("Image area (model input): %d px", d.ImageArea())

	d.Distribution().Log(opts.Subset + " subset")

	return d, nil
}

func (d *Dataset) Len() int {
	return len(d.stems)
}

func (d *Dataset) Subset() string {
	return d.opts.Subset
}

// Counts returns the train, validation and test sizes derived from the
// full table.
func (d *Dataset) Counts() (train, val, test int) {
	return d.nTrain, d.nVal, d.nTest
}

func (d *Dataset) NumClasses() int {
	return labels.NumLabels
}

func (d *Dataset) ModelInputSize() image.Point {
	return d.opts.ModelInputSize
}

func (d *Dataset) ImageArea() int {
	return d.opts.ModelInputSize.X * d.opts.ModelInputSize.Y
}

// Stem is the file stem behind index i.
func (d *Dataset) Stem(i int) string {
	return d.stems[i]
}

// Annotation returns the table's cached annotation for index i.
func (d *Dataset) Annotation(i int) *models.Annotation {
	return d.annotations[i]
}

func (d *Dataset) Distribution() Distribution {
	return ComputeDistribution(d.annotations)
}

// Get loads image i of the subset, re-parses its annotation and runs the
// configured transform followed by the random augmentations.
func (d *Dataset) Get(i int) (transforms.Sample, error) {
	if i < 0 || i >= len(d.stems) {
		return transforms.Sample{}, errors.Wrapf(ErrIndexOutOfRange, "index %d of %d", i, len(d.stems))
	}

	timings := &models.SampleTimings{SampleID: uuid.New().String(), Index: i}
	start := time.Now()
	stem := d.stems[i]

	t := time.Now()
	img, err := imaging.Open(d.loader.ImagePath(stem))
	if err != nil {
		return transforms.Sample{}, errors.Wrapf(err, "load image %s", stem)
	}
	timings.ImageLoad = time.Since(t)

	t = time.Now()
	an, err := d.loader.Load(stem)
	if err != nil {
		return transforms.Sample{}, err
	}
	timings.Annotation = time.Since(t)

	t = time.Now()
	sample := transforms.Sample{
		Image:   frame.FromImage(img),
		Targets: an.Targets(),
		Index:   i,
	}
	timings.Convert = time.Since(t)

	t = time.Now()
	if d.opts.Transform != nil {
		sample, err = d.opts.Transform.Apply(sample)
		if err != nil {
			return transforms.Sample{}, errors.Wrapf(err, "transform %s", stem)
		}
	}
	timings.Transform = time.Since(t)

	t = time.Now()
	if d.opts.RandomAugment {
		sample, err = d.augment(sample)
		if err != nil {
			return transforms.Sample{}, errors.Wrapf(err, "augment %s", stem)
		}
	}
	timings.Augment = time.Since(t)
	timings.Total = time.Since(start)

	if d.opts.Debug {
		logTimings(timings)
	}
	return sample, nil
}

// augment draws each augmentation independently, in a fixed order.
func (d *Dataset) augment(s transforms.Sample) (transforms.Sample, error) {
	var err error
	if d.rng.Float64() < FlipProbability {
		if s, err = d.flip.Apply(s); err != nil {
			return s, err
		}
	}
	if d.rng.Float64() < JitterProbability {
		if s, err = d.jitter.Apply(s); err != nil {
			return s, err
		}
	}
	if d.rng.Float64() < NoiseProbability {
		if s, err = d.noise.Apply(s); err != nil {
			return s, err
		}
	}
	return s, nil
}

func logTimings(t *models.SampleTimings) {
	log.Printf("[DEBUG] SampleID: %s (index %d) - Loading times:\n"+
		"\tImage Load: %v\n"+
		"\tAnnotation: %v\n"+
		"\tConvert:    %v\n"+
		"\tTransform:  %v\n"+
		"\tAugment:    %v\n"+
		"\tTotal:      %v",
		t.SampleID,
		t.Index,
		t.ImageLoad,
		t.Annotation,
		t.Convert,
		t.Transform,
		t.Augment,
		t.Total,
	)
}
