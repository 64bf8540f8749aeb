package dataset

const (
	InfoFile       = "info.json"
	AnnotationsDir = "Annotations"
	ImagesDir      = "JPEGImages"
	ImageExt       = ".jpg"

	// DefaultSeed fixes the shuffle order of the file list.
	DefaultSeed = 331297

	DefaultSplit = 0.8
	DefaultTest  = 0.1

	// Chance of each random augmentation per sample.
	FlipProbability   = 0.25
	JitterProbability = 0.5
	NoiseProbability  = 0.1

	JitterBrightnessLo = 0.75
	JitterBrightnessHi = 1.25
	JitterSaturationLo = 0.75
	JitterSaturationHi = 1.25
	JitterHue          = 0.1

	NoiseMean = 0.0
	NoiseStd  = 0.05

	// Progress is logged every loadLogInterval annotations.
	loadLogInterval = 1000
)
