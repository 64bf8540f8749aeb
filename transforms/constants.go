package transforms

import "image"

const (
	DefaultCenterCropFactor = 0.25
	DefaultCropTolerance    = 2
	// MaxCropAttempts bounds the number of crop origins RandomCrop samples
	// before giving up.
	MaxCropAttempts = 100

	DefaultNoiseMean = 0.0
	DefaultNoiseStd  = 1.0
)

var (
	DefaultRandomCropMin = image.Pt(300, 100)
	DefaultRandomCropMax = image.Pt(1000, 600)
)
