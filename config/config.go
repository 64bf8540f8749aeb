// Package config reads loader settings from the environment.
package config

import (
	"fmt"
	"image"
	"os"

	"github.com/spf13/cast"
)

// DatasetConfig holds everything needed to build a dataset and batch it.
type DatasetConfig struct {
	Path             string
	Subset           string
	Shuffle          bool
	RandomAugment    bool
	ModelInputWidth  int
	ModelInputHeight int
	Split            float64
	Test             float64
	BatchSize        int
	Seed             int64
	Debug            bool
}

// NewDatasetConfig creates a configuration from environment variables
func NewDatasetConfig() *DatasetConfig {
	return &DatasetConfig{
		Path:             getEnv("GERALD_PATH", ""),
		Subset:           getEnv("GERALD_SUBSET", "all"),
		Shuffle:          getEnvBool("GERALD_SHUFFLE", true),
		RandomAugment:    getEnvBool("GERALD_RANDOM_AUGMENT", true),
		ModelInputWidth:  getEnvInt("GERALD_MODEL_INPUT_WIDTH", 512),
		ModelInputHeight: getEnvInt("GERALD_MODEL_INPUT_HEIGHT", 512),
		Split:            getEnvFloat("GERALD_SPLIT", 0.8),
		Test:             getEnvFloat("GERALD_TEST", 0.1),
		BatchSize:        getEnvInt("GERALD_BATCH_SIZE", 4),
		Seed:             int64(getEnvInt("GERALD_SEED", 331297)),
		Debug:            os.Getenv("DEBUG") == "true",
	}
}

func (c *DatasetConfig) ModelInputSize() image.Point {
	return image.Pt(c.ModelInputWidth, c.ModelInputHeight)
}

func (c *DatasetConfig) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("dataset path is required (GERALD_PATH)")
	}
	if c.Subset == "" {
		return fmt.Errorf("subset must not be empty")
	}
	if c.Split < 0 || c.Split > 1 {
		return fmt.Errorf("split %v outside [0, 1]", c.Split)
	}
	if c.Test < 0 || c.Test > 1 {
		return fmt.Errorf("test fraction %v outside [0, 1]", c.Test)
	}
	if c.ModelInputWidth <= 0 || c.ModelInputHeight <= 0 {
		return fmt.Errorf("model input size %dx%d must be positive", c.ModelInputWidth, c.ModelInputHeight)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size %d must be positive", c.BatchSize)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if v, err := cast.ToIntE(value); err == nil {
			return v
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if v, err := cast.ToFloat64E(value); err == nil {
			return v
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if v, err := cast.ToBoolE(value); err == nil {
			return v
		}
	}
	return defaultValue
}
