package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Thresholds holds the drift monitor severity thresholds. All values are
// configuration, never hardcoded inside the monitor.
type Thresholds struct {
	// Relative drops vs. the rolling baseline.
	MaxRevenueDrop    float64 `yaml:"max_revenue_drop"`
	MaxPurchaseDrop   float64 `yaml:"max_purchase_drop"`
	MaxConversionDrop float64 `yaml:"max_conversion_drop"`

	// Static ceilings for integrity metrics.
	MaxDuplicateRate    float64 `yaml:"max_duplicate_rate"`
	MaxNullClientRate   float64 `yaml:"max_null_client_rate"`
	MaxInvalidEventRate float64 `yaml:"max_invalid_event_rate"`
	MaxDirectShare      float64 `yaml:"max_direct_share"`

	// Minimum baseline volume per metric. A metric whose baseline window
	// averages below its floor is excluded from drift evaluation.
	MinVolume map[string]float64 `yaml:"min_volume"`
}

// DefaultThresholds returns the thresholds used when no file is configured.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxRevenueDrop:      0.40,
		MaxPurchaseDrop:     0.40,
		MaxConversionDrop:   0.30,
		MaxDuplicateRate:    0.001,
		MaxNullClientRate:   0.20,
		MaxInvalidEventRate: 0.01,
		MaxDirectShare:      0.80,
		MinVolume:           map[string]float64{},
	}
}

// LoadThresholds reads a thresholds YAML file. Missing keys keep their
// default values.
func LoadThresholds(path string) (Thresholds, error) {
	t := DefaultThresholds()
	if path == "" {
		return t, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("failed to read thresholds file: %w", err)
	}
	if err := yaml.Unmarshal(b, &t); err != nil {
		return t, fmt.Errorf("failed to parse thresholds file: %w", err)
	}
	if t.MinVolume == nil {
		t.MinVolume = map[string]float64{}
	}

	return t, nil
}
