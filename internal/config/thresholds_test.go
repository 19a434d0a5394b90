package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadThresholds_EmptyPathUsesDefaults(t *testing.T) {
	thresholds, err := LoadThresholds("")

	assert.NoError(t, err)
	assert.Equal(t, DefaultThresholds(), thresholds)
	assert.Equal(t, 0.40, thresholds.MaxRevenueDrop)
	assert.Equal(t, 0.001, thresholds.MaxDuplicateRate)
}

func TestLoadThresholds_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thresholds.yaml")
	content := []byte(`
max_revenue_drop: 0.25
min_volume:
  revenue: 50
  conversion_rate: 1000
`)
	assert.NoError(t, os.WriteFile(path, content, 0o644))

	thresholds, err := LoadThresholds(path)

	assert.NoError(t, err)
	assert.Equal(t, 0.25, thresholds.MaxRevenueDrop)
	// Keys absent from the file keep their defaults.
	assert.Equal(t, 0.40, thresholds.MaxPurchaseDrop)
	assert.Equal(t, 50.0, thresholds.MinVolume["revenue"])
	assert.Equal(t, 1000.0, thresholds.MinVolume["conversion_rate"])
}

func TestLoadThresholds_MissingFile(t *testing.T) {
	_, err := LoadThresholds("/nonexistent/thresholds.yaml")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read thresholds file")
}

func TestLoadThresholds_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thresholds.yaml")
	assert.NoError(t, os.WriteFile(path, []byte("max_revenue_drop: [not a number"), 0o644))

	_, err := LoadThresholds(path)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse thresholds file")
}
