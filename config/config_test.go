package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/ratecurve/config"
)

func TestLoadFileOverridesDefaults(t *testing.T) {
	c, err := config.Load(filepath.Join("testdata", "bootstrap.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 1e-10, c.Accuracy)
	assert.Equal(t, 200, c.MaxEvaluations)
	assert.Equal(t, 3, c.Localisation)
	assert.Equal(t, config.DefaultConfig.MaxRate, c.MaxRate)
	assert.Equal(t, config.DefaultConfig.GrowthFactor, c.GrowthFactor)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("RATECURVE_MAX_ITERATIONS", "7")
	c, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, 7, c.MaxIterations)
	assert.Equal(t, config.DefaultConfig.Accuracy, c.Accuracy)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("growth_factor: 0.5\n"), 0o600))
	_, err := config.Load(path)
	assert.ErrorContains(t, err, "growth_factor")

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSetConfig(t *testing.T) {
	orig := config.GetConfig()
	t.Cleanup(func() { config.SetConfig(orig) })

	c := config.DefaultConfig
	c.MaxEvaluations = 5
	config.SetConfig(c)
	assert.Equal(t, 5, config.GetConfig().MaxEvaluations)
	assert.NoError(t, config.DefaultConfig.Validate())
}
