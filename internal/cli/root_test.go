package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AisKreme/brot-backer/internal/config"
)

func TestConfigPathResolution(t *testing.T) {
	t.Cleanup(func() { flagConfig = "" })

	flagConfig = ""
	t.Setenv("BROTBACKER_CONFIG", "")
	assert.Equal(t, config.DefaultPath, configPath())

	t.Setenv("BROTBACKER_CONFIG", "umgebung.yaml")
	assert.Equal(t, "umgebung.yaml", configPath())

	// The flag beats the environment.
	flagConfig = "flagge.yaml"
	assert.Equal(t, "flagge.yaml", configPath())
}

func TestDataDirOverrideResolution(t *testing.T) {
	t.Cleanup(func() { flagDataDir = "" })

	flagDataDir = ""
	t.Setenv("BROTBACKER_DATA_DIR", "")
	assert.Equal(t, "", dataDirOverride())

	t.Setenv("BROTBACKER_DATA_DIR", "/srv/brot")
	assert.Equal(t, "/srv/brot", dataDirOverride())

	flagDataDir = "lokal"
	assert.Equal(t, "lokal", dataDirOverride())
}
