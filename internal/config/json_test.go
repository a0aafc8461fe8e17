package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJson(t *testing.T) {
	path := filepath.Join(t.TempDir(), "import.json")
	content := `{"format": "protonpass", "input_path": "export.json", "output_path": "vault.db"}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()
	os.Args = []string{"cmd", "-c", path}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, "protonpass", cfg.Format)
	assert.Equal(t, "export.json", cfg.InputPath)
	assert.Equal(t, "vault.db", cfg.OutputPath)
}

func TestParseJson_NoConfigFlagIsNoop(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()
	os.Args = []string{"cmd"}

	cfg := &Config{Format: "opux"}
	parseJson(cfg)
	assert.Equal(t, "opux", cfg.Format)
}

func TestLoadConfig_FlagsOverrideJson(t *testing.T) {
	path := filepath.Join(t.TempDir(), "import.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"format": "opux"}`), 0o600))

	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()
	os.Args = []string{"cmd", "-c", path, "-f", "opvault"}

	cfg := LoadConfig()
	require.NotNil(t, cfg)
	assert.Equal(t, "opvault", cfg.Format)
}
