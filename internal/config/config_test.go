package config

import (
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "", c.Format)
	assert.Equal(t, "", c.InputPath)
	assert.Equal(t, "", c.OutputPath)
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected *Config
		name     string
		args     []string
	}{
		{
			name: "all flags",
			args: []string{"cmd", "-f", "opvault", "-i", "/tmp/vault.opvault", "-o", "/tmp/out.db"},
			expected: &Config{
				Format:     "opvault",
				InputPath:  "/tmp/vault.opvault",
				OutputPath: "/tmp/out.db",
			},
		},
		{
			name:     "format and input only",
			args:     []string{"cmd", "-f", "bitwarden", "-i", "export.json"},
			expected: &Config{Format: "bitwarden", InputPath: "export.json"},
		},
		{
			name:     "unknown flags are filtered out",
			args:     []string{"cmd", "-f", "1pux", "-x", "ignored"},
			expected: &Config{Format: "1pux"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			defer func() { os.Args = oldArgs }()
			os.Args = tt.args

			config := &Config{}
			require.NotPanics(t, func() { parseFlags(config) })
			assert.Empty(t, cmp.Diff(config, tt.expected))
		})
	}
}
