// Package config holds runtime settings for the import CLI, assembled from
// defaults, an optional JSON file and command-line flags, in that order of
// precedence.
package config

// Config holds the settings one import run needs.
//
// Fields:
//   - Format: source format identifier (opux, opvault, bitwarden, protonpass).
//   - InputPath: export file (or directory, for opvault) to convert.
//   - OutputPath: optional SQLite vault file to persist the result into.
type Config struct {
	Format     string
	InputPath  string
	OutputPath string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.Format = ""
	c.InputPath = ""
	c.OutputPath = ""
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
