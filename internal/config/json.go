package config

import (
	"encoding/json"
	"os"

	"github.com/newhinton/keepassxc/internal/flagx"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling; values are
// copied into the runtime Config afterwards.
type JsonConfig struct {
	Format     string `json:"format"`
	InputPath  string `json:"input_path"`
	OutputPath string `json:"output_path"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// Lookup order for the JSON file path:
//  1. Command-line flags (-c or -config) via flagx.JsonConfigFlags().
//  2. If empty, no JSON is loaded and the function returns.
//
// Intended usage is: defaults -> parseJson -> parseFlags, where later stages
// override earlier ones.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.Format != "" {
		cfg.Format = jc.Format
	}
	if jc.InputPath != "" {
		cfg.InputPath = jc.InputPath
	}
	if jc.OutputPath != "" {
		cfg.OutputPath = jc.OutputPath
	}
}
