package config

import (
	"flag"
	"os"

	"github.com/newhinton/keepassxc/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-f string   source format: opux, opvault, bitwarden, protonpass
//	-i string   path of the export file or vault directory
//	-o string   optional SQLite vault file to write the result into
//
// Note: The function filters os.Args to only include the flags it knows
// about, using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-f", "-i", "-o"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.Format, "f", cfg.Format, "source format (opux, opvault, bitwarden, protonpass)")
	fs.StringVar(&cfg.InputPath, "i", cfg.InputPath, "path of the export file or vault directory")
	fs.StringVar(&cfg.OutputPath, "o", cfg.OutputPath, "SQLite vault file to write the imported database into")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
