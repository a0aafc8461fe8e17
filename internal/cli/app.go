// Package cli wires the import pipeline together: it picks the reader for
// the requested format, prompts for a password when the source needs one,
// runs the conversion and optionally persists the result.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/newhinton/keepassxc/internal/config"
	"github.com/newhinton/keepassxc/internal/format"
	"github.com/newhinton/keepassxc/internal/format/bitwarden"
	"github.com/newhinton/keepassxc/internal/format/opux"
	"github.com/newhinton/keepassxc/internal/format/opvault"
	"github.com/newhinton/keepassxc/internal/format/protonpass"
	"github.com/newhinton/keepassxc/internal/logging"
	"github.com/newhinton/keepassxc/internal/models"
	"github.com/newhinton/keepassxc/internal/store"
)

// ErrUnknownFormat is returned when the configured format matches no reader.
var ErrUnknownFormat = errors.New("unknown source format")

// App runs one import: convert the configured input and report the outcome.
type App struct {
	cfg *config.Config
	log logging.Logger
}

// NewApp validates cfg and returns a ready-to-run App.
func NewApp(cfg *config.Config) (*App, error) {
	if cfg.Format == "" {
		return nil, errors.New("no source format given (use -f)")
	}
	if cfg.InputPath == "" {
		return nil, errors.New("no input path given (use -i)")
	}
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	return &App{cfg: cfg, log: log.With("format", cfg.Format)}, nil
}

// newReader returns the reader registered for the given format name.
func newReader(name string) (format.Reader, error) {
	switch name {
	case "opux", "1pux":
		return opux.NewReader(), nil
	case "opvault":
		return opvault.NewReader(), nil
	case "bitwarden":
		return bitwarden.NewReader(), nil
	case "protonpass":
		return protonpass.NewReader(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// needsPassword reports whether the source at path requires a password
// before it can be read. OPVault directories always do; Bitwarden exports
// only when the file announces itself as password protected.
func needsPassword(name, path string) bool {
	switch name {
	case "opvault":
		return true
	case "bitwarden":
		data, err := os.ReadFile(path)
		if err != nil {
			return false
		}
		var probe struct {
			Encrypted bool `json:"encrypted"`
		}
		if err := json.Unmarshal(data, &probe); err != nil {
			return false
		}
		return probe.Encrypted
	default:
		return false
	}
}

// Run performs the import. It returns an error for hard failures; reader
// level warnings are logged and do not abort the run.
func (a *App) Run(ctx context.Context) error {
	reader, err := newReader(a.cfg.Format)
	if err != nil {
		return err
	}

	var password string
	if needsPassword(a.cfg.Format, a.cfg.InputPath) {
		pw, err := GetPassword(os.Stderr)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = string(pw)
	}

	a.log.Info(ctx, "starting import", "input", a.cfg.InputPath)

	db, err := reader.Convert(a.cfg.InputPath, password)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	if reader.HasError() {
		a.log.Warn(ctx, "import finished with warnings", "detail", reader.ErrorString())
	}

	groups, entries := countTree(db.RootGroup())
	a.log.Info(ctx, "import finished", "groups", groups, "entries", entries)

	if a.cfg.OutputPath == "" {
		return nil
	}

	sqlDB, err := store.InitDatabase(ctx, a.cfg.OutputPath)
	if err != nil {
		return fmt.Errorf("failed to open vault file: %w", err)
	}
	defer sqlDB.Close()

	saved, err := store.SaveDatabase(ctx, sqlDB, db)
	if err != nil {
		return fmt.Errorf("failed to persist vault: %w", err)
	}
	a.log.Info(ctx, "vault written", "path", a.cfg.OutputPath, "entries", saved)
	return nil
}

// countTree returns the number of groups (excluding root) and entries below g.
func countTree(g *models.Group) (groups, entries int) {
	entries = len(g.Entries())
	for _, c := range g.Children() {
		groups++
		cg, ce := countTree(c)
		groups += cg
		entries += ce
	}
	return groups, entries
}
