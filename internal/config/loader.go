package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ericfisherdev/prpilot/internal/domain/port/driven"
)

// EnvConfigPath names the environment variable carrying the explicit
// highest-precedence config file path.
const EnvConfigPath = "PRPILOT_CONFIG"

// ErrConfigInvalid marks a fatal configuration failure. Only the explicit
// PRPILOT_CONFIG override is fatal when missing or malformed.
var ErrConfigInvalid = errors.New("invalid configuration")

// Loaded is the result of merging all readable config sources.
type Loaded struct {
	Config        Config
	SearchedPaths []string
	LoadedPaths   []string
}

// Loader merges configuration documents read through a ConfigSource.
type Loader struct {
	source driven.ConfigSource
}

// NewLoader creates a Loader backed by the given source.
func NewLoader(source driven.ConfigSource) *Loader {
	return &Loader{source: source}
}

// Paths returns the candidate config paths in merge order, lowest to highest
// precedence. The explicit override from PRPILOT_CONFIG, when set, is last.
func Paths() []string {
	paths := []string{"/etc/prpilot/config.json"}

	if base, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(base, "prpilot", "config.json"))
	}

	paths = append(paths,
		filepath.Join(".prpilot", "config.json"),
		"prpilot.config.json",
	)

	if explicit := os.Getenv(EnvConfigPath); explicit != "" {
		paths = append(paths, explicit)
	}

	return dedupPaths(paths)
}

// Load merges every readable source in Paths() order onto the built-in
// defaults. A missing source is skipped silently and a malformed source is
// skipped with a warning. The explicit PRPILOT_CONFIG override is the
// exception: it must exist and parse.
func (l *Loader) Load() (Loaded, error) {
	explicit := os.Getenv(EnvConfigPath)

	var merged Config
	paths := Paths()
	loaded := make([]string, 0, len(paths))

	for _, path := range paths {
		raw, err := l.source.Read(path)
		if err != nil {
			if errors.Is(err, driven.ErrConfigNotFound) {
				if path == explicit && explicit != "" {
					return Loaded{}, fmt.Errorf("%w: %s is set but file does not exist: %s", ErrConfigInvalid, EnvConfigPath, path)
				}
				continue
			}
			return Loaded{}, fmt.Errorf("reading config at %s: %w", path, err)
		}

		var parsed Config
		if err := json.Unmarshal(raw, &parsed); err != nil {
			if path == explicit && explicit != "" {
				return Loaded{}, fmt.Errorf("%w: parsing %s: %v", ErrConfigInvalid, path, err)
			}
			slog.Warn("skipping malformed config source", "path", path, "error", err)
			continue
		}

		merged.merge(parsed)
		loaded = append(loaded, path)
	}

	return Loaded{
		Config:        merged,
		SearchedPaths: paths,
		LoadedPaths:   loaded,
	}, nil
}

func dedupPaths(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
