package driven

import "errors"

// ErrConfigNotFound indicates a candidate config path does not exist. The
// loader skips such sources silently.
var ErrConfigNotFound = errors.New("config source not found")

// ConfigSource is the driven port for reading raw configuration documents.
// The production adapter is the filesystem; tests use in-memory fakes.
type ConfigSource interface {
	// Read returns the raw bytes at path, or ErrConfigNotFound.
	Read(path string) ([]byte, error)
}
