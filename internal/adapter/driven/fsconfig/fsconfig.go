// Package fsconfig implements the ConfigSource port against the local
// filesystem.
package fsconfig

import (
	"fmt"
	"os"

	"github.com/ericfisherdev/prpilot/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ConfigSource = (*Source)(nil)

// Source reads config documents from disk.
type Source struct{}

// New creates a filesystem-backed config source.
func New() *Source {
	return &Source{}
}

// Read returns the raw bytes at path, mapping a missing file to
// driven.ErrConfigNotFound so the loader can skip it.
func (s *Source) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", driven.ErrConfigNotFound, path)
		}
		return nil, err
	}
	return data, nil
}
