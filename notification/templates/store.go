// Package templates loads email templates from a read-only filesystem.
package templates

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/chilisites/postsapi/notification/domain"
	"github.com/spf13/afero"
)

var _ domain.TemplateStore = (*Store)(nil)

var ErrInvalidName = errors.New("invalid template name")

// Store reads templates from an afero filesystem on every call.
type Store struct {
	fs afero.Fs
}

// NewDirStore serves templates from dir on the OS filesystem.
func NewDirStore(dir string) *Store {
	return NewFSStore(afero.NewBasePathFs(afero.NewOsFs(), dir))
}

// NewFSStore serves templates from fs. Writes through the store are rejected.
func NewFSStore(fs afero.Fs) *Store {
	return &Store{fs: afero.NewReadOnlyFs(fs)}
}

// Load returns the template source for name. Names must be plain file names.
func (s *Store) Load(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || path.Clean(name) != name || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	data, err := afero.ReadFile(s.fs, name)
	if err != nil {
		return "", fmt.Errorf("failed to read template %s: %w", name, err)
	}

	return string(data), nil
}
