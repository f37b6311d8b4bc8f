package assets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// FSLoader reads assets from a filesystem. Relative paths resolve against
// root.
type FSLoader struct {
	fs   afero.Fs
	root string
}

func NewFSLoader(fsys afero.Fs, root string) *FSLoader {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &FSLoader{fs: fsys, root: root}
}

func (l *FSLoader) Load(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := l.resolve(ref)
	if err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		return nil, fmt.Errorf("read %s: %w", ref, err)
	}
	return data, nil
}

func (l *FSLoader) resolve(ref string) (string, error) {
	path := ref
	if strings.HasPrefix(strings.ToLower(ref), "file://") {
		u, err := url.Parse(ref)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %w", ErrUnsupportedRef, ref, err)
		}
		path = u.Host + u.Path
	}
	if path == "" {
		return "", fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	if !filepath.IsAbs(path) && l.root != "" {
		path = filepath.Join(l.root, path)
	}
	return filepath.Clean(path), nil
}
