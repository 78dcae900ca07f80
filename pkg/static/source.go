package static

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"time"
)

// ErrNotFound is returned by a Source for missing assets.
var ErrNotFound = errors.New("static: asset not found")

// Asset is an opened static file.
type Asset struct {
	Content io.ReadSeeker
	ModTime time.Time

	// ContentType is empty when the source does not know it; the handler
	// then derives it from the file name.
	ContentType string

	// ETag is sent as is when non-empty.
	ETag string

	close func() error
}

// Close releases the asset.
func (a *Asset) Close() error {
	if a.close == nil {
		return nil
	}
	return a.close()
}

// Source opens assets by sanitized relative path.
type Source interface {
	Open(ctx context.Context, name string) (*Asset, error)
}

// DirSource serves assets from a file system, usually os.DirFS of the
// public directory.
type DirSource struct {
	fsys fs.FS
}

var _ Source = (*DirSource)(nil)

// NewDirSource creates a Source over fsys.
func NewDirSource(fsys fs.FS) *DirSource {
	return &DirSource{fsys: fsys}
}

// Open implements Source. Directories are reported as not found.
func (s *DirSource) Open(_ context.Context, name string) (*Asset, error) {
	f, err := s.fsys.Open(name)
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrInvalid) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	if rs, ok := f.(io.ReadSeeker); ok {
		return &Asset{Content: rs, ModTime: info.ModTime(), close: f.Close}, nil
	}

	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		return nil, err
	}
	return &Asset{Content: bytes.NewReader(data), ModTime: info.ModTime()}, nil
}
