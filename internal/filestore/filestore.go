// Package filestore keeps uploaded files on the local disk.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// ErrInvalidPath is returned for names that escape the store root.
var ErrInvalidPath = errors.New("invalid file path")

// ErrNotExist is returned when a file is missing.
var ErrNotExist = fs.ErrNotExist

// Store saves and serves files by slash separated name.
type Store interface {
	Put(ctx context.Context, name string, r io.Reader) error
	Open(ctx context.Context, name string) (io.ReadSeekCloser, time.Time, error)
	Delete(ctx context.Context, name string) error
}

// Local is a Store rooted at a directory.
type Local struct {
	root string
}

var _ Store = (*Local)(nil)

// NewLocal returns a Local store rooted at root, creating it if needed.
func NewLocal(root string) (*Local, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Local{root: root}, nil
}

func (l *Local) resolve(name string) (string, error) {
	clean := path.Clean("/" + strings.TrimSpace(name))
	if clean == "/" || strings.Contains(name, "..") {
		return "", ErrInvalidPath
	}
	return filepath.Join(l.root, filepath.FromSlash(clean)), nil
}

// Put writes r to name through a temp file so readers never see partial
// content.
func (l *Local) Put(_ context.Context, name string, r io.Reader) error {
	p, err := l.resolve(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), ".upload-*")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), p)
}

// Open returns the content of name and its modification time.
func (l *Local) Open(_ context.Context, name string) (io.ReadSeekCloser, time.Time, error) {
	p, err := l.resolve(name)
	if err != nil {
		return nil, time.Time{}, err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, time.Time{}, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, time.Time{}, err
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, time.Time{}, ErrNotExist
	}
	return f, info.ModTime(), nil
}

// Delete removes name. Missing files are not an error.
func (l *Local) Delete(_ context.Context, name string) error {
	p, err := l.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
