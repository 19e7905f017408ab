// Package filesystem reads unit inputs and persists unit outputs through afs.
package filesystem

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/reglet-dev/portbridge/domain/errors"
	"github.com/reglet-dev/portbridge/domain/ports"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
)

// Store implements InputSource and OutputSink on top of an afs.Service.
// Paths without a scheme are local files resolved against the base directory.
type Store struct {
	fs       afs.Service
	baseDir  string
	fileMode os.FileMode
}

var (
	_ ports.InputSource  = (*Store)(nil)
	_ ports.OutputSink   = (*Store)(nil)
	_ ports.PathResolver = (*Store)(nil)
)

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithBaseDir sets the directory relative paths resolve against.
// Empty means the working directory.
func WithBaseDir(dir string) StoreOption {
	return func(s *Store) {
		s.baseDir = dir
	}
}

// WithFileMode sets the permission used when creating output files.
func WithFileMode(mode os.FileMode) StoreOption {
	return func(s *Store) {
		if mode != 0 {
			s.fileMode = mode
		}
	}
}

// WithService replaces the afs service, e.g. with a memory-backed one in tests.
func WithService(fs afs.Service) StoreOption {
	return func(s *Store) {
		s.fs = fs
	}
}

// NewStore creates a Store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		fs:       afs.New(),
		fileMode: file.DefaultFileOsMode,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolve returns the location used for path. URLs with a scheme pass through.
func (s *Store) Resolve(path string) (string, error) {
	if strings.Contains(path, "://") {
		return path, nil
	}
	if !filepath.IsAbs(path) && s.baseDir != "" {
		path = filepath.Join(s.baseDir, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	return abs, nil
}

// Read returns the full contents at path decoded as UTF-8. Invalid byte
// sequences become U+FFFD. A missing or unreadable file yields a
// *errors.MissingInputError.
func (s *Store) Read(ctx context.Context, path string) (string, error) {
	data, err := s.ReadBytes(ctx, path)
	if err != nil {
		return "", &errors.MissingInputError{Path: path, Err: err}
	}
	return strings.ToValidUTF8(string(data), "\uFFFD"), nil
}

// ReadBytes returns the raw contents at path. A missing file yields an error
// wrapping os.ErrNotExist.
func (s *Store) ReadBytes(ctx context.Context, path string) ([]byte, error) {
	location, err := s.Resolve(path)
	if err != nil {
		return nil, err
	}

	exists, err := s.fs.Exists(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to check if %s exists: %w", path, err)
	}
	if !exists {
		return nil, fmt.Errorf("%s: %w", path, os.ErrNotExist)
	}

	data, err := s.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// Write replaces the contents at path with payload, creating the file and its
// parent directories when needed. The file is truncated in place, so a
// failure anywhere, including on Close, is reported as a *errors.WriteError.
func (s *Store) Write(ctx context.Context, path string, payload string) error {
	location, err := s.Resolve(path)
	if err != nil {
		return &errors.WriteError{Path: path, Err: err}
	}

	w, err := s.fs.NewWriter(ctx, location, s.fileMode,
		option.OsFlag(os.O_TRUNC), option.NewEmpty(true))
	if err != nil {
		return &errors.WriteError{Path: path, Err: err}
	}
	_, err = io.Copy(w, strings.NewReader(payload))
	if closeErr := w.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return &errors.WriteError{Path: path, Err: err}
	}
	return nil
}
