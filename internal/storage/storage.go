package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a stored file reference does not resolve.
var ErrNotFound = errors.New("file not found")

// FileStore holds uploaded files (payment proofs, event posters,
// certificate templates) and hands back opaque references.
type FileStore interface {
	// Put stores the content under dir with a collision-free name derived
	// from filename and returns the reference to keep on the entity.
	Put(ctx context.Context, dir, filename string, content io.Reader) (string, error)
	// Get reads a stored file back. Returns ErrNotFound for dangling refs.
	Get(ctx context.Context, ref string) ([]byte, error)
	Delete(ctx context.Context, ref string) error
	Exists(ctx context.Context, ref string) bool
}

// LocalStore keeps files under a single base directory, the way the
// deployment serves them as static assets.
type LocalStore struct {
	BaseDir string
}

func NewLocalStore(baseDir string) (*LocalStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return &LocalStore{BaseDir: baseDir}, nil
}

func (s *LocalStore) Put(ctx context.Context, dir, filename string, content io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ref := filepath.ToSlash(filepath.Join(dir, uuid.New().String()+strings.ToLower(filepath.Ext(filename))))
	fullPath := filepath.Join(s.BaseDir, filepath.FromSlash(ref))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}

	f, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, content); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return ref, nil
}

func (s *LocalStore) Get(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(ref))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read %s: %w", ref, err)
	}
	return data, nil
}

func (s *LocalStore) Delete(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(s.path(ref)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", ref, err)
	}
	return nil
}

func (s *LocalStore) Exists(ctx context.Context, ref string) bool {
	if ref == "" {
		return false
	}
	_, err := os.Stat(s.path(ref))
	return err == nil
}

func (s *LocalStore) path(ref string) string {
	return filepath.Join(s.BaseDir, filepath.FromSlash(ref))
}
