package file

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/hoopstat-haus/pipeline/pkg/errors"
)

// Store implements interfaces.ObjectStore on the local filesystem. Keys map
// to paths under a root directory; useful for development and tests where
// no S3 bucket is available.
type Store struct {
	root   string
	logger *logrus.Logger
}

// NewStore creates a filesystem-backed object store rooted at dir.
func NewStore(root string, logger *logrus.Logger) (*Store, error) {
	if root == "" {
		return nil, errors.NewStorageError(errors.CodeInvalidConfig, "root directory is required")
	}
	if logger == nil {
		logger = logrus.New()
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeConnectionFailed,
			fmt.Sprintf("cannot create root directory %q", root))
	}
	return &Store{root: root, logger: logger}, nil
}

// Put writes data under key, creating parent directories as needed.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	path := s.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeWriteFailed,
			fmt.Sprintf("cannot create directories for %q", key))
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeWriteFailed,
			fmt.Sprintf("cannot write %q", key))
	}

	s.logger.WithFields(logrus.Fields{
		"key":   key,
		"bytes": len(data),
	}).Debug("Wrote object")
	return nil
}

// Get reads the object stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapError(errors.ErrObjectNotFound, errors.ErrorTypeStorage,
				errors.CodeObjectNotFound, fmt.Sprintf("object %q not found", key))
		}
		return nil, errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeReadFailed,
			fmt.Sprintf("cannot read %q", key))
	}
	return data, nil
}

// List returns every key under the given prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(s.root, path)
		if relErr != nil {
			return relErr
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeReadFailed,
			fmt.Sprintf("cannot list objects under %q", prefix))
	}
	return keys, nil
}

// Delete removes the object stored under key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil {
		if os.IsNotExist(err) {
			return errors.WrapError(errors.ErrObjectNotFound, errors.ErrorTypeStorage,
				errors.CodeObjectNotFound, fmt.Sprintf("object %q not found", key))
		}
		return errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeWriteFailed,
			fmt.Sprintf("cannot delete %q", key))
	}
	return nil
}

// Ping verifies the root directory is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if _, err := os.Stat(s.root); err != nil {
		return errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeConnectionFailed,
			fmt.Sprintf("root directory %q unreachable", s.root))
	}
	return nil
}

// Close is a no-op for the filesystem store.
func (s *Store) Close() error {
	return nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}
