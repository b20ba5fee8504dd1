package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	pkgerrors "github.com/yungbote/studypath/internal/pkg/errors"
	"github.com/yungbote/studypath/internal/platform/logger"
)

const localScheme = "local://"

// LocalStore keeps blobs under a directory on disk.
type LocalStore struct {
	log *logger.Logger
	dir string
}

func NewLocalStore(log *logger.Logger, dir string) (*LocalStore, error) {
	if log == nil {
		log = logger.Nop()
	}
	if strings.TrimSpace(dir) == "" {
		dir = "uploads"
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}
	return &LocalStore{log: log.With("service", "LocalBlobStore"), dir: abs}, nil
}

func (s *LocalStore) Put(ctx context.Context, studyID, fileName string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key, err := objectKey(studyID, fileName)
	if err != nil {
		return "", err
	}
	full := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("write blob: %w", err)
	}
	s.log.Debug("blob stored", "key", key, "size", len(data))
	return localScheme + key, nil
}

func (s *LocalStore) Get(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(full)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("blob %s: %w", ref, pkgerrors.ErrNotFound)
	}
	return b, err
}

func (s *LocalStore) DeleteStudy(ctx context.Context, studyID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := objectKey(studyID, "x"); err != nil {
		return err
	}
	return os.RemoveAll(filepath.Join(s.dir, filepath.FromSlash(studyPrefix(studyID))))
}

// resolve maps a ref to a path, refusing anything outside the store dir.
func (s *LocalStore) resolve(ref string) (string, error) {
	key, ok := strings.CutPrefix(ref, localScheme)
	if !ok || key == "" {
		return "", fmt.Errorf("blob ref %q: %w", ref, pkgerrors.ErrInvalidArgument)
	}
	full := filepath.Join(s.dir, filepath.FromSlash(key))
	rel, err := filepath.Rel(s.dir, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("blob ref %q: %w", ref, pkgerrors.ErrInvalidArgument)
	}
	return full, nil
}
