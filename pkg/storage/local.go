package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"skillmatch-backend/internal/domain"
)

// LocalStorage writes uploads below a root directory, one subdirectory per category.
type LocalStorage struct {
	root string
}

func NewLocalStorage(root string) (*LocalStorage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStorage{root: root}, nil
}

func (s *LocalStorage) Save(ctx context.Context, category domain.FileCategory, filename string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir := filepath.Join(s.root, string(category))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create category dir: %w", err)
	}

	rel := objectKey(category, filename)
	full := filepath.Join(s.root, filepath.FromSlash(rel))

	// write to a temp name first so readers never see a partial file
	tmp := full + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := os.Rename(tmp, full); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("finalize file: %w", err)
	}
	return rel, nil
}

func (s *LocalStorage) Delete(ctx context.Context, rel string) error {
	clean := path.Clean("/" + rel)
	if strings.Contains(rel, "..") || clean == "/" {
		return fmt.Errorf("invalid storage path %q", rel)
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(clean)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

// objectKey returns "<category>/<uuid><ext>". The client file name only contributes its extension.
func objectKey(category domain.FileCategory, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) > 8 {
		ext = ""
	}
	return string(category) + "/" + uuid.NewString() + ext
}
