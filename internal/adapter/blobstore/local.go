package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/niksmo/spellshop/internal/core/domain"
	"github.com/niksmo/spellshop/internal/core/port"
)

var _ port.BlobStore = (*Local)(nil)

// Local stores objects as files under a root directory. The HTTP server
// serves the directory at the public base path.
type Local struct {
	root    string
	baseURL string
}

func NewLocal(root, publicBaseURL string) (*Local, error) {
	const op = "NewLocal"

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	slog.Info("local blob store is ready", "op", op, "root", root)
	return &Local{root: root, baseURL: publicBaseURL}, nil
}

func (l *Local) Root() string {
	return l.root
}

func (l *Local) Put(
	ctx context.Context, key, _ string, body io.Reader,
) (putObj domain.BlobObject, putErr error) {
	const op = "Local.Put"

	if err := ctx.Err(); err != nil {
		return domain.BlobObject{}, fmt.Errorf("%s: %w", op, err)
	}

	path, err := l.path(key)
	if err != nil {
		return domain.BlobObject{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return domain.BlobObject{}, fmt.Errorf("%s: %w", op, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return domain.BlobObject{}, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		if err := f.Close(); err != nil && putErr == nil {
			putErr = fmt.Errorf("%s: %w", op, err)
		}
		if putErr != nil {
			_ = os.Remove(path)
		}
	}()

	if _, err := io.Copy(f, body); err != nil {
		return domain.BlobObject{}, fmt.Errorf("%s: %w", op, err)
	}
	return domain.BlobObject{Key: key, URL: objectURL(l.baseURL, key)}, nil
}

func (l *Local) Delete(ctx context.Context, key string) error {
	const op = "Local.Delete"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	path, err := l.path(key)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (l *Local) path(key string) (string, error) {
	p := filepath.FromSlash(key)
	if !filepath.IsLocal(p) {
		return "", ErrInvalidKey
	}
	return filepath.Join(l.root, p), nil
}
