package storage

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"portal/internal/config"
)

// Local keeps objects on a filesystem under a root directory.
// URLs point at the static /uploads route and never expire.
type Local struct {
	fs      afero.Fs
	baseURL string
}

// NewLocal roots an adapter at cfg.Root inside fs. Pass afero.NewOsFs() in production.
func NewLocal(fs afero.Fs, cfg config.LocalStorageConfig) (*Local, error) {
	if cfg.Root == "" {
		return nil, errors.New("local storage root is required")
	}
	if err := fs.MkdirAll(cfg.Root, 0o755); err != nil {
		return nil, errors.Wrap(err, "create storage root")
	}
	base := afero.NewBasePathFs(fs, cfg.Root)
	if err := base.MkdirAll(localPrefix, 0o755); err != nil {
		return nil, errors.Wrap(err, "create documents directory")
	}
	return &Local{fs: base, baseURL: cfg.PublicBaseURL}, nil
}

func (l *Local) Driver() string { return DriverLocal }

// FileSystem exposes the root for static serving.
func (l *Local) FileSystem() http.FileSystem {
	return afero.NewHttpFs(l.fs)
}

func (l *Local) Put(ctx context.Context, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return ObjectInfo{}, err
	}
	key := flatKey(opt.Filename)
	cr := &countingReader{r: r}
	if err := afero.WriteReader(l.fs, key, cr); err != nil {
		_ = l.fs.Remove(key)
		return ObjectInfo{}, errors.Wrapf(err, "write %s", key)
	}
	return ObjectInfo{
		Key:          key,
		Size:         cr.n,
		ContentType:  opt.ContentType,
		LastModified: time.Now(),
		Metadata:     opt.Metadata,
	}, nil
}

// Resolve returns the public static URL for key.
func (l *Local) Resolve(ctx context.Context, key string) (ResolvedURL, error) {
	if err := ctx.Err(); err != nil {
		return ResolvedURL{}, err
	}
	if _, err := l.fs.Stat(key); err != nil {
		return ResolvedURL{}, l.mapErr(err, key)
	}
	return ResolvedURL{URL: l.baseURL + "/uploads/" + key}, nil
}

func (l *Local) Remove(ctx context.Context, key string) (Removal, error) {
	if err := ctx.Err(); err != nil {
		return Removed, err
	}
	if err := l.fs.Remove(key); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return AlreadyAbsent, nil
		}
		return Removed, errors.Wrapf(err, "remove %s", key)
	}
	return Removed, nil
}

func (l *Local) mapErr(err error, key string) error {
	if errors.Is(err, os.ErrNotExist) {
		return errors.Wrap(ErrObjectNotFound, key)
	}
	return errors.Wrap(err, key)
}
