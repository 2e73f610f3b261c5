package storage

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portal/internal/config"
)

func newTestLocal(t *testing.T) (*Local, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	l, err := NewLocal(fs, config.LocalStorageConfig{Root: "/srv/uploads", PublicBaseURL: "https://portal.example.com"})
	require.NoError(t, err)
	return l, fs
}

func TestLocal_PutResolveRemove(t *testing.T) {
	l, fs := newTestLocal(t)
	ctx := context.Background()

	info, err := l.Put(ctx, strings.NewReader("%PDF-1.4 body"), PutObjectOptions{
		Filename:    "Report.PDF",
		ContentType: "application/pdf",
		Size:        13,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(13), info.Size)
	assert.True(t, strings.HasPrefix(info.Key, "project-documents/"))
	assert.True(t, strings.HasSuffix(info.Key, ".pdf"))

	ok, err := afero.Exists(fs, "/srv/uploads/"+info.Key)
	require.NoError(t, err)
	assert.True(t, ok)

	u, err := l.Resolve(ctx, info.Key)
	require.NoError(t, err)
	assert.Equal(t, "https://portal.example.com/uploads/"+info.Key, u.URL)
	assert.Nil(t, u.ExpiresAt)

	body, err := afero.ReadFile(fs, "/srv/uploads/"+info.Key)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 body", string(body))

	removal, err := l.Remove(ctx, info.Key)
	require.NoError(t, err)
	assert.Equal(t, Removed, removal)

	removal, err = l.Remove(ctx, info.Key)
	require.NoError(t, err)
	assert.Equal(t, AlreadyAbsent, removal)
}

func TestLocal_MissingObject(t *testing.T) {
	l, _ := newTestLocal(t)

	_, err := l.Resolve(context.Background(), "project-documents/nope.pdf")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestLocal_KeysStayInsideRoot(t *testing.T) {
	l, fs := newTestLocal(t)
	require.NoError(t, afero.WriteFile(fs, "/srv/secret.txt", []byte("x"), 0o600))

	_, err := l.Resolve(context.Background(), "../secret.txt")
	assert.Error(t, err)
}

func TestLocal_FileSystemServesObjects(t *testing.T) {
	l, _ := newTestLocal(t)
	info, err := l.Put(context.Background(), strings.NewReader("hello"), PutObjectOptions{Filename: "a.txt"})
	require.NoError(t, err)

	var hfs http.FileSystem = l.FileSystem()
	f, err := hfs.Open("/" + info.Key)
	require.NoError(t, err)
	defer f.Close()
	body, _ := io.ReadAll(f)
	assert.Equal(t, "hello", string(body))
}

func TestLocal_CanceledContext(t *testing.T) {
	l, _ := newTestLocal(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.Put(ctx, strings.NewReader("x"), PutObjectOptions{Filename: "a.txt"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewLocal_RequiresRoot(t *testing.T) {
	_, err := NewLocal(afero.NewMemMapFs(), config.LocalStorageConfig{})
	assert.Error(t, err)
}
