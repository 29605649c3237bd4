package storage_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/globomantics/cms/pkg/storage"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestNewKey(t *testing.T) {
	t.Parallel()

	k := storage.NewKey("covers", "image/png")
	assert.True(t, strings.HasPrefix(k, "covers/"))
	assert.True(t, strings.HasSuffix(k, ".png"))
	assert.True(t, storage.ValidKey(k))

	assert.True(t, strings.HasSuffix(storage.NewKey("", "image/jpeg"), ".jpg"))
	assert.NotContains(t, storage.NewKey("/", "image/jpeg"), "/")
	assert.NotEqual(t, storage.NewKey("a", "image/png"), storage.NewKey("a", "image/png"))
}

func TestValidKey(t *testing.T) {
	t.Parallel()

	for key, want := range map[string]bool{
		"covers/a.png":    true,
		"a.png":           true,
		"":                false,
		"/etc/passwd":     false,
		"../secret":       false,
		"covers/../x.png": false,
		"covers//x.png":   false,
		`covers\x.png`:    false,
	} {
		assert.Equal(t, want, storage.ValidKey(key), key)
	}
}

func TestDetectContentType(t *testing.T) {
	t.Parallel()

	r := bytes.NewReader(append(pngHeader, make([]byte, 600)...))
	ct, err := storage.DetectContentType(r)
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)

	// rewound
	head := make([]byte, 4)
	_, err = io.ReadFull(r, head)
	require.NoError(t, err)
	assert.Equal(t, pngHeader[:4], head)

	ct, err = storage.DetectContentType(strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, "text/plain", ct)
}

func exercise(t *testing.T, s storage.Storage) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "covers/a.png", bytes.NewReader(pngHeader), int64(len(pngHeader)), "image/png"))

	obj, err := s.Open(ctx, "covers/a.png")
	require.NoError(t, err)
	data, err := io.ReadAll(obj.Body)
	require.NoError(t, obj.Body.Close())
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
	assert.Equal(t, "image/png", obj.ContentType)
	assert.Equal(t, int64(len(pngHeader)), obj.Size)

	assert.ErrorIs(t, s.Put(ctx, "../x.png", bytes.NewReader(nil), 0, "image/png"), storage.ErrInvalidKey)

	require.NoError(t, s.Delete(ctx, "covers/a.png"))
	require.NoError(t, s.Delete(ctx, "covers/a.png"))
	_, err = s.Open(ctx, "covers/a.png")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestMemory(t *testing.T) {
	t.Parallel()
	m := storage.NewMemory()
	exercise(t, m)
	assert.Empty(t, m.Keys())
}

func TestDir(t *testing.T) {
	t.Parallel()
	d, err := storage.NewDir(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	exercise(t, d)
}

func TestNewS3Validation(t *testing.T) {
	t.Parallel()

	_, err := storage.NewS3(storage.Config{Bucket: "b"})
	assert.ErrorIs(t, err, storage.ErrInvalidConfig)

	s, err := storage.NewS3(storage.Config{
		Bucket:    "b",
		AccessKey: "k",
		SecretKey: "s",
		Endpoint:  "http://localhost:9000",
		PathStyle: true,
	})
	require.NoError(t, err)
	assert.NotNil(t, s)

	_, err = s.Open(context.Background(), "../etc")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestConfigUsesS3(t *testing.T) {
	t.Parallel()
	assert.False(t, storage.Config{Dir: "uploads"}.UsesS3())
	assert.True(t, storage.Config{Bucket: "covers"}.UsesS3())
}
