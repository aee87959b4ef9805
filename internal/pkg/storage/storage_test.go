package storage

import (
	"context"
	"encoding/base64"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes() []byte {
	return append(append([]byte{}, pngSignature...), []byte("rest-of-image")...)
}

func TestLocalStorage_PutOpenDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir, "http://localhost:8080/uploads/")
	require.NoError(t, err)
	ctx := context.Background()

	key, err := s.Put(ctx, "a/b.txt", strings.NewReader("hello"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "a/b.txt", key)

	rc, err := s.Open(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "hello", string(data))

	// overwrite in place, no temp files left behind
	_, err = s.Put(ctx, key, strings.NewReader("bye"), "text/plain")
	require.NoError(t, err)
	entries, err := os.ReadDir(filepath.Join(dir, "a"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "b.txt", entries[0].Name())

	url, err := s.URL(key)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/uploads/a/b.txt", url)

	require.NoError(t, s.Delete(ctx, key))
	require.NoError(t, s.Delete(ctx, key))
	_, err = s.Open(ctx, key)
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestLocalStorage_StaysInsideBasePath(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "http://x")
	require.NoError(t, err)

	key, err := s.Put(context.Background(), "../../escape.txt", strings.NewReader("x"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "escape.txt", key)

	_, err = s.Put(context.Background(), "..", strings.NewReader("x"), "text/plain")
	assert.Error(t, err)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "qr/c1/d1.png", QRImageKey("c1", "d1"))
	assert.Equal(t, "profiles/u1/v1.jpg", ProfilePictureKey("u1", "v1"))
}

func TestDecodePNG(t *testing.T) {
	raw := base64.StdEncoding.EncodeToString(pngBytes())

	got, err := DecodePNG(raw)
	require.NoError(t, err)
	assert.Equal(t, pngBytes(), got)

	_, err = DecodePNG("data:image/png;base64," + raw)
	assert.NoError(t, err)

	_, err = DecodePNG("data:image/jpeg;base64," + raw)
	assert.ErrorIs(t, err, ErrInvalidImage)

	_, err = DecodePNG(base64.StdEncoding.EncodeToString([]byte("GIF89a")))
	assert.ErrorIs(t, err, ErrInvalidImage)

	_, err = DecodePNG("%%%")
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestSaveQRImage(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "http://localhost/uploads")
	require.NoError(t, err)

	url, err := SaveQRImage(context.Background(), s, "c1", "d1", base64.StdEncoding.EncodeToString(pngBytes()))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost/uploads/qr/c1/d1.png", url)
}
