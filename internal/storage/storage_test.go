package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketapi/internal/config"
)

func TestLocal_PutGetDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocal(dir)
	require.NoError(t, err)
	ctx := context.Background()

	info, err := s.Put(ctx, "abc.png", strings.NewReader("png-bytes"), PutObjectOptions{Size: 9, ContentType: "image/png"})
	require.NoError(t, err)
	assert.Equal(t, int64(9), info.Size)
	assert.FileExists(t, filepath.Join(dir, "abc.png"))

	rc, got, err := s.Get(ctx, "abc.png")
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "png-bytes", string(body))
	assert.Equal(t, "image/png", got.ContentType)

	require.NoError(t, s.Delete(ctx, "abc.png"))
	assert.NoFileExists(t, filepath.Join(dir, "abc.png"))

	// second delete is a no-op
	assert.NoError(t, s.Delete(ctx, "abc.png"))

	_, _, err = s.Get(ctx, "abc.png")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("client went away") }

func TestLocal_FailedPutLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocal(dir)
	require.NoError(t, err)

	_, err = s.Put(context.Background(), "x.jpg", failingReader{}, PutObjectOptions{Size: -1})
	require.Error(t, err)

	_, err = s.Put(context.Background(), "y.jpg", strings.NewReader("abc"), PutObjectOptions{Size: 10})
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocal_RejectsPathKeys(t *testing.T) {
	s, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "..", "../etc/passwd", "a/b.png", `a\b.png`} {
		_, err := s.Put(context.Background(), key, strings.NewReader("x"), PutObjectOptions{Size: 1})
		assert.Error(t, err, key)
	}
}

func TestNew_Driver(t *testing.T) {
	s, err := New(config.MediaConfig{Driver: "local", UploadDir: t.TempDir()}, config.MinIOConfig{})
	require.NoError(t, err)
	assert.NotNil(t, s)

	_, err = New(config.MediaConfig{Driver: "ftp"}, config.MinIOConfig{})
	assert.Error(t, err)

	_, err = New(config.MediaConfig{Driver: "minio"}, config.MinIOConfig{})
	assert.EqualError(t, err, "minio endpoint is required")
}

func TestNewMinIO_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.MinIOConfig
		want string
	}{
		{"no endpoint", config.MinIOConfig{}, "minio endpoint is required"},
		{"no credentials", config.MinIOConfig{Endpoint: "localhost:9000"}, "minio credentials are required"},
		{"no bucket", config.MinIOConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"}, "minio bucket is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMinIO(tt.cfg)
			assert.EqualError(t, err, tt.want)
		})
	}
}
