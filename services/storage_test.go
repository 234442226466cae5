package services

import (
	"agency_site_go/config"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage(t *testing.T) {
	tempDir := t.TempDir()
	storage := NewLocalStorage(tempDir)
	ctx := context.Background()
	content := "hello storage"
	key := "backups/submissions/file.xlsx"

	t.Run("UploadReader creates file", func(t *testing.T) {
		result, err := storage.UploadReader(ctx, strings.NewReader(content), key, ExportContentType, int64(len(content)))
		require.NoError(t, err)
		assert.Equal(t, key, result.Key)
		assert.Equal(t, int64(len(content)), result.FileSize)

		_, err = os.Stat(filepath.Join(tempDir, "backups", "submissions", "file.xlsx"))
		assert.NoError(t, err)
	})

	t.Run("Get retrieves file content", func(t *testing.T) {
		reader, err := storage.Get(ctx, key)
		require.NoError(t, err)
		defer reader.Close()

		got, _ := io.ReadAll(reader)
		assert.Equal(t, content, string(got))
	})

	t.Run("List returns oldest first", func(t *testing.T) {
		second := "backups/submissions/second.xlsx"
		_, err := storage.UploadReader(ctx, strings.NewReader("x"), second, ExportContentType, 1)
		require.NoError(t, err)
		old := time.Now().Add(-time.Hour)
		require.NoError(t, os.Chtimes(filepath.Join(tempDir, "backups", "submissions", "file.xlsx"), old, old))

		objects, err := storage.List(ctx, BackupPrefix)
		require.NoError(t, err)
		require.Len(t, objects, 2)
		assert.Equal(t, key, objects[0].Key)
		assert.Equal(t, second, objects[1].Key)
	})

	t.Run("List of missing prefix is empty", func(t *testing.T) {
		objects, err := storage.List(ctx, "nothing/here")
		assert.NoError(t, err)
		assert.Empty(t, objects)
	})

	t.Run("Delete removes file", func(t *testing.T) {
		require.NoError(t, storage.Delete(ctx, key))

		_, err := os.Stat(filepath.Join(tempDir, "backups", "submissions", "file.xlsx"))
		assert.True(t, os.IsNotExist(err))

		assert.NoError(t, storage.Delete(ctx, key), "deleting twice is fine")
	})

	t.Run("Keys cannot escape the base dir", func(t *testing.T) {
		_, err := storage.UploadReader(ctx, strings.NewReader("x"), "../../escape.txt", "text/plain", 1)
		require.NoError(t, err)
		_, err = os.Stat(filepath.Join(tempDir, "escape.txt"))
		assert.NoError(t, err)

		_, err = storage.Get(ctx, "")
		assert.Error(t, err)
	})
}

func TestInitializeStorage_FallsBackToLocal(t *testing.T) {
	cfg := &config.Config{BackupDir: t.TempDir()}

	storage := InitializeStorage(cfg)
	assert.Equal(t, "local", storage.Name())
}

func TestBackupKey(t *testing.T) {
	ts := time.Date(2026, 4, 2, 2, 0, 0, 0, time.UTC)
	assert.Equal(t, "backups/submissions/submissions_2026-04-02_020000.xlsx", BackupKey(ts))
}
