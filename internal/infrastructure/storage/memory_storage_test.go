package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryObjectStorage(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryObjectStorage("https://files.test")

	t.Run("empty key", func(t *testing.T) {
		assert.ErrorIs(t, storage.Upload(ctx, "", []byte("x"), "text/plain"), ErrEmptyKey)
		_, err := storage.ObjectExists(ctx, "")
		assert.ErrorIs(t, err, ErrEmptyKey)
		_, _, err = storage.GenerateDownloadURL(ctx, "", time.Minute)
		assert.ErrorIs(t, err, ErrEmptyKey)
	})

	t.Run("upload then exists", func(t *testing.T) {
		data := []byte("%PDF-1.3")
		require.NoError(t, storage.Upload(ctx, "quotes/DEV-2026-00001.pdf", data, "application/pdf"))
		data[0] = 'X'

		exists, err := storage.ObjectExists(ctx, "quotes/DEV-2026-00001.pdf")
		require.NoError(t, err)
		assert.True(t, exists)

		stored, contentType, ok := storage.Get("quotes/DEV-2026-00001.pdf")
		require.True(t, ok)
		assert.Equal(t, "%PDF-1.3", string(stored), "upload keeps its own copy")
		assert.Equal(t, "application/pdf", contentType)

		exists, err = storage.ObjectExists(ctx, "quotes/missing.pdf")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("download url", func(t *testing.T) {
		link, expiresAt, err := storage.GenerateDownloadURL(ctx, "tickets/e-ticket.pdf", 15*time.Minute)
		require.NoError(t, err)
		assert.Contains(t, link, "https://files.test/tickets%2Fe-ticket.pdf?expires=")
		assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)
	})
}
