package storage

import (
	"context"
	"testing"

	"github.com/lexcase/lexcase-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_PutAndGet(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	payload := []byte("motion to dismiss, draft 3")

	locator, err := store.Put(ctx, payload, ObjectMeta{
		FileName:    "motion.pdf",
		ContentType: "application/pdf",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, locator)
	// The original file name never leaks into the locator
	assert.NotContains(t, locator, "motion")
	assert.Contains(t, locator, ".pdf")

	data, err := store.Get(ctx, locator)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestLocalStorage_GetRejectsTraversal(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()

	for _, locator := range []string{"../outside.txt", "a/../../etc/passwd", "/etc/passwd"} {
		_, err := store.Get(ctx, locator)
		assert.Error(t, err, "locator %q should be rejected", locator)
	}
}

func TestLocalStorage_GetMissing(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "does-not-exist.pdf")
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	local, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	registry := NewRegistry(model.StorageBackendLocal, local)

	backend, err := registry.Backend(model.StorageBackendLocal)
	require.NoError(t, err)
	assert.Equal(t, model.StorageBackendLocal, backend.Name())

	def, err := registry.Default()
	require.NoError(t, err)
	assert.Equal(t, model.StorageBackendLocal, def.Name())

	_, err = registry.Backend(model.StorageBackendType("tape-archive"))
	assert.ErrorIs(t, err, ErrUnsupportedBackend)
}
