package badger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/pocketgenie/core"
	"github.com/poiesic/pocketgenie/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "db")
	backend, err := OpenBackend(dir, false)
	require.NoError(t, err)
	defer backend.Close()

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestOpenBackend_NotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	_, err := OpenBackend(file, false)
	assert.Error(t, err)
}

func TestBackendClose(t *testing.T) {
	tasks, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)

	require.NoError(t, backend.Close())
	assert.True(t, backend.IsClosed())

	_, err = tasks.GetTask(context.Background(), "anything")
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestPersistenceAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	backend, err := OpenBackend(dir, false)
	require.NoError(t, err)
	repo, err := NewTaskRepository(backend)
	require.NoError(t, err)
	added, err := repo.AddTasks(ctx, &core.Task{Title: "Persist me", Vector: []float32{1, 0}})
	require.NoError(t, err)
	require.NoError(t, backend.Close())

	backend, err = OpenBackend(dir, false)
	require.NoError(t, err)
	defer backend.Close()
	repo, err = NewTaskRepository(backend)
	require.NoError(t, err)

	got, err := repo.GetTask(ctx, added[0].Id)
	require.NoError(t, err)
	assert.Equal(t, "Persist me", got.Title)
	assert.Equal(t, []float32{1, 0}, got.Vector)
}
