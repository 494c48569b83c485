package storage

import (
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

func TestLocalStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "reports/2567/a.csv", strings.NewReader("code,hours\n"), -1, "text/csv"))

	rc, err := store.Open(ctx, "reports/2567/a.csv")
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "code,hours\n", string(body))

	require.NoError(t, store.Delete(ctx, "reports/2567/a.csv"))
	_, err = store.Open(ctx, "reports/2567/a.csv")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestLocalStorageRejectsEscapingKeys(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Open(context.Background(), "../../etc/passwd")
	assert.Error(t, err)
	assert.Error(t, store.Put(context.Background(), "/tmp/x", strings.NewReader(""), 0, ""))
}

func TestLocalStorageCleanupOlderThan(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "old.pdf", strings.NewReader("x"), 1, "application/pdf"))
	require.NoError(t, store.Put(ctx, "new.pdf", strings.NewReader("y"), 1, "application/pdf"))

	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "old.pdf"), past, past))

	deleted, err := store.CleanupOlderThan(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []string{"old.pdf"}, deleted)
}
