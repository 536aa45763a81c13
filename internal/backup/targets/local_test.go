package targets

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitecast/bitecast-go/internal/backup"
	"github.com/bitecast/bitecast-go/internal/conf"
)

func TestLocalTargetRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target, err := NewLocalTarget(map[string]any{"path": dir})
	require.NoError(t, err)
	require.NoError(t, target.Validate())

	snapshot := filepath.Join(t.TempDir(), "bitecast-20260820120000.db")
	require.NoError(t, os.WriteFile(snapshot, []byte("db contents"), 0o600))

	meta := &backup.Metadata{
		Version:   backup.MetadataVersion,
		ID:        "test-id",
		Timestamp: time.Now().UTC().Truncate(time.Second),
		Size:      11,
		Source:    "sqlite",
		Checksum:  "abc123",
	}
	ctx := context.Background()
	require.NoError(t, target.Store(ctx, snapshot, meta))

	stored, err := target.List(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "bitecast-20260820120000.db", stored[0].Name)
	assert.Equal(t, "test-id", stored[0].ID)
	assert.Equal(t, "sqlite", stored[0].Source)
	assert.Equal(t, meta.Timestamp, stored[0].Timestamp)

	copied, err := os.ReadFile(filepath.Join(dir, stored[0].Name))
	require.NoError(t, err)
	assert.Equal(t, []byte("db contents"), copied)

	require.NoError(t, target.Delete(ctx, stored[0].Name))
	remaining, err := target.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestLocalTargetListWithoutSidecar(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target, err := NewLocalTarget(map[string]any{"path": dir})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "orphan.db"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "partial.db.tmp"), []byte("x"), 0o600))

	stored, err := target.List(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "orphan.db", stored[0].Name)
	assert.False(t, stored[0].Timestamp.IsZero())
	assert.Equal(t, int64(1), stored[0].Size)
}

func TestLocalTargetRequiresPath(t *testing.T) {
	t.Parallel()

	_, err := NewLocalTarget(map[string]any{})
	assert.Error(t, err)
}

func TestFactoryBuildsKnownTypes(t *testing.T) {
	t.Parallel()

	local, err := New(conf.BackupTarget{Type: "local", Settings: map[string]any{"path": t.TempDir()}})
	require.NoError(t, err)
	assert.Equal(t, "local", local.Name())

	_, err = New(conf.BackupTarget{Type: "s3"})
	assert.Error(t, err)

	_, err = New(conf.BackupTarget{Type: "ftp", Settings: map[string]any{}})
	assert.Error(t, err) // host required
}
