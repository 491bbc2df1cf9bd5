package repo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedSnapshot(t *testing.T) {
	snap, err := EmbeddedSnapshot()
	require.NoError(t, err)
	require.Len(t, snap.Wrappers, 3)
	assert.Equal(t, "MC001", snap.Wrappers[0].ModelNumber)
	require.NotNil(t, snap.Wrappers[0].LateNightPrice)
	assert.Equal(t, 249.0, *snap.Wrappers[0].LateNightPrice)
	assert.Nil(t, snap.Wrappers[1].LateNightPrice)
	assert.Empty(t, snap.Admins)
}

func TestParseSnapshot_Errors(t *testing.T) {
	_, err := ParseSnapshot([]byte("{"), nil)
	assert.ErrorContains(t, err, CollectionWrappers)

	_, err = ParseSnapshot(nil, []byte("nope"))
	assert.ErrorContains(t, err, CollectionAdmins)

	snap, err := ParseSnapshot(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, snap.Wrappers)
}

func TestWriteSnapshot_FileSnapshotRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "export")
	src, err := EmbeddedSnapshot()
	require.NoError(t, err)

	require.NoError(t, WriteSnapshot(dir, src))

	loaded, err := FileSnapshot(filepath.Join(dir, WrappersExportFile), filepath.Join(dir, AdminsExportFile))()
	require.NoError(t, err)
	assert.Equal(t, src.Wrappers, loaded.Wrappers)

	raw, err := os.ReadFile(filepath.Join(dir, AdminsExportFile))
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestFileSnapshot_MissingFile(t *testing.T) {
	_, err := FileSnapshot(filepath.Join(t.TempDir(), "missing.json"), "")()
	assert.Error(t, err)
}
