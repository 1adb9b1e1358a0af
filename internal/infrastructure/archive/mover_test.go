package archive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMover(t *testing.T) (*Mover, string) {
	t.Helper()
	archiveDir := t.TempDir()
	mover, err := NewMover(archiveDir, filepath.Join(archiveDir, "reconciled"))
	require.NoError(t, err)
	return mover, archiveDir
}

func TestMover_MovesFile(t *testing.T) {
	mover, archiveDir := newTestMover(t)
	src := filepath.Join(archiveDir, "A-100.pdf")
	require.NoError(t, os.WriteFile(src, []byte("pdf bytes"), 0o644))

	require.NoError(t, mover.Move("A-100.pdf"))

	_, err := os.Stat(src)
	assert.True(t, os.IsNotExist(err), "source should be gone")

	moved, err := os.ReadFile(filepath.Join(mover.ReconciledDir(), "A-100.pdf"))
	require.NoError(t, err)
	assert.Equal(t, []byte("pdf bytes"), moved)
}

func TestMover_MissingSource(t *testing.T) {
	mover, _ := newTestMover(t)

	err := mover.Move("nope.pdf")

	assert.ErrorIs(t, err, ErrSourceMissing)
}

func TestMover_StripsPathComponents(t *testing.T) {
	mover, archiveDir := newTestMover(t)
	src := filepath.Join(archiveDir, "A-100.pdf")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))

	require.NoError(t, mover.Move("../A-100.pdf"))

	_, err := os.Stat(filepath.Join(mover.ReconciledDir(), "A-100.pdf"))
	assert.NoError(t, err)
}
