package gpio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFile(t *testing.T, fn string) string {
	b, err := os.ReadFile(fn)
	require.NoError(t, err)
	return string(b)
}

func TestPin(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "gpio24"), 0755))

	p, err := Open(root, 24)
	require.NoError(t, err)
	assert.Equal(t, "high", readFile(t, filepath.Join(root, "gpio24", "direction")))

	require.NoError(t, p.SetReset(false))
	assert.Equal(t, "0", readFile(t, filepath.Join(root, "gpio24", "value")))
	require.NoError(t, p.SetReset(true))
	assert.Equal(t, "1", readFile(t, filepath.Join(root, "gpio24", "value")))

	require.NoError(t, p.Close())
	assert.Equal(t, "24", readFile(t, filepath.Join(root, "unexport")))
}

func TestPinExport(t *testing.T) {
	root := t.TempDir()
	// sysfs creates the directory on export, a plain directory doesn't.
	_, err := Open(root, 5)
	assert.Error(t, err)
	assert.Equal(t, "5", readFile(t, filepath.Join(root, "export")))
}
