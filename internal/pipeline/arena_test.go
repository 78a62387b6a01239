package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArena(t *testing.T) {
	dir := t.TempDir()
	a := NewArena(dir)

	first, err := a.New("mojang->obf")
	require.NoError(t, err)
	second, err := a.New("mojang->obf")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, dir, filepath.Dir(first))
	assert.True(t, strings.HasPrefix(filepath.Base(first), "remap-mojang__obf-"))
	assert.FileExists(t, first)
	assert.Equal(t, []string{first, second}, a.Paths())

	require.NoError(t, a.Release(first))
	assert.NoFileExists(t, first)
	assert.Equal(t, []string{second}, a.Paths())

	outsider := filepath.Join(dir, "keep.jar")
	require.NoError(t, os.WriteFile(outsider, nil, 0o644))
	require.NoError(t, a.Release(outsider))
	assert.FileExists(t, outsider)

	require.NoError(t, os.Remove(second))
	require.NoError(t, a.Sweep())
	assert.Empty(t, a.Paths())
	assert.NoFileExists(t, second)
}
