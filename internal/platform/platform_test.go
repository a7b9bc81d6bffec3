package platform

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFreeSpace(t *testing.T) {
	free, ok := FreeSpace(t.TempDir())
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		assert.False(t, ok)
		return
	}
	assert.True(t, ok)
	assert.Positive(t, free)
}

func TestFreeSpace_MissingPath(t *testing.T) {
	_, ok := FreeSpace(filepath.Join(t.TempDir(), "does", "not", "exist"))
	assert.False(t, ok)
}
