package engine

import (
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashReader(t *testing.T) {
	h1, err := hashReader(strings.NewReader("hello world"))
	require.NoError(t, err)
	assert.Len(t, h1, 64)

	h2, err := hashReader(strings.NewReader("hello world"))
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	h3, err := hashReader(strings.NewReader("different content"))
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

func TestHashReaderEmpty(t *testing.T) {
	h, err := hashReader(strings.NewReader(""))
	require.NoError(t, err)
	assert.NotEmpty(t, h)
}

func TestHashReaderError(t *testing.T) {
	boom := errors.New("boom")
	_, err := hashReader(iotest.ErrReader(boom))
	require.ErrorIs(t, err, boom)
}
