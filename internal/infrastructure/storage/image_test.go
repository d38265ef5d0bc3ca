package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestDetectImage(t *testing.T) {
	ct, ext, err := DetectImage(pngHeader)
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)
	assert.Equal(t, ".png", ext)

	ct, ext, err = DetectImage([]byte{0xff, 0xd8, 0xff, 0xe0, 0, 0x10, 'J', 'F', 'I', 'F', 0})
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", ct)
	assert.Equal(t, ".jpg", ext)
}

func TestDetectImageRejects(t *testing.T) {
	_, _, err := DetectImage(nil)
	assert.Error(t, err)

	ct, _, err := DetectImage([]byte("%PDF-1.7\n"))
	assert.Error(t, err)
	assert.Equal(t, "application/pdf", ct)

	_, _, err = DetectImage([]byte("just some text"))
	assert.Error(t, err)
}

func TestObjectName(t *testing.T) {
	name := ObjectName("user-1", "artworks", ".png")
	assert.True(t, strings.HasPrefix(name, "user-1/artworks/"))
	assert.True(t, strings.HasSuffix(name, ".png"))
}
