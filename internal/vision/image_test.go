package vision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 1x1 PNG, the smallest payload the image decoder accepts.
const tinyPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg=="

func TestDecodeBase64Image(t *testing.T) {
	data, mimeType, err := DecodeBase64Image(tinyPNG)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mimeType)
	assert.NotEmpty(t, data)
}

func TestDecodeBase64ImageDataURLPrefix(t *testing.T) {
	data, mimeType, err := DecodeBase64Image("data:image/png;base64," + tinyPNG)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mimeType)
	assert.NotEmpty(t, data)
}

func TestDecodeBase64ImageEmpty(t *testing.T) {
	_, _, err := DecodeBase64Image("")
	assert.Error(t, err)
}

func TestDecodeBase64ImageInvalidBase64(t *testing.T) {
	_, _, err := DecodeBase64Image("not base64 at all!!!")
	assert.Error(t, err)
}

func TestDecodeBase64ImageNotAnImage(t *testing.T) {
	// Valid base64, but the bytes are plain text.
	_, _, err := DecodeBase64Image("aGVsbG8gd29ybGQ=")
	assert.Error(t, err)
}
