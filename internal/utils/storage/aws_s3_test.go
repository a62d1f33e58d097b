package storage

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBase64ImageRaw(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("image bytes"))

	data, err := DecodeBase64Image(payload)
	require.NoError(t, err)
	assert.Equal(t, []byte("image bytes"), data)
}

func TestDecodeBase64ImageDataURI(t *testing.T) {
	payload := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png bytes"))

	data, err := DecodeBase64Image(payload)
	require.NoError(t, err)
	assert.Equal(t, []byte("png bytes"), data)
}

func TestDecodeBase64ImageInvalid(t *testing.T) {
	_, err := DecodeBase64Image("%%% not base64 %%%")
	assert.ErrorIs(t, err, ErrInvalidBase64)
}

func TestExtensionFor(t *testing.T) {
	assert.Equal(t, ".jpg", extensionFor("image/jpeg"))
	assert.Equal(t, ".png", extensionFor("image/png"))
	assert.Equal(t, ".webp", extensionFor("image/webp"))
	assert.Equal(t, "", extensionFor("application/pdf"))
}
