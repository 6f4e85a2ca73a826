package media

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/foodgram-go/apperror"
)

// A 1x1 transparent PNG.
var pngBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
}

func pngDataURI() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)
}

func TestDecodeDataURI(t *testing.T) {
	raw, ext, err := DecodeDataURI(pngDataURI())
	require.NoError(t, err)
	assert.Equal(t, pngBytes, raw)
	assert.Equal(t, ".png", ext)
}

func TestDecodeDataURI_JpegExtension(t *testing.T) {
	uri := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte{0xff, 0xd8})
	_, ext, err := DecodeDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, ".jpg", ext)
}

func TestDecodeDataURI_Rejections(t *testing.T) {
	cases := []struct {
		name string
		uri  string
	}{
		{"not a data URI", "http://example.com/cat.png"},
		{"missing comma", "data:image/png;base64"},
		{"not base64 encoded", "data:image/png,rawbytes"},
		{"non-image mime", "data:text/plain;base64," + base64.StdEncoding.EncodeToString([]byte("hi"))},
		{"unknown subtype", "data:image/tiff;base64," + base64.StdEncoding.EncodeToString([]byte("hi"))},
		{"bad payload", "data:image/png;base64,!!!not-base64!!!"},
		{"empty payload", "data:image/png;base64,"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := DecodeDataURI(tc.uri)
			require.Error(t, err)
			assert.True(t, apperror.IsValidationError(err))
		})
	}
}

func TestStoreSaveAndRemove(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root, "http://localhost:8080/")

	relPath, err := store.SaveDataURI(pngDataURI(), RecipeImageDir)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(relPath, RecipeImageDir+"/"))
	assert.True(t, strings.HasSuffix(relPath, ".png"))

	stored, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(relPath)))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, stored)

	require.NoError(t, store.Remove(relPath))
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(relPath)))
	assert.True(t, os.IsNotExist(err))

	// Removing again is a no-op.
	require.NoError(t, store.Remove(relPath))
	require.NoError(t, store.Remove(""))
}

func TestStoreURL(t *testing.T) {
	store := NewStore(t.TempDir(), "https://foodgram.example.com")
	assert.Equal(t, "https://foodgram.example.com/media/users/avatars/a.png", store.URL("users/avatars/a.png"))
	assert.Equal(t, "", store.URL(""))
}

func TestStoreGeneratesUniqueNames(t *testing.T) {
	store := NewStore(t.TempDir(), "http://localhost")
	first, err := store.SaveDataURI(pngDataURI(), AvatarDir)
	require.NoError(t, err)
	second, err := store.SaveDataURI(pngDataURI(), AvatarDir)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
