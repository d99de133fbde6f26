package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEncoded(t *testing.T) {
	format, content, err := ValidateEncoded(testPhoto)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, []byte("\x89PNG\r\n\x1a\n"), content)

	for _, bad := range []string{"", "iVBORw0KGgo=", "data:text/plain;base64,aGk=", "data:image/png;base64,@@@"} {
		_, _, err := ValidateEncoded(bad)
		assert.ErrorIs(t, err, ErrValidation, bad)
	}
}

func TestMediaStoreSaveAndRemove(t *testing.T) {
	store := NewMediaStore(t.TempDir(), "http://localhost:8080/")

	rel, err := store.SaveEncoded(testPhoto, DishPhotosDir)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rel, DishPhotosDir+"/"))
	assert.True(t, strings.HasSuffix(rel, ".png"))
	assert.Equal(t, "http://localhost:8080/media/"+rel, store.URL(rel))
	assert.Empty(t, store.URL(""))

	full := filepath.Join(store.Root, rel)
	_, err = os.Stat(full)
	require.NoError(t, err)

	store.Remove(rel, "missing/file.png", "")
	_, err = os.Stat(full)
	assert.True(t, os.IsNotExist(err))
}
