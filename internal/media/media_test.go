package media_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nileshdj/pavti/internal/media"
)

func TestStore_Save(t *testing.T) {
	store, err := media.NewStore(t.TempDir())
	require.NoError(t, err)

	rel, err := store.Save("receipt front.JPG", strings.NewReader("image bytes"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(rel, "user_images/"))
	assert.True(t, strings.HasSuffix(rel, ".jpg"))
	// The caller's filename must not leak into the stored name.
	assert.NotContains(t, rel, "receipt")

	data, err := os.ReadFile(filepath.Join(store.Root(), rel))
	require.NoError(t, err)
	assert.Equal(t, "image bytes", string(data))
}

func TestStore_SaveUniqueNames(t *testing.T) {
	store, err := media.NewStore(t.TempDir())
	require.NoError(t, err)

	a, err := store.Save("a.png", strings.NewReader("one"))
	require.NoError(t, err)

	b, err := store.Save("a.png", strings.NewReader("two"))
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestStore_SaveFile(t *testing.T) {
	src := filepath.Join(t.TempDir(), "scan.png")
	require.NoError(t, os.WriteFile(src, []byte("scan bytes"), 0o644))

	store, err := media.NewStore(t.TempDir())
	require.NoError(t, err)

	rel, err := store.SaveFile(src)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(rel, ".png"))

	data, err := os.ReadFile(filepath.Join(store.Root(), rel))
	require.NoError(t, err)
	assert.Equal(t, "scan bytes", string(data))
}

func TestStore_Remove(t *testing.T) {
	store, err := media.NewStore(t.TempDir())
	require.NoError(t, err)

	rel, err := store.Save("a.png", strings.NewReader("one"))
	require.NoError(t, err)

	require.NoError(t, store.Remove(rel))
	_, err = os.Stat(filepath.Join(store.Root(), rel))
	assert.True(t, os.IsNotExist(err))

	// Removing again, or removing nothing, is fine.
	assert.NoError(t, store.Remove(rel))
	assert.NoError(t, store.Remove(""))
}
