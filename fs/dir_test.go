package fs

import (
	"testing"

	"github.com/stvp/assert"
)

func TestMkdirAndListTopLevel(t *testing.T) {
	f := newTestFS(t, 512, 64, 512)
	assert.Nil(t, f.Mkdir("/a"))
	assert.Nil(t, f.Mkdir("/b"))

	entries, err := f.List("/")
	assert.Nil(t, err)
	assert.Equal(t, len(entries), 2)
	names := map[string]Kind{}
	for _, e := range entries {
		names[e.Name] = e.Kind
	}
	assert.Equal(t, names["a"], KindDir)
	assert.Equal(t, names["b"], KindDir)
}

func TestMkdirNested(t *testing.T) {
	f := newTestFS(t, 512, 64, 512)
	assert.Nil(t, f.Mkdir("/a"))
	assert.Nil(t, f.Mkdir("/a/b"))
	assert.Nil(t, f.Mkdir("/a/b/c"))

	entries, err := f.List("/a/b")
	assert.Nil(t, err)
	assert.Equal(t, len(entries), 1)
	assert.Equal(t, entries[0].Name, "c")
	assert.Equal(t, entries[0].Kind, KindDir)
}

func TestMkdirDuplicateNameFails(t *testing.T) {
	f := newTestFS(t, 512, 64, 512)
	assert.Nil(t, f.Mkdir("/a"))
	err := f.Mkdir("/a")
	assert.Equal(t, err, ErrExists)
}

func TestMkdirMissingParentFails(t *testing.T) {
	f := newTestFS(t, 512, 64, 512)
	err := f.Mkdir("/missing/a")
	assert.Equal(t, err, ErrNotFound)
}

func TestMkdirThroughFileFails(t *testing.T) {
	f := newTestFS(t, 512, 64, 512)
	assert.Nil(t, f.Set("/f", []byte("data")))
	err := f.Mkdir("/f/sub")
	assert.Equal(t, err, ErrNotDirectory)
}

func TestListOnFileFails(t *testing.T) {
	f := newTestFS(t, 512, 64, 512)
	assert.Nil(t, f.Set("/f", []byte("data")))
	_, err := f.List("/f")
	assert.Equal(t, err, ErrNotDirectory)
}

func TestDeleteEmptyDirSucceedsNonEmptyFails(t *testing.T) {
	f := newTestFS(t, 512, 64, 512)
	assert.Nil(t, f.Mkdir("/a"))
	assert.Nil(t, f.Mkdir("/a/b"))

	err := f.Delete("/a")
	assert.Equal(t, err, ErrDirectoryNotEmpty)

	assert.Nil(t, f.Delete("/a/b"))
	assert.Nil(t, f.Delete("/a"))

	entries, err := f.List("/")
	assert.Nil(t, err)
	assert.Equal(t, len(entries), 0)
}

func TestDeleteOfNonexistentPathIsIdempotent(t *testing.T) {
	f := newTestFS(t, 512, 64, 512)
	assert.Nil(t, f.Delete("/nope"))
}

func TestDeleteWithMissingParentFails(t *testing.T) {
	f := newTestFS(t, 512, 64, 512)
	err := f.Delete("/missing/nope")
	assert.Equal(t, err, ErrNotFound)
}
