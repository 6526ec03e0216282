package transport

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemTransport(t *testing.T) *Local {
	t.Helper()
	return NewLocal(afero.NewMemMapFs())
}

func TestLocalWriteRead(t *testing.T) {
	t.Run("write creates parents and replaces content", func(t *testing.T) {
		// Arrange
		tr := newMemTransport(t)

		// Act
		require.NoError(t, tr.Write("a/b/c.txt", strings.NewReader("first")))
		require.NoError(t, tr.Write("a/b/c.txt", strings.NewReader("second")))

		// Assert
		content, err := ReadAll(tr, "a/b/c.txt")
		require.NoError(t, err)
		assert.Equal(t, "second", string(content))

		partial, err := tr.Exists("a/b/c.txt" + partialSuffix)
		require.NoError(t, err)
		assert.False(t, partial, "no partial file may be left behind")
	})

	t.Run("reading a missing path is not found", func(t *testing.T) {
		tr := newMemTransport(t)
		_, err := tr.Read("missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestLocalAppend(t *testing.T) {
	tr := newMemTransport(t)

	require.NoError(t, tr.Append("history", strings.NewReader("one\n")))
	require.NoError(t, tr.Append("history", strings.NewReader("two\n")))

	content, err := ReadAll(tr, "history")
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\n", string(content))
}

func TestLocalCreateDirIsIdempotent(t *testing.T) {
	tr := newMemTransport(t)

	require.NoError(t, tr.CreateDir("x/y"))
	require.NoError(t, tr.CreateDir("x/y"))

	ok, err := tr.Exists("x/y")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLocalRenameCopyRemove(t *testing.T) {
	t.Run("rename moves and creates destination parent", func(t *testing.T) {
		tr := newMemTransport(t)
		require.NoError(t, tr.Write("src", strings.NewReader("data")))

		require.NoError(t, tr.Rename("src", "nested/dst"))

		gone, err := tr.Exists("src")
		require.NoError(t, err)
		assert.False(t, gone)
		content, err := ReadAll(tr, "nested/dst")
		require.NoError(t, err)
		assert.Equal(t, "data", string(content))
	})

	t.Run("rename of missing source is not found", func(t *testing.T) {
		tr := newMemTransport(t)
		assert.ErrorIs(t, tr.Rename("nope", "dst"), ErrNotFound)
	})

	t.Run("copy keeps the source", func(t *testing.T) {
		tr := newMemTransport(t)
		require.NoError(t, tr.Write("src", strings.NewReader("data")))

		require.NoError(t, tr.Copy("src", "dst"))

		for _, p := range []string{"src", "dst"} {
			content, err := ReadAll(tr, p)
			require.NoError(t, err)
			assert.Equal(t, "data", string(content))
		}
	})

	t.Run("remove of a missing path is not found", func(t *testing.T) {
		tr := newMemTransport(t)
		assert.ErrorIs(t, tr.Remove("nope"), ErrNotFound)
	})
}

func TestLocalList(t *testing.T) {
	tr := newMemTransport(t)
	require.NoError(t, tr.Write("objects/b", strings.NewReader("b")))
	require.NoError(t, tr.Write("objects/a", strings.NewReader("a")))

	entries, err := tr.List("objects")
	require.NoError(t, err)
	assert.Equal(t, []string{"objects/a", "objects/b"}, entries)

	_, err = tr.List("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalDirResolve(t *testing.T) {
	dir := t.TempDir()
	tr, err := NewLocalDir(dir)
	require.NoError(t, err)

	require.NoError(t, tr.Write(".volumetric/lock", strings.NewReader("{}\n")))

	assert.True(t, strings.HasPrefix(tr.Resolve(".volumetric/lock"), dir))
	assert.Contains(t, tr.String(), dir)
}
