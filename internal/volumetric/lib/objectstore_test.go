package lib

import (
	"io"
	"strings"
	"testing"

	"github.com/gingerrexayers/volumetric/internal/volumetric/transport"
	"github.com/opencontainers/go-digest"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*ObjectStore, transport.Transport) {
	t.Helper()
	tr := transport.NewLocal(afero.NewMemMapFs())
	return NewObjectStore(tr, "objects", "tmp"), tr
}

func TestObjectStorePut(t *testing.T) {
	t.Run("stores content under its digest", func(t *testing.T) {
		// Arrange
		store, tr := newTestStore(t)

		// Act
		d, err := store.Put(strings.NewReader("volume bytes"))
		require.NoError(t, err)

		// Assert
		assert.Equal(t, GetHash([]byte("volume bytes")), d)
		content, err := transport.ReadAll(tr, "objects/"+d.Encoded())
		require.NoError(t, err)
		assert.Equal(t, "volume bytes", string(content))
	})

	t.Run("putting the same content twice keeps one object", func(t *testing.T) {
		store, tr := newTestStore(t)

		d1, err := store.PutBytes([]byte("same"))
		require.NoError(t, err)
		d2, err := store.PutBytes([]byte("same"))
		require.NoError(t, err)

		assert.Equal(t, d1, d2)
		objects, err := store.List()
		require.NoError(t, err)
		assert.Len(t, objects, 1)
		tmp, err := tr.List("tmp")
		require.NoError(t, err)
		assert.Empty(t, tmp, "temp files must be cleaned up")
	})
}

func TestObjectStoreGet(t *testing.T) {
	store, _ := newTestStore(t)
	d, err := store.PutBytes([]byte("payload"))
	require.NoError(t, err)

	r, err := store.Get(d)
	require.NoError(t, err)
	defer r.Close()
	content, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(content))

	_, err = store.Get(GetHash([]byte("absent")))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestObjectStoreMoveIn(t *testing.T) {
	t.Run("renames a foreign file into place", func(t *testing.T) {
		store, tr := newTestStore(t)
		require.NoError(t, tr.Write("staging/blob", strings.NewReader("moved")))
		d := GetHash([]byte("moved"))

		require.NoError(t, store.MoveIn(d, "staging/blob"))

		ok, err := store.Has(d)
		require.NoError(t, err)
		assert.True(t, ok)
		left, err := tr.Exists("staging/blob")
		require.NoError(t, err)
		assert.False(t, left)
	})

	t.Run("is idempotent when the object exists", func(t *testing.T) {
		store, tr := newTestStore(t)
		d, err := store.PutBytes([]byte("moved"))
		require.NoError(t, err)
		require.NoError(t, tr.Write("staging/blob", strings.NewReader("moved")))

		require.NoError(t, store.MoveIn(d, "staging/blob"))
		require.NoError(t, store.MoveIn(d, "staging/blob"))

		left, err := tr.Exists("staging/blob")
		require.NoError(t, err)
		assert.False(t, left)
	})
}

func TestObjectStoreVerify(t *testing.T) {
	store, tr := newTestStore(t)
	d, err := store.PutBytes([]byte("original"))
	require.NoError(t, err)
	require.NoError(t, store.Verify(d))

	require.NoError(t, tr.Write(store.ObjectPath(d), strings.NewReader("tampered")))
	assert.ErrorIs(t, store.Verify(d), ErrDigestMismatch)
}

func TestObjectStoreListAndRemove(t *testing.T) {
	store, _ := newTestStore(t)

	empty, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, empty)

	a, err := store.PutBytes([]byte("a"))
	require.NoError(t, err)
	b, err := store.PutBytes([]byte("b"))
	require.NoError(t, err)

	all, err := store.List()
	require.NoError(t, err)
	assert.ElementsMatch(t, []digest.Digest{a, b}, all)

	require.NoError(t, store.Remove(a))
	require.NoError(t, store.Clear())
	all, err = store.List()
	require.NoError(t, err)
	assert.Empty(t, all)
}
