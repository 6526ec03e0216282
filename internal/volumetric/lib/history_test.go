package lib

import (
	"strings"
	"testing"

	"github.com/gingerrexayers/volumetric/internal/volumetric/transport"
	"github.com/opencontainers/go-digest"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryAppendLoad(t *testing.T) {
	t.Run("missing file is empty", func(t *testing.T) {
		tr := transport.NewLocal(afero.NewMemMapFs())
		h, err := LoadHistory(tr, "history")
		require.NoError(t, err)
		assert.Empty(t, h)
		_, ok := h.Last()
		assert.False(t, ok)
	})

	t.Run("appends keep order", func(t *testing.T) {
		// Arrange
		tr := transport.NewLocal(afero.NewMemMapFs())
		d1, d2 := GetHash([]byte("one")), GetHash([]byte("two"))

		// Act
		require.NoError(t, AppendHistory(tr, "history", d1))
		require.NoError(t, AppendHistory(tr, "history", d2))
		h, err := LoadHistory(tr, "history")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, History{d1, d2}, h)
		last, ok := h.Last()
		require.True(t, ok)
		assert.Equal(t, d2, last)
	})

	t.Run("blank lines are ignored and garbage rejected", func(t *testing.T) {
		tr := transport.NewLocal(afero.NewMemMapFs())
		d := GetHash([]byte("one"))
		require.NoError(t, tr.Write("history", strings.NewReader("\n"+d.String()+"\n\n")))

		h, err := LoadHistory(tr, "history")
		require.NoError(t, err)
		assert.Equal(t, History{d}, h)

		require.NoError(t, tr.Write("history", strings.NewReader("garbage\n")))
		_, err = LoadHistory(tr, "history")
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("append rejects invalid digest", func(t *testing.T) {
		tr := transport.NewLocal(afero.NewMemMapFs())
		assert.ErrorIs(t, AppendHistory(tr, "history", digest.Digest("nope")), ErrMalformed)
	})
}

func TestHistoryResolve(t *testing.T) {
	d1, d2 := GetHash([]byte("one")), GetHash([]byte("two"))
	h := History{d1, d2}

	t.Run("by index", func(t *testing.T) {
		idx, d, err := h.Resolve("2")
		require.NoError(t, err)
		assert.Equal(t, 2, idx)
		assert.Equal(t, d2, d)
	})

	t.Run("by digest prefix", func(t *testing.T) {
		idx, d, err := h.Resolve(d1.Encoded()[:12])
		require.NoError(t, err)
		assert.Equal(t, 1, idx)
		assert.Equal(t, d1, d)

		_, d, err = h.Resolve(d2.String())
		require.NoError(t, err)
		assert.Equal(t, d2, d)
	})

	t.Run("out of range and unknown", func(t *testing.T) {
		_, _, err := h.Resolve("3")
		assert.ErrorIs(t, err, ErrNotFound)
		_, _, err = h.Resolve("zzzzzzzzzz")
		assert.ErrorIs(t, err, ErrNotFound)
		_, _, err = History{}.Resolve("1")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("empty prefix is ambiguous", func(t *testing.T) {
		_, _, err := h.Resolve("")
		assert.ErrorIs(t, err, ErrConflict)
	})
}
