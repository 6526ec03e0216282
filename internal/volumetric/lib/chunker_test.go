package lib

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomBytes(t *testing.T, seed int64, n int) []byte {
	t.Helper()
	buf := make([]byte, n)
	_, err := rand.New(rand.NewSource(seed)).Read(buf)
	require.NoError(t, err)
	return buf
}

func TestChunkStream(t *testing.T) {
	t.Run("empty stream has no chunks", func(t *testing.T) {
		chunks, err := ChunkStream(bytes.NewReader(nil))
		require.NoError(t, err)
		assert.Empty(t, chunks)
	})

	t.Run("small stream is a single chunk", func(t *testing.T) {
		chunks, err := ChunkStream(bytes.NewReader([]byte("tiny")))
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, int64(4), chunks[0].Size)
		assert.Equal(t, GetHash([]byte("tiny")), chunks[0].Digest)
	})

	t.Run("chunk sizes cover the stream within bounds", func(t *testing.T) {
		content := randomBytes(t, 1, 256*1024)

		chunks, err := ChunkStream(bytes.NewReader(content))
		require.NoError(t, err)

		var total int64
		for i, c := range chunks {
			total += c.Size
			assert.LessOrEqual(t, c.Size, int64(maxChunkSize))
			if i < len(chunks)-1 {
				assert.GreaterOrEqual(t, c.Size, int64(minChunkSize))
			}
		}
		assert.Equal(t, int64(len(content)), total)
	})
}

func TestSimilarity(t *testing.T) {
	base := randomBytes(t, 2, 128*1024)

	t.Run("identical streams are fully similar", func(t *testing.T) {
		s, err := Similarity(bytes.NewReader(base), bytes.NewReader(base))
		require.NoError(t, err)
		assert.InDelta(t, 1.0, s, 0.0001)
	})

	t.Run("unrelated streams share nothing", func(t *testing.T) {
		other := randomBytes(t, 3, 128*1024)
		s, err := Similarity(bytes.NewReader(base), bytes.NewReader(other))
		require.NoError(t, err)
		assert.InDelta(t, 0.0, s, 0.0001)
	})

	t.Run("appended data keeps most chunks", func(t *testing.T) {
		grown := append(append([]byte{}, base...), randomBytes(t, 4, 16*1024)...)
		s, err := Similarity(bytes.NewReader(base), bytes.NewReader(grown))
		require.NoError(t, err)
		assert.Greater(t, s, 0.5)
		assert.Less(t, s, 1.0)
	})
}
