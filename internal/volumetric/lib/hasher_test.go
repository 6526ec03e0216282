package lib

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHash(t *testing.T) {
	t.Run("known vector", func(t *testing.T) {
		d := GetHash([]byte("hello world"))
		assert.Equal(t, "sha256:b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9", d.String())
	})

	t.Run("reader and slice agree", func(t *testing.T) {
		d, err := GetReaderHash(strings.NewReader("hello world"))
		require.NoError(t, err)
		assert.Equal(t, GetHash([]byte("hello world")), d)
	})
}

func TestParseDigest(t *testing.T) {
	const hex = "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"

	d, err := ParseDigest(hex)
	require.NoError(t, err)
	assert.Equal(t, "sha256:"+hex, d.String())

	d, err = ParseDigest("sha256:" + hex)
	require.NoError(t, err)
	assert.Equal(t, hex, d.Encoded())

	_, err = ParseDigest("not-a-digest")
	assert.ErrorIs(t, err, ErrMalformed)
}
