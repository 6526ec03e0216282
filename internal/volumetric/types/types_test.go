package types

import (
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVolumeValidate(t *testing.T) {
	d := digest.FromString("payload")

	t.Run("managed volume with digest is valid", func(t *testing.T) {
		assert.NoError(t, Volume{Name: "data", Digest: d, Scheme: SchemeManaged}.Validate())
	})

	t.Run("never staged managed volume is valid", func(t *testing.T) {
		assert.NoError(t, Volume{Name: "data", Scheme: SchemeManaged}.Validate())
	})

	t.Run("external volume requires source and digest", func(t *testing.T) {
		assert.Error(t, Volume{Name: "data", Digest: d, Scheme: SchemeExternal}.Validate())
		assert.Error(t, Volume{Name: "data", Scheme: SchemeExternal, Source: "file:///x"}.Validate())
		assert.NoError(t, Volume{Name: "data", Digest: d, Scheme: SchemeExternal, Source: "file:///x"}.Validate())
	})

	t.Run("managed volume rejects a source", func(t *testing.T) {
		assert.Error(t, Volume{Name: "data", Digest: d, Scheme: SchemeManaged, Source: "file:///x"}.Validate())
	})

	t.Run("empty name and bad digest are rejected", func(t *testing.T) {
		assert.Error(t, Volume{Scheme: SchemeManaged}.Validate())
		assert.Error(t, Volume{Name: "data", Digest: "sha256:zz", Scheme: SchemeManaged}.Validate())
	})
}

func TestManifestNames(t *testing.T) {
	m := Manifest{"b": {Name: "b"}, "a": {Name: "a"}, "c": {Name: "c"}}
	assert.Equal(t, []string{"a", "b", "c"}, m.Names())

	clone := m.Clone()
	delete(clone, "a")
	assert.Len(t, m, 3, "clone must not alias the original")
}

func TestParseEnums(t *testing.T) {
	kind, err := ParseRuntimeKind("Podman")
	require.NoError(t, err)
	assert.Equal(t, RuntimePodman, kind)
	_, err = ParseRuntimeKind("lxc")
	assert.Error(t, err)

	for _, in := range []string{"nooverwrite", "DoNotOverwrite", "NoOverwrite"} {
		p, err := ParseDeploymentPolicy(in)
		require.NoError(t, err, in)
		assert.Equal(t, PolicyNoOverwrite, p)
	}
	p, err := ParseDeploymentPolicy("OVERWRITE")
	require.NoError(t, err)
	assert.Equal(t, PolicyOverwrite, p)

	s, err := ParseScheme("")
	require.NoError(t, err)
	assert.Equal(t, SchemeManaged, s)
	_, err = ParseScheme("s3")
	assert.Error(t, err)
}
