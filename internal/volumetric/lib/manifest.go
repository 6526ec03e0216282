package lib

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/gingerrexayers/volumetric/internal/volumetric/transport"
	"github.com/gingerrexayers/volumetric/internal/volumetric/types"
	"github.com/opencontainers/go-digest"
	"gopkg.in/yaml.v3"
)

// EncodeManifest renders m in its canonical form: YAML with two space
// indentation and volume names in ascending order. Equal manifests always
// produce identical bytes.
func EncodeManifest(m types.Manifest) ([]byte, error) {
	if m == nil {
		m = types.Manifest{}
	}
	for name, v := range m {
		if v.Name != name {
			return nil, fmt.Errorf("volume keyed %q is named %q: %w", name, v.Name, ErrMalformed)
		}
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(map[string]types.Volume(m)); err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeManifest parses manifest bytes. Empty input is the empty manifest.
func DecodeManifest(content []byte) (types.Manifest, error) {
	raw := map[string]types.Volume{}
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse manifest: %w: %w", ErrMalformed, err)
	}
	return manifestFromRaw(raw)
}

// manifestFromRaw names and validates decoded volume entries.
func manifestFromRaw(raw map[string]types.Volume) (types.Manifest, error) {
	m := make(types.Manifest, len(raw))
	for name, v := range raw {
		v.Name = name
		if v.Scheme == "" {
			v.Scheme = types.SchemeManaged
		}
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		m[name] = v
	}
	return m, nil
}

// ManifestDigest hashes the exact bytes of a persisted manifest.
func ManifestDigest(content []byte) digest.Digest {
	return GetHash(content)
}

// EmptyManifestDigest is the digest of the canonical empty manifest, the
// state of a repository with no commits.
func EmptyManifestDigest() digest.Digest {
	content, _ := EncodeManifest(types.Manifest{})
	return ManifestDigest(content)
}

// LoadManifest reads and parses the manifest stored at p.
func LoadManifest(t transport.Transport, p string) (types.Manifest, error) {
	content, err := transport.ReadAll(t, p)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return DecodeManifest(content)
}

// WriteManifest persists m at p atomically and returns the written bytes.
func WriteManifest(t transport.Transport, p string, m types.Manifest) ([]byte, error) {
	content, err := EncodeManifest(m)
	if err != nil {
		return nil, err
	}
	if err := t.Write(p, bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("failed to write manifest: %w", err)
	}
	return content, nil
}
