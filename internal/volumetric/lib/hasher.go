package lib

import (
	// digest.Canonical needs the sha256 implementation linked in.
	_ "crypto/sha256"
	"io"
	"strings"

	"github.com/opencontainers/go-digest"
)

// GetHash calculates the SHA-256 digest of an in-memory byte slice.
func GetHash(content []byte) digest.Digest {
	return digest.Canonical.FromBytes(content)
}

// GetReaderHash streams r through a SHA-256 digester.
func GetReaderHash(r io.Reader) (digest.Digest, error) {
	return digest.Canonical.FromReader(r)
}

// ParseDigest validates a digest received from the outside. A bare hex
// string is accepted as a sha256 digest.
func ParseDigest(s string) (digest.Digest, error) {
	d := digest.Digest(s)
	if !strings.Contains(s, ":") {
		d = digest.NewDigestFromEncoded(digest.Canonical, s)
	}
	if err := d.Validate(); err != nil {
		return "", &VariantError{Key: "digest", Value: s}
	}
	return d, nil
}
