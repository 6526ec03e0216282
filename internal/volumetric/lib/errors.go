package lib

import (
	"fmt"

	"github.com/gingerrexayers/volumetric/internal/volumetric/transport"
)

type errString string

func (e errString) Error() string { return string(e) }

const (
	// ErrMalformed marks unparseable or structurally invalid persisted data.
	ErrMalformed errString = "malformed"
	// ErrConflict marks an operation that is not valid in the current state.
	ErrConflict errString = "conflict"
	// ErrDigestMismatch marks content whose hash differs from the expected digest.
	ErrDigestMismatch errString = "digest mismatch"
	// ErrUnsupportedVersion marks a repository written by an incompatible engine.
	ErrUnsupportedVersion errString = "unsupported repository version"
	// ErrNotSupported marks a request the engine cannot serve, such as an unknown source scheme.
	ErrNotSupported errString = "not supported"
)

// Re-exported so callers need a single import for the taxonomy.
const (
	ErrNotFound = transport.ErrNotFound
	ErrIO       = transport.ErrIO
)

// VariantError reports a key or enum value that matches no known variant.
type VariantError struct {
	Key   string
	Value string
}

func (e *VariantError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("unknown variant %q", e.Key)
	}
	return fmt.Sprintf("unknown variant %q for %s", e.Value, e.Key)
}

// Is makes a VariantError match ErrMalformed.
func (e *VariantError) Is(target error) bool {
	return target == ErrMalformed
}
