package types

import (
	"fmt"
	"sort"
	"strings"

	// Registers the sha256 algorithm used by digest.Canonical.
	_ "crypto/sha256"

	"github.com/opencontainers/go-digest"
)

// `yaml:"..."` tags drive the manifest, settings and deployable encodings.

// Scheme tells where the bytes of a volume snapshot live.
type Scheme string

const (
	// SchemeManaged snapshots are held in the repository object store.
	SchemeManaged Scheme = "managed"
	// SchemeExternal snapshots are hosted at a caller supplied source URI.
	SchemeExternal Scheme = "external"
)

// ParseScheme accepts the lowercase scheme names. An empty value means managed.
func ParseScheme(s string) (Scheme, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(SchemeManaged):
		return SchemeManaged, nil
	case string(SchemeExternal):
		return SchemeExternal, nil
	}
	return "", fmt.Errorf("unknown volume scheme %q", s)
}

// Volume is one tracked volume entry. Name is carried by the manifest key and
// is never serialized inside the entry.
type Volume struct {
	Name   string        `yaml:"-"`
	Digest digest.Digest `yaml:"digest,omitempty"`
	Scheme Scheme        `yaml:"scheme"`
	Source string        `yaml:"source,omitempty"`
}

// Managed reports whether the volume content lives in the object store.
func (v Volume) Managed() bool {
	return v.Scheme == SchemeManaged || v.Scheme == ""
}

// Validate checks the structural rules of a volume entry.
func (v Volume) Validate() error {
	if strings.TrimSpace(v.Name) == "" {
		return fmt.Errorf("volume name is empty")
	}
	if v.Digest != "" {
		if err := v.Digest.Validate(); err != nil {
			return fmt.Errorf("volume %s: %w", v.Name, err)
		}
	}
	switch v.Scheme {
	case SchemeManaged, "":
		if v.Source != "" {
			return fmt.Errorf("volume %s: managed volumes have no source", v.Name)
		}
	case SchemeExternal:
		if v.Source == "" {
			return fmt.Errorf("volume %s: external volumes need a source", v.Name)
		}
		if v.Digest == "" {
			return fmt.Errorf("volume %s: external volumes need a digest", v.Name)
		}
	default:
		return fmt.Errorf("volume %s: unknown scheme %q", v.Name, v.Scheme)
	}
	return nil
}

// Manifest maps volume names to their entries.
type Manifest map[string]Volume

// Names returns the tracked volume names in ascending order.
func (m Manifest) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns an independent copy of the manifest.
func (m Manifest) Clone() Manifest {
	out := make(Manifest, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// RuntimeKind selects the OCI runtime that owns the volumes.
type RuntimeKind string

const (
	RuntimeDocker RuntimeKind = "docker"
	RuntimePodman RuntimeKind = "podman"
)

// ParseRuntimeKind accepts runtime names case-insensitively.
func ParseRuntimeKind(s string) (RuntimeKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(RuntimeDocker):
		return RuntimeDocker, nil
	case string(RuntimePodman):
		return RuntimePodman, nil
	}
	return "", fmt.Errorf("unknown oci runtime %q", s)
}

// DeploymentPolicy decides what happens when a volume already exists at deploy.
type DeploymentPolicy string

const (
	PolicyOverwrite   DeploymentPolicy = "Overwrite"
	PolicyNoOverwrite DeploymentPolicy = "NoOverwrite"
)

// ParseDeploymentPolicy accepts "overwrite", "nooverwrite" and the older
// "donotoverwrite", ignoring case.
func ParseDeploymentPolicy(s string) (DeploymentPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "overwrite":
		return PolicyOverwrite, nil
	case "nooverwrite", "donotoverwrite":
		return PolicyNoOverwrite, nil
	}
	return "", fmt.Errorf("unknown deployment policy %q", s)
}
