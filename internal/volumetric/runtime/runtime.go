// Package runtime drives the OCI runtime that owns container volumes.
package runtime

import (
	"errors"
	"fmt"

	"github.com/gingerrexayers/volumetric/internal/volumetric/lib"
	"github.com/gingerrexayers/volumetric/internal/volumetric/types"
)

// OciRuntime manages named volumes of a container runtime.
type OciRuntime interface {
	Exists(name string) (bool, error)
	// HostPath is the directory on the host that backs the volume.
	HostPath(name string) (string, error)
	Create(name string) error
	Remove(name string) error
}

// Options configures the concrete drivers.
type Options struct {
	// DockerSocket is the path of the Docker Engine API socket.
	DockerSocket string
	// PodmanBinary is the podman executable.
	PodmanBinary string
}

// DefaultOptions points at the standard socket and binary locations.
func DefaultOptions() Options {
	return Options{
		DockerSocket: DefaultDockerSocket,
		PodmanBinary: "podman",
	}
}

// New selects the driver for kind.
func New(kind types.RuntimeKind, opts Options) (OciRuntime, error) {
	switch kind {
	case types.RuntimeDocker:
		return NewDocker(opts.DockerSocket)
	case types.RuntimePodman:
		return NewPodman(ExecRunner(opts.PodmanBinary)), nil
	}
	return nil, fmt.Errorf("oci runtime %q: %w", kind, lib.ErrNotSupported)
}

func isNotFound(err error) bool {
	return errors.Is(err, lib.ErrNotFound)
}
