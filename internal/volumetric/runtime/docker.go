package runtime

import (
	"context"
	"fmt"
	"time"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/volume"
	"github.com/docker/docker/client"
	"github.com/gingerrexayers/volumetric/internal/volumetric/lib"
)

// DefaultDockerSocket is where the Docker daemon listens by default.
const DefaultDockerSocket = "/var/run/docker.sock"

const dockerTimeout = 30 * time.Second

// Docker manages volumes through the Docker Engine API.
type Docker struct {
	api client.VolumeAPIClient
}

// NewDocker connects to the Engine API over the unix socket at socket.
func NewDocker(socket string) (*Docker, error) {
	if socket == "" {
		socket = DefaultDockerSocket
	}
	return NewDockerClient(
		client.WithHost("unix://"+socket),
		client.WithAPIVersionNegotiation(),
	)
}

// NewDockerClient builds a driver from raw client options, for daemons
// reached over TCP.
func NewDockerClient(opts ...client.Opt) (*Docker, error) {
	c, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("docker client: %w: %w", lib.ErrIO, err)
	}
	return &Docker{api: c}, nil
}

// apiError maps a daemon error onto the repository taxonomy.
func apiError(op, name string, err error) error {
	if cerrdefs.IsNotFound(err) {
		return fmt.Errorf("docker %s %s: %w: %w", op, name, lib.ErrNotFound, err)
	}
	return fmt.Errorf("docker %s %s: %w: %w", op, name, lib.ErrIO, err)
}

func (d *Docker) inspect(name string) (volume.Volume, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dockerTimeout)
	defer cancel()
	vol, err := d.api.VolumeInspect(ctx, name)
	if err != nil {
		return volume.Volume{}, apiError("inspect", name, err)
	}
	return vol, nil
}

func (d *Docker) Exists(name string) (bool, error) {
	_, err := d.inspect(name)
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, err
}

func (d *Docker) HostPath(name string) (string, error) {
	vol, err := d.inspect(name)
	if err != nil {
		return "", err
	}
	return vol.Mountpoint, nil
}

func (d *Docker) Create(name string) error {
	ctx, cancel := context.WithTimeout(context.Background(), dockerTimeout)
	defer cancel()
	if _, err := d.api.VolumeCreate(ctx, volume.CreateOptions{Name: name}); err != nil {
		return apiError("create", name, err)
	}
	return nil
}

func (d *Docker) Remove(name string) error {
	ctx, cancel := context.WithTimeout(context.Background(), dockerTimeout)
	defer cancel()
	if err := d.api.VolumeRemove(ctx, name, false); err != nil {
		return apiError("remove", name, err)
	}
	return nil
}
