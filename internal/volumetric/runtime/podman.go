package runtime

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/gingerrexayers/volumetric/internal/volumetric/lib"
)

// Runner executes a podman command line and returns its standard output.
// A non-zero exit is reported as an error implementing ExitCode() int.
type Runner func(args ...string) ([]byte, error)

// ExecRunner runs binary as a child process.
func ExecRunner(binary string) Runner {
	return func(args ...string) ([]byte, error) {
		var stderr bytes.Buffer
		cmd := exec.Command(binary, args...)
		cmd.Stderr = &stderr
		out, err := cmd.Output()
		if err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				return out, &commandError{args: args, code: exitErr.ExitCode(), stderr: strings.TrimSpace(stderr.String())}
			}
			return out, err
		}
		return out, nil
	}
}

type commandError struct {
	args   []string
	code   int
	stderr string
}

func (e *commandError) Error() string {
	return fmt.Sprintf("podman %s: exit status %d: %s", strings.Join(e.args, " "), e.code, e.stderr)
}

func (e *commandError) ExitCode() int { return e.code }

// Podman drives volumes through the podman command line.
type Podman struct {
	run Runner
}

// NewPodman uses run to invoke podman.
func NewPodman(run Runner) *Podman {
	return &Podman{run: run}
}

func exitCode(err error) (int, bool) {
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		return coder.ExitCode(), true
	}
	return 0, false
}

func (p *Podman) Exists(name string) (bool, error) {
	_, err := p.run("volume", "exists", name)
	if err == nil {
		return true, nil
	}
	if code, ok := exitCode(err); ok && code == 1 {
		return false, nil
	}
	return false, fmt.Errorf("podman volume exists %s: %w: %w", name, lib.ErrIO, err)
}

func (p *Podman) HostPath(name string) (string, error) {
	out, err := p.run("volume", "inspect", "--format", "{{.Mountpoint}}", name)
	if err != nil {
		if code, ok := exitCode(err); ok && code != 0 {
			return "", fmt.Errorf("podman volume inspect %s: %w: %w", name, lib.ErrNotFound, err)
		}
		return "", fmt.Errorf("podman volume inspect %s: %w: %w", name, lib.ErrIO, err)
	}
	mountpoint := strings.TrimSpace(string(out))
	if mountpoint == "" {
		return "", fmt.Errorf("podman volume inspect %s: empty mountpoint: %w", name, lib.ErrMalformed)
	}
	return mountpoint, nil
}

func (p *Podman) Create(name string) error {
	if _, err := p.run("volume", "create", name); err != nil {
		return fmt.Errorf("podman volume create %s: %w: %w", name, lib.ErrIO, err)
	}
	return nil
}

func (p *Podman) Remove(name string) error {
	if _, err := p.run("volume", "rm", name); err != nil {
		return fmt.Errorf("podman volume rm %s: %w: %w", name, lib.ErrIO, err)
	}
	return nil
}
