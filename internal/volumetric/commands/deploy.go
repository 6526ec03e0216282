package commands

import (
	"fmt"
	"io"
	"net/url"
	"path/filepath"

	"github.com/gingerrexayers/volumetric/internal/volumetric/lib"
	"github.com/gingerrexayers/volumetric/internal/volumetric/runtime"
	"github.com/gingerrexayers/volumetric/internal/volumetric/types"
	"github.com/opencontainers/go-digest"
	"go.uber.org/zap"
)

// DeployResult lists what a deploy did, in processing order.
type DeployResult struct {
	Deployed []string
	Skipped  []string
}

// Deploy materialises every volume of a deployable descriptor in its OCI
// runtime. Volumes are processed in name order and the first failure stops
// the run; the result reports what was done up to that point.
func (e *Engine) Deploy(descriptor []byte) (DeployResult, error) {
	var result DeployResult
	d, err := lib.DecodeDeployable(descriptor)
	if err != nil {
		return result, err
	}
	if err := d.Settings.CheckCompatible(); err != nil {
		return result, err
	}
	rt, err := e.runtimes(d.Settings.RuntimeKind)
	if err != nil {
		return result, err
	}

	e.printf("🚀 Deploying %d volumes with %s...\n", len(d.Volumes), d.Settings.RuntimeKind)
	for _, name := range d.Volumes.Names() {
		deployed, err := e.deployVolume(rt, d.Settings.DeploymentPolicy, d.Volumes[name])
		if err != nil {
			return result, fmt.Errorf("failed to deploy volume %s: %w", name, err)
		}
		if deployed {
			result.Deployed = append(result.Deployed, name)
			e.printf("   - Deployed %s\n", name)
		} else {
			result.Skipped = append(result.Skipped, name)
			e.printf("   - Skipped %s (already exists)\n", name)
		}
	}
	e.printf("✅ Deploy complete!\n")
	return result, nil
}

func (e *Engine) deployVolume(rt runtime.OciRuntime, policy types.DeploymentPolicy, v types.Volume) (bool, error) {
	exists, err := rt.Exists(v.Name)
	if err != nil {
		return false, err
	}
	if exists && policy != types.PolicyOverwrite {
		e.log.Info("volume exists, skipping", zap.String("volume", v.Name))
		return false, nil
	}

	// The snapshot must be readable before an existing volume is dropped.
	src, err := e.openSnapshot(v)
	if err != nil {
		return false, err
	}
	defer src.Close()

	if exists {
		if err := rt.Remove(v.Name); err != nil {
			return false, err
		}
	}
	if err := rt.Create(v.Name); err != nil {
		return false, err
	}
	hostPath, err := rt.HostPath(v.Name)
	if err != nil {
		return false, err
	}
	if err := e.unpackVerified(src, v.Digest, hostPath); err != nil {
		return false, err
	}
	e.log.Info("deployed volume", zap.String("volume", v.Name), zap.Stringer("digest", v.Digest), zap.String("path", hostPath))
	return true, nil
}

// openSnapshot opens the packed content of a volume: managed volumes from the
// object store, external ones from a local file source.
func (e *Engine) openSnapshot(v types.Volume) (io.ReadCloser, error) {
	if v.Managed() {
		if v.Digest == "" {
			return nil, fmt.Errorf("volume %s has never been staged: %w", v.Name, lib.ErrNotFound)
		}
		return e.permanent().Get(v.Digest)
	}
	p, err := localSource(v.Source)
	if err != nil {
		return nil, err
	}
	f, err := e.sources.Open(p)
	if err != nil {
		return nil, fmt.Errorf("external source %s: %w: %w", v.Source, lib.ErrNotFound, err)
	}
	return f, nil
}

// localSource maps a file:// URI or an absolute path to a file path.
func localSource(source string) (string, error) {
	u, err := url.Parse(source)
	if err != nil {
		return "", fmt.Errorf("external source %q: %w", source, lib.ErrMalformed)
	}
	switch u.Scheme {
	case "file":
		return filepath.FromSlash(u.Path), nil
	case "":
		if filepath.IsAbs(source) {
			return source, nil
		}
	}
	return "", fmt.Errorf("external source %q: %w", source, lib.ErrNotSupported)
}

// unpackVerified extracts src into dst while hashing every byte read, and
// fails if the content does not match want.
func (e *Engine) unpackVerified(src io.Reader, want digest.Digest, dst string) error {
	verifier := want.Verifier()
	tee := io.TeeReader(src, verifier)
	if err := e.archiver.Unpack(tee, dst); err != nil {
		return err
	}
	// Trailing bytes after the archive still count toward the digest.
	if _, err := io.Copy(io.Discard, tee); err != nil {
		return fmt.Errorf("failed to read snapshot: %w: %w", lib.ErrIO, err)
	}
	if !verifier.Verified() {
		return fmt.Errorf("snapshot does not match %s: %w", want, lib.ErrDigestMismatch)
	}
	return nil
}
