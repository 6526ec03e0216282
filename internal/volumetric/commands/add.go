package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gingerrexayers/volumetric/internal/volumetric/lib"
	"github.com/gingerrexayers/volumetric/internal/volumetric/types"
	"github.com/opencontainers/go-digest"
	"go.uber.org/zap"
)

// Add snapshots the runtime volume name into the staging area.
func (e *Engine) Add(name string) (digest.Digest, error) {
	settings, err := e.open()
	if err != nil {
		return "", err
	}
	rt, err := e.runtimes(settings.RuntimeKind)
	if err != nil {
		return "", err
	}
	exists, err := rt.Exists(name)
	if err != nil {
		return "", fmt.Errorf("failed to look up volume %s: %w", name, err)
	}
	if !exists {
		return "", fmt.Errorf("volume %s does not exist in %s: %w", name, settings.RuntimeKind, lib.ErrNotFound)
	}
	hostPath, err := rt.HostPath(name)
	if err != nil {
		return "", fmt.Errorf("failed to locate volume %s: %w", name, err)
	}

	e.printf("📦 Snapshotting volume \"%s\" from %s...\n", name, hostPath)
	sa, err := lib.OpenStaging(e.t, e.paths)
	if err != nil {
		return "", err
	}

	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(e.archiver.Pack(hostPath, pw))
	}()
	d, err := sa.Objects().Put(pr)
	if err != nil {
		pr.CloseWithError(err)
		return "", fmt.Errorf("failed to snapshot volume %s: %w", name, err)
	}

	// Content already committed needs no staged copy.
	committed, err := e.permanent().Has(d)
	if err != nil {
		return "", err
	}
	if committed {
		if err := sa.Objects().Remove(d); err != nil && !errors.Is(err, lib.ErrNotFound) {
			return "", err
		}
	}

	if err := sa.Upsert(types.Volume{Name: name, Digest: d, Scheme: types.SchemeManaged}); err != nil {
		return "", err
	}
	e.log.Info("staged volume", zap.String("volume", name), zap.Stringer("digest", d), zap.Bool("deduplicated", committed))
	e.printf("   - Staged %s as %s\n", name, d)
	return d, nil
}

// AddExternal stages a volume whose snapshot is hosted at uri.
func (e *Engine) AddExternal(name string, d digest.Digest, uri string) error {
	if _, err := e.open(); err != nil {
		return err
	}
	if strings.TrimSpace(uri) == "" {
		return fmt.Errorf("external volume %s needs a source: %w", name, lib.ErrMalformed)
	}
	sa, err := lib.OpenStaging(e.t, e.paths)
	if err != nil {
		return err
	}
	if err := sa.Upsert(types.Volume{Name: name, Digest: d, Scheme: types.SchemeExternal, Source: uri}); err != nil {
		return err
	}
	e.log.Info("staged external volume", zap.String("volume", name), zap.Stringer("digest", d), zap.String("source", uri))
	e.printf("   - Staged external volume %s from %s\n", name, uri)
	return nil
}

// Remove stops tracking name. The change takes effect at the next commit.
func (e *Engine) Remove(name string) error {
	if _, err := e.open(); err != nil {
		return err
	}
	sa, err := lib.OpenStaging(e.t, e.paths)
	if err != nil {
		return err
	}
	if err := sa.Delete(name); err != nil {
		return err
	}
	e.log.Info("untracked volume", zap.String("volume", name))
	e.printf("   - Untracked %s\n", name)
	return nil
}
