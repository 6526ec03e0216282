package commands

import (
	"errors"
	"fmt"

	"github.com/gingerrexayers/volumetric/internal/volumetric/lib"
	"github.com/gingerrexayers/volumetric/internal/volumetric/transport"
	"github.com/gingerrexayers/volumetric/internal/volumetric/types"
	"github.com/opencontainers/go-digest"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// CommitResult describes a finished commit.
type CommitResult struct {
	Digest digest.Digest
	// Repaired is set when no staging area existed and an interrupted
	// commit was completed instead.
	Repaired bool
}

// Commit promotes the staging area to the repository Manifest. Every step
// after the promoting rename is idempotent, so an interrupted commit is
// completed by the next one.
func (e *Engine) Commit() (CommitResult, error) {
	if _, err := e.open(); err != nil {
		return CommitResult{}, err
	}
	sa, found, err := lib.LoadStaging(e.t, e.paths)
	if err != nil {
		return CommitResult{}, err
	}
	if !found {
		return e.repairTrail()
	}

	staged := sa.Manifest()
	for _, name := range staged.Names() {
		ok, err := sa.Resolves(staged[name])
		if err != nil {
			return CommitResult{}, err
		}
		if !ok {
			return CommitResult{}, fmt.Errorf("object %s for volume %s: %w", staged[name].Digest, name, lib.ErrNotFound)
		}
	}

	e.printf("📝 Committing %d volumes...\n", len(staged))
	if err := e.t.Rename(e.paths.StagingManifest, e.paths.Manifest); err != nil {
		return CommitResult{}, fmt.Errorf("failed to promote staging manifest: %w", err)
	}

	d, m, err := e.currentManifest()
	if err != nil {
		return CommitResult{}, err
	}
	if err := e.archiveManifest(d); err != nil {
		return CommitResult{}, err
	}
	if err := lib.AppendHistory(e.t, e.paths.History, d); err != nil {
		return CommitResult{}, err
	}
	if _, err := e.migrateObjects(m); err != nil {
		return CommitResult{}, err
	}
	if err := e.clearStagedObjects(); err != nil {
		return CommitResult{}, err
	}

	e.log.Info("committed", zap.Stringer("digest", d), zap.Int("volumes", len(m)))
	e.printf("✅ Commit complete!\n   - Manifest Digest: %s\n", d)
	return CommitResult{Digest: d}, nil
}

// repairTrail finishes a commit that stopped after its rename. The current
// Manifest should be the last History entry, or the empty manifest when
// there is no History.
func (e *Engine) repairTrail() (CommitResult, error) {
	d, m, err := e.currentManifest()
	if err != nil {
		return CommitResult{}, err
	}
	history, err := lib.LoadHistory(e.t, e.paths.History)
	if err != nil {
		return CommitResult{}, err
	}
	expected, ok := history.Last()
	if !ok {
		expected = lib.EmptyManifestDigest()
	}

	moved, err := e.migrateObjects(m)
	if err != nil {
		return CommitResult{}, err
	}
	if d == expected {
		if err := e.clearStagedObjects(); err != nil {
			return CommitResult{}, err
		}
		if moved == 0 {
			return CommitResult{}, fmt.Errorf("nothing to commit: %w", lib.ErrConflict)
		}
		e.log.Warn("recovered staged objects of an interrupted commit", zap.Stringer("digest", d), zap.Int("objects", moved))
		return CommitResult{Digest: d, Repaired: true}, nil
	}

	e.log.Warn("completing interrupted commit", zap.Stringer("digest", d), zap.Stringer("expected", expected))
	if err := e.archiveManifest(d); err != nil {
		return CommitResult{}, err
	}
	if err := lib.AppendHistory(e.t, e.paths.History, d); err != nil {
		return CommitResult{}, err
	}
	if err := e.clearStagedObjects(); err != nil {
		return CommitResult{}, err
	}
	e.printf("🔧 Completed interrupted commit %s\n", d)
	return CommitResult{Digest: d, Repaired: true}, nil
}

// currentManifest reads the repository Manifest and the digest of its bytes.
func (e *Engine) currentManifest() (digest.Digest, types.Manifest, error) {
	content, err := transport.ReadAll(e.t, e.paths.Manifest)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	m, err := lib.DecodeManifest(content)
	if err != nil {
		return "", nil, err
	}
	return lib.ManifestDigest(content), m, nil
}

// archiveManifest copies the Manifest to changes/<hex> unless present.
func (e *Engine) archiveManifest(d digest.Digest) error {
	p := e.paths.ChangePath(d.Encoded())
	exists, err := e.t.Exists(p)
	if err != nil || exists {
		return err
	}
	if err := e.t.Copy(e.paths.Manifest, p); err != nil {
		return fmt.Errorf("failed to archive manifest %s: %w", d, err)
	}
	return nil
}

// migrateObjects moves every staged object referenced by m into the
// permanent store and returns how many were moved.
func (e *Engine) migrateObjects(m types.Manifest) (int, error) {
	staged, perm := e.staged(), e.permanent()
	moved := 0
	for _, name := range m.Names() {
		v := m[name]
		if !v.Managed() || v.Digest == "" {
			continue
		}
		ok, err := staged.Has(v.Digest)
		if err != nil {
			return moved, err
		}
		if !ok {
			continue
		}
		if err := perm.MoveIn(v.Digest, staged.ObjectPath(v.Digest)); err != nil {
			return moved, err
		}
		moved++
	}
	return moved, nil
}

func (e *Engine) clearStagedObjects() error {
	err := multierr.Combine(
		e.staged().Clear(),
		e.t.RemoveAll(e.paths.StagingTmp),
	)
	if err != nil && !errors.Is(err, lib.ErrNotFound) {
		return fmt.Errorf("failed to clear staging objects: %w", err)
	}
	return e.t.CreateDir(e.paths.StagingTmp)
}
