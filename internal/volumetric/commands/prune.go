package commands

import (
	"errors"
	"fmt"
	"path"

	"github.com/gingerrexayers/volumetric/internal/volumetric/lib"
	"github.com/gingerrexayers/volumetric/internal/volumetric/types"
	"github.com/opencontainers/go-digest"
	"go.uber.org/zap"
)

// PruneResult summarises a garbage collection run.
type PruneResult struct {
	Kept    int
	Removed []digest.Digest
}

// Prune deletes permanent objects that no archived manifest, the current
// Manifest or the staging manifest refers to.
func (e *Engine) Prune() (PruneResult, error) {
	if _, err := e.open(); err != nil {
		return PruneResult{}, err
	}
	e.printf("🧹 Starting prune...\n")

	// 1. Mark Phase
	live, err := e.markLiveObjects()
	if err != nil {
		return PruneResult{}, err
	}
	e.printf("   - Found %d live objects.\n", len(live))

	// 2. Sweep Phase
	store := e.permanent()
	all, err := store.List()
	if err != nil {
		return PruneResult{}, err
	}
	var result PruneResult
	for _, d := range all {
		if _, ok := live[d]; ok {
			result.Kept++
			continue
		}
		if err := store.Remove(d); err != nil {
			return result, fmt.Errorf("failed to remove object %s: %w", d, err)
		}
		e.log.Debug("removed object", zap.Stringer("digest", d))
		result.Removed = append(result.Removed, d)
	}

	// Leftovers of interrupted writes.
	if err := e.t.RemoveAll(e.paths.Tmp); err != nil && !errors.Is(err, lib.ErrNotFound) {
		return result, err
	}
	if err := e.t.CreateDir(e.paths.Tmp); err != nil {
		return result, err
	}

	e.printf("✅ Prune complete! Removed %d objects, kept %d.\n", len(result.Removed), result.Kept)
	return result, nil
}

func (e *Engine) markLiveObjects() (map[digest.Digest]struct{}, error) {
	live := map[digest.Digest]struct{}{}
	mark := func(m types.Manifest) {
		for _, v := range m {
			if v.Managed() && v.Digest != "" {
				live[v.Digest] = struct{}{}
			}
		}
	}

	changes, err := e.t.List(e.paths.Changes)
	if err != nil && !errors.Is(err, lib.ErrNotFound) {
		return nil, err
	}
	for _, p := range changes {
		m, err := lib.LoadManifest(e.t, p)
		if err != nil {
			return nil, fmt.Errorf("archived manifest %s: %w", path.Base(p), err)
		}
		mark(m)
	}

	current, err := lib.LoadManifest(e.t, e.paths.Manifest)
	if err != nil {
		return nil, err
	}
	mark(current)

	if sa, found, err := lib.LoadStaging(e.t, e.paths); err != nil {
		return nil, err
	} else if found {
		mark(sa.Manifest())
	}
	return live, nil
}
