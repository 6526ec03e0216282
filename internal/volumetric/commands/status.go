package commands

import (
	"fmt"
	"io"

	"github.com/gingerrexayers/volumetric/internal/volumetric/archiver"
	"github.com/gingerrexayers/volumetric/internal/volumetric/lib"
	"github.com/gingerrexayers/volumetric/internal/volumetric/types"
	"go.uber.org/zap"
)

// StatusOptions controls the status report.
type StatusOptions struct {
	// Stat adds, for changed volumes, how much of the new snapshot was
	// already in the committed one.
	Stat  bool
	Color bool
}

// Status compares the staging area with the repository Manifest and prints
// the differences. Nothing staged means nothing differs; the staging area is
// never created by this call.
func (e *Engine) Status(opts StatusOptions) (lib.Status, error) {
	if _, err := e.open(); err != nil {
		return lib.Status{}, err
	}
	committed, err := lib.LoadManifest(e.t, e.paths.Manifest)
	if err != nil {
		return lib.Status{}, err
	}
	sa, found, err := lib.LoadStaging(e.t, e.paths)
	if err != nil {
		return lib.Status{}, err
	}
	if !found {
		return lib.Status{}, nil
	}

	staged := sa.Manifest()
	st := lib.Diff(committed, staged)
	format := lib.StatusFormat{Color: opts.Color}
	if opts.Stat {
		format.Reuse = e.reuse(committed, staged, st.Changed)
	}
	if err := lib.FormatStatus(e.out, st, format); err != nil {
		return lib.Status{}, err
	}
	return st, nil
}

// reuse estimates snapshot similarity for changed managed volumes. Volumes
// whose objects cannot be read are left out.
func (e *Engine) reuse(committed, staged types.Manifest, changed []string) map[string]float64 {
	out := map[string]float64{}
	for _, name := range changed {
		prev, next := committed[name], staged[name]
		if !prev.Managed() || !next.Managed() {
			continue
		}
		ratio, err := e.similarity(prev, next)
		if err != nil {
			e.log.Debug("skipping similarity", zap.String("volume", name), zap.Error(err))
			continue
		}
		out[name] = ratio
	}
	return out
}

func (e *Engine) similarity(prev, next types.Volume) (float64, error) {
	prevStream, closePrev, err := e.openTar(prev)
	if err != nil {
		return 0, err
	}
	defer closePrev()
	nextStream, closeNext, err := e.openTar(next)
	if err != nil {
		return 0, err
	}
	defer closeNext()
	return lib.Similarity(prevStream, nextStream)
}

// openTar opens the uncompressed archive of a managed volume.
func (e *Engine) openTar(v types.Volume) (io.Reader, func(), error) {
	obj, err := e.openObject(v.Digest)
	if err != nil {
		return nil, nil, err
	}
	tarStream, err := archiver.Decompress(obj)
	if err != nil {
		obj.Close()
		return nil, nil, fmt.Errorf("volume %s: %w", v.Name, err)
	}
	return tarStream, func() {
		tarStream.Close()
		obj.Close()
	}, nil
}
