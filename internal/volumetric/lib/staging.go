package lib

import (
	"errors"
	"fmt"

	"github.com/gingerrexayers/volumetric/internal/volumetric/transport"
	"github.com/gingerrexayers/volumetric/internal/volumetric/types"
	"go.uber.org/multierr"
)

// StagingArea is the proposed next Manifest plus the objects written for it
// that are not yet in the permanent store.
type StagingArea struct {
	t        transport.Transport
	paths    RepositoryPaths
	manifest types.Manifest
	objects  *ObjectStore
	store    *ObjectStore
}

// StagingObjects returns the store for objects written by staged volumes.
func StagingObjects(t transport.Transport, paths RepositoryPaths) *ObjectStore {
	return NewObjectStore(t, paths.StagingObjects, paths.StagingTmp)
}

// PermanentObjects returns the repository object store.
func PermanentObjects(t transport.Transport, paths RepositoryPaths) *ObjectStore {
	return NewObjectStore(t, paths.Objects, paths.Tmp)
}

// OpenStaging loads the staging area, creating it from the repository
// Manifest on first use.
func OpenStaging(t transport.Transport, paths RepositoryPaths) (*StagingArea, error) {
	exists, err := t.Exists(paths.StagingManifest)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := t.CreateDir(paths.StagingObjects); err != nil {
			return nil, err
		}
		if err := t.CreateDir(paths.StagingTmp); err != nil {
			return nil, err
		}
		if err := t.Copy(paths.Manifest, paths.StagingManifest); err != nil {
			return nil, fmt.Errorf("failed to begin staging: %w", err)
		}
	}
	return loadStaging(t, paths)
}

// LoadStaging opens an existing staging area without creating one. The
// boolean is false when nothing is staged.
func LoadStaging(t transport.Transport, paths RepositoryPaths) (*StagingArea, bool, error) {
	exists, err := t.Exists(paths.StagingManifest)
	if err != nil || !exists {
		return nil, false, err
	}
	sa, err := loadStaging(t, paths)
	if err != nil {
		return nil, false, err
	}
	return sa, true, nil
}

func loadStaging(t transport.Transport, paths RepositoryPaths) (*StagingArea, error) {
	m, err := LoadManifest(t, paths.StagingManifest)
	if err != nil {
		return nil, fmt.Errorf("staging: %w", err)
	}
	return &StagingArea{
		t:        t,
		paths:    paths,
		manifest: m,
		objects:  StagingObjects(t, paths),
		store:    PermanentObjects(t, paths),
	}, nil
}

// Manifest returns a copy of the staged manifest.
func (s *StagingArea) Manifest() types.Manifest {
	return s.manifest.Clone()
}

// Objects is the store holding staged objects.
func (s *StagingArea) Objects() *ObjectStore {
	return s.objects
}

// Resolves reports whether a managed volume's digest is available in either
// the staging or the permanent store.
func (s *StagingArea) Resolves(v types.Volume) (bool, error) {
	if !v.Managed() {
		return true, nil
	}
	if v.Digest == "" {
		return false, nil
	}
	for _, store := range []*ObjectStore{s.objects, s.store} {
		ok, err := store.Has(v.Digest)
		if err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}

// Upsert records v in the staged manifest and persists it.
func (s *StagingArea) Upsert(v types.Volume) error {
	if v.Scheme == "" {
		v.Scheme = types.SchemeManaged
	}
	if err := v.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	ok, err := s.Resolves(v)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("object %s for volume %s: %w", v.Digest, v.Name, ErrNotFound)
	}
	next := s.manifest.Clone()
	next[v.Name] = v
	return s.persist(next)
}

// Delete stops tracking name in the staged manifest.
func (s *StagingArea) Delete(name string) error {
	if _, ok := s.manifest[name]; !ok {
		return fmt.Errorf("volume %s is not tracked: %w", name, ErrNotFound)
	}
	next := s.manifest.Clone()
	delete(next, name)
	return s.persist(next)
}

func (s *StagingArea) persist(m types.Manifest) error {
	if _, err := WriteManifest(s.t, s.paths.StagingManifest, m); err != nil {
		return fmt.Errorf("staging: %w", err)
	}
	s.manifest = m
	return nil
}

// DiscardStaging removes the staging manifest, objects and temp files. A
// repository with nothing staged is left as is.
func DiscardStaging(t transport.Transport, paths RepositoryPaths) error {
	var err error
	for _, p := range []string{paths.StagingManifest, paths.StagingObjects, paths.StagingTmp} {
		if rmErr := t.RemoveAll(p); rmErr != nil && !errors.Is(rmErr, ErrNotFound) {
			err = multierr.Append(err, rmErr)
		}
	}
	if err != nil {
		return err
	}
	return multierr.Combine(t.CreateDir(paths.StagingObjects), t.CreateDir(paths.StagingTmp))
}

// Discard drops everything staged. The area must not be used afterwards.
func (s *StagingArea) Discard() error {
	s.manifest = types.Manifest{}
	return DiscardStaging(s.t, s.paths)
}
