// Package lib contains the core, reusable services for the volumetric application.
package lib

import "path"

// --- Constants ---

// MetaDirName is the name of the root directory for all repository metadata.
const MetaDirName = ".volumetric"

// DeployableFilename is the descriptor written by generate, outside the metadata root.
const DeployableFilename = "volumetric.yaml"

// RepositoryPaths holds every location the engine touches, relative to the
// repository root. It is built once and passed to each component.
type RepositoryPaths struct {
	Root            string
	Settings        string
	Manifest        string
	History         string
	Objects         string
	Changes         string
	Tmp             string
	Staging         string
	StagingManifest string
	StagingObjects  string
	StagingTmp      string
	Deployable      string
}

// DefaultPaths returns the standard repository layout.
func DefaultPaths() RepositoryPaths {
	return NewPaths(MetaDirName)
}

// NewPaths lays out a repository whose metadata lives under root.
func NewPaths(root string) RepositoryPaths {
	staging := path.Join(root, "staging")
	return RepositoryPaths{
		Root:            root,
		Settings:        path.Join(root, "settings"),
		Manifest:        path.Join(root, "lock"),
		History:         path.Join(root, "history"),
		Objects:         path.Join(root, "objects"),
		Changes:         path.Join(root, "changes"),
		Tmp:             path.Join(root, "tmp"),
		Staging:         staging,
		StagingManifest: path.Join(staging, "lock"),
		StagingObjects:  path.Join(staging, "objects"),
		StagingTmp:      path.Join(staging, "tmp"),
		Deployable:      DeployableFilename,
	}
}

// Dirs lists the directories an initialized repository must contain.
func (p RepositoryPaths) Dirs() []string {
	return []string{p.Root, p.Objects, p.Changes, p.Tmp, p.Staging, p.StagingObjects, p.StagingTmp}
}

// ChangePath is the archived manifest location for a committed digest hex.
func (p RepositoryPaths) ChangePath(hex string) string {
	return path.Join(p.Changes, hex)
}
