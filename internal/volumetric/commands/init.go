package commands

import (
	"fmt"
	"strings"

	"github.com/gingerrexayers/volumetric/internal/volumetric/lib"
	"github.com/gingerrexayers/volumetric/internal/volumetric/types"
	"go.uber.org/zap"
)

// Init creates an empty repository configured with settings.
func (e *Engine) Init(settings lib.Settings) error {
	exists, err := e.t.Exists(e.paths.Manifest)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("repository already initialized at %s: %w", e.t, lib.ErrConflict)
	}
	if err := settings.CheckCompatible(); err != nil {
		return err
	}

	for _, dir := range e.paths.Dirs() {
		if err := e.t.CreateDir(dir); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := lib.WriteSettings(e.t, e.paths.Settings, settings); err != nil {
		return err
	}
	if err := e.t.Write(e.paths.History, strings.NewReader("")); err != nil {
		return fmt.Errorf("failed to create history: %w", err)
	}
	// The manifest is written last: its presence marks an initialized repository.
	if _, err := lib.WriteManifest(e.t, e.paths.Manifest, types.Manifest{}); err != nil {
		return err
	}

	e.log.Info("initialized repository", zap.Stringer("transport", e.t))
	e.printf("✅ Initialized empty volumetric repository in %s\n", e.t.Resolve(e.paths.Root))
	return nil
}
