package commands

import (
	"github.com/gingerrexayers/volumetric/internal/volumetric/lib"
)

// Reset discards the staging area, returning the repository to the Clean
// state.
func (e *Engine) Reset() error {
	if _, err := e.open(); err != nil {
		return err
	}
	if err := lib.DiscardStaging(e.t, e.paths); err != nil {
		return err
	}
	e.log.Info("discarded staging area")
	e.printf("✅ Staging area discarded.\n")
	return nil
}
