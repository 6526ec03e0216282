package commands

import (
	"bytes"
	"fmt"

	"github.com/gingerrexayers/volumetric/internal/volumetric/lib"
	"go.uber.org/zap"
)

// Generate renders a deployable descriptor from the repository settings and
// the committed Manifest. With write set it is also stored at the
// deployable path.
func (e *Engine) Generate(write bool) ([]byte, error) {
	settings, err := e.open()
	if err != nil {
		return nil, err
	}
	m, err := lib.LoadManifest(e.t, e.paths.Manifest)
	if err != nil {
		return nil, err
	}
	content, err := lib.EncodeDeployable(lib.Deployable{Settings: settings, Volumes: m})
	if err != nil {
		return nil, err
	}
	if write {
		if err := e.t.Write(e.paths.Deployable, bytes.NewReader(content)); err != nil {
			return nil, fmt.Errorf("failed to write deployable: %w", err)
		}
		e.log.Info("generated deployable", zap.String("path", e.t.Resolve(e.paths.Deployable)), zap.Int("volumes", len(m)))
	}
	return content, nil
}
