package commands

import (
	"github.com/gingerrexayers/volumetric/internal/volumetric/lib"
	"go.uber.org/zap"
)

// ConfigGet returns the display value of a repository setting.
func (e *Engine) ConfigGet(key string) (string, error) {
	settings, err := e.open()
	if err != nil {
		return "", err
	}
	return settings.Get(key)
}

// ConfigSet assigns a repository setting. A nil value restores its default.
// Invalid keys or values leave the stored settings untouched.
func (e *Engine) ConfigSet(key string, value *string) error {
	settings, err := e.open()
	if err != nil {
		return err
	}
	if err := settings.Set(key, value); err != nil {
		return err
	}
	if err := settings.CheckCompatible(); err != nil {
		return err
	}
	if err := lib.WriteSettings(e.t, e.paths.Settings, settings); err != nil {
		return err
	}
	current, _ := settings.Get(key)
	e.log.Info("updated setting", zap.String("key", key), zap.String("value", current))
	return nil
}

// ConfigList returns every repository setting in order.
func (e *Engine) ConfigList() ([]lib.Setting, error) {
	settings, err := e.open()
	if err != nil {
		return nil, err
	}
	return settings.Pairs(), nil
}
