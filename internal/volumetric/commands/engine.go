// Package commands implements the repository operations behind the
// volumetric command-line interface.
package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gingerrexayers/volumetric/internal/volumetric/archiver"
	"github.com/gingerrexayers/volumetric/internal/volumetric/lib"
	"github.com/gingerrexayers/volumetric/internal/volumetric/runtime"
	"github.com/gingerrexayers/volumetric/internal/volumetric/transport"
	"github.com/gingerrexayers/volumetric/internal/volumetric/types"
	"github.com/opencontainers/go-digest"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Archiver packs a volume directory into a stream and back.
type Archiver interface {
	Pack(srcDir string, w io.Writer) error
	Unpack(r io.Reader, dstDir string) error
}

// RuntimeProvider hands out the driver for a runtime kind.
type RuntimeProvider func(kind types.RuntimeKind) (runtime.OciRuntime, error)

// Engine runs repository operations against one repository.
type Engine struct {
	t        transport.Transport
	paths    lib.RepositoryPaths
	archiver Archiver
	runtimes RuntimeProvider
	sources  afero.Fs
	log      *zap.Logger
	out      io.Writer
}

// Option customizes an Engine.
type Option func(*Engine)

// WithPaths overrides the repository layout.
func WithPaths(p lib.RepositoryPaths) Option {
	return func(e *Engine) { e.paths = p }
}

// WithArchiver sets how volumes are packed and unpacked.
func WithArchiver(a Archiver) Option {
	return func(e *Engine) { e.archiver = a }
}

// WithRuntimes sets the runtime driver provider.
func WithRuntimes(p RuntimeProvider) Option {
	return func(e *Engine) { e.runtimes = p }
}

// WithSourceFs sets the file system external volume sources are read from.
func WithSourceFs(fs afero.Fs) Option {
	return func(e *Engine) { e.sources = fs }
}

// WithLogger sets the structured logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithOutput sets where user-facing progress is printed.
func WithOutput(w io.Writer) Option {
	return func(e *Engine) { e.out = w }
}

// New returns an engine over t. Without options it uses the default layout,
// the host file system and the real runtime drivers.
func New(t transport.Transport, opts ...Option) *Engine {
	e := &Engine{
		t:        t,
		paths:    lib.DefaultPaths(),
		archiver: archiver.New(nil),
		runtimes: func(kind types.RuntimeKind) (runtime.OciRuntime, error) {
			return runtime.New(kind, runtime.DefaultOptions())
		},
		sources: afero.NewOsFs(),
		log:     zap.NewNop(),
		out:     os.Stdout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Paths returns the repository layout in use.
func (e *Engine) Paths() lib.RepositoryPaths { return e.paths }

func (e *Engine) printf(format string, args ...any) {
	fmt.Fprintf(e.out, format, args...)
}

// open checks that the repository exists and is compatible, and returns
// its settings.
func (e *Engine) open() (lib.Settings, error) {
	ok, err := e.t.Exists(e.paths.Manifest)
	if err != nil {
		return lib.Settings{}, err
	}
	if !ok {
		return lib.Settings{}, fmt.Errorf("%s is not a volumetric repository: %w", e.t, lib.ErrNotFound)
	}
	settings, err := lib.LoadSettings(e.t, e.paths.Settings)
	if err != nil {
		return lib.Settings{}, err
	}
	if err := settings.CheckCompatible(); err != nil {
		return lib.Settings{}, err
	}
	return settings, nil
}

func (e *Engine) permanent() *lib.ObjectStore {
	return lib.PermanentObjects(e.t, e.paths)
}

func (e *Engine) staged() *lib.ObjectStore {
	return lib.StagingObjects(e.t, e.paths)
}

// openObject looks a digest up in the staging store, then the permanent one.
func (e *Engine) openObject(d digest.Digest) (io.ReadCloser, error) {
	r, err := e.staged().Get(d)
	if err == nil {
		return r, nil
	}
	if !errors.Is(err, lib.ErrNotFound) {
		return nil, err
	}
	return e.permanent().Get(d)
}
