package commands_test

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"testing"

	"github.com/gingerrexayers/volumetric/internal/volumetric/archiver"
	"github.com/gingerrexayers/volumetric/internal/volumetric/commands"
	"github.com/gingerrexayers/volumetric/internal/volumetric/lib"
	"github.com/gingerrexayers/volumetric/internal/volumetric/runtime"
	"github.com/gingerrexayers/volumetric/internal/volumetric/transport"
	"github.com/gingerrexayers/volumetric/internal/volumetric/types"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// fakeRuntime keeps volumes as directories on an in-memory host.
type fakeRuntime struct {
	host    afero.Fs
	volumes map[string]bool
	calls   []string
}

func (f *fakeRuntime) path(name string) string { return path.Join("/volumes", name) }

func (f *fakeRuntime) Exists(name string) (bool, error) {
	f.calls = append(f.calls, "exists "+name)
	return f.volumes[name], nil
}

func (f *fakeRuntime) HostPath(name string) (string, error) {
	if !f.volumes[name] {
		return "", fmt.Errorf("volume %s: %w", name, lib.ErrNotFound)
	}
	return f.path(name), nil
}

func (f *fakeRuntime) Create(name string) error {
	f.calls = append(f.calls, "create "+name)
	f.volumes[name] = true
	return f.host.MkdirAll(f.path(name), 0755)
}

func (f *fakeRuntime) Remove(name string) error {
	f.calls = append(f.calls, "remove "+name)
	delete(f.volumes, name)
	return f.host.RemoveAll(f.path(name))
}

// countingArchiver records how often content is unpacked.
type countingArchiver struct {
	*archiver.Archiver
	unpacks int
}

func (c *countingArchiver) Unpack(r io.Reader, dst string) error {
	c.unpacks++
	return c.Archiver.Unpack(r, dst)
}

type testEnv struct {
	engine  *commands.Engine
	repo    transport.Transport
	paths   lib.RepositoryPaths
	host    afero.Fs
	sources afero.Fs
	rt      *fakeRuntime
	arch    *countingArchiver
	out     *bytes.Buffer
}

// newTestEnv initializes a repository on an in-memory transport with a fake
// runtime whose volumes live on a separate in-memory host.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		repo:    transport.NewLocal(afero.NewMemMapFs()),
		paths:   lib.DefaultPaths(),
		host:    afero.NewMemMapFs(),
		sources: afero.NewMemMapFs(),
		out:     &bytes.Buffer{},
	}
	env.rt = &fakeRuntime{host: env.host, volumes: map[string]bool{}}
	env.arch = &countingArchiver{Archiver: archiver.New(env.host)}
	env.engine = commands.New(env.repo,
		commands.WithArchiver(env.arch),
		commands.WithRuntimes(func(types.RuntimeKind) (runtime.OciRuntime, error) { return env.rt, nil }),
		commands.WithSourceFs(env.sources),
		commands.WithOutput(env.out),
	)
	require.NoError(t, env.engine.Init(lib.DefaultSettings()))
	return env
}

// volume creates (or replaces the content of) a runtime volume.
func (env *testEnv) volume(t *testing.T, name string, files map[string]string) {
	t.Helper()
	root := env.rt.path(name)
	require.NoError(t, env.host.RemoveAll(root))
	require.NoError(t, env.host.MkdirAll(root, 0755))
	for file, content := range files {
		p := path.Join(root, file)
		require.NoError(t, env.host.MkdirAll(path.Dir(p), 0755))
		require.NoError(t, afero.WriteFile(env.host, p, []byte(content), 0644))
	}
	env.rt.volumes[name] = true
}

func (env *testEnv) history(t *testing.T) lib.History {
	t.Helper()
	h, err := lib.LoadHistory(env.repo, env.paths.History)
	require.NoError(t, err)
	return h
}

func (env *testEnv) lockDigest(t *testing.T) string {
	t.Helper()
	content, err := transport.ReadAll(env.repo, env.paths.Manifest)
	require.NoError(t, err)
	return lib.ManifestDigest(content).String()
}
