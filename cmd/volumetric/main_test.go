package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/gingerrexayers/volumetric/internal/volumetric/lib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--log-level", "none"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestCLI_InitAndConfig(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, "-C", dir, "init", "--runtime", "podman", "--policy", "nooverwrite")
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized empty volumetric repository")
	assert.FileExists(t, filepath.Join(dir, lib.MetaDirName, "lock"))

	out, err = runCLI(t, "-C", dir, "config", "get", "oci_runtime")
	require.NoError(t, err)
	assert.Equal(t, "podman\n", out)

	_, err = runCLI(t, "-C", dir, "config", "set", "remote_uri", "https://example.com/repo")
	require.NoError(t, err)
	out, err = runCLI(t, "-C", dir, "config", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "remote_uri = https://example.com/repo")
	assert.Contains(t, out, "deployment_policy = NoOverwrite")

	_, err = runCLI(t, "-C", dir, "config", "set", "colour", "blue")
	assert.ErrorIs(t, err, lib.ErrMalformed)
}

func TestCLI_InitTwiceFails(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, "-C", dir, "init")
	require.NoError(t, err)
	_, err = runCLI(t, "-C", dir, "init")
	assert.ErrorIs(t, err, lib.ErrConflict)
}

func TestCLI_GenerateAndLogOnEmptyRepository(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, "-C", dir, "init")
	require.NoError(t, err)

	out, err := runCLI(t, "-C", dir, "generate", "--stdout")
	require.NoError(t, err)
	assert.Contains(t, out, "version: 0.1.0")
	assert.NoFileExists(t, filepath.Join(dir, lib.DeployableFilename))

	_, err = runCLI(t, "-C", dir, "generate")
	require.NoError(t, err)
	content, err := os.ReadFile(filepath.Join(dir, lib.DeployableFilename))
	require.NoError(t, err)
	assert.Equal(t, out, string(content))

	out, err = runCLI(t, "-C", dir, "log")
	require.NoError(t, err)
	assert.Contains(t, out, "No commits found")
}

func TestCLI_NotARepository(t *testing.T) {
	_, err := runCLI(t, "-C", t.TempDir(), "status")
	assert.ErrorIs(t, err, lib.ErrNotFound)
}

func TestCLI_Completion(t *testing.T) {
	out, err := runCLI(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "__start_volumetric")

	_, err = runCLI(t, "completion", "tcsh")
	assert.Error(t, err)
}
