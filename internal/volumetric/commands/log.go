package commands

import (
	"errors"
	"fmt"

	"github.com/gingerrexayers/volumetric/internal/volumetric/lib"
	"github.com/gingerrexayers/volumetric/internal/volumetric/types"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/opencontainers/go-digest"
)

// LogEntry is one committed manifest.
type LogEntry struct {
	Index  int
	Digest digest.Digest
	// Volumes is the number of tracked volumes, or -1 when the archived
	// manifest is missing.
	Volumes int
}

// Log prints the commit history, oldest first.
func (e *Engine) Log() ([]LogEntry, error) {
	if _, err := e.open(); err != nil {
		return nil, err
	}
	history, err := lib.LoadHistory(e.t, e.paths.History)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		e.printf("No commits found in %s.\n", e.t.Resolve(e.paths.Root))
		return nil, nil
	}

	entries := make([]LogEntry, 0, len(history))
	for i, d := range history {
		entry := LogEntry{Index: i + 1, Digest: d, Volumes: -1}
		m, err := e.archived(d)
		switch {
		case err == nil:
			entry.Volumes = len(m)
		case !errors.Is(err, lib.ErrNotFound):
			return nil, err
		}
		entries = append(entries, entry)
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(e.out)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"#", "Digest", "Volumes"})
	for _, entry := range entries {
		volumes := any(entry.Volumes)
		if entry.Volumes < 0 {
			volumes = "missing"
		}
		tw.AppendRow(table.Row{entry.Index, entry.Digest.Encoded()[:12], volumes})
	}
	tw.Render()
	return entries, nil
}

// Show returns the archived manifest of a commit selected by index or
// digest prefix, and prints it.
func (e *Engine) Show(id string) (digest.Digest, types.Manifest, error) {
	if _, err := e.open(); err != nil {
		return "", nil, err
	}
	history, err := lib.LoadHistory(e.t, e.paths.History)
	if err != nil {
		return "", nil, err
	}
	idx, d, err := history.Resolve(id)
	if err != nil {
		return "", nil, err
	}
	m, err := e.archived(d)
	if err != nil {
		return "", nil, err
	}
	content, err := lib.EncodeManifest(m)
	if err != nil {
		return "", nil, err
	}
	e.printf("commit %d %s\n\n%s", idx, d, content)
	return d, m, nil
}

// archived loads the manifest stored for a committed digest.
func (e *Engine) archived(d digest.Digest) (types.Manifest, error) {
	m, err := lib.LoadManifest(e.t, e.paths.ChangePath(d.Encoded()))
	if err != nil {
		return nil, fmt.Errorf("commit %s: %w", d, err)
	}
	return m, nil
}
