package lib

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/gingerrexayers/volumetric/internal/volumetric/types"
)

// ChangeKind classifies a volume that differs between two manifests.
type ChangeKind string

const (
	Added   ChangeKind = "Added"
	Removed ChangeKind = "Removed"
	Changed ChangeKind = "Changed"
)

// Status is the difference between the committed and the staged manifest.
// The three lists are disjoint and sorted.
type Status struct {
	Added   []string
	Removed []string
	Changed []string
}

// Empty reports whether nothing differs.
func (s Status) Empty() bool {
	return len(s.Added) == 0 && len(s.Removed) == 0 && len(s.Changed) == 0
}

// StatusEntry is one line of a status report.
type StatusEntry struct {
	Name string
	Kind ChangeKind
}

// Entries flattens the status in display order: added, removed, changed.
func (s Status) Entries() []StatusEntry {
	var out []StatusEntry
	for _, group := range []struct {
		kind  ChangeKind
		names []string
	}{{Added, s.Added}, {Removed, s.Removed}, {Changed, s.Changed}} {
		for _, name := range group.names {
			out = append(out, StatusEntry{Name: name, Kind: group.kind})
		}
	}
	return out
}

// Diff compares two manifests. A volume is changed when its digest, scheme or
// source differs.
func Diff(committed, staged types.Manifest) Status {
	var st Status
	for name, next := range staged {
		prev, ok := committed[name]
		switch {
		case !ok:
			st.Added = append(st.Added, name)
		case prev.Digest != next.Digest || prev.Scheme != next.Scheme || prev.Source != next.Source:
			st.Changed = append(st.Changed, name)
		}
	}
	for name := range committed {
		if _, ok := staged[name]; !ok {
			st.Removed = append(st.Removed, name)
		}
	}
	sort.Strings(st.Added)
	sort.Strings(st.Removed)
	sort.Strings(st.Changed)
	return st
}

// StatusFormat controls FormatStatus output.
type StatusFormat struct {
	// Color highlights the change kind.
	Color bool
	// Reuse holds, per changed volume, the fraction of the new snapshot
	// already present in the committed one.
	Reuse map[string]float64
}

var kindColors = map[ChangeKind]*color.Color{
	Added:   color.New(color.FgGreen),
	Removed: color.New(color.FgRed),
	Changed: color.New(color.FgYellow),
}

// statusPadding is the width of the name column: the longest name rounded
// up to the next multiple of eight, plus eight.
func statusPadding(entries []StatusEntry) int {
	longest := 0
	for _, e := range entries {
		if len(e.Name) > longest {
			longest = len(e.Name)
		}
	}
	return longest + (8 - longest%8) + 8
}

// FormatStatus writes one line per entry. An empty status writes nothing.
func FormatStatus(w io.Writer, st Status, opts StatusFormat) error {
	entries := st.Entries()
	if len(entries) == 0 {
		return nil
	}
	padding := statusPadding(entries)
	for _, e := range entries {
		kind := string(e.Kind)
		if opts.Color {
			kind = kindColors[e.Kind].Sprint(kind)
		}
		line := fmt.Sprintf("%-*s%s", padding, e.Name, kind)
		if reuse, ok := opts.Reuse[e.Name]; ok && e.Kind == Changed {
			line += fmt.Sprintf(" (%.0f%% reused)", reuse*100)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
