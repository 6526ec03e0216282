package lib

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gingerrexayers/volumetric/internal/volumetric/transport"
	"github.com/opencontainers/go-digest"
)

// History is the ordered list of committed manifest digests, oldest first.
type History []digest.Digest

// Last returns the most recent entry, or false for an empty history.
func (h History) Last() (digest.Digest, bool) {
	if len(h) == 0 {
		return "", false
	}
	return h[len(h)-1], true
}

// Resolve finds an entry by its 1-based position or by a unique prefix of its
// hex encoding (with or without the algorithm). It returns the 1-based index.
func (h History) Resolve(id string) (int, digest.Digest, error) {
	if len(h) == 0 {
		return 0, "", fmt.Errorf("no commits to search from: %w", ErrNotFound)
	}
	if n, err := strconv.Atoi(id); err == nil && len(id) < 8 {
		if n < 1 || n > len(h) {
			return 0, "", fmt.Errorf("no commit with index %d: %w", n, ErrNotFound)
		}
		return n, h[n-1], nil
	}

	prefix := strings.TrimPrefix(id, digest.Canonical.String()+":")
	match := -1
	for i, d := range h {
		if !strings.HasPrefix(d.Encoded(), prefix) {
			continue
		}
		if match >= 0 && h[match] != d {
			return 0, "", fmt.Errorf("ambiguous commit identifier '%s' matches multiple commits: %w", id, ErrConflict)
		}
		match = i
	}
	if match < 0 {
		return 0, "", fmt.Errorf("no commit found with index or digest prefix '%s': %w", id, ErrNotFound)
	}
	return match + 1, h[match], nil
}

// LoadHistory reads the history file. A missing file is an empty history.
func LoadHistory(t transport.Transport, p string) (History, error) {
	content, err := transport.ReadAll(t, p)
	if errors.Is(err, ErrNotFound) {
		return History{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	h := History{}
	scanner := bufio.NewScanner(bytes.NewReader(content))
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		d := digest.Digest(text)
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("history line %d: %w: %w", line, ErrMalformed, err)
		}
		h = append(h, d)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan history: %w", err)
	}
	return h, nil
}

// AppendHistory adds one entry to the end of the history file.
func AppendHistory(t transport.Transport, p string, d digest.Digest) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("history entry %q: %w", d, ErrMalformed)
	}
	if err := t.Append(p, strings.NewReader(d.String()+"\n")); err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}
	return nil
}
