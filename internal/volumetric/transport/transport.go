// Package transport abstracts byte-level access to the repository backend.
package transport

import (
	"io"
)

type errString string

func (e errString) Error() string { return string(e) }

const (
	// ErrNotFound is returned when a path does not exist in the backend.
	ErrNotFound errString = "not found"
	// ErrIO wraps every other backend failure.
	ErrIO errString = "transport i/o failure"
)

// Transport implementations know how to move bytes in and out of a
// repository. Paths are slash separated and relative to the repository root.
type Transport interface {
	String() string
	Read(path string) (io.ReadCloser, error)
	// Write replaces path atomically: readers observe either the old or the
	// new content.
	Write(path string, source io.Reader) error
	Append(path string, source io.Reader) error
	// CreateDir is idempotent and creates missing parents.
	CreateDir(path string) error
	Rename(src, dst string) error
	Copy(src, dst string) error
	// List returns the entries of dir as root-relative paths, sorted.
	List(dir string) ([]string, error)
	Exists(path string) (bool, error)
	Remove(path string) error
	RemoveAll(path string) error
	// Resolve maps a repository path to the backend's absolute location.
	Resolve(path string) string
}

// ReadAll reads the whole content at path.
func ReadAll(t Transport, path string) ([]byte, error) {
	r, err := t.Read(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
