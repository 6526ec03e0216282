package lib

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gingerrexayers/volumetric/internal/volumetric/transport"
	"github.com/opencontainers/go-digest"
)

var putSeq atomic.Uint64

// ObjectStore is an immutable content-addressed store: each object lives at
// dir/<hex> and its bytes always hash to that name.
type ObjectStore struct {
	t      transport.Transport
	dir    string
	tmpDir string
}

// NewObjectStore creates a store over dir, staging partial writes in tmpDir.
func NewObjectStore(t transport.Transport, dir, tmpDir string) *ObjectStore {
	return &ObjectStore{t: t, dir: dir, tmpDir: tmpDir}
}

// Dir returns the directory holding the objects.
func (s *ObjectStore) Dir() string { return s.dir }

// ObjectPath returns the location of the object named by d.
func (s *ObjectStore) ObjectPath(d digest.Digest) string {
	return path.Join(s.dir, d.Encoded())
}

// Put streams source into the store and returns its digest. Writing content
// that is already present leaves the existing object untouched.
func (s *ObjectStore) Put(source io.Reader) (digest.Digest, error) {
	tmp := path.Join(s.tmpDir, "put-"+strconv.FormatInt(time.Now().UnixNano(), 36)+"-"+strconv.FormatUint(putSeq.Add(1), 10))
	digester := digest.Canonical.Digester()
	if err := s.t.Write(tmp, io.TeeReader(source, digester.Hash())); err != nil {
		return "", fmt.Errorf("failed to stage object: %w", err)
	}
	d := digester.Digest()

	exists, err := s.Has(d)
	if err != nil {
		_ = s.t.Remove(tmp)
		return "", err
	}
	if exists {
		if err := s.t.Remove(tmp); err != nil {
			return "", fmt.Errorf("failed to drop duplicate object %s: %w", d, err)
		}
		return d, nil
	}
	if err := s.t.Rename(tmp, s.ObjectPath(d)); err != nil {
		return "", fmt.Errorf("failed to store object %s: %w", d, err)
	}
	return d, nil
}

// PutBytes stores an in-memory object.
func (s *ObjectStore) PutBytes(content []byte) (digest.Digest, error) {
	return s.Put(bytes.NewReader(content))
}

// Get opens the object named by d.
func (s *ObjectStore) Get(d digest.Digest) (io.ReadCloser, error) {
	r, err := s.t.Read(s.ObjectPath(d))
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", d, err)
	}
	return r, nil
}

// Has reports whether the object named by d is stored.
func (s *ObjectStore) Has(d digest.Digest) (bool, error) {
	if err := d.Validate(); err != nil {
		return false, fmt.Errorf("object %q: %w", d, ErrMalformed)
	}
	return s.t.Exists(s.ObjectPath(d))
}

// MoveIn renames src into the store under d without re-hashing. The caller
// vouches that src hashes to d. If the object already exists src is removed.
func (s *ObjectStore) MoveIn(d digest.Digest, src string) error {
	exists, err := s.Has(d)
	if err != nil {
		return err
	}
	if exists {
		if err := s.t.Remove(src); err != nil && !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("failed to drop moved object %s: %w", d, err)
		}
		return nil
	}
	if err := s.t.Rename(src, s.ObjectPath(d)); err != nil {
		return fmt.Errorf("failed to move object %s: %w", d, err)
	}
	return nil
}

// Verify re-hashes the stored bytes of d.
func (s *ObjectStore) Verify(d digest.Digest) error {
	r, err := s.Get(d)
	if err != nil {
		return err
	}
	defer r.Close()
	got, err := GetReaderHash(r)
	if err != nil {
		return fmt.Errorf("object %s: %w: %w", d, ErrIO, err)
	}
	if got != d {
		return fmt.Errorf("object %s hashes to %s: %w", d, got, ErrDigestMismatch)
	}
	return nil
}

// List returns the digests of every stored object. A missing directory is an
// empty store.
func (s *ObjectStore) List() ([]digest.Digest, error) {
	entries, err := s.t.List(s.dir)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	out := make([]digest.Digest, 0, len(entries))
	for _, entry := range entries {
		d := digest.NewDigestFromEncoded(digest.Canonical, path.Base(entry))
		if d.Validate() != nil {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

// Remove deletes the object named by d.
func (s *ObjectStore) Remove(d digest.Digest) error {
	return s.t.Remove(s.ObjectPath(d))
}

// Clear empties the store directory.
func (s *ObjectStore) Clear() error {
	if err := s.t.RemoveAll(s.dir); err != nil {
		return err
	}
	return s.t.CreateDir(s.dir)
}
