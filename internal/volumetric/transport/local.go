package transport

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/spf13/afero"
)

// partialSuffix marks files that are still being written.
const partialSuffix = ".partial"

// Local is a Transport over an afero file system.
type Local struct {
	fs afero.Fs
}

// NewLocal wraps fs. A nil fs roots the transport at the working directory.
func NewLocal(fs afero.Fs) *Local {
	if fs == nil {
		fs = afero.NewBasePathFs(afero.NewOsFs(), ".")
	}
	return &Local{fs: fs}
}

// NewLocalDir roots a transport at dir on the host file system.
func NewLocalDir(dir string) (*Local, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("could not resolve absolute path for %s: %w", dir, err)
	}
	return NewLocal(afero.NewBasePathFs(afero.NewOsFs(), abs)), nil
}

// Fs exposes the underlying file system.
func (l *Local) Fs() afero.Fs { return l.fs }

func (l *Local) String() string {
	const localfs = "localfs"
	if fs, ok := l.fs.(*afero.BasePathFs); ok {
		pp, err := fs.RealPath("")
		if err != nil {
			return localfs
		}
		return localfs + "@" + pp
	}
	return localfs
}

func native(p string) string {
	return filepath.FromSlash(path.Clean(p))
}

func wrap(op, p string, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s %s: %w", op, p, ErrNotFound)
	}
	return fmt.Errorf("%s %s: %w: %w", op, p, ErrIO, err)
}

func (l *Local) ensureParent(p string) error {
	dir := path.Dir(path.Clean(p))
	if dir == "." || dir == "/" {
		return nil
	}
	if err := l.fs.MkdirAll(native(dir), 0755); err != nil {
		return wrap("mkdir", dir, err)
	}
	return nil
}

func (l *Local) Read(p string) (io.ReadCloser, error) {
	f, err := l.fs.Open(native(p))
	if err != nil {
		return nil, wrap("read", p, err)
	}
	return f, nil
}

func (l *Local) Write(p string, source io.Reader) error {
	if err := l.ensureParent(p); err != nil {
		return err
	}
	tmp := native(p) + partialSuffix
	f, err := l.fs.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return wrap("write", p, err)
	}
	if _, err := io.Copy(f, source); err != nil {
		f.Close()
		_ = l.fs.Remove(tmp)
		return wrap("write", p, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		_ = l.fs.Remove(tmp)
		return wrap("sync", p, err)
	}
	if err := f.Close(); err != nil {
		_ = l.fs.Remove(tmp)
		return wrap("write", p, err)
	}
	if err := l.fs.Rename(tmp, native(p)); err != nil {
		_ = l.fs.Remove(tmp)
		return wrap("write", p, err)
	}
	return nil
}

func (l *Local) Append(p string, source io.Reader) error {
	if err := l.ensureParent(p); err != nil {
		return err
	}
	f, err := l.fs.OpenFile(native(p), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return wrap("append", p, err)
	}
	if _, err := io.Copy(f, source); err != nil {
		f.Close()
		return wrap("append", p, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return wrap("sync", p, err)
	}
	if err := f.Close(); err != nil {
		return wrap("append", p, err)
	}
	return nil
}

func (l *Local) CreateDir(p string) error {
	if err := l.fs.MkdirAll(native(p), 0755); err != nil {
		return wrap("mkdir", p, err)
	}
	return nil
}

func (l *Local) Rename(src, dst string) error {
	if _, err := l.fs.Stat(native(src)); err != nil {
		return wrap("rename", src, err)
	}
	if err := l.ensureParent(dst); err != nil {
		return err
	}
	if err := l.fs.Rename(native(src), native(dst)); err != nil {
		return wrap("rename", src, err)
	}
	return nil
}

func (l *Local) Copy(src, dst string) error {
	content, err := afero.ReadFile(l.fs, native(src))
	if err != nil {
		return wrap("copy", src, err)
	}
	return l.Write(dst, bytes.NewReader(content))
}

func (l *Local) List(dir string) ([]string, error) {
	infos, err := afero.ReadDir(l.fs, native(dir))
	if err != nil {
		return nil, wrap("list", dir, err)
	}
	entries := make([]string, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, path.Join(dir, info.Name()))
	}
	return entries, nil
}

func (l *Local) Exists(p string) (bool, error) {
	ok, err := afero.Exists(l.fs, native(p))
	if err != nil {
		return false, wrap("stat", p, err)
	}
	return ok, nil
}

func (l *Local) Remove(p string) error {
	if err := l.fs.Remove(native(p)); err != nil {
		return wrap("remove", p, err)
	}
	return nil
}

func (l *Local) RemoveAll(p string) error {
	if err := l.fs.RemoveAll(native(p)); err != nil {
		return wrap("remove", p, err)
	}
	return nil
}

func (l *Local) Resolve(p string) string {
	if fs, ok := l.fs.(*afero.BasePathFs); ok {
		if rp, err := fs.RealPath(native(p)); err == nil {
			return rp
		}
	}
	return native(p)
}
