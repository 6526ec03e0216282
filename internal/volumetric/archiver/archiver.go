// Package archiver turns a volume directory into a single compressed stream
// and back.
package archiver

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// ErrUnsafePath is returned when an archive entry would land outside the
// destination directory.
var ErrUnsafePath = errors.New("archive entry escapes destination")

// Archiver packs and unpacks volume content on a file system.
type Archiver struct {
	fs afero.Fs
}

// New returns an archiver over fs. A nil fs means the host file system.
func New(fs afero.Fs) *Archiver {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Archiver{fs: fs}
}

// epoch is stamped on every entry so that equal content packs to equal bytes.
var epoch = time.Unix(0, 0).UTC()

// Pack writes a gzip compressed tar of srcDir to w. Entries are visited in
// lexical order and carry no timestamps or ownership.
func (a *Archiver) Pack(srcDir string, w io.Writer) error {
	info, err := a.fs.Stat(srcDir)
	if err != nil {
		return fmt.Errorf("could not stat %s: %w", srcDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", srcDir)
	}

	ignore := loadMatcher(a.fs, srcDir)
	gz := gzip.NewWriter(w)
	tw := tar.NewWriter(gz)

	walkErr := afero.Walk(a.fs, srcDir, func(p string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if p == srcDir {
			return nil
		}
		rel, err := filepath.Rel(srcDir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if ignore.Ignored(rel, fi.IsDir()) {
			if fi.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		return a.writeEntry(tw, p, rel, fi)
	})
	if walkErr != nil {
		return fmt.Errorf("failed to pack %s: %w", srcDir, walkErr)
	}
	if err := tw.Close(); err != nil {
		return fmt.Errorf("failed to finish archive: %w", err)
	}
	return gz.Close()
}

func (a *Archiver) writeEntry(tw *tar.Writer, p, rel string, fi os.FileInfo) error {
	hdr := &tar.Header{
		Name:    rel,
		Mode:    int64(fi.Mode().Perm()),
		ModTime: epoch,
		Format:  tar.FormatPAX,
	}
	switch {
	case fi.IsDir():
		hdr.Typeflag = tar.TypeDir
		hdr.Name += "/"
		return tw.WriteHeader(hdr)
	case fi.Mode()&os.ModeSymlink != 0:
		lr, ok := a.fs.(afero.LinkReader)
		if !ok {
			return nil
		}
		target, err := lr.ReadlinkIfPossible(p)
		if err != nil {
			return err
		}
		hdr.Typeflag = tar.TypeSymlink
		hdr.Linkname = target
		return tw.WriteHeader(hdr)
	case fi.Mode().IsRegular():
		hdr.Typeflag = tar.TypeReg
		hdr.Size = fi.Size()
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		f, err := a.fs.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	}
	// Devices, sockets and pipes have no place in a snapshot.
	return nil
}

// Unpack extracts a stream produced by Pack into dstDir, creating it if
// needed. Entries that would escape dstDir are rejected.
func (a *Archiver) Unpack(r io.Reader, dstDir string) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer gz.Close()
	if err := a.fs.MkdirAll(dstDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dstDir, err)
	}

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read archive: %w", err)
		}
		target, err := safeJoin(dstDir, hdr.Name)
		if err != nil {
			return err
		}
		if err := a.extract(tr, hdr, target); err != nil {
			return fmt.Errorf("failed to extract %s: %w", hdr.Name, err)
		}
	}
}

func (a *Archiver) extract(tr *tar.Reader, hdr *tar.Header, target string) error {
	mode := os.FileMode(hdr.Mode).Perm()
	switch hdr.Typeflag {
	case tar.TypeDir:
		return a.fs.MkdirAll(target, mode|0700)
	case tar.TypeReg:
		if err := a.fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}
		f, err := a.fs.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
		if err != nil {
			return err
		}
		if _, err := io.Copy(f, tr); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	case tar.TypeSymlink:
		if path.IsAbs(hdr.Linkname) {
			return fmt.Errorf("absolute link %s: %w", hdr.Linkname, ErrUnsafePath)
		}
		if _, err := safeJoin("", path.Join(path.Dir(filepath.ToSlash(hdr.Name)), hdr.Linkname)); err != nil {
			return err
		}
		linker, ok := a.fs.(afero.Linker)
		if !ok {
			return nil
		}
		if err := a.fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}
		return linker.SymlinkIfPossible(hdr.Linkname, target)
	}
	return nil
}

// safeJoin places an archive entry name under dstDir.
func safeJoin(dstDir, name string) (string, error) {
	slashed := filepath.ToSlash(name)
	clean := path.Clean(slashed)
	if path.IsAbs(slashed) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%s: %w", name, ErrUnsafePath)
	}
	return filepath.Join(dstDir, filepath.FromSlash(clean)), nil
}

// Decompress exposes the raw tar stream of a packed snapshot.
func Decompress(r io.Reader) (io.ReadCloser, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	return gz, nil
}
