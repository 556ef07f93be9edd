// Package archive gives access to style sheet bundles packed with "archive/zip".
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/maruel/natural"
)

// WalkFunc is the type of the function called for each file in archive
// visited by Walk. The archive argument contains path to archive passed to Walk
// The file argument is the zip.File structure for file in archive which satisfies
// match condition. If an error is returned, processing stops.
type WalkFunc func(archive string, file *zip.File) error

// Reader is an opened archive with entries indexed by their cleaned names.
type Reader struct {
	name  string
	zr    *zip.ReadCloser
	files map[string]*zip.File
	names []string
}

// Open opens archive and validates its entries. Archives with path traversal
// components ("..") or absolute entry names are rejected to prevent Zip Slip
// attacks.
func Open(archive string) (*Reader, error) {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return nil, err
	}

	r := &Reader{name: archive, zr: zr, files: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		name := f.FileHeader.Name
		if !isSafePath(name) {
			zr.Close()
			return nil, fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if f.FileInfo().IsDir() {
			continue
		}
		name = path.Clean(name)
		r.files[name] = f
		r.names = append(r.names, name)
	}
	sort.Sort(natural.StringSlice(r.names))
	return r, nil
}

// Name returns path of the archive.
func (r *Reader) Name() string {
	return r.name
}

// Names returns entries starting with prefix in natural order.
func (r *Reader) Names(prefix string) []string {
	var out []string
	for _, name := range r.names {
		if strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}
	return out
}

// ReadFile returns content of the entry.
func (r *Reader) ReadFile(name string) ([]byte, error) {
	f, ok := r.files[path.Clean(strings.TrimPrefix(name, "/"))]
	if !ok {
		return nil, fmt.Errorf("%s: %s: %w", r.name, name, fs.ErrNotExist)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (r *Reader) Close() error {
	return r.zr.Close()
}

// Walk walks the all files in the archive which names start with prefix in
// natural order, calling walkFn for each item.
func Walk(archive, prefix string, walkFn WalkFunc) error {

	r, err := Open(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, name := range r.Names(prefix) {
		if err := walkFn(archive, r.files[name]); err != nil {
			return err
		}
	}
	return nil
}

// isSafePath returns false for paths that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
