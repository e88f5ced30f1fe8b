// Package archive gives random access to files stored in a ZIP container.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/h2non/filetype"
	"github.com/maruel/natural"
	"go.uber.org/multierr"
)

var (
	// ErrNotArchive is returned when file content does not look like ZIP container.
	ErrNotArchive = errors.New("not a zip archive")
	// ErrNotFound is returned when requested entry is absent.
	ErrNotFound = errors.New("entry not found in archive")
)

// Archive is an opened ZIP container. Entries are indexed once on Open,
// directories are not indexed.
type Archive struct {
	path  string
	rc    *zip.ReadCloser
	files map[string]*zip.File
	names []string
}

// IsArchive sniffs file content and reports whether it is a ZIP based
// container (plain zip or epub).
func IsArchive(fname string) (bool, error) {
	kind, err := filetype.MatchFile(fname)
	if err != nil {
		return false, err
	}
	switch kind.Extension {
	case "zip", "epub":
		return true, nil
	}
	return false, nil
}

// Open opens and indexes archive. Entries with path traversal components
// ("..") or absolute paths make the whole archive unacceptable.
func Open(fname string) (*Archive, error) {
	ok, err := IsArchive(fname)
	if err != nil {
		return nil, fmt.Errorf("unable to check archive type: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", fname, ErrNotArchive)
	}

	rc, err := zip.OpenReader(fname)
	if err != nil {
		// reader is still returned for zip.ErrInsecurePath
		if rc != nil {
			err = multierr.Append(err, rc.Close())
		}
		return nil, fmt.Errorf("%s: %w: %w", fname, ErrNotArchive, err)
	}

	a := &Archive{
		path:  fname,
		rc:    rc,
		files: make(map[string]*zip.File, len(rc.File)),
	}
	for _, f := range rc.File {
		name := f.FileHeader.Name
		if !isSafePath(name) {
			err := fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
			return nil, multierr.Append(err, rc.Close())
		}
		if f.FileInfo().IsDir() {
			continue
		}
		if _, exists := a.files[name]; !exists {
			a.names = append(a.names, name)
		}
		a.files[name] = f
	}
	sort.Sort(natural.StringSlice(a.names))
	return a, nil
}

// Close releases underlying file.
func (a *Archive) Close() error {
	if a == nil || a.rc == nil {
		return nil
	}
	err := a.rc.Close()
	a.rc = nil
	return err
}

// Path returns location of the archive as it was given to Open.
func (a *Archive) Path() string {
	return a.path
}

// Names returns all file entries in natural order.
func (a *Archive) Names() []string {
	return append([]string(nil), a.names...)
}

// Has reports whether archive contains a file entry with exact name.
func (a *Archive) Has(name string) bool {
	_, ok := a.files[name]
	return ok
}

// ReadFile returns full content of the named entry.
func (a *Archive) ReadFile(name string) ([]byte, error) {
	f, ok := a.files[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	r, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("unable to open %q: %w", name, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("unable to read %q: %w", name, err)
	}
	return data, nil
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
