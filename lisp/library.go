// Copyright © 2024 The ELPS authors

package lisp

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Reader abstracts a parser implementation so that it may be implemented in a
// separate package as an optional/swappable component.
type Reader interface {
	// Read the contents of r and return the sequence of LVals that it
	// contains.  The returned LVals should be executed as if inside a do
	// block.
	Read(name string, r io.Reader) ([]*LVal, error)
}

// LocationReader is like Reader but assigns physical locations to the tokens
// from r.
type LocationReader interface {
	// ReadLocation the contents of r, associated with physical location loc,
	// and return the sequence of LVals that it contains.
	ReadLocation(name string, loc string, r io.Reader) ([]*LVal, error)
}

// SourceContext describes the file being evaluated when a library is asked
// for more source.
type SourceContext interface {
	// Name is the display name of the current file.
	Name() string
	// Location is the physical location of the current file.
	Location() string
}

type sourceContext struct {
	name string
	loc  string
}

func (ctx *sourceContext) Name() string     { return ctx.name }
func (ctx *sourceContext) Location() string { return ctx.loc }

// SourceLibrary reads source files requested by an environment.
type SourceLibrary interface {
	// LoadSource returns the display name, physical location and contents of
	// the source file at loc.  A relative loc is interpreted relative to the
	// file described by ctx.
	LoadSource(ctx SourceContext, loc string) (name string, location string, src []byte, err error)
}

// RelativeFileSystemLibrary reads source files from the host file system.
// When RootDir is non-empty files outside of it cannot be read.
type RelativeFileSystemLibrary struct {
	RootDir string
}

var _ SourceLibrary = &RelativeFileSystemLibrary{}

// LoadSource implements SourceLibrary.
func (lib *RelativeFileSystemLibrary) LoadSource(ctx SourceContext, loc string) (string, string, []byte, error) {
	if !filepath.IsAbs(loc) && ctx != nil && ctx.Location() != "" {
		loc = filepath.Join(filepath.Dir(ctx.Location()), loc)
	}
	abs, err := filepath.Abs(loc)
	if err != nil {
		return "", "", nil, err
	}
	if lib.RootDir != "" {
		root, err := filepath.Abs(lib.RootDir)
		if err != nil {
			return "", "", nil, err
		}
		rel, err := filepath.Rel(root, abs)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return "", "", nil, fmt.Errorf("file outside of library root: %s", loc)
		}
	}
	src, err := os.ReadFile(abs) //#nosec G304
	if err != nil {
		return "", "", nil, err
	}
	return filepath.Base(abs), abs, src, nil
}

// FSLibrary reads source files from an fs.FS, such as an embedded file
// system.
type FSLibrary struct {
	FS fs.FS
}

var _ SourceLibrary = &FSLibrary{}

// LoadSource implements SourceLibrary.
func (lib *FSLibrary) LoadSource(ctx SourceContext, loc string) (string, string, []byte, error) {
	if lib.FS == nil {
		return "", "", nil, errors.New("no file system")
	}
	if !path.IsAbs(loc) && ctx != nil && ctx.Location() != "" && !strings.Contains(ctx.Location(), ":") {
		loc = path.Join(path.Dir(ctx.Location()), loc)
	}
	loc = path.Clean(strings.TrimPrefix(loc, "/"))
	if !fs.ValidPath(loc) {
		return "", "", nil, fmt.Errorf("invalid path: %s", loc)
	}
	src, err := fs.ReadFile(lib.FS, loc)
	if err != nil {
		return "", "", nil, err
	}
	return path.Base(loc), loc, src, nil
}
