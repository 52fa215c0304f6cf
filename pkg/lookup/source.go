package lookup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"syscall"

	"github.com/getmockd/mockdir/pkg/resolve"
)

// nullThreshold is the size below which a static file is answered as null.
const nullThreshold = 2

// nullBody is the body used for near-empty static files.
var nullBody = []byte("null")

// Source is one step of the lookup chain.
type Source interface {
	// Ext is the file extension this source looks for, including the dot.
	Ext() string

	// Find looks for the source's file for key. It reports false when the
	// file does not exist, so the next source can be tried.
	Find(ctx context.Context, fsys fs.FS, key string) (Outcome, bool, error)
}

// DynamicSource matches handler files; it never reads them.
type DynamicSource struct {
	ext string
}

// Dynamic returns a source for handler files with the given extension.
func Dynamic(ext string) *DynamicSource {
	return &DynamicSource{ext: ext}
}

// Ext implements Source.
func (s *DynamicSource) Ext() string { return s.ext }

// Find implements Source.
func (s *DynamicSource) Find(_ context.Context, fsys fs.FS, key string) (Outcome, bool, error) {
	name, ok := resolve.File(key, s.ext)
	if !ok {
		return Outcome{}, false, nil
	}
	found, err := exists(fsys, name)
	if err != nil || !found {
		return Outcome{}, false, err
	}
	return Outcome{Kind: KindDynamic, Key: key, File: name, Ext: s.ext}, true, nil
}

// StaticSource matches fixture files and returns their content.
type StaticSource struct {
	ext string
}

// Static returns a source for fixture files with the given extension.
func Static(ext string) *StaticSource {
	return &StaticSource{ext: ext}
}

// Ext implements Source.
func (s *StaticSource) Ext() string { return s.ext }

// Find implements Source. A file that disappears between the existence check
// and the read is reported as missing.
func (s *StaticSource) Find(_ context.Context, fsys fs.FS, key string) (Outcome, bool, error) {
	name, ok := resolve.File(key, s.ext)
	if !ok {
		return Outcome{}, false, nil
	}
	found, err := exists(fsys, name)
	if err != nil || !found {
		return Outcome{}, false, err
	}

	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		if isMissing(err) {
			return Outcome{}, false, nil
		}
		return Outcome{}, false, fmt.Errorf("read %s: %w", name, err)
	}
	if len(data) < nullThreshold {
		data = nullBody
	}
	return Outcome{Kind: KindStatic, Key: key, File: name, Ext: s.ext, Body: data}, true, nil
}

// exists reports whether name is a regular (non-directory) file in fsys.
func exists(fsys fs.FS, name string) (bool, error) {
	info, err := fs.Stat(fsys, name)
	if err != nil {
		if isMissing(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", name, err)
	}
	return !info.IsDir(), nil
}

// isMissing treats "a parent is not a directory" the same as "does not exist".
func isMissing(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}
