package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Root errors.
var (
	ErrRootMissing = errors.New("mock data directory does not exist")
	ErrRootNotDir  = errors.New("mock data path is not a directory")
)

// Root is an opened mock data directory. Names resolved through FS cannot
// escape Dir, symlinks included.
type Root struct {
	// Dir is the absolute directory path.
	Dir string

	// FS reads files inside Dir.
	FS fs.FS

	root *os.Root
}

// Close releases the directory handle.
func (r *Root) Close() error {
	if r.root == nil {
		return nil
	}
	return r.root.Close()
}

// ExecutableDir returns the directory of the running binary, with symlinks
// resolved. It falls back to the working directory.
func ExecutableDir() string {
	exe, err := os.Executable()
	if err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		return filepath.Dir(exe)
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

// RootPath joins a relative path onto baseDir. Absolute paths are returned
// cleaned.
func RootPath(path, baseDir string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(baseDir, path)
}

// ResolveRoot opens the mock data root for path.
func ResolveRoot(path, baseDir string) (*Root, error) {
	dir, err := filepath.Abs(RootPath(path, baseDir))
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRootMissing, dir)
		}
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrRootNotDir, dir)
	}

	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dir, err)
	}
	return &Root{Dir: dir, FS: root.FS(), root: root}, nil
}
