package virtual

import (
	"errors"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// virtualDir is a folder of the route table. It implements fs.ReadDirFile.
type virtualDir struct {
	info    fileInfo
	path    string
	entries []fs.DirEntry
	offset  int
}

// Stat returns information about the folder.
func (d *virtualDir) Stat() (fs.FileInfo, error) {
	return d.info, nil
}

// Read always fails, because folders have no data.
func (d *virtualDir) Read([]byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.path, Err: errors.New("is a directory")}
}

// Close closes the folder.
func (d *virtualDir) Close() error {
	return nil
}

// ReadDir reads the contents of the directory and returns a slice of up to
// n DirEntry values in directory order. Subsequent calls on the same file
// will yield further DirEntry values.
//
// If n > 0, ReadDir returns at most n DirEntry structures. In this case,
// if ReadDir returns an empty slice, it will return a non-nil error
// explaining why. At the end of a directory, the error is io.EOF.
//
// If n <= 0, ReadDir returns all the DirEntry values from the directory in
// a single slice. In this case, if ReadDir succeeds (reads all the way to
// the end of the directory), it returns the slice and a nil error.
func (d *virtualDir) ReadDir(n int) ([]fs.DirEntry, error) {
	remaining := d.entries[d.offset:]
	if n <= 0 {
		d.offset = len(d.entries)
		return remaining, nil
	}
	if len(remaining) == 0 {
		return nil, io.EOF
	}
	if n > len(remaining) {
		n = len(remaining)
	}
	d.offset += n
	return remaining[:n], nil
}

// tree records the folders implied by a set of file paths.
type tree map[string]map[string]bool // folder -> child name -> is folder

// add registers the file p and every folder above it.
func (t tree) add(p string) {
	isDir := false
	for {
		dir, name := path.Split(p)
		dir = strings.TrimSuffix(dir, "/")
		if dir == "" {
			dir = "."
		}
		if t[dir] == nil {
			t[dir] = make(map[string]bool)
		}
		t[dir][name] = isDir
		if dir == "." {
			return
		}
		p, isDir = dir, true
	}
}

// entries returns the sorted entries of folder p.
func (t tree) entries(vfs *FS, p string) []fs.DirEntry {
	children := t[p]
	names := make([]string, 0, len(children))
	for name := range children {
		names = append(names, name)
	}
	sort.Strings(names)
	entries := make([]fs.DirEntry, 0, len(names))
	for _, name := range names {
		child := name
		if p != "." {
			child = p + "/" + name
		}
		entries = append(entries, dirEntry{vfs: vfs, path: child, name: name, dir: children[name]})
	}
	return entries
}
