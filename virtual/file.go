package virtual

import (
	"bytes"
	"io/fs"
	"time"
)

/*
Types of virtual files:

	Directory   built from the route table
	Rendered    produced by a template, a feed or the search index
	Static      opened from the underlying file system as-is
*/

// renderedFile is a file whose data was produced in memory.
type renderedFile struct {
	*bytes.Reader

	info fileInfo
}

// Stat returns information about the file.
func (f *renderedFile) Stat() (fs.FileInfo, error) {
	return f.info, nil
}

// Close closes the file. Rendered files are in memory, so this function does nothing.
func (f *renderedFile) Close() error {
	return nil
}

func newRenderedFile(name string, b []byte, modTime time.Time) *renderedFile {
	return &renderedFile{
		Reader: bytes.NewReader(b),
		info: fileInfo{
			name:    name,
			size:    int64(len(b)),
			modTime: modTime,
		},
	}
}

// fileInfo holds the metadata about a virtual file or directory.
type fileInfo struct {
	name    string
	size    int64
	modTime time.Time
	dir     bool
}

// Name returns the base name of the file.
func (fi fileInfo) Name() string { return fi.name }

// Size reports the length of the rendered data.
func (fi fileInfo) Size() int64 { return fi.size }

// Mode returns read only permissions, with the directory bit for folders.
func (fi fileInfo) Mode() fs.FileMode {
	if fi.dir {
		return fs.ModeDir | 0555
	}
	return 0444
}

// ModTime is the time the site was loaded, or the mod time of a static file.
func (fi fileInfo) ModTime() time.Time { return fi.modTime }

// IsDir reports whether the file is a folder.
func (fi fileInfo) IsDir() bool { return fi.dir }

// Sys returns nil.
func (fi fileInfo) Sys() any { return nil }

// dirEntry is a lightweight directory entry. Info is computed when asked for,
// because the size of a page is only known once it is rendered.
type dirEntry struct {
	vfs  *FS
	path string
	name string
	dir  bool
}

// Name returns the base name of the entry.
func (de dirEntry) Name() string { return de.name }

// IsDir reports whether the entry is a folder.
func (de dirEntry) IsDir() bool { return de.dir }

// Type returns the type bits for the entry.
func (de dirEntry) Type() fs.FileMode {
	if de.dir {
		return fs.ModeDir
	}
	return 0
}

// Info returns the FileInfo for the file or subdirectory described by the entry.
func (de dirEntry) Info() (fs.FileInfo, error) {
	return fs.Stat(de.vfs, de.path)
}

func (de dirEntry) String() string {
	return fs.FormatDirEntry(de)
}
