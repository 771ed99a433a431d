package virtual

import (
	"strings"
)

// containsSpecialFile reports whether name contains a path element starting with a period.
// The name is assumed to be a delimited by forward slashes, as guaranteed by the fs.FS interface.
func containsSpecialFile(name string) bool {
	parts := strings.Split(name, "/")
	for _, part := range parts {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

// fileFor converts a site path like "/docs/intro/" into the file that serves it,
// "docs/intro/index.html".
func fileFor(p string) string {
	p = strings.TrimPrefix(p, "/")
	if p == "" || strings.HasSuffix(p, "/") {
		return p + "index.html"
	}
	return p
}

// next returns the following item in the list.
func next[T comparable](list []T, current T) (T, bool) {
	var zero T
	for i := range list {
		if list[i] == current {
			if i < len(list)-1 {
				return list[i+1], true
			}
			return zero, false
		}
	}
	return zero, false
}

// prev returns the previous item in the list.
func prev[T comparable](list []T, current T) (T, bool) {
	var zero T
	for i := range list {
		if list[i] == current {
			if i > 0 {
				return list[i-1], true
			}
			return zero, false
		}
	}
	return zero, false
}
