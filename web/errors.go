package web

import (
	"io/fs"
	"net/http"
	"strings"
)

// ErrorHandler captures 404 and 500 errors and serves 404.html or 500.html from the file system.
// A page in the first folder of the request path, like /vi/404.html for /vi/docs/missing/,
// wins over the one at the root, so each locale gets its own error pages.
func ErrorHandler(h http.Handler, fsys fs.FS) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writer := &responseWriter{
			ResponseWriter: w,
			fsys:           fsys,
			path:           r.URL.Path,
		}
		h.ServeHTTP(writer, r)
	})
}

type responseWriter struct {
	http.ResponseWriter
	fsys    fs.FS
	path    string
	noWrite bool
	err     error
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if w.noWrite {
		return len(b), w.err
	}
	return w.ResponseWriter.Write(b)
}

func (w *responseWriter) WriteHeader(statusCode int) {
	var file string
	if statusCode == http.StatusNotFound {
		file = "404.html"
	} else if statusCode == http.StatusInternalServerError {
		file = "500.html"
	}
	if file != "" {
		// special processing of response
		b, err := errorPage(w.fsys, w.path, file)
		if err == nil {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Header().Del("X-Content-Type-Options")
			w.Header().Del("Content-Length")
			w.ResponseWriter.WriteHeader(statusCode)
			w.noWrite = true
			_, w.err = w.ResponseWriter.Write(b)
			return
		}
	}
	// normal processing
	w.ResponseWriter.WriteHeader(statusCode)
}

// errorPage reads file from the first folder of urlPath, or else from the root.
func errorPage(fsys fs.FS, urlPath, file string) ([]byte, error) {
	p := strings.TrimPrefix(urlPath, "/")
	if i := strings.IndexByte(p, '/'); i > 0 {
		if b, err := fs.ReadFile(fsys, p[:i]+"/"+file); err == nil {
			return b, nil
		}
	}
	return fs.ReadFile(fsys, file)
}
