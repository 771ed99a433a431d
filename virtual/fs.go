/*
Package virtual implements a "virtual" view over a site folder that presents the finished web
site as a fs.FS. Nothing is written to disk: every page is rendered from the site's configuration,
sidebars, Markdown content and templates when it is opened, which makes the same FS suitable for
serving over HTTP and for exporting a static copy.

Site Folder

The site folder holds:

	site.toml          site configuration, see package site
	sidebars.toml      sidebar tree (name set by docs.sidebar_path)
	docs/              documentation pages in Markdown
	blog/              blog posts, plus authors.toml and tags.toml
	i18n/<locale>/     translated docs and blog posts for other locales
	static/            files served as-is from the root of the site
	template/          optional HTML templates that replace the built-in ones

Hidden files and folders (those starting with ".") are ignored.

Routes

For each locale, with non-default locales under a "<locale>/" folder, the FS exposes:

	index.html                          home page with the hero and features
	docs/<id>/index.html                a documentation page
	docs/category/<slug>/index.html     a generated index of a sidebar category
	blog/index.html                     newest posts, with further pages under blog/page/<n>/
	blog/<slug>/index.html              a blog post
	blog/tags/index.html                all tags, and blog/tags/<tag>/index.html per tag
	blog/archive/index.html             every post by year
	blog/rss.xml, blog/atom.xml         feeds, with rss.xsl and atom.xsl when xslt is on
	search/index.html                   search page
	search-index.json                   search index, with a content hash in the name when hashed
	sitemap.xml                         canonical URLs of every page
	404.html                            page served for missing files

Files below static/ appear at the root, so "static/img/logo.svg" is served as "img/logo.svg".

Templates

Pages are rendered with the html/template package. Built-in templates are embedded in the
program; any "template/*.html" file in the site folder is parsed after them, so defining a
template with the same name replaces the built-in one. Each page template is named after its
kind ("home", "doc", "category", "blog", "post", "tags", "tag", "archive", "search", "404")
and receives a *Page. The hero and features of the home page are the "hero" and "features"
templates, which receive a HomeData. Page.LocaleURL prefixes a path with the base URL and the
locale of the page, and Page.T translates built-in text. Templates can use these helper functions:

	url(path string) string
		Prefix an internal path with the base URL
	year() int
		Year of the build clock
	join(parts ...string) string
		The same as path.Join
	trimsuffix(string, string) string
		The same as strings.TrimSuffix
	trimprefix(string, string) string
		The same as strings.TrimPrefix
	date(time.Time) string
		Format a date like "May 1, 2024"
	isodate(time.Time) string
		Format a date like "2024-05-01"
	safehtml(string) template.HTML
		Mark trusted configuration text, like the announcement bar, as HTML

Errors

Problems found while loading content go through the policies of the site configuration: a
"throw" policy makes New and Reload fail, the others are logged.
*/
package virtual

import (
	"errors"
	"io/fs"
	"log"
	"path"
	"sort"
	"sync"
	"time"

	"github.com/khaibq/my-website/content"
	"github.com/khaibq/my-website/search"
	"github.com/khaibq/my-website/site"
)

// Options customize New.
type Options struct {
	// LastUpdater finds the last change of a source file. When nil,
	// file modification times are used.
	LastUpdater content.LastUpdater
	// Now is the build clock. When nil, time.Now is used.
	Now func() time.Time
	// Logf receives warnings. When nil, log.Printf is used.
	Logf func(format string, args ...any)
}

// FS provides a virtual view of a site folder as the rendered web site.
type FS struct {
	fs   fs.FS
	opts Options

	mu sync.RWMutex // guards st
	st *state
}

// New returns a new FS that presents the site stored in innerFS.
func New(innerFS fs.FS, opts Options) (*FS, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logf == nil {
		opts.Logf = log.Printf
	}
	if opts.LastUpdater == nil {
		opts.LastUpdater = content.ModTimeUpdater{FS: innerFS}
	}
	vfs := &FS{
		fs:   innerFS,
		opts: opts,
	}
	st, err := vfs.load()
	if err != nil {
		return nil, err
	}
	vfs.st = st
	return vfs, nil
}

// Reload reads the site folder again. On error the previous state is kept.
func (vfs *FS) Reload() error {
	st, err := vfs.load()
	if err != nil {
		return err
	}
	vfs.mu.Lock()
	defer vfs.mu.Unlock()
	vfs.st = st
	return nil
}

// state returns the current state.
func (vfs *FS) state() *state {
	vfs.mu.RLock()
	defer vfs.mu.RUnlock()
	return vfs.st
}

// Config returns the site configuration.
func (vfs *FS) Config() *site.Config {
	return vfs.state().cfg
}

// Sidebars returns the sidebar tree.
func (vfs *FS) Sidebars() site.Sidebars {
	return vfs.state().sidebars
}

// Routes returns the paths of every file in sorted order.
func (vfs *FS) Routes() []string {
	st := vfs.state()
	routes := make([]string, 0, len(st.files))
	for name := range st.files {
		routes = append(routes, name)
	}
	sort.Strings(routes)
	return routes
}

// Search returns the search index of the given locale, or nil if there is no such locale.
func (vfs *FS) Search(locale string) *search.Index {
	for _, ls := range vfs.state().locales {
		if ls.Locale.Code == locale {
			return ls.Index
		}
	}
	return nil
}

// Open opens the named file.
//
// When Open returns an error, it should be of type *fs.PathError
// with the Op field set to "open", the Path field set to name,
// and the Err field describing the problem.
//
// Open should reject attempts to open names that do not satisfy
// fs.ValidPath(name), returning a *PathError with Err set to
// ErrInvalid or ErrNotExist.
func (vfs *FS) Open(name string) (fs.File, error) {
	// Make sure the path is valid per fs rules
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	// Don't show hidden files
	if name != "." && containsSpecialFile(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}

	vfs.mu.RLock()
	defer vfs.mu.RUnlock()
	st := vfs.st

	// Directories come from the route table
	if _, ok := st.tree[name]; ok {
		return &virtualDir{
			info:    fileInfo{name: path.Base(name), modTime: st.loaded, dir: true},
			path:    name,
			entries: st.tree.entries(vfs, name),
		}, nil
	}
	r, ok := st.files[name]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	if r.static != "" {
		f, err := r.fsys.Open(r.static)
		if err != nil {
			var pe *fs.PathError
			if errors.As(err, &pe) {
				err = pe.Err
			}
			return nil, &fs.PathError{Op: "open", Path: name, Err: err}
		}
		return f, nil
	}
	b, err := r.render()
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	return newRenderedFile(path.Base(name), b, st.loaded), nil
}
