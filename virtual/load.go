package virtual

import (
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/khaibq/my-website/content"
	"github.com/khaibq/my-website/search"
	"github.com/khaibq/my-website/site"
	"golang.org/x/text/message"
)

// route is a single file of the site.
type route struct {
	render func() ([]byte, error) // Produces rendered files
	static string                 // Path in fsys of files served as-is
	fsys   fs.FS
	page   bool        // Listed in the sitemap
	locale *localeSite // Locale of pages, feeds and indexes
}

// state is everything loaded from the site folder. It is never modified once
// load returns; Reload swaps in a new one.
type state struct {
	cfg      *site.Config
	sidebars site.Sidebars
	locales  []*localeSite
	tpl      *template.Template
	files    map[string]*route
	tree     tree
	loaded   time.Time
	invalid  []string // Route names addFile refused
}

// localeSite is the content of the site in one locale.
type localeSite struct {
	Locale site.Locale

	docs       content.Docs
	translated map[string]bool                // Doc IDs with a translated source
	rendered   map[string]content.Rendered    // Doc ID -> rendered body
	blog       *content.Blog                  // nil when there is no blog
	posts      map[*content.Post]renderedPost // Rendered summary and body
	links      map[string]string              // Source path -> site path, for Markdown links
	printer    *message.Printer

	Index     *search.Index
	indexName string
}

type renderedPost struct {
	summary content.Rendered
	body    content.Rendered
}

// addFile registers a route. Names that are not valid fs paths are kept out
// of the route table and make load fail.
func (st *state) addFile(name string, r *route) {
	if !fs.ValidPath(name) || name == "." {
		st.invalid = append(st.invalid, name)
		return
	}
	st.files[name] = r
}

// hasRoute reports whether site path p, like "/blog" or "/docs/intro/", is served.
func (st *state) hasRoute(p string) bool {
	p, _ = content.SplitLink(p)
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	candidates := []string{fileFor(p), fileFor(strings.TrimSuffix(p, "/") + "/")}
	for _, c := range candidates {
		if _, ok := st.files[c]; ok {
			return true
		}
	}
	return false
}

// load reads the whole site folder and builds the route table.
func (vfs *FS) load() (*state, error) {
	cfg, err := site.Load(vfs.fs)
	if err != nil {
		return nil, err
	}
	sidebars, err := site.LoadSidebars(vfs.fs, cfg.Docs.SidebarPath)
	if errors.Is(err, fs.ErrNotExist) {
		sidebars = site.Sidebars{}
	} else if err != nil {
		return nil, err
	}
	st := &state{
		cfg:      cfg,
		sidebars: sidebars,
		files:    make(map[string]*route),
		tree:     make(tree),
		loaded:   vfs.opts.Now(),
	}
	st.tpl, err = vfs.loadTemplates(st)
	if err != nil {
		return nil, err
	}

	baseDocs, err := content.LoadDocs(vfs.fs, cfg.Docs.Path)
	if err != nil {
		return nil, err
	}
	if err = sidebars.Validate(baseDocs.Has); err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}

	var problems []error
	for _, loc := range cfg.Locales() {
		ls, err := vfs.loadLocale(st, loc, baseDocs, &problems)
		if err != nil {
			return nil, err
		}
		st.locales = append(st.locales, ls)
	}
	for _, ls := range st.locales {
		if err := vfs.addRoutes(st, ls); err != nil {
			return nil, err
		}
	}
	if err = st.addStatic(vfs.fs); err != nil {
		return nil, err
	}
	st.addAssets()
	for _, name := range st.invalid {
		problems = append(problems, fmt.Errorf("load: invalid route %q", name))
	}

	err = cfg.ValidateLinks(sidebars, baseDocs.Has, st.hasRoute)
	if err = cfg.OnBrokenLinks.Report(vfs.opts.Logf, err); err != nil {
		problems = append(problems, err)
	}
	if err = errors.Join(problems...); err != nil {
		return nil, err
	}
	for name := range st.files {
		st.tree.add(name)
	}
	if len(st.tree) == 0 {
		st.tree["."] = map[string]bool{}
	}
	return st, nil
}

// loadLocale loads and renders the content of one locale. Translated docs
// replace default ones with the same ID; the blog of a locale comes from its
// i18n folder when there is one.
func (vfs *FS) loadLocale(st *state, loc site.Locale, baseDocs content.Docs, problems *[]error) (*localeSite, error) {
	cfg := st.cfg
	ls := &localeSite{
		Locale:     loc,
		docs:       make(content.Docs, len(baseDocs)),
		translated: make(map[string]bool),
		rendered:   make(map[string]content.Rendered),
		posts:      make(map[*content.Post]renderedPost),
		links:      make(map[string]string),
		printer:    newPrinter(loc.Code),
	}
	for id, d := range baseDocs {
		ls.docs[id] = d
	}
	if !loc.Default {
		translated, err := content.LoadDocs(vfs.fs, path.Join("i18n", loc.Code, cfg.Docs.Path))
		if err != nil {
			return nil, err
		}
		for id, d := range translated {
			if !baseDocs.Has(id) {
				vfs.opts.Logf("loadLocale: %s has no default locale source and is ignored", d.Source)
				continue
			}
			ls.docs[id] = d
			ls.translated[id] = true
		}
	}

	blogDir := cfg.Blog.Path
	if !loc.Default {
		if fi, err := fs.Stat(vfs.fs, path.Join("i18n", loc.Code, cfg.Blog.Path)); err == nil && fi.IsDir() {
			blogDir = path.Join("i18n", loc.Code, cfg.Blog.Path)
		}
	}
	blog, err := content.LoadBlog(vfs.fs, blogDir, cfg.Blog, st.loaded, vfs.opts.Logf)
	if err != nil {
		return nil, err
	}
	if len(blog.Posts) > 0 {
		ls.blog = blog
	}

	// Every source, translated or not, links to the page of this locale.
	// Translations may link to docs that only exist in the default locale.
	localDocs := path.Join("i18n", loc.Code, cfg.Docs.Path)
	for _, d := range ls.docs {
		ls.links[d.Source] = ls.docURL(cfg, d)
		if b := baseDocs[d.ID]; b != nil {
			ls.links[b.Source] = ls.docURL(cfg, d)
			if rel, ok := strings.CutPrefix(b.Source, cfg.Docs.Path+"/"); ok && !loc.Default {
				ls.links[path.Join(localDocs, rel)] = ls.docURL(cfg, d)
			}
		}
	}
	if ls.blog != nil {
		for _, p := range ls.blog.Posts {
			ls.links[p.Source] = ls.postURL(cfg, p)
		}
	}

	// Render Markdown now, so broken links are found while loading
	for _, id := range ls.docs.IDs() {
		d := ls.docs[id]
		r := ls.render(cfg, d.Source, d.Body, vfs.opts.Logf, problems)
		ls.rendered[id] = r
	}
	if ls.blog != nil {
		for _, p := range ls.blog.Posts {
			ls.posts[p] = renderedPost{
				summary: ls.render(cfg, p.Source, p.Summary, nil, nil),
				body:    ls.render(cfg, p.Source, p.Body, vfs.opts.Logf, problems),
			}
		}
	}
	return ls, nil
}

// render converts Markdown from source into HTML and reports problems.
// A nil logf skips reporting, for content rendered twice.
func (ls *localeSite) render(cfg *site.Config, source string, md []byte, logf func(string, ...any), problems *[]error) content.Rendered {
	dir := path.Dir(source)
	r := content.RenderMarkdown(md, content.MarkdownOptions{
		Prism: cfg.Prism,
		ResolveLink: func(dest string) (string, bool) {
			p, fragment := content.SplitLink(dest)
			if i := strings.IndexByte(p, '?'); i >= 0 {
				p = p[:i]
			}
			target, ok := ls.links[path.Join(dir, p)]
			if !ok {
				return "", false
			}
			return cfg.Path(target) + fragment, true
		},
	})
	if logf == nil {
		return r
	}
	for _, l := range r.BrokenLinks {
		err := fmt.Errorf("Markdown link %q in %s cannot be resolved", l, source)
		if err = cfg.OnBrokenMarkdownLinks.Report(logf, err); err != nil {
			*problems = append(*problems, err)
		}
	}
	for _, lang := range r.UnknownLanguages {
		logf("[WARNING] %s: code block language %q is not highlighted; add it to prism.additional_languages", source, lang)
	}
	return r
}

// sitePath prefixes p with the locale. The result has no base URL.
func (ls *localeSite) sitePath(p string) string {
	return ls.Locale.PathPrefix() + p
}

func (ls *localeSite) docURL(cfg *site.Config, d *content.Doc) string {
	return ls.sitePath("/" + cfg.Docs.RouteBasePath + "/" + d.Route() + "/")
}

func (ls *localeSite) postURL(cfg *site.Config, p *content.Post) string {
	return ls.sitePath("/" + cfg.Blog.RouteBasePath + "/" + p.Slug + "/")
}

func (ls *localeSite) blogURL(cfg *site.Config, rel string) string {
	return ls.sitePath("/" + cfg.Blog.RouteBasePath + "/" + rel)
}

// lastUpdate works out the last update of a doc: front matter wins, then
// the LastUpdater, then nothing.
func (vfs *FS) lastUpdate(d *content.Doc) content.LastUpdate {
	var lu content.LastUpdate
	if got, err := vfs.opts.LastUpdater.LastUpdate(d.Source); err == nil {
		lu = got
	}
	if fm := d.Front.LastUpdate; fm != nil {
		if fm.Author != "" {
			lu.Author = fm.Author
		}
		if !fm.Date.IsZero() {
			lu.Date = fm.Date
		}
	}
	return lu
}
