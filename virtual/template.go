package virtual

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"time"
)

//go:embed templates/*.html
var defaultTemplates embed.FS

//go:embed assets
var assets embed.FS

// loadTemplates parses the built-in templates, then the ones in the "template"
// folder of the site, which replace built-in templates of the same name.
func (vfs *FS) loadTemplates(st *state) (*template.Template, error) {
	funcMap := template.FuncMap{
		"url":        st.cfg.Path,
		"year":       func() int { return st.loaded.Year() },
		"join":       path.Join,
		"trimsuffix": strings.TrimSuffix,
		"trimprefix": strings.TrimPrefix,
		"date":       formatDate,
		"isodate":    isoDate,
		"safehtml":   func(s string) template.HTML { return template.HTML(s) },
	}
	tpl, err := template.New("site").Funcs(funcMap).ParseFS(defaultTemplates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("loadTemplates: %w", err)
	}
	// Check if there are custom templates
	custom, err := fs.Glob(vfs.fs, "template/*.html")
	if err != nil {
		return nil, fmt.Errorf("loadTemplates: %w", err)
	}
	if len(custom) > 0 {
		tpl, err = tpl.ParseFS(vfs.fs, "template/*.html")
		if err != nil {
			return nil, fmt.Errorf("loadTemplates: %w", err)
		}
	}
	return tpl, nil
}

// LocaleURL prefixes an internal path with the base URL and the locale of the page.
func (p *Page) LocaleURL(s string) string {
	return p.Site.Path(p.Locale.PathPrefix() + "/" + strings.TrimPrefix(s, "/"))
}

// addAssets registers the stylesheet and script used by the built-in templates.
func (st *state) addAssets() {
	st.addFile("assets/css/site.css", &route{static: "assets/site.css", fsys: assets})
	st.addFile("assets/js/site.js", &route{static: "assets/site.js", fsys: assets})
}

func formatDate(t time.Time) string {
	return t.Format("January 2, 2006")
}

func isoDate(t time.Time) string {
	return t.Format(time.DateOnly)
}
