/*
Package content loads the Markdown sources of the site: documentation pages under the docs
folder, their translations under i18n/<locale>/docs, and blog posts under the blog folder.
Sources use TOML front matter delimited by "+++" lines:

	+++
	title = "Get started"
	sidebar_label = "Start here"
	tags = ["aws"]
	+++
	Some *Markdown*.

Rendering Markdown into HTML is done by RenderMarkdown, which also rewrites links between
Markdown files, applies code block magic comments and collects headings for navigation and
search.
*/
package content

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DocFrontMatter holds data scraped from the top of a doc.
type DocFrontMatter struct {
	Title        string      `toml:"title"`
	SidebarLabel string      `toml:"sidebar_label"`
	Slug         string      `toml:"slug"`
	Description  string      `toml:"description"`
	Tags         []string    `toml:"tags"`
	Draft        bool        `toml:"draft"`
	HideTitle    bool        `toml:"hide_title"`
	LastUpdate   *LastUpdate `toml:"last_update"`
}

// Doc is a single documentation page.
type Doc struct {
	ID      string // Path below the docs folder without ".md"
	Source  string // Path of the Markdown file in the site file system
	Title   string
	Front   DocFrontMatter
	Body    []byte // Markdown without front matter
	ModTime time.Time
}

// Route returns the path of the doc below the docs route, like "trading-bot/get-started".
func (d *Doc) Route() string {
	if s := strings.Trim(d.Front.Slug, "/"); s != "" {
		return s
	}
	return d.ID
}

// Label returns the text to show for the doc in a sidebar.
func (d *Doc) Label() string {
	if d.Front.SidebarLabel != "" {
		return d.Front.SidebarLabel
	}
	return d.Title
}

// Docs maps doc IDs to docs.
type Docs map[string]*Doc

// Has reports whether a doc with the given ID exists.
func (d Docs) Has(id string) bool {
	_, ok := d[id]
	return ok
}

// IDs returns the doc IDs in sorted order.
func (d Docs) IDs() []string {
	ids := make([]string, 0, len(d))
	for id := range d {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// LoadDocs reads every Markdown file below dir. A missing dir yields no docs.
// Drafts are skipped.
func LoadDocs(fsys fs.FS, dir string) (Docs, error) {
	docs := make(Docs)
	err := fs.WalkDir(fsys, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() {
			if p != dir && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if path.Ext(p) != ".md" || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		doc, err := readDoc(fsys, dir, p)
		if err != nil {
			return err
		}
		if !doc.Front.Draft {
			docs[doc.ID] = doc
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("LoadDocs: %w", err)
	}
	return docs, nil
}

func readDoc(fsys fs.FS, dir, p string) (*Doc, error) {
	b, err := fs.ReadFile(fsys, p)
	if err != nil {
		return nil, err
	}
	doc := &Doc{
		ID:     strings.TrimSuffix(strings.TrimPrefix(p, dir+"/"), ".md"),
		Source: p,
	}
	if fi, err := fs.Stat(fsys, p); err == nil {
		doc.ModTime = fi.ModTime()
	}
	doc.Body, err = parseFrontMatter(p, b, &doc.Front)
	if err != nil {
		return nil, err
	}
	doc.Title = doc.Front.Title
	if doc.Title == "" {
		doc.Title = firstHeading(doc.Body)
	}
	if doc.Title == "" {
		doc.Title = titleFromName(path.Base(doc.ID))
	}
	return doc, nil
}

// firstHeading returns the text of the first level one ATX heading outside of
// fenced code.
func firstHeading(md []byte) string {
	var fenced bool
	sc := bufio.NewScanner(bytes.NewReader(md))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "```") || strings.HasPrefix(line, "~~~") {
			fenced = !fenced
			continue
		}
		if !fenced && strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimRight(line[2:], "#"))
		}
	}
	return ""
}

// stripFirstHeading removes a level one heading when it is the first line of md.
func stripFirstHeading(md []byte) []byte {
	trimmed := bytes.TrimLeft(md, " \t\r\n")
	if !bytes.HasPrefix(trimmed, []byte("# ")) {
		return md
	}
	if i := bytes.IndexByte(trimmed, '\n'); i >= 0 {
		return bytes.TrimLeft(trimmed[i+1:], "\r\n")
	}
	return nil
}

// titleFromName turns a file name like "get-started" into "Get Started".
func titleFromName(name string) string {
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	return cases.Title(language.English).String(name)
}

// EditURL joins the edit URL template with a repository relative path.
// It returns "" when no edit URL is configured.
func EditURL(base, source string) string {
	if base == "" {
		return ""
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(source, "/")
}
