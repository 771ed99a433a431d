package virtual

import (
	"errors"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"slices"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/khaibq/my-website/content"
	"github.com/khaibq/my-website/search"
)

const testConfig = `
title = "Test Site"
tagline = "Testing is fun"
url = "https://example.com"

[i18n]
default_locale = "en"
locales = ["en", "vi"]

[docs]
edit_url = "https://github.com/khaibq/site/edit/main/"
show_last_update_time = true
show_last_update_author = true

[blog.feed]
types = ["rss", "atom"]
xslt = true

[search]
hashed = false

[navbar]
title = "Tester"
logo = { alt = "Logo", src = "img/logo.svg" }

[[navbar.items]]
type = "doc_sidebar"
sidebar_id = "tutorial"
label = "Tutorial"

[[navbar.items]]
to = "/blog"
label = "Blog"

[[navbar.items]]
type = "locale_dropdown"
position = "right"

[footer]
copyright = "Copyright © {year} Tester"
`

const testSidebars = `
tutorial = [
  "intro",
  { type = "category", label = "Basics", link = { type = "generated-index" }, items = ["basics/setup"] },
]
`

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func testSite() fstest.MapFS {
	mod := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	file := func(s string) *fstest.MapFile {
		return &fstest.MapFile{Data: []byte(s), ModTime: mod}
	}
	return fstest.MapFS{
		"site.toml":                 file(testConfig),
		"sidebars.toml":             file(testSidebars),
		"docs/intro.md":             file("+++\ntitle = \"Intro\"\n+++\nSee [setup](basics/setup.md).\n\n## Section\n\nSome words about the tutorial."),
		"docs/basics/setup.md":      file("# Setup\n\nBack to [the intro](../intro.md#section)."),
		"i18n/vi/docs/intro.md":     file("+++\ntitle = \"Giới thiệu\"\n+++\nXin chào. Xem [cài đặt](basics/setup.md)."),
		"blog/authors.toml":         file("[khaibq]\nname = \"Khai Bui\"\n"),
		"blog/2024-05-01-hello.md":  file("+++\ntitle = \"Hello\"\nauthors = [\"khaibq\"]\n+++\nFirst words.\n\n<!-- truncate -->\n\nMore words."),
		"blog/2024-06-01-second.md": file("+++\ntitle = \"Second\"\nauthors = [\"khaibq\"]\n+++\nShort.\n\n<!-- truncate -->\n\nEnd."),
		"static/img/logo.svg":       file("<svg xmlns=\"http://www.w3.org/2000/svg\"></svg>"),
		"static/.secret":            file("hidden"),
	}
}

type fixedUpdater struct{}

func (fixedUpdater) LastUpdate(string) (content.LastUpdate, error) {
	return content.LastUpdate{Author: "Khai Bui", Date: time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)}, nil
}

func newTestFS(t *testing.T, fsys fs.FS) *FS {
	t.Helper()
	vfs, err := New(fsys, Options{
		LastUpdater: fixedUpdater{},
		Now:         func() time.Time { return testNow },
		Logf:        t.Logf,
	})
	if err != nil {
		t.Fatal(err)
	}
	return vfs
}

func readString(t *testing.T, fsys fs.FS, name string) string {
	t.Helper()
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		t.Fatalf("Cannot read %q: %v", name, err)
	}
	return string(b)
}

func TestFS(t *testing.T) {
	const count = 10
	fileSys, err := New(os.DirFS("../example"), Options{Logf: t.Logf})
	if err != nil {
		t.Error(err)
		return
	}
	var wg sync.WaitGroup
	wg.Add(count)
	for i := 0; i < count; i++ {
		go func() {
			defer wg.Done()
			numEntries := 0
			fs.WalkDir(fileSys, ".", func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					t.Error(err)
					return nil
				}
				if path == "" {
					t.Error("Path is empty")
					return nil
				}
				numEntries++
				if !d.IsDir() {
					b, err := fs.ReadFile(fileSys, path)
					if err != nil {
						t.Errorf("Cannot read %q: %v", path, err)
						return nil
					}
					if len(b) == 0 {
						t.Errorf("File %q has no data", path)
					}
				} else {
					_, err := fs.ReadDir(fileSys, path)
					if err != nil {
						t.Errorf("Cannot readdir %q: %v", path, err)
					}
				}
				fi, err := fs.Stat(fileSys, path)
				if err != nil {
					t.Errorf("Cannot stat %q: %v", path, err)
					return nil
				}
				if !strings.HasSuffix(path, fi.Name()) {
					t.Errorf("%q should be part of %q", fi.Name(), path)
				}
				if !fi.IsDir() && fi.Size() == 0 {
					t.Errorf("Expected %q to have non-zero size", path)
				}
				// Embedded assets carry no time
				if fi.ModTime().IsZero() && !strings.HasPrefix(path, "assets/") && !strings.HasSuffix(path, ".xsl") {
					t.Errorf("Expected %q to have non-zero mod time", path)
				}
				return nil
			})
			t.Logf("saw %d entries", numEntries)
		}()
	}
	wg.Wait()
}

func TestRoutes(t *testing.T) {
	vfs := newTestFS(t, testSite())
	routes := make(map[string]bool)
	for _, r := range vfs.Routes() {
		routes[r] = true
	}
	expect := []string{
		"index.html",
		"404.html",
		"sitemap.xml",
		"search-index.json",
		"search/index.html",
		"docs/intro/index.html",
		"docs/basics/setup/index.html",
		"docs/category/basics/index.html",
		"blog/index.html",
		"blog/2024/05/01/hello/index.html",
		"blog/2024/06/01/second/index.html",
		"blog/tags/index.html",
		"blog/archive/index.html",
		"blog/rss.xml",
		"blog/rss.xsl",
		"blog/atom.xml",
		"blog/atom.xsl",
		"img/logo.svg",
		"assets/css/site.css",
		"assets/js/site.js",
		"vi/index.html",
		"vi/docs/intro/index.html",
		"vi/docs/basics/setup/index.html",
		"vi/blog/2024/05/01/hello/index.html",
		"vi/sitemap.xml",
	}
	for _, name := range expect {
		if !routes[name] {
			t.Errorf("Missing route %q", name)
		}
	}
	if routes[".secret"] {
		t.Error("Hidden static file should not be served")
	}
}

func TestHomePage(t *testing.T) {
	vfs := newTestFS(t, testSite())
	s := readString(t, vfs, "index.html")
	for _, want := range []string{
		"<title>Test Site</title>",
		`lang="en"`,
		`href="https://example.com/"`,
		"Testing is fun",
		"Get started",
		`href="/docs/intro-workshops"`,
		"Selective Workshops",
		"Copyright © 2025 Tester",
		`href="/vi/"`,
		`<link rel="alternate" hreflang="vi" href="/vi/">`,
		`<h2 class="features-title">Feature section with main topics</h2>`,
		"<strong>Learn more</strong>",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("Home page should contain %q", want)
		}
	}

	// Rendering is repeatable
	if again := readString(t, vfs, "index.html"); again != s {
		t.Error("Home page changed between reads")
	}
}

func TestHomePageTitle(t *testing.T) {
	for _, title := range []string{"First Title", "Second Title"} {
		fsys := testSite()
		cfg := strings.Replace(testConfig, `title = "Test Site"`, `title = "`+title+`"`, 1)
		fsys["site.toml"] = &fstest.MapFile{Data: []byte(cfg)}
		s := readString(t, newTestFS(t, fsys), "index.html")
		for _, want := range []string{
			"<title>" + title + "</title>",
			`<h1 class="hero-title">` + title + "</h1>",
		} {
			if !strings.Contains(s, want) {
				t.Errorf("Home page should contain %q", want)
			}
		}
	}
}

func TestDocPage(t *testing.T) {
	vfs := newTestFS(t, testSite())
	s := readString(t, vfs, "docs/intro/index.html")
	for _, want := range []string{
		"<title>Intro | Test Site</title>",
		`href="/docs/basics/setup/"`,
		`id="section"`,
		"https://github.com/khaibq/site/edit/main/docs/intro.md",
		"Last updated on February 3, 2025 by Khai Bui",
		`class="navbar-link active" href="/docs/intro/"`,
		"Next »",
		"On this page",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("Doc page should contain %q", want)
		}
	}

	s = readString(t, vfs, "docs/basics/setup/index.html")
	if strings.Count(s, "<h1") != 1 {
		t.Error("Doc with its own heading should have a single h1")
	}
	if !strings.Contains(s, `href="/docs/intro/#section"`) {
		t.Error("Relative Markdown link was not resolved")
	}
	if !strings.Contains(s, "Basics") {
		t.Error("Breadcrumb should name the category")
	}
}

func TestCategoryPage(t *testing.T) {
	vfs := newTestFS(t, testSite())
	s := readString(t, vfs, "docs/category/basics/index.html")
	if !strings.Contains(s, `<a class="card" href="/docs/basics/setup/">`) {
		t.Error("Category index should link to its docs")
	}
}

func TestTranslatedPages(t *testing.T) {
	vfs := newTestFS(t, testSite())
	s := readString(t, vfs, "vi/docs/intro/index.html")
	for _, want := range []string{`lang="vi"`, "Giới thiệu", "Xin chào.", "Sửa trang này"} {
		if !strings.Contains(s, want) {
			t.Errorf("Translated page should contain %q", want)
		}
	}
	if !strings.Contains(s, `href="/vi/docs/basics/setup/"`) {
		t.Error("Translations should link to untranslated docs of the same locale")
	}
	// Untranslated docs fall back to the default content under the locale path
	s = readString(t, vfs, "vi/docs/basics/setup/index.html")
	if !strings.Contains(s, `href="/vi/docs/intro/#section"`) {
		t.Error("Links of a locale should stay in the locale")
	}
}

func TestBlog(t *testing.T) {
	vfs := newTestFS(t, testSite())
	s := readString(t, vfs, "blog/index.html")
	if strings.Index(s, "Second") > strings.Index(s, "Hello") {
		t.Error("Newest post should come first")
	}
	if strings.Contains(s, "More words.") {
		t.Error("Blog list should only show summaries")
	}
	s = readString(t, vfs, "blog/2024/05/01/hello/index.html")
	for _, want := range []string{"More words.", "Khai Bui", "May 1, 2024", "Newer post"} {
		if !strings.Contains(s, want) {
			t.Errorf("Post page should contain %q", want)
		}
	}

	rss := readString(t, vfs, "blog/rss.xml")
	if !strings.Contains(rss, `<?xml-stylesheet type="text/xsl" href="rss.xsl"?>`) {
		t.Error("RSS feed should refer to its stylesheet")
	}
	if !strings.Contains(rss, "https://example.com/blog/2024/05/01/hello/") {
		t.Error("RSS feed should link to posts")
	}
	if atom := readString(t, vfs, "blog/atom.xml"); !strings.Contains(atom, "<feed") {
		t.Error("Atom feed is not an Atom document")
	}
}

func TestTagPermalinkSlashes(t *testing.T) {
	fsys := testSite()
	fsys["blog/tags.toml"] = &fstest.MapFile{Data: []byte("[site]\nlabel = \"Site\"\npermalink = \"/site\"\n")}
	fsys["blog/2024-05-01-hello.md"] = &fstest.MapFile{Data: []byte("+++\ntitle = \"Hello\"\nauthors = [\"khaibq\"]\ntags = [\"site\"]\n+++\nFirst words.\n\n<!-- truncate -->\n\nMore words.")}
	vfs := newTestFS(t, fsys)

	var names []string
	err := fs.WalkDir(vfs, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Name() == "" {
			t.Errorf("Entry with an empty name below %q", path.Dir(p))
			return fs.SkipDir
		}
		names = append(names, p)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Contains(names, "blog/tags/site/index.html") {
		t.Errorf("Expected the tag page at blog/tags/site/, got %v", names)
	}
	if s := readString(t, vfs, "blog/2024/05/01/hello/index.html"); !strings.Contains(s, `href="/blog/tags/site/"`) {
		t.Error("Post should link to the tag page")
	}
}

func TestInvalidRoute(t *testing.T) {
	fsys := testSite()
	fsys["blog/tags.toml"] = &fstest.MapFile{Data: []byte("[site]\npermalink = \"a//b\"\n")}
	fsys["blog/2024-05-01-hello.md"] = &fstest.MapFile{Data: []byte("+++\ntitle = \"Hello\"\nauthors = [\"khaibq\"]\ntags = [\"site\"]\n+++\nFirst.\n\n<!-- truncate -->\n\nMore.")}
	_, err := New(fsys, Options{LastUpdater: fixedUpdater{}, Logf: t.Logf})
	if err == nil || !strings.Contains(err.Error(), "invalid route") {
		t.Errorf("Expected an invalid route error, got %v", err)
	}
}

func TestSitemap(t *testing.T) {
	vfs := newTestFS(t, testSite())
	s := readString(t, vfs, "sitemap.xml")
	if !strings.Contains(s, "<loc>https://example.com/docs/intro/</loc>") {
		t.Error("Sitemap should list docs")
	}
	if strings.Contains(s, "search/") || strings.Contains(s, "404") || strings.Contains(s, "/vi/") {
		t.Error("Sitemap should only list indexable pages of its locale")
	}
	if s := readString(t, vfs, "vi/sitemap.xml"); !strings.Contains(s, "https://example.com/vi/docs/intro/") {
		t.Error("Locale sitemap should list locale pages")
	}
}

func TestSearch(t *testing.T) {
	vfs := newTestFS(t, testSite())
	idx := vfs.Search("en")
	if idx == nil {
		t.Fatal("No index for the default locale")
	}
	results := idx.Query("setup", search.Options{})
	if len(results) == 0 || results[0].Route != "/docs/basics/setup/" {
		t.Errorf("Unexpected results %+v", results)
	}
	if vfs.Search("fr") != nil {
		t.Error("Unknown locale should have no index")
	}
	if s := readString(t, vfs, "search-index.json"); !strings.Contains(s, `"route":"/docs/intro/"`) {
		t.Error("Served index should contain docs")
	}
}

func TestBrokenMarkdownLink(t *testing.T) {
	fsys := testSite()
	fsys["docs/intro.md"] = &fstest.MapFile{Data: []byte("See [nothing](missing.md).")}

	var warned bool
	_, err := New(fsys, Options{Logf: func(format string, args ...any) {
		warned = warned || strings.HasPrefix(format, "[WARNING]")
	}})
	if err != nil {
		t.Fatalf("Default policy should only warn: %v", err)
	}
	if !warned {
		t.Error("Expected a warning")
	}

	fsys["site.toml"] = &fstest.MapFile{Data: []byte("on_broken_markdown_links = \"throw\"\n" + testConfig)}
	_, err = New(fsys, Options{Logf: t.Logf})
	if err == nil || !strings.Contains(err.Error(), "missing.md") {
		t.Errorf("Expected broken link error, got %v", err)
	}
}

func TestBrokenNavLink(t *testing.T) {
	fsys := testSite()
	fsys["site.toml"] = &fstest.MapFile{Data: []byte(testConfig + "\n[[navbar.items]]\nto = \"/nowhere\"\nlabel = \"Lost\"\n")}
	_, err := New(fsys, Options{Logf: t.Logf})
	if err == nil || !strings.Contains(err.Error(), "/nowhere") {
		t.Errorf("Expected broken navbar link error, got %v", err)
	}
}

func TestOpenErrors(t *testing.T) {
	vfs := newTestFS(t, testSite())
	tests := []struct {
		name string
		err  error
	}{
		{"../site.toml", fs.ErrInvalid},
		{"/index.html", fs.ErrInvalid},
		{".secret", fs.ErrNotExist},
		{"docs/.hidden", fs.ErrNotExist},
		{"site.toml", fs.ErrNotExist},
		{"docs/intro.md", fs.ErrNotExist},
	}
	for _, test := range tests {
		_, err := vfs.Open(test.name)
		var pe *fs.PathError
		if !errors.As(err, &pe) || !errors.Is(err, test.err) {
			t.Errorf("Open(%q): expected %v, got %v", test.name, test.err, err)
		}
	}
}

func TestCustomTemplate(t *testing.T) {
	fsys := testSite()
	fsys["template/404.html"] = &fstest.MapFile{Data: []byte(`{{define "404"}}custom {{.T "Page Not Found"}}{{end}}`)}
	vfs := newTestFS(t, fsys)
	if s := readString(t, vfs, "vi/404.html"); s != "custom Không tìm thấy trang" {
		t.Errorf("Unexpected 404 page %q", s)
	}
}

func TestReload(t *testing.T) {
	fsys := testSite()
	vfs := newTestFS(t, fsys)
	fsys["site.toml"] = &fstest.MapFile{Data: []byte(strings.Replace(testConfig, "Test Site", "Changed Site", 1))}
	if err := vfs.Reload(); err != nil {
		t.Fatal(err)
	}
	if s := readString(t, vfs, "index.html"); !strings.Contains(s, "<title>Changed Site</title>") {
		t.Error("Reload did not pick up the new title")
	}

	fsys["site.toml"] = &fstest.MapFile{Data: []byte("title = ")}
	if err := vfs.Reload(); err == nil {
		t.Error("Expected error for a broken config")
	}
	if vfs.Config().Title != "Changed Site" {
		t.Error("A failed reload should keep the previous site")
	}
}

func TestFSTest(t *testing.T) {
	vfs := newTestFS(t, testSite())
	if err := fstest.TestFS(vfs, "index.html", "docs/intro/index.html", "img/logo.svg", "vi/index.html"); err != nil {
		t.Error(err)
	}
}

func TestReadDir(t *testing.T) {
	fileSys := newTestFS(t, testSite())
	entries, err := fs.ReadDir(fileSys, ".")
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, entry := range entries {
		inf, err := entry.Info()
		if err != nil {
			t.Error(err)
			continue
		}
		t.Logf("%s %10d  %s  %s", inf.Mode(), inf.Size(), inf.ModTime().Format(time.UnixDate), inf.Name())
		names = append(names, entry.Name())
	}
	if got := strings.Join(names, ","); got != "404.html,assets,blog,docs,img,index.html,search,search-index.json,sitemap.xml,vi" {
		t.Errorf("Unexpected root entries %s", got)
	}
}

func TestHttpRead(t *testing.T) {
	fileSys := newTestFS(t, testSite())
	hfs := http.FS(fileSys)

	f, err := hfs.Open("/docs/intro/index.html")
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		err := f.Close()
		if err != nil {
			t.Error(err)
		}
	}()

	b, err := io.ReadAll(f)
	if err != nil {
		t.Fatal(err)
	}
	fi, err := f.Stat()
	if err != nil {
		t.Fatal(err)
	}
	if fi.Size() != int64(len(b)) {
		t.Errorf("Stat size %d does not match %d bytes read", fi.Size(), len(b))
	}
	if !fi.ModTime().Equal(testNow) {
		t.Errorf("Expected mod time %v, got %v", testNow, fi.ModTime())
	}
}

func TestReadDirLoop(t *testing.T) {
	fileSys := newTestFS(t, testSite())

	f, err := fileSys.Open(".")
	if err != nil {
		t.Error(err)
		return
	}
	defer func() {
		err := f.Close()
		if err != nil {
			t.Error(err)
		}
	}()

	rdf, ok := f.(fs.ReadDirFile)
	if !ok {
		t.Error("Root is not a ReadDirFile")
		return
	}

	var dirs []fs.DirEntry
	for {
		dirs, err = rdf.ReadDir(2)
		if errors.Is(err, io.EOF) {
			if len(dirs) != 0 {
				t.Errorf("Expected empty directory at EOF")
			}
			break
		}
		if err != nil {
			t.Error(err)
			break
		}
		if len(dirs) == 0 {
			t.Errorf("Should not return empty directory if not EOF")
			break
		}
		if len(dirs) > 2 {
			t.Errorf("Returned more than 2 entries: %d", len(dirs))
		}
		t.Log(dirs)
	}
}

func TestNextPrev(t *testing.T) {
	ids := []string{"a", "b", "c"}
	if n, ok := next(ids, "a"); !ok || n != "b" {
		t.Errorf("next(a) = %q, %v", n, ok)
	}
	if _, ok := next(ids, "c"); ok {
		t.Error("c has no next")
	}
	if p, ok := prev(ids, "c"); !ok || p != "b" {
		t.Errorf("prev(c) = %q, %v", p, ok)
	}
	if _, ok := prev(ids, "x"); ok {
		t.Error("x is not in the list")
	}
}

func TestFileFor(t *testing.T) {
	tests := []struct{ in, out string }{
		{"/", "index.html"},
		{"", "index.html"},
		{"/docs/intro/", "docs/intro/index.html"},
		{"/blog/rss.xml", "blog/rss.xml"},
	}
	for _, test := range tests {
		if got := fileFor(test.in); got != test.out {
			t.Errorf("fileFor(%q) = %q, want %q", test.in, got, test.out)
		}
	}
}
