package virtual

import (
	"bytes"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/khaibq/my-website/content"
	"github.com/khaibq/my-website/search"
	"github.com/khaibq/my-website/site"
	"golang.org/x/text/language"
)

// addPage registers an HTML page. build runs each time the page is opened.
func (st *state) addPage(name string, ls *localeSite, listed bool, build func() *Page) {
	st.addFile(name, &route{
		page:   listed,
		locale: ls,
		render: func() ([]byte, error) {
			return st.execute(build())
		},
	})
}

// execute renders a page with the template named after its kind.
func (st *state) execute(p *Page) ([]byte, error) {
	var buf bytes.Buffer
	if err := st.tpl.ExecuteTemplate(&buf, p.Kind, p); err != nil {
		return nil, fmt.Errorf("execute %s: %w", p.Kind, err)
	}
	return buf.Bytes(), nil
}

// addRoutes registers every file of a locale.
func (vfs *FS) addRoutes(st *state, ls *localeSite) error {
	cfg := st.cfg

	// The search index comes first, since every page refers to it
	if err := vfs.buildIndex(st, ls); err != nil {
		return err
	}

	home := ls.sitePath("/")
	st.addPage(fileFor(home), ls, true, func() *Page {
		p := st.newPage(ls, "home", "", home)
		p.Home = NewHomeData(cfg, ls.Locale.PathPrefix())
		return p
	})

	for _, id := range ls.docs.IDs() {
		d := ls.docs[id]
		st.addPage(fileFor(ls.docURL(cfg, d)), ls, true, func() *Page {
			return vfs.docPage(st, ls, d)
		})
	}

	for _, sb := range st.sidebars.IDs() {
		eachCategory(st.sidebars[sb], nil, func(item site.SidebarItem, trail []string) {
			if item.Link == nil || item.Link.Type != site.GeneratedIndex {
				return
			}
			u := st.categoryURL(ls, item)
			st.addPage(fileFor(u), ls, true, func() *Page {
				return st.categoryPage(ls, sb, item, trail, u)
			})
		})
	}

	if ls.blog != nil {
		if err := vfs.addBlog(st, ls); err != nil {
			return err
		}
	}

	searchPage := ls.sitePath("/search/")
	st.addPage(fileFor(searchPage), ls, false, func() *Page {
		p := st.newPage(ls, "search", ls.printer.Sprintf("Search"), searchPage)
		p.NoIndex = true
		return p
	})
	notFound := ls.sitePath("/404.html")
	st.addPage(fileFor(notFound), ls, false, func() *Page {
		p := st.newPage(ls, "404", ls.printer.Sprintf("Page Not Found"), notFound)
		p.NoIndex = true
		return p
	})
	st.addFile(fileFor(ls.sitePath("/sitemap.xml")), &route{
		locale: ls,
		render: func() ([]byte, error) { return st.sitemap(ls) },
	})
	return nil
}

// eachCategory visits the categories of a sidebar with the labels of their parents.
func eachCategory(items []site.SidebarItem, trail []string, fn func(site.SidebarItem, []string)) {
	for _, item := range items {
		if item.Type != site.ItemCategory {
			continue
		}
		fn(item, trail)
		eachCategory(item.Items, append(trail[:len(trail):len(trail)], item.Label), fn)
	}
}

// docPage builds the page of a doc.
func (vfs *FS) docPage(st *state, ls *localeSite, d *content.Doc) *Page {
	cfg := st.cfg
	u := ls.docURL(cfg, d)
	r := ls.rendered[d.ID]
	p := st.newPage(ls, "doc", d.Title, u)
	if d.Front.Description != "" {
		p.Description = d.Front.Description
	}
	data := &DocData{
		ID:        d.ID,
		Title:     d.Title,
		HideTitle: d.Front.HideTitle || r.Title != "",
		Content:   r.HTML,
		Headings:  r.Headings,
		Tags:      d.Front.Tags,
	}
	if sb, trail, ok := st.sidebars.Find(d.ID); ok {
		p.Sidebar = st.sidebar(ls, sb, u)
		data.Breadcrumb = trail
		ids := st.sidebars.Docs(sb)
		if id, ok := prev(ids, d.ID); ok {
			data.Prev = st.docLink(ls, id)
		}
		if id, ok := next(ids, d.ID); ok {
			data.Next = st.docLink(ls, id)
		}
	}
	if cfg.Docs.EditURL != "" {
		source := d.Source
		if ls.translated[d.ID] && !cfg.Docs.EditLocalizedFiles {
			source = path.Join(cfg.Docs.Path, d.ID+".md")
		}
		data.EditURL = content.EditURL(cfg.Docs.EditURL, source)
	}
	if cfg.Docs.ShowLastUpdateAuthor || cfg.Docs.ShowLastUpdateTime {
		data.LastUpdate = lastUpdateText(p, vfs.lastUpdate(d), cfg.Docs)
	}
	p.Doc = data
	return p
}

// lastUpdateText describes a last update in the language of the page.
func lastUpdateText(p *Page, lu content.LastUpdate, opts site.DocsOptions) string {
	var date, author string
	if opts.ShowLastUpdateTime && !lu.Date.IsZero() {
		date = formatDate(lu.Date)
	}
	if opts.ShowLastUpdateAuthor {
		author = lu.Author
	}
	switch {
	case date != "" && author != "":
		return p.T("Last updated on %s by %s", date, author)
	case date != "":
		return p.T("Last updated on %s", date)
	case author != "":
		return p.T("Last updated by %s", author)
	}
	return ""
}

func (st *state) docLink(ls *localeSite, id string) *Link {
	d := ls.docs[id]
	if d == nil {
		return nil
	}
	return &Link{Label: d.Label(), URL: st.cfg.Path(ls.docURL(st.cfg, d))}
}

// categoryPage builds the generated index of a category.
func (st *state) categoryPage(ls *localeSite, sidebarID string, item site.SidebarItem, trail []string, u string) *Page {
	title := item.Link.Title
	if title == "" {
		title = item.Label
	}
	p := st.newPage(ls, "category", title, u)
	p.Sidebar = st.sidebar(ls, sidebarID, u)
	data := &CategoryData{
		Title:       title,
		Description: item.Link.Description,
		Breadcrumb:  trail,
	}
	if data.Description != "" {
		p.Description = data.Description
	}
	for _, child := range item.Items {
		switch child.Type {
		case site.ItemDoc:
			d := ls.docs[child.ID]
			if d == nil {
				continue
			}
			label := child.Label
			if label == "" {
				label = d.Label()
			}
			data.Items = append(data.Items, Card{
				Label:       label,
				URL:         st.cfg.Path(ls.docURL(st.cfg, d)),
				Description: d.Front.Description,
			})
		case site.ItemCategory:
			c := Card{Label: child.Label, Category: true}
			if cu := st.categoryURL(ls, child); cu != "" {
				c.URL = st.cfg.Path(cu)
			}
			data.Items = append(data.Items, c)
		case site.ItemLink:
			c := Card{Label: child.Label, URL: child.Href}
			if !site.IsExternal(child.Href) {
				c.URL = st.cfg.Path(ls.sitePath(child.Href))
			}
			data.Items = append(data.Items, c)
		}
	}
	if len(data.Items) > 0 {
		data.Next = &Link{Label: data.Items[0].Label, URL: data.Items[0].URL}
	}
	p.Category = data
	return p
}

// addBlog registers the blog pages, feeds and stylesheets of a locale.
func (vfs *FS) addBlog(st *state, ls *localeSite) error {
	cfg := st.cfg
	posts := ls.blog.Posts

	// Lists, newest first
	perPage := cfg.Blog.PostsPerPage
	pages := (len(posts) + perPage - 1) / perPage
	listURL := func(n int) string {
		if n == 1 {
			return ls.blogURL(cfg, "")
		}
		return ls.blogURL(cfg, "page/"+strconv.Itoa(n)+"/")
	}
	for n := 1; n <= pages; n++ {
		u := listURL(n)
		from, to := (n-1)*perPage, min(n*perPage, len(posts))
		st.addPage(fileFor(u), ls, true, func() *Page {
			p := st.newPage(ls, "blog", cfg.Blog.Title, u)
			if cfg.Blog.Description != "" {
				p.Description = cfg.Blog.Description
			}
			list := &PostList{Title: cfg.Blog.Title, Description: cfg.Blog.Description}
			for _, post := range posts[from:to] {
				list.Posts = append(list.Posts, st.postData(ls, post, false))
			}
			if n > 1 {
				list.Newer = &Link{Label: p.T("Newer posts"), URL: cfg.Path(listURL(n - 1))}
			}
			if n < pages {
				list.Older = &Link{Label: p.T("Older posts"), URL: cfg.Path(listURL(n + 1))}
			}
			p.Posts = list
			return p
		})
	}

	for i, post := range posts {
		u := ls.postURL(cfg, post)
		st.addPage(fileFor(u), ls, true, func() *Page {
			p := st.newPage(ls, "post", post.Title, u)
			if post.Description != "" {
				p.Description = post.Description
			}
			data := st.postData(ls, post, true)
			if i > 0 {
				data.Newer = &Link{Label: posts[i-1].Title, URL: cfg.Path(ls.postURL(cfg, posts[i-1]))}
			}
			if i < len(posts)-1 {
				data.Older = &Link{Label: posts[i+1].Title, URL: cfg.Path(ls.postURL(cfg, posts[i+1]))}
			}
			p.Post = data
			return p
		})
	}

	// Tags
	tags := ls.blog.UsedTags()
	tagsURL := ls.blogURL(cfg, "tags/")
	st.addPage(fileFor(tagsURL), ls, true, func() *Page {
		p := st.newPage(ls, "tags", ls.printer.Sprintf("Tags"), tagsURL)
		for _, t := range tags {
			p.Tags = append(p.Tags, TagData{
				Label: t.Label,
				URL:   cfg.Path(ls.blogURL(cfg, "tags/"+t.Permalink+"/")),
				Count: len(ls.blog.TagPosts(t.Key)),
			})
		}
		return p
	})
	for _, t := range tags {
		u := ls.blogURL(cfg, "tags/"+t.Permalink+"/")
		st.addPage(fileFor(u), ls, true, func() *Page {
			tagged := ls.blog.TagPosts(t.Key)
			title := ls.printer.Sprintf("%d posts tagged with \"%s\"", len(tagged), t.Label)
			p := st.newPage(ls, "tag", title, u)
			list := &PostList{Title: title, Description: t.Description}
			for _, post := range tagged {
				list.Posts = append(list.Posts, st.postData(ls, post, false))
			}
			p.Posts = list
			return p
		})
	}

	archiveURL := ls.blogURL(cfg, "archive/")
	st.addPage(fileFor(archiveURL), ls, true, func() *Page {
		p := st.newPage(ls, "archive", ls.printer.Sprintf("Archive"), archiveURL)
		for _, post := range posts {
			year := post.Date.Year()
			if len(p.Archive) == 0 || p.Archive[len(p.Archive)-1].Year != year {
				p.Archive = append(p.Archive, ArchiveYear{Year: year})
			}
			last := &p.Archive[len(p.Archive)-1]
			last.Posts = append(last.Posts, st.postData(ls, post, false))
		}
		return p
	})

	return st.addFeeds(ls)
}

// postData prepares a post for a template. full adds the body and edit link.
func (st *state) postData(ls *localeSite, post *content.Post, full bool) *PostData {
	cfg := st.cfg
	rp := ls.posts[post]
	data := &PostData{
		Title:     post.Title,
		URL:       cfg.Path(ls.postURL(cfg, post)),
		Date:      post.Date,
		Authors:   post.Authors,
		Summary:   rp.summary.HTML,
		Truncated: post.Truncated,
	}
	if post.Image != "" {
		data.Image = cfg.Path(post.Image)
	}
	if cfg.Blog.ShowReadingTime {
		data.ReadingTime = content.ReadingTime(content.WordCount(rp.body.Text), cfg.Blog.WordsPerMinute)
		data.ReadingText = ls.printer.Sprintf("%d min read", data.ReadingTime)
	}
	for _, t := range post.Tags {
		data.Tags = append(data.Tags, Link{Label: t.Label, URL: cfg.Path(ls.blogURL(cfg, "tags/"+t.Permalink+"/"))})
	}
	if full {
		data.Content = rp.body.HTML
		data.Headings = rp.body.Headings
		if cfg.Blog.EditURL != "" {
			source := post.Source
			if !cfg.Blog.EditLocalizedFiles && strings.HasPrefix(source, "i18n/") {
				source = path.Join(cfg.Blog.Path, strings.TrimPrefix(source, path.Join("i18n", ls.Locale.Code, cfg.Blog.Path)+"/"))
			}
			data.EditURL = content.EditURL(cfg.Blog.EditURL, source)
		}
	}
	return data
}

// buildIndex creates the search index of a locale from its docs and posts.
func (vfs *FS) buildIndex(st *state, ls *localeSite) error {
	cfg := st.cfg
	var docs []search.Document
	for _, id := range ls.docs.IDs() {
		d := ls.docs[id]
		r := ls.rendered[id]
		doc := search.Document{
			Route: cfg.Path(ls.docURL(cfg, d)),
			Title: d.Title,
			Text:  r.Text,
		}
		if _, trail, ok := st.sidebars.Find(id); ok {
			doc.Breadcrumb = trail
		}
		for _, h := range r.Headings {
			doc.Headings = append(doc.Headings, h.Text)
		}
		docs = append(docs, doc)
	}
	if ls.blog != nil {
		for _, post := range ls.blog.Posts {
			body := ls.posts[post].body
			doc := search.Document{
				Route:      cfg.Path(ls.postURL(cfg, post)),
				Title:      post.Title,
				Breadcrumb: []string{cfg.Blog.Title},
				Text:       body.Text,
			}
			for _, h := range body.Headings {
				doc.Headings = append(doc.Headings, h.Text)
			}
			docs = append(docs, doc)
		}
	}
	idx, err := search.Build(cfg.Search.Language, docs)
	if err != nil {
		return err
	}
	if ls.Locale.Default {
		for _, l := range cfg.Search.Language {
			if !search.Supported(language.Make(l)) {
				vfs.opts.Logf("[WARNING] search language %q is indexed with English rules", l)
			}
		}
	}
	name, err := idx.FileName(cfg.Search.Hashed)
	if err != nil {
		return err
	}
	b, err := idx.JSON()
	if err != nil {
		return err
	}
	ls.Index, ls.indexName = idx, name
	st.addFile(fileFor(ls.sitePath("/"+name)), &route{
		locale: ls,
		render: func() ([]byte, error) { return b, nil },
	})
	return nil
}

// addStatic registers every file below static/ at the root of the site.
func (st *state) addStatic(fsys fs.FS) error {
	err := fs.WalkDir(fsys, "static", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == "static" {
				return fs.SkipAll
			}
			return err
		}
		if strings.HasPrefix(d.Name(), ".") && p != "static" {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		name := strings.TrimPrefix(p, "static/")
		if _, ok := st.files[name]; ok {
			return nil
		}
		st.addFile(name, &route{static: p, fsys: fsys})
		return nil
	})
	if err != nil {
		return fmt.Errorf("addStatic: %w", err)
	}
	return nil
}

// sortedPages returns the files of the pages listed in the sitemap of a locale.
func (st *state) sortedPages(ls *localeSite) []string {
	var names []string
	for name, r := range st.files {
		if r.page && r.locale == ls {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
