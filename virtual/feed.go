package virtual

import (
	"fmt"
	"strings"

	"github.com/gorilla/feeds"
)

// addFeeds registers the RSS and Atom feeds of the blog, and their stylesheets
// when xslt is on.
func (st *state) addFeeds(ls *localeSite) error {
	cfg := st.cfg
	for _, kind := range cfg.Blog.Feed.Types {
		name := fileFor(ls.blogURL(cfg, kind+".xml"))
		xsl := ""
		if cfg.Blog.Feed.XSLT {
			xsl = kind + ".xsl"
			st.addFile(fileFor(ls.blogURL(cfg, xsl)), &route{static: "assets/" + xsl, fsys: assets})
		}
		st.addFile(name, &route{
			locale: ls,
			render: func() ([]byte, error) {
				return st.feed(ls, kind, xsl)
			},
		})
	}
	return nil
}

// feed renders the newest posts of a locale as RSS 2.0 or Atom.
func (st *state) feed(ls *localeSite, kind, xsl string) ([]byte, error) {
	cfg := st.cfg
	posts := ls.blog.Posts
	if limit := cfg.Blog.Feed.Limit; limit > 0 && len(posts) > limit {
		posts = posts[:limit]
	}
	title := cfg.Title + " " + cfg.Blog.Title
	f := &feeds.Feed{
		Title:       title,
		Link:        &feeds.Link{Href: cfg.CanonicalURL(ls.blogURL(cfg, ""))},
		Description: cfg.Blog.Description,
		Id:          cfg.CanonicalURL(ls.blogURL(cfg, "")),
		Copyright:   cfg.Blog.Feed.Copyright,
	}
	if f.Description == "" {
		f.Description = title
	}
	if f.Copyright == "" {
		f.Copyright = cfg.Footer.CopyrightFor(st.loaded)
	}
	if len(posts) > 0 {
		f.Updated = posts[0].Date
		f.Created = posts[0].Date
	}
	for _, post := range posts {
		u := cfg.CanonicalURL(ls.postURL(cfg, post))
		item := &feeds.Item{
			Title:       post.Title,
			Link:        &feeds.Link{Href: u},
			Id:          u,
			Description: post.Description,
			Created:     post.Date,
			Updated:     post.Date,
			Content:     string(ls.posts[post].body.HTML),
		}
		if item.Description == "" {
			item.Description = string(ls.posts[post].summary.HTML)
		}
		if len(post.Authors) > 0 {
			item.Author = &feeds.Author{Name: post.Authors[0].Name, Email: post.Authors[0].Email}
		}
		f.Items = append(f.Items, item)
	}

	var (
		out string
		err error
	)
	switch kind {
	case "rss":
		out, err = f.ToRss()
	case "atom":
		out, err = f.ToAtom()
	default:
		return nil, fmt.Errorf("feed: unknown feed type %q", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("feed: %w", err)
	}
	if xsl != "" {
		out = addStylesheet(out, xsl)
	}
	return []byte(out), nil
}

// addStylesheet inserts an xml-stylesheet instruction after the XML declaration.
func addStylesheet(doc, href string) string {
	pi := `<?xml-stylesheet type="text/xsl" href="` + href + `"?>`
	if strings.HasPrefix(doc, "<?xml") {
		if i := strings.Index(doc, "?>"); i >= 0 {
			return doc[:i+2] + "\n" + pi + "\n" + strings.TrimLeft(doc[i+2:], "\n")
		}
	}
	return pi + "\n" + doc
}
