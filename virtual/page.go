package virtual

import (
	"html/template"
	"strings"
	"time"

	"github.com/khaibq/my-website/content"
	"github.com/khaibq/my-website/site"
	"golang.org/x/text/message"
)

// Page is passed to every page template.
type Page struct {
	Kind        string // Name of the page template
	Site        *site.Config
	Locale      site.Locale
	Locales     []Link // Same page in every locale, for the locale dropdown
	Title       string // Contents of <title>
	Description string
	Path        string // Site path without base URL, like "/vi/docs/intro/"
	Canonical   string
	Navbar      Navbar
	Footer      []FooterGroup
	Copyright   string
	Sidebar     []SidebarNode
	SearchIndex string // URL of the search index of the locale
	Feeds       []Link // Blog feeds of the locale, if it has a blog
	NoIndex     bool

	Home     *HomeData
	Doc      *DocData
	Category *CategoryData
	Posts    *PostList
	Post     *PostData
	Tags     []TagData
	Archive  []ArchiveYear

	printer *message.Printer
}

// T translates built-in page text into the language of the page.
func (p *Page) T(key string, args ...any) string {
	return p.printer.Sprintf(key, args...)
}

// Partial is the data of the templates shared by several page kinds.
type Partial struct {
	Page       *Page
	Link       Link
	Headings   []content.Heading
	Prev, Next *Link
}

// Nav wraps a navbar link for the "navitem" template.
func (p *Page) Nav(l Link) Partial { return Partial{Page: p, Link: l} }

// TOC wraps headings for the "toc" template.
func (p *Page) TOC(h []content.Heading) Partial { return Partial{Page: p, Headings: h} }

// Pager wraps previous and next links for the "pager" template.
func (p *Page) Pager(prev, next *Link) Partial { return Partial{Page: p, Prev: prev, Next: next} }

// Link is a rendered link.
type Link struct {
	Label     string
	URL       string
	AriaLabel string
	ClassName string
	Lang      string // BCP 47 code of locale links
	External  bool
	Active    bool
	Dropdown  bool // Locale dropdown placeholder in the navbar
}

// Navbar is the rendered top navigation.
type Navbar struct {
	Title        string
	Logo         string
	LogoAlt      string
	Home         string
	HideOnScroll bool
	Left         []Link
	Right        []Link
}

// FooterGroup is a rendered column of footer links.
type FooterGroup struct {
	Title string
	Items []Link
}

// SidebarNode is an entry of the rendered doc sidebar.
type SidebarNode struct {
	Label     string
	URL       string
	Active    bool
	Category  bool
	Collapsed bool
	External  bool
	Items     []SidebarNode
}

// DocData describes a documentation page.
type DocData struct {
	ID         string
	Title      string
	HideTitle  bool
	Content    template.HTML
	Headings   []content.Heading
	Breadcrumb []string
	Tags       []string
	EditURL    string
	LastUpdate string // Sentence describing the last update, or ""
	Prev, Next *Link
}

// CategoryData describes a generated category index.
type CategoryData struct {
	Title       string
	Description string
	Breadcrumb  []string
	Items       []Card
	Prev, Next  *Link
}

// Card is an entry of a category index.
type Card struct {
	Label       string
	URL         string
	Description string
	Category    bool
}

// PostData describes a blog post, in a list or on its own page.
type PostData struct {
	Title       string
	URL         string
	Date        time.Time
	Authors     []content.Author
	Tags        []Link
	ReadingTime int    // Minutes, zero when not shown
	ReadingText string // ReadingTime in the language of the page
	Summary     template.HTML
	Content     template.HTML
	Headings    []content.Heading
	Truncated   bool
	EditURL     string
	Image       string
	Newer       *Link
	Older       *Link
}

// PostList is a page of blog posts.
type PostList struct {
	Title       string
	Description string
	Posts       []*PostData
	Newer       *Link
	Older       *Link
}

// TagData is a tag with the number of posts using it.
type TagData struct {
	Label string
	URL   string
	Count int
}

// ArchiveYear lists the posts of a year.
type ArchiveYear struct {
	Year  int
	Posts []*PostData
}

// newPage fills in the parts every page of a locale shares.
func (st *state) newPage(ls *localeSite, kind, title, sitePath string) *Page {
	cfg := st.cfg
	p := &Page{
		Kind:        kind,
		Site:        cfg,
		Locale:      ls.Locale,
		Title:       cfg.Title,
		Description: cfg.Tagline,
		Path:        sitePath,
		Canonical:   cfg.CanonicalURL(sitePath),
		Copyright:   cfg.Footer.CopyrightFor(st.loaded),
		SearchIndex: cfg.Path(ls.sitePath("/" + ls.indexName)),
		printer:     ls.printer,
	}
	if title != "" && title != cfg.Title {
		p.Title = title + " | " + cfg.Title
	}
	if ls.blog != nil {
		for _, kind := range cfg.Blog.Feed.Types {
			p.Feeds = append(p.Feeds, Link{Label: kind, URL: cfg.Path(ls.blogURL(cfg, kind+".xml"))})
		}
	}

	// Same page in other locales
	rel := strings.TrimPrefix(sitePath, ls.Locale.PathPrefix())
	for _, other := range st.locales {
		target := other.sitePath(rel)
		if !st.hasRoute(target) {
			target = other.sitePath("/")
		}
		p.Locales = append(p.Locales, Link{
			Label:  other.Locale.Label,
			Lang:   other.Locale.HTMLLang,
			URL:    cfg.Path(target),
			Active: other == ls,
		})
	}

	p.Navbar = Navbar{
		Title:        cfg.Navbar.Title,
		LogoAlt:      cfg.Navbar.Logo.Alt,
		Home:         cfg.Path(ls.sitePath("/")),
		HideOnScroll: cfg.Navbar.HideOnScroll,
	}
	if cfg.Navbar.Logo.Src != "" {
		p.Navbar.Logo = cfg.Path(cfg.Navbar.Logo.Src)
	}
	for _, item := range cfg.Navbar.Items {
		l := st.navLink(ls, item, sitePath)
		if item.IsRight() {
			p.Navbar.Right = append(p.Navbar.Right, l)
		} else {
			p.Navbar.Left = append(p.Navbar.Left, l)
		}
	}
	for _, g := range cfg.Footer.Links {
		fg := FooterGroup{Title: g.Title}
		for _, item := range g.Items {
			fg.Items = append(fg.Items, st.navLink(ls, item, ""))
		}
		p.Footer = append(p.Footer, fg)
	}
	return p
}

// navLink resolves a navbar or footer item for a locale. current is the
// site path of the page, used to mark the active item.
func (st *state) navLink(ls *localeSite, item site.NavItem, current string) Link {
	cfg := st.cfg
	l := Link{
		Label:     item.Label,
		AriaLabel: item.AriaLabel,
		ClassName: item.ClassName,
	}
	var target string
	switch item.Type {
	case site.NavLocaleDropdown:
		l.Dropdown = true
		return l
	case site.NavDocSidebar:
		if ids := st.sidebars.Docs(item.SidebarID); len(ids) > 0 {
			if d := ls.docs[ids[0]]; d != nil {
				target = ls.docURL(cfg, d)
			}
		}
		if current != "" {
			if d := st.docAt(ls, current); d != nil {
				if sb, _, ok := st.sidebars.Find(d.ID); ok && sb == item.SidebarID {
					l.Active = true
				}
			}
		}
	case site.NavDoc:
		if d := ls.docs[item.DocID]; d != nil {
			target = ls.docURL(cfg, d)
		}
	default:
		if item.Href != "" {
			l.URL = item.Href
			l.External = true
			return l
		}
		target = ls.sitePath(item.To)
	}
	l.URL = cfg.Path(target)
	if current != "" && !l.Active && item.Type != site.NavDocSidebar && target != ls.sitePath("/") {
		base := strings.TrimSuffix(target, "/")
		l.Active = current == base || strings.HasPrefix(current, base+"/")
	}
	return l
}

// docAt returns the doc served at a site path, if any.
func (st *state) docAt(ls *localeSite, sitePath string) *content.Doc {
	for _, d := range ls.docs {
		if ls.docURL(st.cfg, d) == sitePath {
			return d
		}
	}
	return nil
}

// sidebar renders the sidebar holding the page at current.
func (st *state) sidebar(ls *localeSite, sidebarID, current string) []SidebarNode {
	var walk func(items []site.SidebarItem) ([]SidebarNode, bool)
	walk = func(items []site.SidebarItem) ([]SidebarNode, bool) {
		var (
			nodes     []SidebarNode
			hasActive bool
		)
		for _, item := range items {
			var n SidebarNode
			switch item.Type {
			case site.ItemDoc:
				d := ls.docs[item.ID]
				if d == nil {
					continue
				}
				n.Label = item.Label
				if n.Label == "" {
					n.Label = d.Label()
				}
				n.URL = ls.docURL(st.cfg, d)
			case site.ItemLink:
				n.Label = item.Label
				n.URL = item.Href
				n.External = site.IsExternal(item.Href)
				if !n.External {
					n.URL = ls.sitePath(item.Href)
				}
			case site.ItemCategory:
				n.Label = item.Label
				n.Category = true
				n.URL = st.categoryURL(ls, item)
				var childActive bool
				n.Items, childActive = walk(item.Items)
				n.Collapsed = item.Collapsed && !childActive
				if childActive {
					hasActive = true
				}
			}
			if n.URL != "" && n.URL == current {
				n.Active = true
				hasActive = true
			}
			if !n.External {
				n.URL = st.cfg.Path(n.URL)
			}
			nodes = append(nodes, n)
		}
		return nodes, hasActive
	}
	nodes, _ := walk(st.sidebars[sidebarID])
	return nodes
}

// categoryURL returns the site path a category links to, or "".
func (st *state) categoryURL(ls *localeSite, item site.SidebarItem) string {
	if item.Link == nil {
		return ""
	}
	switch item.Link.Type {
	case site.GeneratedIndex:
		return ls.sitePath("/" + st.cfg.Docs.RouteBasePath + "/" + strings.Trim(item.Link.Slug, "/") + "/")
	case site.DocLink:
		if d := ls.docs[item.Link.ID]; d != nil {
			return ls.docURL(st.cfg, d)
		}
	}
	return ""
}
