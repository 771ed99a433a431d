/*
Package site holds the declarative configuration of the web site: metadata, internationalization,
docs and blog options, search wiring, code highlighting, color mode, navbar, footer and the
sidebar tree. Configuration is read once from "site.toml" at the root of the site folder and
is treated as immutable afterwards.

A minimal site.toml looks like:

	title = "Personal site with passion"
	tagline = "Learning is fun! Coding is always fun!"
	url = "https://www.example.com"
	base_url = "/"

	[i18n]
	default_locale = "en"
	locales = ["en", "vi"]

Everything not set falls back to the values returned by Default.
*/
package site

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// ConfigFile is the name of the configuration file at the root of the site.
const ConfigFile = "site.toml"

// Config contains configuration data from the site.toml file.
type Config struct {
	Title            string `toml:"title"`
	Tagline          string `toml:"tagline"`
	Favicon          string `toml:"favicon"`
	URL              string `toml:"url"`      // Canonical production URL
	BaseURL          string `toml:"base_url"` // Path the site is served under, always "/" terminated
	OrganizationName string `toml:"organization_name"`
	ProjectName      string `toml:"project_name"`

	OnBrokenLinks         Policy `toml:"on_broken_links"`
	OnBrokenMarkdownLinks Policy `toml:"on_broken_markdown_links"`

	I18n            I18n            `toml:"i18n"`
	Docs            DocsOptions     `toml:"docs"`
	Blog            BlogOptions     `toml:"blog"`
	Theme           ThemeOptions    `toml:"theme"`
	Gtag            Gtag            `toml:"gtag"`
	Search          SearchOptions   `toml:"search"`
	ColorMode       ColorMode       `toml:"color_mode"`
	AnnouncementBar AnnouncementBar `toml:"announcement_bar"`
	Navbar          Navbar          `toml:"navbar"`
	Footer          Footer          `toml:"footer"`
	Prism           Prism           `toml:"prism"`
	Server          ServerOptions   `toml:"server"`
}

// DocsOptions configures the documentation content.
type DocsOptions struct {
	Path                 string         `toml:"path"`            // Content folder, relative to the site root
	RouteBasePath        string         `toml:"route_base_path"` // URL segment docs are served under
	SidebarPath          string         `toml:"sidebar_path"`
	EditURL              string         `toml:"edit_url"`
	EditLocalizedFiles   bool           `toml:"edit_localized_files"`
	ShowLastUpdateAuthor bool           `toml:"show_last_update_author"`
	ShowLastUpdateTime   bool           `toml:"show_last_update_time"`
	Sidebar              SidebarOptions `toml:"sidebar"`
}

// SidebarOptions controls how the docs sidebar behaves in the browser.
type SidebarOptions struct {
	Hideable               bool `toml:"hideable"`
	AutoCollapseCategories bool `toml:"auto_collapse_categories"`
}

// BlogOptions configures the blog content.
type BlogOptions struct {
	Path                   string      `toml:"path"`
	RouteBasePath          string      `toml:"route_base_path"`
	Title                  string      `toml:"title"`
	Description            string      `toml:"description"`
	ShowReadingTime        bool        `toml:"show_reading_time"`
	PostsPerPage           int         `toml:"posts_per_page"`
	WordsPerMinute         int         `toml:"words_per_minute"`
	AuthorsMapPath         string      `toml:"authors_map_path"`
	TagsPath               string      `toml:"tags_path"`
	EditURL                string      `toml:"edit_url"`
	EditLocalizedFiles     bool        `toml:"edit_localized_files"`
	Feed                   FeedOptions `toml:"feed"`
	OnInlineTags           Policy      `toml:"on_inline_tags"`
	OnInlineAuthors        Policy      `toml:"on_inline_authors"`
	OnUntruncatedBlogPosts Policy      `toml:"on_untruncated_blog_posts"`
}

// FeedOptions configures the generated blog feeds.
type FeedOptions struct {
	Types     []string `toml:"types"` // "rss", "atom"
	XSLT      bool     `toml:"xslt"`
	Copyright string   `toml:"copyright"`
	Limit     int      `toml:"limit"`
}

// ThemeOptions configures styling shared by every page.
type ThemeOptions struct {
	CustomCSS []string `toml:"custom_css"`
}

// Gtag holds the Google Analytics settings. An empty tracking ID disables it.
type Gtag struct {
	TrackingID  string `toml:"tracking_id"`
	AnonymizeIP bool   `toml:"anonymize_ip"`
}

// SearchOptions configures the local search index.
type SearchOptions struct {
	Hashed                           bool     `toml:"hashed"`
	SearchBarPosition                string   `toml:"search_bar_position"`
	Language                         []string `toml:"language"`
	HighlightSearchTermsOnTargetPage bool     `toml:"highlight_search_terms_on_target_page"`
	ExplicitSearchResultPath         bool     `toml:"explicit_search_result_path"`
}

// ColorMode sets the light/dark defaults.
type ColorMode struct {
	DefaultMode               string `toml:"default_mode"`
	DisableSwitch             bool   `toml:"disable_switch"`
	RespectPrefersColorScheme bool   `toml:"respect_prefers_color_scheme"`
}

// AnnouncementBar is the banner shown on top of every page. Content is trusted HTML.
type AnnouncementBar struct {
	ID          string `toml:"id"`
	Content     string `toml:"content"`
	IsCloseable bool   `toml:"is_closeable"`
}

// Prism configures code block highlighting.
type Prism struct {
	Theme               string         `toml:"theme"`
	DarkTheme           string         `toml:"dark_theme"`
	AdditionalLanguages []string       `toml:"additional_languages"`
	MagicComments       []MagicComment `toml:"magic_comments"`
}

// MagicComment marks lines of a code block with a class name. Line highlights
// the line following the comment; Block highlights every line between
// the start and end comments.
type MagicComment struct {
	ClassName string      `toml:"class_name"`
	Line      string      `toml:"line"`
	Block     *BlockRange `toml:"block"`
}

// BlockRange holds the start and end markers of a block magic comment.
type BlockRange struct {
	Start string `toml:"start"`
	End   string `toml:"end"`
}

// ServerOptions configures HTTP headers when the site is served directly.
type ServerOptions struct {
	Expires       Duration          `toml:"expires"`
	StaticExpires Duration          `toml:"static_expires"`
	Headers       map[string]string `toml:"headers"`
}

// Default returns the configuration used for anything site.toml leaves out.
func Default() *Config {
	return &Config{
		Favicon:               "img/favicon.ico",
		BaseURL:               "/",
		OnBrokenLinks:         Throw,
		OnBrokenMarkdownLinks: Warn,
		I18n: I18n{
			DefaultLocale: "en",
			Locales:       []string{"en"},
		},
		Docs: DocsOptions{
			Path:          "docs",
			RouteBasePath: "docs",
			SidebarPath:   SidebarFile,
		},
		Blog: BlogOptions{
			Path:                   "blog",
			RouteBasePath:          "blog",
			Title:                  "Blog",
			WordsPerMinute:         200,
			PostsPerPage:           10,
			AuthorsMapPath:         "authors.toml",
			TagsPath:               "tags.toml",
			Feed:                   FeedOptions{Types: []string{"rss", "atom"}, Limit: 20},
			OnInlineTags:           Warn,
			OnInlineAuthors:        Warn,
			OnUntruncatedBlogPosts: Warn,
		},
		Search: SearchOptions{
			SearchBarPosition: "right",
			Language:          []string{"en"},
		},
		ColorMode: ColorMode{DefaultMode: "light"},
		Prism:     Prism{Theme: "github", DarkTheme: "dracula"},
	}
}

// Load reads site.toml from fsys on top of Default and validates the result.
func Load(fsys fs.FS) (*Config, error) {
	b, err := fs.ReadFile(fsys, ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("Cannot read config file: %w", err)
	}
	return Parse(b)
}

// Parse decodes configuration data on top of Default and validates the result.
func Parse(b []byte) (*Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("Cannot parse config file: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// normalize cleans up paths so the rest of the code can rely on their shape.
func (c *Config) normalize() {
	if c.BaseURL == "" {
		c.BaseURL = "/"
	}
	if !strings.HasPrefix(c.BaseURL, "/") {
		c.BaseURL = "/" + c.BaseURL
	}
	if !strings.HasSuffix(c.BaseURL, "/") {
		c.BaseURL += "/"
	}
	c.URL = strings.TrimSuffix(c.URL, "/")
	c.Docs.RouteBasePath = strings.Trim(c.Docs.RouteBasePath, "/")
	c.Blog.RouteBasePath = strings.Trim(c.Blog.RouteBasePath, "/")
	c.Docs.EditURL = strings.TrimSuffix(c.Docs.EditURL, "/")
	c.Blog.EditURL = strings.TrimSuffix(c.Blog.EditURL, "/")
	if c.Blog.WordsPerMinute <= 0 {
		c.Blog.WordsPerMinute = 200
	}
	if c.Blog.PostsPerPage <= 0 {
		c.Blog.PostsPerPage = 10
	}
}

// Validate checks the configuration for values the generator cannot work with.
// All problems are reported at once.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, errors.New("title is required"))
	}
	if c.URL != "" {
		if err := checkExternalURL(c.URL); err != nil {
			errs = append(errs, fmt.Errorf("url: %w", err))
		}
	}
	if _, err := c.I18n.Resolve(); err != nil {
		errs = append(errs, fmt.Errorf("i18n: %w", err))
	}
	switch c.ColorMode.DefaultMode {
	case "light", "dark":
	default:
		errs = append(errs, fmt.Errorf("color_mode.default_mode must be \"light\" or \"dark\", not %q", c.ColorMode.DefaultMode))
	}
	for _, t := range c.Blog.Feed.Types {
		if t != "rss" && t != "atom" {
			errs = append(errs, fmt.Errorf("blog.feed.types: unknown feed type %q", t))
		}
	}
	for i, mc := range c.Prism.MagicComments {
		if mc.ClassName == "" {
			errs = append(errs, fmt.Errorf("prism.magic_comments[%d]: class_name is required", i))
		}
		if mc.Line == "" && mc.Block == nil {
			errs = append(errs, fmt.Errorf("prism.magic_comments[%d]: line or block is required", i))
		}
		if mc.Block != nil && (mc.Block.Start == "" || mc.Block.End == "") {
			errs = append(errs, fmt.Errorf("prism.magic_comments[%d]: block needs start and end", i))
		}
	}
	for i, item := range c.Navbar.Items {
		if err := item.check(); err != nil {
			errs = append(errs, fmt.Errorf("navbar.items[%d]: %w", i, err))
		}
	}
	for i, group := range c.Footer.Links {
		for j, item := range group.Items {
			if err := item.check(); err != nil {
				errs = append(errs, fmt.Errorf("footer.links[%d].items[%d]: %w", i, j, err))
			}
		}
	}
	return errors.Join(errs...)
}

// Locales returns the resolved locale list. Validate has already checked
// the settings, so the error is only possible for hand-built configs.
func (c *Config) Locales() []Locale {
	l, err := c.I18n.Resolve()
	if err != nil {
		return nil
	}
	return l
}

// CanonicalURL joins the production URL, base URL and the given site path.
func (c *Config) CanonicalURL(p string) string {
	return c.URL + c.Path(p)
}

// Path prefixes p with the base URL, the same way useBaseUrl does in a
// component. External URLs and anchors are returned unchanged.
func (c *Config) Path(p string) string {
	if p == "" || IsExternal(p) || strings.HasPrefix(p, "#") {
		return p
	}
	if strings.HasPrefix(p, c.BaseURL) && c.BaseURL != "/" {
		return p
	}
	return c.BaseURL + strings.TrimPrefix(p, "/")
}

// IsExternal reports whether s has a scheme or is protocol relative.
func IsExternal(s string) bool {
	if strings.HasPrefix(s, "//") {
		return true
	}
	u, err := url.Parse(s)
	return err == nil && u.Scheme != ""
}

// checkExternalURL makes sure s is an absolute http(s) URL with a host.
func checkExternalURL(s string) error {
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", s, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme in %q (only http/https allowed)", s)
	}
	if u.Host == "" {
		return fmt.Errorf("URL %q must have a host", s)
	}
	return nil
}

// CopyrightFor returns the footer copyright with {year} replaced.
func (f Footer) CopyrightFor(now time.Time) string {
	return strings.ReplaceAll(f.Copyright, "{year}", fmt.Sprint(now.Year()))
}
