package content

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"path"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/khaibq/my-website/site"
	"github.com/pelletier/go-toml/v2"
)

// TruncateMarker separates the summary of a blog post from the rest.
const TruncateMarker = "<!-- truncate -->"

// Author writes blog posts.
type Author struct {
	Key      string `toml:"-"`
	Name     string `toml:"name"`
	Title    string `toml:"title"`
	URL      string `toml:"url"`
	ImageURL string `toml:"image_url"`
	Email    string `toml:"email"`
}

// Tag groups blog posts.
type Tag struct {
	Key         string `toml:"-"`
	Label       string `toml:"label"`
	Permalink   string `toml:"permalink"`
	Description string `toml:"description"`
}

// Post is a single blog post.
type Post struct {
	Source      string // Path of the Markdown file in the site file system
	Slug        string // Route below the blog, like "2024/05/01/hello"
	Title       string
	Description string
	Date        time.Time
	Authors     []Author
	Tags        []Tag
	Image       string
	Summary     []byte // Markdown up to the truncate marker
	Body        []byte // Full Markdown without front matter or marker
	Truncated   bool
}

// postFrontMatter holds data scraped from the top of a post. Authors is either
// a key, a list of keys, or a list of inline author tables.
type postFrontMatter struct {
	Title       string    `toml:"title"`
	Date        time.Time `toml:"date"`
	Slug        string    `toml:"slug"`
	Description string    `toml:"description"`
	Authors     any       `toml:"authors"`
	Tags        []string  `toml:"tags"`
	Image       string    `toml:"image"`
	Draft       bool      `toml:"draft"`
}

// Blog holds the published posts, newest first, and the author and tag definitions.
type Blog struct {
	Posts   []*Post
	Authors map[string]Author
	Tags    map[string]Tag
}

// TagPosts returns the posts carrying the tag with the given key, newest first.
func (b *Blog) TagPosts(key string) []*Post {
	var result []*Post
	for _, p := range b.Posts {
		for _, t := range p.Tags {
			if t.Key == key {
				result = append(result, p)
				break
			}
		}
	}
	return result
}

// UsedTags returns every tag used by a post, sorted by key.
func (b *Blog) UsedTags() []Tag {
	seen := make(map[string]Tag)
	for _, p := range b.Posts {
		for _, t := range p.Tags {
			seen[t.Key] = t
		}
	}
	tags := make([]Tag, 0, len(seen))
	for _, t := range seen {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Key < tags[j].Key })
	return tags
}

// datePrefix matches names like "2024-05-01-hello".
var datePrefix = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})-?(.*)$`)

// LoadBlog reads every post below dir along with the authors and tags files.
// Content problems go through the policies in opts; a Throw policy turns them
// into an error. Drafts and posts dated after now are left out.
func LoadBlog(fsys fs.FS, dir string, opts site.BlogOptions, now time.Time, logf func(string, ...any)) (*Blog, error) {
	blog := &Blog{}
	var err error
	blog.Authors, err = loadAuthors(fsys, path.Join(dir, opts.AuthorsMapPath))
	if err != nil {
		return nil, fmt.Errorf("LoadBlog: %w", err)
	}
	blog.Tags, err = loadTags(fsys, path.Join(dir, opts.TagsPath))
	if err != nil {
		return nil, fmt.Errorf("LoadBlog: %w", err)
	}

	var problems []error
	err = fs.WalkDir(fsys, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() || path.Ext(p) != ".md" || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		post, draft, err := blog.readPost(fsys, dir, p, opts, logf, &problems)
		if err != nil {
			return err
		}
		if draft {
			return nil
		}
		if post.Date.After(now) {
			logf("LoadBlog: %s is dated %s and will not be published yet", p, post.Date.Format(time.DateOnly))
			return nil
		}
		blog.Posts = append(blog.Posts, post)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("LoadBlog: %w", err)
	}
	if err = errors.Join(problems...); err != nil {
		return nil, err
	}
	sort.SliceStable(blog.Posts, func(i, j int) bool {
		if blog.Posts[i].Date.Equal(blog.Posts[j].Date) {
			return blog.Posts[i].Slug < blog.Posts[j].Slug
		}
		return blog.Posts[i].Date.After(blog.Posts[j].Date)
	})
	return blog, nil
}

func (blog *Blog) readPost(fsys fs.FS, dir, p string, opts site.BlogOptions, logf func(string, ...any), problems *[]error) (*Post, bool, error) {
	b, err := fs.ReadFile(fsys, p)
	if err != nil {
		return nil, false, err
	}
	var fm postFrontMatter
	body, err := parseFrontMatter(p, b, &fm)
	if err != nil {
		return nil, false, err
	}
	if fm.Draft {
		return nil, true, nil
	}
	post := &Post{
		Source:      p,
		Title:       fm.Title,
		Description: fm.Description,
		Image:       fm.Image,
		Date:        fm.Date,
	}

	// Name comes from the file, or the folder for "index.md"
	name := strings.TrimPrefix(strings.TrimSuffix(p, ".md"), dir+"/")
	if path.Base(name) == "index" {
		name = path.Dir(name)
	}
	name = path.Base(name)
	if m := datePrefix.FindStringSubmatch(name); m != nil {
		if post.Date.IsZero() {
			post.Date, _ = time.Parse(time.DateOnly, m[1]+"-"+m[2]+"-"+m[3])
		}
		name = m[4]
	}
	if post.Date.IsZero() {
		if fi, err := fs.Stat(fsys, p); err == nil {
			post.Date = fi.ModTime()
		}
	}
	post.Slug = strings.Trim(fm.Slug, "/")
	if post.Slug == "" {
		post.Slug = post.Date.Format("2006/01/02") + "/" + name
	}
	if post.Title == "" {
		if post.Title = firstHeading(body); post.Title != "" {
			body = stripFirstHeading(body)
		}
	}
	if post.Title == "" {
		post.Title = titleFromName(name)
	}

	// Summary
	if i := bytes.Index(body, []byte(TruncateMarker)); i >= 0 {
		post.Truncated = true
		post.Summary = bytes.TrimSpace(body[:i])
		post.Body = append(append([]byte{}, body[:i]...), body[i+len(TruncateMarker):]...)
	} else {
		post.Summary = body
		post.Body = body
		report(opts.OnUntruncatedBlogPosts, logf, problems, fmt.Errorf("blog post %s is not truncated; add %q to show only a summary in lists", p, TruncateMarker))
	}

	// Authors
	authors, inline, err := blog.resolveAuthors(p, fm.Authors)
	if err != nil {
		return nil, false, err
	}
	post.Authors = authors
	if inline {
		report(opts.OnInlineAuthors, logf, problems, fmt.Errorf("blog post %s declares authors inline; define them in %s", p, opts.AuthorsMapPath))
	}

	// Tags
	for _, key := range fm.Tags {
		tag, ok := blog.Tags[key]
		if !ok {
			tag = Tag{Key: key, Label: key}
			if blog.Tags != nil {
				report(opts.OnInlineTags, logf, problems, fmt.Errorf("blog post %s uses tag %q which is not defined in %s", p, key, opts.TagsPath))
			}
		}
		if tag.Permalink == "" {
			tag.Permalink = site.Slugify(key)
		}
		post.Tags = append(post.Tags, tag)
	}
	return post, false, nil
}

// resolveAuthors turns the authors front matter into authors, reporting
// whether any were declared inline instead of by key.
func (blog *Blog) resolveAuthors(p string, v any) ([]Author, bool, error) {
	var list []any
	switch x := v.(type) {
	case nil:
		return nil, false, nil
	case string:
		list = []any{x}
	case []any:
		list = x
	case map[string]any:
		list = []any{x}
	default:
		return nil, false, fmt.Errorf("authors of %s: unexpected %T", p, v)
	}
	var (
		authors []Author
		inline  bool
	)
	for _, item := range list {
		switch a := item.(type) {
		case string:
			author, ok := blog.Authors[a]
			if !ok {
				return nil, false, fmt.Errorf("authors of %s: unknown author %q", p, a)
			}
			authors = append(authors, author)
		case map[string]any:
			inline = true
			author := Author{}
			author.Name, _ = a["name"].(string)
			author.Title, _ = a["title"].(string)
			author.URL, _ = a["url"].(string)
			author.ImageURL, _ = a["image_url"].(string)
			author.Email, _ = a["email"].(string)
			author.Key = site.Slugify(author.Name)
			authors = append(authors, author)
		default:
			return nil, false, fmt.Errorf("authors of %s: unexpected %T", p, item)
		}
	}
	return authors, inline, nil
}

func loadAuthors(fsys fs.FS, name string) (map[string]Author, error) {
	authors := make(map[string]Author)
	b, err := fs.ReadFile(fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return authors, nil
	} else if err != nil {
		return nil, err
	}
	if err = toml.Unmarshal(b, &authors); err != nil {
		return nil, fmt.Errorf("Cannot parse %s: %w", name, err)
	}
	for k, a := range authors {
		a.Key = k
		authors[k] = a
	}
	return authors, nil
}

// loadTags returns nil if there is no tags file, which turns off the inline tag check.
func loadTags(fsys fs.FS, name string) (map[string]Tag, error) {
	b, err := fs.ReadFile(fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	tags := make(map[string]Tag)
	if err = toml.Unmarshal(b, &tags); err != nil {
		return nil, fmt.Errorf("Cannot parse %s: %w", name, err)
	}
	for k, t := range tags {
		t.Key = k
		if t.Label == "" {
			t.Label = k
		}
		if t.Permalink = strings.Trim(t.Permalink, "/"); t.Permalink == "" {
			t.Permalink = site.Slugify(k)
		}
		tags[k] = t
	}
	return tags, nil
}

func report(p site.Policy, logf func(string, ...any), problems *[]error, err error) {
	if err := p.Report(logf, err); err != nil {
		*problems = append(*problems, err)
	}
}

// WordCount counts whitespace separated words.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// ReadingTime returns the minutes needed to read words at wpm words per minute,
// rounded up, and never less than one.
func ReadingTime(words, wpm int) int {
	if wpm <= 0 {
		wpm = 200
	}
	m := int(math.Ceil(float64(words) / float64(wpm)))
	if m < 1 {
		return 1
	}
	return m
}
