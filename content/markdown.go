package content

import (
	"bytes"
	"html/template"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/khaibq/my-website/site"
	"github.com/russross/blackfriday/v2"
)

// extensions are the blackfriday extensions used for all content.
const extensions = blackfriday.CommonExtensions | blackfriday.Footnotes | blackfriday.AutoHeadingIDs

// MarkdownOptions controls RenderMarkdown.
type MarkdownOptions struct {
	Prism site.Prism
	// ResolveLink maps the destination of a relative link to a Markdown file,
	// like "../intro.md#setup", to a site route. It reports false when the
	// target does not exist.
	ResolveLink func(dest string) (string, bool)
}

// Heading is a second or third level heading, used for the table of contents.
type Heading struct {
	Level int
	ID    string
	Text  string
}

// Rendered is the result of RenderMarkdown.
type Rendered struct {
	HTML             template.HTML
	Title            string // Text of the first level one heading
	Headings         []Heading
	Text             string   // Plain text, for search and reading time
	BrokenLinks      []string // Markdown links ResolveLink could not resolve
	UnknownLanguages []string // Code block languages that are not highlighted
}

// renderer wraps the blackfriday HTML renderer to rewrite Markdown links,
// render code blocks with magic comments, and collect text and headings.
type renderer struct {
	*blackfriday.HTMLRenderer

	opts  MarkdownOptions
	langs map[string]bool
	out   *Rendered
	text  strings.Builder
}

// RenderMarkdown converts md into HTML.
func RenderMarkdown(md []byte, opts MarkdownOptions) Rendered {
	var out Rendered
	r := &renderer{
		HTMLRenderer: blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
			Flags: blackfriday.CommonHTMLFlags | blackfriday.FootnoteReturnLinks,
		}),
		opts:  opts,
		langs: Languages(opts.Prism.AdditionalLanguages),
		out:   &out,
	}
	html := blackfriday.Run(md, blackfriday.WithExtensions(extensions), blackfriday.WithRenderer(r))
	out.HTML = template.HTML(html)
	out.Text = strings.Join(strings.Fields(r.text.String()), " ")
	return out
}

// RenderNode implements blackfriday.Renderer.
func (r *renderer) RenderNode(w io.Writer, node *blackfriday.Node, entering bool) blackfriday.WalkStatus {
	switch node.Type {
	case blackfriday.Text, blackfriday.Code:
		r.text.Write(node.Literal)
		r.text.WriteByte(' ')
	case blackfriday.Heading:
		if entering {
			r.heading(node)
		}
	case blackfriday.Link:
		if entering {
			r.rewriteLink(node)
		}
	case blackfriday.CodeBlock:
		r.text.Write(node.Literal)
		r.text.WriteByte(' ')
		r.codeBlock(w, node)
		return blackfriday.GoToNext
	}
	return r.HTMLRenderer.RenderNode(w, node, entering)
}

func (r *renderer) heading(node *blackfriday.Node) {
	var b strings.Builder
	node.Walk(func(n *blackfriday.Node, entering bool) blackfriday.WalkStatus {
		if entering && (n.Type == blackfriday.Text || n.Type == blackfriday.Code) {
			b.Write(n.Literal)
		}
		return blackfriday.GoToNext
	})
	text := strings.TrimSpace(b.String())
	switch level := node.HeadingData.Level; {
	case level == 1 && r.out.Title == "":
		r.out.Title = text
	case level == 2 || level == 3:
		r.out.Headings = append(r.out.Headings, Heading{Level: level, ID: node.HeadingData.HeadingID, Text: text})
	}
}

// rewriteLink points links to Markdown files at the page rendered from them.
func (r *renderer) rewriteLink(node *blackfriday.Node) {
	dest := string(node.LinkData.Destination)
	if !isMarkdownLink(dest) {
		return
	}
	if r.opts.ResolveLink == nil {
		return
	}
	route, ok := r.opts.ResolveLink(dest)
	if !ok {
		r.out.BrokenLinks = append(r.out.BrokenLinks, dest)
		return
	}
	node.LinkData.Destination = []byte(route)
}

// isMarkdownLink reports whether dest is a relative link to a ".md" file.
func isMarkdownLink(dest string) bool {
	if site.IsExternal(dest) || strings.HasPrefix(dest, "#") {
		return false
	}
	u, err := url.Parse(dest)
	if err != nil {
		return false
	}
	return path.Ext(u.Path) == ".md"
}

// SplitLink separates the path of a link from its fragment, which
// includes the "#".
func SplitLink(dest string) (p, fragment string) {
	if i := strings.IndexByte(dest, '#'); i >= 0 {
		return dest[:i], dest[i:]
	}
	return dest, ""
}

func (r *renderer) codeBlock(w io.Writer, node *blackfriday.Node) {
	info := parseCodeInfo(string(node.CodeBlockData.Info), strings.Count(string(node.Literal), "\n")+1)
	if info.Lang != "" && !r.langs[info.Lang] {
		r.out.UnknownLanguages = append(r.out.UnknownLanguages, info.Lang)
	}
	lines := highlightLines(string(node.Literal), r.opts.Prism.MagicComments, info.Lines)

	var b bytes.Buffer
	b.WriteString(`<div class="code-block`)
	if info.Lang != "" {
		b.WriteString(` language-` + template.HTMLEscapeString(info.Lang))
	}
	b.WriteString(`">`)
	if info.Title != "" {
		b.WriteString(`<div class="code-block-title">` + template.HTMLEscapeString(info.Title) + `</div>`)
	}
	b.WriteString(`<pre><code`)
	if info.Lang != "" {
		b.WriteString(` class="language-` + template.HTMLEscapeString(info.Lang) + `"`)
	}
	b.WriteString(`>`)
	for _, l := range lines {
		if len(l.Classes) > 0 {
			b.WriteString(`<span class="` + template.HTMLEscapeString(strings.Join(l.Classes, " ")) + `">`)
			b.WriteString(template.HTMLEscapeString(l.Text))
			b.WriteString("\n</span>")
		} else {
			b.WriteString(template.HTMLEscapeString(l.Text))
			b.WriteString("\n")
		}
	}
	b.WriteString("</code></pre></div>\n")
	w.Write(b.Bytes())
}
