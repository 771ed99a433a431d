// Package linkcheck finds links in rendered HTML pages that point at files which do not exist.
package linkcheck

import (
	"fmt"
	"io/fs"
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/khaibq/my-website/site"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Broken is a link from Page to a Target that does not exist.
type Broken struct {
	Page   string
	Target string
}

// Error lists broken links grouped by page.
type Error []Broken

func (e Error) Error() string {
	var b strings.Builder
	b.WriteString("Broken links found:")
	page := ""
	for _, l := range e {
		if l.Page != page {
			page = l.Page
			fmt.Fprintf(&b, "\n- On source page path = /%s:", page)
		}
		fmt.Fprintf(&b, "\n   -> linking to %s", l.Target)
	}
	return b.String()
}

// attrs lists the link attributes checked per element.
var attrs = map[atom.Atom]string{
	atom.A:      "href",
	atom.Link:   "href",
	atom.Img:    "src",
	atom.Script: "src",
}

// Check parses every HTML file in fsys and returns the internal links whose
// targets are missing. Links are resolved relative to the page and baseURL
// is stripped from absolute paths.
func Check(fsys fs.FS, baseURL string) ([]Broken, error) {
	var broken []Broken
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".html" {
			return nil
		}
		links, err := pageLinks(fsys, p)
		if err != nil {
			return err
		}
		seen := make(map[string]bool)
		for _, link := range links {
			target, ok := resolve(p, link, baseURL)
			if !ok || seen[link] {
				continue
			}
			seen[link] = true
			if !exists(fsys, target) {
				broken = append(broken, Broken{Page: p, Target: link})
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("Check: %w", err)
	}
	sort.SliceStable(broken, func(i, j int) bool { return broken[i].Page < broken[j].Page })
	return broken, nil
}

func pageLinks(fsys fs.FS, p string) ([]string, error) {
	f, err := fsys.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := html.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	var links []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if name, ok := attrs[n.DataAtom]; ok {
				for _, a := range n.Attr {
					if a.Key == name && a.Val != "" {
						links = append(links, a.Val)
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, nil
}

// resolve turns a link on page p into a path in the file system. It reports
// false for links that are not checked.
func resolve(p, link, baseURL string) (string, bool) {
	if site.IsExternal(link) || strings.HasPrefix(link, "#") {
		return "", false
	}
	u, err := url.Parse(link)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "", false
	}
	target := u.Path
	if target == "" {
		return "", false
	}
	if strings.HasPrefix(target, "/") {
		base := "/" + strings.Trim(baseURL, "/")
		if base != "/" {
			if target != base && !strings.HasPrefix(target, base+"/") {
				return target, true
			}
			target = strings.TrimPrefix(target, base)
		}
	} else {
		target = path.Join(path.Dir(p), target)
	}
	return strings.TrimPrefix(path.Clean("/"+target), "/"), true
}

func exists(fsys fs.FS, p string) bool {
	if p == "" {
		p = "."
	}
	candidates := []string{p, path.Join(p, "index.html"), p + ".html"}
	for _, c := range candidates {
		fi, err := fs.Stat(fsys, c)
		if err == nil && (!fi.IsDir() || c == "." && hasIndex(fsys)) {
			return true
		}
	}
	return false
}

func hasIndex(fsys fs.FS) bool {
	_, err := fs.Stat(fsys, "index.html")
	return err == nil
}
