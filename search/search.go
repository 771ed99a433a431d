// Package search builds the local search index served next to the site, and answers
// queries against it for the development server.
package search

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// BreadcrumbSeparator joins the parts of a result path.
const BreadcrumbSeparator = " › "

// Document is a single searchable page.
type Document struct {
	Route      string   `json:"route"`
	Title      string   `json:"title"`
	Breadcrumb []string `json:"breadcrumb,omitempty"`
	Headings   []string `json:"headings,omitempty"`
	Text       string   `json:"text"`
}

// Index holds the documents and maps each term to the documents containing it.
type Index struct {
	Languages []string         `json:"languages"`
	Documents []Document       `json:"documents"`
	Terms     map[string][]int `json:"terms"`

	titleTerms []map[string]bool
}

// Supported reports whether terms for the language can be tokenized.
func Supported(tag language.Tag) bool {
	base, _ := tag.Base()
	return base.String() == "en"
}

// Build indexes docs for the given languages. Languages must be valid BCP 47
// tags; unsupported ones are kept but fall back to English tokenization.
func Build(langs []string, docs []Document) (*Index, error) {
	ix := &Index{
		Documents: docs,
		Terms:     make(map[string][]int),
	}
	for _, l := range langs {
		tag, err := language.Parse(l)
		if err != nil {
			return nil, fmt.Errorf("Build: invalid search language %q: %w", l, err)
		}
		ix.Languages = append(ix.Languages, tag.String())
	}
	sort.SliceStable(ix.Documents, func(i, j int) bool { return ix.Documents[i].Route < ix.Documents[j].Route })
	for i, d := range ix.Documents {
		seen := make(map[string]bool)
		for _, field := range append([]string{d.Title, d.Text}, d.Headings...) {
			for _, term := range Tokenize(field) {
				if !seen[term] {
					seen[term] = true
					ix.Terms[term] = append(ix.Terms[term], i)
				}
			}
		}
	}
	ix.index()
	return ix, nil
}

// index computes the title terms used for ranking.
func (ix *Index) index() {
	ix.titleTerms = make([]map[string]bool, len(ix.Documents))
	for i, d := range ix.Documents {
		m := make(map[string]bool)
		for _, term := range Tokenize(d.Title) {
			m[term] = true
		}
		ix.titleTerms[i] = m
	}
}

// Tokenize case folds s and splits it into words of letters and digits.
func Tokenize(s string) []string {
	s = cases.Fold().String(s)
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// JSON encodes the index as served to browsers.
func (ix *Index) JSON() ([]byte, error) {
	b, err := json.Marshal(ix)
	if err != nil {
		return nil, fmt.Errorf("JSON: %w", err)
	}
	return b, nil
}

// FileName returns the name of the index file. When hashed, the name carries
// part of the content hash so browsers never see a stale index.
func (ix *Index) FileName(hashed bool) (string, error) {
	if !hashed {
		return "search-index.json", nil
	}
	b, err := ix.JSON()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return "search-index-" + hex.EncodeToString(sum[:])[:8] + ".json", nil
}

// Options control Query.
type Options struct {
	Highlight    bool // Add "_highlight" parameters to result URLs
	ExplicitPath bool // Fill in Result.Path
	Limit        int  // Maximum results; zero means no limit
}

// Result is a matching document.
type Result struct {
	Route string `json:"route"`
	URL   string `json:"url"`
	Title string `json:"title"`
	Path  string `json:"path,omitempty"`
	Score int    `json:"score"`
}

// Query returns the documents matching any term of q, best first. Each matched
// term scores one, or two when it is part of the title.
func (ix *Index) Query(q string, opts Options) []Result {
	terms := Tokenize(q)
	if len(terms) == 0 {
		return nil
	}
	if ix.titleTerms == nil {
		ix.index()
	}
	scores := make(map[int]int)
	for _, term := range unique(terms) {
		for _, i := range ix.Terms[term] {
			if ix.titleTerms[i][term] {
				scores[i] += 2
			} else {
				scores[i]++
			}
		}
	}
	results := make([]Result, 0, len(scores))
	for i, score := range scores {
		d := ix.Documents[i]
		r := Result{Route: d.Route, URL: d.Route, Title: d.Title, Score: score}
		if opts.Highlight {
			v := url.Values{}
			for _, term := range unique(terms) {
				v.Add("_highlight", term)
			}
			r.URL += "?" + v.Encode()
		}
		if opts.ExplicitPath {
			r.Path = strings.Join(append(append([]string{}, d.Breadcrumb...), d.Title), BreadcrumbSeparator)
		}
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Route < results[j].Route
	})
	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results
}

func unique(list []string) []string {
	seen := make(map[string]bool, len(list))
	var result []string
	for _, s := range list {
		if !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	return result
}
