package content

import (
	"strings"
	"testing"

	"github.com/khaibq/my-website/site"
)

func testPrism() site.Prism {
	return site.Prism{
		AdditionalLanguages: []string{"java", "bash"},
		MagicComments: []site.MagicComment{
			{
				ClassName: "theme-code-block-highlighted-line",
				Line:      "highlight-next-line",
				Block:     &site.BlockRange{Start: "highlight-start", End: "highlight-end"},
			},
			{
				ClassName: "code-block-error-line",
				Line:      "This will error",
			},
		},
	}
}

func TestRenderMarkdown(t *testing.T) {
	md := "# Title\n\nSome *text*.\n\n## Part one\n\n### Detail\n\n#### Too deep\n"
	r := RenderMarkdown([]byte(md), MarkdownOptions{})
	if r.Title != "Title" {
		t.Errorf("Expected title \"Title\", got %q", r.Title)
	}
	if len(r.Headings) != 2 {
		t.Fatalf("Expected 2 headings, got %+v", r.Headings)
	}
	if r.Headings[0] != (Heading{Level: 2, ID: "part-one", Text: "Part one"}) {
		t.Errorf("Unexpected heading %+v", r.Headings[0])
	}
	if !strings.Contains(string(r.HTML), `<h2 id="part-one">Part one</h2>`) {
		t.Errorf("Unexpected HTML %s", r.HTML)
	}
	if !strings.HasPrefix(r.Text, "Title Some") || strings.Contains(r.Text, "<") {
		t.Errorf("Unexpected text %q", r.Text)
	}
}

func TestRenderMarkdownLinks(t *testing.T) {
	md := "[ok](./configurations.md#setup) [missing](../nope.md) [site](https://example.com/a.md) [anchor](#top)"
	var asked []string
	opts := MarkdownOptions{
		ResolveLink: func(dest string) (string, bool) {
			asked = append(asked, dest)
			if strings.HasPrefix(dest, "./configurations.md") {
				_, frag := SplitLink(dest)
				return "/docs/trading-bot/configurations" + frag, true
			}
			return "", false
		},
	}
	r := RenderMarkdown([]byte(md), opts)
	if len(asked) != 2 {
		t.Errorf("Expected 2 resolved links, got %v", asked)
	}
	if !strings.Contains(string(r.HTML), `href="/docs/trading-bot/configurations#setup"`) {
		t.Errorf("Expected rewritten link in %s", r.HTML)
	}
	if !strings.Contains(string(r.HTML), `href="https://example.com/a.md"`) {
		t.Errorf("Expected external link to stay in %s", r.HTML)
	}
	if len(r.BrokenLinks) != 1 || r.BrokenLinks[0] != "../nope.md" {
		t.Errorf("Unexpected broken links %v", r.BrokenLinks)
	}
}

func TestRenderMarkdownCode(t *testing.T) {
	md := "```java title=\"Main.java\"\n// highlight-next-line\nint a = 1;\nint b = 2;\n```\n\n```cobol\nDISPLAY 'X'.\n```\n"
	r := RenderMarkdown([]byte(md), MarkdownOptions{Prism: testPrism()})
	html := string(r.HTML)
	if !strings.Contains(html, `<div class="code-block-title">Main.java</div>`) {
		t.Errorf("Expected title in %s", html)
	}
	if !strings.Contains(html, `<span class="theme-code-block-highlighted-line">int a = 1;`) {
		t.Errorf("Expected highlighted line in %s", html)
	}
	if strings.Contains(html, "highlight-next-line") {
		t.Errorf("Expected magic comment to be removed in %s", html)
	}
	if len(r.UnknownLanguages) != 1 || r.UnknownLanguages[0] != "cobol" {
		t.Errorf("Unexpected unknown languages %v", r.UnknownLanguages)
	}
}

func TestParseCodeInfo(t *testing.T) {
	tests := []struct {
		info  string
		lang  string
		title string
		lines []int
	}{
		{"", "", "", nil},
		{"go", "go", "", nil},
		{"Go {1,3-4}", "go", "", []int{1, 3, 4}},
		{`js title="src/app.js" {2}`, "js", "src/app.js", []int{2}},
		{"title=main.go", "", "main.go", nil},
		{"bash {x,2}", "bash", "", []int{2}},
		{"go {1-100000000}", "go", "", []int{1, 2, 3, 4, 5}},
		{"go {0-2,4-3,9}", "go", "", nil},
	}
	for _, test := range tests {
		ci := parseCodeInfo(test.info, 5)
		if ci.Lang != test.lang || ci.Title != test.title {
			t.Errorf("%q: expected %q/%q but got %q/%q", test.info, test.lang, test.title, ci.Lang, ci.Title)
		}
		if len(ci.Lines) != len(test.lines) {
			t.Errorf("%q: expected lines %v but got %v", test.info, test.lines, ci.Lines)
			continue
		}
		for _, l := range test.lines {
			if !ci.Lines[l] {
				t.Errorf("%q: expected line %d to be set", test.info, l)
			}
		}
	}
}

func TestHighlightLines(t *testing.T) {
	code := strings.Join([]string{
		"a := 1",
		"// highlight-start",
		"b := 2",
		"c := 3",
		"// highlight-end",
		"# This will error",
		"d := 4",
		"e := 5",
	}, "\n") + "\n"
	lines := highlightLines(code, testPrism().MagicComments, map[int]bool{1: true})
	expect := []struct {
		text    string
		classes string
	}{
		{"a := 1", "theme-code-block-highlighted-line"},
		{"b := 2", "theme-code-block-highlighted-line"},
		{"c := 3", "theme-code-block-highlighted-line"},
		{"d := 4", "code-block-error-line"},
		{"e := 5", ""},
	}
	if len(lines) != len(expect) {
		t.Fatalf("Expected %d lines, got %+v", len(expect), lines)
	}
	for i, e := range expect {
		if lines[i].Text != e.text || strings.Join(lines[i].Classes, " ") != e.classes {
			t.Errorf("Line %d: expected %q %q but got %q %q", i, e.text, e.classes, lines[i].Text, lines[i].Classes)
		}
	}
}

func TestCommentText(t *testing.T) {
	tests := []struct {
		line   string
		expect string
		ok     bool
	}{
		{"  // highlight-next-line", "highlight-next-line", true},
		{"/* highlight-start */", "highlight-start", true},
		{"<!-- highlight-end -->", "highlight-end", true},
		{"{/* highlight-next-line */}", "highlight-next-line", true},
		{"-- This will error", "This will error", true},
		{"x := 1 // trailing", "", false},
	}
	for _, test := range tests {
		got, ok := commentText(test.line)
		if got != test.expect || ok != test.ok {
			t.Errorf("%q: expected %q %v but got %q %v", test.line, test.expect, test.ok, got, ok)
		}
	}
}

func TestLanguages(t *testing.T) {
	l := Languages([]string{"PowerShell"})
	if !l["powershell"] || !l["go"] || l["cobol"] {
		t.Errorf("Unexpected languages %v", l)
	}
}
