package content

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/khaibq/my-website/site"
)

// DefaultHighlightClass is used for "{1,3-5}" line ranges when no magic comment is configured.
const DefaultHighlightClass = "theme-code-block-highlighted-line"

// builtinLanguages are highlighted without being listed in additional_languages.
var builtinLanguages = []string{
	"markup", "html", "xml", "svg", "css", "clike", "javascript", "js", "jsx",
	"typescript", "ts", "tsx", "go", "c", "cpp", "python", "py", "rust", "graphql",
	"yaml", "yml", "markdown", "md", "swift", "kotlin", "objectivec", "reason",
	"text", "txt", "plaintext",
}

// Languages returns the set of highlighted languages.
func Languages(additional []string) map[string]bool {
	m := make(map[string]bool, len(builtinLanguages)+len(additional))
	for _, l := range builtinLanguages {
		m[l] = true
	}
	for _, l := range additional {
		m[strings.ToLower(l)] = true
	}
	return m
}

// codeInfo is the parsed info string of a fenced code block, like
// "go title="main.go" {1,3-4}".
type codeInfo struct {
	Lang  string
	Title string
	Lines map[int]bool // 1 based line numbers to highlight
}

var (
	titleRegexp = regexp.MustCompile(`title=(?:"([^"]*)"|'([^']*)'|(\S+))`)
	rangeRegexp = regexp.MustCompile(`\{([\d,\s-]+)\}`)
)

// parseCodeInfo reads info for a block of maxLine lines. Line ranges are
// clamped to the block.
func parseCodeInfo(info string, maxLine int) codeInfo {
	var ci codeInfo
	info = strings.TrimSpace(info)
	if f := strings.Fields(info); len(f) > 0 && !strings.HasPrefix(f[0], "{") && !strings.Contains(f[0], "=") {
		ci.Lang = strings.ToLower(f[0])
	}
	if m := titleRegexp.FindStringSubmatch(info); m != nil {
		ci.Title = m[1] + m[2] + m[3]
	}
	if m := rangeRegexp.FindStringSubmatch(info); m != nil {
		ci.Lines = parseLineRanges(m[1], maxLine)
	}
	return ci
}

// parseLineRanges parses "1,3-5" into a set of line numbers no greater than
// maxLine. Bad parts are ignored.
func parseLineRanges(s string, maxLine int) map[int]bool {
	lines := make(map[int]bool)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		from, to, isRange := strings.Cut(part, "-")
		a, err := strconv.Atoi(strings.TrimSpace(from))
		if err != nil {
			continue
		}
		b := a
		if isRange {
			if b, err = strconv.Atoi(strings.TrimSpace(to)); err != nil {
				continue
			}
		}
		b = min(b, maxLine)
		if a < 1 || a > b {
			continue
		}
		for i := a; i <= b; i++ {
			lines[i] = true
		}
	}
	return lines
}

// codeLine is a line of code and the classes applied to it.
type codeLine struct {
	Text    string
	Classes []string
}

// commentPrefixes and commentSuffixes cover the comment syntaxes magic comments
// may be written in.
var (
	commentPrefixes = []string{"{/*", "<!--", "/*", "//", "--", "#", ";", "%"}
	commentSuffixes = []string{"*/}", "-->", "*/"}
)

// commentText returns the text of a line consisting only of a comment.
func commentText(line string) (string, bool) {
	s := strings.TrimSpace(line)
	for _, p := range commentPrefixes {
		if strings.HasPrefix(s, p) {
			s = strings.TrimPrefix(s, p)
			for _, suf := range commentSuffixes {
				s = strings.TrimSuffix(strings.TrimSpace(s), suf)
			}
			return strings.TrimSpace(s), true
		}
	}
	return "", false
}

// highlightLines splits code into lines and applies the magic comments and
// highlighted line numbers. Lines holding only a magic comment are removed.
// Line numbers refer to the code as written, before comments are removed.
func highlightLines(code string, comments []site.MagicComment, numbered map[int]bool) []codeLine {
	code = strings.TrimSuffix(code, "\n")
	if code == "" {
		return nil
	}
	rangeClass := DefaultHighlightClass
	if len(comments) > 0 {
		rangeClass = comments[0].ClassName
	}
	var (
		result []codeLine
		next   []string
		active = make(map[string]int)
	)
	for i, line := range strings.Split(code, "\n") {
		if txt, ok := commentText(line); ok {
			matched := false
			for _, mc := range comments {
				switch {
				case mc.Line != "" && txt == mc.Line:
					next = appendUnique(next, mc.ClassName)
					matched = true
				case mc.Block != nil && txt == mc.Block.Start:
					active[mc.ClassName]++
					matched = true
				case mc.Block != nil && txt == mc.Block.End:
					if active[mc.ClassName] > 0 {
						active[mc.ClassName]--
					}
					matched = true
				}
			}
			if matched {
				continue
			}
		}
		cl := codeLine{Text: line, Classes: next}
		next = nil
		for _, mc := range comments {
			if active[mc.ClassName] > 0 {
				cl.Classes = appendUnique(cl.Classes, mc.ClassName)
			}
		}
		if numbered[i+1] {
			cl.Classes = appendUnique(cl.Classes, rangeClass)
		}
		result = append(result, cl)
	}
	return result
}

func appendUnique(list []string, s string) []string {
	for _, x := range list {
		if x == s {
			return list
		}
	}
	return append(list, s)
}
