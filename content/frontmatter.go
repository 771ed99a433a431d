package content

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// fmRegexp is the regular expression used to split out front matter.
var fmRegexp = regexp.MustCompile(`(?m)^\s*\+\+\+\s*$`)

// extractFrontMatter splits the front matter and Markdown content.
func extractFrontMatter(x []byte) (fm, r []byte) {
	subs := fmRegexp.Split(string(x), 3)
	if len(subs) != 3 {
		return nil, x
	}
	if s := strings.TrimSpace(subs[0]); len(s) > 0 {
		return nil, x
	}
	return []byte(strings.TrimSpace(subs[1])), []byte(strings.TrimSpace(subs[2]))
}

// parseFrontMatter splits b and unmarshals the front matter into v.
// The Markdown body is returned.
func parseFrontMatter(name string, b []byte, v any) ([]byte, error) {
	fm, body := extractFrontMatter(b)
	if len(fm) > 0 {
		if err := toml.Unmarshal(fm, v); err != nil {
			return nil, fmt.Errorf("front matter of %s: %w", name, err)
		}
	}
	return body, nil
}

// LastUpdate records who changed a file last and when.
type LastUpdate struct {
	Author string    `toml:"author"`
	Date   time.Time `toml:"date"`
}

// IsZero reports whether nothing is known about the update.
func (lu LastUpdate) IsZero() bool {
	return lu.Author == "" && lu.Date.IsZero()
}
