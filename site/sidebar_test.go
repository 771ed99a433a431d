package site

import (
	"reflect"
	"strings"
	"testing"
)

const testSidebars = `
docsSidebar = ["introduction"]

workshops = [
  "intro-workshops",
  { type = "category", label = "Trading Bot with AWS", collapsed = false, link = { type = "generated-index" }, items = [
    "trading-bot/get-started",
    "trading-bot/configurations",
  ] },
  "aws-static-page",
  { type = "link", label = "GitHub", href = "https://github.com/khaibq" },
]

practice = ["intro-practice"]
`

func TestParseSidebars(t *testing.T) {
	sb, err := ParseSidebars([]byte(testSidebars))
	if err != nil {
		t.Fatal(err)
	}
	if ids := sb.IDs(); !reflect.DeepEqual(ids, []string{"docsSidebar", "practice", "workshops"}) {
		t.Errorf("Unexpected sidebar IDs %v", ids)
	}
	w := sb["workshops"]
	if len(w) != 4 {
		t.Fatalf("Expected 4 workshop items, got %d", len(w))
	}
	cat := w[1]
	if cat.Type != ItemCategory || cat.Collapsed || cat.Label != "Trading Bot with AWS" {
		t.Errorf("Unexpected category %+v", cat)
	}
	if cat.Link == nil || cat.Link.Type != GeneratedIndex || cat.Link.Slug != "category/trading-bot-with-aws" {
		t.Errorf("Unexpected category link %+v", cat.Link)
	}
	if w[3].Type != ItemLink || w[3].Href != "https://github.com/khaibq" {
		t.Errorf("Unexpected link item %+v", w[3])
	}

	expect := []string{"intro-workshops", "trading-bot/get-started", "trading-bot/configurations", "aws-static-page"}
	if docs := sb.Docs("workshops"); !reflect.DeepEqual(docs, expect) {
		t.Errorf("Expected %v but got %v", expect, docs)
	}
	if n := len(sb.DocIDs()); n != 6 {
		t.Errorf("Expected 6 doc IDs, got %d", n)
	}
	if cats := sb.Categories(); len(cats) != 1 {
		t.Errorf("Expected one generated index, got %d", len(cats))
	}
}

func TestSidebarFind(t *testing.T) {
	sb, err := ParseSidebars([]byte(testSidebars))
	if err != nil {
		t.Fatal(err)
	}
	id, trail, ok := sb.Find("trading-bot/configurations")
	if !ok || id != "workshops" || !reflect.DeepEqual(trail, []string{"Trading Bot with AWS"}) {
		t.Errorf("Unexpected result %q %v %v", id, trail, ok)
	}
	id, trail, ok = sb.Find("introduction")
	if !ok || id != "docsSidebar" || len(trail) != 0 {
		t.Errorf("Unexpected result %q %v %v", id, trail, ok)
	}
	if _, _, ok = sb.Find("missing"); ok {
		t.Error("Expected missing doc not to be found")
	}
}

func TestSidebarValidate(t *testing.T) {
	sb, err := ParseSidebars([]byte(testSidebars))
	if err != nil {
		t.Fatal(err)
	}
	docs := map[string]bool{
		"introduction":               true,
		"intro-workshops":            true,
		"trading-bot/get-started":    true,
		"trading-bot/configurations": true,
		"aws-static-page":            true,
		"intro-practice":             true,
	}
	if err := sb.Validate(func(id string) bool { return docs[id] }); err != nil {
		t.Errorf("Expected valid sidebars, got %v", err)
	}
	delete(docs, "aws-static-page")
	sb["practice"] = append(sb["practice"], SidebarItem{Type: ItemDoc, ID: "intro-practice"})
	err = sb.Validate(func(id string) bool { return docs[id] })
	if err == nil {
		t.Fatal("Expected an error")
	}
	for _, s := range []string{`unknown doc "aws-static-page"`, `lists doc "intro-practice" more than once`} {
		if !strings.Contains(err.Error(), s) {
			t.Errorf("Expected %q in %q", s, err)
		}
	}
}

func TestParseSidebarsErrors(t *testing.T) {
	tests := []string{
		`a = "not an array"`,
		`a = [1]`,
		`a = [{ type = "category" }]`,
		`a = [{ type = "link", label = "x" }]`,
		`a = [{ type = "bogus" }]`,
		`a = [{ type = "category", label = "x", link = { type = "doc" } }]`,
		`a = [{ type = "category", label = "x", items = [{ type = "doc" }] }]`,
	}
	for _, test := range tests {
		if _, err := ParseSidebars([]byte(test)); err == nil {
			t.Errorf("Expected error for %q", test)
		}
	}
}

func TestSlugify(t *testing.T) {
	tests := [][2]string{
		{"Trading Bot with AWS", "trading-bot-with-aws"},
		{"  C++ & Go!  ", "c-go"},
		{"already-a-slug", "already-a-slug"},
	}
	for _, test := range tests {
		if got := Slugify(test[0]); got != test[1] {
			t.Errorf("Slugify(%q): expected %q but got %q", test[0], test[1], got)
		}
	}
}
