package search

import (
	"regexp"
	"testing"

	"golang.org/x/text/language"
)

func testIndex(t *testing.T) *Index {
	t.Helper()
	ix, err := Build([]string{"en"}, []Document{
		{
			Route:      "/docs/trading-bot/get-started",
			Title:      "Get started",
			Breadcrumb: []string{"Workshops", "Trading Bot with AWS"},
			Text:       "Deploy the trading bot with AWS Lambda.",
		},
		{
			Route: "/docs/aws/lambda",
			Title: "Lambda",
			Text:  "Functions without servers.",
		},
		{
			Route:    "/docs/intro",
			Title:    "Introduction",
			Headings: []string{"Why Lambda"},
			Text:     "Welcome.",
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return ix
}

func TestTokenize(t *testing.T) {
	got := Tokenize("Hello, AWS-Lambda! v2 Straße")
	expect := []string{"hello", "aws", "lambda", "v2", "strasse"}
	if len(got) != len(expect) {
		t.Fatalf("Expected %v but got %v", expect, got)
	}
	for i := range expect {
		if got[i] != expect[i] {
			t.Errorf("Token %d: expected %q but got %q", i, expect[i], got[i])
		}
	}
}

func TestQuery(t *testing.T) {
	ix := testIndex(t)
	results := ix.Query("LAMBDA", Options{})
	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %+v", results)
	}
	if results[0].Route != "/docs/aws/lambda" || results[0].Score != 2 {
		t.Errorf("Expected title match first, got %+v", results[0])
	}
	if results[1].Route != "/docs/intro" || results[2].Route != "/docs/trading-bot/get-started" {
		t.Errorf("Expected ties ordered by route, got %+v", results)
	}
	if results[0].URL != results[0].Route || results[0].Path != "" {
		t.Errorf("Expected plain result, got %+v", results[0])
	}

	if r := ix.Query("  ?? ", Options{}); r != nil {
		t.Errorf("Expected no results, got %+v", r)
	}
	if r := ix.Query("lambda", Options{Limit: 1}); len(r) != 1 {
		t.Errorf("Expected 1 result, got %d", len(r))
	}
}

func TestQueryOptions(t *testing.T) {
	ix := testIndex(t)
	results := ix.Query("trading bot", Options{Highlight: true, ExplicitPath: true})
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %+v", results)
	}
	r := results[0]
	if r.URL != "/docs/trading-bot/get-started?_highlight=trading&_highlight=bot" {
		t.Errorf("Unexpected URL %q", r.URL)
	}
	if r.Path != "Workshops › Trading Bot with AWS › Get started" {
		t.Errorf("Unexpected path %q", r.Path)
	}
}

func TestFileName(t *testing.T) {
	ix := testIndex(t)
	name, err := ix.FileName(false)
	if err != nil || name != "search-index.json" {
		t.Errorf("Unexpected name %q (%v)", name, err)
	}
	name, err = ix.FileName(true)
	if err != nil {
		t.Fatal(err)
	}
	if !regexp.MustCompile(`^search-index-[0-9a-f]{8}\.json$`).MatchString(name) {
		t.Errorf("Unexpected hashed name %q", name)
	}
	again, _ := testIndex(t).FileName(true)
	if again != name {
		t.Errorf("Expected stable hash, got %q and %q", name, again)
	}
}

func TestBuildLanguages(t *testing.T) {
	if _, err := Build([]string{"not a tag!"}, nil); err == nil {
		t.Error("Expected error for invalid language")
	}
	if !Supported(language.MustParse("en-US")) || Supported(language.Vietnamese) {
		t.Error("Unexpected Supported result")
	}
}
