package virtual

import (
	"github.com/khaibq/my-website/site"
)

// Docs the home page links to.
const (
	WorkshopsDoc = "intro-workshops"
	CheatSheets  = "introduction"
	PracticeDoc  = "intro-practice"
)

// HomeData feeds the "hero" and "features" templates. It is built from the
// configuration alone, so rendering it is repeatable.
type HomeData struct {
	Title        string
	Tagline      string
	Logo         string
	LogoAlt      string
	GetStarted   Link
	SectionTitle string
	Features     []Feature
}

// Feature is a block of the features grid.
type Feature struct {
	Title       string
	Description string
	Link        Link
}

// NewHomeData returns the hero and features of the home page. prefix is the
// path of the locale, "" for the default one.
func NewHomeData(cfg *site.Config, prefix string) *HomeData {
	doc := func(id string) string {
		return cfg.Path(prefix + "/" + cfg.Docs.RouteBasePath + "/" + id)
	}
	h := &HomeData{
		Title:        cfg.Title,
		Tagline:      cfg.Tagline,
		LogoAlt:      cfg.Navbar.Logo.Alt,
		GetStarted:   Link{Label: "Get started\u00a0\u00a0→", URL: doc(WorkshopsDoc)},
		SectionTitle: "Feature section with main topics",
		Features: []Feature{
			{
				Title:       "☸️ Selective Workshops",
				Description: "My owned workshops with real world scenarios to improve skills and hands on experiences.",
				Link:        Link{Label: "Learn more", URL: doc(WorkshopsDoc)},
			},
			{
				Title:       "🔆 AWS Cheat Sheets",
				Description: "Vietnamese version only. Hope that this will help for newbies who are still difficult with English technical terms.",
				Link:        Link{Label: "Learn more", URL: doc(CheatSheets)},
			},
			{
				Title:       "🔯 Code Practice",
				Description: "A dashboard for Code Practice.",
				Link:        Link{Label: "Learn more", URL: doc(PracticeDoc)},
			},
		},
	}
	if cfg.Navbar.Logo.Src != "" {
		h.Logo = cfg.Path(cfg.Navbar.Logo.Src)
	}
	return h
}
