package site

import (
	"errors"
	"fmt"
	"strings"
)

// Navbar item types.
const (
	NavLink           = ""                // Plain link using To or Href
	NavDocSidebar     = "doc_sidebar"     // Link to the first doc of a sidebar
	NavDoc            = "doc"             // Link to a single doc
	NavLocaleDropdown = "locale_dropdown" // Locale switcher
)

// Navbar holds the top navigation.
type Navbar struct {
	Title        string    `toml:"title"`
	HideOnScroll bool      `toml:"hide_on_scroll"`
	Logo         Logo      `toml:"logo"`
	Items        []NavItem `toml:"items"`
}

// Logo is the navbar image.
type Logo struct {
	Alt string `toml:"alt"`
	Src string `toml:"src"`
}

// NavItem is a navbar or footer entry. Internal links use To, external ones Href.
type NavItem struct {
	Type      string `toml:"type"`
	SidebarID string `toml:"sidebar_id"`
	DocID     string `toml:"doc_id"`
	Label     string `toml:"label"`
	To        string `toml:"to"`
	Href      string `toml:"href"`
	Position  string `toml:"position"` // "left" (default) or "right"
	ClassName string `toml:"class_name"`
	AriaLabel string `toml:"aria_label"`
}

// Footer holds the link groups at the bottom of each page.
type Footer struct {
	Style     string        `toml:"style"`
	Links     []FooterGroup `toml:"links"`
	Copyright string        `toml:"copyright"` // {year} is replaced with the current year
}

// FooterGroup is a titled column of footer links.
type FooterGroup struct {
	Title string    `toml:"title"`
	Items []NavItem `toml:"items"`
}

// IsRight reports whether the item belongs on the right side of the navbar.
func (n NavItem) IsRight() bool {
	return n.Position == "right"
}

// check validates the shape of an item without knowing the routes.
func (n NavItem) check() error {
	switch n.Type {
	case NavLocaleDropdown:
		return nil
	case NavDocSidebar:
		if n.SidebarID == "" {
			return errors.New("doc_sidebar item needs sidebar_id")
		}
		return nil
	case NavDoc:
		if n.DocID == "" {
			return errors.New("doc item needs doc_id")
		}
		return nil
	case NavLink:
	default:
		return fmt.Errorf("unknown item type %q", n.Type)
	}
	if n.To != "" && n.Href != "" {
		return fmt.Errorf("item %q sets both to and href", n.Label)
	}
	if n.To == "" && n.Href == "" {
		return fmt.Errorf("item %q needs to or href", n.Label)
	}
	if n.Href != "" && n.Label == "" && n.AriaLabel == "" {
		return fmt.Errorf("external item %q needs a label or aria_label", n.Href)
	}
	return nil
}

// ValidateLinks checks that every navbar and footer link points at something real:
// sidebars and docs must exist, internal paths must be routes and external URLs must be
// absolute http(s) URLs. hasRoute receives site paths without the base URL, like "/blog".
func (c *Config) ValidateLinks(sidebars Sidebars, hasDoc func(id string) bool, hasRoute func(p string) bool) error {
	var errs []error
	check := func(where string, n NavItem) {
		switch n.Type {
		case NavLocaleDropdown:
		case NavDocSidebar:
			if _, ok := sidebars[n.SidebarID]; !ok {
				errs = append(errs, fmt.Errorf("%s: unknown sidebar %q", where, n.SidebarID))
			}
		case NavDoc:
			if !hasDoc(n.DocID) {
				errs = append(errs, fmt.Errorf("%s: unknown doc %q", where, n.DocID))
			}
		default:
			if n.Href != "" {
				if err := checkExternalURL(n.Href); err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", where, err))
				}
				return
			}
			if !strings.HasPrefix(n.To, "/") {
				errs = append(errs, fmt.Errorf("%s: internal link %q must start with /", where, n.To))
			} else if !hasRoute(n.To) {
				errs = append(errs, fmt.Errorf("%s: link %q does not match any page", where, n.To))
			}
		}
	}
	for i, n := range c.Navbar.Items {
		check(fmt.Sprintf("navbar item %d (%s)", i, n.Label), n)
	}
	for _, g := range c.Footer.Links {
		for _, n := range g.Items {
			check(fmt.Sprintf("footer %q item %q", g.Title, n.Label), n)
		}
	}
	return errors.Join(errs...)
}
