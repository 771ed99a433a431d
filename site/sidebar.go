package site

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"unicode"

	"github.com/pelletier/go-toml/v2"
)

// SidebarFile is the default name of the sidebar file.
const SidebarFile = "sidebars.toml"

// ItemType is the kind of a sidebar entry.
type ItemType string

const (
	ItemDoc      ItemType = "doc"
	ItemCategory ItemType = "category"
	ItemLink     ItemType = "link"
)

// Category link types.
const (
	GeneratedIndex = "generated-index"
	DocLink        = "doc"
)

// SidebarItem is one entry in a sidebar. Which fields are used depends on Type.
type SidebarItem struct {
	Type      ItemType
	ID        string // Doc ID, for ItemDoc
	Label     string // Display label; docs fall back to their title
	Href      string // Target, for ItemLink
	Collapsed bool   // Initial state, for ItemCategory
	Link      *CategoryLink
	Items     []SidebarItem
}

// CategoryLink makes a category clickable.
type CategoryLink struct {
	Type        string // GeneratedIndex or DocLink
	ID          string // Doc ID for DocLink
	Slug        string // Route of the generated index, relative to the docs route
	Title       string
	Description string
}

// Sidebars maps a sidebar ID to its ordered items.
//
// In TOML each sidebar is an array where a string is a doc ID and an inline
// table is a category or link:
//
//	workshops = [
//	  "intro-workshops",
//	  { type = "category", label = "Trading Bot", collapsed = false, link = { type = "generated-index" }, items = [
//	    "trading-bot/get-started",
//	  ] },
//	]
type Sidebars map[string][]SidebarItem

// LoadSidebars reads and parses the named sidebar file from fsys.
func LoadSidebars(fsys fs.FS, name string) (Sidebars, error) {
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("LoadSidebars: %w", err)
	}
	return ParseSidebars(b)
}

// ParseSidebars decodes sidebar data.
func ParseSidebars(b []byte) (Sidebars, error) {
	var raw map[string]any
	if err := toml.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("ParseSidebars: %w", err)
	}
	result := make(Sidebars, len(raw))
	for id, v := range raw {
		arr, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("ParseSidebars: sidebar %q must be an array", id)
		}
		items, err := parseItems(id, arr)
		if err != nil {
			return nil, fmt.Errorf("ParseSidebars: %w", err)
		}
		result[id] = items
	}
	return result, nil
}

func parseItems(where string, arr []any) ([]SidebarItem, error) {
	items := make([]SidebarItem, 0, len(arr))
	for i, v := range arr {
		loc := fmt.Sprintf("%s[%d]", where, i)
		switch x := v.(type) {
		case string:
			items = append(items, SidebarItem{Type: ItemDoc, ID: x})
		case map[string]any:
			item, err := parseItem(loc, x)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		default:
			return nil, fmt.Errorf("%s: expected a doc ID or a table, got %T", loc, v)
		}
	}
	return items, nil
}

func parseItem(loc string, m map[string]any) (SidebarItem, error) {
	str := func(k string) string {
		s, _ := m[k].(string)
		return s
	}
	item := SidebarItem{
		Type:  ItemType(str("type")),
		Label: str("label"),
	}
	switch item.Type {
	case ItemDoc:
		item.ID = str("id")
		if item.ID == "" {
			return item, fmt.Errorf("%s: doc needs an id", loc)
		}
	case ItemLink:
		item.Href = str("href")
		if item.Href == "" || item.Label == "" {
			return item, fmt.Errorf("%s: link needs label and href", loc)
		}
	case ItemCategory:
		if item.Label == "" {
			return item, fmt.Errorf("%s: category needs a label", loc)
		}
		item.Collapsed = true
		if c, ok := m["collapsed"].(bool); ok {
			item.Collapsed = c
		}
		if l, ok := m["link"].(map[string]any); ok {
			link := &CategoryLink{}
			link.Type, _ = l["type"].(string)
			link.ID, _ = l["id"].(string)
			link.Slug, _ = l["slug"].(string)
			link.Title, _ = l["title"].(string)
			link.Description, _ = l["description"].(string)
			switch link.Type {
			case GeneratedIndex:
				if link.Slug == "" {
					link.Slug = "category/" + Slugify(item.Label)
				}
				link.Slug = strings.Trim(link.Slug, "/")
			case DocLink:
				if link.ID == "" {
					return item, fmt.Errorf("%s: doc link needs an id", loc)
				}
			default:
				return item, fmt.Errorf("%s: unknown category link type %q", loc, link.Type)
			}
			item.Link = link
		}
		children, _ := m["items"].([]any)
		var err error
		item.Items, err = parseItems(loc+"."+item.Label, children)
		if err != nil {
			return item, err
		}
	default:
		return item, fmt.Errorf("%s: unknown item type %q", loc, item.Type)
	}
	return item, nil
}

// IDs returns the sidebar IDs in sorted order.
func (s Sidebars) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Docs returns the doc IDs of a sidebar in reading order, including docs that
// category links point to.
func (s Sidebars) Docs(sidebarID string) []string {
	var ids []string
	walkItems(s[sidebarID], nil, func(item SidebarItem, _ []SidebarItem) {
		switch {
		case item.Type == ItemDoc:
			ids = append(ids, item.ID)
		case item.Type == ItemCategory && item.Link != nil && item.Link.Type == DocLink:
			ids = append(ids, item.Link.ID)
		}
	})
	return ids
}

// DocIDs returns every doc ID referenced by any sidebar, without duplicates.
func (s Sidebars) DocIDs() []string {
	var (
		ids  []string
		seen = make(map[string]bool)
	)
	for _, sb := range s.IDs() {
		for _, id := range s.Docs(sb) {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// Categories returns every category with a generated index, in sidebar order.
func (s Sidebars) Categories() []SidebarItem {
	var cats []SidebarItem
	for _, sb := range s.IDs() {
		walkItems(s[sb], nil, func(item SidebarItem, _ []SidebarItem) {
			if item.Type == ItemCategory && item.Link != nil && item.Link.Type == GeneratedIndex {
				cats = append(cats, item)
			}
		})
	}
	return cats
}

// Find returns the sidebar containing docID and the labels of the categories
// leading to it. When a doc appears in several sidebars the first by ID wins.
func (s Sidebars) Find(docID string) (sidebarID string, trail []string, ok bool) {
	for _, sb := range s.IDs() {
		walkItems(s[sb], nil, func(item SidebarItem, parents []SidebarItem) {
			if ok {
				return
			}
			if (item.Type == ItemDoc && item.ID == docID) ||
				(item.Type == ItemCategory && item.Link != nil && item.Link.ID == docID) {
				sidebarID, ok = sb, true
				for _, p := range parents {
					trail = append(trail, p.Label)
				}
			}
		})
		if ok {
			return sidebarID, trail, true
		}
	}
	return "", nil, false
}

// Validate makes sure every referenced doc exists and that no doc is listed twice
// within the same sidebar.
func (s Sidebars) Validate(hasDoc func(id string) bool) error {
	var errs []error
	for _, sb := range s.IDs() {
		seen := make(map[string]bool)
		for _, id := range s.Docs(sb) {
			if !hasDoc(id) {
				errs = append(errs, fmt.Errorf("sidebar %q references unknown doc %q", sb, id))
			}
			if seen[id] {
				errs = append(errs, fmt.Errorf("sidebar %q lists doc %q more than once", sb, id))
			}
			seen[id] = true
		}
	}
	return errors.Join(errs...)
}

// walkItems visits items depth first, passing the chain of parent categories.
func walkItems(items []SidebarItem, parents []SidebarItem, fn func(SidebarItem, []SidebarItem)) {
	for _, item := range items {
		fn(item, parents)
		if item.Type == ItemCategory {
			walkItems(item.Items, append(parents[:len(parents):len(parents)], item), fn)
		}
	}
}

// Slugify turns a label into a URL segment: lower case letters and digits
// separated by single dashes.
func Slugify(s string) string {
	var (
		b    strings.Builder
		dash bool
	)
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
		} else {
			dash = true
		}
	}
	return b.String()
}
