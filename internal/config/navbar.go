package config

import (
	"strconv"

	"github.com/devscast/siteconf/internal/foundation/normalization"
)

// NavbarItemType is the kind of a navbar entry.
type NavbarItemType string

const (
	NavbarDefault        NavbarItemType = "default"
	NavbarDocSidebar     NavbarItemType = "docSidebar"
	NavbarDoc            NavbarItemType = "doc"
	NavbarDropdown       NavbarItemType = "dropdown"
	NavbarLocaleDropdown NavbarItemType = "localeDropdown"
	NavbarSearch         NavbarItemType = "search"
	NavbarHTML           NavbarItemType = "html"
)

var navbarItemTypeNormalizer = normalization.NewNormalizer(map[string]NavbarItemType{
	"default":        NavbarDefault,
	"docSidebar":     NavbarDocSidebar,
	"doc":            NavbarDoc,
	"dropdown":       NavbarDropdown,
	"localeDropdown": NavbarLocaleDropdown,
	"search":         NavbarSearch,
	"html":           NavbarHTML,
}, NavbarDefault)

// NormalizeNavbarItemType returns the canonical type, or "" when raw is unknown.
func NormalizeNavbarItemType(raw string) NavbarItemType {
	v, _ := navbarItemTypeNormalizer.Lookup(raw)
	return v
}

// NavbarPosition is the side of the navbar an item is rendered on.
type NavbarPosition string

const (
	PositionLeft  NavbarPosition = "left"
	PositionRight NavbarPosition = "right"
)

var navbarPositionNormalizer = normalization.NewNormalizer(map[string]NavbarPosition{
	"left":  PositionLeft,
	"right": PositionRight,
}, PositionLeft)

// NormalizeNavbarPosition returns the canonical position, or "" when raw is unknown.
func NormalizeNavbarPosition(raw string) NavbarPosition {
	v, _ := navbarPositionNormalizer.Lookup(raw)
	return v
}

// NavbarSegments is the navbar split by position. Within a segment items
// appear in the order they were declared.
type NavbarSegments struct {
	Left  []NavbarItem `yaml:"left"`
	Right []NavbarItem `yaml:"right"`
}

// NavbarSegments partitions the navbar items by position without reordering.
func (c *Config) NavbarSegments() NavbarSegments {
	var seg NavbarSegments
	for _, item := range c.ThemeConfig.Navbar.Items {
		if item.Position == PositionRight {
			seg.Right = append(seg.Right, item)
			continue
		}
		seg.Left = append(seg.Left, item)
	}
	return seg
}

// WalkNavbar visits every navbar item depth-first, dropdown children after their parent.
func (c *Config) WalkNavbar(fn func(path string, item NavbarItem)) {
	var walk func(prefix string, items []NavbarItem)
	walk = func(prefix string, items []NavbarItem) {
		for i, item := range items {
			p := prefix + "[" + strconv.Itoa(i) + "]"
			fn(p, item)
			if len(item.Items) > 0 {
				walk(p+".items", item.Items)
			}
		}
	}
	walk("theme_config.navbar.items", c.ThemeConfig.Navbar.Items)
}
