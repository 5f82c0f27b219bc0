// Package sidebar loads the sidebar descriptor that groups docs into
// navigable trees.
//
// The descriptor is a YAML mapping from sidebar id to an ordered list of
// items:
//
//	tutorialSidebar:
//	  - intro
//	  - type: category
//	    label: Tutorial
//	    link: {type: doc, id: tutorial/index}
//	    items: [tutorial/setup, tutorial/deploy]
//	  - type: link
//	    label: GitHub
//	    href: https://github.com/devscast
//	  - type: autogenerated
//	    dir: guides
package sidebar

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	ferrors "github.com/devscast/siteconf/internal/foundation/errors"
)

// ItemType is the kind of a sidebar item.
type ItemType string

const (
	ItemDoc           ItemType = "doc"
	ItemCategory      ItemType = "category"
	ItemLink          ItemType = "link"
	ItemAutogenerated ItemType = "autogenerated"
)

// Item is one entry of a sidebar. A bare string in YAML is shorthand for a doc item.
type Item struct {
	Type  ItemType `yaml:"type"`
	ID    string   `yaml:"id,omitempty"`
	Label string   `yaml:"label,omitempty"`
	Href  string   `yaml:"href,omitempty"`
	Dir   string   `yaml:"dir,omitempty"`
	Link  *Item    `yaml:"link,omitempty"`
	Items []Item   `yaml:"items,omitempty"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (i *Item) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var id string
		if err := node.Decode(&id); err != nil {
			return err
		}
		*i = Item{Type: ItemDoc, ID: id}
		return nil
	}
	type plain Item
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*i = Item(p)
	if i.Type == "" {
		switch {
		case len(i.Items) > 0:
			i.Type = ItemCategory
		case i.Href != "":
			i.Type = ItemLink
		default:
			i.Type = ItemDoc
		}
	}
	return nil
}

// Sidebars maps a sidebar id to its items.
type Sidebars map[string][]Item

// Load reads the descriptor at path.
func Load(path string) (Sidebars, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ferrors.FileSystemError("sidebar file not found").WithContext("path", path).Build()
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read sidebar file").
			Fatal().WithContext("path", path).Build()
	}
	sb, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sb, nil
}

// Parse decodes a descriptor and checks its structure.
func Parse(data []byte) (Sidebars, error) {
	var sb Sidebars
	if err := yaml.Unmarshal(data, &sb); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to parse sidebar file").Fatal().Build()
	}
	if sb == nil {
		sb = Sidebars{}
	}
	var problems []error
	for _, id := range sb.IDs() {
		problems = append(problems, checkItems(id, sb[id])...)
	}
	if len(problems) > 0 {
		return nil, ferrors.WrapError(errors.Join(problems...), ferrors.CategoryValidation, "invalid sidebar file").Fatal().Build()
	}
	return sb, nil
}

func checkItems(prefix string, items []Item) []error {
	var problems []error
	for idx, it := range items {
		field := fmt.Sprintf("%s[%d]", prefix, idx)
		switch it.Type {
		case ItemDoc:
			if it.ID == "" {
				problems = append(problems, fmt.Errorf("%s: doc item needs an id", field))
			}
		case ItemCategory:
			if it.Label == "" {
				problems = append(problems, fmt.Errorf("%s: category needs a label", field))
			}
			if it.Link != nil && (it.Link.Type != ItemDoc || it.Link.ID == "") {
				problems = append(problems, fmt.Errorf("%s.link: only doc links with an id are supported", field))
			}
			problems = append(problems, checkItems(field+".items", it.Items)...)
		case ItemLink:
			if it.Label == "" || it.Href == "" {
				problems = append(problems, fmt.Errorf("%s: link needs a label and an href", field))
			}
		case ItemAutogenerated:
			if it.Dir == "" {
				problems = append(problems, fmt.Errorf("%s: autogenerated item needs a dir", field))
			}
		default:
			problems = append(problems, fmt.Errorf("%s: unknown item type %q", field, it.Type))
		}
	}
	return problems
}

// IDs returns the sidebar ids, sorted.
func (s Sidebars) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Has reports whether a sidebar with the given id exists.
func (s Sidebars) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// DocIDs returns the doc ids referenced explicitly by any sidebar, in
// declaration order and without duplicates.
func (s Sidebars) DocIDs() []string {
	seen := map[string]bool{}
	var out []string
	for _, id := range s.IDs() {
		walk(s[id], func(it Item) {
			var ref string
			switch {
			case it.Type == ItemDoc:
				ref = it.ID
			case it.Type == ItemCategory && it.Link != nil:
				ref = it.Link.ID
			}
			if ref != "" && !seen[ref] {
				seen[ref] = true
				out = append(out, ref)
			}
		})
	}
	return out
}

// Validate checks every doc reference against the known doc ids. An
// autogenerated item must match at least one doc under its directory.
func (s Sidebars) Validate(knownDocs []string) error {
	known := make(map[string]bool, len(knownDocs))
	for _, d := range knownDocs {
		known[d] = true
	}
	var problems []error
	for _, id := range s.IDs() {
		walk(s[id], func(it Item) {
			switch it.Type {
			case ItemDoc:
				if !known[it.ID] {
					problems = append(problems, fmt.Errorf("sidebar %q references unknown doc %q", id, it.ID))
				}
			case ItemCategory:
				if it.Link != nil && !known[it.Link.ID] {
					problems = append(problems, fmt.Errorf("sidebar %q category %q links unknown doc %q", id, it.Label, it.Link.ID))
				}
			case ItemAutogenerated:
				if len(docsUnder(it.Dir, knownDocs)) == 0 {
					problems = append(problems, fmt.Errorf("sidebar %q autogenerates from %q which contains no docs", id, it.Dir))
				}
			}
		})
	}
	if len(problems) == 0 {
		return nil
	}
	return ferrors.WrapError(errors.Join(problems...), ferrors.CategoryValidation, "sidebar references unknown docs").
		Fatal().
		WithContext("problems", len(problems)).
		Build()
}

// FirstDoc returns the first doc reached when opening sidebar id, which is
// where a docSidebar navbar item points.
func (s Sidebars) FirstDoc(id string, knownDocs []string) (string, bool) {
	var first string
	walk(s[id], func(it Item) {
		if first != "" {
			return
		}
		switch it.Type {
		case ItemDoc:
			first = it.ID
		case ItemCategory:
			if it.Link != nil {
				first = it.Link.ID
			}
		case ItemAutogenerated:
			if docs := docsUnder(it.Dir, knownDocs); len(docs) > 0 {
				first = docs[0]
			}
		}
	})
	return first, first != ""
}

func walk(items []Item, fn func(Item)) {
	for _, it := range items {
		fn(it)
		if len(it.Items) > 0 {
			walk(it.Items, fn)
		}
	}
}

// docsUnder returns the sorted doc ids under dir; "." and "" select all docs.
func docsUnder(dir string, knownDocs []string) []string {
	dir = strings.Trim(dir, "/")
	var out []string
	for _, d := range knownDocs {
		if dir == "." || dir == "" || strings.HasPrefix(d, dir+"/") {
			out = append(out, d)
		}
	}
	sort.Strings(out)
	return out
}
