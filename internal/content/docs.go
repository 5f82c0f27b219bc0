package content

import (
	"path"
	"regexp"
	"strings"

	"github.com/devscast/siteconf/internal/markdown"
)

type docMeta struct {
	ID           string   `yaml:"id"`
	Title        string   `yaml:"title"`
	Slug         string   `yaml:"slug"`
	SidebarLabel string   `yaml:"sidebar_label"`
	Tags         []string `yaml:"tags"`
	Draft        bool     `yaml:"draft"`
}

// numberPrefix matches ordering prefixes such as "01-" or "2_" on file and directory names.
var numberPrefix = regexp.MustCompile(`^\d+[-_.]\s*`)

func stripNumberPrefix(name string) string {
	if stripped := numberPrefix.ReplaceAllString(name, ""); stripped != "" {
		return stripped
	}
	return name
}

// parseDoc builds a doc. Drafts yield nil.
func parseDoc(f *file, locale string) (*Document, error) {
	var meta docMeta
	if err := decodeMeta(f, &meta); err != nil {
		return nil, err
	}
	if meta.Draft {
		return nil, nil
	}

	dir, name := splitRel(f.relPath)

	d := newDocument(KindDoc, f, locale)
	d.ID = docID(dir, name, meta.ID)
	d.Slug = docSlug(dir, name, meta.Slug)
	d.Tags = meta.Tags
	d.Title = meta.Title
	if d.Title == "" {
		d.Title = titleFromBody(f)
	}
	if d.Title == "" {
		d.Title = name
	}
	return d, nil
}

// splitRel returns the prefix-stripped directory and file name (without
// extension) of a content-relative path.
func splitRel(rel string) (dir, name string) {
	dir = path.Dir(rel)
	if dir == "." {
		dir = ""
	} else {
		segs := strings.Split(dir, "/")
		for i, s := range segs {
			segs[i] = stripNumberPrefix(s)
		}
		dir = strings.Join(segs, "/")
	}
	base := path.Base(rel)
	name = stripNumberPrefix(strings.TrimSuffix(base, path.Ext(base)))
	return dir, name
}

// docID is dir/name, where an explicit front matter id replaces the name.
func docID(dir, name, explicit string) string {
	if explicit != "" {
		name = explicit
	}
	if dir == "" {
		return name
	}
	return dir + "/" + name
}

// docSlug returns the route of a doc relative to the docs route base. An
// absolute front matter slug is used as is, a relative one is resolved
// against the doc's directory. Index and README files, and files named after
// their directory, take the directory's route.
func docSlug(dir, name, explicit string) string {
	switch {
	case strings.HasPrefix(explicit, "/"):
		return path.Clean(explicit)
	case explicit != "":
		return path.Join("/", dir, explicit)
	}
	lower := strings.ToLower(name)
	if lower == "index" || lower == "readme" || (dir != "" && name == path.Base(dir)) {
		return path.Join("/", dir)
	}
	return path.Join("/", dir, name)
}

func titleFromBody(f *file) string {
	if !IsMarkdown(f.relPath) {
		return ""
	}
	return markdown.ExtractTitle(f.doc.Body)
}
