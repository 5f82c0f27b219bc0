package content

import (
	"path"
	"strings"
)

type pageMeta struct {
	Title string `yaml:"title"`
	Slug  string `yaml:"slug"`
	Draft bool   `yaml:"draft"`
}

// parsePage builds a standalone page. Its route mirrors its path, with
// index files taking their directory's route.
func parsePage(f *file, locale string) (*Document, error) {
	var meta pageMeta
	if f.doc.Had {
		if err := decodeMeta(f, &meta); err != nil {
			return nil, err
		}
	}
	if meta.Draft {
		return nil, nil
	}

	route := strings.TrimSuffix(f.relPath, path.Ext(f.relPath))
	if path.Base(route) == "index" {
		route = path.Dir(route)
	}

	d := newDocument(KindPage, f, locale)
	d.ID = strings.TrimSuffix(f.relPath, path.Ext(f.relPath))
	d.Slug = path.Join("/", route)
	if meta.Slug != "" {
		d.Slug = path.Join("/", meta.Slug)
	}
	d.Title = meta.Title
	if d.Title == "" {
		d.Title = titleFromBody(f)
	}
	return d, nil
}
