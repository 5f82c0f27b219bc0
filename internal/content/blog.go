package content

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"
)

type postMeta struct {
	Title string   `yaml:"title"`
	Slug  string   `yaml:"slug"`
	Date  string   `yaml:"date"`
	Tags  []string `yaml:"tags"`
	Draft bool     `yaml:"draft"`
}

// datePrefix matches the YYYY-MM-DD- prefix of a post file or directory name.
var datePrefix = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})[-/](.+)$`)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05 -0700",
}

func parseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

// parsePost builds a blog post. Drafts yield nil.
//
// The date comes from the date front matter field, else from a YYYY-MM-DD-
// file name prefix, else from the file modification time. Dated posts are
// routed under YYYY/MM/DD/<slug> unless front matter sets a slug.
func parsePost(f *file, locale string) (*Document, error) {
	var meta postMeta
	if err := decodeMeta(f, &meta); err != nil {
		return nil, err
	}
	if meta.Draft {
		return nil, nil
	}

	name := strings.TrimSuffix(f.relPath, path.Ext(f.relPath))
	name = strings.TrimSuffix(name, "/index")

	var date time.Time
	dated := false
	if m := datePrefix.FindStringSubmatch(name); m != nil {
		if t, err := time.Parse("2006-01-02", m[1]); err == nil {
			date, dated, name = t, true, m[2]
		}
	}
	if meta.Date != "" {
		t, err := parseDate(meta.Date)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.sitePath(), err)
		}
		date, dated = t, true
	}
	if !dated {
		date = time.Unix(f.modTime, 0).UTC()
	}

	d := newDocument(KindPost, f, locale)
	d.Date = date
	d.Tags = meta.Tags
	d.ReadingTime = readingTime(f.doc.Body)
	d.ID = name
	switch {
	case meta.Slug != "":
		d.Slug = path.Join("/", meta.Slug)
	case dated:
		d.Slug = path.Join("/", date.Format("2006/01/02"), name)
	default:
		d.Slug = path.Join("/", name)
	}
	d.Title = meta.Title
	if d.Title == "" {
		d.Title = titleFromBody(f)
	}
	if d.Title == "" {
		d.Title = path.Base(name)
	}
	return d, nil
}
