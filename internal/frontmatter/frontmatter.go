// Package frontmatter separates YAML front matter from Markdown content.
package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// Document is a Markdown file split into front matter and body.
type Document struct {
	// Frontmatter is the raw YAML between the delimiters, without them.
	Frontmatter []byte
	// Body is the Markdown after the closing delimiter.
	Body []byte
	// Had reports whether the file started with a front matter block.
	Had bool
	// BodyLine is the 1-based line number of the first body line in the file.
	BodyLine int
}

// Split separates YAML front matter (`---` delimited) from the Markdown body.
//
// If the document does not start with a front matter delimiter, Had is false
// and Body is the full input.
func Split(content []byte) (Document, error) {
	nl := detectNewline(content)
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return Document{Body: content, BodyLine: 1}, nil
	}

	start := len(open)
	closeLine := []byte("---" + nl)
	if bytes.HasPrefix(content[start:], closeLine) {
		return Document{Frontmatter: []byte{}, Body: content[start+len(closeLine):], Had: true, BodyLine: 3}, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(content[start:], closeSeq)
	if idx < 0 {
		// A closing delimiter at end of file without a trailing newline.
		tail := []byte(nl + "---")
		if bytes.HasSuffix(content, tail) {
			fm := content[start : len(content)-len(tail)+len(nl)]
			return Document{Frontmatter: fm, Body: []byte{}, Had: true, BodyLine: bytes.Count(content, []byte("\n")) + 2}, nil
		}
		return Document{}, ErrMissingClosingDelimiter
	}

	fmEnd := start + idx + len(nl)
	bodyStart := start + idx + len(closeSeq)
	return Document{
		Frontmatter: content[start:fmEnd],
		Body:        content[bodyStart:],
		Had:         true,
		BodyLine:    bytes.Count(content[:bodyStart], []byte("\n")) + 1,
	}, nil
}

// ParseYAML parses raw YAML front matter (without --- delimiters) into a map.
func ParseYAML(frontmatter []byte) (map[string]any, error) {
	if len(frontmatter) == 0 {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(frontmatter, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// Decode unmarshals raw YAML front matter into out. Empty input leaves out untouched.
func Decode(frontmatter []byte, out any) error {
	if len(bytes.TrimSpace(frontmatter)) == 0 {
		return nil
	}
	return yaml.Unmarshal(frontmatter, out)
}

// ErrMissingClosingDelimiter indicates the document started with a YAML
// front matter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

func detectNewline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
