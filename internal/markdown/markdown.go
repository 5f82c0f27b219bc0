package markdown

import (
	"bytes"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// ExtractLinks parses a Markdown body (front matter already removed) and
// extracts link-like constructs with their line numbers.
//
// Inline links, images, autolinks and reference definitions come from the
// Goldmark AST; anchors and images inside raw HTML are read with an HTML
// tokenizer. Code spans and code blocks never yield links.
func ExtractLinks(body []byte, opts Options) []Link {
	md := goldmark.New()
	ctx := parser.NewContext()
	root := md.Parser().Parse(text.NewReader(body), parser.WithContext(ctx))
	lines := newLineIndex(body, opts.FirstLine)

	links := make([]Link, 0)
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *gmast.AutoLink:
			dest := node.URL(body)
			links = append(links, Link{Kind: LinkKindAuto, Destination: string(dest), Line: lines.at(locate(node, body, dest))})
		case *gmast.Image:
			links = append(links, Link{Kind: LinkKindImage, Destination: string(node.Destination), Line: lines.at(locate(node, body, node.Destination))})
		case *gmast.Link:
			// Reference-style links resolve to a Link node with a Destination.
			links = append(links, Link{Kind: LinkKindInline, Destination: string(node.Destination), Line: lines.at(locate(node, body, node.Destination))})
		case *gmast.RawHTML:
			links = append(links, extractHTMLLinks(newHTMLSource(node.Segments, body), lines)...)
		case *gmast.HTMLBlock:
			links = append(links, extractHTMLLinks(newHTMLSource(node.Lines(), body), lines)...)
		}
		return gmast.WalkContinue, nil
	})

	// Reference definitions are stored in the parse context (not represented as AST nodes).
	refs := ctx.References()
	sort.Slice(refs, func(i, j int) bool {
		return string(refs[i].Label()) < string(refs[j].Label())
	})
	for _, ref := range refs {
		links = append(links, Link{
			Kind:        LinkKindReferenceDefinition,
			Destination: string(ref.Destination()),
			Line:        lines.at(findReferenceDefinition(body, ref.Label())),
		})
	}

	// Goldmark follows CommonMark strictly and drops destinations containing
	// spaces, which authors still write and expect to be checked.
	links = append(links, extractSpacedLinks(body, lines.first)...)

	return links
}

// ExtractTitle returns the text of the first level-1 heading, or "".
func ExtractTitle(body []byte) string {
	root := goldmark.New().Parser().Parse(text.NewReader(body))
	var title string
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if h, ok := n.(*gmast.Heading); ok && h.Level == 1 {
			title = strings.TrimSpace(plainText(h, body))
			return gmast.WalkStop, nil
		}
		return gmast.WalkContinue, nil
	})
	return title
}

// WordCount counts the words of prose in body. Code blocks and raw HTML are excluded.
func WordCount(body []byte) int {
	root := goldmark.New().Parser().Parse(text.NewReader(body))
	count := 0
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if t, ok := n.(*gmast.Text); ok {
			count += len(strings.Fields(string(t.Segment.Value(body))))
		}
		return gmast.WalkContinue, nil
	})
	return count
}

func plainText(n gmast.Node, source []byte) string {
	var b strings.Builder
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch v := c.(type) {
		case *gmast.Text:
			b.Write(v.Segment.Value(source))
			if v.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *gmast.String:
			b.Write(v.Value)
		}
		return gmast.WalkContinue, nil
	})
	return b.String()
}

// locate returns the byte offset of an inline node: the start of its first
// text child when it has one, otherwise the first occurrence of needle after
// the start of the enclosing block.
func locate(n gmast.Node, source, needle []byte) int {
	for c := n.FirstChild(); c != nil; c = c.FirstChild() {
		if t, ok := c.(*gmast.Text); ok {
			return t.Segment.Start
		}
	}
	start := -1
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Type() == gmast.TypeBlock && p.Lines().Len() > 0 {
			start = p.Lines().At(0).Start
			break
		}
	}
	if start < 0 {
		return -1
	}
	if len(needle) > 0 {
		if idx := bytes.Index(source[start:], needle); idx >= 0 {
			return start + idx
		}
	}
	return start
}

func findReferenceDefinition(source, label []byte) int {
	marker := "[" + strings.ToLower(string(label)) + "]:"
	offset := 0
	for _, line := range strings.SplitAfter(string(source), "\n") {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), marker) {
			return offset
		}
		offset += len(line)
	}
	return -1
}

// lineIndex maps byte offsets in a body to file line numbers.
type lineIndex struct {
	starts []int
	first  int
}

func newLineIndex(body []byte, first int) lineIndex {
	if first <= 0 {
		first = 1
	}
	starts := []int{0}
	for i, b := range body {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return lineIndex{starts: starts, first: first}
}

// at returns the line containing offset, or 0 when the offset is unknown.
func (l lineIndex) at(offset int) int {
	if offset < 0 {
		return 0
	}
	i := sort.Search(len(l.starts), func(i int) bool { return l.starts[i] > offset })
	return l.first + i - 1
}
