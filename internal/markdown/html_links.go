package markdown

import (
	"bytes"
	"sort"

	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"
)

// htmlSource is raw HTML gathered from body segments that need not be
// contiguous (HTML blocks inside lists or blockquotes lose their prefixes).
type htmlSource struct {
	raw []byte
	// rawStarts[i] is where segment i begins in raw; bodyStarts[i] in body.
	rawStarts  []int
	bodyStarts []int
}

func newHTMLSource(segs *text.Segments, body []byte) htmlSource {
	var (
		src htmlSource
		buf bytes.Buffer
	)
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		src.rawStarts = append(src.rawStarts, buf.Len())
		src.bodyStarts = append(src.bodyStarts, seg.Start)
		buf.Write(seg.Value(body))
	}
	src.raw = buf.Bytes()
	return src
}

// bodyOffset maps an offset in raw back to the body.
func (s htmlSource) bodyOffset(off int) int {
	i := sort.Search(len(s.rawStarts), func(i int) bool { return s.rawStarts[i] > off }) - 1
	if i < 0 {
		return -1
	}
	return s.bodyStarts[i] + off - s.rawStarts[i]
}

// extractHTMLLinks reads <a href> and <img src> out of a raw HTML fragment.
func extractHTMLLinks(src htmlSource, lines lineIndex) []Link {
	if len(src.raw) == 0 {
		return nil
	}
	var links []Link
	z := html.NewTokenizer(bytes.NewReader(src.raw))
	consumed := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			// io.EOF, or malformed HTML: keep what was found so far.
			return links
		}
		tokenStart := consumed
		consumed += len(z.Raw())
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}

		tok := z.Token()
		attr := ""
		switch tok.Data {
		case "a":
			attr = "href"
		case "img", "source":
			attr = "src"
		default:
			continue
		}
		for _, a := range tok.Attr {
			if a.Key == attr && a.Val != "" {
				links = append(links, Link{Kind: LinkKindHTML, Destination: a.Val, Line: lines.at(src.bodyOffset(tokenStart))})
			}
		}
	}
}
