package markdown

import (
	"regexp"
	"strings"
)

var (
	spacedLinkPattern   = regexp.MustCompile(`(!?)\[[^\]]*\]\(([^()]*)\)`)
	spacedRefDefPattern = regexp.MustCompile(`^ {0,3}\[([^\]]+)\]:\s*(.+)$`)
)

// extractSpacedLinks scans body line by line for link destinations that
// contain blanks. CommonMark rejects those, so the goldmark walk never sees
// them. Fenced and indented code is skipped.
func extractSpacedLinks(body []byte, firstLine int) []Link {
	var (
		out   []Link
		fence string
	)
	for i, line := range strings.Split(string(body), "\n") {
		if marker := fenceMarker(line); marker != "" {
			switch {
			case fence == "":
				fence = marker
			case strings.HasPrefix(marker, fence):
				fence = ""
			}
			continue
		}
		if fence != "" || strings.HasPrefix(line, "    ") || strings.HasPrefix(line, "\t") {
			continue
		}

		line = dropCodeSpans(line)
		for _, m := range spacedLinkPattern.FindAllStringSubmatch(line, -1) {
			dest, ok := spacedDestination(m[2])
			if !ok {
				continue
			}
			kind := LinkKindInline
			if m[1] == "!" {
				kind = LinkKindImage
			}
			out = append(out, Link{Kind: kind, Destination: dest, Line: firstLine + i})
		}
		if m := spacedRefDefPattern.FindStringSubmatch(line); m != nil && !strings.HasPrefix(m[1], "^") {
			if dest, ok := spacedDestination(m[2]); ok {
				out = append(out, Link{Kind: LinkKindReferenceDefinition, Destination: dest, Line: firstLine + i})
			}
		}
	}
	return out
}

// fenceMarker returns the run of backticks or tildes opening a fenced block
// on line, or "".
func fenceMarker(line string) string {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 || len(trimmed) < 3 {
		return ""
	}
	c := trimmed[0]
	if c != '`' && c != '~' {
		return ""
	}
	n := 0
	for n < len(trimmed) && trimmed[n] == c {
		n++
	}
	if n < 3 {
		return ""
	}
	return trimmed[:n]
}

// spacedDestination strips an optional title from raw and reports the
// destination when it still contains blanks.
func spacedDestination(raw string) (string, bool) {
	dest := strings.TrimSpace(raw)
	if dest == "" || strings.HasPrefix(dest, "<") {
		return "", false
	}
	for _, q := range []string{`"`, `'`} {
		if idx := strings.Index(dest, " "+q); idx > 0 && strings.HasSuffix(dest, q) {
			dest = strings.TrimSpace(dest[:idx])
			break
		}
	}
	if !strings.ContainsAny(dest, " \t") {
		return "", false
	}
	return dest, true
}

// dropCodeSpans removes inline code spans, delimiters included. An
// unmatched backtick run is kept as text.
func dropCodeSpans(s string) string {
	if !strings.Contains(s, "`") {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); {
		if s[i] != '`' {
			b.WriteByte(s[i])
			i++
			continue
		}
		run := i
		for run < len(s) && s[run] == '`' {
			run++
		}
		delim := s[i:run]
		end := strings.Index(s[run:], delim)
		if end < 0 {
			b.WriteString(delim)
			i = run
			continue
		}
		i = run + end + len(delim)
	}
	return b.String()
}
