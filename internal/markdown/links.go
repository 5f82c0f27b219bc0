package markdown

// Options controls how Markdown is parsed for link analysis.
type Options struct {
	// FirstLine is the file line on which the body starts, so that reported
	// line numbers refer to the source file rather than the body. Zero means 1.
	FirstLine int
}

type LinkKind string

const (
	LinkKindInline              LinkKind = "inline"
	LinkKindImage               LinkKind = "image"
	LinkKindAuto                LinkKind = "auto"
	LinkKindReferenceDefinition LinkKind = "reference_definition"
	LinkKindHTML                LinkKind = "html"
)

// Link is a link-like construct found in a Markdown body.
type Link struct {
	Kind        LinkKind
	Destination string
	Line        int
}
