// Package receipt turns canonical ticket events into print jobs.
//
// A Job is an ordered directive sequence: text lines, horizontal rules, an
// optional logo image, paper feed and a final cut. Rendering is a pure
// function of the event and the resolved layout, so identical inputs always
// yield byte-identical jobs and no printer is needed to test the output.
package receipt

// DirectiveKind discriminates the directive union.
type DirectiveKind string

const (
	DirText  DirectiveKind = "text"
	DirRule  DirectiveKind = "rule"
	DirImage DirectiveKind = "image"
	DirFeed  DirectiveKind = "feed"
	DirCut   DirectiveKind = "cut"
)

// Style carries the formatting hints a thermal printer understands.
type Style struct {
	Center bool
	Bold   bool
	Wide   bool // double width/height
}

// Directive is a single print instruction. Only the fields relevant to its
// Kind are populated.
type Directive struct {
	Kind  DirectiveKind
	Text  string // DirText
	Style Style  // DirText
	Image string // DirImage: path of a pre-validated logo file
	Lines int    // DirFeed
}

// Job is one renderer-produced receipt. It has no identity of its own; the
// dispatcher tags it with a job id when it is submitted.
type Job struct {
	Provider   string
	TicketID   string
	Width      int
	Directives []Directive
}

func text(s string) Directive             { return Directive{Kind: DirText, Text: s} }
func styled(s string, st Style) Directive { return Directive{Kind: DirText, Text: s, Style: st} }
func rule() Directive                     { return Directive{Kind: DirRule} }
func image(path string) Directive         { return Directive{Kind: DirImage, Image: path} }
func feed(lines int) Directive            { return Directive{Kind: DirFeed, Lines: lines} }
func cut() Directive                      { return Directive{Kind: DirCut} }
