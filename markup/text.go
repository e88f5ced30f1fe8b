// Package markup turns (X)HTML chapter documents into plain text suitable
// for wrapping and paging.
package markup

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// breakBefore lists elements starting on a new line.
var breakBefore = map[atom.Atom]bool{
	atom.P:   true,
	atom.Div: true,
	atom.Br:  true,
	atom.Li:  true,
	atom.H1:  true,
	atom.H2:  true,
	atom.H3:  true,
	atom.H4:  true,
	atom.H5:  true,
	atom.H6:  true,
}

// breakAfter lists elements terminating their line.
var breakAfter = map[atom.Atom]bool{
	atom.P:   true,
	atom.Div: true,
	atom.Li:  true,
}

var (
	blankRuns        = regexp.MustCompile(`\n\s*\n+`)
	horizontalSpaces = regexp.MustCompile(`[ \t]+`)

	// The tokenizer switches to raw text mode after a self-closing raw text
	// element as if it was never closed, so expand those before tokenizing.
	selfClosingRaw = regexp.MustCompile(`(?is)<(script|style|title|textarea|iframe|noembed|noframes|noscript|xmp)\b([^>]*)/>`)
	// <plaintext> is never closed for the tokenizer
	plaintextTags = regexp.MustCompile(`(?is)</?plaintext\b[^>]*>`)
)

// ToText converts markup to plain text. Malformed markup never fails, the
// tokenizer simply stops at the point it cannot continue.
func ToText(src string) string {
	if selfClosingRaw.MatchString(src) {
		src = selfClosingRaw.ReplaceAllString(src, `<$1$2></$1>`)
	}
	src = plaintextTags.ReplaceAllString(src, "")

	z := html.NewTokenizer(strings.NewReader(src))

	var buf strings.Builder
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF or tokenizer failure - use what we have
			return normalize(buf.String())

		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if breakBefore[a] {
				buf.WriteByte('\n')
			}
			// <p/> opens and closes element at once
			if tt == html.SelfClosingTagToken && breakAfter[a] {
				buf.WriteByte('\n')
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			if breakAfter[atom.Lookup(name)] {
				buf.WriteByte('\n')
			}

		case html.TextToken:
			// entities are already decoded, raw text elements come verbatim
			buf.Write(z.Text())
		}
	}
}

func normalize(raw string) string {
	raw = blankRuns.ReplaceAllString(raw, "\n\n")
	raw = horizontalSpaces.ReplaceAllString(raw, " ")
	return strings.TrimSpace(raw)
}
