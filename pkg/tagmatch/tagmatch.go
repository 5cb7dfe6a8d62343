// Package tagmatch locates the custom component tag a cursor sits inside.
//
// It is a deliberately approximate scanner: every opening tag in the text
// before the cursor is matched and the right-most one wins. Tags inside
// attribute strings or comments fool it.
package tagmatch

import (
	"regexp"
	"strings"
	"unicode"
)

// tagOpen matches "<tm-name" or "<TmName" followed by everything up to the
// first '>' or '/'.
var tagOpen = regexp.MustCompile(`<(?:tm-([\w-]+)|Tm([A-Z]\w*))[^>/]*`)

// Occurrence is an opening tag found in the text before a cursor.
type Occurrence struct {
	// RawName is the name as written, without the prefix.
	RawName string
	// Name is RawName in lowercase kebab case.
	Name string
	// Start is the byte offset of the '<'.
	Start int
	// Span is the full matched opening tag text.
	Span string
}

// End is the offset just past the matched span.
func (o Occurrence) End() int {
	return o.Start + len(o.Span)
}

// Locate returns the last opening tag in textBefore if the cursor, taken to
// be len(textBefore), still lies within or directly after its span.
func Locate(textBefore string) (*Occurrence, bool) {
	all := tagOpen.FindAllStringSubmatchIndex(textBefore, -1)
	if len(all) == 0 {
		return nil, false
	}

	occ := fromMatch(textBefore, all[len(all)-1])

	cursor := len(textBefore)
	if cursor > occ.End() || cursor < occ.Start {
		return nil, false
	}

	return occ, true
}

// LocateAll returns every opening tag in text in source order, without the
// cursor boundary check.
func LocateAll(text string) []*Occurrence {
	all := tagOpen.FindAllStringSubmatchIndex(text, -1)
	out := make([]*Occurrence, 0, len(all))
	for _, m := range all {
		out = append(out, fromMatch(text, m))
	}
	return out
}

func fromMatch(text string, m []int) *Occurrence {
	occ := &Occurrence{
		Start: m[0],
		Span:  text[m[0]:m[1]],
	}

	switch {
	case m[2] >= 0:
		occ.RawName = text[m[2]:m[3]]
		occ.Name = strings.ToLower(occ.RawName)
	case m[4] >= 0:
		occ.RawName = text[m[4]:m[5]]
		occ.Name = KebabCase(occ.RawName)
	}

	return occ
}

// KebabCase converts "GridItem" to "grid-item".
func KebabCase(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
