package document

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/walteh/tmls/pkg/position"
)

// Kind is the language identifier a client attaches to a document.
type Kind string

const (
	KindVue             Kind = "vue"
	KindJavaScript      Kind = "javascript"
	KindTypeScript      Kind = "typescript"
	KindJavaScriptReact Kind = "javascriptreact"
	KindTypeScriptReact Kind = "typescriptreact"
	KindUnknown         Kind = ""
)

// TemplateKind is the only kind whose template block receives completions.
const TemplateKind = KindVue

var kindPatterns = []struct {
	pattern string
	kind    Kind
}{
	{"**/*.{vue,nvue}", KindVue},
	{"**/*.{js,mjs,cjs}", KindJavaScript},
	{"**/*.{ts,mts,cts}", KindTypeScript},
	{"**/*.jsx", KindJavaScriptReact},
	{"**/*.tsx", KindTypeScriptReact},
}

// Supported reports whether tmls activates for documents of this kind.
func (k Kind) Supported() bool {
	switch k {
	case KindVue, KindJavaScript, KindTypeScript, KindJavaScriptReact, KindTypeScriptReact:
		return true
	}
	return false
}

// KindFromLanguageID maps an LSP languageId to a Kind. Unknown ids fall back
// to the path extension.
func KindFromLanguageID(languageID string, uri string) Kind {
	k := Kind(strings.ToLower(languageID))
	if k.Supported() {
		return k
	}
	return KindFromPath(uri)
}

// KindFromPath guesses the kind from a file path or URI.
func KindFromPath(p string) Kind {
	p = strings.TrimPrefix(path.Clean("/"+NormalizeURI(p)), "/")
	for _, kp := range kindPatterns {
		if ok, err := doublestar.Match(kp.pattern, p); err == nil && ok {
			return kp.kind
		}
	}
	return KindUnknown
}

// NormalizeURI strips the file scheme so the same file opened through
// different URI spellings maps to one key.
func NormalizeURI(uri string) string {
	uri = strings.TrimPrefix(uri, "file://")
	uri = strings.TrimPrefix(uri, "file:")
	return uri
}

// Document is an immutable snapshot of a client buffer.
type Document struct {
	URI     string
	Kind    Kind
	Version int32
	Content string
}

func New(uri string, kind Kind, version int32, content string) *Document {
	return &Document{URI: uri, Kind: kind, Version: version, Content: content}
}

// Request is the text surrounding a cursor, sliced out of a document for a
// single completion or hover call.
type Request struct {
	Kind   Kind
	Offset int
	// Before is all text from the start of the buffer to the cursor.
	Before string
	// After is all text from the cursor to the end of the buffer.
	After string
	// Line is the full line the cursor sits on.
	Line string
	// LineBefore is the current line up to the cursor.
	LineBefore string
	// Trigger is the character that caused the request, if any.
	Trigger string
}

// RequestAt slices the document around an LSP line/character position.
func (d *Document) RequestAt(line, character int, trigger string) Request {
	pos := position.NewRawPositionFromLineAndColumn(line, character, "", d.Content)
	return newRequest(d.Kind, d.Content, pos.Offset, trigger)
}

// RequestAtOffset slices the document around a byte offset.
func (d *Document) RequestAtOffset(offset int, trigger string) Request {
	if offset < 0 {
		offset = 0
	}
	if offset > len(d.Content) {
		offset = len(d.Content)
	}
	return newRequest(d.Kind, d.Content, offset, trigger)
}

func newRequest(kind Kind, content string, offset int, trigger string) Request {
	lineStart := strings.LastIndexByte(content[:offset], '\n') + 1
	lineEnd := strings.IndexByte(content[offset:], '\n')
	if lineEnd == -1 {
		lineEnd = len(content)
	} else {
		lineEnd += offset
	}

	return Request{
		Kind:       kind,
		Offset:     offset,
		Before:     content[:offset],
		After:      content[offset:],
		Line:       strings.TrimSuffix(content[lineStart:lineEnd], "\r"),
		LineBefore: content[lineStart:offset],
		Trigger:    trigger,
	}
}

// CharAfter returns the character immediately following the cursor on the
// current line. The end of a line or of the buffer yields the empty string.
func (r Request) CharAfter() string {
	for _, c := range r.After {
		if c == '\n' || c == '\r' {
			return ""
		}
		return string(c)
	}
	return ""
}

// LineAt returns the full text of a zero-based line, or false if the line
// does not exist.
func (d *Document) LineAt(line int) (string, bool) {
	lines := strings.Split(d.Content, "\n")
	if line < 0 || line >= len(lines) {
		return "", false
	}
	return strings.TrimSuffix(lines[line], "\r"), true
}
