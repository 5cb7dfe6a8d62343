package completion

import (
	"regexp"
	"strings"

	"github.com/walteh/tmls/pkg/document"
	"github.com/walteh/tmls/pkg/tagmatch"
)

// Mode is the kind of completion a cursor position calls for.
type Mode int

const (
	ModeNone Mode = iota
	ModeAttribute
	ModeEvent
	ModeValue
)

func (m Mode) String() string {
	switch m {
	case ModeAttribute:
		return "attribute"
	case ModeEvent:
		return "event"
	case ModeValue:
		return "value"
	}
	return "none"
}

const templateClose = "</template>"

// Suppressed reports whether completion is off for the whole request. It is a
// coarse precheck run before any tag matching: only template documents
// qualify, the cursor must sit before a closing </template>, and scanning
// forward from the cursor must reach a '>' before any '<'.
func Suppressed(kind document.Kind, after string) bool {
	if kind != document.TemplateKind {
		return true
	}
	if !strings.Contains(after, templateClose) {
		return true
	}
	lt := strings.IndexByte(after, '<')
	gt := strings.IndexByte(after, '>')
	if lt != -1 && (gt == -1 || lt < gt) {
		return true
	}
	return false
}

// AttributeTrigger reports whether the character after the cursor is a
// natural attribute boundary. The empty string, which Request.CharAfter
// returns at the end of a line, is not one. "\n" and "\r" are only seen when a
// caller passes raw buffer characters.
func AttributeTrigger(charAfter string) bool {
	switch charAfter {
	case " ", "\n", "\r", "/", ">":
		return true
	}
	return false
}

// Classify picks the attribute provider mode from the character after the
// cursor and the text before it. A nil occurrence means no active tag.
func Classify(charAfter, before string) (Mode, *tagmatch.Occurrence) {
	if !AttributeTrigger(charAfter) {
		return ModeNone, nil
	}

	occ, ok := tagmatch.Locate(before)
	if !ok {
		return ModeNone, nil
	}

	switch {
	case strings.HasSuffix(before, " "), strings.HasSuffix(before, ":"):
		return ModeAttribute, occ
	case strings.HasSuffix(before, "@"):
		return ModeEvent, occ
	}

	return ModeNone, occ
}

// ValueTrigger reports whether the value provider runs for a trigger
// character. The empty trigger means the request came from plain typing.
func ValueTrigger(trigger string) bool {
	switch trigger {
	case `"`, "'", "":
		return true
	}
	return false
}

var trailingAssignment = regexp.MustCompile(`(\w+)\s*=\s*("[^"]*|'[^']*|[^\s"'=>]*)$`)

// ClassifyValue returns the attribute whose value the cursor is typing, taken
// from the trailing assignment of the current line up to the cursor.
func ClassifyValue(lineBefore string) (string, bool) {
	m := trailingAssignment.FindStringSubmatch(lineBefore)
	if m == nil {
		return "", false
	}
	return m[1], true
}
