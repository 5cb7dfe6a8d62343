package position

import (
	"fmt"
	"strings"
	"unicode/utf16"
)

// Place is a zero-based line and character pair. Character counts UTF-16 code
// units, which is what LSP clients send by default.
type Place struct {
	Line      int
	Character int
}

type Range struct {
	Start Place
	End   Place
}

// RawPosition represents a position in the source text
type RawPosition struct {
	// Offset is the byte offset in the source text
	Offset int
	// Text is the actual text at this position
	Text string
}

// ID returns a unique identifier for this position based on offset and text
func (p RawPosition) ID() string {
	return fmt.Sprintf("%s@%d", p.Text, p.Offset)
}

// Length returns the length of the text at this position
func (p RawPosition) Length() int {
	return len(p.Text)
}

func NewBasicPosition(text string, offset int) RawPosition {
	return RawPosition{Text: text, Offset: offset}
}

// NewRawPositionFromLineAndColumn converts an LSP line/character pair into a byte
// offset into fileText. Lines past the end clamp to the end of the file and
// characters past the end of a line clamp to the end of that line.
func NewRawPositionFromLineAndColumn(line, col int, text, fileText string) RawPosition {
	offset := 0
	for i := 0; i < line; i++ {
		next := strings.IndexByte(fileText[offset:], '\n')
		if next == -1 {
			return RawPosition{Text: text, Offset: len(fileText)}
		}
		offset += next + 1
	}

	lineEnd := strings.IndexByte(fileText[offset:], '\n')
	if lineEnd == -1 {
		lineEnd = len(fileText) - offset
	}

	return RawPosition{Text: text, Offset: offset + utf16ToByteOffset(fileText[offset:offset+lineEnd], col)}
}

func utf16ToByteOffset(line string, units int) int {
	seen := 0
	for i, r := range line {
		if seen >= units {
			return i
		}
		seen += utf16.RuneLen(r)
	}
	return len(line)
}

// GetLineAndColumn calculates the zero-based line and UTF-16 column of the
// position in text.
func (p RawPosition) GetLineAndColumn(text string) (line, col int) {
	offset := p.Offset
	if offset > len(text) {
		offset = len(text)
	}

	lastNewline := strings.LastIndexByte(text[:offset], '\n')
	line = strings.Count(text[:offset], "\n")

	for _, r := range text[lastNewline+1 : offset] {
		col += utf16.RuneLen(r)
	}

	return line, col
}

func (p RawPosition) GetEndPosition() RawPosition {
	return RawPosition{
		Text:   "",
		Offset: p.Offset + p.Length(),
	}
}

// GetRange calculates the line/column range covered by the position's text.
func (p RawPosition) GetRange(fileText string) Range {
	startLine, startCol := p.GetLineAndColumn(fileText)
	endLine, endCol := p.GetEndPosition().GetLineAndColumn(fileText)
	return Range{
		Start: Place{Line: startLine, Character: startCol},
		End:   Place{Line: endLine, Character: endCol},
	}
}

func (p RawPosition) String() string {
	return fmt.Sprintf("%s@%d", p.Text, p.Offset)
}
