package hover

import (
	"go.lsp.dev/protocol"
)

// ToLSPHover wraps a rendered document as an LSP hover response. The empty
// document maps to a nil hover so no popup is shown.
func ToLSPHover(md string, ok bool) *protocol.Hover {
	if !ok || md == "" {
		return nil
	}

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.Markdown,
			Value: md,
		},
	}
}
