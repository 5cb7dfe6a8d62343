package lsp

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"go.lsp.dev/protocol"

	"github.com/walteh/tmls/pkg/completion"
	"github.com/walteh/tmls/pkg/document"
)

// cursorMoveCommand is the editor command used for the cursor follow-up when
// the client cannot expand snippets.
const cursorMoveCommand = "cursorMove"

func (me *Server) Completion(ctx context.Context, params *protocol.CompletionParams) (*protocol.CompletionList, error) {
	list := &protocol.CompletionList{Items: []protocol.CompletionItem{}}

	doc, ok := me.documents.Get(params.TextDocument.URI)
	if !ok {
		zerolog.Ctx(ctx).Debug().Str("uri", string(params.TextDocument.URI)).Msg("completion for unknown document")
		return list, nil
	}

	trigger := ""
	if params.Context != nil {
		trigger = params.Context.TriggerCharacter
	}

	req := doc.RequestAt(int(params.Position.Line), int(params.Position.Character), trigger)

	candidates := me.completions.Complete(ctx, req)
	snippets := me.snippetSupport.Load()

	for i, c := range candidates {
		list.Items = append(list.Items, toCompletionItem(i, c, req, params.Position, snippets))
	}

	return list, nil
}

func toCompletionItem(index int, c completion.Candidate, req document.Request, pos protocol.Position, snippets bool) protocol.CompletionItem {
	r := completion.Resolve(c)

	item := protocol.CompletionItem{
		Label:    r.Label,
		Detail:   r.Detail,
		Kind:     itemKind(r.Kind),
		SortText: fmt.Sprintf("%04d", index),
	}

	if r.Documentation != "" {
		item.Documentation = protocol.MarkupContent{
			Kind:  protocol.Markdown,
			Value: r.Documentation,
		}
	}

	text := r.InsertText
	if text == "" {
		text = r.Label
	}

	item.InsertTextFormat = protocol.InsertTextFormatPlainText
	if r.FollowUp != nil && r.FollowUp.Left > 0 && r.FollowUp.Left <= len(text) {
		if snippets {
			cut := len(text) - r.FollowUp.Left
			text = escapeSnippet(text[:cut]) + "$0" + escapeSnippet(text[cut:])
			item.InsertTextFormat = protocol.InsertTextFormatSnippet
		} else {
			item.Command = &protocol.Command{
				Title:   "move cursor",
				Command: cursorMoveCommand,
				Arguments: []interface{}{map[string]interface{}{
					"to":    "left",
					"by":    "character",
					"value": r.FollowUp.Left,
				}},
			}
		}
	}

	// a typed ':' or '@' is part of the label, replace it instead of doubling it
	if prefix := typedPrefix(req.LineBefore, r.Label); prefix != "" && pos.Character > 0 {
		item.TextEdit = &protocol.TextEdit{
			Range: protocol.Range{
				Start: protocol.Position{Line: pos.Line, Character: pos.Character - 1},
				End:   pos,
			},
			NewText: text,
		}
		return item
	}

	item.InsertText = text
	return item
}

func typedPrefix(lineBefore, label string) string {
	for _, p := range []string{":", "@"} {
		if strings.HasSuffix(lineBefore, p) && strings.HasPrefix(label, p) {
			return p
		}
	}
	return ""
}

func itemKind(k completion.Kind) protocol.CompletionItemKind {
	switch k {
	case completion.KindEvent:
		return protocol.CompletionItemKindEvent
	case completion.KindValue:
		return protocol.CompletionItemKindValue
	}
	return protocol.CompletionItemKindProperty
}

var snippetEscaper = strings.NewReplacer(`\`, `\\`, `$`, `\$`, `}`, `\}`)

func escapeSnippet(s string) string {
	return snippetEscaper.Replace(s)
}
