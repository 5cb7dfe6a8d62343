package lsp

import (
	"context"

	"github.com/rs/zerolog"
	"go.lsp.dev/protocol"

	"github.com/walteh/tmls/pkg/hover"
)

func (me *Server) Hover(ctx context.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	logger := zerolog.Ctx(ctx)

	doc, ok := me.documents.Get(params.TextDocument.URI)
	if !ok {
		logger.Debug().Str("uri", string(params.TextDocument.URI)).Msg("hover for unknown document")
		return nil, nil
	}

	if !doc.Kind.Supported() {
		return nil, nil
	}

	line, ok := doc.LineAt(int(params.Position.Line))
	if !ok {
		return nil, nil
	}

	md, ok := me.hovers.Render(ctx, line)
	logger.Trace().Bool("found", ok).Int("line", int(params.Position.Line)).Msg("hover rendered")

	return hover.ToLSPHover(md, ok), nil
}
