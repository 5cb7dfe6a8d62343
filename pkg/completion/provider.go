package completion

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/walteh/tmls/pkg/document"
	"github.com/walteh/tmls/pkg/tagmatch"
)

// Provider runs the attribute/event provider and the value provider for one
// request and concatenates their output. Data failures are logged and
// degrade to no candidates.
type Provider struct {
	builder *Builder
}

func NewProvider(b *Builder) *Provider {
	return &Provider{builder: b}
}

// Complete returns every candidate for req, attribute/event candidates first.
func (p *Provider) Complete(ctx context.Context, req document.Request) []Candidate {
	out := p.Attributes(ctx, req)
	out = append(out, p.Values(ctx, req)...)
	return out
}

// Attributes is the attribute-name and event-name provider.
func (p *Provider) Attributes(ctx context.Context, req document.Request) []Candidate {
	logger := zerolog.Ctx(ctx)

	if Suppressed(req.Kind, req.After) {
		logger.Trace().Str("kind", string(req.Kind)).Msg("completion suppressed")
		return []Candidate{}
	}

	mode, occ := Classify(req.CharAfter(), req.Before)
	if occ == nil || mode == ModeNone {
		return []Candidate{}
	}

	used := ScanUsed(req.Line)

	logger.Debug().
		Str("tag", occ.Name).
		Stringer("mode", mode).
		Strs("used", used).
		Msg("building attribute candidates")

	candidates, err := p.builder.Build(ctx, mode, occ.Name, used)
	if err != nil {
		logger.Warn().Err(err).Str("tag", occ.Name).Msg("attribute completion failed")
		return []Candidate{}
	}

	return candidates
}

// Values is the attribute-value provider. It fires on quote triggers and on
// no trigger at all.
func (p *Provider) Values(ctx context.Context, req document.Request) []Candidate {
	logger := zerolog.Ctx(ctx)

	if !ValueTrigger(req.Trigger) || Suppressed(req.Kind, req.After) {
		return []Candidate{}
	}

	occ, ok := tagmatch.Locate(req.Before)
	if !ok {
		return []Candidate{}
	}

	attr, ok := ClassifyValue(req.LineBefore)
	if !ok {
		return []Candidate{}
	}

	candidates, err := p.builder.BuildValues(ctx, occ.Name, attr)
	if err != nil {
		logger.Warn().Err(err).Str("tag", occ.Name).Str("attr", attr).Msg("value completion failed")
		return []Candidate{}
	}

	return candidates
}
