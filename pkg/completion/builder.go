package completion

import (
	"context"
	"slices"
	"strings"

	"github.com/samber/lo"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/tmls/pkg/registry"
)

// AliasResolver maps a raw tag name onto the name its props are filed under.
type AliasResolver interface {
	ResolveAlias(name string) string
}

// Builder turns registry data into candidates.
type Builder struct {
	service     registry.Service
	aliases     AliasResolver
	excludeUsed bool
}

type BuilderOption func(*Builder)

// WithExcludeUsed drops props already assigned on the current line. Off by
// default: the used-attribute scan is computed on every request but does not
// change the candidate list unless this is set.
func WithExcludeUsed(on bool) BuilderOption {
	return func(b *Builder) {
		b.excludeUsed = on
	}
}

func NewBuilder(service registry.Service, aliases AliasResolver, opts ...BuilderOption) *Builder {
	b := &Builder{service: service, aliases: aliases}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build returns the candidates for an attribute or event position. Unknown
// components yield no candidates and no error. A failing service call is
// returned as an error.
func (b *Builder) Build(ctx context.Context, mode Mode, rawName string, used []string) ([]Candidate, error) {
	name := b.aliases.ResolveAlias(rawName)

	switch mode {
	case ModeAttribute:
		specific, err := b.service.GetProps(ctx, name)
		if errors.Is(err, registry.ErrUnknownComponent) {
			return []Candidate{}, nil
		}
		if err != nil {
			return nil, errors.Errorf("getting props of %q: %w", name, err)
		}
		common, err := b.service.GetCommonProps(ctx)
		if err != nil {
			return nil, errors.Errorf("getting common props: %w", err)
		}

		out := make([]Candidate, 0, len(specific)+len(common))
		for _, p := range specific {
			out = append(out, propCandidate(p))
		}
		for _, p := range common {
			out = append(out, propCandidate(p))
		}

		if b.excludeUsed {
			names := UsedNames(used)
			out = lo.Filter(out, func(c Candidate, _ int) bool {
				return !lo.Contains(names, c.Name())
			})
		}

		return out, nil

	case ModeEvent:
		events, err := b.service.GetEvents(ctx, name)
		if errors.Is(err, registry.ErrUnknownComponent) {
			return []Candidate{}, nil
		}
		if err != nil {
			return nil, errors.Errorf("getting events of %q: %w", name, err)
		}

		out := make([]Candidate, 0, len(events))
		for _, e := range events {
			out = append(out, Candidate{
				Label:         "@" + e.Name,
				Detail:        e.Params,
				Documentation: e.Description,
				InsertText:    "",
				Kind:          KindEvent,
			})
		}
		return out, nil
	}

	return []Candidate{}, nil
}

func propCandidate(p registry.Prop) Candidate {
	label := ":" + p.Name
	if p.Type == "String" || p.Type == "string" {
		label = p.Name
	}
	return Candidate{
		Label:         label,
		Detail:        p.Type,
		Documentation: p.Description,
		InsertText:    strings.ReplaceAll(p.Default, "'", ""),
		Kind:          KindProp,
	}
}

var booleanValues = []string{"true", "false"}

// BuildValues offers values for attr on rawName. Only boolean props get
// candidates, exactly "true" then "false".
func (b *Builder) BuildValues(ctx context.Context, rawName, attr string) ([]Candidate, error) {
	name := b.aliases.ResolveAlias(rawName)

	specific, err := b.service.GetProps(ctx, name)
	if errors.Is(err, registry.ErrUnknownComponent) {
		return []Candidate{}, nil
	}
	if err != nil {
		return nil, errors.Errorf("getting props of %q: %w", name, err)
	}
	common, err := b.service.GetCommonProps(ctx)
	if err != nil {
		return nil, errors.Errorf("getting common props: %w", err)
	}

	prop, ok := lo.Find(slices.Concat(specific, common), func(p registry.Prop) bool {
		return p.Name == attr
	})
	if !ok || !strings.EqualFold(prop.Type, "boolean") {
		return []Candidate{}, nil
	}

	return lo.Map(booleanValues, func(v string, _ int) Candidate {
		return Candidate{
			Label:      v,
			Detail:     prop.Type,
			InsertText: v,
			Kind:       KindValue,
		}
	}), nil
}
