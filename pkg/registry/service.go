package registry

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/singleflight"
)

// Service is what the completion engine reads component data through. Each
// call may go to the network and may fail. GetProps and GetEvents return an
// error wrapping ErrUnknownComponent when name has no descriptor; a known
// component may still have no props or events.
type Service interface {
	GetProps(ctx context.Context, name string) ([]Prop, error)
	GetCommonProps(ctx context.Context) ([]Prop, error)
	GetEvents(ctx context.Context, name string) ([]Row, error)
}

// DescriptorSource returns the descriptor stored under a key, with no alias
// applied. A missing key yields ErrUnknownComponent.
type DescriptorSource interface {
	Describe(ctx context.Context, key string) (*Descriptor, error)
}

// Fetcher loads a descriptor from somewhere other than the static table. A
// component the source does not document yields an error wrapping ErrNotFound.
type Fetcher interface {
	Fetch(ctx context.Context, name string) (*Descriptor, error)
}

// Memo caches successful fetches per name and collapses concurrent fetches of
// the same name into one. Failures are not cached. The shared fetch runs on a
// context detached from any single caller, so a cancelled request only stops
// its own wait.
type Memo struct {
	fetcher Fetcher
	cache   sync.Map // map[string]*Descriptor
	flight  singleflight.Group
}

func NewMemo(f Fetcher) *Memo {
	return &Memo{fetcher: f}
}

func (m *Memo) Fetch(ctx context.Context, name string) (*Descriptor, error) {
	if d, ok := m.cache.Load(name); ok {
		return d.(*Descriptor), nil
	}

	ch := m.flight.DoChan(name, func() (interface{}, error) {
		if d, ok := m.cache.Load(name); ok {
			return d, nil
		}
		d, err := m.fetcher.Fetch(context.WithoutCancel(ctx), name)
		if err != nil {
			return nil, err
		}
		m.cache.Store(name, d)
		return d, nil
	})

	select {
	case <-ctx.Done():
		return nil, errors.Errorf("waiting for %q: %w", name, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, errors.Errorf("fetching %q: %w", name, res.Err)
		}
		zerolog.Ctx(ctx).Trace().Str("component", name).Bool("shared", res.Shared).Msg("fetched descriptor")
		return res.Val.(*Descriptor), nil
	}
}

// Fallback answers from the static registry and asks a Fetcher for
// descriptors the registry does not carry.
type Fallback struct {
	static  *Registry
	fetcher Fetcher
}

var (
	_ Service          = (*Fallback)(nil)
	_ DescriptorSource = (*Fallback)(nil)
)

// NewFallback wraps r. A nil fetcher makes it behave exactly like r.
func NewFallback(r *Registry, f Fetcher) *Fallback {
	return &Fallback{static: r, fetcher: f}
}

func (me *Fallback) Registry() *Registry {
	return me.static
}

func (me *Fallback) descriptor(ctx context.Context, key string) (*Descriptor, error) {
	if d, ok := me.static.Lookup(key); ok {
		return d, nil
	}
	if me.fetcher == nil {
		return nil, nil
	}
	d, err := me.fetcher.Fetch(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Errorf("falling back to remote descriptor: %w", err)
	}
	return d, nil
}

func (me *Fallback) GetProps(ctx context.Context, name string) ([]Prop, error) {
	d, err := me.descriptor(ctx, me.static.Parent(name))
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, errors.WithDetails(ErrUnknownComponent, "name", name)
	}
	return PropsFor(d, name), nil
}

func (me *Fallback) GetCommonProps(ctx context.Context) ([]Prop, error) {
	return me.static.GetCommonProps(ctx)
}

func (me *Fallback) GetEvents(ctx context.Context, name string) ([]Row, error) {
	d, err := me.descriptor(ctx, me.static.Parent(name))
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, errors.WithDetails(ErrUnknownComponent, "name", name)
	}
	return EventsFor(d, name), nil
}

func (me *Fallback) Describe(ctx context.Context, key string) (*Descriptor, error) {
	d, err := me.descriptor(ctx, key)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, errors.WithDetails(ErrUnknownComponent, "key", key)
	}
	return d, nil
}
