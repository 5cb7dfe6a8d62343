// Package registry holds the static table of component descriptors and the
// service the completion engine reads props and events through.
package registry

import (
	"context"
	_ "embed"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

//go:embed data/components.yaml
var embeddedComponents []byte

const DefaultDocsBaseURL = "https://tmui.design/doc"

var (
	ErrUnknownComponent = errors.Base("unknown component")
	ErrDanglingAlias    = errors.Base("alias points at no descriptor")
	ErrNotFound         = errors.Base("descriptor not found")
)

type file struct {
	CommonProps []Prop                 `yaml:"common_props"`
	Aliases     map[string]Alias       `yaml:"aliases"`
	Components  map[string]*Descriptor `yaml:"components"`
}

// Registry is an immutable lookup table. It is safe for concurrent use.
type Registry struct {
	descriptors map[string]*Descriptor
	aliases     map[string]Alias
	parents     map[string]string
	common      []Prop
	keys        []string
}

type options struct {
	docsBaseURL string
}

type Option func(*options)

// WithDocsBaseURL sets the prefix of every descriptor DocURL.
func WithDocsBaseURL(u string) Option {
	return func(o *options) {
		if u != "" {
			o.docsBaseURL = u
		}
	}
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry built from the embedded table.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := Load(embeddedComponents)
		if err != nil {
			panic(errors.Errorf("loading embedded components: %w", err))
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

// New builds a registry from the embedded table.
func New(opts ...Option) (*Registry, error) {
	return Load(embeddedComponents, opts...)
}

// Embedded returns the raw embedded table.
func Embedded() []byte {
	return embeddedComponents
}

// Load builds a registry from YAML.
func Load(data []byte, opts ...Option) (*Registry, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Errorf("parsing components: %w", err)
	}
	return build(f, opts...), nil
}

// LoadFile builds a registry from the embedded table with the descriptors,
// aliases and common props of the file at path layered on top.
func LoadFile(fs afero.Fs, path string, opts ...Option) (*Registry, error) {
	override, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Errorf("reading registry file %q: %w", path, err)
	}

	var base, top file
	if err := yaml.Unmarshal(embeddedComponents, &base); err != nil {
		return nil, errors.Errorf("parsing embedded components: %w", err)
	}
	if err := yaml.Unmarshal(override, &top); err != nil {
		return nil, errors.Errorf("parsing registry file %q: %w", path, err)
	}

	if base.Aliases == nil {
		base.Aliases = map[string]Alias{}
	}
	if base.Components == nil {
		base.Components = map[string]*Descriptor{}
	}
	for k, v := range top.Aliases {
		base.Aliases[k] = v
	}
	for k, v := range top.Components {
		base.Components[k] = v
	}
	if len(top.CommonProps) > 0 {
		base.CommonProps = top.CommonProps
	}

	return build(base, opts...), nil
}

func build(f file, opts ...Option) *Registry {
	o := &options{docsBaseURL: DefaultDocsBaseURL}
	for _, opt := range opts {
		opt(o)
	}

	r := &Registry{
		descriptors: make(map[string]*Descriptor, len(f.Components)),
		aliases:     make(map[string]Alias, len(f.Aliases)),
		parents:     make(map[string]string, len(f.Aliases)),
		common:      f.CommonProps,
	}

	for name, d := range f.Components {
		if d == nil {
			continue
		}
		d.Name = name
		d.DocURL = docURL(o.docsBaseURL, d)
		r.descriptors[name] = d
		r.keys = append(r.keys, name)
	}

	for raw, a := range f.Aliases {
		if a.Name == "" {
			a.Name = raw
		}
		if a.Parent == "" {
			a.Parent = a.Name
		}
		r.aliases[raw] = a
		r.parents[a.Name] = a.Parent
		if _, ok := r.descriptors[raw]; !ok {
			r.keys = append(r.keys, raw)
		}
	}

	sort.Strings(r.keys)

	return r
}

func docURL(base string, d *Descriptor) string {
	p := d.Doc
	if p == "" {
		p = "comps/" + d.Name
	}
	if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		return p
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(p, "/") + ".html"
}

// ResolveAlias returns the family member name props and events of name are
// filed under. Names without an alias resolve to themselves.
func (r *Registry) ResolveAlias(name string) string {
	if a, ok := r.aliases[name]; ok {
		return a.Name
	}
	return name
}

// Parent returns the descriptor key documenting name. It accepts both raw
// tag names and names already passed through ResolveAlias.
func (r *Registry) Parent(name string) string {
	if a, ok := r.aliases[name]; ok {
		return a.Parent
	}
	if p, ok := r.parents[name]; ok {
		return p
	}
	return name
}

// Lookup returns the descriptor stored under key. No alias is applied.
func (r *Registry) Lookup(key string) (*Descriptor, bool) {
	d, ok := r.descriptors[key]
	return d, ok
}

// Resolve applies both alias steps and returns the documenting descriptor.
func (r *Registry) Resolve(name string) (*Descriptor, bool) {
	return r.Lookup(r.Parent(r.ResolveAlias(name)))
}

// Keys returns every descriptor and alias key in sorted order.
func (r *Registry) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Descriptors returns the descriptor keys in sorted order.
func (r *Registry) Descriptors() []string {
	out := make([]string, 0, len(r.descriptors))
	for k := range r.descriptors {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// CommonProps returns the props every component accepts.
func (r *Registry) CommonProps() []Prop {
	return r.common
}

// PropsFor collects the prop rows of d filed under member.
func PropsFor(d *Descriptor, member string) []Prop {
	var out []Prop
	for _, g := range d.PropGroups {
		if groupOwner(d, g.For) != member {
			continue
		}
		out = append(out, g.Rows...)
	}
	return out
}

// EventsFor collects the event rows of d filed under member.
func EventsFor(d *Descriptor, member string) []Row {
	if d.Events == nil {
		return nil
	}
	var out []Row
	for _, e := range d.Events.Rows {
		if groupOwner(d, e.For) != member {
			continue
		}
		out = append(out, e)
	}
	return out
}

func groupOwner(d *Descriptor, forName string) string {
	if forName == "" {
		return d.Name
	}
	return forName
}

var _ Service = (*Registry)(nil)

// GetProps implements Service. name is a ResolveAlias result.
func (r *Registry) GetProps(_ context.Context, name string) ([]Prop, error) {
	d, ok := r.Lookup(r.Parent(name))
	if !ok {
		return nil, errors.WithDetails(ErrUnknownComponent, "name", name)
	}
	return PropsFor(d, name), nil
}

func (r *Registry) GetCommonProps(_ context.Context) ([]Prop, error) {
	return r.common, nil
}

func (r *Registry) GetEvents(_ context.Context, name string) ([]Row, error) {
	d, ok := r.Lookup(r.Parent(name))
	if !ok {
		return nil, errors.WithDetails(ErrUnknownComponent, "name", name)
	}
	return EventsFor(d, name), nil
}

// Describe implements DescriptorSource with a direct key lookup.
func (r *Registry) Describe(_ context.Context, key string) (*Descriptor, error) {
	d, ok := r.Lookup(key)
	if !ok {
		return nil, errors.WithDetails(ErrUnknownComponent, "key", key)
	}
	return d, nil
}
