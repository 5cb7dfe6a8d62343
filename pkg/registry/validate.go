package registry

import (
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"
)

// Validate checks that every key resolves to a descriptor and that every
// descriptor is displayable. All problems are reported together.
func (r *Registry) Validate() error {
	var err error

	for _, k := range r.Keys() {
		if _, ok := r.Resolve(k); !ok {
			err = multierr.Append(err, errors.WithDetails(ErrDanglingAlias,
				"key", k,
				"resolved", r.ResolveAlias(k),
				"parent", r.Parent(r.ResolveAlias(k)),
			))
		}
	}

	for _, name := range r.Descriptors() {
		d, _ := r.Lookup(name)
		if d.Title == "" {
			err = multierr.Append(err, errors.Errorf("component %q has no title", name))
		}
		for i, g := range d.PropGroups {
			if g.For == "" || g.For == name {
				continue
			}
			if r.Parent(g.For) != name {
				err = multierr.Append(err, errors.Errorf("component %q prop group %d is filed under %q which has no alias back to it", name, i, g.For))
			}
		}
	}

	for _, p := range r.common {
		if p.Name == "" {
			err = multierr.Append(err, errors.New("common prop with empty name"))
		}
	}

	return err
}
