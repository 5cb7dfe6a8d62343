package registry

import (
	"gopkg.in/yaml.v3"

	"gitlab.com/tozd/go/errors"
)

// Descriptor documents one component family.
type Descriptor struct {
	Name        string        `yaml:"-"`
	Title       string        `yaml:"title"`
	Description string        `yaml:"description"`
	Doc         string        `yaml:"doc,omitempty"`
	DocURL      string        `yaml:"-"`
	Compat      Compatibility `yaml:"compat"`
	Demo        string        `yaml:"demo,omitempty"`
	PropGroups  []PropGroup   `yaml:"props"`
	Events      *Section      `yaml:"events,omitempty"`
	Slots       *Section      `yaml:"slots,omitempty"`
	Refs        *Section      `yaml:"refs,omitempty"`
}

// PropGroup is one titled table of props. For names the family member the
// rows belong to and defaults to the descriptor name.
type PropGroup struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	For         string `yaml:"for,omitempty"`
	Rows        []Prop `yaml:"rows"`
}

type Prop struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Default     string `yaml:"default"`
	Description string `yaml:"description"`
	// Version is the first release that shipped the prop, if known.
	Version string `yaml:"version,omitempty"`
}

// Section is the events, slots or refs table of a descriptor.
type Section struct {
	Description string `yaml:"description"`
	Rows        []Row  `yaml:"rows"`
	Demo        string `yaml:"demo,omitempty"`
}

// Row is an event, slot or ref entry.
type Row struct {
	Name        string `yaml:"name"`
	Params      string `yaml:"params"`
	Callback    string `yaml:"callback"`
	Description string `yaml:"description"`
	For         string `yaml:"for,omitempty"`
}

// Platform columns of the compatibility matrix, in display order.
var Platforms = []string{"app-vue", "app-nvue", "h5", "mp-weixin", "mp-alipay"}

// Compatibility is the five column platform support matrix.
type Compatibility struct {
	AppVue   Support `yaml:"app-vue"`
	AppNvue  Support `yaml:"app-nvue"`
	H5       Support `yaml:"h5"`
	MpWeixin Support `yaml:"mp-weixin"`
	MpAlipay Support `yaml:"mp-alipay"`
}

// Columns returns the matrix in Platforms order.
func (c Compatibility) Columns() []Support {
	return []Support{c.AppVue, c.AppNvue, c.H5, c.MpWeixin, c.MpAlipay}
}

// Support is either a yes/no flag or a free text note such as "3.0.8+".
type Support struct {
	Supported bool
	Note      string
}

func (s Support) String() string {
	if s.Note != "" {
		return s.Note
	}
	if s.Supported {
		return "✅"
	}
	return "❌"
}

func (s *Support) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return errors.Errorf("compat value at line %d must be a scalar", node.Line)
	}

	if node.Tag == "!!bool" {
		var b bool
		if err := node.Decode(&b); err != nil {
			return errors.Errorf("decoding compat flag: %w", err)
		}
		s.Supported = b
		return nil
	}

	s.Supported = true
	s.Note = node.Value
	return nil
}

func (s Support) MarshalYAML() (interface{}, error) {
	if s.Note != "" {
		return s.Note, nil
	}
	return s.Supported, nil
}

// Alias maps a raw tag name onto the family member its props are filed under
// and the descriptor that documents it.
type Alias struct {
	Name   string `yaml:"name"`
	Parent string `yaml:"parent"`
}
