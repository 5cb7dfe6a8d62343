package completion

import "strings"

// Kind is what a candidate inserts.
type Kind int

const (
	KindProp Kind = iota
	KindEvent
	KindValue
)

// CursorMove is an action the host runs after inserting a candidate.
type CursorMove struct {
	Left int
}

// Candidate is one completion suggestion. Candidates are built fresh for
// every request and emitted in source order.
type Candidate struct {
	Label         string
	Detail        string
	Documentation string
	InsertText    string
	// SortWeight is shared by every candidate so hosts keep insertion order.
	SortWeight int
	Kind       Kind
	FollowUp   *CursorMove
}

// Bound reports whether the label carries the ':' binding prefix.
func (c Candidate) Bound() bool {
	return strings.HasPrefix(c.Label, ":")
}

// Name is the label without its ':' or '@' prefix.
func (c Candidate) Name() string {
	return strings.TrimLeft(c.Label, ":@")
}

// Resolve turns a prop candidate into its final insertion. Bound props insert
// `:name=""` and move the cursor back inside the quotes. String props insert
// `name="<default>"`. Other kinds are returned unchanged.
func Resolve(c Candidate) Candidate {
	if c.Kind != KindProp {
		return c
	}

	if c.Bound() {
		c.InsertText = c.Label + `=""`
		c.FollowUp = &CursorMove{Left: 1}
		return c
	}

	c.InsertText = c.Label + `="` + c.InsertText + `"`
	return c
}
