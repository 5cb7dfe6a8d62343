package registry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	tmregistry "github.com/walteh/tmls/pkg/registry"
)

type stubFetcher map[string]*tmregistry.Descriptor

func (s stubFetcher) Fetch(_ context.Context, name string) (*tmregistry.Descriptor, error) {
	if d, ok := s[name]; ok {
		return d, nil
	}
	return nil, errors.WithDetails(tmregistry.ErrNotFound, "name", name)
}

func TestValidateBuiltIn(t *testing.T) {
	var out bytes.Buffer
	me := &validateHandler{out: &out}

	require.NoError(t, me.Run(context.Background(), tmregistry.Default()))
	assert.Contains(t, out.String(), "ok: ")
}

func TestValidateReportsEveryProblem(t *testing.T) {
	reg, err := tmregistry.Load([]byte(`
aliases:
  ghost: { name: ghost, parent: nowhere }
components:
  blank:
    title: ""
`))
	require.NoError(t, err)

	var out bytes.Buffer
	me := &validateHandler{out: &out}

	err = me.Run(context.Background(), reg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 problems")
	assert.Contains(t, out.String(), "alias points at no descriptor")
	assert.Contains(t, out.String(), `"blank" has no title`)
}

func TestPrefetch(t *testing.T) {
	reg := tmregistry.Default()
	button, ok := reg.Lookup("button")
	require.True(t, ok)

	changed := *button
	changed.Title = "Button v2"

	fetcher := stubFetcher{"button": &changed, "avatar": button}

	t.Run("all found", func(t *testing.T) {
		var out bytes.Buffer
		me := &prefetchHandler{concurrency: 2, out: &out}

		require.NoError(t, me.Run(context.Background(), reg, fetcher, []string{"avatar", "button"}))
		assert.Contains(t, out.String(), "✓ avatar")
		assert.Contains(t, out.String(), "✓ button (Button v2)")
		assert.NotContains(t, out.String(), "➕")
	})

	t.Run("diff against table", func(t *testing.T) {
		var out bytes.Buffer
		me := &prefetchHandler{concurrency: 2, showDiff: true, out: &out}

		require.NoError(t, me.Run(context.Background(), reg, fetcher, []string{"button"}))
		assert.Contains(t, out.String(), "➕")
		assert.Contains(t, out.String(), "Button v2")
	})

	t.Run("failures are collected", func(t *testing.T) {
		var out bytes.Buffer
		me := &prefetchHandler{concurrency: 1, out: &out}

		err := me.Run(context.Background(), reg, fetcher, []string{"button", "rate", "sheet"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, tmregistry.ErrNotFound))
		assert.Contains(t, err.Error(), "2 of 3")
		assert.Contains(t, out.String(), "✗ rate")
		assert.Contains(t, out.String(), "✗ sheet")
	})
}
