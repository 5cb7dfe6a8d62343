package completion_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/tmls/pkg/completion"
	"github.com/walteh/tmls/pkg/registry"
)

type mockService struct {
	mock.Mock
}

var _ registry.Service = (*mockService)(nil)

func (m *mockService) GetProps(ctx context.Context, name string) ([]registry.Prop, error) {
	args := m.Called(ctx, name)
	props, _ := args.Get(0).([]registry.Prop)
	return props, args.Error(1)
}

func (m *mockService) GetCommonProps(ctx context.Context) ([]registry.Prop, error) {
	args := m.Called(ctx)
	props, _ := args.Get(0).([]registry.Prop)
	return props, args.Error(1)
}

func (m *mockService) GetEvents(ctx context.Context, name string) ([]registry.Row, error) {
	args := m.Called(ctx, name)
	rows, _ := args.Get(0).([]registry.Row)
	return rows, args.Error(1)
}

type aliasMap map[string]string

func (a aliasMap) ResolveAlias(name string) string {
	if v, ok := a[name]; ok {
		return v
	}
	return name
}

var (
	chipProps = []registry.Prop{
		{Name: "label", Type: "String", Default: "'chip'", Description: "文字"},
		{Name: "color", Type: "string", Default: "'primary'", Description: "颜色"},
		{Name: "margin", Type: "number[]", Default: "[0,0]", Description: "外间距"},
		{Name: "closable", Type: "boolean", Default: "false", Description: "可关闭"},
		{Name: "active", Type: "Boolean", Default: "false", Description: "激活"},
	}
	commonProps = []registry.Prop{
		{Name: "color", Type: "string", Default: "'white'", Description: "主题色"},
		{Name: "round", Type: "number", Default: "0", Description: "圆角"},
	}
	chipEvents = []registry.Row{
		{Name: "click", Params: "e: Event", Callback: "void", Description: "点击"},
		{Name: "close", Params: "", Callback: "void", Description: "关闭"},
	}
)

func newChipService() *mockService {
	svc := &mockService{}
	svc.On("GetProps", mock.Anything, "chip").Return(chipProps, nil)
	svc.On("GetProps", mock.Anything, "spacer").Return([]registry.Prop{}, nil)
	svc.On("GetProps", mock.Anything, mock.Anything).Return(nil, errors.WithStack(registry.ErrUnknownComponent))
	svc.On("GetCommonProps", mock.Anything).Return(commonProps, nil)
	svc.On("GetEvents", mock.Anything, "chip").Return(chipEvents, nil)
	svc.On("GetEvents", mock.Anything, "spacer").Return([]registry.Row{}, nil)
	svc.On("GetEvents", mock.Anything, mock.Anything).Return(nil, errors.WithStack(registry.ErrUnknownComponent))
	return svc
}

func labels(cs []completion.Candidate) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Label)
	}
	return out
}

func TestBuildAttributes(t *testing.T) {
	ctx := context.Background()
	b := completion.NewBuilder(newChipService(), aliasMap{"tm-chip-alias": "chip"})

	got, err := b.Build(ctx, completion.ModeAttribute, "chip", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"label", "color", ":margin", ":closable", ":active", "color", ":round"}, labels(got),
		"specific props first, then common props, duplicates kept")

	for _, c := range got {
		assert.Equal(t, 0, c.SortWeight)
		assert.Equal(t, completion.KindProp, c.Kind)
	}

	color := got[1]
	assert.Equal(t, "string", color.Detail)
	assert.Equal(t, "颜色", color.Documentation)
	assert.Equal(t, "primary", color.InsertText)
}

func TestBuildResolvesAlias(t *testing.T) {
	ctx := context.Background()
	b := completion.NewBuilder(newChipService(), aliasMap{"chip-item": "chip"})

	got, err := b.Build(ctx, completion.ModeAttribute, "chip-item", nil)
	require.NoError(t, err)
	assert.Len(t, got, len(chipProps)+len(commonProps))
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	b := completion.NewBuilder(newChipService(), aliasMap{})

	got, err := b.Build(ctx, completion.ModeAttribute, "chip", nil)
	require.NoError(t, err)

	t.Run("string prop embeds stripped default", func(t *testing.T) {
		c := completion.Resolve(got[1])
		assert.Equal(t, "color", c.Label)
		assert.Equal(t, `color="primary"`, c.InsertText)
		assert.Nil(t, c.FollowUp)
	})

	t.Run("bound prop inserts empty quotes and moves back", func(t *testing.T) {
		c := completion.Resolve(got[2])
		assert.Equal(t, ":margin", c.Label)
		assert.Equal(t, `:margin=""`, c.InsertText)
		require.NotNil(t, c.FollowUp)
		assert.Equal(t, 1, c.FollowUp.Left)
	})

	t.Run("capitalized String is a plain string", func(t *testing.T) {
		c := completion.Resolve(got[0])
		assert.Equal(t, `label="chip"`, c.InsertText)
	})

	t.Run("non prop candidates are untouched", func(t *testing.T) {
		ev := completion.Candidate{Label: "@click", Kind: completion.KindEvent}
		assert.Equal(t, ev, completion.Resolve(ev))
	})
}

func TestBuildEvents(t *testing.T) {
	ctx := context.Background()
	b := completion.NewBuilder(newChipService(), aliasMap{})

	got, err := b.Build(ctx, completion.ModeEvent, "chip", nil)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, completion.Candidate{
		Label:         "@click",
		Detail:        "e: Event",
		Documentation: "点击",
		InsertText:    "",
		Kind:          completion.KindEvent,
	}, got[0])
	assert.Equal(t, "@close", got[1].Label)
}

func TestBuildValues(t *testing.T) {
	ctx := context.Background()
	b := completion.NewBuilder(newChipService(), aliasMap{})

	tests := []struct {
		attr string
		want []string
	}{
		{attr: "closable", want: []string{"true", "false"}},
		{attr: "active", want: []string{"true", "false"}},
		{attr: "color", want: []string{}},
		{attr: "margin", want: []string{}},
		{attr: "missing", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.attr, func(t *testing.T) {
			got, err := b.BuildValues(ctx, "chip", tt.attr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, labels(got))
			for _, c := range got {
				assert.Equal(t, completion.KindValue, c.Kind)
				assert.Equal(t, c.Label, c.InsertText)
			}
		})
	}
}

func TestBuildUnknownComponent(t *testing.T) {
	ctx := context.Background()
	svc := newChipService()
	b := completion.NewBuilder(svc, aliasMap{})

	for _, mode := range []completion.Mode{completion.ModeAttribute, completion.ModeEvent, completion.ModeNone} {
		got, err := b.Build(ctx, mode, "chp", nil)
		require.NoError(t, err)
		assert.Empty(t, got, mode.String())
	}

	got, err := b.BuildValues(ctx, "chp", "closable")
	require.NoError(t, err)
	assert.Empty(t, got)

	// common props are never fetched for a tag with no descriptor
	svc.AssertNotCalled(t, "GetCommonProps", mock.Anything)
}

func TestBuildComponentWithoutOwnProps(t *testing.T) {
	ctx := context.Background()
	b := completion.NewBuilder(newChipService(), aliasMap{})

	got, err := b.Build(ctx, completion.ModeAttribute, "spacer", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"color", ":round"}, labels(got))

	got, err = b.Build(ctx, completion.ModeEvent, "spacer", nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = b.BuildValues(ctx, "spacer", "round")
	require.NoError(t, err)
	assert.Empty(t, got, "round is a number")
}

func TestBuildServiceFailure(t *testing.T) {
	ctx := context.Background()

	svc := &mockService{}
	svc.On("GetProps", mock.Anything, "chip").Return(nil, errors.New("docs site unreachable"))
	svc.On("GetCommonProps", mock.Anything).Return(commonProps, nil)
	svc.On("GetEvents", mock.Anything, "chip").Return(nil, errors.New("docs site unreachable"))

	b := completion.NewBuilder(svc, aliasMap{})

	_, err := b.Build(ctx, completion.ModeAttribute, "chip", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "docs site unreachable")

	_, err = b.Build(ctx, completion.ModeEvent, "chip", nil)
	require.Error(t, err)

	_, err = b.BuildValues(ctx, "chip", "closable")
	require.Error(t, err)
}

func TestBuildUsedAttributes(t *testing.T) {
	ctx := context.Background()
	used := completion.ScanUsed(`<tm-chip label="a" color="red">`)

	t.Run("ignored by default", func(t *testing.T) {
		b := completion.NewBuilder(newChipService(), aliasMap{})
		got, err := b.Build(ctx, completion.ModeAttribute, "chip", used)
		require.NoError(t, err)
		assert.Contains(t, labels(got), "color")
	})

	t.Run("excluded when enabled", func(t *testing.T) {
		b := completion.NewBuilder(newChipService(), aliasMap{}, completion.WithExcludeUsed(true))
		got, err := b.Build(ctx, completion.ModeAttribute, "chip", used)
		require.NoError(t, err)
		assert.NotContains(t, labels(got), "color")
		assert.Contains(t, labels(got), "label")
	})
}

func TestBuildIsIdempotent(t *testing.T) {
	ctx := context.Background()
	b := completion.NewBuilder(newChipService(), aliasMap{})

	first, err := b.Build(ctx, completion.ModeAttribute, "chip", nil)
	require.NoError(t, err)
	second, err := b.Build(ctx, completion.ModeAttribute, "chip", nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
