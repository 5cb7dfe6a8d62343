package diff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/walteh/tmls/pkg/diff"
	"github.com/walteh/tmls/pkg/registry"
)

func TestExported(t *testing.T) {
	a := registry.Prop{Name: "size", Type: "string", Default: "'normal'"}

	assert.Empty(t, diff.Exported(a, a))

	b := a
	b.Default = "'large'"

	got := diff.Exported(a, b)
	assert.Contains(t, got, "➖")
	assert.Contains(t, got, "➕")
	assert.Contains(t, got, "'normal'")
	assert.Contains(t, got, "'large'")
}
