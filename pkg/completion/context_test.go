package completion_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/tmls/pkg/completion"
	"github.com/walteh/tmls/pkg/document"
)

func TestSuppressed(t *testing.T) {
	tests := []struct {
		name  string
		kind  document.Kind
		after string
		want  bool
	}{
		{name: "plain text", kind: document.KindUnknown, after: ">\n</template>", want: true},
		{name: "typescript", kind: document.KindTypeScript, after: ">\n</template>", want: true},
		{name: "inside open tag", kind: document.KindVue, after: ">\n</template>", want: false},
		{name: "before self closing end", kind: document.KindVue, after: " />\n</template>", want: false},
		{name: "outside template block", kind: document.KindVue, after: ">\n</script>", want: true},
		{name: "end of buffer", kind: document.KindVue, after: "", want: true},
		{name: "element content", kind: document.KindVue, after: "\n  <tm-text />\n</template>", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, completion.Suppressed(tt.kind, tt.after))
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		charAfter string
		before    string
		wantMode  completion.Mode
		wantTag   string
	}{
		{
			name:      "space before closing bracket",
			charAfter: ">",
			before:    "<tm-button size=\"large\" ",
			wantMode:  completion.ModeAttribute,
			wantTag:   "button",
		},
		{
			name:      "end of line is not a boundary",
			charAfter: "",
			before:    "<tm-button size=\"large\" ",
			wantMode:  completion.ModeNone,
		},
		{
			name:      "colon",
			charAfter: " ",
			before:    "<tm-button :",
			wantMode:  completion.ModeAttribute,
			wantTag:   "button",
		},
		{
			name:      "at sign",
			charAfter: "/",
			before:    "<TmGridItem @",
			wantMode:  completion.ModeEvent,
			wantTag:   "grid-item",
		},
		{
			name:      "mid word",
			charAfter: ">",
			before:    "<tm-button si",
			wantMode:  completion.ModeNone,
			wantTag:   "button",
		},
		{
			name:      "newline after cursor counts",
			charAfter: "\n",
			before:    "<tm-sheet ",
			wantMode:  completion.ModeAttribute,
			wantTag:   "sheet",
		},
		{
			name:      "not a custom tag",
			charAfter: ">",
			before:    "<view class=\"a\" ",
			wantMode:  completion.ModeNone,
		},
		{
			name:      "quote is not a boundary",
			charAfter: "\"",
			before:    "<tm-button size=\"",
			wantMode:  completion.ModeNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mode, occ := completion.Classify(tt.charAfter, tt.before)
			assert.Equal(t, tt.wantMode, mode)
			if tt.wantTag == "" {
				if mode == completion.ModeNone && occ != nil {
					t.Fatalf("unexpected tag %q", occ.Name)
				}
				return
			}
			require.NotNil(t, occ)
			assert.Equal(t, tt.wantTag, occ.Name)
		})
	}
}

func TestClassifyValue(t *testing.T) {
	tests := []struct {
		name       string
		lineBefore string
		wantAttr   string
		wantOK     bool
	}{
		{name: "bound double quote", lineBefore: "  <tm-button :loading=\"", wantAttr: "loading", wantOK: true},
		{name: "single quote partial", lineBefore: "<tm-button loading='tr", wantAttr: "loading", wantOK: true},
		{name: "unquoted", lineBefore: "<tm-button loading=", wantAttr: "loading", wantOK: true},
		{name: "spaces around equals", lineBefore: "<tm-button loading = \"", wantAttr: "loading", wantOK: true},
		{name: "second attribute", lineBefore: "<tm-button size=\"large\" block=\"", wantAttr: "block", wantOK: true},
		{name: "after closed value", lineBefore: "<tm-button size=\"large\" ", wantOK: false},
		{name: "no assignment", lineBefore: "<tm-button", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attr, ok := completion.ClassifyValue(tt.lineBefore)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantAttr, attr)
		})
	}
}

func TestValueTrigger(t *testing.T) {
	assert.True(t, completion.ValueTrigger(`"`))
	assert.True(t, completion.ValueTrigger("'"))
	assert.True(t, completion.ValueTrigger(""))
	assert.False(t, completion.ValueTrigger(" "))
	assert.False(t, completion.ValueTrigger("@"))
}

func TestScanUsed(t *testing.T) {
	fragments := completion.ScanUsed(`<tm-button size="large" color="red">`)
	assert.Equal(t, []string{`color="red">`}, fragments)
	assert.Equal(t, []string{"color"}, completion.UsedNames(fragments))

	assert.Empty(t, completion.ScanUsed("<tm-button "))
	assert.Empty(t, completion.UsedNames(nil))
}
