package document_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/tmls/pkg/document"
)

func TestKindFromLanguageID(t *testing.T) {
	tests := []struct {
		name       string
		languageID string
		uri        string
		want       document.Kind
	}{
		{name: "vue language id", languageID: "vue", uri: "file:///a/b.txt", want: document.KindVue},
		{name: "typescript react", languageID: "typescriptreact", uri: "", want: document.KindTypeScriptReact},
		{name: "unknown id falls back to extension", languageID: "html", uri: "file:///src/pages/index.vue", want: document.KindVue},
		{name: "nvue extension", languageID: "", uri: "/src/pages/index.nvue", want: document.KindVue},
		{name: "ts extension", languageID: "", uri: "file:///src/main.ts", want: document.KindTypeScript},
		{name: "jsx extension", languageID: "", uri: "App.jsx", want: document.KindJavaScriptReact},
		{name: "plain text", languageID: "plaintext", uri: "file:///notes.txt", want: document.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, document.KindFromLanguageID(tt.languageID, tt.uri))
		})
	}
}

func TestRequestAt(t *testing.T) {
	content := "<template>\n  <tm-button size=\"large\" >\n</template>"
	doc := document.New("file:///a.vue", document.KindVue, 1, content)

	req := doc.RequestAt(1, 26, " ")

	assert.Equal(t, "<template>\n  <tm-button size=\"large\" ", req.Before)
	assert.Equal(t, ">\n</template>", req.After)
	assert.Equal(t, "  <tm-button size=\"large\" >", req.Line)
	assert.Equal(t, "  <tm-button size=\"large\" ", req.LineBefore)
	assert.Equal(t, ">", req.CharAfter())
	assert.Equal(t, " ", req.Trigger)
	assert.Equal(t, document.KindVue, req.Kind)
}

func TestCharAfter(t *testing.T) {
	tests := []struct {
		name    string
		content string
		offset  int
		want    string
	}{
		{name: "end of buffer", content: "<tm-button ", offset: 11, want: ""},
		{name: "end of line", content: "<tm-button \n>", offset: 11, want: ""},
		{name: "end of crlf line", content: "<tm-button \r\n>", offset: 11, want: ""},
		{name: "slash", content: "<tm-button />", offset: 11, want: "/"},
		{name: "multibyte", content: "a头", offset: 1, want: "头"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := document.New("x.vue", document.KindVue, 0, tt.content)
			assert.Equal(t, tt.want, doc.RequestAtOffset(tt.offset, "").CharAfter())
		})
	}
}

func TestLineAt(t *testing.T) {
	doc := document.New("x.vue", document.KindVue, 0, "one\r\ntwo\nthree")

	line, ok := doc.LineAt(0)
	require.True(t, ok)
	assert.Equal(t, "one", line)

	line, ok = doc.LineAt(2)
	require.True(t, ok)
	assert.Equal(t, "three", line)

	_, ok = doc.LineAt(3)
	assert.False(t, ok)
}
