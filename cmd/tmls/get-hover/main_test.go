package get_hover

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/tmls/pkg/app"
)

const page = "<template>\n  <tm-avatar size=\"40\" />\n  <view />\n</template>\n"

func TestRun(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/proj/index.vue", []byte(page), 0o644))

	ctx, a, err := app.Load(context.Background(), fs, "/proj", nil, &bytes.Buffer{}, false)
	require.NoError(t, err)

	tests := []struct {
		name    string
		line    int
		html    bool
		want    string
		wantErr error
	}{
		{name: "markdown", line: 1, want: "## 头像 Avatar"},
		{name: "html", line: 1, html: true, want: "<h2>头像 Avatar</h2>"},
		{name: "plain tag", line: 2, wantErr: ErrNoHover},
		{name: "out of range", line: 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			me := &Handler{filePath: "/proj/index.vue", line: tt.line, html: tt.html, fs: fs, out: &out}

			err := me.Run(ctx, a)
			if tt.want == "" {
				require.Error(t, err)
				if tt.wantErr != nil {
					assert.True(t, errors.Is(err, tt.wantErr))
				}
				return
			}

			require.NoError(t, err)
			assert.Contains(t, out.String(), tt.want)
		})
	}
}
