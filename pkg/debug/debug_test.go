package debug_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/tmls/pkg/debug"
)

func TestPackageAndFunc(t *testing.T) {
	tests := []struct {
		name    string
		wantPkg string
		wantFn  string
	}{
		{
			name:    "github.com/walteh/tmls/pkg/lsp.(*Server).Hover",
			wantPkg: "github.com/walteh/tmls/pkg/lsp",
			wantFn:  "(*Server).Hover",
		},
		{
			name:    "main.main",
			wantPkg: "main",
			wantFn:  "main",
		},
		{
			name:    "github.com/walteh/tmls/pkg/completion.ScanUsed",
			wantPkg: "github.com/walteh/tmls/pkg/completion",
			wantFn:  "ScanUsed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkg, fn := debug.PackageAndFunc(tt.name)
			assert.Equal(t, tt.wantPkg, pkg)
			assert.Equal(t, tt.wantFn, fn)
		})
	}
}

func TestFormatCaller(t *testing.T) {
	got := debug.FormatCaller("github.com/walteh/tmls/pkg/lsp", "/src/tmls/pkg/lsp/server.go", 42, false)
	assert.Equal(t, "github.com/walteh/tmls/pkg/lsp:server.go:42", got)
}

func TestParseLevel(t *testing.T) {
	lvl, err := debug.ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, lvl)

	lvl, err = debug.ParseLevel("TRACE")
	require.NoError(t, err)
	assert.Equal(t, zerolog.TraceLevel, lvl)

	_, err = debug.ParseLevel("loud")
	require.Error(t, err)
}

func TestNewConsoleLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := debug.NewConsoleLogger(&buf, zerolog.DebugLevel, false)

	logger.Trace().Msg("dropped")
	logger.Warn().Str("tag", "button").Msg("attribute completion failed")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "attribute completion failed")
	assert.Contains(t, out, "tag=button")
	assert.Contains(t, out, "debug_test.go:")
}
