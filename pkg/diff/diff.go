// Package diff renders the difference between two values as a readable
// line diff of their pretty-printed exported fields.
package diff

import (
	"strings"

	"github.com/k0kubun/pp/v3"
	"github.com/kylelemons/godebug/diff"
)

// Exported returns "" when want and got print the same. Otherwise each line
// removed from want is marked ➖ and each line added in got is marked ➕.
func Exported[T any](want T, got T) string {
	printer := pp.New()
	printer.SetExportedOnly(true)
	printer.SetColoringEnabled(false)

	d := diff.Diff(printer.Sprint(want), printer.Sprint(got))
	if d == "" {
		return ""
	}

	d = strings.ReplaceAll(strings.ReplaceAll("\n"+d, "\n-", "\n➖"), "\n+", "\n➕")
	return strings.TrimPrefix(d, "\n")
}
