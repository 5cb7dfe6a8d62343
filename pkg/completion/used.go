package completion

import (
	"regexp"

	"github.com/samber/lo"
)

var usedAttribute = regexp.MustCompile(`\w+\s*=\s*[^=]*$`)

var attributeName = regexp.MustCompile(`^\w+`)

// ScanUsed returns the key=value fragments already typed on line. The
// fragments are whole matches such as `color="red"`, not bare names.
func ScanUsed(line string) []string {
	return usedAttribute.FindAllString(line, -1)
}

// UsedNames extracts the attribute names from ScanUsed fragments.
func UsedNames(fragments []string) []string {
	return lo.Uniq(lo.FilterMap(fragments, func(f string, _ int) (string, bool) {
		name := attributeName.FindString(f)
		return name, name != ""
	}))
}
