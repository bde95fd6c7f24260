package fs

import "strings"

func hasMeta(path string) bool {
	return strings.ContainsAny(path, `*?[\`)
}
