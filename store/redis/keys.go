package redis

import "strings"

// globSpecial are the characters SCAN MATCH treats as pattern syntax.
const globSpecial = `*?[]\`

// matchPattern returns a SCAN MATCH pattern selecting keys that start with
// prefix literally.
func matchPattern(prefix string) string {
	var b strings.Builder
	b.Grow(len(prefix) + 2)
	for _, r := range prefix {
		if strings.ContainsRune(globSpecial, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('*')
	return b.String()
}
