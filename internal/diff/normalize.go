package diff

import (
	"strings"
	"unicode"
)

// NormalizeCQ reduces a continuous query definition to a canonical form
// for equality checks: lower-cased, with all whitespace, semicolons and
// double quotes removed, and with fill(null) stripped because the server
// drops that clause silently on storage. The transformation is
// idempotent, so definitions read back from the server and definitions
// declared in config compare cleanly.
func NormalizeCQ(definition string) string {
	var b strings.Builder
	b.Grow(len(definition))
	for _, r := range strings.ToLower(definition) {
		if unicode.IsSpace(r) || r == ';' || r == '"' {
			continue
		}
		b.WriteRune(r)
	}
	return strings.ReplaceAll(b.String(), "fill(null)", "")
}
