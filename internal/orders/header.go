package orders

import "strings"

// NormalizeHeader lowercases h and drops every character that is not an ASCII
// letter or digit, so "Bonhoeffer Code" and "bonhoeffer_code" collide.
func NormalizeHeader(h string) string {
	var b strings.Builder
	b.Grow(len(h))
	for i := 0; i < len(h); i++ {
		c := h[i]
		switch {
		case c >= 'A' && c <= 'Z':
			b.WriteByte(c + ('a' - 'A'))
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b.WriteByte(c)
		}
	}
	return b.String()
}
