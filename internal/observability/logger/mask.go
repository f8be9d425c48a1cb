package logger

import "strings"

// MaskEmail deja la primera letra del usuario y del dominio: ada@example.com => a…@e….com
func MaskEmail(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	i := strings.IndexByte(s, '@')
	if i <= 0 {
		switch {
		case s == "":
			return ""
		case len(s) <= 3:
			return "***"
		default:
			return s[:1] + "…" + s[len(s)-1:]
		}
	}

	labels := strings.Split(s[i+1:], ".")
	labels[0] = maskPart(labels[0])
	return maskPart(s[:i]) + "@" + strings.Join(labels, ".")
}

// maskPart deja a lo sumo la primera letra; un solo caracter se tapa entero.
func maskPart(p string) string {
	switch len(p) {
	case 0:
		return ""
	case 1:
		return "*"
	default:
		return p[:1] + "…"
	}
}
