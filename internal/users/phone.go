package users

import "strings"

// NormalizePhone canonicalizes an Iranian phone number to the local
// 0-prefixed form so lookups and uniqueness work regardless of how the
// client formatted the contact. Unrecognized shapes pass through
// unchanged.
func NormalizePhone(phone string) string {
	p := strings.TrimSpace(phone)
	p = strings.ReplaceAll(p, " ", "")
	p = strings.ReplaceAll(p, "-", "")

	switch {
	case strings.HasPrefix(p, "+98"):
		return "0" + p[3:]
	case strings.HasPrefix(p, "0098"):
		return "0" + p[4:]
	case strings.HasPrefix(p, "98") && len(p) == 12:
		return "0" + p[2:]
	}
	return p
}
