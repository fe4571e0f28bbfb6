package identity

import "strings"

// NormalizeAddress canonicalizes an EVM address into lowercased,
// 0x-prefixed hex so that different representations of the same address
// (mixed-case hex, missing prefix, surrounding whitespace) compare as
// equal. Entity keys are derived from this form everywhere; raw input
// never reaches storage.
func NormalizeAddress(address string) string {
	return normalizeHex(address)
}

// NormalizeHash canonicalizes a transaction hash the same way
// NormalizeAddress canonicalizes addresses.
func NormalizeHash(hash string) string {
	return normalizeHex(hash)
}

func normalizeHex(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}

	withoutPrefix := strings.TrimPrefix(strings.TrimPrefix(trimmed, "0x"), "0X")
	if withoutPrefix == "" {
		return ""
	}
	if IsHexString(withoutPrefix) {
		return "0x" + strings.ToLower(withoutPrefix)
	}
	// Keep a recognizable (if malformed) identity rather than dropping data;
	// the decode layer rejects garbage before it gets here.
	if strings.HasPrefix(trimmed, "0x") || strings.HasPrefix(trimmed, "0X") {
		return "0x" + strings.ToLower(withoutPrefix)
	}
	return strings.ToLower(trimmed)
}

// IsHexString reports whether s consists solely of hex digits.
func IsHexString(s string) bool {
	if s == "" {
		return false
	}
	for _, ch := range s {
		switch {
		case ch >= '0' && ch <= '9':
		case ch >= 'a' && ch <= 'f':
		case ch >= 'A' && ch <= 'F':
		default:
			return false
		}
	}
	return true
}
