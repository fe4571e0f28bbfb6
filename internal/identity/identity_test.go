package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases mixed case", "0xAbCdEf1234567890aBcDeF1234567890ABCDEF12", "0xabcdef1234567890abcdef1234567890abcdef12"},
		{"adds missing prefix", "ABCDEF1234567890abcdef1234567890abcdef12", "0xabcdef1234567890abcdef1234567890abcdef12"},
		{"uppercase prefix", "0XABCDEF1234567890ABCDEF1234567890ABCDEF12", "0xabcdef1234567890abcdef1234567890abcdef12"},
		{"trims whitespace", "  0xabcdef1234567890abcdef1234567890abcdef12  ", "0xabcdef1234567890abcdef1234567890abcdef12"},
		{"empty", "", ""},
		{"bare prefix", "0x", ""},
		{"whitespace only", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeAddress(tt.input))
		})
	}
}

func TestNormalizeAddress_SameIdentityConverges(t *testing.T) {
	forms := []string{
		"0xDEADBEEF00000000000000000000000000000001",
		"0xdeadbeef00000000000000000000000000000001",
		"DEADBEEF00000000000000000000000000000001",
		" 0Xdeadbeef00000000000000000000000000000001 ",
	}
	want := NormalizeAddress(forms[0])
	for _, f := range forms {
		assert.Equal(t, want, NormalizeAddress(f), "form %q should normalize identically", f)
	}
}

func TestNormalizeHash(t *testing.T) {
	assert.Equal(t,
		"0xaa11bb22cc33dd44ee55ff66aa11bb22cc33dd44ee55ff66aa11bb22cc33dd44",
		NormalizeHash("0xAA11BB22CC33DD44EE55FF66AA11BB22CC33DD44EE55FF66AA11BB22CC33DD44"),
	)
}

func TestIsHexString(t *testing.T) {
	assert.True(t, IsHexString("0123456789abcdefABCDEF"))
	assert.False(t, IsHexString(""))
	assert.False(t, IsHexString("0x12"))
	assert.False(t, IsHexString("ghij"))
}
