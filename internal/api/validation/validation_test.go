package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		valid bool
	}{
		{"valid_simple", "user@example.com", true},
		{"valid_subdomain", "user@mail.example.com", true},
		{"valid_plus", "user+tag@example.com", true},
		{"valid_dash", "user-name@example.com", true},
		{"valid_dot", "user.name@example.com", true},
		{"valid_numbers", "user123@example456.com", true},
		{"invalid_no_at", "userexample.com", false},
		{"invalid_no_domain", "user@", false},
		{"invalid_no_user", "@example.com", false},
		{"invalid_double_at", "user@@example.com", false},
		{"invalid_spaces", "user @example.com", false},
		{"invalid_no_tld", "user@example", false},
		{"too_long", "a" + string(make([]byte, 250)) + "@example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidEmail(tt.email)
			assert.Equal(t, tt.valid, result, "Email: %s", tt.email)
		})
	}
}

func TestIsValidUUID(t *testing.T) {
	tests := []struct {
		name  string
		id    string
		valid bool
	}{
		{"valid_lowercase", "123e4567-e89b-12d3-a456-426614174000", true},
		{"valid_uppercase", "123E4567-E89B-12D3-A456-426614174000", true},
		{"invalid_short", "123e4567-e89b-12d3-a456", false},
		{"invalid_no_dashes", "123e4567e89b12d3a456426614174000", false},
		{"invalid_not_hex", "123g4567-e89b-12d3-a456-426614174000", false},
		{"invalid_empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidUUID(tt.id)
			assert.Equal(t, tt.valid, result, "UUID: %s", tt.id)
		})
	}
}

func TestIsValidOTP(t *testing.T) {
	tests := []struct {
		name  string
		code  string
		valid bool
	}{
		{"valid", "123456", true},
		{"valid_leading_zero", "012345", true},
		{"invalid_short", "12345", false},
		{"invalid_long", "1234567", false},
		{"invalid_letters", "12a456", false},
		{"invalid_empty", "", false},
		{"invalid_spaces", "123 56", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidOTP(tt.code)
			assert.Equal(t, tt.valid, result, "OTP: %s", tt.code)
		})
	}
}

func TestIsValidPassword(t *testing.T) {
	t.Run("accepts a reasonable password", func(t *testing.T) {
		ok, msg := IsValidPassword("longenough")
		assert.True(t, ok)
		assert.Empty(t, msg)
	})

	t.Run("rejects short passwords", func(t *testing.T) {
		ok, msg := IsValidPassword("short")
		assert.False(t, ok)
		assert.Contains(t, msg, "at least 8")
	})

	t.Run("rejects absurdly long passwords", func(t *testing.T) {
		ok, msg := IsValidPassword(string(make([]byte, 129)))
		assert.False(t, ok)
		assert.Contains(t, msg, "at most 128")
	})
}

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "hello world", "hello world"},
		{"null_bytes", "hello\x00world", "helloworld"},
		{"keeps_newlines", "line1\nline2", "line1\nline2"},
		{"keeps_tabs", "a\tb", "a\tb"},
		{"strips_control", "a\x01b\x02c", "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeString(tt.input))
		})
	}
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "hello", TruncateString("hello", 10))
	assert.Equal(t, "hel", TruncateString("hello", 3))
	assert.Equal(t, "", TruncateString("", 5))
}
