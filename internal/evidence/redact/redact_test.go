package redact

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhone(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"maltese mobile", "+35699123456", "***-***-456"},
		{"formatted", "(356) 99-123-456", "***-***-456"},
		{"exactly three digits", "123", "***-***-123"},
		{"too few digits", "+1", "***-***-***"},
		{"no digits", "call me", "***-***-***"},
		{"empty", "", "none"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Phone(tt.in))
		})
	}
}

func TestEmail(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"typical", "john.doe@example.com", "jo***@example.com"},
		{"short local part", "jo@example.com", "jo***@example.com"},
		{"single char local part", "j@example.com", "j***@example.com"},
		{"no at sign", "not-an-email", "[invalid email]"},
		{"leading at sign", "@example.com", "[invalid email]"},
		{"empty", "", "none"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Email(tt.in))
		})
	}
}

func TestID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"long id", "1234567890abcdef", "1234****cdef"},
		{"exactly eight", "abcdefgh", "abcd****efgh"},
		{"short", "short", "****"},
		{"empty", "", "none"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ID(tt.in))
		})
	}
}

func TestPayloadRedactsSensitiveKeys(t *testing.T) {
	in := map[string]any{
		"token": "abc",
		"nested": map[string]any{
			"password": "x",
			"keep":     1,
		},
	}
	want := map[string]any{
		"token": Redacted,
		"nested": map[string]any{
			"password": Redacted,
			"keep":     1,
		},
	}
	assert.Equal(t, want, Payload(in))
}

func TestPayloadSubstringMatch(t *testing.T) {
	in := map[string]any{
		"phoneNumber":   "+35699123456",
		"auth_token":    "t",
		"Authorization": "Bearer x",
		"apiKey":        "k",
		"privateKey":    "p",
		"address":       "12 Triq il-Kbira",
	}
	got := Payload(in)
	assert.Equal(t, Redacted, got["phoneNumber"])
	assert.Equal(t, Redacted, got["auth_token"])
	assert.Equal(t, Redacted, got["Authorization"])
	assert.Equal(t, Redacted, got["apiKey"])
	assert.Equal(t, Redacted, got["privateKey"])
	assert.Equal(t, "12 Triq il-Kbira", got["address"])
}

func TestPayloadSensitiveStructuredValueNotInspected(t *testing.T) {
	in := map[string]any{
		"credentials": map[string]any{"user": "u", "pass": "p"},
	}
	assert.Equal(t, map[string]any{"credentials": Redacted}, Payload(in))
}

func TestPayloadRecursesArrays(t *testing.T) {
	in := map[string]any{
		"events": []any{
			map[string]any{"email": "a@b.c", "kind": "viewed"},
			"plain",
			7,
		},
	}
	want := map[string]any{
		"events": []any{
			map[string]any{"email": Redacted, "kind": "viewed"},
			"plain",
			7,
		},
	}
	assert.Equal(t, want, Payload(in))
}

func TestPayloadNonObjectInput(t *testing.T) {
	assert.Equal(t, map[string]any{}, Payload("just a string"))
	assert.Equal(t, map[string]any{}, Payload([]any{"a", "b"}))
	assert.Equal(t, map[string]any{}, Payload(nil))
}
