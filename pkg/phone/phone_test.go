package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"+1 555-000-1111", "+15550001111"},
		{"(555) 000 1111", "5550001111"},
		{"  +84 90.123.4567 ", "+84901234567"},
		{"+15550001111", "+15550001111"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "input %q", tt.in)
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"+15550001111", true},
		{"5550001111", true},
		{"+849012345678901", true},
		{"123", false},
		{"", false},
		{"+1555000111122345", false},
		{"phone", false},
		{"+1555000a111", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsValid(tt.in), "input %q", tt.in)
	}
}
