package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactPhones(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "no numbers",
			input:    "Du bist online",
			expected: "Du bist online",
		},
		{
			name:     "international format",
			input:    "Fahrgast anrufen: +49 151 2345678",
			expected: "Fahrgast anrufen: [tel]",
		},
		{
			name:     "local format with dash",
			input:    "Call 030-1234567 to confirm",
			expected: "Call [tel] to confirm",
		},
		{
			name:     "plain digit run",
			input:    "Kontakt 015123456789",
			expected: "Kontakt [tel]",
		},
		{
			name:     "short numbers untouched",
			input:    "2 min entfernt, 4 Sitze",
			expected: "2 min entfernt, 4 Sitze",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RedactPhones(tt.input))
		})
	}
}

func TestRedactEmails(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "no email",
			input:    "You're online",
			expected: "You're online",
		},
		{
			name:     "plain address",
			input:    "Beleg an max.mustermann@example.com gesendet",
			expected: "Beleg an [email] gesendet",
		},
		{
			name:     "plus addressing",
			input:    "rider+uber@mail.de",
			expected: "[email]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RedactEmails(tt.input))
		})
	}
}

func TestRedactPlates(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "no plate",
			input:    "Fahrt angenommen",
			expected: "Fahrt angenommen",
		},
		{
			name:     "standard plate",
			input:    "Fahrzeug B-XY 1234 zugewiesen",
			expected: "Fahrzeug [plate] zugewiesen",
		},
		{
			name:     "electric suffix",
			input:    "M-AB 123E",
			expected: "[plate]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RedactPlates(tt.input))
		})
	}
}

func TestScrub(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "clean status text passes through",
			input:    "Du bist offline",
			expected: "Du bist offline",
		},
		{
			name:     "trims surrounding whitespace",
			input:    "  You're online  ",
			expected: "You're online",
		},
		{
			name:     "mixed personal data",
			input:    "Anna, +49 151 2345678, anna@example.com, Fahrzeug B-XY 1234",
			expected: "Anna, [tel], [email], Fahrzeug [plate]",
		},
		{
			name:     "status phrases with ratings survive",
			input:    "Offline   4.9 ★",
			expected: "Offline   4.9 ★",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Scrub(tt.input))
		})
	}
}
