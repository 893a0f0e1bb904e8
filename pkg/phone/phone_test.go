package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigits(t *testing.T) {
	assert.Equal(t, "919876543210", Digits("+91 98765-43210"))
	assert.Equal(t, "", Digits("n/a"))
}

func TestIsPlausible(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		want  bool
	}{
		{"Indian mobile with prefix", "+91 98765 43210", true},
		{"Indian mobile without prefix", "9876543210", true},
		{"US number with prefix", "+1 (202) 456-1111", true},
		{"too few digits", "98765", false},
		{"nine digits", "987654321", false},
		{"letters", "call me maybe", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPlausible(tt.phone, ""))
		})
	}
}

func TestNormalize(t *testing.T) {
	got, err := Normalize("98765 43210", "")
	require.NoError(t, err)
	assert.Equal(t, "+919876543210", got)

	got, err = Normalize("+44 7911 123456", "IN")
	require.NoError(t, err)
	assert.Equal(t, "+447911123456", got)

	_, err = Normalize("  ", "")
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = Normalize("abc", "")
	assert.Error(t, err)
}

func TestDisplay(t *testing.T) {
	assert.Contains(t, Display("+919876543210", ""), "98765 43210")
	assert.NotContains(t, Display("+919876543210", ""), "+91")
	assert.Equal(t, "+1 202-456-1111", Display("+12024561111", "IN"))
	assert.Equal(t, "not a number", Display(" not a number ", ""))
	assert.Equal(t, "", Display("", ""))
}
