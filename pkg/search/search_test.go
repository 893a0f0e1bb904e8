package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  ABC Healthcare ", "abc healthcare"},
		{"Bogotá", "bogota"},
		{"STRASSE", "strasse"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestMatcher(t *testing.T) {
	m := NewMatcher("health")
	assert.True(t, m.Match("LN-001", "ABC HealthCare"))
	assert.False(t, m.Match("LN-001", "XYZ Medical"))
	assert.False(t, m.Match())

	blank := NewMatcher("   ")
	assert.True(t, blank.Empty())
	assert.True(t, blank.Match("anything"))

	var zero Matcher
	assert.True(t, zero.Match())

	assert.True(t, NewMatcher("sao").Match("São Paulo"))
}
