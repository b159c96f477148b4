package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		name     string
		actual   string
		expected string
		equal    bool
	}{
		{name: "exact sinhala", actual: "මම බොඩිමට යනවා", expected: "මම බොඩිමට යනවා", equal: true},
		{name: "mixed script", actual: "lecture එක නැ", expected: "lecture එක නැ", equal: true},
		{name: "passthrough token", actual: "None", expected: "None", equal: true},
		{name: "outer whitespace stripped on both sides", actual: "group meeting එකට ? ", expected: " group meeting එකට ?", equal: true},
		{name: "case differs", actual: "Lecture එක නැ", expected: "lecture එක නැ", equal: false},
		{name: "inner whitespace differs", actual: "අඩෝ මට", expected: "අඩෝ  මට", equal: false},
		{name: "punctuation differs", actual: "මට එපා", expected: "මට එපා.", equal: false},
		{name: "empty actual", actual: "", expected: "None", equal: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Compare(tt.actual, tt.expected)
			assert.Equal(t, tt.equal, out.Equal)
			if tt.equal {
				assert.Empty(t, out.Diff)
			} else {
				assert.NotEmpty(t, out.Diff)
			}
		})
	}
}

func TestCompare_NormalizationOnly(t *testing.T) {
	// "é" precomposed vs e + combining acute.
	out := Compare("caf\u00e9", "cafe\u0301")
	assert.False(t, out.Equal)
	assert.True(t, out.NormalizationOnly)

	out = Compare("cafe", "caf\u00e9")
	assert.False(t, out.NormalizationOnly)
}

func TestDiff(t *testing.T) {
	assert.Equal(t, "abc", Diff("abc", "abc"))
	assert.Equal(t, "rs[-.-]{+,+}500", Diff("rs.500", "rs,500"))
	assert.Equal(t, "email {+x+}", Diff("email ", "email x"))
}
