// Package compare holds the exact-match comparator used to judge case output.
package compare

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"golang.org/x/text/unicode/norm"
)

// Outcome is the result of comparing actual output with the expected text.
type Outcome struct {
	Equal bool
	// Diff renders removed expected text as [-x-] and added actual text as {+y+}.
	Diff string
	// NormalizationOnly is set when the texts differ but are equal under NFC.
	// The comparison still fails; the flag only helps diagnosis.
	NormalizationOnly bool
}

// Compare checks actual against expected for exact equality after stripping
// leading and trailing whitespace from both. Nothing else is normalized.
func Compare(actual, expected string) Outcome {
	a := strings.TrimSpace(actual)
	e := strings.TrimSpace(expected)
	if a == e {
		return Outcome{Equal: true}
	}
	return Outcome{
		Diff:              Diff(e, a),
		NormalizationOnly: norm.NFC.String(a) == norm.NFC.String(e),
	}
}

// Diff returns a rune-level inline diff turning expected into actual.
func Diff(expected, actual string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(expected, actual, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			b.WriteString("[-")
			b.WriteString(d.Text)
			b.WriteString("-]")
		case diffmatchpatch.DiffInsert:
			b.WriteString("{+")
			b.WriteString(d.Text)
			b.WriteString("+}")
		default:
			b.WriteString(d.Text)
		}
	}
	return b.String()
}
