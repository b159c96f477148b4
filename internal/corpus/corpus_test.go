package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livecheck/internal/domain"
)

func TestBuiltin(t *testing.T) {
	cases, err := Load("", NewScanner(nil))
	require.NoError(t, err)
	require.Len(t, cases, 35)

	byID := make(map[string]domain.TestCase)
	counts := make(map[domain.Group]int)
	for _, tc := range cases {
		byID[tc.ID] = tc
		counts[tc.Group]++
	}
	assert.Equal(t, 24, counts[domain.GroupPositive])
	assert.Equal(t, 10, counts[domain.GroupNegative])
	assert.Equal(t, 1, counts[domain.GroupInteractive])

	assert.Equal(t, "මම බොඩිමට යනවා", byID["Pos_Fun_001"].Expected)
	assert.Equal(t, "lecture එක නැ", byID["Neg-Fun_0025"].Expected)
	assert.Equal(t, "None", byID["Neg-Fun_0030"].Input)
	assert.Equal(t, "None", byID["Neg-Fun_0030"].Expected)
	assert.Equal(t, "අඩෝ  මට ඒක අරන් එන්න බැරි උනා කියපන්කො", byID["Pos-Fun_0020"].Expected)

	ui := byID["Pos_UI_001"]
	assert.True(t, ui.Interactive())
	assert.Equal(t, "navaa", Suffix(ui))

	// Declaration order is preserved: positives, then negatives, then the live case.
	assert.Equal(t, "Pos_Fun_001", cases[0].ID)
	assert.Equal(t, "Pos_UI_001", cases[len(cases)-1].ID)
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("cases:\n  - id: A\n    expect: x\n"), "typo.corpus.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "typo.corpus.yaml")
}

func TestParse_NormalizesGroup(t *testing.T) {
	cases, err := Parse([]byte("cases:\n  - id: A\n    group: Positive\n    input: a\n    expected: b\n"), "x")
	require.NoError(t, err)
	require.Len(t, cases, 1)
	assert.Equal(t, domain.GroupPositive, cases[0].Group)
	assert.Equal(t, "x", cases[0].Source)
}

func TestValidate(t *testing.T) {
	valid := domain.TestCase{ID: "A", Input: "mama", Expected: "මම", Group: domain.GroupPositive}

	tests := []struct {
		name    string
		cases   []domain.TestCase
		wantErr string
	}{
		{name: "valid", cases: []domain.TestCase{valid}},
		{
			name:    "duplicate id",
			cases:   []domain.TestCase{valid, valid},
			wantErr: "duplicate id",
		},
		{
			name:    "missing expected",
			cases:   []domain.TestCase{{ID: "B", Input: "x", Group: domain.GroupNegative}},
			wantErr: "Expected",
		},
		{
			name:    "unknown group",
			cases:   []domain.TestCase{{ID: "C", Input: "x", Expected: "y", Group: "smoke"}},
			wantErr: "Group",
		},
		{
			name: "bad length class",
			cases: []domain.TestCase{{ID: "D", Input: "x", Expected: "y", Group: domain.GroupPositive,
				Metadata: domain.Metadata{LengthClass: "XL"}}},
			wantErr: "LengthClass",
		},
		{
			name:    "interactive without partial",
			cases:   []domain.TestCase{{ID: "E", Input: "mama", Expected: "මම", Group: domain.GroupInteractive}},
			wantErr: "needs a partialInput",
		},
		{
			name: "partial not a prefix",
			cases: []domain.TestCase{{ID: "F", Input: "mama", Expected: "මම", Group: domain.GroupInteractive,
				PartialInput: "මම"}},
			wantErr: "not a strict prefix",
		},
		{
			name: "partial equals input",
			cases: []domain.TestCase{{ID: "G", Input: "mama", Expected: "මම", Group: domain.GroupInteractive,
				PartialInput: "mama"}},
			wantErr: "not a strict prefix",
		},
		{
			name: "partial splits a character",
			cases: []domain.TestCase{{ID: "H", Input: "මම", Expected: "මම", Group: domain.GroupInteractive,
				PartialInput: "ම"[:2]}},
			wantErr: "splits a character",
		},
		{
			name: "partial on positive case",
			cases: []domain.TestCase{{ID: "I", Input: "mama", Expected: "මම", Group: domain.GroupPositive,
				PartialInput: "ma"}},
			wantErr: "only allowed on interactive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.cases)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_Directory(t *testing.T) {
	tmpDir := t.TempDir()
	write := func(rel, content string) {
		full := filepath.Join(tmpDir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}
	write("b/second.corpus.yaml", "cases:\n  - {id: B1, group: negative, input: x, expected: y}\n")
	write("a/first.corpus.yml", "cases:\n  - {id: A1, group: positive, input: x, expected: y}\n")
	write("a/notes.yaml", "not: a corpus\n")
	write(".hidden/skip.corpus.yaml", "cases:\n  - {id: H1, group: positive, input: x, expected: y}\n")

	cases, err := Load(tmpDir, NewScanner([]string{"node_modules"}))
	require.NoError(t, err)
	require.Len(t, cases, 2)
	assert.Equal(t, "A1", cases[0].ID)
	assert.Equal(t, "B1", cases[1].ID)

	t.Run("duplicate ids across files", func(t *testing.T) {
		write("c/dup.corpus.yaml", "cases:\n  - {id: A1, group: positive, input: x, expected: y}\n")
		_, err := Load(tmpDir, NewScanner(nil))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate id")
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := Load(filepath.Join(tmpDir, "nope"), NewScanner(nil))
		assert.Error(t, err)
	})

	t.Run("single file", func(t *testing.T) {
		cases, err := Load(filepath.Join(tmpDir, "b", "second.corpus.yaml"), NewScanner(nil))
		require.NoError(t, err)
		require.Len(t, cases, 1)
		assert.Equal(t, "B1", cases[0].ID)
	})
}
