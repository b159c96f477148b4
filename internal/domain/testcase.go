package domain

// Group partitions the corpus by the kind of behavior a case exercises.
type Group string

const (
	GroupPositive    Group = "positive"
	GroupNegative    Group = "negative"
	GroupInteractive Group = "interactive"
)

// Groups lists the groups in the order they are reported.
var Groups = []Group{GroupPositive, GroupNegative, GroupInteractive}

// Metadata classifies a test case for reporting and selection.
type Metadata struct {
	Category     string `yaml:"category" json:"category,omitempty"`
	GrammarClass string `yaml:"grammarClass" json:"grammar_class,omitempty"`
	LengthClass  string `yaml:"lengthClass" json:"length_class,omitempty" validate:"omitempty,oneof=S M L"`
}

// TestCase is a single input/expected-output pair from the corpus.
// Cases are built once at load time and never mutated afterwards.
type TestCase struct {
	ID       string `yaml:"id" json:"id" validate:"required"`
	Name     string `yaml:"name" json:"name"`
	Input    string `yaml:"input" json:"input" validate:"required"`
	Expected string `yaml:"expected" json:"expected" validate:"required"`
	Group    Group  `yaml:"group" json:"group" validate:"required,oneof=positive negative interactive"`
	Metadata `yaml:",inline"`

	// PartialInput is the prefix typed before the live-update check.
	// Only interactive cases carry it.
	PartialInput string `yaml:"partialInput,omitempty" json:"partial_input,omitempty"`

	// Source is the corpus file the case was loaded from.
	Source string `yaml:"-" json:"-"`
}

// Title returns the display label used in reports, e.g. "Pos_Fun_001 - Convert simple sentences".
func (tc TestCase) Title() string {
	if tc.Name == "" {
		return tc.ID
	}
	return tc.ID + " - " + tc.Name
}

// Interactive reports whether the case runs the incremental typing scenario.
func (tc TestCase) Interactive() bool {
	return tc.Group == GroupInteractive
}
