package corpus

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"livecheck/internal/domain"
)

// Filter selects cases by wildcard name pattern and by expression
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// FilterByName keeps cases whose id or name matches pattern.
// Supports patterns like "Neg-*", "*_UI_*" or "*question*"; a pattern
// without wildcards matches as a substring.
func (f *Filter) FilterByName(cases []domain.TestCase, pattern string) []domain.TestCase {
	if pattern == "" {
		return cases
	}

	var filtered []domain.TestCase
	for _, tc := range cases {
		if matchName(pattern, tc.ID) || matchName(pattern, tc.Name) {
			filtered = append(filtered, tc)
		}
	}
	return filtered
}

func matchName(pattern, name string) bool {
	if name == "" {
		return false
	}

	// filepath.Match supports * and ? wildcards
	if matched, err := filepath.Match(pattern, name); err == nil && matched {
		return true
	}

	// "*Payment*"-style patterns also match when every literal part occurs in order
	if strings.Contains(pattern, "*") {
		rest := name
		nonEmpty := false
		for _, part := range strings.Split(pattern, "*") {
			if part == "" {
				continue
			}
			nonEmpty = true
			idx := strings.Index(rest, part)
			if idx < 0 {
				return false
			}
			rest = rest[idx+len(part):]
		}
		return nonEmpty
	}

	if !strings.Contains(pattern, "?") {
		return strings.Contains(name, pattern)
	}
	return false
}

// CaseEnv is the environment a --where expression is evaluated against.
type CaseEnv struct {
	ID           string `expr:"id"`
	Name         string `expr:"name"`
	Group        string `expr:"group"`
	Category     string `expr:"category"`
	GrammarClass string `expr:"grammarClass"`
	LengthClass  string `expr:"lengthClass"`
	Input        string `expr:"input"`
	Expected     string `expr:"expected"`
}

func envFor(tc domain.TestCase) CaseEnv {
	return CaseEnv{
		ID:           tc.ID,
		Name:         tc.Name,
		Group:        string(tc.Group),
		Category:     tc.Category,
		GrammarClass: tc.GrammarClass,
		LengthClass:  tc.LengthClass,
		Input:        tc.Input,
		Expected:     tc.Expected,
	}
}

// CompileWhere compiles a boolean selection expression such as
// `group == "negative" && lengthClass == "S"`.
func CompileWhere(where string) (*vm.Program, error) {
	program, err := expr.Compile(where, expr.Env(CaseEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile --where %q: %w", where, err)
	}
	return program, nil
}

// FilterWhere keeps cases for which the expression holds.
func (f *Filter) FilterWhere(cases []domain.TestCase, where string) ([]domain.TestCase, error) {
	if strings.TrimSpace(where) == "" {
		return cases, nil
	}
	program, err := CompileWhere(where)
	if err != nil {
		return nil, err
	}

	var filtered []domain.TestCase
	for _, tc := range cases {
		result, err := expr.Run(program, envFor(tc))
		if err != nil {
			return nil, fmt.Errorf("evaluate --where on case %s: %w", tc.ID, err)
		}
		if keep, _ := result.(bool); keep {
			filtered = append(filtered, tc)
		}
	}
	return filtered, nil
}

// Select applies the name pattern and then the expression.
func (f *Filter) Select(cases []domain.TestCase, pattern, where string) ([]domain.TestCase, error) {
	return f.FilterWhere(f.FilterByName(cases, pattern), where)
}
