// Package corpus loads, validates and selects the declarative conformance cases.
package corpus

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rivo/uniseg"
	"gopkg.in/yaml.v3"

	"livecheck/internal/domain"
)

//go:embed builtin/*.corpus.yaml
var builtinFS embed.FS

// BuiltinName is the source label of the embedded corpus.
const BuiltinName = "builtin/swifttranslator.corpus.yaml"

// document is the on-disk shape of a corpus file.
type document struct {
	Cases []domain.TestCase `yaml:"cases"`
}

var validate = validator.New()

// Parse decodes a corpus document. Unknown keys are rejected so typos in
// field names do not silently drop expectations.
func Parse(data []byte, source string) ([]domain.TestCase, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var doc document
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse corpus %s: %w", source, err)
	}
	for i := range doc.Cases {
		doc.Cases[i].Group = domain.Group(strings.ToLower(string(doc.Cases[i].Group)))
		doc.Cases[i].Source = source
	}
	return doc.Cases, nil
}

// LoadFile reads and parses one corpus file.
func LoadFile(path string) ([]domain.TestCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	return Parse(data, path)
}

// Builtin returns the embedded corpus.
func Builtin() ([]domain.TestCase, error) {
	data, err := builtinFS.ReadFile(BuiltinName)
	if err != nil {
		return nil, fmt.Errorf("read builtin corpus: %w", err)
	}
	return Parse(data, BuiltinName)
}

// Load returns the validated corpus at path. An empty path selects the
// builtin corpus; a directory is scanned for corpus files, which are
// concatenated in lexical path order.
func Load(path string, scanner *Scanner) ([]domain.TestCase, error) {
	var cases []domain.TestCase
	switch {
	case path == "":
		builtin, err := Builtin()
		if err != nil {
			return nil, err
		}
		cases = builtin
	default:
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("corpus path does not exist: %s", path)
		}
		files := []string{path}
		if info.IsDir() {
			if files, err = scanner.Scan(path); err != nil {
				return nil, err
			}
			if len(files) == 0 {
				return nil, fmt.Errorf("no corpus files under %s", path)
			}
		}
		for _, f := range files {
			loaded, err := LoadFile(f)
			if err != nil {
				return nil, err
			}
			cases = append(cases, loaded...)
		}
	}
	if err := Validate(cases); err != nil {
		return nil, err
	}
	return cases, nil
}

// Validate checks every case and the corpus-wide invariants: ids are unique
// and interactive cases carry a partial input that is a strict prefix of the
// input ending on a character boundary.
func Validate(cases []domain.TestCase) error {
	var errs []error
	seen := make(map[string]string, len(cases))
	for i, tc := range cases {
		label := tc.ID
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
		}
		if err := validate.Struct(tc); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				for _, fe := range verrs {
					errs = append(errs, fmt.Errorf("case %s (%s): %s fails %q", label, tc.Source, fe.Field(), fe.Tag()))
				}
			} else {
				errs = append(errs, fmt.Errorf("case %s: %w", label, err))
			}
		}
		if tc.ID != "" {
			if prev, dup := seen[tc.ID]; dup {
				errs = append(errs, fmt.Errorf("case %s (%s): duplicate id, first defined in %s", tc.ID, tc.Source, prev))
			} else {
				seen[tc.ID] = tc.Source
			}
		}
		if err := checkPartial(tc); err != nil {
			errs = append(errs, fmt.Errorf("case %s (%s): %w", label, tc.Source, err))
		}
	}
	return errors.Join(errs...)
}

func checkPartial(tc domain.TestCase) error {
	if !tc.Interactive() {
		if tc.PartialInput != "" {
			return fmt.Errorf("partialInput is only allowed on interactive cases")
		}
		return nil
	}
	if tc.PartialInput == "" {
		return fmt.Errorf("interactive case needs a partialInput")
	}
	if tc.PartialInput == tc.Input || !strings.HasPrefix(tc.Input, tc.PartialInput) {
		return fmt.Errorf("partialInput %q is not a strict prefix of input %q", tc.PartialInput, tc.Input)
	}
	if !onGraphemeBoundary(tc.Input, len(tc.PartialInput)) {
		return fmt.Errorf("partialInput %q splits a character of input %q", tc.PartialInput, tc.Input)
	}
	return nil
}

func onGraphemeBoundary(s string, offset int) bool {
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		from, to := gr.Positions()
		if from == offset || to == offset {
			return true
		}
		if from > offset {
			break
		}
	}
	return false
}

// Suffix returns the part of an interactive case typed after the live-update check.
func Suffix(tc domain.TestCase) string {
	return strings.TrimPrefix(tc.Input, tc.PartialInput)
}
