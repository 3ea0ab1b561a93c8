// Package rules provides the built-in LIL rule set and loads replacements
// from CUE directories.
package rules

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/act"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/compiler"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/ir"
)

//go:embed lil.cue
var lilSource string

// Source returns the CUE text of the built-in rule set.
func Source() string {
	return lilSource
}

// Default compiles the built-in rule set.
func Default() ([]ir.Rule, error) {
	return compiler.CompileString(lilSource, "lil.cue")
}

// Load compiles the rule set in dir, or the built-in set when dir is
// empty, and validates it against cat.
func Load(dir string, cat *act.Catalog) ([]ir.Rule, error) {
	var (
		rules []ir.Rule
		err   error
	)
	if dir == "" {
		rules, err = Default()
	} else {
		rules, err = compiler.LoadDir(dir)
	}
	if err != nil {
		return nil, fmt.Errorf("compiling rules: %w", err)
	}

	if verrs := compiler.Validate(rules, cat); len(verrs) > 0 {
		errs := make([]error, len(verrs))
		for i, e := range verrs {
			errs[i] = e
		}
		return nil, fmt.Errorf("invalid rule set: %w", errors.Join(errs...))
	}
	return rules, nil
}
