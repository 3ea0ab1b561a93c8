package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/act"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/compiler"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/ir"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/rules"
)

// NewRulesCommand creates the rules command group.
func NewRulesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect and check the rule set",
		Long: `Inspect the active rule set: the built-in LIL rules, or the CUE
package named by --rules.`,
	}
	cmd.AddCommand(newRulesListCommand(rootOpts))
	cmd.AddCommand(newRulesCheckCommand(rootOpts))
	return cmd
}

func newRulesListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the compiled rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, rs, err := loadRules(rootOpts)
			if err != nil {
				return err
			}
			digest, err := compiler.Digest(rs)
			if err != nil {
				return WrapExitError(ExitCommandError, "digesting rules", err)
			}
			return newFormatter(cmd, rootOpts).Success(rulesView{Digest: digest, Rules: rs})
		},
	}
}

func newRulesCheckCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the rules and report possible cycles",
		Long: `Validate the rule set against the act catalog and report rules that
can re-trigger each other.

Exit codes:
  0 - valid (cycle warnings do not fail the check)
  1 - validation errors
  2 - the rules do not compile`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return checkRules(cmd, rootOpts)
		},
	}
}

type rulesView struct {
	Digest string    `json:"digest"`
	Rules  []ir.Rule `json:"rules"`
}

func (v rulesView) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "rule set %s (%d rules)\n", v.Digest, len(v.Rules))
	for _, r := range v.Rules {
		fmt.Fprintf(&b, "%s [%d] %s\n", r.ID, r.Priority, r.Name)
		for _, c := range r.When {
			fmt.Fprintf(&b, "  when %s\n", c)
		}
		for _, a := range r.Then {
			fmt.Fprintf(&b, "  then %s\n", a)
		}
	}
	return b.String()
}

type checkView struct {
	Rules    int                        `json:"rules"`
	Errors   []compiler.ValidationError `json:"errors"`
	Warnings []compiler.CycleWarning    `json:"warnings"`
}

func (v checkView) String() string {
	var b strings.Builder
	for _, e := range v.Errors {
		fmt.Fprintf(&b, "error: %s\n", e)
	}
	for _, w := range v.Warnings {
		fmt.Fprintf(&b, "%s: %s\n", w.Level, w.Message)
	}
	if len(v.Errors) == 0 {
		fmt.Fprintf(&b, "%d rules ok", v.Rules)
		if len(v.Warnings) > 0 {
			fmt.Fprintf(&b, ", %d warning(s)", len(v.Warnings))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func checkRules(cmd *cobra.Command, opts *RootOptions) error {
	rs, err := compileRules(opts.RulesDir)
	if err != nil {
		return WrapExitError(ExitCommandError, "compiling rules", err)
	}

	cat := act.DefaultCatalog()
	view := checkView{
		Rules:    len(rs),
		Errors:   compiler.Validate(rs, cat),
		Warnings: compiler.AnalyzeCycles(rs, cat),
	}
	if view.Errors == nil {
		view.Errors = []compiler.ValidationError{}
	}
	if view.Warnings == nil {
		view.Warnings = []compiler.CycleWarning{}
	}
	if err := newFormatter(cmd, opts).Success(view); err != nil {
		return err
	}
	if len(view.Errors) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d validation error(s)", len(view.Errors)))
	}
	return nil
}

// compileRules compiles without validating, so check can list every error.
func compileRules(dir string) ([]ir.Rule, error) {
	if dir == "" {
		return rules.Default()
	}
	return compiler.LoadDir(dir)
}
