package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/harness"
)

// NewScenarioCommand creates the scenario command.
func NewScenarioCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenario <file|dir> ...",
		Short: "Run YAML scenarios against a fresh engine",
		Long: `Run conformance scenarios. Each scenario gets its own engine and
in-memory audit log; --db and the restore path are not used.

A directory argument runs every *.yaml file in it, sorted by name.

Exit codes:
  0 - every scenario passed
  1 - at least one scenario failed
  2 - a scenario file could not be loaded`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(cmd, rootOpts, args)
		},
	}
	return cmd
}

type scenarioOutcome struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Steps  int      `json:"steps"`
	Errors []string `json:"errors,omitempty"`
}

type scenariosView struct {
	Passed    int               `json:"passed"`
	Failed    int               `json:"failed"`
	Scenarios []scenarioOutcome `json:"scenarios"`
}

func (v scenariosView) String() string {
	var b strings.Builder
	for _, s := range v.Scenarios {
		mark := "✓"
		if !s.Pass {
			mark = "✗"
		}
		fmt.Fprintf(&b, "%s %s\n", mark, s.Name)
		for _, e := range s.Errors {
			fmt.Fprintf(&b, "    %s\n", strings.ReplaceAll(e, "\n", "\n    "))
		}
	}
	fmt.Fprintf(&b, "%d passed, %d failed\n", v.Passed, v.Failed)
	return b.String()
}

func runScenarios(cmd *cobra.Command, opts *RootOptions, args []string) error {
	var scenarios []*harness.Scenario
	for _, arg := range args {
		loaded, err := loadScenarios(arg)
		if err != nil {
			return WrapExitError(ExitCommandError, "loading scenarios", err)
		}
		scenarios = append(scenarios, loaded...)
	}

	f := newFormatter(cmd, opts)
	view := scenariosView{Scenarios: make([]scenarioOutcome, 0, len(scenarios))}
	for _, s := range scenarios {
		f.VerboseLog("running %s", s.Name)
		res, err := harness.Run(cmd.Context(), s)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("scenario %s", s.Name), err)
		}
		view.Scenarios = append(view.Scenarios, scenarioOutcome{
			Name:   s.Name,
			Pass:   res.Pass,
			Steps:  len(res.Steps),
			Errors: res.Errors,
		})
		if res.Pass {
			view.Passed++
		} else {
			view.Failed++
		}
	}

	if err := f.Success(view); err != nil {
		return err
	}
	if view.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", view.Failed))
	}
	return nil
}

func loadScenarios(path string) ([]*harness.Scenario, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return harness.LoadDir(path)
	}
	s, err := harness.LoadScenario(path)
	if err != nil {
		return nil, err
	}
	return []*harness.Scenario{s}, nil
}
