package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/ir"
)

// Scenario is one scripted audit run.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Seed drives the deterministic random source. Zero means 1.
	Seed uint64 `yaml:"seed,omitempty"`

	// MaxIterations is the rule pass cap. Zero means the engine default.
	MaxIterations int `yaml:"max_iterations,omitempty"`

	// AutoPass runs a rule pass after every successful act.
	AutoPass bool `yaml:"auto_pass,omitempty"`

	// Rules is a CUE package directory replacing the built-in rule set.
	// Relative paths are resolved against the scenario file.
	Rules string `yaml:"rules,omitempty"`

	// State holds path/value overrides applied to the default state.
	State map[string]any `yaml:"state,omitempty"`

	Steps      []Step      `yaml:"steps"`
	Assertions []Assertion `yaml:"assertions"`
}

// Step is a single engine request.
type Step struct {
	// Invoke runs an act directly with Params.
	Invoke string         `yaml:"invoke,omitempty"`
	Params map[string]any `yaml:"params,omitempty"`

	// Say routes a line of operator dialogue.
	Say string `yaml:"say,omitempty"`

	// Pass runs one rule pass.
	Pass bool `yaml:"pass,omitempty"`

	// ClearHalt lowers the halt flag on behalf of the named operator.
	ClearHalt string `yaml:"clear_halt,omitempty"`

	Expect *Expect `yaml:"expect,omitempty"`
}

// Step kinds.
const (
	StepInvoke    = "invoke"
	StepSay       = "say"
	StepPass      = "pass"
	StepClearHalt = "clear_halt"
)

// Kind returns which request the step makes, or "" if it sets none or
// more than one.
func (s Step) Kind() string {
	var kinds []string
	if s.Invoke != "" {
		kinds = append(kinds, StepInvoke)
	}
	if s.Say != "" {
		kinds = append(kinds, StepSay)
	}
	if s.Pass {
		kinds = append(kinds, StepPass)
	}
	if s.ClearHalt != "" {
		kinds = append(kinds, StepClearHalt)
	}
	if len(kinds) != 1 {
		return ""
	}
	return kinds[0]
}

// Expect checks the outcome of one step. Empty fields are not checked.
type Expect struct {
	Status     string   `yaml:"status,omitempty"`
	Reason     string   `yaml:"reason,omitempty"`
	Mode       string   `yaml:"mode,omitempty"`
	Fired      []string `yaml:"fired,omitempty"`
	Iterations *int     `yaml:"iterations,omitempty"`

	// Unchanged requires the state after the step to equal the state
	// before it.
	Unchanged bool `yaml:"unchanged,omitempty"`
}

// Assertion validates the final trace or state.
type Assertion struct {
	Type string `yaml:"type"`

	// Entry fields matched by trace_contains; Action is also the tag
	// counted by trace_count.
	Action string `yaml:"action,omitempty"`
	Act    string `yaml:"act,omitempty"`
	Rule   string `yaml:"rule,omitempty"`
	Status string `yaml:"status,omitempty"`

	// Count is the expected number of occurrences (trace_count).
	Count int `yaml:"count,omitempty"`

	// Actions is the expected action tag order (trace_order).
	Actions []string `yaml:"actions,omitempty"`

	// Path and Equals are used by final_state.
	Path   string `yaml:"path,omitempty"`
	Equals any    `yaml:"equals,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected, and a relative rules directory is resolved against the file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	s, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}
	if s.Rules != "" && !filepath.IsAbs(s.Rules) {
		s.Rules = filepath.Join(filepath.Dir(path), s.Rules)
	}
	return s, nil
}

// ParseScenario decodes and validates a scenario document.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadDir loads every *.yaml scenario in dir, sorted by file name.
func LoadDir(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenarios in %s", dir)
	}

	out := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		out = append(out, s)
	}
	return out, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.MaxIterations < 0 {
		return fmt.Errorf("max_iterations must be non-negative")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if step.Kind() == "" {
			return fmt.Errorf("steps[%d]: exactly one of invoke, say, pass, clear_halt is required", i)
		}
		if step.Params != nil && step.Kind() != StepInvoke {
			return fmt.Errorf("steps[%d]: params only apply to invoke", i)
		}
		if e := step.Expect; e != nil && e.Status != "" && !ir.ValidStatuses[ir.Status(e.Status)] {
			return fmt.Errorf("steps[%d].expect: unknown status %q", i, e.Status)
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Action == "" && a.Act == "" && a.Rule == "" && a.Status == "" {
			return fmt.Errorf("assertions[%d]: trace_contains needs at least one of action, act, rule, status", index)
		}
	case AssertTraceOrder:
		if len(a.Actions) == 0 {
			return fmt.Errorf("assertions[%d]: actions list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertFinalState:
		if a.Path == "" {
			return fmt.Errorf("assertions[%d]: path is required for final_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
