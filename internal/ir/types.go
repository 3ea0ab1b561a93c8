package ir

import (
	"encoding/json"
	"fmt"
	"sort"
)

// ActID names an entry of the act catalog, e.g. "ACT_BRIDGE_OUT".
type ActID string

// RuleID names a rule, e.g. "LIL_XXL".
type RuleID string

// Rule is a compiled LIL rule: when every condition holds, the actions run
// in declaration order.
type Rule struct {
	ID          RuleID      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Priority    int         `json:"priority"`
	When        []Condition `json:"when"`
	Then        []Action    `json:"then"`
}

// ActionKind discriminates the Action variants.
type ActionKind string

const (
	ActionSetState   ActionKind = "set_state"
	ActionExecuteAct ActionKind = "execute_act"
)

// Action is a sealed interface for rule consequences.
// Only SetState and ExecuteAct implement it.
type Action interface {
	actionNode()
	Kind() ActionKind
}

// SetState writes Value at Path directly, bypassing the act catalog.
type SetState struct {
	Path  string `json:"path"`
	Value Value  `json:"value"`
}

func (SetState) actionNode() {}
func (SetState) Kind() ActionKind { return ActionSetState }

func (a SetState) String() string {
	return fmt.Sprintf("set %s = %s", a.Path, Format(a.Value))
}

// MarshalJSON tags the action with its kind.
func (a SetState) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind  ActionKind `json:"kind"`
		Path  string     `json:"path"`
		Value Value      `json:"value"`
	}{ActionSetState, a.Path, a.Value})
}

// ExecuteAct invokes a catalog act with literal parameters.
type ExecuteAct struct {
	Act    ActID  `json:"act"`
	Params Params `json:"params"`
}

func (ExecuteAct) actionNode() {}
func (ExecuteAct) Kind() ActionKind { return ActionExecuteAct }

func (a ExecuteAct) String() string {
	return fmt.Sprintf("execute %s%s", a.Act, a.Params.Format())
}

// MarshalJSON tags the action with its kind.
func (a ExecuteAct) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind   ActionKind `json:"kind"`
		Act    ActID      `json:"act"`
		Params Params     `json:"params"`
	}{ActionExecuteAct, a.Act, a.Params})
}

// Params is the named parameter map of an act invocation.
type Params map[string]Value

// ParamsFromMap converts plain decoded values into Params.
func ParamsFromMap(m map[string]any) Params {
	p := make(Params, len(m))
	for k, v := range m {
		p[k] = FromAny(v)
	}
	return p
}

// SortedKeys returns parameter names in lexicographic order.
func (p Params) SortedKeys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Has reports whether name is present and not Absent.
func (p Params) Has(name string) bool {
	v, ok := p[name]
	return ok && !IsAbsent(v)
}

// Text returns the named parameter as a string.
func (p Params) Text(name string) (string, bool) {
	s, ok := p[name].(String)
	return string(s), ok
}

// Number returns the named parameter as a number.
func (p Params) Number(name string) (float64, bool) {
	n, ok := p[name].(Number)
	return float64(n), ok
}

// ToMap converts Params to plain Go values, e.g. for log details.
func (p Params) ToMap() map[string]any {
	m := make(map[string]any, len(p))
	for k, v := range p {
		m[k] = ToAny(v)
	}
	return m
}

// Format renders params as {a=1, b=X} in key order.
func (p Params) Format() string {
	s := "{"
	for i, k := range p.SortedKeys() {
		if i > 0 {
			s += ", "
		}
		s += k + "=" + Format(p[k])
	}
	return s + "}"
}

// Status is the outcome class of a log entry.
type Status string

const (
	StatusSuccess         Status = "SUCCESS"
	StatusFail            Status = "FAIL"
	StatusCriticalSuccess Status = "CRITICAL_SUCCESS"
	StatusCriticalFailure Status = "CRITICAL_FAILURE"
)

// ValidStatuses lists every status a log entry may carry.
var ValidStatuses = map[Status]bool{
	StatusSuccess:         true,
	StatusFail:            true,
	StatusCriticalSuccess: true,
	StatusCriticalFailure: true,
}

// LogEntry is one record of the audit log.
//
// Seq is the logical clock value after the event (failed events carry the
// clock at the time of rejection, since they do not advance it).
type LogEntry struct {
	Seq    int64          `json:"seq"`
	Status Status         `json:"status"`
	Action string         `json:"action"`
	Act    ActID          `json:"act,omitempty"`
	Rule   RuleID         `json:"rule,omitempty"`
	PassID string         `json:"pass_id,omitempty"`
	Reason string         `json:"reason,omitempty"`
	Detail map[string]any `json:"detail,omitempty"`
}

// IsFailure reports whether the entry records a rejection or halt.
func (e LogEntry) IsFailure() bool {
	return e.Status == StatusFail || e.Status == StatusCriticalFailure
}
