package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/ir"
)

// ErrAppendOnly is returned when a write targets the audit trail.
var ErrAppendOnly = errors.New("actLogs is append-only")

// PathError describes a failed write at a state path.
type PathError struct {
	Path    string
	Message string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("state path %q: %s", e.Path, e.Message)
}

// Assignment writes Value at Path.
type Assignment struct {
	Path  string   `json:"path"`
	Value ir.Value `json:"value"`
}

// Delta is an ordered list of assignments applied as one unit.
type Delta []Assignment

// RootKeys lists the top-level path segments of the state tree.
func RootKeys() []string {
	return []string{
		"systemState", "vibrationScore", "accounts", "currencyRates", "store",
		"laborPool", "affectionPool", "codeSpec", "vm", "actLogs",
	}
}

// Read resolves path against s. It never fails: unresolvable paths yield
// ir.Absent.
func Read(s State, path string) ir.Value {
	return NewView(s).Read(path)
}

// View is a read-only tree rendering of one snapshot, built once and
// reused for many reads (a full rule evaluation).
type View struct {
	tree map[string]any
	err  error
}

// NewView renders s for path reads. A snapshot that cannot be rendered
// (a non-finite number somewhere in the tree) yields a view whose reads
// are all Absent and whose Err is set.
func NewView(s State) *View {
	tree, err := toTree(s)
	if err != nil {
		return &View{err: fmt.Errorf("render state: %w", err)}
	}
	return &View{tree: tree}
}

// Err reports why the snapshot could not be rendered, if it could not.
func (v *View) Err() error {
	return v.err
}

// Read resolves path, returning ir.Absent when any segment is missing.
func (v *View) Read(path string) ir.Value {
	if v.tree == nil || path == "" {
		return ir.Absent{}
	}
	var node any = v.tree
	for _, seg := range strings.Split(path, ".") {
		next, ok := child(node, seg)
		if !ok {
			return ir.Absent{}
		}
		node = next
	}
	return ir.FromAny(node)
}

// Set writes one value. See Apply.
func Set(s State, path string, value ir.Value) (State, error) {
	return Apply(s, Delta{{Path: path, Value: value}})
}

// Apply returns a new snapshot with every assignment of d written in
// order. The input is never modified. Either all assignments apply or
// none do: any invalid path, type mismatch or invariant violation returns
// the error and a zero State.
func Apply(s State, d Delta) (State, error) {
	tree, err := toTree(s)
	if err != nil {
		return State{}, err
	}
	for _, a := range d {
		if err := setIn(tree, a.Path, a.Value); err != nil {
			return State{}, err
		}
	}
	data, err := json.Marshal(tree)
	if err != nil {
		return State{}, fmt.Errorf("encode state tree: %w", err)
	}
	out, err := Decode(data)
	if err != nil {
		if len(d) == 1 {
			return State{}, &PathError{Path: d[0].Path, Message: err.Error()}
		}
		return State{}, err
	}
	return out, nil
}

// Encode renders s as canonical JSON (map keys sorted).
func Encode(s State) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return data, nil
}

// Decode parses a JSON state document, rejecting unknown fields and
// invariant violations.
func Decode(data []byte) (State, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var s State
	if err := dec.Decode(&s); err != nil {
		return State{}, fmt.Errorf("decode state: %w", err)
	}
	if err := Validate(s); err != nil {
		return State{}, err
	}
	return s, nil
}

// Validate checks the non-negativity invariants. Infinite quantities are
// rejected along with negative ones.
func Validate(s State) error {
	if !nonNegative(s.VibrationScore) {
		return fmt.Errorf("vibrationScore must be >= 0, got %v", s.VibrationScore)
	}
	if !nonNegative(s.VM.TotalEnergy) {
		return fmt.Errorf("vm.totalEnergy must be >= 0, got %v", s.VM.TotalEnergy)
	}
	for id, acc := range s.Accounts {
		if !nonNegative(acc.ALPHA) || !nonNegative(acc.BETA) {
			return fmt.Errorf("account %s: balances must be >= 0", id)
		}
		if acc.FiatBalance != nil && !nonNegative(*acc.FiatBalance) {
			return fmt.Errorf("account %s: fiatBalance must be >= 0", id)
		}
	}
	return nil
}

func nonNegative(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0) && f >= 0
}

func toTree(s State) (map[string]any, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	var tree map[string]any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("decode state tree: %w", err)
	}
	return tree, nil
}

func child(node any, seg string) (any, bool) {
	switch n := node.(type) {
	case map[string]any:
		v, ok := n[seg]
		if !ok || v == nil {
			return nil, false
		}
		return v, true
	case []any:
		i, err := strconv.Atoi(seg)
		if err != nil || i < 0 || i >= len(n) {
			return nil, false
		}
		return n[i], true
	default:
		return nil, false
	}
}

func setIn(tree map[string]any, path string, value ir.Value) error {
	if path == "" {
		return &PathError{Path: path, Message: "empty path"}
	}
	segs := strings.Split(path, ".")
	if segs[0] == "actLogs" {
		return &PathError{Path: path, Message: ErrAppendOnly.Error()}
	}
	if ir.IsAbsent(value) {
		return &PathError{Path: path, Message: "cannot write an absent value"}
	}

	var node any = tree
	for _, seg := range segs[:len(segs)-1] {
		next, ok := child(node, seg)
		if !ok {
			return &PathError{Path: path, Message: fmt.Sprintf("segment %q does not exist", seg)}
		}
		node = next
	}

	leaf := segs[len(segs)-1]
	raw := ir.ToAny(value)
	switch n := node.(type) {
	case map[string]any:
		n[leaf] = raw
		return nil
	case []any:
		i, err := strconv.Atoi(leaf)
		if err != nil || i < 0 || i >= len(n) {
			return &PathError{Path: path, Message: fmt.Sprintf("index %q out of range", leaf)}
		}
		n[i] = raw
		return nil
	default:
		return &PathError{Path: path, Message: "parent is not a container"}
	}
}
