package engine

import (
	"cmp"
	"slices"

	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/ir"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/state"
)

// MatchedRules returns the ids of every rule whose conditions all hold
// against s, in declaration order.
//
// Evaluation is a pure scan: each rule is checked against the same
// snapshot, and a rule with no conditions never matches.
func MatchedRules(rules []ir.Rule, s state.State) []ir.RuleID {
	view := state.NewView(s)
	var ids []ir.RuleID
	for _, r := range rules {
		if matchRule(r, view) {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

// matchRule checks the conjunction of a rule's conditions.
func matchRule(r ir.Rule, view *state.View) bool {
	if len(r.When) == 0 {
		return false
	}
	for _, c := range r.When {
		if !ir.Compare(view.Read(c.Path), c.Op, c.Threshold) {
			return false
		}
	}
	return true
}

// satisfied reports whether every action of r is a SetState whose path
// already holds the target value. Firing such a rule changes nothing, so
// it does not keep a pass alive.
func satisfied(r ir.Rule, view *state.View) bool {
	if len(r.Then) == 0 {
		return true
	}
	for _, a := range r.Then {
		set, ok := a.(ir.SetState)
		if !ok {
			return false
		}
		if !ir.Same(view.Read(set.Path), set.Value) {
			return false
		}
	}
	return true
}

// pendingRules returns the matching rules that would change state,
// ordered by priority descending with declaration order breaking ties.
// It fails when s cannot be rendered for reads.
func pendingRules(rules []ir.Rule, s state.State) ([]ir.Rule, error) {
	view := state.NewView(s)
	if err := view.Err(); err != nil {
		return nil, err
	}
	var out []ir.Rule
	for _, r := range rules {
		if matchRule(r, view) && !satisfied(r, view) {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, func(a, b ir.Rule) int {
		return cmp.Compare(b.Priority, a.Priority)
	})
	return out, nil
}

func ruleIDs(rules []ir.Rule) []ir.RuleID {
	ids := make([]ir.RuleID, len(rules))
	for i, r := range rules {
		ids[i] = r.ID
	}
	return ids
}
