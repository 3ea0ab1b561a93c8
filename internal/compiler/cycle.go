package compiler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/act"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/ir"
)

// CycleWarning represents a potential feedback loop between rules.
//
// Loops are warnings, not errors: the scheduler's iteration cap bounds
// them at runtime and some (remediation resetting its own trigger) are
// intended.
type CycleWarning struct {
	Path    []ir.RuleID `json:"path"`
	Message string      `json:"message"`
	Level   string      `json:"level"`
}

// AnalyzeCycles reports rules that can re-trigger each other.
//
// Rule A feeds rule B when a path A may write (a direct set, or the write
// set of an act it executes) is equal to, inside, or above a path one of
// B's triggers reads. Strongly connected components of that graph with
// more than one member, or with a self-edge, are reported.
func AnalyzeCycles(rules []ir.Rule, cat *act.Catalog) []CycleWarning {
	if len(rules) == 0 {
		return []CycleWarning{}
	}

	graph := buildRuleGraph(rules, cat)
	warnings := []CycleWarning{}
	for _, scc := range tarjanSCC(graph) {
		if len(scc) > 1 || hasSelfLoop(scc[0], graph) {
			warnings = append(warnings, sccToWarning(scc, graph))
		}
	}
	slices.SortFunc(warnings, func(a, b CycleWarning) int {
		return strings.Compare(string(a.Path[0]), string(b.Path[0]))
	})
	return warnings
}

// ruleGraph maps a rule to the rules its actions may trigger.
type ruleGraph map[ir.RuleID][]ir.RuleID

func buildRuleGraph(rules []ir.Rule, cat *act.Catalog) ruleGraph {
	graph := make(ruleGraph, len(rules))
	for _, from := range rules {
		writes := writeSet(from, cat)
		edges := []ir.RuleID{}
		for _, to := range rules {
			if feeds(writes, to) && !slices.Contains(edges, to.ID) {
				edges = append(edges, to.ID)
			}
		}
		graph[from.ID] = edges
	}
	return graph
}

func writeSet(r ir.Rule, cat *act.Catalog) []string {
	var paths []string
	for _, a := range r.Then {
		switch a := a.(type) {
		case ir.SetState:
			paths = append(paths, a.Path)
		case ir.ExecuteAct:
			if d, err := cat.Lookup(a.Act); err == nil {
				paths = append(paths, d.Writes...)
			}
		}
	}
	return paths
}

func feeds(writes []string, r ir.Rule) bool {
	for _, w := range writes {
		for _, c := range r.When {
			if overlaps(w, c.Path) {
				return true
			}
		}
	}
	return false
}

// overlaps reports whether one dotted path equals or contains the other.
func overlaps(a, b string) bool {
	return a == b || strings.HasPrefix(a, b+".") || strings.HasPrefix(b, a+".")
}

func hasSelfLoop(node ir.RuleID, graph ruleGraph) bool {
	return slices.Contains(graph[node], node)
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Nodes are visited in sorted order so results are deterministic.
func tarjanSCC(graph ruleGraph) [][]ir.RuleID {
	var (
		index   = 0
		stack   []ir.RuleID
		indices = make(map[ir.RuleID]int)
		lowlink = make(map[ir.RuleID]int)
		onStack = make(map[ir.RuleID]bool)
		sccs    [][]ir.RuleID
	)

	var strongConnect func(ir.RuleID)
	strongConnect = func(v ir.RuleID) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []ir.RuleID
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			slices.Sort(scc)
			sccs = append(sccs, scc)
		}
	}

	nodes := make([]ir.RuleID, 0, len(graph))
	for n := range graph {
		nodes = append(nodes, n)
	}
	slices.Sort(nodes)
	for _, n := range nodes {
		if _, visited := indices[n]; !visited {
			strongConnect(n)
		}
	}
	return sccs
}

func sccToWarning(scc []ir.RuleID, graph ruleGraph) CycleWarning {
	if len(scc) == 1 {
		id := scc[0]
		return CycleWarning{
			Path:    []ir.RuleID{id, id},
			Message: fmt.Sprintf("rule %s can re-trigger itself", id),
			Level:   "warning",
		}
	}

	path := cyclePath(scc, graph)
	names := make([]string, len(path))
	for i, id := range path {
		names[i] = string(id)
	}
	return CycleWarning{
		Path:    path,
		Message: "potential feedback loop: " + strings.Join(names, " -> "),
		Level:   "warning",
	}
}

// cyclePath walks edges inside the component from its first member until
// it returns to the start.
func cyclePath(scc []ir.RuleID, graph ruleGraph) []ir.RuleID {
	start := scc[0]
	path := []ir.RuleID{start}
	visited := map[ir.RuleID]bool{start: true}

	for current := start; ; {
		var next ir.RuleID
		for _, n := range graph[current] {
			if slices.Contains(scc, n) && (!visited[n] || n == start) {
				next = n
				break
			}
		}
		if next == "" {
			return path
		}
		path = append(path, next)
		if next == start {
			return path
		}
		visited[next] = true
		current = next
	}
}
