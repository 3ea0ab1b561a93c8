package compiler

import (
	"encoding/json"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/ir"
)

// CompileString compiles a CUE document holding a top-level `rules` list.
// filename is used for error positions only.
func CompileString(src, filename string) ([]ir.Rule, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return CompileRules(v)
}

// LoadDir builds the CUE package in dir and compiles its `rules` list.
func LoadDir(dir string) ([]ir.Rule, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("rules directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("rules directory: %s is not a directory", dir)
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances in %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, fmt.Errorf("loading CUE files: %w", inst.Err)
	}

	v := cuecontext.New().BuildInstance(inst)
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return CompileRules(v)
}

// CompileRules parses the `rules` list of v, preserving declaration order.
//
// Each element has the form:
//
//	{
//		id:       "LIL_ZZZ"
//		name:     "Z-Function trigger"
//		priority: 100
//		when: [{path: "vibrationScore", op: ">", value: 10000}]
//		then: [{act: "ACT_Z_REMEDIATE", params: {...}}, {set: "vm.speedFactor", value: 0.1}]
//	}
func CompileRules(v cue.Value) ([]ir.Rule, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	list := v.LookupPath(cue.ParsePath("rules"))
	if !list.Exists() {
		return nil, &CompileError{Field: "rules", Message: "rules list is required", Pos: v.Pos()}
	}
	iter, err := list.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var rules []ir.Rule
	for iter.Next() {
		rule, err := CompileRule(iter.Value())
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	if len(rules) == 0 {
		return nil, &CompileError{Field: "rules", Message: "at least one rule is required", Pos: list.Pos()}
	}
	return rules, nil
}

// CompileRule parses a single rule struct.
func CompileRule(v cue.Value) (ir.Rule, error) {
	if err := v.Err(); err != nil {
		return ir.Rule{}, formatCUEError(err)
	}

	var rule ir.Rule

	id, err := requiredString(v, "id")
	if err != nil {
		return ir.Rule{}, err
	}
	rule.ID = ir.RuleID(ir.NormalizeID(id))

	rule.Name, err = optionalString(v, "name")
	if err != nil {
		return ir.Rule{}, err
	}
	if rule.Name == "" {
		rule.Name = string(rule.ID)
	}
	rule.Description, err = optionalString(v, "description")
	if err != nil {
		return ir.Rule{}, err
	}

	prio := v.LookupPath(cue.ParsePath("priority"))
	if !prio.Exists() {
		return ir.Rule{}, &CompileError{Field: "priority", Message: "priority is required", Pos: v.Pos()}
	}
	p, err := prio.Int64()
	if err != nil {
		return ir.Rule{}, &CompileError{Field: "priority", Message: "priority must be an integer", Pos: prio.Pos()}
	}
	rule.Priority = int(p)

	rule.When, err = parseConditions(v)
	if err != nil {
		return ir.Rule{}, err
	}
	rule.Then, err = parseActions(v)
	if err != nil {
		return ir.Rule{}, err
	}
	return rule, nil
}

func parseConditions(v cue.Value) ([]ir.Condition, error) {
	whenVal := v.LookupPath(cue.ParsePath("when"))
	if !whenVal.Exists() {
		return nil, &CompileError{Field: "when", Message: "when is required", Pos: v.Pos()}
	}
	iter, err := whenVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var conds []ir.Condition
	for iter.Next() {
		c := iter.Value()
		path, err := requiredString(c, "path")
		if err != nil {
			return nil, err
		}
		opStr, err := requiredString(c, "op")
		if err != nil {
			return nil, err
		}
		op, err := ir.ParseOperator(opStr)
		if err != nil {
			return nil, &CompileError{Field: "when.op", Message: err.Error(), Pos: c.Pos()}
		}
		threshold, err := requiredValue(c, "value")
		if err != nil {
			return nil, err
		}
		conds = append(conds, ir.Condition{Path: path, Op: op, Threshold: threshold})
	}
	return conds, nil
}

func parseActions(v cue.Value) ([]ir.Action, error) {
	thenVal := v.LookupPath(cue.ParsePath("then"))
	if !thenVal.Exists() {
		return nil, &CompileError{Field: "then", Message: "then is required", Pos: v.Pos()}
	}
	iter, err := thenVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var actions []ir.Action
	for iter.Next() {
		a, err := parseAction(iter.Value())
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, nil
}

// parseAction discriminates on the presence of `act` or `set`.
func parseAction(v cue.Value) (ir.Action, error) {
	hasAct := v.LookupPath(cue.ParsePath("act")).Exists()
	hasSet := v.LookupPath(cue.ParsePath("set")).Exists()

	switch {
	case hasAct && hasSet:
		return nil, &CompileError{Field: "then", Message: "action must have exactly one of act or set", Pos: v.Pos()}
	case hasAct:
		id, err := requiredString(v, "act")
		if err != nil {
			return nil, err
		}
		params, err := parseParams(v)
		if err != nil {
			return nil, err
		}
		return ir.ExecuteAct{Act: ir.ActID(ir.NormalizeID(id)), Params: params}, nil
	case hasSet:
		path, err := requiredString(v, "set")
		if err != nil {
			return nil, err
		}
		value, err := requiredValue(v, "value")
		if err != nil {
			return nil, err
		}
		return ir.SetState{Path: path, Value: value}, nil
	default:
		return nil, &CompileError{Field: "then", Message: "action must have act or set", Pos: v.Pos()}
	}
}

func parseParams(v cue.Value) (ir.Params, error) {
	params := ir.Params{}
	pv := v.LookupPath(cue.ParsePath("params"))
	if !pv.Exists() {
		return params, nil
	}
	iter, err := pv.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		val, err := convertValue(iter.Value(), "params."+iter.Label())
		if err != nil {
			return nil, err
		}
		params[iter.Label()] = val
	}
	return params, nil
}

func requiredString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", &CompileError{Field: field, Message: field + " is required", Pos: v.Pos()}
	}
	s, err := fv.String()
	if err != nil {
		return "", &CompileError{Field: field, Message: field + " must be a string", Pos: fv.Pos()}
	}
	if s == "" {
		return "", &CompileError{Field: field, Message: field + " must not be empty", Pos: fv.Pos()}
	}
	return s, nil
}

func optionalString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", &CompileError{Field: field, Message: field + " must be a string", Pos: fv.Pos()}
	}
	return s, nil
}

func requiredValue(v cue.Value, field string) (ir.Value, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return nil, &CompileError{Field: field, Message: field + " is required", Pos: v.Pos()}
	}
	return convertValue(fv, field)
}

// convertValue maps a concrete CUE value onto the IR value model.
// Structs and lists become composites; null is rejected.
func convertValue(v cue.Value, field string) (ir.Value, error) {
	if !v.IsConcrete() {
		return nil, &CompileError{Field: field, Message: "value must be concrete", Pos: v.Pos()}
	}

	switch v.Kind() {
	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.Number(n), nil
	case cue.FloatKind:
		f, err := v.Float64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.Number(f), nil
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.String(s), nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.Bool(b), nil
	case cue.StructKind, cue.ListKind:
		var raw any
		if err := v.Decode(&raw); err != nil {
			return nil, formatCUEError(err)
		}
		return ir.FromAny(raw), nil
	default:
		return nil, &CompileError{Field: field, Message: fmt.Sprintf("unsupported value kind %s", v.Kind()), Pos: v.Pos()}
	}
}

// Digest returns the content digest of a compiled rule set.
func Digest(rules []ir.Rule) (string, error) {
	data, err := json.Marshal(rules)
	if err != nil {
		return "", fmt.Errorf("encoding rule set: %w", err)
	}
	return ir.RuleSetDigest(data), nil
}
