// Package dialogue routes free-text operator commands to act invocations.
//
// Input is folded to half-width and split on whitespace. The verb and
// identifier arguments are upper-cased; hashes and URLs keep their case.
//
//	TRANSFER USER_AUDIT_A 100 USER_AUDIT_B
//	ＷＩＴＨＤＲＡＷ　５０００
//	run_py user_audit_a PY_HASH_01
package dialogue

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/width"

	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/act"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/ir"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/state"
)

// OperatorTrigger is the triggeringLILId recorded when remediation is
// requested by hand rather than by a rule.
const OperatorTrigger = "OPERATOR"

// Command is a parsed dialogue line.
type Command struct {
	Verb   string
	Act    ir.ActID
	Params ir.Params
}

// CommandError reports input that does not map to an act.
type CommandError struct {
	Input   string
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("unknown command %q: %s", e.Input, e.Message)
}

type argKind int

const (
	argID     argKind = iota // upper-cased identifier
	argText                  // kept as typed
	argNumber                // float literal
)

type arg struct {
	param string
	kind  argKind
}

type route struct {
	verbs []string
	act   ir.ActID
	args  []arg
	fixed ir.Params
	usage string
}

var routes = []route{
	{
		verbs: []string{"TRANSFER"},
		act:   act.Transfer,
		args:  []arg{{"sourceAccountId", argID}, {"amount", argNumber}, {"targetAccountId", argID}},
		usage: "TRANSFER <source> <amount> <target>",
	},
	{
		verbs: []string{"WITHDRAW", "ATM_OUT"},
		act:   act.BridgeOut,
		args:  []arg{{"amount", argNumber}},
		fixed: ir.Params{"sourceAccountId": ir.String(state.AccountBridge)},
		usage: "WITHDRAW <amount>",
	},
	{
		verbs: []string{"HIRE", "APPLY"},
		act:   act.AssignLabor,
		args:  []arg{{"userId", argID}, {"laborActId", argID}},
		usage: "HIRE <user> <laborAct>",
	},
	{
		verbs: []string{"RUN_PY", "EXECUTE_PYTHON"},
		act:   act.ExecuteLogosCode,
		args:  []arg{{"userId", argID}, {"codeHash", argText}},
		fixed: ir.Params{"languageSpec": ir.String("python")},
		usage: "RUN_PY <user> <codeHash>",
	},
	{
		verbs: []string{"RUN_JS", "EXECUTE_JAVASCRIPT"},
		act:   act.ExecuteLogosCode,
		args:  []arg{{"userId", argID}, {"codeHash", argText}},
		fixed: ir.Params{"languageSpec": ir.String("javascript")},
		usage: "RUN_JS <user> <codeHash>",
	},
	{
		verbs: []string{"MINT"},
		act:   act.Mint,
		args:  []arg{{"targetAccountId", argID}, {"amount", argNumber}},
		usage: "MINT <account> <amount>",
	},
	{
		verbs: []string{"ENERGY"},
		act:   act.RequestEnergy,
		args:  []arg{{"deviceId", argID}, {"duration", argNumber}},
		usage: "ENERGY <device> <duration>",
	},
	{
		verbs: []string{"NET"},
		act:   act.RequestNetwork,
		args:  []arg{{"sourceId", argID}, {"targetUrl", argText}, {"dataVolume", argNumber}},
		usage: "NET <source> <url> <volume>",
	},
	{
		verbs: []string{"UPDATE"},
		act:   act.UpdateContent,
		args:  []arg{{"newContentHash", argText}, {"accessLevel", argNumber}},
		usage: "UPDATE <hash> <level>",
	},
	{
		verbs: []string{"MATCH"},
		act:   act.AssessAffinity,
		args:  []arg{{"userAId", argID}, {"userBId", argID}},
		usage: "MATCH <userA> <userB>",
	},
	{
		verbs: []string{"REMEDIATE"},
		act:   act.ZRemediate,
		fixed: ir.Params{
			"triggeringLILId":   ir.String(OperatorTrigger),
			"remediationAction": ir.String("HALT_AND_RESTART"),
		},
		usage: "REMEDIATE",
	},
}

var upper = cases.Upper(language.Und)

// Parse maps one line of input to an act invocation.
func Parse(input string) (Command, error) {
	fields := strings.Fields(width.Fold.String(input))
	if len(fields) == 0 {
		return Command{}, &CommandError{Input: input, Message: "empty input"}
	}

	verb := normalize(fields[0])
	r, ok := lookup(verb)
	if !ok {
		return Command{}, &CommandError{Input: input, Message: fmt.Sprintf("no route for %s", verb)}
	}

	args := fields[1:]
	if len(args) != len(r.args) {
		return Command{}, &CommandError{Input: input, Message: "usage: " + r.usage}
	}

	params := make(ir.Params, len(r.args)+len(r.fixed))
	for k, v := range r.fixed {
		params[k] = v
	}
	for i, a := range r.args {
		switch a.kind {
		case argID:
			params[a.param] = ir.String(normalize(args[i]))
		case argText:
			params[a.param] = ir.String(args[i])
		case argNumber:
			f, err := strconv.ParseFloat(args[i], 64)
			if err != nil {
				return Command{}, &CommandError{Input: input, Message: fmt.Sprintf("%s must be a number, got %q", a.param, args[i])}
			}
			params[a.param] = ir.Number(f)
		}
	}
	return Command{Verb: verb, Act: r.act, Params: params}, nil
}

// Usage lists the accepted command forms.
func Usage() []string {
	out := make([]string, len(routes))
	for i, r := range routes {
		out[i] = r.usage
	}
	return out
}

func lookup(verb string) (route, bool) {
	for _, r := range routes {
		if slices.Contains(r.verbs, verb) {
			return r, true
		}
	}
	return route{}, false
}

func normalize(s string) string {
	return upper.String(ir.NormalizeID(s))
}
