package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/engine"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/ir"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/persist"
)

// invokeView is the printed outcome of invoke and say.
type invokeView struct {
	PassID  string        `json:"pass_id"`
	Act     ir.ActID      `json:"act,omitempty"`
	Status  ir.Status     `json:"status"`
	Reason  string        `json:"reason,omitempty"`
	Message string        `json:"message,omitempty"`
	Entries []ir.LogEntry `json:"entries"`
	Pass    *passView     `json:"pass,omitempty"`
	Save    persist.Ack   `json:"save"`
}

func newInvokeView(id ir.ActID, r engine.InvokeResult) invokeView {
	v := invokeView{
		PassID:  r.PassID,
		Act:     id,
		Status:  r.Status,
		Entries: r.Log,
	}
	if r.Failure != nil {
		v.Reason = string(r.Failure.Reason)
		v.Message = r.Failure.Message
	}
	if r.Pass != nil {
		p := newPassView(*r.Pass)
		v.Pass = &p
	}
	return v
}

func (v invokeView) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s (pass %s)\n", dash(string(v.Act)), v.Status, v.PassID)
	if v.Reason != "" {
		fmt.Fprintf(&b, "reason: %s: %s\n", v.Reason, v.Message)
	}
	b.WriteString(formatEntries(v.Entries))
	if v.Pass != nil {
		b.WriteString("auto-pass: ")
		b.WriteString(v.Pass.String())
	}
	b.WriteString(describeSave(v.Save))
	return b.String()
}

// passView is the printed outcome of a rule pass.
type passView struct {
	PassID     string        `json:"pass_id"`
	Iterations int           `json:"iterations"`
	Fired      []ir.RuleID   `json:"fired"`
	Mode       engine.Mode   `json:"mode"`
	Overflow   bool          `json:"overflow"`
	Entries    []ir.LogEntry `json:"entries"`
}

func newPassView(p engine.PassResult) passView {
	fired := p.Fired
	if fired == nil {
		fired = []ir.RuleID{}
	}
	return passView{
		PassID:     p.PassID,
		Iterations: p.Iterations,
		Fired:      fired,
		Mode:       p.Mode,
		Overflow:   p.Overflowed(),
		Entries:    p.Log,
	}
}

func (v passView) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "pass %s: %d iteration(s), mode %s", v.PassID, v.Iterations, v.Mode)
	if len(v.Fired) > 0 {
		fmt.Fprintf(&b, ", fired %v", v.Fired)
	}
	if v.Overflow {
		b.WriteString(", RULE_CYCLE_OVERFLOW")
	}
	b.WriteString("\n")
	b.WriteString(formatEntries(v.Entries))
	return b.String()
}

// passResultView adds the save outcome to a pass.
type passResultView struct {
	passView
	Save persist.Ack `json:"save"`
}

func (v passResultView) String() string {
	return v.passView.String() + describeSave(v.Save)
}

// entriesView prints a list of log entries.
type entriesView struct {
	Entries []ir.LogEntry `json:"entries"`
}

func (v entriesView) String() string {
	return formatEntries(v.Entries)
}

// textView prints pre-rendered text and marshals as Data.
type textView struct {
	Text string `json:"-"`
	Data any    `json:"data"`
}

func (v textView) String() string {
	return v.Text
}

func (v textView) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Data)
}

func describeSave(ack persist.Ack) string {
	switch {
	case ack.Saved:
		return fmt.Sprintf("state saved at clock %d\n", ack.Clock)
	case ack.Skipped:
		return "state not saved: system halted\n"
	default:
		return ""
	}
}
