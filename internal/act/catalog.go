package act

import (
	"fmt"
	"math/rand/v2"

	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/ir"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/state"
)

// Metric is the unit an act's cost is charged in.
type Metric string

const (
	// MetricAlpha debits the payer account's ALPHA balance.
	MetricAlpha Metric = "ALPHA"

	// MetricVibration accrues to the global vibration score.
	MetricVibration Metric = "Vibration"

	// MetricEnergy draws from the VM energy reserve.
	MetricEnergy Metric = "Energy"
)

// ParamKind is the expected type of an act parameter.
type ParamKind string

const (
	ParamString ParamKind = "string"
	ParamNumber ParamKind = "number"
)

// Param declares one required parameter.
type Param struct {
	Name string    `json:"name"`
	Kind ParamKind `json:"kind"`
}

// Env carries the per-execution inputs a transition may use besides the
// state and parameters.
type Env struct {
	// Clock is the logical clock value the act commits at.
	Clock int64

	// Cost is the already-charged cost of this execution.
	Cost float64

	// Rand is seeded from the engine seed and Clock.
	Rand *rand.Rand
}

// Transition applies an act's effects to s, which is a private clone.
// It returns the log batch (unstamped) or a *Failure.
type Transition func(s *state.State, p ir.Params, env Env) ([]ir.LogEntry, error)

// ScaleFunc returns the multiplier applied to BaseCost.
type ScaleFunc func(s state.State, p ir.Params) (float64, error)

// Descriptor defines one act.
type Descriptor struct {
	ID          ir.ActID
	Description string
	Params      []Param
	BaseCost    float64
	Metric      Metric

	// Payer names the parameter holding the account charged for ALPHA costs.
	Payer string

	// ChargeAfter defers the ALPHA charge until the transition has run,
	// so the cost may be paid out of what the act credits to the payer.
	ChargeAfter bool

	// Scale is nil for a flat cost.
	Scale ScaleFunc

	// Writes lists the state path prefixes the transition may modify,
	// excluding the clock and the audit trail.
	Writes []string

	Transition Transition
}

// Cost computes BaseCost scaled by the act's parameters.
func (d Descriptor) Cost(s state.State, p ir.Params) (float64, error) {
	if d.Scale == nil {
		return d.BaseCost, nil
	}
	k, err := d.Scale(s, p)
	if err != nil {
		return 0, err
	}
	return d.BaseCost * k, nil
}

// HasParam reports whether name is a declared parameter.
func (d Descriptor) HasParam(name string) bool {
	for _, p := range d.Params {
		if p.Name == name {
			return true
		}
	}
	return false
}

// Catalog is the immutable registry of acts.
type Catalog struct {
	acts        map[ir.ActID]Descriptor
	order       []ir.ActID
	remediation ir.ActID
}

// NewCatalog builds a catalog. The remediation act must be one of descs;
// it is the only act allowed to run while the system is halted.
func NewCatalog(remediation ir.ActID, descs ...Descriptor) (*Catalog, error) {
	c := &Catalog{
		acts:        make(map[ir.ActID]Descriptor, len(descs)),
		remediation: remediation,
	}
	for _, d := range descs {
		if d.ID == "" {
			return nil, fmt.Errorf("act descriptor with empty id")
		}
		if _, dup := c.acts[d.ID]; dup {
			return nil, fmt.Errorf("duplicate act id %q", d.ID)
		}
		if d.Transition == nil {
			return nil, fmt.Errorf("act %s: missing transition", d.ID)
		}
		switch d.Metric {
		case MetricAlpha, MetricVibration, MetricEnergy:
		default:
			return nil, fmt.Errorf("act %s: unknown cost metric %q", d.ID, d.Metric)
		}
		if d.Metric == MetricAlpha && !d.HasParam(d.Payer) {
			return nil, fmt.Errorf("act %s: payer %q is not a declared parameter", d.ID, d.Payer)
		}
		c.acts[d.ID] = d
		c.order = append(c.order, d.ID)
	}
	if _, ok := c.acts[remediation]; !ok {
		return nil, fmt.Errorf("remediation act %q not in catalog", remediation)
	}
	return c, nil
}

// Lookup returns the descriptor for id, or a *Failure with
// ReasonUnknownAct.
func (c *Catalog) Lookup(id ir.ActID) (Descriptor, error) {
	d, ok := c.acts[id]
	if !ok {
		return Descriptor{}, &Failure{
			Reason:  ReasonUnknownAct,
			Act:     id,
			Message: fmt.Sprintf("act %q is not in the catalog", id),
		}
	}
	return d, nil
}

// IDs returns act ids in registration order.
func (c *Catalog) IDs() []ir.ActID {
	out := make([]ir.ActID, len(c.order))
	copy(out, c.order)
	return out
}

// Remediation returns the id of the act exempt from the halt gate.
func (c *Catalog) Remediation() ir.ActID {
	return c.remediation
}
