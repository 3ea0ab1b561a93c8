package state

import (
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/ir"
)

// State is one immutable snapshot of the economy.
type State struct {
	SystemState    SystemState             `json:"systemState"`
	VibrationScore float64                 `json:"vibrationScore"`
	Accounts       map[string]Account      `json:"accounts"`
	CurrencyRates  map[string]float64      `json:"currencyRates"`
	Store          ContentStore            `json:"store"`
	LaborPool      LaborPool               `json:"laborPool"`
	AffectionPool  AffectionPool           `json:"affectionPool"`
	CodeSpec       map[string]LanguageSpec `json:"codeSpec"`
	VM             VM                      `json:"vm"`
	ActLogs        []ir.LogEntry           `json:"actLogs"`
}

// SystemState is the global gate and step counter.
type SystemState struct {
	IsHalted     bool  `json:"isHalted"`
	LogicalClock int64 `json:"logicalClock"`
}

// Account holds balances. FiatBalance is set only on bridge accounts.
type Account struct {
	ALPHA       float64  `json:"ALPHA"`
	BETA        float64  `json:"BETA"`
	FiatBalance *float64 `json:"fiatBalance,omitempty"`
}

// IsBridge reports whether the account carries a fiat balance.
func (a Account) IsBridge() bool {
	return a.FiatBalance != nil
}

// ContentStore mirrors the hosted content.
type ContentStore struct {
	ContentHash string  `json:"contentHash"`
	AccessLevel float64 `json:"accessLevel"`
	UpdateCost  float64 `json:"updateCost"`
	LastUpdate  int64   `json:"lastUpdate"`
}

// LaborPool mirrors the labor market.
type LaborPool struct {
	TotalDemand     float64    `json:"totalDemand"`
	OpenActs        []LaborAct `json:"openActs"`
	UnassignedUsers []string   `json:"unassignedUsers"`
}

// LaborAct is an open unit of paid work.
type LaborAct struct {
	ID             string   `json:"id"`
	RequiredSkills []string `json:"requiredSkills"`
	Reward         float64  `json:"reward"`
}

// AffectionPool mirrors the affinity market.
type AffectionPool struct {
	TotalActs  int64               `json:"totalActs"`
	Affinities map[string]Affinity `json:"affinities"`
}

// Affinity is a scored pairing from one user to another.
type Affinity struct {
	Score  float64 `json:"score"`
	Target string  `json:"target"`
}

// LanguageSpec describes an executable code language.
type LanguageSpec struct {
	Version      string  `json:"version"`
	SafetyRating float64 `json:"safetyRating"`
	SyntaxHash   string  `json:"syntaxHash"`
	CostPerOp    float64 `json:"costPerOp"`
}

// VM mirrors the code-execution machine.
type VM struct {
	Queue       []Job   `json:"queue"`
	Cycle       int64   `json:"cycle"`
	TotalEnergy float64 `json:"totalEnergy"`
	SpeedFactor float64 `json:"speedFactor"`
}

// Job is a queued code execution.
type Job struct {
	CodeHash string `json:"codeHash"`
	User     string `json:"user"`
	Language string `json:"language"`
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := s

	if s.Accounts != nil {
		out.Accounts = make(map[string]Account, len(s.Accounts))
		for id, acc := range s.Accounts {
			if acc.FiatBalance != nil {
				fiat := *acc.FiatBalance
				acc.FiatBalance = &fiat
			}
			out.Accounts[id] = acc
		}
	}
	if s.CurrencyRates != nil {
		out.CurrencyRates = make(map[string]float64, len(s.CurrencyRates))
		for k, v := range s.CurrencyRates {
			out.CurrencyRates[k] = v
		}
	}
	if s.LaborPool.OpenActs != nil {
		out.LaborPool.OpenActs = make([]LaborAct, len(s.LaborPool.OpenActs))
		for i, la := range s.LaborPool.OpenActs {
			la.RequiredSkills = cloneStrings(la.RequiredSkills)
			out.LaborPool.OpenActs[i] = la
		}
	}
	out.LaborPool.UnassignedUsers = cloneStrings(s.LaborPool.UnassignedUsers)
	if s.AffectionPool.Affinities != nil {
		out.AffectionPool.Affinities = make(map[string]Affinity, len(s.AffectionPool.Affinities))
		for k, v := range s.AffectionPool.Affinities {
			out.AffectionPool.Affinities[k] = v
		}
	}
	if s.CodeSpec != nil {
		out.CodeSpec = make(map[string]LanguageSpec, len(s.CodeSpec))
		for k, v := range s.CodeSpec {
			out.CodeSpec[k] = v
		}
	}
	if s.VM.Queue != nil {
		out.VM.Queue = make([]Job, len(s.VM.Queue))
		copy(out.VM.Queue, s.VM.Queue)
	}
	if s.ActLogs != nil {
		out.ActLogs = make([]ir.LogEntry, len(s.ActLogs))
		for i, e := range s.ActLogs {
			if e.Detail != nil {
				d := make(map[string]any, len(e.Detail))
				for k, v := range e.Detail {
					d[k] = v
				}
				e.Detail = d
			}
			out.ActLogs[i] = e
		}
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
