package state

import "github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/ir"

// Well-known account and rate identifiers.
const (
	AccountAuditA = "USER_AUDIT_A"
	AccountAuditB = "USER_AUDIT_B"
	AccountBridge = "ACCOUNT_BRIDGE"

	RateAlphaToJPY = "ALPHA_TO_JPY"

	// MinimumLivingThreshold is the fiat floor the bridge account must hold.
	MinimumLivingThreshold = 50000
)

// Default returns the documented initial state.
func Default() State {
	bridgeFiat := 100000.0
	return State{
		SystemState: SystemState{
			IsHalted:     false,
			LogicalClock: 0,
		},
		VibrationScore: 0,
		Accounts: map[string]Account{
			AccountAuditA: {ALPHA: 100000, BETA: 10000},
			AccountAuditB: {ALPHA: 50000, BETA: 5000},
			AccountBridge: {ALPHA: 0, BETA: 0, FiatBalance: &bridgeFiat},
		},
		CurrencyRates: map[string]float64{
			RateAlphaToJPY: 1.0,
		},
		Store: ContentStore{
			ContentHash: "A4B7C9D2E1F0",
			AccessLevel: 1.0,
			UpdateCost:  20,
		},
		LaborPool: LaborPool{
			TotalDemand: 50000,
			OpenActs: []LaborAct{
				{ID: "LBA_001", RequiredSkills: []string{"LIL_LOGIC"}, Reward: 500},
			},
			UnassignedUsers: []string{AccountAuditA, AccountAuditB},
		},
		AffectionPool: AffectionPool{
			TotalActs: 1000,
			Affinities: map[string]Affinity{
				AccountAuditA: {Score: 0.95, Target: AccountAuditB},
			},
		},
		CodeSpec: map[string]LanguageSpec{
			"python": {
				Version:      "LOGOS_P_1.0",
				SafetyRating: 0.98,
				SyntaxHash:   "PY_HASH_00A",
				CostPerOp:    0.05,
			},
			"javascript": {
				Version:      "LOGOS_J_1.0",
				SafetyRating: 0.95,
				SyntaxHash:   "JS_HASH_00B",
				CostPerOp:    0.03,
			},
		},
		VM: VM{
			Queue:       []Job{},
			TotalEnergy: 10000,
			SpeedFactor: 1.0,
		},
		ActLogs: []ir.LogEntry{},
	}
}
