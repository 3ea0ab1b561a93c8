package act

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/ir"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/state"
)

// validParams holds a well-formed parameter set for every default act.
var validParams = map[ir.ActID]ir.Params{
	Mint: {
		"targetAccountId": ir.String(state.AccountAuditA),
		"amount":          ir.Number(500),
	},
	Transfer: {
		"sourceAccountId": ir.String(state.AccountAuditA),
		"targetAccountId": ir.String(state.AccountAuditB),
		"amount":          ir.Number(1000),
	},
	BridgeOut: {
		"sourceAccountId": ir.String(state.AccountBridge),
		"amount":          ir.Number(60000),
	},
	UpdateContent: {
		"newContentHash": ir.String("FFEE00112233"),
		"accessLevel":    ir.Number(2),
	},
	AssignLabor: {
		"userId":     ir.String(state.AccountAuditA),
		"laborActId": ir.String("LBA_001"),
	},
	AssessAffinity: {
		"userAId": ir.String(state.AccountAuditA),
		"userBId": ir.String(state.AccountAuditB),
	},
	ExecuteLogosCode: {
		"userId":       ir.String(state.AccountAuditA),
		"languageSpec": ir.String("python"),
		"codeHash":     ir.String("PY_CODE_01"),
	},
	ZRemediate: {
		"triggeringLILId":   ir.String("LIL_ZZZ"),
		"remediationAction": ir.String("HALT_AND_RESTART"),
	},
	RequestEnergy: {
		"deviceId": ir.String("DEVICE_01"),
		"duration": ir.Number(100),
	},
	RequestNetwork: {
		"sourceId":   ir.String(state.AccountAuditA),
		"targetUrl":  ir.String("https://example.test/feed"),
		"dataVolume": ir.Number(64),
	},
}

func run(t *testing.T, s state.State, id ir.ActID, params ir.Params) Result {
	t.Helper()
	x := NewExecutor(DefaultCatalog(), 1)
	return x.Execute(s, Invocation{Act: id, Params: params, PassID: "pass-1"})
}

func requireFailure(t *testing.T, r Result, reason Reason) {
	t.Helper()
	require.False(t, r.OK(), "expected failure %s", reason)
	assert.Equal(t, reason, r.Failure.Reason)
	assert.Equal(t, ir.StatusFail, r.Status)
	require.Len(t, r.Log, 1)
	assert.Equal(t, ir.StatusFail, r.Log[0].Status)
	assert.Equal(t, string(reason), r.Log[0].Reason)
}

func TestEveryDefaultActSucceedsWithValidParams(t *testing.T) {
	for _, id := range DefaultCatalog().IDs() {
		t.Run(string(id), func(t *testing.T) {
			r := run(t, state.Default(), id, validParams[id])
			require.True(t, r.OK(), "failure: %v", r.Failure)
			assert.Equal(t, int64(1), r.State.SystemState.LogicalClock)
			assert.NotEmpty(t, r.Log)
			assert.Equal(t, r.Log, r.State.ActLogs)
			for _, e := range r.Log {
				assert.Equal(t, int64(1), e.Seq)
				assert.Equal(t, id, e.Act)
				assert.Equal(t, "pass-1", e.PassID)
			}
		})
	}
}

func TestExecuteUnknownAct(t *testing.T) {
	s := state.Default()
	r := run(t, s, "ACT_TELEPORT", nil)

	requireFailure(t, r, ReasonUnknownAct)
	assert.Equal(t, s, r.State)
	assert.Equal(t, ir.ActID("ACT_TELEPORT"), r.Log[0].Act)
}

func TestExecuteMissingParam(t *testing.T) {
	s := state.Default()
	r := run(t, s, Transfer, ir.Params{"sourceAccountId": ir.String(state.AccountAuditA)})

	requireFailure(t, r, ReasonMissingParam)
	assert.Equal(t, []any{"targetAccountId", "amount"}, r.Log[0].Detail["missing"])
	assert.Equal(t, s, r.State)
}

func TestExecuteInvalidParams(t *testing.T) {
	tests := []struct {
		name   string
		id     ir.ActID
		params ir.Params
	}{
		{"amount is text", Mint, ir.Params{"targetAccountId": ir.String(state.AccountAuditA), "amount": ir.String("lots")}},
		{"amount is zero", Mint, ir.Params{"targetAccountId": ir.String(state.AccountAuditA), "amount": ir.Number(0)}},
		{"unknown payer", Mint, ir.Params{"targetAccountId": ir.String("GHOST"), "amount": ir.Number(1)}},
		{"unknown target", Transfer, ir.Params{
			"sourceAccountId": ir.String(state.AccountAuditA),
			"targetAccountId": ir.String("GHOST"),
			"amount":          ir.Number(1),
		}},
		{"negative volume", RequestNetwork, ir.Params{
			"sourceId":   ir.String("X"),
			"targetUrl":  ir.String("u"),
			"dataVolume": ir.Number(-1),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := state.Default()
			r := run(t, s, tt.id, tt.params)
			requireFailure(t, r, ReasonInvalidParam)
			assert.Equal(t, s, r.State)
		})
	}
}

func TestExecuteRejectsNonFiniteNumbers(t *testing.T) {
	tests := []struct {
		name   string
		id     ir.ActID
		params ir.Params
	}{
		{"infinite volume", RequestNetwork, ir.Params{
			"sourceId":   ir.String(state.AccountAuditA),
			"targetUrl":  ir.String("https://example.test/feed"),
			"dataVolume": ir.Number(math.Inf(1)),
		}},
		{"NaN access level", UpdateContent, ir.Params{
			"newContentHash": ir.String("FFEE00112233"),
			"accessLevel":    ir.Number(math.NaN()),
		}},
		{"negative infinite amount", Mint, ir.Params{
			"targetAccountId": ir.String(state.AccountAuditA),
			"amount":          ir.Number(math.Inf(-1)),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := state.Default()
			r := run(t, s, tt.id, tt.params)
			requireFailure(t, r, ReasonInvalidParam)
			assert.Equal(t, s, r.State)
			assert.Contains(t, r.Failure.Message, "must be finite")

			_, err := state.Encode(r.State)
			assert.NoError(t, err)
		})
	}
}

func TestUniformHaltGate(t *testing.T) {
	halted := state.Default()
	halted.SystemState.IsHalted = true
	snapshot := halted.Clone()

	c := DefaultCatalog()
	for _, id := range c.IDs() {
		if id == c.Remediation() {
			continue
		}
		t.Run(string(id), func(t *testing.T) {
			r := run(t, halted, id, validParams[id])
			requireFailure(t, r, ReasonHalted)
			assert.Equal(t, KindHalted, r.Failure.Kind())
			assert.True(t, IsHalted(r.Failure))
			assert.Equal(t, snapshot, r.State)
		})
	}
}

func TestRemediationRunsWhileHalted(t *testing.T) {
	s := state.Default()
	s.SystemState.IsHalted = true
	s.VibrationScore = 12000

	r := run(t, s, ZRemediate, validParams[ZRemediate])
	require.True(t, r.OK())
	assert.Equal(t, ir.StatusCriticalSuccess, r.Status)
	assert.Equal(t, 0.0, r.State.VibrationScore)
	assert.True(t, r.State.SystemState.IsHalted)
	assert.Equal(t, "Z_REMEDIATE_EXECUTED", r.Log[0].Action)
	assert.Equal(t, "LIL_ZZZ", r.Log[0].Detail["trigger"])
}

func TestNoMutationOnFailure(t *testing.T) {
	s := state.Default()
	before := s.Clone()

	r := run(t, s, Transfer, ir.Params{
		"sourceAccountId": ir.String(state.AccountAuditB),
		"targetAccountId": ir.String(state.AccountAuditA),
		"amount":          ir.Number(50000),
	})

	requireFailure(t, r, ReasonInsufficientBalance)
	assert.True(t, IsInsufficientBalance(r.Failure))
	assert.Equal(t, before, r.State)
	assert.Equal(t, before, s)
	assert.Equal(t, int64(0), r.Log[0].Seq)
}

func TestCostInsufficientAlpha(t *testing.T) {
	s := state.Default()
	acc := s.Accounts[state.AccountAuditB]
	acc.ALPHA = 0.2
	s.Accounts[state.AccountAuditB] = acc

	r := run(t, s, Transfer, ir.Params{
		"sourceAccountId": ir.String(state.AccountAuditB),
		"targetAccountId": ir.String(state.AccountAuditA),
		"amount":          ir.Number(0.1),
	})
	requireFailure(t, r, ReasonInsufficientBalance)
	assert.Equal(t, 0.2, r.State.Accounts[state.AccountAuditB].ALPHA)
}

func TestMint(t *testing.T) {
	r := run(t, state.Default(), Mint, validParams[Mint])
	require.True(t, r.OK())

	assert.Equal(t, 100490.0, r.State.Accounts[state.AccountAuditA].ALPHA)
	assert.Equal(t, 5.0, r.State.VibrationScore)
	assert.Equal(t, "MINTED", r.Log[0].Action)
	assert.Equal(t, 10.0, r.Log[0].Detail["cost"])
	assert.Equal(t, "ALPHA", r.Log[0].Detail["metric"])
}

func TestMintIntoEmptyAccountPaysFeeFromProceeds(t *testing.T) {
	r := run(t, state.Default(), Mint, ir.Params{
		"targetAccountId": ir.String(state.AccountBridge),
		"amount":          ir.Number(100),
	})
	require.True(t, r.OK(), "mint rejected: %+v", r.Failure)
	assert.Equal(t, 90.0, r.State.Accounts[state.AccountBridge].ALPHA)

	r = run(t, state.Default(), Mint, ir.Params{
		"targetAccountId": ir.String(state.AccountBridge),
		"amount":          ir.Number(5),
	})
	requireFailure(t, r, ReasonInsufficientBalance)
	assert.Equal(t, state.Default(), r.State)
}

func TestTransfer(t *testing.T) {
	r := run(t, state.Default(), Transfer, validParams[Transfer])
	require.True(t, r.OK())

	assert.Equal(t, 98999.5, r.State.Accounts[state.AccountAuditA].ALPHA)
	assert.Equal(t, 51000.0, r.State.Accounts[state.AccountAuditB].ALPHA)
	assert.Equal(t, 0.0, r.State.VibrationScore)
}

func TestBridgeOutFromBridgeAccount(t *testing.T) {
	r := run(t, state.Default(), BridgeOut, validParams[BridgeOut])
	require.True(t, r.OK())

	assert.Equal(t, 40000.0, *r.State.Accounts[state.AccountBridge].FiatBalance)
	assert.Equal(t, 150.0, r.State.VibrationScore)
	assert.Equal(t, "WITHDRAW", r.Log[0].Detail["mode"])
}

func TestBridgeOutConvertsIntoBridge(t *testing.T) {
	s := state.Default()
	r := run(t, s, BridgeOut, ir.Params{
		"sourceAccountId": ir.String(state.AccountAuditB),
		"amount":          ir.Number(50000),
	})
	require.True(t, r.OK())

	assert.Equal(t, 0.0, r.State.Accounts[state.AccountAuditB].ALPHA)
	assert.Equal(t, 150000.0, *r.State.Accounts[state.AccountBridge].FiatBalance)
	assert.Equal(t, "CONVERT", r.Log[0].Detail["mode"])
	assert.Equal(t, 100000.0, *s.Accounts[state.AccountBridge].FiatBalance)
}

func TestBridgeOutUsesRate(t *testing.T) {
	s := state.Default()
	s.CurrencyRates[state.RateAlphaToJPY] = 2

	r := run(t, s, BridgeOut, ir.Params{
		"sourceAccountId": ir.String(state.AccountBridge),
		"amount":          ir.Number(10000),
	})
	require.True(t, r.OK())
	assert.Equal(t, 80000.0, *r.State.Accounts[state.AccountBridge].FiatBalance)
	assert.Equal(t, 20000.0, r.Log[0].Detail["fiatAmount"])
}

func TestBridgeOutInsufficientFiat(t *testing.T) {
	s := state.Default()
	r := run(t, s, BridgeOut, ir.Params{
		"sourceAccountId": ir.String(state.AccountBridge),
		"amount":          ir.Number(200000),
	})
	requireFailure(t, r, ReasonInsufficientBalance)
	assert.Equal(t, s, r.State)
}

func TestUpdateContent(t *testing.T) {
	r := run(t, state.Default(), UpdateContent, validParams[UpdateContent])
	require.True(t, r.OK())

	assert.Equal(t, "FFEE00112233", r.State.Store.ContentHash)
	assert.Equal(t, 2.0, r.State.Store.AccessLevel)
	assert.Equal(t, int64(1), r.State.Store.LastUpdate)
	assert.Equal(t, 70.0, r.State.VibrationScore)
}

func TestAssignLabor(t *testing.T) {
	r := run(t, state.Default(), AssignLabor, validParams[AssignLabor])
	require.True(t, r.OK())

	assert.Equal(t, 100500.0, r.State.Accounts[state.AccountAuditA].ALPHA)
	assert.Equal(t, []string{state.AccountAuditB}, r.State.LaborPool.UnassignedUsers)
	assert.Equal(t, 60.0, r.State.VibrationScore)
	assert.Equal(t, 500.0, r.Log[0].Detail["reward"])
}

func TestAssignLaborUnknownActPaysNothing(t *testing.T) {
	r := run(t, state.Default(), AssignLabor, ir.Params{
		"userId":     ir.String(state.AccountAuditB),
		"laborActId": ir.String("LBA_404"),
	})
	require.True(t, r.OK())
	assert.Equal(t, 50000.0, r.State.Accounts[state.AccountAuditB].ALPHA)
	assert.Equal(t, 0.0, r.Log[0].Detail["reward"])
}

func TestAssessAffinityIsDeterministic(t *testing.T) {
	first := run(t, state.Default(), AssessAffinity, validParams[AssessAffinity])
	second := run(t, state.Default(), AssessAffinity, validParams[AssessAffinity])
	require.True(t, first.OK())
	require.True(t, second.OK())

	assert.Equal(t, first.State, second.State)
	aff := first.State.AffectionPool.Affinities[state.AccountAuditA]
	assert.GreaterOrEqual(t, aff.Score, 0.5)
	assert.LessOrEqual(t, aff.Score, 1.0)
	assert.Equal(t, state.AccountAuditB, aff.Target)
	assert.Equal(t, int64(1001), first.State.AffectionPool.TotalActs)
	assert.Equal(t, 150.0, first.State.VibrationScore)
}

func TestExecuteLogosCode(t *testing.T) {
	r := run(t, state.Default(), ExecuteLogosCode, validParams[ExecuteLogosCode])
	require.True(t, r.OK())

	assert.InDelta(t, 99990.0, r.State.Accounts[state.AccountAuditA].ALPHA, 1e-9)
	require.Len(t, r.State.VM.Queue, 1)
	assert.Equal(t, state.Job{CodeHash: "PY_CODE_01", User: state.AccountAuditA, Language: "python"}, r.State.VM.Queue[0])
	assert.Equal(t, 20.0, r.State.VibrationScore)
}

func TestRequestEnergy(t *testing.T) {
	r := run(t, state.Default(), RequestEnergy, validParams[RequestEnergy])
	require.True(t, r.OK())

	assert.Equal(t, state.Default().Accounts, r.State.Accounts)
	assert.Equal(t, 9900.0, r.State.VM.TotalEnergy)
	assert.Equal(t, 0.5, r.State.VibrationScore)
	assert.Equal(t, "DEVICE_01", r.Log[0].Detail["device"])
	assert.Equal(t, 100.0, r.Log[0].Detail["energy"])
	assert.Equal(t, 9900.0, r.Log[0].Detail["remaining"])
	assert.Equal(t, "Energy", r.Log[0].Detail["metric"])
}

func TestRequestEnergyExhausted(t *testing.T) {
	s := state.Default()
	s.VM.TotalEnergy = 10

	r := run(t, s, RequestEnergy, validParams[RequestEnergy])
	requireFailure(t, r, ReasonInsufficientBalance)
	assert.Equal(t, s, r.State)
}

func TestRequestNetworkRecordsUsage(t *testing.T) {
	r := run(t, state.Default(), RequestNetwork, validParams[RequestNetwork])
	require.True(t, r.OK())

	require.Len(t, r.Log, 2)
	assert.Equal(t, "NETWORK_ROUTED", r.Log[0].Action)
	assert.Equal(t, "LOGOS_NET_USAGE", r.Log[1].Action)
	assert.Equal(t, "https://example.test/feed", r.Log[1].Detail["target"])
	assert.Equal(t, 55.0, r.State.VibrationScore)
}

func TestExecuteCarriesRule(t *testing.T) {
	x := NewExecutor(DefaultCatalog(), 1)
	r := x.Execute(state.Default(), Invocation{Act: Mint, Params: validParams[Mint], Rule: "LIL_TEST"})
	require.True(t, r.OK())
	assert.Equal(t, ir.RuleID("LIL_TEST"), r.Log[0].Rule)
}
