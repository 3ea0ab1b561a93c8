package act

import (
	"fmt"
	"math"
	"slices"

	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/ir"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/state"
)

// Act ids of the default catalog.
const (
	Mint             ir.ActID = "MINT"
	Transfer         ir.ActID = "TRANSFER"
	BridgeOut        ir.ActID = "ACT_BRIDGE_OUT"
	UpdateContent    ir.ActID = "ACT_UPDATE_CONTENT"
	AssignLabor      ir.ActID = "ACT_ASSIGN_LABOR"
	AssessAffinity   ir.ActID = "ACT_ASSESS_AFFINITY"
	ExecuteLogosCode ir.ActID = "ACT_EXECUTE_LOGOS_CODE"
	ZRemediate       ir.ActID = "ACT_Z_REMEDIATE"
	RequestEnergy    ir.ActID = "ACT_REQUEST_ENERGY"
	RequestNetwork   ir.ActID = "ACT_REQUEST_NETWORK"
)

// fallbackCodeScale prices code in a language missing from codeSpec.
const fallbackCodeScale = 0.25

// DefaultCatalog returns the built-in catalog with ACT_Z_REMEDIATE as the
// remediation act.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(ZRemediate, Descriptors()...)
	if err != nil {
		panic(fmt.Sprintf("default catalog: %v", err))
	}
	return c
}

// Descriptors returns the built-in act definitions.
func Descriptors() []Descriptor {
	return []Descriptor{
		{
			ID:          Mint,
			Description: "Issue new ALPHA into an account.",
			Params:      []Param{{"targetAccountId", ParamString}, {"amount", ParamNumber}},
			BaseCost:    10,
			Metric:      MetricAlpha,
			Payer:       "targetAccountId",
			ChargeAfter: true,
			Writes:      []string{"accounts", "vibrationScore"},
			Transition:  mint,
		},
		{
			ID:          Transfer,
			Description: "Move ALPHA between accounts.",
			Params:      []Param{{"sourceAccountId", ParamString}, {"targetAccountId", ParamString}, {"amount", ParamNumber}},
			BaseCost:    0.5,
			Metric:      MetricAlpha,
			Payer:       "sourceAccountId",
			Writes:      []string{"accounts"},
			Transition:  transfer,
		},
		{
			ID:          BridgeOut,
			Description: "Convert value out through the fiat bridge.",
			Params:      []Param{{"sourceAccountId", ParamString}, {"amount", ParamNumber}},
			BaseCost:    100,
			Metric:      MetricVibration,
			Writes:      []string{"accounts", "vibrationScore"},
			Transition:  bridgeOut,
		},
		{
			ID:          UpdateContent,
			Description: "Replace the hosted content hash.",
			Params:      []Param{{"newContentHash", ParamString}, {"accessLevel", ParamNumber}},
			BaseCost:    50,
			Metric:      MetricVibration,
			Writes:      []string{"store", "vibrationScore"},
			Transition:  updateContent,
		},
		{
			ID:          AssignLabor,
			Description: "Assign a user to an open labor act and pay its reward.",
			Params:      []Param{{"userId", ParamString}, {"laborActId", ParamString}},
			BaseCost:    30,
			Metric:      MetricVibration,
			Writes:      []string{"accounts", "laborPool", "vibrationScore"},
			Transition:  assignLabor,
		},
		{
			ID:          AssessAffinity,
			Description: "Score the compatibility of two users.",
			Params:      []Param{{"userAId", ParamString}, {"userBId", ParamString}},
			BaseCost:    75,
			Metric:      MetricVibration,
			Writes:      []string{"affectionPool", "vibrationScore"},
			Transition:  assessAffinity,
		},
		{
			ID:          ExecuteLogosCode,
			Description: "Queue code for execution on the VM.",
			Params:      []Param{{"userId", ParamString}, {"languageSpec", ParamString}, {"codeHash", ParamString}},
			BaseCost:    200,
			Metric:      MetricAlpha,
			Payer:       "userId",
			Scale:       codeScale,
			Writes:      []string{"accounts", "vm.queue", "vibrationScore"},
			Transition:  executeLogosCode,
		},
		{
			ID:          ZRemediate,
			Description: "Reset the vibration score and halt the system.",
			Params:      []Param{{"triggeringLILId", ParamString}, {"remediationAction", ParamString}},
			BaseCost:    1000,
			Metric:      MetricVibration,
			Writes:      []string{"vibrationScore", "systemState.isHalted"},
			Transition:  zRemediate,
		},
		{
			ID:          RequestEnergy,
			Description: "Draw VM energy for a device.",
			Params:      []Param{{"deviceId", ParamString}, {"duration", ParamNumber}},
			BaseCost:    1,
			Metric:      MetricEnergy,
			Scale:       durationScale,
			Writes:      []string{"vm.totalEnergy", "vibrationScore"},
			Transition:  requestEnergy,
		},
		{
			ID:          RequestNetwork,
			Description: "Route a request through the simulated network.",
			Params:      []Param{{"sourceId", ParamString}, {"targetUrl", ParamString}, {"dataVolume", ParamNumber}},
			BaseCost:    5,
			Metric:      MetricVibration,
			Writes:      []string{"vibrationScore"},
			Transition:  requestNetwork,
		},
	}
}

func positive(p ir.Params, name string) (float64, error) {
	n, _ := p.Number(name)
	if math.IsNaN(n) || math.IsInf(n, 0) || n <= 0 {
		return 0, invalidParam(name, "parameter %s must be > 0, got %v", name, n)
	}
	return n, nil
}

func account(s *state.State, p ir.Params, name string) (string, state.Account, error) {
	id, _ := p.Text(name)
	acc, ok := s.Accounts[id]
	if !ok {
		return "", state.Account{}, invalidParam(name, "unknown account %q", id)
	}
	return id, acc, nil
}

func mint(s *state.State, p ir.Params, _ Env) ([]ir.LogEntry, error) {
	amount, err := positive(p, "amount")
	if err != nil {
		return nil, err
	}
	id, acc, err := account(s, p, "targetAccountId")
	if err != nil {
		return nil, err
	}
	acc.ALPHA += amount
	s.Accounts[id] = acc
	s.VibrationScore += 5
	return []ir.LogEntry{{
		Action: "MINTED",
		Detail: map[string]any{"account": id, "amount": amount},
	}}, nil
}

func transfer(s *state.State, p ir.Params, _ Env) ([]ir.LogEntry, error) {
	amount, err := positive(p, "amount")
	if err != nil {
		return nil, err
	}
	srcID, src, err := account(s, p, "sourceAccountId")
	if err != nil {
		return nil, err
	}
	dstID, _, err := account(s, p, "targetAccountId")
	if err != nil {
		return nil, err
	}
	if src.ALPHA < amount {
		return nil, insufficient(srcID+".ALPHA", src.ALPHA, amount)
	}
	src.ALPHA -= amount
	s.Accounts[srcID] = src
	dst := s.Accounts[dstID]
	dst.ALPHA += amount
	s.Accounts[dstID] = dst
	return []ir.LogEntry{{
		Action: "TRANSFERRED",
		Detail: map[string]any{"source": srcID, "target": dstID, "amount": amount},
	}}, nil
}

// bridgeOut pays fiat out of a bridge account, or converts ALPHA from an
// ordinary account into fiat credited to the bridge.
func bridgeOut(s *state.State, p ir.Params, _ Env) ([]ir.LogEntry, error) {
	amount, err := positive(p, "amount")
	if err != nil {
		return nil, err
	}
	srcID, src, err := account(s, p, "sourceAccountId")
	if err != nil {
		return nil, err
	}
	rate := s.CurrencyRates[state.RateAlphaToJPY]
	if rate <= 0 {
		rate = 1
	}
	fiat := amount * rate

	mode := "WITHDRAW"
	if src.IsBridge() {
		if *src.FiatBalance < fiat {
			return nil, insufficient(srcID+".fiatBalance", *src.FiatBalance, fiat)
		}
		left := *src.FiatBalance - fiat
		src.FiatBalance = &left
		s.Accounts[srcID] = src
	} else {
		mode = "CONVERT"
		bridge, ok := s.Accounts[state.AccountBridge]
		if !ok || !bridge.IsBridge() {
			return nil, invalidParam("sourceAccountId", "no bridge account to receive conversion")
		}
		if src.ALPHA < amount {
			return nil, insufficient(srcID+".ALPHA", src.ALPHA, amount)
		}
		src.ALPHA -= amount
		s.Accounts[srcID] = src
		credited := *bridge.FiatBalance + fiat
		bridge.FiatBalance = &credited
		s.Accounts[state.AccountBridge] = bridge
	}
	s.VibrationScore += 50

	return []ir.LogEntry{{
		Action: "BRIDGE_OUT_EXECUTED",
		Detail: map[string]any{"source": srcID, "amount": amount, "fiatAmount": fiat, "mode": mode},
	}}, nil
}

func updateContent(s *state.State, p ir.Params, env Env) ([]ir.LogEntry, error) {
	hash, _ := p.Text("newContentHash")
	level, _ := p.Number("accessLevel")
	s.Store.ContentHash = hash
	s.Store.AccessLevel = level
	s.Store.LastUpdate = env.Clock
	s.VibrationScore += s.Store.UpdateCost
	return []ir.LogEntry{{
		Action: "CONTENT_UPDATED",
		Detail: map[string]any{"contentHash": hash, "accessLevel": level},
	}}, nil
}

// assignLabor pays the open act's reward; an unknown labor act pays zero.
func assignLabor(s *state.State, p ir.Params, _ Env) ([]ir.LogEntry, error) {
	userID, user, err := account(s, p, "userId")
	if err != nil {
		return nil, err
	}
	laborID, _ := p.Text("laborActId")

	var reward float64
	for _, la := range s.LaborPool.OpenActs {
		if la.ID == laborID {
			reward = la.Reward
			break
		}
	}
	user.ALPHA += reward
	s.Accounts[userID] = user
	s.LaborPool.UnassignedUsers = slices.DeleteFunc(s.LaborPool.UnassignedUsers, func(u string) bool {
		return u == userID
	})
	s.VibrationScore += 30

	return []ir.LogEntry{{
		Action: "LABOR_ASSIGNED",
		Detail: map[string]any{"user": userID, "laborAct": laborID, "reward": reward},
	}}, nil
}

func assessAffinity(s *state.State, p ir.Params, env Env) ([]ir.LogEntry, error) {
	a, _ := p.Text("userAId")
	b, _ := p.Text("userBId")
	score := math.Min(1, env.Rand.Float64()+0.5)

	if s.AffectionPool.Affinities == nil {
		s.AffectionPool.Affinities = map[string]state.Affinity{}
	}
	s.AffectionPool.Affinities[a] = state.Affinity{Score: score, Target: b}
	s.AffectionPool.TotalActs++
	s.VibrationScore += 75

	return []ir.LogEntry{{
		Action: "AFFINITY_ASSESSED",
		Detail: map[string]any{"userA": a, "userB": b, "score": score},
	}}, nil
}

// codeScale prices code by the language's per-op cost; unknown languages
// pay a flat quarter of the base cost.
func codeScale(s state.State, p ir.Params) (float64, error) {
	lang, _ := p.Text("languageSpec")
	spec, ok := s.CodeSpec[lang]
	if !ok || spec.CostPerOp <= 0 {
		return fallbackCodeScale, nil
	}
	return spec.CostPerOp, nil
}

func executeLogosCode(s *state.State, p ir.Params, env Env) ([]ir.LogEntry, error) {
	user, _ := p.Text("userId")
	lang, _ := p.Text("languageSpec")
	hash, _ := p.Text("codeHash")

	s.VM.Queue = append(s.VM.Queue, state.Job{CodeHash: hash, User: user, Language: lang})
	s.VibrationScore += 20

	return []ir.LogEntry{{
		Action: "CODE_QUEUED",
		Detail: map[string]any{"user": user, "language": lang, "codeHash": hash, "queued": float64(len(s.VM.Queue))},
	}}, nil
}

func zRemediate(s *state.State, p ir.Params, _ Env) ([]ir.LogEntry, error) {
	trigger, _ := p.Text("triggeringLILId")
	action, _ := p.Text("remediationAction")

	s.VibrationScore = 0
	s.SystemState.IsHalted = true

	return []ir.LogEntry{{
		Status: ir.StatusCriticalSuccess,
		Action: "Z_REMEDIATE_EXECUTED",
		Detail: map[string]any{"trigger": trigger, "remediation": action},
	}}, nil
}

func durationScale(_ state.State, p ir.Params) (float64, error) {
	return positive(p, "duration")
}

func requestEnergy(s *state.State, p ir.Params, env Env) ([]ir.LogEntry, error) {
	device, _ := p.Text("deviceId")
	s.VibrationScore += 0.5

	// The charged cost is the energy drawn: duration * base cost.
	return []ir.LogEntry{{
		Action: "ENERGY_CONSUMED",
		Detail: map[string]any{"device": device, "energy": env.Cost, "remaining": s.VM.TotalEnergy},
	}}, nil
}

func requestNetwork(s *state.State, p ir.Params, _ Env) ([]ir.LogEntry, error) {
	source, _ := p.Text("sourceId")
	target, _ := p.Text("targetUrl")
	volume, _ := p.Number("dataVolume")
	if volume < 0 {
		return nil, invalidParam("dataVolume", "parameter dataVolume must be >= 0, got %v", volume)
	}
	s.VibrationScore += 50

	detail := map[string]any{"source": source, "target": target, "volume": volume}
	usage := make(map[string]any, len(detail))
	for k, v := range detail {
		usage[k] = v
	}
	return []ir.LogEntry{
		{Action: "NETWORK_ROUTED", Detail: detail},
		{Action: "LOGOS_NET_USAGE", Detail: usage},
	}, nil
}
