// Package harness runs audit scenarios against the real engine.
//
// A scenario seeds a state, drives the engine through a list of steps and
// then checks the recorded audit trace and the final state.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: living_threshold
//	description: "Draining the bridge triggers LIL_XXL"
//	max_iterations: 16          # optional, default 16
//	seed: 1                     # optional, default 1
//	rules: ./rules              # optional CUE package dir, relative to the file
//	state:                      # optional overrides of the default state
//	  accounts.ACCOUNT_BRIDGE.fiatBalance: 40000
//	steps:
//	  - invoke: ACT_BRIDGE_OUT
//	    params: { sourceAccountId: ACCOUNT_BRIDGE, amount: 60000 }
//	    expect: { status: SUCCESS }
//	  - say: "TRANSFER USER_AUDIT_A 100 USER_AUDIT_B"
//	  - pass: true
//	    expect: { mode: IDLE, fired: [LIL_XXL] }
//	  - clear_halt: auditor
//	assertions:
//	  - type: trace_contains
//	    act: ACT_BRIDGE_OUT
//	    rule: LIL_XXL
//	  - type: final_state
//	    path: accounts.USER_AUDIT_B.ALPHA
//	    equals: 0
//
// Each step sets exactly one of invoke, say, pass or clear_halt.
//
// # Assertion Types
//
//   - trace_contains: some entry matches every given field (action, act,
//     rule, status)
//   - trace_order: the listed action tags appear in this order
//   - trace_count: the action tag appears exactly count times
//   - final_state: the value at path equals the expected scalar
//
// # Determinism
//
// Pass ids come from testutil.SequentialPassGenerator and the random source
// is seeded from the scenario, so a scenario always produces the same trace.
// RunWithGolden compares that trace against testdata/golden/<name>.golden.
package harness
