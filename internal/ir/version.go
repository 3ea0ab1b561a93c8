package ir

// Version constants for persisted state and engine.
const (
	// StateVersion is the version of the exported state document.
	StateVersion = "1"

	// EngineVersion is the vibe engine version.
	EngineVersion = "0.1.0"
)
