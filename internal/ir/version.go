package ir

// Version constants for files and compiled programs.
const (
	// FileVersion is the newest project/chip file version this build reads.
	FileVersion = 0

	// EngineVersion is the chipsim engine version.
	EngineVersion = "0.1.0"
)
