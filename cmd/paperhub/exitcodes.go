package main

// Exit codes. Scripts and agents branch on these, so they are part of the
// CLI contract.
const (
	ExitSuccess            = 0 // Success
	ExitError              = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError        = 2 // Configuration error (not in a library, bad config)
	ExitNotFound           = 3 // Paper, tag, or history entry not found
	ExitNoVector           = 4 // Paper has no embedding vector
	ExitBackendUnavailable = 5 // Ollama unreachable or model missing
	ExitStaleVectors       = 6 // Stored vectors out of date (check command)
)
