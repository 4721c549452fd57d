package config

// Prefix colors for the server loggers.
const (
	ColorGreen  = "\033[32m" // APP
	ColorYellow = "\033[33m" // AGENT
	ColorCyan   = "\033[36m" // SIM-MANAGER
)
