package config

import "time"

// Application constants - hardcoded values for the passenger traffic pipeline
const (
	// Application Info
	AppName = "Foreign Flyers"

	// File Paths (relative to executable)
	DefaultDataDir    = "data"
	DefaultLogsDir    = "logs"
	DefaultInputDir   = "data/input"
	DefaultReportsDir = "data/reports"
	DefaultChartsDir  = "data/charts"

	// Input Discovery
	TempFilePrefix = "~$" // Excel lock files, never parse these

	// Pipeline Timeouts
	DefaultPipelineTimeout = 30 * time.Minute
	TelemetryFlushTimeout  = 10 * time.Second

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)
