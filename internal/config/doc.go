// Package config provides centralized configuration management for the
// passenger traffic pipeline. It handles loading configuration from multiple
// sources, validation, and provides a type-safe API for accessing
// configuration values throughout the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration files (YAML)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern FLYERSTATS_* for namespacing:
//
//	FLYERSTATS_INPUT_DIR=data/input
//	FLYERSTATS_INPUT_SHEET=Traffic
//	FLYERSTATS_CHART_FROM_YEAR=2022
//	FLYERSTATS_LOGGING_LEVEL=debug
//
// # Path Management
//
// The package provides centralized path management through the Paths type,
// which handles all file system paths relative to the executable location:
//
//	paths, err := config.GetPaths()
//	inputPath := paths.GetInputPath("2024 01 air traffic.xlsx")
//	reportPath := paths.GetReportPath("monthly_passengers_yoy.csv")
//
// # Validation
//
// All configuration is validated at load time with go-playground/validator
// struct tags plus cross-field checks (for example an inverted chart year
// range is rejected).
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
