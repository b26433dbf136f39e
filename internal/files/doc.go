// Package files provides file system operations and discovery utilities
// for the passenger traffic pipeline.
//
// This package contains two main components:
//
// Discovery: Provides file discovery operations such as finding agency
// workbooks, CSV exports, and files matching specific patterns. Input
// files are returned in a deterministic order based on the reporting
// period embedded in their filenames.
//
// Manager: Answers filesystem questions about pipeline artifacts, such
// as whether an output file landed on disk and how large it is. Relative
// names resolve against the data directory tree.
//
// Example usage:
//
//	// Create a discovery instance
//	discovery := files.NewDiscovery("/path/to/base")
//
//	// Find all input report files
//	inputFiles, err := discovery.FindInputFiles("input")
//
//	// Create a manager instance
//	manager := files.NewManager(paths, logger)
//
//	// Check if a report exists
//	if manager.FileExists("reports/monthly_passengers_yoy.csv") {
//	    // Process file
//	}
package files
