package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains all the application paths
// This is the single source of truth for ALL file paths in the application
type Paths struct {
	ExecutableDir string
	DataDir       string
	InputDir      string
	ReportsDir    string
	ChartsDir     string
	LogsDir       string
}

// GetPaths returns the application paths relative to the executable location
// All paths are ALWAYS relative to the executable directory, never the current working directory
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %v", err)
	}

	// Resolve symlinks to get the actual executable location
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %v", err)
	}

	exeDir := filepath.Dir(exe)

	// All paths are relative to the executable directory.
	// Directory structure:
	// dist/
	//   ├── config.yaml
	//   ├── data/
	//   │   ├── input/     (agency workbooks and CSV exports)
	//   │   ├── reports/   (generated CSV/JSON reports)
	//   │   └── charts/    (rendered HTML charts)
	//   └── logs/          (application logs)

	return &Paths{
		ExecutableDir: exeDir,
		DataDir:       filepath.Join(exeDir, DefaultDataDir),
		InputDir:      filepath.Join(exeDir, DefaultInputDir),
		ReportsDir:    filepath.Join(exeDir, DefaultReportsDir),
		ChartsDir:     filepath.Join(exeDir, DefaultChartsDir),
		LogsDir:       filepath.Join(exeDir, DefaultLogsDir),
	}, nil
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.InputDir,
		p.ReportsDir,
		p.ChartsDir,
		p.LogsDir,
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}

	return nil
}

// GetInputPath returns the path for an input report file
func (p *Paths) GetInputPath(filename string) string {
	return filepath.Join(p.InputDir, filename)
}

// GetReportPath returns the path for a generated report file
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetChartPath returns the path for a rendered chart file
func (p *Paths) GetChartPath(filename string) string {
	return filepath.Join(p.ChartsDir, filename)
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// LogPathResolution logs where every directory resolved to, for
// debugging relocated or misconfigured installs.
func (p *Paths) LogPathResolution() {
	slog.Default().Info("Path resolution summary",
		slog.Group("directories",
			slog.String("executable", p.ExecutableDir),
			slog.String("data", p.DataDir),
			slog.String("input", p.InputDir),
			slog.String("reports", p.ReportsDir),
			slog.String("charts", p.ChartsDir),
			slog.String("logs", p.LogsDir),
		))
}
