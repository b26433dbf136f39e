package files

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/TWALLACK/foreign-flyers/internal/config"
)

// Manager answers the filesystem questions the pipeline asks about its
// own artifacts: whether an output landed on disk and how large it is.
// It shares the relative-path conventions of the writers, so callers
// can hand it the same names they hand the exporters.
type Manager struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewManager creates a file manager rooted at the resolved data paths.
func NewManager(paths *config.Paths, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		paths:  paths,
		logger: logger.With(slog.String("component", "files")),
	}
}

// FileExists reports whether a regular file is present at path. A
// directory at the same name does not count: every artifact this tool
// writes is a plain file.
func (m *Manager) FileExists(path string) bool {
	fullPath := m.resolvePath(path)
	info, err := os.Stat(fullPath)
	exists := err == nil && !info.IsDir()

	m.logger.Debug("file existence check",
		slog.String("path", fullPath),
		slog.Bool("exists", exists))

	return exists
}

// GetFileSize returns the size of the file at path in bytes.
func (m *Manager) GetFileSize(path string) (int64, error) {
	info, err := os.Stat(m.resolvePath(path))
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// resolvePath maps a relative name onto the data tree the same way the
// writers do: an "input/", "reports/" or "charts/" prefix picks the
// matching directory, anything else lands directly in the data
// directory. Absolute paths pass through untouched.
func (m *Manager) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	switch {
	case strings.HasPrefix(path, "input/"):
		return m.paths.GetInputPath(strings.TrimPrefix(path, "input/"))
	case strings.HasPrefix(path, "reports/"):
		return m.paths.GetReportPath(strings.TrimPrefix(path, "reports/"))
	case strings.HasPrefix(path, "charts/"):
		return m.paths.GetChartPath(strings.TrimPrefix(path, "charts/"))
	default:
		return filepath.Join(m.paths.DataDir, path)
	}
}
