package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/TWALLACK/foreign-flyers/internal/config"
	apperrors "github.com/TWALLACK/foreign-flyers/internal/errors"
)

// FileValidator checks directories and report files before the pipeline
// touches them, so path problems surface as one clear error instead of a
// mid-run failure.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateInputDirectory confirms the input directory exists and is a
// directory. Whether it holds any report files is the discovery stage's
// question, not this one's.
func (v *FileValidator) ValidateInputDirectory(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		v.logger.Error("Input directory does not exist",
			slog.String("directory", dir))
		return apperrors.NewNotFoundError("input directory").WithContext("dir", dir)
	}
	if err != nil {
		v.logger.Error("Failed to stat input directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError("failed to stat input directory", err).WithContext("dir", dir)
	}
	if !info.IsDir() {
		v.logger.Error("Input path is not a directory",
			slog.String("path", dir))
		return apperrors.NewValidationError(fmt.Sprintf("%s is not a directory", dir)).WithContext("dir", dir)
	}

	return nil
}

// ValidateOutputDirectory ensures the output directory exists and is
// writable, probing with a throwaway file.
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError("failed to create output directory", err).WithContext("dir", dir)
	}

	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError("output directory is not writable", err).WithContext("dir", dir)
	}
	file.Close()
	os.Remove(testFile)

	return nil
}

// ValidateReportFile checks that a discovered report file still exists,
// is a readable regular file, and carries a spreadsheet or CSV
// extension. Office lock files ("~$...") are rejected outright.
func (v *FileValidator) ValidateReportFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("Report file does not exist",
			slog.String("file", path))
		return apperrors.NewNotFoundError("report file").WithContext("file", path)
	}
	if err != nil {
		v.logger.Error("Failed to stat report file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError("failed to stat report file", err).WithContext("file", path)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a report file",
			slog.String("path", path))
		return apperrors.NewValidationError(fmt.Sprintf("%s is a directory, not a report file", path)).WithContext("file", path)
	}

	if strings.HasPrefix(filepath.Base(path), config.TempFilePrefix) {
		v.logger.Warn("Rejecting spreadsheet lock file",
			slog.String("file", path))
		return apperrors.NewValidationError("spreadsheet lock file cannot be processed").WithContext("file", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".xlsx", ".xls", ".csv":
	default:
		v.logger.Error("Unsupported report file type",
			slog.String("file", path),
			slog.String("extension", ext))
		return apperrors.NewValidationError(fmt.Sprintf("unsupported report file type %q", ext)).WithContext("file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("Report file is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError("report file is not readable", err).WithContext("file", path)
	}
	file.Close()

	v.logger.Debug("Report file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}
