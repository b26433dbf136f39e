package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/TWALLACK/foreign-flyers/internal/config"
)

var (
	globalLogger     *slog.Logger
	globalLoggerOnce sync.Once
	// globalLogFile stays open for the life of the process; CloseLogFile
	// releases it on shutdown.
	globalLogFile *os.File
	logFileMu     sync.Mutex
)

// InitializeLogger builds the process-wide slog logger from the logging
// configuration and installs it as the slog default. Call it once at
// startup, before the pipeline is assembled; later calls return the
// logger built by the first.
func InitializeLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	var err error
	globalLoggerOnce.Do(func() {
		globalLogger, err = createLogger(cfg)
		if globalLogger != nil {
			slog.SetDefault(globalLogger)
		}
	})
	return globalLogger, err
}

// createLogger assembles the handler chain the configuration asks for:
// destination (stdout, file or both), record format (json or text) and
// minimum level. Development mode always logs as text.
func createLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{
		AddSource: true,
		Level:     parseLogLevel(cfg.Level),
	}

	destination := strings.ToLower(cfg.Output)

	output := io.Writer(os.Stdout)
	if destination == "file" || destination == "both" {
		file, err := openLogFile(cfg.FilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		globalLogFile = file

		if destination == "file" {
			output = file
		} else {
			output = io.MultiWriter(os.Stdout, file)
		}
	}

	var handler slog.Handler
	if cfg.Development || strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(output, opts)
	} else {
		handler = slog.NewJSONHandler(output, opts)
	}

	// Wrap the handler so every record carries the trace_id of the run
	// that produced it.
	return slog.New(&traceHandler{Handler: handler}), nil
}

// traceHandler decorates records with the trace ID found on the
// caller's context, tying the log lines of one run together without
// each call site having to pass the ID.
type traceHandler struct {
	slog.Handler
}

func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if traceID := GetTraceID(ctx); traceID != "" {
		r.AddAttrs(slog.String("trace_id", traceID))
	}

	return h.Handler.Handle(ctx, r)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithGroup(name)}
}

// logLevels maps the accepted configuration spellings onto slog levels.
var logLevels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// parseLogLevel resolves a configured level name; unknown names fall
// back to info rather than failing startup.
func parseLogLevel(level string) slog.Level {
	if l, ok := logLevels[strings.ToLower(level)]; ok {
		return l
	}
	return slog.LevelInfo
}

// CloseLogFile closes the log file opened by InitializeLogger, if any.
// Called during shutdown and between tests.
func CloseLogFile() error {
	logFileMu.Lock()
	defer logFileMu.Unlock()

	if globalLogFile != nil {
		err := globalLogFile.Close()
		globalLogFile = nil
		return err
	}
	return nil
}

// ResetLoggerForTesting clears the global logger state so each test can
// initialize from its own configuration.
func ResetLoggerForTesting() {
	CloseLogFile()
	globalLogger = nil
	globalLoggerOnce = sync.Once{}
}

// openLogFile opens the log file for appending, creating the directory
// and file on first use. Append mode keeps earlier runs' records.
func openLogFile(filePath string) (*os.File, error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", filePath, err)
	}

	return file, nil
}
