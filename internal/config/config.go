package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "github.com/TWALLACK/foreign-flyers/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Input   InputConfig   `yaml:"input" envconfig:"INPUT"`
	Columns ColumnsConfig `yaml:"columns" envconfig:"COLUMNS"`
	Output  OutputConfig  `yaml:"output" envconfig:"OUTPUT"`
	Chart   ChartConfig   `yaml:"chart" envconfig:"CHART"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Paths   PathsConfig   `yaml:"paths" envconfig:"PATHS"`
}

// InputConfig describes where agency report files come from and how
// their cells are interpreted.
type InputConfig struct {
	// Dir overrides the default input directory (data/input relative to
	// the executable). Relative values resolve against the executable dir.
	Dir string `yaml:"dir" envconfig:"DIR"`
	// Sheet pins workbook parsing to a named sheet. Empty means the
	// parser scans for a sheet that carries the expected header row.
	Sheet string `yaml:"sheet" envconfig:"SHEET"`
	// FilePattern narrows discovery to a glob ("2024*.xlsx"). Empty
	// means every workbook and CSV export in the input directory.
	// Matching files must still be workbook or CSV exports.
	FilePattern string `yaml:"file_pattern" envconfig:"FILE_PATTERN"`
	// DateFormats are the time layouts tried, in order, when parsing the
	// flight date column.
	DateFormats []string `yaml:"date_formats" envconfig:"DATE_FORMATS" validate:"min=1"`
}

// ColumnsConfig maps raw agency column headers to canonical fields.
// Each entry is a list of accepted header spellings, compared
// case-insensitively after trimming.
type ColumnsConfig struct {
	Date     []string `yaml:"date" envconfig:"DATE" validate:"min=1"`
	Total    []string `yaml:"total" envconfig:"TOTAL" validate:"min=1"`
	Domestic []string `yaml:"domestic" envconfig:"DOMESTIC" validate:"min=1"`
	Foreign  []string `yaml:"foreign" envconfig:"FOREIGN" validate:"min=1"`
}

// OutputConfig names the generated report files. Names are relative to
// the reports (CSV/JSON) and charts (HTML) directories.
type OutputConfig struct {
	ReportCSV   string `yaml:"report_csv" envconfig:"REPORT_CSV" validate:"required"`
	SummaryJSON string `yaml:"summary_json" envconfig:"SUMMARY_JSON" validate:"required"`
	ChartHTML   string `yaml:"chart_html" envconfig:"CHART_HTML" validate:"required"`
}

// ChartConfig controls the rendered comparison chart
type ChartConfig struct {
	Title string `yaml:"title" envconfig:"TITLE"`
	// FromYear/ToYear bound the plotted range; zero means unbounded.
	FromYear int    `yaml:"from_year" envconfig:"FROM_YEAR" validate:"min=0"`
	ToYear   int    `yaml:"to_year" envconfig:"TO_YEAR" validate:"min=0"`
	Width    string `yaml:"width" envconfig:"WIDTH"`
	Height   string `yaml:"height" envconfig:"HEIGHT"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" envconfig:"LEVEL" validate:"omitempty,oneof=debug info warn warning error"`
	// Format selects the handler: "json" for machine-readable records,
	// "text" for human-readable ones. Unknown values fall back to json.
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
	// Development switches to text records regardless of Format.
	Development bool `yaml:"development" envconfig:"DEVELOPMENT"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	ExecutableDir string `yaml:"executable_dir" envconfig:"EXECUTABLE_DIR"`
	DataDir       string `yaml:"data_dir" envconfig:"DATA_DIR"`
	LogsDir       string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

var validate = validator.New()

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	var cfg Config

	// Load from environment variables first. Process only touches
	// fields whose variables are actually set, so the file and the
	// built-in defaults can fill the rest below.
	if err := envconfig.Process("FLYERSTATS", &cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to read environment variables", err)
	}

	// Load from config file if exists
	configFile := getConfigFilePath()
	if configFile != "" {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, apperrors.NewConfigError("failed to load config file", err).
				WithContext("file", configFile)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	// Anything neither the environment nor the file set falls back to
	// the built-in defaults.
	cfg = mergeConfigs(*Default(), cfg)

	// Resolve relative paths
	if err := cfg.resolvePaths(); err != nil {
		return nil, apperrors.NewConfigError("failed to resolve configured paths", err)
	}

	// Validate configuration
	if err := cfg.validateConfig(); err != nil {
		return nil, apperrors.NewConfigError("invalid configuration", err)
	}

	// Validate paths
	if err := cfg.ValidatePaths(); err != nil {
		return nil, apperrors.NewConfigError("unusable data directories", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config with env config (env takes precedence,
// the file fills fields the environment left empty)
func mergeConfigs(fileConfig, envConfig Config) Config {
	if envConfig.Input.Dir == "" {
		envConfig.Input.Dir = fileConfig.Input.Dir
	}
	if envConfig.Input.Sheet == "" {
		envConfig.Input.Sheet = fileConfig.Input.Sheet
	}
	if envConfig.Input.FilePattern == "" {
		envConfig.Input.FilePattern = fileConfig.Input.FilePattern
	}
	if len(envConfig.Input.DateFormats) == 0 {
		envConfig.Input.DateFormats = fileConfig.Input.DateFormats
	}
	if len(envConfig.Columns.Date) == 0 {
		envConfig.Columns.Date = fileConfig.Columns.Date
	}
	if len(envConfig.Columns.Total) == 0 {
		envConfig.Columns.Total = fileConfig.Columns.Total
	}
	if len(envConfig.Columns.Domestic) == 0 {
		envConfig.Columns.Domestic = fileConfig.Columns.Domestic
	}
	if len(envConfig.Columns.Foreign) == 0 {
		envConfig.Columns.Foreign = fileConfig.Columns.Foreign
	}
	if envConfig.Output.ReportCSV == "" {
		envConfig.Output.ReportCSV = fileConfig.Output.ReportCSV
	}
	if envConfig.Output.SummaryJSON == "" {
		envConfig.Output.SummaryJSON = fileConfig.Output.SummaryJSON
	}
	if envConfig.Output.ChartHTML == "" {
		envConfig.Output.ChartHTML = fileConfig.Output.ChartHTML
	}
	if envConfig.Chart.Title == "" {
		envConfig.Chart.Title = fileConfig.Chart.Title
	}
	if envConfig.Chart.FromYear == 0 {
		envConfig.Chart.FromYear = fileConfig.Chart.FromYear
	}
	if envConfig.Chart.ToYear == 0 {
		envConfig.Chart.ToYear = fileConfig.Chart.ToYear
	}
	if envConfig.Chart.Width == "" {
		envConfig.Chart.Width = fileConfig.Chart.Width
	}
	if envConfig.Chart.Height == "" {
		envConfig.Chart.Height = fileConfig.Chart.Height
	}
	if envConfig.Logging.Level == "" {
		envConfig.Logging.Level = fileConfig.Logging.Level
	}
	if envConfig.Logging.Format == "" {
		envConfig.Logging.Format = fileConfig.Logging.Format
	}
	if envConfig.Logging.Output == "" {
		envConfig.Logging.Output = fileConfig.Logging.Output
	}
	if envConfig.Logging.FilePath == "" {
		envConfig.Logging.FilePath = fileConfig.Logging.FilePath
	}
	if envConfig.Paths.ExecutableDir == "" {
		envConfig.Paths.ExecutableDir = fileConfig.Paths.ExecutableDir
	}
	if envConfig.Paths.DataDir == "" {
		envConfig.Paths.DataDir = fileConfig.Paths.DataDir
	}
	if envConfig.Paths.LogsDir == "" {
		envConfig.Paths.LogsDir = fileConfig.Paths.LogsDir
	}

	return envConfig
}

// resolvePaths sets up the executable directory and validates paths
func (c *Config) resolvePaths() error {
	// Use centralized paths system to get all paths
	paths, err := GetPaths()
	if err != nil {
		return fmt.Errorf("failed to get paths: %w", err)
	}

	// Update config with resolved paths from centralized system
	c.Paths.ExecutableDir = paths.ExecutableDir

	if c.Input.Dir == "" {
		c.Input.Dir = paths.InputDir
	}

	return nil
}

// ValidatePaths validates that critical paths exist or can be created
func (c *Config) ValidatePaths() error {
	paths, err := GetPaths()
	if err != nil {
		return fmt.Errorf("failed to get paths: %w", err)
	}

	// Ensure all required directories exist
	if err := paths.EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to ensure directories: %w", err)
	}

	// Log path resolution for debugging
	paths.LogPathResolution()

	return nil
}

// GetInputDir returns the resolved input directory path
func (c *Config) GetInputDir() string {
	if c.Input.Dir != "" {
		if filepath.IsAbs(c.Input.Dir) {
			return c.Input.Dir
		}
		return filepath.Join(c.Paths.ExecutableDir, c.Input.Dir)
	}
	paths, err := GetPaths()
	if err != nil {
		return filepath.Join(c.Paths.ExecutableDir, c.Paths.DataDir, "input")
	}
	return paths.InputDir
}

// GetReportsDir returns the resolved reports directory path
func (c *Config) GetReportsDir() string {
	paths, err := GetPaths()
	if err != nil {
		return filepath.Join(c.Paths.ExecutableDir, c.Paths.DataDir, "reports")
	}
	return paths.ReportsDir
}

// GetChartsDir returns the resolved charts directory path
func (c *Config) GetChartsDir() string {
	paths, err := GetPaths()
	if err != nil {
		return filepath.Join(c.Paths.ExecutableDir, c.Paths.DataDir, "charts")
	}
	return paths.ChartsDir
}

// GetLogsDir returns the resolved logs directory path
func (c *Config) GetLogsDir() string {
	paths, err := GetPaths()
	if err != nil {
		if filepath.IsAbs(c.Paths.LogsDir) {
			return c.Paths.LogsDir
		}
		return filepath.Join(c.Paths.ExecutableDir, c.Paths.LogsDir)
	}
	return paths.LogsDir
}

// validateConfig validates the configuration
func (c *Config) validateConfig() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Chart.FromYear > 0 && c.Chart.ToYear > 0 && c.Chart.ToYear < c.Chart.FromYear {
		return fmt.Errorf("chart year range inverted: from %d to %d", c.Chart.FromYear, c.Chart.ToYear)
	}

	// Unknown logging selectors fall back to the production defaults
	// rather than failing the run over a cosmetic setting.
	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
		c.Logging.Format = strings.ToLower(c.Logging.Format)
	default:
		c.Logging.Format = "json"
	}

	switch strings.ToLower(c.Logging.Output) {
	case "stdout", "file", "both":
		c.Logging.Output = strings.ToLower(c.Logging.Output)
	default:
		c.Logging.Output = "both"
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	// An explicitly named file always wins
	if path := os.Getenv("FLYERSTATS_CONFIG"); path != "" {
		return path
	}

	// Check for config file in common locations
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Input: InputConfig{
			DateFormats: []string{"2006-01-02", "2006/01/02", "02/01/2006", "2-Jan-06", "01-02-06"},
		},
		Columns: ColumnsConfig{
			Date:     []string{"date", "flight date", "report date", "day"},
			Total:    []string{"total", "total passengers", "passengers total", "all passengers"},
			Domestic: []string{"domestic", "domestic passengers", "citizens", "returning residents"},
			Foreign:  []string{"foreign", "foreign passengers", "foreigners", "foreign nationals"},
		},
		Output: OutputConfig{
			ReportCSV:   "monthly_passengers_yoy.csv",
			SummaryJSON: "traffic_summary.json",
			ChartHTML:   "yoy_comparison.html",
		},
		Chart: ChartConfig{
			Title:  "Year-over-year passenger traffic",
			Width:  "1100px",
			Height: "550px",
		},
		Logging: LoggingConfig{
			Level:       DefaultLogLevel,
			Format:      DefaultLogFormat,
			Output:      "both",
			FilePath:    "logs/flyerstats.log",
			Development: false,
		},
		Paths: PathsConfig{
			DataDir: DefaultDataDir,
			LogsDir: DefaultLogsDir,
		},
	}
}
