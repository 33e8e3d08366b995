package model

import "runtime"

// Config holds run settings. Loaded from defaults, config file, env and flags.
type Config struct {
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Logging     LoggingConfig     `yaml:"logging" mapstructure:"logging"`
}

// OutputConfig controls where artifacts are written.
// Relative paths resolve against the validated directory.
type OutputConfig struct {
	Dir          string `yaml:"dir" mapstructure:"dir"`                     // cleaned CSVs
	ReportFile   string `yaml:"report_file" mapstructure:"report_file"`     // validation_report.json
	RemovedFile  string `yaml:"removed_file" mapstructure:"removed_file"`   // removed_records.json
	MarkdownFile string `yaml:"markdown_file" mapstructure:"markdown_file"` // optional human summary

	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
}

// ConcurrencyConfig sizes the per-file worker pool
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// LoggingConfig selects the structured log level and encoding
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // console, json
}

// Default artifact names
const (
	DefaultOutputDir   = "validated_output"
	DefaultReportFile  = "validation_report.json"
	DefaultRemovedFile = "removed_records.json"
)

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Dir:           DefaultOutputDir,
			ReportFile:    DefaultReportFile,
			RemovedFile:   DefaultRemovedFile,
			IncludeFooter: true,
		},
		Concurrency: ConcurrencyConfig{
			Workers: runtime.NumCPU(),
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}
