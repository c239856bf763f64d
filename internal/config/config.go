// Package config provides configuration management for the export pipeline.
package config

import (
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"moviefetch/internal/encoder"
)

// Configuration validation errors.
var (
	ErrInvalidDefaultFormat = errors.New("export.default_format must be one of: json, csv, sql, txt, xml")
	ErrInvalidMaxCast       = errors.New("export.max_cast must be non-negative")
	ErrInvalidDelimiter     = errors.New("csv.delimiter must be a single character other than quote or newline")
	ErrInvalidDialect       = errors.New("sql.dialect must be 'ansi' or 'mysql'")
	ErrInvalidTable         = errors.New("sql.table must be a plain identifier")
	ErrInvalidWrapWidth     = errors.New("txt.wrap_width must be non-negative")
	ErrInvalidMaxOverview   = errors.New("txt.max_overview must be non-negative")
	ErrInvalidWorkers       = errors.New("normalizer.workers must be at least 1")
	ErrInvalidLogLevel      = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrSourceMissingFile    = errors.New("file is required")
	ErrMissingOutputDir     = errors.New("output.dir is required")
)

// Config represents the complete pipeline configuration.
type Config struct {
	Sources    []SourceConfig   `yaml:"sources"`
	Output     OutputConfig     `yaml:"output"`
	Export     ExportConfig     `yaml:"export"`
	CSV        CSVConfig        `yaml:"csv"`
	SQL        SQLConfig        `yaml:"sql"`
	TXT        TXTConfig        `yaml:"txt"`
	XML        XMLConfig        `yaml:"xml"`
	Normalizer NormalizerConfig `yaml:"normalizer"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// SourceConfig names a batch file of raw records.
type SourceConfig struct {
	Name    string `yaml:"name"`
	File    string `yaml:"file"`
	Enabled bool   `yaml:"enabled"`
}

// OutputConfig defines where exported documents are written.
type OutputConfig struct {
	Dir      string `yaml:"dir"`
	Checksum bool   `yaml:"checksum"`
}

// ExportConfig contains format-independent export settings.
// IncludeEpisodes expands episodes nested in series records into their own
// entities.
type ExportConfig struct {
	DefaultFormat   string `yaml:"default_format"`
	MaxCast         int    `yaml:"max_cast"`
	VerifyOutput    bool   `yaml:"verify_output"`
	IncludeCast     bool   `yaml:"include_cast"`
	IncludeImages   bool   `yaml:"include_images"`
	IncludeEpisodes bool   `yaml:"include_episodes"`
}

// CSVConfig defines CSV output.
type CSVConfig struct {
	Delimiter string `yaml:"delimiter"`
}

// SQLConfig defines SQL output.
type SQLConfig struct {
	Table         string `yaml:"table"`
	Dialect       string `yaml:"dialect"`
	IncludeSchema bool   `yaml:"include_schema"`
}

// TXTConfig defines plain text output. Widths are display cells; zero
// disables the feature.
type TXTConfig struct {
	WrapWidth   int `yaml:"wrap_width"`
	MaxOverview int `yaml:"max_overview"`
}

// XMLConfig defines XML output.
type XMLConfig struct {
	Indent string `yaml:"indent"`
}

// NormalizerConfig defines batch normalization.
type NormalizerConfig struct {
	Workers int `yaml:"workers"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	opts := encoder.DefaultOptions()

	return &Config{
		Output: OutputConfig{Dir: "."},
		Export: ExportConfig{
			DefaultFormat:   string(encoder.JSON),
			IncludeCast:     opts.IncludeCast,
			IncludeImages:   opts.IncludeImages,
			IncludeEpisodes: true,
		},
		CSV:        CSVConfig{Delimiter: string(opts.CSVDelimiter)},
		SQL:        SQLConfig{Table: opts.SQLTable, Dialect: string(opts.SQLDialect)},
		XML:        XMLConfig{Indent: opts.XMLIndent},
		Normalizer: NormalizerConfig{Workers: 4},
		Logging:    LoggingConfig{Level: "info"},
	}
}

// LoadConfig loads configuration from YAML file. Keys missing from the file
// keep their Default values.
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to YAML file.
func (c *Config) SaveConfig(filepath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	for i, src := range c.Sources {
		if src.File == "" {
			return fmt.Errorf("%w: sources[%d]", ErrSourceMissingFile, i)
		}
	}

	if c.Output.Dir == "" {
		return ErrMissingOutputDir
	}

	if _, ok := encoder.ParseFormat(c.Export.DefaultFormat); !ok {
		return ErrInvalidDefaultFormat
	}

	if c.Export.MaxCast < 0 {
		return ErrInvalidMaxCast
	}

	if _, err := c.delimiter(); err != nil {
		return err
	}

	if c.SQL.Dialect != string(encoder.DialectANSI) && c.SQL.Dialect != string(encoder.DialectMySQL) {
		return ErrInvalidDialect
	}

	if c.TXT.WrapWidth < 0 {
		return ErrInvalidWrapWidth
	}

	if c.TXT.MaxOverview < 0 {
		return ErrInvalidMaxOverview
	}

	if c.Normalizer.Workers < 1 {
		return ErrInvalidWorkers
	}

	// Validate logging config
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	if err := c.EncoderOptions().Validate(); err != nil {
		if errors.Is(err, encoder.ErrInvalidTable) {
			return fmt.Errorf("%w: %q", ErrInvalidTable, c.SQL.Table)
		}

		return err
	}

	return nil
}

func (c *Config) delimiter() (rune, error) {
	if utf8.RuneCountInString(c.CSV.Delimiter) != 1 {
		return 0, ErrInvalidDelimiter
	}

	r, _ := utf8.DecodeRuneInString(c.CSV.Delimiter)

	switch r {
	case '"', '\r', '\n', utf8.RuneError:
		return 0, ErrInvalidDelimiter
	}

	return r, nil
}

// EncoderOptions converts the format sections into encoder options.
func (c *Config) EncoderOptions() encoder.Options {
	opts := encoder.DefaultOptions()

	if r, err := c.delimiter(); err == nil {
		opts.CSVDelimiter = r
	}

	opts.SQLTable = c.SQL.Table
	opts.SQLDialect = encoder.Dialect(c.SQL.Dialect)
	opts.SQLIncludeSchema = c.SQL.IncludeSchema
	opts.TXTWrapWidth = c.TXT.WrapWidth
	opts.TXTMaxOverview = c.TXT.MaxOverview
	opts.XMLIndent = c.XML.Indent
	opts.IncludeCast = c.Export.IncludeCast
	opts.MaxCast = c.Export.MaxCast
	opts.IncludeImages = c.Export.IncludeImages

	return opts
}

// GetEnabledSources returns only enabled sources.
func (c *Config) GetEnabledSources() []SourceConfig {
	var enabled []SourceConfig

	for _, src := range c.Sources {
		if src.Enabled {
			enabled = append(enabled, src)
		}
	}

	return enabled
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Sources: %d, Format: %s, Workers: %d, Output: %s}",
		len(c.Sources),
		c.Export.DefaultFormat,
		c.Normalizer.Workers,
		c.Output.Dir,
	)
}
