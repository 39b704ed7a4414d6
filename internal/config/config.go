// =============================================================================
// Tally Sales XML - Configuration Module
// =============================================================================
//
// This module loads the application configuration. Settings are resolved in
// this order, later sources winning:
//
//   1. Built-in defaults (Default)
//   2. The YAML config file (config.yaml), if it exists
//   3. Environment variables prefixed TALLYXML_ (a .env file is loaded first)
//   4. Command-line flags (applied by the cmd package)
//
// EXAMPLE config.yaml:
//
//   input_dir: ./input
//   output_dir: ./output
//   output_name: "Sales_{original}_{date}.xml"
//   company_name: "Acme Traders Pvt Ltd"
//   strict: true
//   transformation_rules:
//     - field: "Party A/C Name"
//       actions:
//         - type: trim
//         - type: uppercase
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/tally-sales-xml/internal/logger"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TALLYXML_"

// DefaultConfigFile is read when no --config flag is given.
const DefaultConfigFile = "config.yaml"

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the application configuration.
type Config struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned by "generate" when no file is named.
	// Default: "./input"
	InputDir string `yaml:"input_dir" validate:"required"`

	// OutputDir receives the generated XML files.
	// Default: "./output"
	OutputDir string `yaml:"output_dir" validate:"required"`

	// InputArchiveDir receives input sheets after a successful conversion
	// when ArchiveOnSuccess is set.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir" validate:"required_if=ArchiveOnSuccess true"`

	// ArchiveByDate files archived sheets under YYYY/MM/DD subdirectories.
	// Default: false
	ArchiveByDate bool `yaml:"archive_by_date"`

	// ArchiveOnSuccess moves each converted sheet to InputArchiveDir.
	// Default: false
	ArchiveOnSuccess bool `yaml:"archive_on_success"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputName is the output file name template.
	// Placeholders:
	//   {uuid}      - A random UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {date}      - Current date (YYYYMMDD)
	//   {time}      - Current time (HHMMSS)
	//   {original}  - Input file name without extension
	// Default: "SalesData.xml"
	OutputName string `yaml:"output_name" validate:"required"`

	// XMLIndent is the per-level indent. An empty string writes compact XML.
	// Default: two spaces
	XMLIndent string `yaml:"xml_indent"`

	// XMLDeclaration writes the <?xml ...?> header line.
	// Default: true
	XMLDeclaration bool `yaml:"xml_declaration"`

	// =========================================================================
	// VOUCHER SETTINGS
	// =========================================================================

	// CompanyName is written to SVCURRENTCOMPANY.
	// Default: "Your Company Name"
	CompanyName string `yaml:"company_name" validate:"required"`

	// Country is written to COUNTRYOFRESIDENCE on every voucher.
	// Default: "India"
	Country string `yaml:"country" validate:"required"`

	// =========================================================================
	// INPUT SETTINGS
	// =========================================================================

	// Sheet is the worksheet to read; empty means the first sheet.
	Sheet string `yaml:"sheet"`

	// CSVDelimiter separates fields in CSV input.
	// Default: ","
	CSVDelimiter string `yaml:"csv_delimiter" validate:"required"`

	// TransformationRules clean up text columns before grouping.
	TransformationRules []TransformationRule `yaml:"transformation_rules" validate:"dive"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// Strict rejects sheets with missing or non-numeric columns instead of
	// writing NaN into the XML.
	// Default: false
	Strict bool `yaml:"strict"`

	// MaxConcurrency is the maximum number of files converted at once.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency" validate:"min=1,max=64"`

	// =========================================================================
	// LOGGING AND SERVER SETTINGS
	// =========================================================================

	LogLevel  string `yaml:"log_level" validate:"oneof=trace debug info warn error"`
	LogFormat string `yaml:"log_format" validate:"oneof=console json"`
	LogOutput string `yaml:"log_output" validate:"required"`

	// ServerAddr is the listen address for "serve".
	// Default: ":8080"
	ServerAddr string `yaml:"server_addr" validate:"required"`
}

// =============================================================================
// TRANSFORMATION RULE STRUCTURE
// =============================================================================

// TransformationRule lists the actions applied to one column.
type TransformationRule struct {
	// Field is the exact column header, e.g. "Party A/C Name".
	Field string `yaml:"field" validate:"required"`

	// Actions are applied in order.
	Actions []TransformationAction `yaml:"actions" validate:"min=1,dive"`
}

// TransformationAction defines a single transformation action.
type TransformationAction struct {
	// Type is one of:
	//   - "trim"                : Remove leading and trailing whitespace
	//   - "uppercase"           : Convert to uppercase
	//   - "lowercase"           : Convert to lowercase
	//   - "prepend_string"      : Add Value to the beginning
	//   - "append_string"       : Add Value to the end
	//   - "replace"             : Replace Find with Value
	//   - "regex_replace"       : Replace matches of the pattern Find with Value
	//   - "pad_zeros_to_length" : Pad with leading zeros to length Value
	//   - "lookup"              : Replace using LookupTable
	Type string `yaml:"type" validate:"required,oneof=trim uppercase lowercase prepend_string append_string replace regex_replace pad_zeros_to_length lookup"`

	Value       string            `yaml:"value,omitempty"`
	Find        string            `yaml:"find,omitempty"`
	LookupTable map[string]string `yaml:"lookup_table,omitempty"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		InputDir:        "./input",
		OutputDir:       "./output",
		InputArchiveDir: "./input_archive",
		OutputName:      "SalesData.xml",
		XMLIndent:       "  ",
		XMLDeclaration:  true,
		CompanyName:     "Your Company Name",
		Country:         "India",
		CSVDelimiter:    ",",
		MaxConcurrency:  4,
		LogLevel:        "info",
		LogFormat:       "console",
		LogOutput:       "stderr",
		ServerAddr:      ":8080",
	}
}

// Load resolves the configuration from defaults, the YAML file at path, a
// .env file in the working directory and TALLYXML_ environment variables.
//
// PARAMETERS:
//   - path: The config file. A missing file is not an error.
//
// RETURNS:
//   - The validated configuration.
//   - An error if the file is malformed, an override does not parse, or a
//     setting fails validation.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	config := Default()

	if path != "" {
		if err := loadFile(path, config); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// loadFile decodes the YAML file at path over config.
func loadFile(path string, config *Config) error {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// applyEnv overlays TALLYXML_* variables onto config.
func applyEnv(config *Config) error {
	texts := map[string]*string{
		"INPUT_DIR":         &config.InputDir,
		"OUTPUT_DIR":        &config.OutputDir,
		"INPUT_ARCHIVE_DIR": &config.InputArchiveDir,
		"OUTPUT_NAME":       &config.OutputName,
		"COMPANY_NAME":      &config.CompanyName,
		"COUNTRY":           &config.Country,
		"SHEET":             &config.Sheet,
		"CSV_DELIMITER":     &config.CSVDelimiter,
		"LOG_LEVEL":         &config.LogLevel,
		"LOG_FORMAT":        &config.LogFormat,
		"LOG_OUTPUT":        &config.LogOutput,
		"SERVER_ADDR":       &config.ServerAddr,
	}
	for key, target := range texts {
		if value, ok := os.LookupEnv(EnvPrefix + key); ok && value != "" {
			*target = value
		}
	}

	// XML_INDENT may be set to an empty string for compact output.
	if value, ok := os.LookupEnv(EnvPrefix + "XML_INDENT"); ok {
		config.XMLIndent = value
	}

	bools := map[string]*bool{
		"ARCHIVE_ON_SUCCESS": &config.ArchiveOnSuccess,
		"ARCHIVE_BY_DATE":    &config.ArchiveByDate,
		"XML_DECLARATION":    &config.XMLDeclaration,
		"STRICT":             &config.Strict,
	}
	for key, target := range bools {
		value, ok := os.LookupEnv(EnvPrefix + key)
		if !ok || value == "" {
			continue
		}
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid %s%s: %w", EnvPrefix, key, err)
		}
		*target = parsed
	}

	if value, ok := os.LookupEnv(EnvPrefix + "MAX_CONCURRENCY"); ok && value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid %sMAX_CONCURRENCY: %w", EnvPrefix, err)
		}
		config.MaxConcurrency = parsed
	}

	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

var validate = newValidator()

// newValidator reports fields by their YAML key.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks every setting and reports all failures at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, fmt.Sprintf("%s: %s", fieldPath(fe), describe(fe)))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(messages, "; "))
}

// fieldPath drops the struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		if fe.Kind() == reflect.Slice {
			return "needs at least " + fe.Param() + " entry"
		}
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	default:
		return "failed " + fe.Tag() + " check"
	}
}

// LoggerConfig returns the logger settings.
func (c *Config) LoggerConfig() logger.LogConfig {
	lc := logger.DefaultConfig()
	lc.Level = c.LogLevel
	lc.Format = c.LogFormat
	lc.Output = c.LogOutput
	return lc
}
