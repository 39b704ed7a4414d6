package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
output_dir: ./out
output_name: "Sales_{original}.xml"
company_name: "Acme Traders Pvt Ltd"
xml_indent: ""
xml_declaration: false
strict: true
max_concurrency: 2
transformation_rules:
  - field: "Party A/C Name"
    actions:
      - type: trim
      - type: uppercase
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "./out", cfg.OutputDir)
	assert.Equal(t, "./input", cfg.InputDir, "unset keys keep their defaults")
	assert.Equal(t, "Sales_{original}.xml", cfg.OutputName)
	assert.Equal(t, "Acme Traders Pvt Ltd", cfg.CompanyName)
	assert.Equal(t, "", cfg.XMLIndent)
	assert.False(t, cfg.XMLDeclaration)
	assert.True(t, cfg.Strict)
	assert.Equal(t, 2, cfg.MaxConcurrency)
	require.Len(t, cfg.TransformationRules, 1)
	assert.Equal(t, "uppercase", cfg.TransformationRules[0].Actions[1].Type)
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, "SalesData.xml", cfg.OutputName)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, err := Load(writeConfig(t, "outptu_dir: ./typo\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outptu_dir")
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, "company_name: From File\n")
	t.Setenv("TALLYXML_COMPANY_NAME", "From Env")
	t.Setenv("TALLYXML_STRICT", "true")
	t.Setenv("TALLYXML_MAX_CONCURRENCY", "8")
	t.Setenv("TALLYXML_XML_INDENT", "")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "From Env", cfg.CompanyName)
	assert.True(t, cfg.Strict)
	assert.Equal(t, 8, cfg.MaxConcurrency)
	assert.Equal(t, "", cfg.XMLIndent)
}

func TestEnvOverrideParseErrors(t *testing.T) {
	t.Setenv("TALLYXML_STRICT", "perhaps")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TALLYXML_STRICT")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.MaxConcurrency = 0
	cfg.LogFormat = "xml"
	cfg.CompanyName = ""
	cfg.TransformationRules = []TransformationRule{
		{Field: "ITEM", Actions: []TransformationAction{{Type: "shout"}}},
		{Field: "", Actions: nil},
	}

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "max_concurrency: must be at least 1")
	assert.Contains(t, msg, "log_format: must be one of: console json")
	assert.Contains(t, msg, "company_name: is required")
	assert.Contains(t, msg, "transformation_rules[0].actions[0].type: must be one of")
	assert.Contains(t, msg, "transformation_rules[1].field: is required")
	assert.Contains(t, msg, "transformation_rules[1].actions: needs at least 1 entry")
}

func TestArchiveDirRequiredWhenArchiving(t *testing.T) {
	cfg := Default()
	cfg.ArchiveOnSuccess = true
	cfg.InputArchiveDir = ""
	assert.Error(t, cfg.Validate())

	cfg.ArchiveOnSuccess = false
	assert.NoError(t, cfg.Validate())
}

func TestLoggerConfig(t *testing.T) {
	cfg := Default()
	cfg.LogFormat = "json"
	lc := cfg.LoggerConfig()
	assert.Equal(t, "json", lc.Format)
	assert.Equal(t, "info", lc.Level)
	assert.Equal(t, "stderr", lc.Output)
}
