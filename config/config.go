package config

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	KeyEventHubURL           = "eventhub.url"
	KeyEventHubAPIToken      = "eventhub.api_token"
	KeyDefaultSessionMinutes = "import.default_session_minutes"
	KeyCompanyMarker         = "import.company_marker"
	KeyAutoExportAfterImport = "import.auto_export_after_import"

	defaultEventHubURL    = "https://eventhub.example.com"
	defaultSessionMinutes = 30
	defaultCompanyMarker  = "►"
)

type Config struct {
	EventHub EventHubConfig `mapstructure:"eventhub" validate:"required"`
	Import   ImportConfig   `mapstructure:"import"`
}

type EventHubConfig struct {
	URL      string `mapstructure:"url" validate:"required,url"`
	APIToken string `mapstructure:"api_token"`
}

type ImportConfig struct {
	DefaultSessionMinutes int    `mapstructure:"default_session_minutes" validate:"gte=1,lte=720"`
	CompanyMarker         string `mapstructure:"company_marker"`
	AutoExportAfterImport bool   `mapstructure:"auto_export_after_import"`
}

// SetDefaults sets default values if not provided
func SetDefaults() {
	setDefaults(viper.GetViper())
}

// LoadAndValidate loads config from Viper and validates it
func LoadAndValidate() (*Config, error) {
	return loadAndValidateFromViper(viper.GetViper())
}

// ValidateYAMLContent validates configuration from raw YAML content.
func ValidateYAMLContent(content []byte) (*Config, error) {
	local := viper.New()
	setDefaults(local)
	local.SetConfigType("yaml")
	if err := local.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("read config content: %w", err)
	}
	return loadAndValidateFromViper(local)
}

// ExampleYAML returns the default configuration template.
func ExampleYAML() string {
	return `# expoplan configuration
eventhub:
  url: "https://eventhub.example.com"
  api_token: ""

import:
  default_session_minutes: 30
  company_marker: "►"
  auto_export_after_import: false
`
}

func loadAndValidateFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := validateMarker(cfg.Import.CompanyMarker); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyEventHubURL, defaultEventHubURL)
	v.SetDefault(KeyEventHubAPIToken, "")
	v.SetDefault(KeyDefaultSessionMinutes, defaultSessionMinutes)
	v.SetDefault(KeyCompanyMarker, defaultCompanyMarker)
	v.SetDefault(KeyAutoExportAfterImport, false)
}

func validateMarker(marker string) error {
	trimmed := strings.TrimSpace(marker)
	if trimmed == "" {
		return fmt.Errorf("validation failed: import.company_marker must not be blank")
	}
	// An alphanumeric marker would swallow person rows that start with it.
	for _, r := range trimmed {
		if r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
			return fmt.Errorf("validation failed: import.company_marker %q must not be alphanumeric", marker)
		}
	}
	return nil
}
