package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	// ReaderConfig controls terminal geometry used by the pager.
	ReaderConfig struct {
		DefaultWidth  int  `yaml:"default_width" validate:"min=20"`
		DefaultHeight int  `yaml:"default_height" validate:"min=10"`
		MinWidth      int  `yaml:"min_width" validate:"min=1"`
		MinPageLines  int  `yaml:"min_page_lines" validate:"min=5"`
		ReservedLines int  `yaml:"reserved_lines" validate:"min=0"`
		ClearScreen   bool `yaml:"clear_screen"`
	}

	// AIConfig selects and configures question answering provider.
	AIConfig struct {
		Provider     string       `yaml:"provider" validate:"oneof=noop openai"`
		Model        string       `yaml:"model" validate:"required"`
		BaseURL      string       `yaml:"base_url" validate:"required,url"`
		ChatPath     string       `yaml:"chat_path"`
		APIKeyEnv    string       `yaml:"api_key_env"`
		APIKey       SecretString `yaml:"api_key,omitempty"`
		SystemPrompt string       `yaml:"system_prompt" validate:"required"`
		UserTemplate string       `yaml:"user_template" validate:"required"`
		Temperature  float64      `yaml:"temperature" validate:"gte=0,lte=2"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Reader    ReaderConfig   `yaml:"reader"`
		AI        AIConfig       `yaml:"ai"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

// NOTE: must match yaml field name above
const UserTemplateFieldName TemplateFieldName = "user_template"

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(UserTemplateFieldName)),
)

// ResolveAPIKey returns bearer token for AI requests. Environment variable
// named by APIKeyEnv takes precedence over key stored in configuration.
func (conf *AIConfig) ResolveAPIKey() string {
	if len(conf.APIKeyEnv) > 0 {
		if key := os.Getenv(conf.APIKeyEnv); len(key) > 0 {
			return key
		}
	}
	return string(conf.APIKey)
}

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Validate checks configuration after command line overrides were applied.
func (conf *Config) Validate() error {
	return gencfg.Validate(conf)
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
