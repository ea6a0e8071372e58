// Package config loads codecritic settings from .codecritic.yaml, the
// environment and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/dshills/codecritic/internal/score"
)

// FileName is the configuration file looked up in the working directory.
const FileName = ".codecritic.yaml"

// EnvPrefix prefixes every environment override, for example
// CODECRITIC_THRESHOLDS_MAX_LINE_LENGTH.
const EnvPrefix = "CODECRITIC"

// Config is the effective configuration of one run.
type Config struct {
	Format     string           `mapstructure:"format" yaml:"format"`
	FailUnder  int              `mapstructure:"fail_under" yaml:"fail_under"`
	Redact     bool             `mapstructure:"redact" yaml:"redact"`
	Thresholds score.Thresholds `mapstructure:"thresholds" yaml:"thresholds"`

	// File is the configuration file that was read, if any.
	File string `mapstructure:"-" yaml:"-"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Format:     "auto",
		Redact:     true,
		Thresholds: score.DefaultThresholds(),
	}
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"format":     "format",
	"fail-under": "fail_under",
	"redact":     "redact",
}

// Load reads the configuration. An explicit path must exist; otherwise
// FileName is optional. Flags that were set on the command line override
// both the file and the environment.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, ".yaml"))
		v.AddConfigPath(".")
	}
	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("config.Load: bind %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config.Load: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("format", d.Format)
	v.SetDefault("fail_under", d.FailUnder)
	v.SetDefault("redact", d.Redact)
	t := d.Thresholds
	v.SetDefault("thresholds.max_line_length", t.MaxLineLength)
	v.SetDefault("thresholds.max_function_lines", t.MaxFunctionLines)
	v.SetDefault("thresholds.max_nesting", t.MaxNesting)
	v.SetDefault("thresholds.duplicate_block_lines", t.DuplicateBlock)
	v.SetDefault("thresholds.literal_repeat", t.LiteralRepeat)
	v.SetDefault("thresholds.comment_ratio", t.CommentRatio)
	v.SetDefault("thresholds.tab_width", t.TabWidth)
}

// Formats lists the accepted values of Config.Format.
var Formats = []string{"auto", "json", "md", "text"}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	valid := false
	for _, f := range Formats {
		if c.Format == f {
			valid = true
		}
	}
	if !valid {
		errs = append(errs, fmt.Errorf("format must be one of %s, got %q", strings.Join(Formats, ", "), c.Format))
	}
	if c.FailUnder < 0 || c.FailUnder > score.MaxTotal {
		errs = append(errs, fmt.Errorf("fail_under must be between 0 and %d, got %d", score.MaxTotal, c.FailUnder))
	}
	if err := c.Thresholds.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// YAML renders the configuration in the file format Load reads.
func (c *Config) YAML() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("config.YAML: %w", err)
	}
	return out, nil
}
