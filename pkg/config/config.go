// Package config loads tmls settings from defaults, an optional .tmls.yaml,
// TMLS_* environment variables and command line flags, in increasing order of
// precedence.
package config

import (
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/tmls/pkg/registry"
	"github.com/walteh/tmls/pkg/registry/remote"
)

const (
	FileName  = ".tmls"
	EnvPrefix = "TMLS"
)

const (
	KeyDebug       = "debug"
	KeyLogLevel    = "log_level"
	KeyRegistry    = "registry"
	KeyDocsBaseURL = "docs.base_url"
	KeyDocsMirrors = "docs.mirrors"
	KeyDocsRemote  = "docs.remote"
	KeyDocsTimeout = "docs.timeout"
	KeyExcludeUsed = "completion.exclude_used"
)

// flagNames maps config keys onto the command line flags that override them.
var flagNames = map[string]string{
	KeyDebug:       "debug",
	KeyLogLevel:    "log-level",
	KeyRegistry:    "registry",
	KeyDocsBaseURL: "docs-base-url",
	KeyDocsMirrors: "docs-mirror",
	KeyDocsRemote:  "remote",
	KeyDocsTimeout: "docs-timeout",
	KeyExcludeUsed: "exclude-used",
}

type Config struct {
	Debug      bool       `mapstructure:"debug"`
	LogLevel   string     `mapstructure:"log_level"`
	Registry   string     `mapstructure:"registry"`
	Docs       Docs       `mapstructure:"docs"`
	Completion Completion `mapstructure:"completion"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-"`
}

type Docs struct {
	BaseURL string        `mapstructure:"base_url"`
	Mirrors []string      `mapstructure:"mirrors"`
	Remote  bool          `mapstructure:"remote"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type Completion struct {
	ExcludeUsed bool `mapstructure:"exclude_used"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyRegistry, "")
	v.SetDefault(KeyDocsBaseURL, registry.DefaultDocsBaseURL)
	v.SetDefault(KeyDocsMirrors, []string{})
	v.SetDefault(KeyDocsRemote, false)
	v.SetDefault(KeyDocsTimeout, remote.DefaultTimeout)
	v.SetDefault(KeyExcludeUsed, false)
}

// AddFlags registers the flags Load knows how to bind.
func AddFlags(flags *pflag.FlagSet) {
	flags.Bool(flagNames[KeyDebug], false, "enable debug logging")
	flags.String(flagNames[KeyLogLevel], "", "log level (trace, debug, info, warn, error)")
	flags.String(flagNames[KeyRegistry], "", "path to a components YAML file overlaid on the built-in table")
	flags.String(flagNames[KeyDocsBaseURL], "", "base URL of the component documentation site")
	flags.StringSlice(flagNames[KeyDocsMirrors], nil, "extra documentation mirrors tried in order")
	flags.Bool(flagNames[KeyDocsRemote], false, "fetch components missing from the table from the documentation site")
	flags.Duration(flagNames[KeyDocsTimeout], 0, "timeout for documentation requests")
	flags.Bool(flagNames[KeyExcludeUsed], false, "hide props already set on the current line")
}

// Load reads configuration. dir is searched for .tmls.yaml; a missing file is
// not an error. Only flags that were explicitly set override other sources.
func Load(fs afero.Fs, dir string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetFs(fs)
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range flagNames {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, errors.Errorf("binding flag %q: %w", name, err)
			}
		}
	}

	if dir != "" {
		v.AddConfigPath(dir)
		v.SetConfigName(FileName)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.Errorf("reading config in %q: %w", dir, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Errorf("decoding config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if cfg.Debug && cfg.LogLevel == "info" {
		cfg.LogLevel = "debug"
	}

	return cfg, nil
}

// MirrorURLs returns the base URL followed by the extra mirrors.
func (c *Config) MirrorURLs() []string {
	out := make([]string, 0, len(c.Docs.Mirrors)+1)
	if c.Docs.BaseURL != "" {
		out = append(out, c.Docs.BaseURL)
	}
	for _, m := range c.Docs.Mirrors {
		if m != "" && m != c.Docs.BaseURL {
			out = append(out, m)
		}
	}
	return out
}
