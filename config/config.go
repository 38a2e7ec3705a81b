package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const envPrefix = "CALLSCOPE"

const (
	MatcherPattern = "pattern"
	MatcherLLM     = "llm"
)

type LLM struct {
	URL        string  `mapstructure:"url" validate:"omitempty,url"`
	Model      string  `mapstructure:"model"`
	APIKey     string  `mapstructure:"api_key"`
	Timeout    int     `mapstructure:"timeout" validate:"gte=0"` // seconds
	RateLimit  float64 `mapstructure:"rate_limit" validate:"gte=0"`
	Burst      int     `mapstructure:"burst" validate:"gte=0"`
	MaxRetries int     `mapstructure:"max_retries" validate:"gte=0"`
}
type Services struct {
	LLM LLM `mapstructure:"llm"`
}
type Analysis struct {
	Tolerance    float64 `mapstructure:"tolerance" validate:"gte=0"`
	Matcher      string  `mapstructure:"matcher" validate:"oneof=pattern llm"`
	PatternsFile string  `mapstructure:"patterns_file"`
	// Strict makes classifier failures abort the analysis instead of
	// counting as "no match".
	Strict bool `mapstructure:"strict"`
}
type Root struct {
	Pipeline struct {
		Name    string `mapstructure:"name"`
		Version string `mapstructure:"version"`
		LogLvl  string `mapstructure:"log_level" validate:"oneof=trace debug info warn warning error"`
	} `mapstructure:"pipeline"`
	Analysis Analysis `mapstructure:"analysis"`
	Services Services `mapstructure:"services"`
}

func defaults(v *viper.Viper) {
	v.SetDefault("pipeline.name", "callscope")
	v.SetDefault("pipeline.version", "dev")
	v.SetDefault("pipeline.log_level", "info")
	v.SetDefault("analysis.tolerance", 0.1)
	v.SetDefault("analysis.matcher", MatcherPattern)
	v.SetDefault("analysis.patterns_file", "")
	v.SetDefault("analysis.strict", false)
	v.SetDefault("services.llm.url", "")
	v.SetDefault("services.llm.model", "gpt-4o-mini")
	v.SetDefault("services.llm.api_key", "")
	v.SetDefault("services.llm.timeout", 60)
	v.SetDefault("services.llm.rate_limit", 5.0)
	v.SetDefault("services.llm.burst", 2)
	v.SetDefault("services.llm.max_retries", 2)
}

// Load builds the configuration from defaults, an optional YAML file and
// CALLSCOPE_* environment variables, in increasing priority. With an empty
// path the file is guessed from CONFIG_ENV; a missing guessed file is not an
// error, a missing explicit one is.
func Load(path string) (*Root, error) {
	v := viper.New()
	defaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = guess()
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config %s: %w", filepath.Base(path), err)
		}
	}

	var cfg Root
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func guess() string {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	for _, p := range []string{
		filepath.Join("config", env, "config.yaml"),
		"config.yaml",
	} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var validate = validator.New()

func (c *Root) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, e := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q", e.Namespace(), e.Tag()))
			}
			return fmt.Errorf("config invalid: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("config invalid: %w", err)
	}
	if c.Analysis.Matcher == MatcherLLM && c.Services.LLM.URL == "" {
		return errors.New("config invalid: services.llm.url is required when analysis.matcher is llm")
	}
	return nil
}

func (l LLM) TimeoutDuration() time.Duration { return time.Duration(l.Timeout) * time.Second }
