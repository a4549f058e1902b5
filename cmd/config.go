package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/ats-scorer/internal/ai"
	"github.com/spigell/ats-scorer/internal/ai/claude"
	"github.com/spigell/ats-scorer/internal/ai/gemini"
	"github.com/spigell/ats-scorer/internal/ats"
	"github.com/spigell/ats-scorer/internal/logger"
	"github.com/spigell/ats-scorer/internal/ranking"
	"github.com/spigell/ats-scorer/internal/secrets"
	"github.com/spigell/ats-scorer/internal/textproc"
)

func getConfig() (*Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*Config, error) {
	var config *Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if config == nil {
		config = &Config{}
	}

	config.fillEmpty()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) fillEmpty() {
	if c.AI == nil {
		c.AI = &AIConfig{}
	}
	if c.AI.Gemini == nil {
		c.AI.Gemini = &ProviderConfig{}
	}
	if c.AI.Anthropic == nil {
		c.AI.Anthropic = &ProviderConfig{}
	}
	c.AI.Provider = strings.ToLower(strings.TrimSpace(c.AI.Provider))
	if c.AI.Provider == "" {
		c.AI.Provider = gemini.ProviderName
	}
	if c.AI.Timeout == 0 {
		c.AI.Timeout = ats.DefaultTimeout
	}

	if c.Weights == nil {
		w := ats.DefaultWeights()
		c.Weights = &w
	}
	if c.Ranking == nil {
		c.Ranking = &ranking.Config{}
	}
	if c.Server == nil {
		c.Server = &ServerConfig{}
	}
}

// Validate checks field bounds and the scoring weights.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return &ats.ConfigurationError{Message: "invalid config", Err: err}
	}
	if err := c.Weights.Validate(); err != nil {
		return &ats.ConfigurationError{Message: "invalid weights", Err: err}
	}
	return nil
}

// provider returns the settings of the selected AI provider.
func (c *AIConfig) provider() *ProviderConfig {
	if c.Provider == claude.ProviderName {
		return c.Anthropic
	}
	return c.Gemini
}

// newService builds the scoring service. AI scoring is wired only when it is
// enabled and the provider can be constructed; otherwise every call goes to
// the rule-based scorer.
func newService(ctx context.Context, config *Config, log *zap.Logger, ruleBasedOnly bool) (*ats.Service, error) {
	ruleBased, err := ats.NewRuleBased(textproc.DefaultVocabulary(), *config.Weights)
	if err != nil {
		return nil, err
	}

	if ruleBasedOnly || !config.AI.Enabled {
		log.Debug("ai scoring disabled", zap.Bool("rule_based_flag", ruleBasedOnly))
		return ats.NewService(log, nil, ruleBased, config.AI.Timeout), nil
	}

	completer, err := newCompleter(ctx, config.AI, log)
	if err != nil {
		log.Warn("skipping ai scoring", zap.String(logger.FieldErrorClass, ats.Classify(err)), zap.Error(err))
		return ats.NewService(log, nil, ruleBased, config.AI.Timeout), nil
	}

	scorer := ai.NewScorer(completer, log, config.AI.MaxLogLength)

	return ats.NewService(log, scorer, ruleBased, config.AI.Timeout), nil
}

func newCompleter(ctx context.Context, cfg *AIConfig, log *zap.Logger) (ai.Completer, error) {
	p := cfg.provider()

	switch cfg.Provider {
	case gemini.ProviderName:
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			Value: p.APIKey,
			File:  p.APIKeyFile,
			Env:   []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"},
		})
		if err != nil {
			return nil, &ats.ConfigurationError{Provider: gemini.ProviderName, Message: "loading api key", Err: err}
		}

		var temperature *float32
		if p.Temperature != nil {
			t := float32(*p.Temperature)
			temperature = &t
		}

		return gemini.NewGenerator(ctx, gemini.Config{
			APIKey:            apiKey,
			Model:             p.Model,
			MaxRetries:        p.MaxRetries,
			RequestsPerMinute: p.RequestsPerMinute,
			Temperature:       temperature,
		}, log)
	case claude.ProviderName:
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "anthropic api key",
			Value: p.APIKey,
			File:  p.APIKeyFile,
			Env:   []string{"ANTHROPIC_API_KEY"},
		})
		if err != nil {
			return nil, &ats.ConfigurationError{Provider: claude.ProviderName, Message: "loading api key", Err: err}
		}

		return claude.NewClient(claude.Config{
			APIKey:            apiKey,
			Model:             p.Model,
			MaxRetries:        p.MaxRetries,
			RequestsPerMinute: p.RequestsPerMinute,
			Temperature:       p.Temperature,
		}, log)
	default:
		return nil, &ats.ConfigurationError{Message: fmt.Sprintf("unsupported ai provider: %s", cfg.Provider)}
	}
}
