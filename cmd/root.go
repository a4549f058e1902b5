package cmd

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/ats-scorer/internal/ats"
	"github.com/spigell/ats-scorer/internal/logger"
	"github.com/spigell/ats-scorer/internal/ranking"
)

const (
	app       = "ats-scorer"
	envPrefix = "ATS"
)

type Config struct {
	AI      *AIConfig       `mapstructure:"ai"`
	Weights *ats.Weights    `mapstructure:"weights"`
	Ranking *ranking.Config `mapstructure:"ranking"`
	Server  *ServerConfig   `mapstructure:"server"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider" validate:"oneof=gemini anthropic"`
	Timeout  time.Duration `mapstructure:"timeout" validate:"min=1s,max=120s"`
	// MaxLogLength caps prompt and response previews in debug logs.
	MaxLogLength int             `mapstructure:"max-log-length" validate:"gte=0"`
	Gemini       *ProviderConfig `mapstructure:"gemini"`
	Anthropic    *ProviderConfig `mapstructure:"anthropic"`
}

type ProviderConfig struct {
	APIKey            string   `mapstructure:"api-key"`
	APIKeyFile        string   `mapstructure:"api-key-file"`
	Model             string   `mapstructure:"model"`
	MaxRetries        int      `mapstructure:"max-retries" validate:"gte=0,lte=10"`
	RequestsPerMinute int      `mapstructure:"requests-per-minute" validate:"gte=0"`
	Temperature       *float64 `mapstructure:"temperature" validate:"omitempty,gte=0,lte=2"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "ats-scorer scores resumes against job descriptions the way an applicant tracking system would",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envBindings := map[string]string{
		"ai.gemini.api-key-file":    "GEMINI_API_KEY_FILE",
		"ai.anthropic.api-key-file": "ANTHROPIC_API_KEY_FILE",
	}
	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	setDefaults(viper.GetViper())

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is ats-scorer.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults(v *viper.Viper) {
	weights := ats.DefaultWeights()

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.timeout", ats.DefaultTimeout)
	v.SetDefault("ai.max-log-length", 500)
	v.SetDefault("ai.gemini.api-key", "")
	v.SetDefault("ai.gemini.model", "")
	v.SetDefault("ai.gemini.max-retries", 1)
	v.SetDefault("ai.gemini.requests-per-minute", 0)
	v.SetDefault("ai.anthropic.api-key", "")
	v.SetDefault("ai.anthropic.model", "")
	v.SetDefault("ai.anthropic.max-retries", 1)
	v.SetDefault("ai.anthropic.requests-per-minute", 0)
	v.SetDefault("weights.keywords", weights.Keywords)
	v.SetDefault("weights.skills", weights.Skills)
	v.SetDefault("weights.experience", weights.Experience)
	v.SetDefault("ranking.exclude-file", "")
	v.SetDefault("ranking.minimum-score", 0)
	v.SetDefault("ranking.concurrency", 0)
	v.SetDefault("server.addr", ":8080")
}

func initConfig() {
	// Version does not need any configuration.
	if versionCmd.CalledAs() != "" {
		return
	}

	// .env is optional.
	_ = godotenv.Load()

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// The config file is optional unless it was requested explicitly.
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		// We can't proceed if the config file parsed with error.
		log.Fatal(err)
	}
}

func newLogger() *zap.Logger {
	l, err := logger.New(logger.Options{
		JSON:  viper.GetBool("json"),
		Debug: viper.GetBool("debug"),
	})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return l
}
