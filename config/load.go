package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment variable of the service
const EnvPrefix = "SENTIMENT"

// DefaultEnvFiles are loaded, when present, before the environment is read.
// Variables already set in the process take precedence.
var DefaultEnvFiles = []string{".env.local", ".env"}

// legacyEnv maps config keys to the bare variable names used by existing deployments
var legacyEnv = map[string]string{
	"source.rapidapi_key":    "RAPIDAPI_KEY",
	"source.youtube_api_key": "YOUTUBE_API_KEY",
	"llm.api_key":            "DEEPSEEK_API_KEY",
	"llm.base_url":           "DEEPSEEK_BASE_URL",
	"events.grpc_port":       "DAPR_GRPC_PORT",
}

// Load builds the configuration from defaults, an optional config file, env
// files and the environment, in increasing order of precedence. Flags bound to
// v beforehand override everything.
func Load(v *viper.Viper, cfgFile string, envFiles ...string) (*Config, error) {
	if v == nil {
		v = viper.New()
	}

	if err := loadEnvFiles(envFiles); err != nil {
		return nil, err
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		envName := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envName, legacy); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	} else {
		v.SetConfigName("sentiment")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/comment-sentiment")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)

	v.SetDefault("http.timeout", d.HTTP.Timeout)
	v.SetDefault("http.user_agent", d.HTTP.UserAgent)

	v.SetDefault("source.provider", d.Source.Provider)
	v.SetDefault("source.rapidapi_key", "")
	v.SetDefault("source.rapidapi_host", d.Source.RapidAPIHost)
	v.SetDefault("source.youtube_api_key", "")
	v.SetDefault("source.strategies", []string{})
	v.SetDefault("source.max_comments", d.Source.MaxComments)

	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.model", "")

	v.SetDefault("events.enabled", d.Events.Enabled)
	v.SetDefault("events.pubsub_component", d.Events.PubSubComponent)
	v.SetDefault("events.topic", d.Events.Topic)
	v.SetDefault("events.grpc_port", d.Events.GRPCPort)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

func loadEnvFiles(files []string) error {
	if files == nil {
		files = DefaultEnvFiles
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}
