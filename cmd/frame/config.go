package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// config holds resolved settings shared by all subcommands.
type config struct {
	Root          string
	Store         string
	StateFile     string
	DB            string
	Provider      string
	Model         string
	APIKey        string
	BaseURL       string
	MaxTokens     int
	MaxIterations int
	MaxPairs      int
	Orient        []string
	SystemPrompt  string
	Keys          providerKeys
	Log           logConfig
}

func loadConfig(v *viper.Viper) (config, error) {
	cfg := config{
		Root:          v.GetString("root"),
		Store:         v.GetString("store"),
		StateFile:     v.GetString("state-file"),
		DB:            v.GetString("db"),
		Provider:      v.GetString("provider"),
		Model:         v.GetString("model"),
		APIKey:        v.GetString("api-key"),
		BaseURL:       v.GetString("base-url"),
		MaxTokens:     v.GetInt("max-tokens"),
		MaxIterations: v.GetInt("max-iterations"),
		MaxPairs:      v.GetInt("max-pairs"),
		Orient:        v.GetStringSlice("orient"),
		Keys: providerKeys{
			Anthropic: v.GetString("anthropic-api-key"),
			Gemini:    v.GetString("gemini-api-key"),
			OpenAI:    v.GetString("openai-api-key"),
		},
		Log: logConfig{
			Level:  v.GetString("log-level"),
			Format: v.GetString("log-format"),
			File:   v.GetString("log-file"),
		},
	}

	if path := v.GetString("system-prompt"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return config{}, fmt.Errorf("read system prompt: %w", err)
		}
		cfg.SystemPrompt = string(data)
	}

	switch cfg.Store {
	case "json", "sqlite":
	default:
		return config{}, fmt.Errorf("unknown store %q: must be \"json\" or \"sqlite\"", cfg.Store)
	}
	if cfg.MaxIterations <= 0 {
		return config{}, errors.New("max-iterations must be positive")
	}
	if cfg.MaxPairs <= 0 {
		return config{}, errors.New("max-pairs must be positive")
	}
	return cfg, nil
}
