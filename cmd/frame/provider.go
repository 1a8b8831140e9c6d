package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/frame"
	"github.com/fwojciec/frame/anthropic"
	"github.com/fwojciec/frame/gemini"
	"github.com/fwojciec/frame/openai"
)

// providerKeys holds the API keys found in the environment.
type providerKeys struct {
	Anthropic string
	Gemini    string
	OpenAI    string
}

// providerConfig is the outcome of provider selection.
type providerConfig struct {
	name string
	key  string
}

// resolveConfig selects the provider and its key. An explicit provider wins;
// otherwise the single provider with a key is chosen. The api-key flag
// overrides the provider's environment variable.
func resolveConfig(providerFlag, apiKeyFlag string, keys providerKeys) (providerConfig, error) {
	envKeys := map[string]string{
		"anthropic": keys.Anthropic,
		"gemini":    keys.Gemini,
		"openai":    keys.OpenAI,
	}
	envNames := map[string]string{
		"anthropic": "ANTHROPIC_API_KEY",
		"gemini":    "GEMINI_API_KEY",
		"openai":    "OPENAI_API_KEY",
	}

	name := providerFlag
	if name == "" {
		var found []string
		for _, n := range []string{"anthropic", "gemini", "openai"} {
			if envKeys[n] != "" {
				found = append(found, envNames[n])
				name = n
			}
		}
		switch len(found) {
		case 0:
			if apiKeyFlag != "" {
				name = "anthropic"
				break
			}
			return providerConfig{}, fmt.Errorf("no API key found: set ANTHROPIC_API_KEY, GEMINI_API_KEY or OPENAI_API_KEY (or use --provider and --api-key)")
		case 1:
		default:
			return providerConfig{}, fmt.Errorf("multiple API keys found (%s): use --provider to select", strings.Join(found, ", "))
		}
	}

	envName, ok := envNames[name]
	if !ok {
		return providerConfig{}, fmt.Errorf("unknown provider %q: must be \"anthropic\", \"gemini\" or \"openai\"", name)
	}
	key := apiKeyFlag
	if key == "" {
		key = envKeys[name]
	}
	if key == "" {
		return providerConfig{}, fmt.Errorf("%s not set (use --api-key or the environment variable)", envName)
	}
	return providerConfig{name: name, key: key}, nil
}

// resolveProvider selects and constructs the provider. Environment values
// arrive through keys; nothing here reads the environment.
func resolveProvider(ctx context.Context, providerFlag, apiKeyFlag, baseURL string, keys providerKeys) (frame.Provider, error) {
	cfg, err := resolveConfig(providerFlag, apiKeyFlag, keys)
	if err != nil {
		return nil, err
	}
	switch cfg.name {
	case "anthropic":
		var opts []anthropic.Option
		if baseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(baseURL))
		}
		return anthropic.New(cfg.key, opts...), nil
	case "gemini":
		var opts []gemini.Option
		if baseURL != "" {
			opts = append(opts, gemini.WithBaseURL(baseURL))
		}
		client, err := gemini.New(ctx, cfg.key, opts...)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		var opts []openai.Option
		if baseURL != "" {
			opts = append(opts, openai.WithBaseURL(baseURL))
		}
		return openai.New(cfg.key, opts...), nil
	}
}
