// Command frame serves a page whose files an LLM agent can read and rewrite
// on the user's request.
//
// Usage:
//
//	ANTHROPIC_API_KEY=sk-... frame serve [flags]
//	frame run "make the heading blue" --session demo
//
// Settings come from flags, FRAME_* environment variables and a .env file in
// the working directory, in that order of precedence.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	if err := newRootCmd(viper.New()).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "frame: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	root := &cobra.Command{
		Use:           "frame",
		Short:         "frame lets an LLM agent edit the application serving it",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("root", ".", "Project directory the agent reads and edits")
	flags.String("store", "json", "Session store backend: json or sqlite")
	flags.String("state-file", ".frame/sessions.json", "Session file for the json store")
	flags.String("db", ".frame/frame.db", "Database file for the sqlite store")
	flags.String("provider", "", "Provider: anthropic, gemini or openai (auto-detected from API keys if omitted)")
	flags.String("model", "", "Model ID (provider default if empty)")
	flags.String("api-key", "", "API key (overrides the provider's environment variable)")
	flags.String("base-url", "", "Provider API base URL (provider default if empty)")
	flags.Int("max-tokens", 4000, "Maximum tokens per model reply")
	flags.Int("max-iterations", 10, "Maximum model calls per command")
	flags.Int("max-pairs", 20, "Exchanges kept per session")
	flags.StringSlice("orient", []string{"index.html", "style.css", "server.js", "package.json"}, "Files (glob patterns) shown to the agent before each call")
	flags.String("system-prompt", "", "Path to a system prompt file")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")
	flags.String("log-format", "text", "Log format: json or text")
	flags.String("log-file", "", "Also write logs to this file, rotated")

	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return bindConfig(v, cmd)
	}

	root.AddCommand(newServeCmd(v), newRunCmd(v))
	return root
}

// bindConfig layers flags over FRAME_* environment variables and binds the
// providers' conventional key variables.
func bindConfig(v *viper.Viper, cmd *cobra.Command) error {
	v.SetEnvPrefix("frame")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	for key, env := range map[string]string{
		"anthropic-api-key": "ANTHROPIC_API_KEY",
		"gemini-api-key":    "GEMINI_API_KEY",
		"openai-api-key":    "OPENAI_API_KEY",
	} {
		if err := v.BindEnv(key, env); err != nil {
			return err
		}
	}
	return nil
}
