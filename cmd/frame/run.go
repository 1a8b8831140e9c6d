package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/fwojciec/frame"
	"github.com/fwojciec/frame/agent"
	"github.com/fwojciec/frame/goldmark"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultWidth = 80

func newRunCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run COMMAND",
		Short: "Apply one command to the project and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd.Context(), v, cmd, args[0])
		},
	}
	cmd.Flags().String("session", "cli", "Session to continue")
	cmd.Flags().Bool("verbose", false, "Print tool activity while the command runs")
	return cmd
}

func runOnce(ctx context.Context, v *viper.Viper, cmd *cobra.Command, command string) error {
	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	ctx = logger.WithContext(ctx)
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	provider, err := resolveProvider(ctx, cfg.Provider, cfg.APIKey, cfg.BaseURL, cfg.Keys)
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg, provider, goldmark.NewANSI(frame.DefaultTheme(), defaultWidth), logger)
	if err != nil {
		return err
	}
	defer a.Close()

	var opts []agent.RunOption
	if v.GetBool("verbose") {
		opts = append(opts, agent.WithEventHandler(toolPrinter(cmd.ErrOrStderr())))
	}
	result, err := a.loop.Run(ctx, v.GetString("session"), command, opts...)
	if result != nil {
		printResult(cmd.OutOrStdout(), result)
	}
	if errors.Is(err, frame.ErrMaxIterations) {
		return fmt.Errorf("stopped before the agent finished: %w", err)
	}
	return err
}

func toolPrinter(w io.Writer) func(frame.Event) {
	return func(evt frame.Event) {
		switch e := evt.(type) {
		case frame.EventToolCallEnd:
			fmt.Fprintf(w, "→ %s %s\n", e.Call.Name, e.Call.Arguments)
		case frame.EventToolResult:
			if e.Result.IsError {
				fmt.Fprintf(w, "✗ %s\n", e.Result.Content)
			}
		}
	}
}

func printResult(w io.Writer, result *agent.Result) {
	if result.Message != "" {
		fmt.Fprintln(w, result.Message)
	}
	for _, c := range result.Changes {
		fmt.Fprintf(w, "  • %s\n", c)
	}
}
