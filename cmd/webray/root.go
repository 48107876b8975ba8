package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Carmen-Shannon/webray-go/common"
	"github.com/spf13/cobra"
)

// newRootCommand builds the webray command tree.
func newRootCommand() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "webray",
		Short:         "Tiled GPU ray tracer",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var level slog.Level
			if err := level.UnmarshalText([]byte(logLevel)); err != nil {
				return fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
			}
			common.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
			return nil
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")

	root.AddCommand(
		newRenderCommand(),
		newDemoCommand(),
		newValidateCommand(),
	)
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	return root
}
