package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/garyellow/ut-course-catalog-go/internal/buildinfo"
	"github.com/garyellow/ut-course-catalog-go/internal/sentry"
)

var rootCmd = &cobra.Command{
	Use:           "utcc",
	Short:         "utcc downloads and exports the UTokyo Online Course Catalogue.",
	Version:       version(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error
		env, err = setup(cmd.Context())
		return err
	},
}

var logLevel string

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides UTCC_LOG_LEVEL")
}

// execute runs the command tree and returns the process exit code.
func execute(ctx context.Context) int {
	err := rootCmd.ExecuteContext(ctx)
	if env != nil {
		if err != nil {
			env.log.WithError(err).ErrorContext(ctx, "Command failed")
			sentry.CaptureExceptionWithContext(ctx, err)
		}
		env.close(ctx)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func version() string {
	v := buildinfo.Version
	if v == "" {
		v = "dev"
	}
	if buildinfo.Commit != "" {
		v += " (" + buildinfo.Commit + ")"
	}
	return v
}
