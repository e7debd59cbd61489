// Package cli wires the cobra command surface onto the review engine.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/prpilot/internal/adapter/driven/fsconfig"
	"github.com/ericfisherdev/prpilot/internal/adapter/driven/github"
	"github.com/ericfisherdev/prpilot/internal/adapter/driven/gitlab"
	"github.com/ericfisherdev/prpilot/internal/adapter/driven/provider"
	"github.com/ericfisherdev/prpilot/internal/application"
	"github.com/ericfisherdev/prpilot/internal/config"
	"github.com/ericfisherdev/prpilot/internal/domain/model"
	"github.com/ericfisherdev/prpilot/internal/domain/port/driven"
)

// version is stamped at build time via -ldflags "-X ...cli.version=".
var version = "0.1.0"

const (
	ExitSuccess      = 0
	ExitRuntimeError = 1
	ExitUsageError   = 2
)

var (
	flagDryRun bool
	flagForce  bool
)

var rootCmd = &cobra.Command{
	Use:   "prpilot <pr-or-mr-url>",
	Short: "Multi-agent AI code review for pull and merge requests",
	Long: "prpilot fans a pull/merge request diff out to several AI reviewers in\n" +
		"parallel, lets them react to each other's findings, and posts one\n" +
		"converging summary comment, at most once per head commit.",
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine := application.NewEngine(newLoader(), buildVCSClient, provider.Build, os.Stdout)
		return engine.Run(cmd.Context(), model.RunOptions{
			URL:    args[0],
			DryRun: flagDryRun,
			Force:  flagForce,
		})
	},
}

// Run executes the CLI and returns the process exit code.
func Run() int {
	rootCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "run all checks and print the report without posting comments")
	rootCmd.Flags().BoolVar(&flagForce, "force", false, "review again even if this head commit was already reviewed")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if isUsageError(err) {
			return ExitUsageError
		}
		return ExitRuntimeError
	}
	return ExitSuccess
}

// newLoader builds the config loader over the real filesystem.
func newLoader() *config.Loader {
	return config.NewLoader(fsconfig.New())
}

// buildVCSClient picks the platform adapter for a parsed target.
func buildVCSClient(target model.ReviewTarget, token, apiBase string) (driven.VCSClient, error) {
	switch target.Kind {
	case model.KindPullRequest:
		return github.NewClient(target, token, apiBase)
	case model.KindMergeRequest:
		return gitlab.NewClient(target, token, apiBase), nil
	default:
		return nil, fmt.Errorf("no VCS adapter for target kind %q", target.Kind)
	}
}

// isUsageError distinguishes argument mistakes from runtime failures so the
// exit codes stay stable for scripting.
func isUsageError(err error) bool {
	msg := err.Error()
	for _, prefix := range []string{"accepts ", "unknown command", "unknown flag", "unknown shorthand", "invalid argument"} {
		if strings.HasPrefix(msg, prefix) {
			return true
		}
	}
	return false
}
