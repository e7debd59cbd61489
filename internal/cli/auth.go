package cli

import (
	"github.com/spf13/cobra"

	"github.com/ericfisherdev/prpilot/internal/application"
)

var (
	flagGitHubHost string
	flagGitLabHost string
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Run the interactive login flow of an external CLI",
}

var authGitHubCmd = &cobra.Command{
	Use:   "github",
	Short: "Run `gh auth login`",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return newAuthenticator().LoginGitHub(flagGitHubHost)
	},
}

var authGitLabCmd = &cobra.Command{
	Use:   "gitlab",
	Short: "Run `glab auth login`",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return newAuthenticator().LoginGitLab(flagGitLabHost)
	},
}

var authClaudeCmd = &cobra.Command{
	Use:   "claude",
	Short: "Run the Claude CLI login flow",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return newAuthenticator().LoginProvider("anthropic")
	},
}

var authCodexCmd = &cobra.Command{
	Use:   "codex",
	Short: "Run the Codex CLI login flow",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return newAuthenticator().LoginProvider("openai")
	},
}

var authGeminiCmd = &cobra.Command{
	Use:   "gemini",
	Short: "Run the Gemini CLI login flow",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return newAuthenticator().LoginProvider("gemini")
	},
}

func newAuthenticator() *application.Authenticator {
	return application.NewAuthenticator(newLoader())
}

func init() {
	authGitHubCmd.Flags().StringVar(&flagGitHubHost, "host", "github.com", "hosting domain to authenticate against")
	authGitLabCmd.Flags().StringVar(&flagGitLabHost, "host", "gitlab.com", "hosting domain to authenticate against")

	authCmd.AddCommand(authGitHubCmd)
	authCmd.AddCommand(authGitLabCmd)
	authCmd.AddCommand(authClaudeCmd)
	authCmd.AddCommand(authCodexCmd)
	authCmd.AddCommand(authGeminiCmd)
}
