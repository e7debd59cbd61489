package application

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/ericfisherdev/prpilot/internal/config"
)

// Authenticator runs the interactive OAuth login flows of the external CLIs
// (gh/glab for hosting platforms, codex/claude/gemini for providers). The
// child process inherits stdio so the browser-based flows work as usual.
type Authenticator struct {
	loader *config.Loader

	// runInteractive and lookPath are swapped in tests.
	runInteractive func(name string, args ...string) error
	lookPath       func(string) (string, error)
}

// NewAuthenticator creates the login helper.
func NewAuthenticator(loader *config.Loader) *Authenticator {
	return &Authenticator{
		loader:         loader,
		runInteractive: runInteractiveCommand,
		lookPath:       exec.LookPath,
	}
}

// LoginGitHub runs `gh auth login`, scoped to host when it is not github.com.
func (a *Authenticator) LoginGitHub(host string) error {
	args := []string{"auth", "login"}
	if host != "" && host != "github.com" {
		args = append(args, "--hostname", host)
	}
	return a.loginWith("gh", args)
}

// LoginGitLab runs `glab auth login`, scoped to host when it is not gitlab.com.
func (a *Authenticator) LoginGitLab(host string) error {
	args := []string{"auth", "login"}
	if host != "" && host != "gitlab.com" {
		args = append(args, "--hostname", host)
	}
	return a.loginWith("glab", args)
}

// LoginProvider runs the provider CLI's login flow. A configured custom
// command for the provider takes precedence over the conventional binary.
func (a *Authenticator) LoginProvider(providerID string) error {
	loaded, err := a.loader.Load()
	if err != nil {
		return err
	}
	command := loaded.Config.Providers[providerID].CommandName(providerID)
	if command == "" {
		return fmt.Errorf("unknown provider %q", providerID)
	}
	return a.loginWith(command, []string{"login"})
}

func (a *Authenticator) loginWith(name string, args []string) error {
	if _, err := a.lookPath(name); err != nil {
		return fmt.Errorf("%s not found in PATH, install it first", name)
	}
	if err := a.runInteractive(name, args...); err != nil {
		return fmt.Errorf("running %s login: %w", name, err)
	}
	return nil
}

func runInteractiveCommand(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
