package provider

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/ericfisherdev/prpilot/internal/config"
	"github.com/ericfisherdev/prpilot/internal/domain/port/driven"
)

// promptPlaceholder marks where the prompt text is spliced into CLI args.
const promptPlaceholder = "{prompt}"

// cliTimeout bounds one CLI invocation, including the stdin retry.
const cliTimeout = 10 * time.Minute

// stdinNotTerminal is the failure signature that triggers the single retry
// without stdin. Some vendor CLIs refuse piped input in certain builds.
const stdinNotTerminal = "stdin is not a terminal"

// runCommandFunc executes a command and returns its stdout and stderr.
// Injectable so tests never spawn real processes.
type runCommandFunc func(ctx context.Context, name string, args []string, stdin string) (string, string, error)

// commandAgent runs a vendor CLI as the review backend.
type commandAgent struct {
	id       string
	name     string
	command  string
	args     []string
	useStdin bool
	run      runCommandFunc
}

func newCommandAgent(rp config.ResolvedProvider) *commandAgent {
	return &commandAgent{
		id:       rp.ID,
		name:     rp.Name,
		command:  rp.Command,
		args:     rp.Args,
		useStdin: rp.UseStdin,
		run:      runCommand,
	}
}

func (c *commandAgent) ID() string   { return c.id }
func (c *commandAgent) Name() string { return c.name }

func (c *commandAgent) Review(ctx context.Context, prompt driven.ReviewPrompt) (driven.ProviderResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, cliTimeout)
	defer cancel()

	full := prompt.User
	if prompt.System != "" {
		full = prompt.System + "\n\n" + prompt.User
	}

	stdout, stderr, err := c.invoke(ctx, full, c.useStdin)
	if err != nil && c.useStdin && mentionsStdinNotTerminal(stderr, err) {
		slog.Warn("provider CLI rejected piped stdin, retrying with inline prompt",
			"provider", c.id, "command", c.command)
		stdout, stderr, err = c.invoke(ctx, full, false)
	}
	if err != nil {
		return driven.ProviderResponse{}, fmt.Errorf("%s command failed: %w (stderr: %s)", c.name, err, strings.TrimSpace(stderr))
	}

	// Some CLIs write the answer to stderr. Prefer stdout but fall back.
	text := strings.TrimSpace(stdout)
	if text == "" {
		text = strings.TrimSpace(stderr)
	}
	if text == "" {
		return driven.ProviderResponse{}, fmt.Errorf("%s command produced no output", c.name)
	}

	return driven.ProviderResponse{
		Text:  text,
		Usage: extractUsage(stdout + "\n" + stderr),
	}, nil
}

func (c *commandAgent) invoke(ctx context.Context, prompt string, useStdin bool) (string, string, error) {
	args := buildCommandArgs(c.args, prompt, useStdin)
	stdin := ""
	if useStdin {
		stdin = prompt
	}
	return c.run(ctx, c.command, args, stdin)
}

// buildCommandArgs substitutes the prompt placeholder in the configured args.
// When stdin is disabled and no placeholder exists, the prompt becomes the
// final positional argument.
func buildCommandArgs(configured []string, prompt string, useStdin bool) []string {
	args := make([]string, 0, len(configured)+1)
	substituted := false
	for _, a := range configured {
		if strings.Contains(a, promptPlaceholder) {
			a = strings.ReplaceAll(a, promptPlaceholder, prompt)
			substituted = true
		}
		args = append(args, a)
	}
	if !useStdin && !substituted {
		args = append(args, prompt)
	}
	return args
}

func mentionsStdinNotTerminal(stderr string, err error) bool {
	return strings.Contains(strings.ToLower(stderr), stdinNotTerminal) ||
		strings.Contains(strings.ToLower(err.Error()), stdinNotTerminal)
}

func runCommand(ctx context.Context, name string, args []string, stdin string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}
