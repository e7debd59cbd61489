package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/prpilot/internal/config"
	"github.com/ericfisherdev/prpilot/internal/domain/port/driven"
)

func TestBuildCommandArgsSubstitutesPlaceholder(t *testing.T) {
	args := buildCommandArgs([]string{"exec", "--message", "{prompt}"}, "review this", false)
	assert.Equal(t, []string{"exec", "--message", "review this"}, args)
}

func TestBuildCommandArgsAppendsPromptWithoutPlaceholder(t *testing.T) {
	args := buildCommandArgs([]string{"-p"}, "review this", false)
	assert.Equal(t, []string{"-p", "review this"}, args)
}

func TestBuildCommandArgsStdinModeLeavesArgsAlone(t *testing.T) {
	args := buildCommandArgs([]string{"-p"}, "review this", true)
	assert.Equal(t, []string{"-p"}, args)
}

type invocation struct {
	args  []string
	stdin string
}

func TestCommandAgentUsesStdin(t *testing.T) {
	agent := newCommandAgent(config.ResolvedProvider{
		ID:       "anthropic",
		Name:     "Claude",
		Mode:     config.ModeCLI,
		Command:  "claude",
		Args:     []string{"-p"},
		UseStdin: true,
	})

	var got invocation
	agent.run = func(_ context.Context, name string, args []string, stdin string) (string, string, error) {
		got = invocation{args: args, stdin: stdin}
		return "looks fine\n", "prompt_tokens: 12\ncompletion_tokens: 3\n", nil
	}

	resp, err := agent.Review(context.Background(), driven.ReviewPrompt{User: "review this"})
	require.NoError(t, err)
	assert.Equal(t, "looks fine", resp.Text)
	assert.Equal(t, []string{"-p"}, got.args)
	assert.Equal(t, "review this", got.stdin)
	require.NotNil(t, resp.Usage.Total)
	assert.Equal(t, int64(15), *resp.Usage.Total)
}

func TestCommandAgentRetriesOnceWithoutStdin(t *testing.T) {
	agent := newCommandAgent(config.ResolvedProvider{
		ID:       "openai",
		Name:     "OpenAI/Codex",
		Mode:     config.ModeCLI,
		Command:  "codex",
		Args:     []string{"exec"},
		UseStdin: true,
	})

	var calls []invocation
	agent.run = func(_ context.Context, name string, args []string, stdin string) (string, string, error) {
		calls = append(calls, invocation{args: args, stdin: stdin})
		if len(calls) == 1 {
			return "", "error: stdin is not a terminal", errors.New("exit status 1")
		}
		return "second try output", "", nil
	}

	resp, err := agent.Review(context.Background(), driven.ReviewPrompt{User: "review this"})
	require.NoError(t, err)
	assert.Equal(t, "second try output", resp.Text)

	require.Len(t, calls, 2)
	assert.Equal(t, "review this", calls[0].stdin)
	assert.Empty(t, calls[1].stdin)
	assert.Equal(t, []string{"exec", "review this"}, calls[1].args)
}

func TestCommandAgentFailsWhenRetryAlsoFails(t *testing.T) {
	agent := newCommandAgent(config.ResolvedProvider{
		ID:       "openai",
		Name:     "OpenAI/Codex",
		Mode:     config.ModeCLI,
		Command:  "codex",
		Args:     []string{"exec"},
		UseStdin: true,
	})

	var calls []invocation
	agent.run = func(_ context.Context, name string, args []string, stdin string) (string, string, error) {
		calls = append(calls, invocation{args: args, stdin: stdin})
		if len(calls) == 1 {
			return "", "error: stdin is not a terminal", errors.New("exit status 1")
		}
		return "", "model unavailable", errors.New("exit status 1")
	}

	_, err := agent.Review(context.Background(), driven.ReviewPrompt{User: "review this"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model unavailable")

	require.Len(t, calls, 2, "one stdin attempt plus one no-stdin attempt, never a third")
	assert.Empty(t, calls[1].stdin)
}

func TestCommandAgentDoesNotRetryOtherFailures(t *testing.T) {
	agent := newCommandAgent(config.ResolvedProvider{
		ID:       "gemini",
		Name:     "Gemini",
		Mode:     config.ModeCLI,
		Command:  "gemini",
		UseStdin: true,
	})

	calls := 0
	agent.run = func(_ context.Context, name string, args []string, stdin string) (string, string, error) {
		calls++
		return "", "rate limit exceeded", errors.New("exit status 1")
	}

	_, err := agent.Review(context.Background(), driven.ReviewPrompt{User: "review this"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit exceeded")
	assert.Equal(t, 1, calls)
}

func TestCommandAgentFallsBackToStderrOutput(t *testing.T) {
	agent := newCommandAgent(config.ResolvedProvider{
		ID:      "anthropic",
		Name:    "Claude",
		Mode:    config.ModeCLI,
		Command: "claude",
	})
	agent.run = func(_ context.Context, name string, args []string, stdin string) (string, string, error) {
		return "", "findings on stderr\n", nil
	}

	resp, err := agent.Review(context.Background(), driven.ReviewPrompt{User: "review this"})
	require.NoError(t, err)
	assert.Equal(t, "findings on stderr", resp.Text)
}

func TestCommandAgentCombinesSystemAndUserPrompt(t *testing.T) {
	agent := newCommandAgent(config.ResolvedProvider{
		ID:      "anthropic",
		Name:    "Claude",
		Mode:    config.ModeCLI,
		Command: "claude",
	})

	var got invocation
	agent.run = func(_ context.Context, name string, args []string, stdin string) (string, string, error) {
		got = invocation{args: args, stdin: stdin}
		return "ok", "", nil
	}

	_, err := agent.Review(context.Background(), driven.ReviewPrompt{
		System: "be strict",
		User:   "review this",
	})
	require.NoError(t, err)
	require.Len(t, got.args, 1)
	assert.Equal(t, "be strict\n\nreview this", got.args[0])
}
