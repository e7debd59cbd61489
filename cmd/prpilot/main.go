// Prpilot reviews a GitHub pull request or GitLab merge request with several
// AI reviewer agents at once and posts a single converging summary comment,
// at most once per head commit.
//
// Usage:
//
//	prpilot <pr-or-mr-url> [--dry-run] [--force]
//	prpilot config
//	prpilot auth github|gitlab|claude|codex|gemini
//	prpilot version
package main

import (
	"log/slog"
	"os"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for static binaries

	"github.com/ericfisherdev/prpilot/internal/cli"
)

func main() {
	logLevel := slog.LevelInfo
	if os.Getenv("PRPILOT_DEBUG") != "" {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	os.Exit(cli.Run())
}
