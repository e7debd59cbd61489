package cli

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/prpilot/internal/adapter/driven/update"
	"github.com/ericfisherdev/prpilot/internal/config"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the prpilot version and check for updates",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "prpilot version %s\n", version)
		printUpdateNotice(cmd)
	},
}

// printUpdateNotice probes update_check_url when configured. The probe is
// informational; any failure leaves the version output as-is.
func printUpdateNotice(cmd *cobra.Command) {
	loaded, err := newLoader().Load()
	if err != nil {
		return
	}
	cfg := &loaded.Config
	if cfg.Defaults.UpdateCheckURL == nil {
		return
	}
	checkURL := *cfg.Defaults.UpdateCheckURL

	timeout := time.Duration(config.DefaultUpdateTimeoutMS) * time.Millisecond
	if cfg.Defaults.UpdateTimeoutMS != nil && *cfg.Defaults.UpdateTimeoutMS > 0 {
		timeout = time.Duration(*cfg.Defaults.UpdateTimeoutMS) * time.Millisecond
	}

	latest := update.NewChecker(timeout).FetchLatest(cmd.Context(), checkURL, updateHostToken(cfg, checkURL))
	if latest == nil || !update.IsNewer(version, latest.Version) {
		return
	}

	fmt.Fprintf(os.Stdout, "A newer version is available: %s\n", latest.Version)
	download := latest.DownloadURL
	if download == "" && cfg.Defaults.UpdateDownloadURL != nil {
		download = *cfg.Defaults.UpdateDownloadURL
	}
	if download != "" {
		fmt.Fprintf(os.Stdout, "Download: %s\n", download)
	}
}

// updateHostToken reuses the host token when the check endpoint lives on a
// configured VCS host (private release endpoints).
func updateHostToken(cfg *config.Config, checkURL string) string {
	parsed, err := url.Parse(checkURL)
	if err != nil || parsed.Host == "" {
		return ""
	}
	hc, ok := cfg.Host(parsed.Hostname())
	if !ok {
		return ""
	}
	return config.ResolveHostToken(hc, true).Token
}
