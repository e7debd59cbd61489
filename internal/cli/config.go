package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/prpilot/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as JSON",
	Long: "Shows every searched config path, which ones loaded, the effective\n" +
		"defaults, and per-host/per-provider resolution results. Token and API\n" +
		"key values are never included, only their sources.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := newLoader().Load()
		if err != nil {
			return err
		}

		inspection := config.Inspect(loaded, nil)
		data, err := json.MarshalIndent(inspection, "", "  ")
		if err != nil {
			return err
		}

		fmt.Fprintln(os.Stdout, string(data))
		return nil
	},
}
