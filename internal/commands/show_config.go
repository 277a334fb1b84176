// internal/commands/show_config.go
package askdocs

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/askdocs/askdocs/internal/appconfig"
)

// showConfigCmd implements the 'show config' command, which displays the
// effective configuration after file values and flag overrides are merged.
var showConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show config settings",
	Long:  `Show the effective configuration, with file values overridden by flags.`,
	Run: func(cmd *cobra.Command, args []string) {
		appconfig.ShowConfig(cmd.OutOrStdout(), viper.ConfigFileUsed(), GetConfig())
	},
}

func init() {
	showCmd.AddCommand(showConfigCmd)
}
