// internal/commands/bot.go
package askdocs

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/askdocs/askdocs/internal/bot"
)

// tokenEnv is the environment variable holding the Telegram bot token. It
// can live in a .env file next to the binary; see the root command's env
// loading.
const tokenEnv = "TG_TOKEN"

// botCmd implements 'bot', the Telegram front end over the pipeline.
var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot",
	Long: `The 'bot' command starts a long-polling Telegram bot that answers /ask
queries through the retrieval pipeline and keeps a short per-user history
for /summarize.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		token := strings.TrimSpace(os.Getenv(tokenEnv))
		if token == "" {
			return fmt.Errorf("%s is not set (put it in the environment or a .env file)", tokenEnv)
		}

		pipeline, err := buildPipeline()
		if err != nil {
			return err
		}
		pipeline.Warm(cmd.Context())
		return bot.Run(cmd.Context(), token, GetConfig(), pipeline)
	},
}

func init() {
	rootCmd.AddCommand(botCmd)
}
