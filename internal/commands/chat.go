// internal/commands/chat.go
package askdocs

import (
	"github.com/spf13/cobra"

	"github.com/askdocs/askdocs/internal/tui"
)

// chatCmd represents the 'chat' command, which starts an interactive
// question-and-answer session over the indexed documents.
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat over the indexed documents",
	Long: `The 'chat' command opens a terminal UI where each question runs through the
retrieval pipeline and answers are shown with their source citations.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		pipeline, err := buildPipeline()
		if err != nil {
			return err
		}
		pipeline.Warm(cmd.Context())
		return tui.Run(cmd.Context(), GetConfig(), pipeline)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
