// internal/commands/delete.go
package askdocs

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/askdocs/askdocs/internal/rag"
)

// deleteDocCmd implements 'delete', which removes one document's records
// from the vector store.
var deleteDocCmd = &cobra.Command{
	Use:          "delete [document]",
	Short:        "Remove a document's records from the vector store",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		store, err := rag.Open(cfg.StorePath)
		if err != nil {
			return err
		}

		before := store.Count()
		if err := store.DeleteDocument(args[0]); err != nil {
			return err
		}
		removed := before - store.Count()
		if removed == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "no records for %q\n", args[0])
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d records for %q\n", removed, args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteDocCmd)
}
