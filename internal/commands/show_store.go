// internal/commands/show_store.go
package askdocs

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/askdocs/askdocs/internal/rag"
)

// showStoreCmd implements 'show store', a quick look at what is indexed.
var showStoreCmd = &cobra.Command{
	Use:          "store",
	Short:        "Show vector store contents by document",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		store, err := rag.Open(cfg.StorePath)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Store:     %s\n", cfg.StorePath)
		fmt.Fprintf(cmd.OutOrStdout(), "Model:     %s\n", store.ModelName())
		fmt.Fprintf(cmd.OutOrStdout(), "Dimension: %d\n", store.Dimension())
		fmt.Fprintf(cmd.OutOrStdout(), "Records:   %d\n", store.Count())

		perDoc := make(map[string]int)
		for _, record := range store.AllRecords() {
			perDoc[record.Doc]++
		}
		docs := make([]string, 0, len(perDoc))
		for doc := range perDoc {
			docs = append(docs, doc)
		}
		sort.Strings(docs)
		for _, doc := range docs {
			fmt.Fprintf(cmd.OutOrStdout(), "  %-30s %d chunks\n", doc, perDoc[doc])
		}
		return nil
	},
}

func init() {
	showCmd.AddCommand(showStoreCmd)
}
