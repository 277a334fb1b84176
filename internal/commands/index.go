// internal/commands/index.go
package askdocs

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// indexCmd implements 'index', which scans the documents directory and
// (re)builds the vector store. A document that fails to index is reported
// and skipped; the command exits non-zero if any document failed.
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index the documents directory into the vector store",
	Long: `The 'index' command chunks every document under the configured docs path,
computes embeddings, and replaces each document's records in the vector store.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		pipeline, err := buildPipeline()
		if err != nil {
			return err
		}

		// Status lines go to the log; stdout gets the per-document summary below.
		report, err := pipeline.IndexDocuments(cmd.Context(), nil)
		if err != nil {
			return err
		}

		for _, doc := range report.Docs {
			if doc.Err != nil {
				color.Red("  ✗ %s: %v", doc.Doc, doc.Err)
				continue
			}
			color.Green("  ✓ %s (%d chunks)", doc.Doc, doc.Chunks)
		}
		fmt.Printf("Indexed %d documents, %d failed, %d records in %s\n",
			report.Indexed(), report.Failed(), pipeline.Store().Count(), GetConfig().StorePath)

		if report.Failed() > 0 {
			return fmt.Errorf("%d document(s) failed to index", report.Failed())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
