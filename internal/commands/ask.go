// internal/commands/ask.go
package askdocs

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"
	"github.com/xeipuuv/gojsonschema"

	"github.com/askdocs/askdocs/internal/rag"
)

// answerSchema describes the machine-readable output of 'ask --jsonMode'.
// The payload is validated against it before printing, so downstream
// consumers never see a malformed document.
const answerSchema = `{
  "type": "object",
  "required": ["answer", "sources", "latency_ms"],
  "properties": {
    "answer": {"type": "string", "minLength": 1},
    "sources": {"type": "array", "items": {"type": "string"}},
    "latency_ms": {"type": "integer", "minimum": 0}
  },
  "additionalProperties": false
}`

type answerPayload struct {
	Answer    string   `json:"answer"`
	Sources   []string `json:"sources"`
	LatencyMs int64    `json:"latency_ms"`
}

// askCmd implements 'ask', a one-shot query against the indexed documents.
var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question over the indexed documents",
	Long: `The 'ask' command embeds the question, retrieves the most relevant chunks
from the vector store, and asks the generation model for a grounded answer
with source citations.`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		pipeline, err := buildPipeline()
		if err != nil {
			return err
		}

		question := strings.TrimSpace(strings.Join(args, " "))
		answer, err := pipeline.Ask(cmd.Context(), question)
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), rag.UserMessage(err))
			return err
		}
		if cfg.Debug {
			pp.Println(answer)
		}

		if cfg.JSONMode {
			return printJSONAnswer(cmd, answer)
		}

		fmt.Fprintln(cmd.OutOrStdout(), answer.Text)
		if len(answer.Sources) > 0 && !strings.Contains(answer.Text, "Sources:") {
			fmt.Fprintf(cmd.OutOrStdout(), "\nSources: %s\n", strings.Join(answer.Sources, ", "))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "(%s)\n", answer.Latency.Truncate(time.Millisecond))
		return nil
	},
}

func printJSONAnswer(cmd *cobra.Command, answer rag.Answer) error {
	payload := answerPayload{
		Answer:    answer.Text,
		Sources:   answer.Sources,
		LatencyMs: answer.Latency.Milliseconds(),
	}
	if payload.Sources == nil {
		payload.Sources = []string{}
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal answer: %w", err)
	}

	result, err := gojsonschema.Validate(gojsonschema.NewStringLoader(answerSchema), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if !result.Valid() {
		var details []string
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return fmt.Errorf("answer payload failed validation: %s", strings.Join(details, "; "))
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func init() {
	rootCmd.AddCommand(askCmd)
}
