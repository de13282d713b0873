package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/siherrmann/mentis/core/pipeline"
	"github.com/spf13/cobra"
)

var (
	ingestEntryID  string
	ingestFile     string
	ingestSemantic bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [text]",
	Short: "Process one diary entry into the store",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var text string
		if len(args) == 1 {
			text = args[0]
		}
		if ingestFile != "" {
			data, err := os.ReadFile(ingestFile) // #nosec G304 -- path chosen by the operator
			if err != nil {
				return fmt.Errorf("read entry file: %w", err)
			}
			text = string(data)
		}
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("no entry text, pass it as an argument or with --file")
		}

		m, appConfig, err := openMentis()
		if err != nil {
			return err
		}
		defer m.Close()

		if ingestSemantic {
			m.Pipeline.Chunker = pipeline.SemanticChunker(appConfig.Embedding.ModelName, appConfig.Embedding.ModelDir, 500, 0.7)
		}

		entryID := ingestEntryID
		if entryID == "" {
			entryID = fmt.Sprintf("entry_%s", time.Now().Format("20060102_150405"))
		}

		stats, err := m.IngestEntry(cmd.Context(), entryID, text)
		if err != nil {
			return err
		}

		fmt.Printf("Ingested %s: %d chunks, %d connections\n", entryID, stats.Chunks, stats.Connections)
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestEntryID, "entry-id", "", "Stable entry id (generated from the current time when empty)")
	ingestCmd.Flags().StringVar(&ingestFile, "file", "", "Read the entry text from a file")
	ingestCmd.Flags().BoolVar(&ingestSemantic, "semantic", false, "Chunk by embedding similarity instead of sentence count")
}
