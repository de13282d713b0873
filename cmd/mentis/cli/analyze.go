package cli

import (
	"fmt"

	"github.com/siherrmann/mentis/core/audit"
	"github.com/spf13/cobra"
)

var (
	analyzeSample  int
	analyzeReindex string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Diagnose store health and retrieval behavior",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, _, err := openMentis()
		if err != nil {
			return err
		}
		defer m.Close()

		ctx := cmd.Context()

		if analyzeReindex != "" {
			fmt.Printf("Changing vector index type to %s...\n", analyzeReindex)
			if err := m.ChangeIndexType(ctx, analyzeReindex, nil); err != nil {
				return err
			}
			fmt.Println("Done.")
			return nil
		}

		fmt.Println("=== COLLECTION COUNTS ===")
		fmt.Println()
		counts, err := audit.CollectionCounts(m.Chunks, m.UserID)
		if err != nil {
			return err
		}
		var totalChunks int64
		for _, count := range counts {
			fmt.Printf("  %s: %d chunks\n", count.Collection, count.Count)
			totalChunks += count.Count
		}
		fmt.Printf("  Total: %d chunks\n\n", totalChunks)

		fmt.Println("=== ANALYZING QUERY REWRITING ===")
		fmt.Println()
		for _, query := range analyzeQueries() {
			fmt.Printf("Original: '%s'\n", query)
			output, err := m.Retrieve(ctx, query)
			if err != nil {
				fmt.Printf("  Error: %v\n\n", err)
				continue
			}
			fmt.Println("Rewritten queries:")
			for _, rewritten := range output.QueriesUsed {
				fmt.Printf("  → '%s' (%s)\n", rewritten.Query, rewritten.Category)
			}
			fmt.Println()
		}

		fmt.Println("=== ANALYZING CONNECTION SYSTEM ===")
		fmt.Println()
		connectionAudit, err := audit.AuditConnections(m.Chunks, m.Connections, m.UserID, analyzeSample)
		if err != nil {
			return err
		}
		for i, broken := range connectionAudit.Broken {
			fmt.Printf("%d. %s -> %s (%s)\n", i+1, broken.SourceID, broken.TargetID, broken.Type)
			fmt.Printf("   Target %s not found in any collection!\n", broken.TargetID)
		}
		fmt.Println("Connection Analysis:")
		fmt.Printf("  Total connections: %d\n", connectionAudit.Total)
		fmt.Printf("  Audited: %d\n", connectionAudit.Audited)
		fmt.Printf("  Broken connections: %d\n", len(connectionAudit.Broken))
		fmt.Printf("  Success rate: %.1f%%\n\n", connectionAudit.SuccessRate())

		fmt.Println("=== ANALYZING SEARCH DISTRIBUTION ===")
		fmt.Println()
		distributionQuery := "What emotions did Anne express about her birthday?"
		output, err := m.Retrieve(ctx, distributionQuery)
		if err != nil {
			return err
		}
		fmt.Printf("Query: '%s'\n", distributionQuery)
		fmt.Println("Results distribution:")
		for _, stats := range audit.ScoreDistribution(output.Results) {
			fmt.Printf("  %s: %d items\n", stats.Category, stats.Count)
			fmt.Printf("    Score range: %.3f - %.3f (avg: %.3f)\n", stats.Min, stats.Max, stats.Avg)
		}
		fmt.Printf("Total results: %d\n", output.Results.Len())
		if output.Results.Len() > m.QueryConfig.MaxTotalResults {
			fmt.Println("ISSUE: Results are diluted across too many categories")
		}
		return nil
	},
}

// analyzeQueries are the fixed demonstration queries for the rewrite section.
func analyzeQueries() []string {
	return []string{
		"What gifts did Anne receive for her birthday?",
		"Tell me about Anne's relationship with her mother",
		"What emotions did Anne express about school?",
	}
}

func init() {
	analyzeCmd.Flags().IntVar(&analyzeSample, "sample", 20, "Number of connections to audit")
	analyzeCmd.Flags().StringVar(&analyzeReindex, "reindex", "", "Change the vector index type (hnsw or ivfflat) and exit")
}
