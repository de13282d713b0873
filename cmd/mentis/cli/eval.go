package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/siherrmann/mentis/evaluation"
	"github.com/siherrmann/mentis/helper"
	"github.com/spf13/cobra"
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Evaluate the retrievers over the configured query set",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, appConfig, err := openMentis()
		if err != nil {
			return err
		}
		defer m.Close()

		queries, err := evaluation.LoadQueries(appConfig.Evaluation.QueriesFile)
		if err != nil {
			return err
		}
		fmt.Printf("Loaded %d queries\n", len(queries))

		harness := evaluation.NewHarness(
			evaluation.AllAdapters(m),
			evaluation.NewLLMScorer(m.LLM),
			appConfig.Evaluation.TopK,
			helper.NewPrettyLogger(os.Stdout, slog.LevelInfo),
		)

		reports, err := harness.Run(cmd.Context(), queries)
		if err != nil {
			return err
		}
		if len(reports) == 0 {
			return fmt.Errorf("no retriever produced results")
		}

		if err := evaluation.WriteReports(appConfig.Evaluation.ResultsDir, reports); err != nil {
			return err
		}
		for _, report := range reports {
			fmt.Printf("Saved results_%s.json\n", report.Retriever)
		}

		fmt.Println()
		fmt.Print(evaluation.Summary(reports))
		return nil
	},
}
