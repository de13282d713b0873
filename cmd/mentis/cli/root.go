package cli

import (
	"fmt"
	"os"

	"github.com/siherrmann/mentis"
	"github.com/siherrmann/mentis/helper"
	"github.com/spf13/cobra"
)

// RootCmd is the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "mentis",
	Short: "Semantic diary analysis",
	Long: `Mentis answers questions about a personal diary. Questions are rewritten
into category targeted searches over a semantic chunk store, related chunks
are pulled in over stored connections, and the answer is generated from the
retrieved context.`,
	SilenceUsage: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	RootCmd.AddCommand(chatCmd)
	RootCmd.AddCommand(evalCmd)
	RootCmd.AddCommand(analyzeCmd)
	RootCmd.AddCommand(ingestCmd)
}

// openMentis loads configuration, verifies the environment and builds the
// facade. Callers defer Close.
func openMentis() (*mentis.Mentis, *helper.AppConfig, error) {
	appConfig, _, err := helper.LoadDefaultAppConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	if err := checkEnv(appConfig); err != nil {
		return nil, nil, err
	}

	dbConfig, err := helper.NewDatabaseConfiguration()
	if err != nil {
		return nil, nil, fmt.Errorf("load database configuration: %w", err)
	}

	m, err := mentis.NewMentis(dbConfig, appConfig)
	if err != nil {
		return nil, nil, err
	}
	return m, appConfig, nil
}

// checkEnv reports missing required environment up front instead of failing
// somewhere down the call chain.
func checkEnv(appConfig *helper.AppConfig) error {
	if os.Getenv("USER_ID") == "" && appConfig.UserID == "" {
		return fmt.Errorf("USER_ID environment variable is required")
	}
	if appConfig.LLM.Provider == "openai" && os.Getenv("OPENAI_API_KEY") == "" {
		return fmt.Errorf("OPENAI_API_KEY environment variable is required")
	}
	return nil
}
