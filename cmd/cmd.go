package cmd

import (
	"context"
	"log/slog"

	"github.com/questline/mint-console/internal/config"
	"github.com/questline/mint-console/pkg/logger"
	"github.com/questline/mint-console/pkg/logger/slogx"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:  "mint-console",
	Long: `Backend of the commemorative NFT minting console: plans, executes, records and exports batch Cardano NFT mint runs.`,
}

func init() {
	var configFile string

	// Add global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file, E.g. `./config.yaml`")
	flags.String("network", "preprod", "Cardano network to operate on, E.g. `mainnet`, `preprod` or `preview`")

	// Bind flags to configuration
	config.BindPFlag("network", flags.Lookup("network"))

	// Initialize configuration and logger on start command
	cobra.OnInitialize(func() {
		conf := config.Parse(configFile)

		if err := logger.Init(conf.Logger); err != nil {
			logger.Panic("Failed to initialize logger", slogx.Error(err), slog.Any("config", conf.Logger))
		}
	})
}

func Execute(ctx context.Context) {
	// Register sub-commands
	rootCmd.AddCommand(
		NewRunCommand(),
		NewMintCommand(),
		NewPlanCommand(),
		NewExportCommand(),
		NewMigrateCommand(),
		NewVersionCommand(),
	)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Fatal("Failed to execute command", slogx.Error(err))
	}
}
