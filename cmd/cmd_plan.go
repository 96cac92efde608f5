package cmd

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/questline/mint-console/common/errs"
	"github.com/questline/mint-console/internal/config"
	"github.com/questline/mint-console/modules/minter"
	"github.com/questline/mint-console/pkg/logger"
	"github.com/questline/mint-console/pkg/logger/slogx"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
)

type planCmdOptions struct {
	TokenType  string
	SnapshotId string
	BatchSize  int
}

func NewPlanCommand() *cobra.Command {
	opts := &planCmdOptions{}

	planCmd := &cobra.Command{
		Use:   "plan",
		Short: "Estimate cost and duration of a mint run without executing it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return planHandler(opts, cmd, args)
		},
	}

	flags := planCmd.Flags()
	flags.StringVar(&opts.TokenType, "token-type", "", "Token type (design) to plan for")
	flags.StringVar(&opts.SnapshotId, "snapshot", "", "Eligibility snapshot id to plan for")
	flags.IntVar(&opts.BatchSize, "batch-size", 0, "Recipients per transaction. 0 uses the configured default")

	return planCmd
}

func planHandler(opts *planCmdOptions, cmd *cobra.Command, _ []string) error {
	conf := config.Load()

	// Validate inputs and configurations
	{
		if !conf.Network.IsSupported() {
			return errors.Wrapf(errs.Unsupported, "%q network is not supported", conf.Network.String())
		}
		if opts.TokenType == "" {
			return errors.Wrap(errs.InvalidArgument, "--token-type is required")
		}
		if opts.SnapshotId == "" {
			return errors.Wrap(errs.InvalidArgument, "--snapshot is required")
		}
	}

	// Terminal runs never mount the API.
	conf.Modules.Minter.APIHandlers = nil

	ctx := logger.WithContext(cmd.Context(), slogx.Stringer("network", conf.Network))

	injector := do.New()
	do.ProvideValue(injector, conf)
	do.ProvideValue(injector, ctx)
	defer func() {
		if err := injector.Shutdown(); err != nil {
			logger.Warn("Failed while shutting down", slogx.Error(err))
		}
	}()

	module, err := minter.New(injector)
	if err != nil {
		return errors.Wrap(err, "can't init minter module")
	}

	preview, err := module.Usecase().PlanMint(ctx, opts.TokenType, opts.SnapshotId, nil, opts.BatchSize)
	if err != nil {
		return errors.Wrap(err, "can't plan mint run")
	}

	plan := preview.Plan
	fmt.Printf("valid recipients:   %d\n", plan.ValidAddressCount)
	fmt.Printf("invalid recipients: %d\n", plan.InvalidAddressCount)
	fmt.Printf("batches:            %d\n", plan.TotalBatches)
	fmt.Printf("estimated fees:     %d lovelace\n", plan.EstimatedFeeLovelace)
	fmt.Printf("estimated min-utxo: %d lovelace\n", plan.EstimatedMinUtxoLovelace)
	fmt.Printf("estimated total:    %s ADA\n", plan.EstimatedTotalAda.String())
	fmt.Printf("estimated time:     %.1f minutes\n", plan.EstimatedTimeMinutes)
	fmt.Printf("wallet balance:     %d lovelace\n", preview.WalletBalanceLovelace)
	fmt.Printf("affordable:         %t\n", preview.Affordable)
	for _, invalid := range plan.InvalidRecipients {
		fmt.Printf("invalid recipient: %s\n", invalid.Address)
	}
	return nil
}
