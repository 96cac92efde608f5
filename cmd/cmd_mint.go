package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/questline/mint-console/common/errs"
	"github.com/questline/mint-console/internal/config"
	"github.com/questline/mint-console/modules/minter"
	"github.com/questline/mint-console/modules/minter/entity"
	"github.com/questline/mint-console/modules/minter/usecase"
	"github.com/questline/mint-console/pkg/logger"
	"github.com/questline/mint-console/pkg/logger/slogx"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
)

type mintCmdOptions struct {
	TokenType  string
	SnapshotId string
	BatchSize  int
}

func NewMintCommand() *cobra.Command {
	opts := &mintCmdOptions{}

	mintCmd := &cobra.Command{
		Use:   "mint",
		Short: "Execute a batch mint run from the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return mintHandler(opts, cmd, args)
		},
	}

	flags := mintCmd.Flags()
	flags.StringVar(&opts.TokenType, "token-type", "", "Token type (design) to mint")
	flags.StringVar(&opts.SnapshotId, "snapshot", "", "Eligibility snapshot id to mint for")
	flags.IntVar(&opts.BatchSize, "batch-size", 0, "Recipients per transaction. 0 uses the configured default")

	return mintCmd
}

func mintHandler(opts *mintCmdOptions, cmd *cobra.Command, _ []string) error {
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

	// Signal context requests stop-after-current-batch; the run itself keeps
	// its own context so the in-flight batch is never cut mid-submission.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runCtx := logger.WithContext(context.Background(),
		slogx.Stringer("network", conf.Network),
		slogx.String("token_type", opts.TokenType),
	)

	injector := do.New()
	do.ProvideValue(injector, conf)
	do.ProvideValue(injector, runCtx)
	defer func() {
		if err := injector.Shutdown(); err != nil {
			logger.Warn("Failed while shutting down", slogx.Error(err))
		}
	}()

	module, err := minter.New(injector)
	if err != nil {
		return errors.Wrap(err, "can't init minter module")
	}

	stopFlag := entity.NewStopFlag()
	go func() {
		<-ctx.Done()
		logger.InfoContext(runCtx, "Stop requested, run will halt after the current batch")
		stopFlag.Stop()
	}()

	events := make(chan entity.ProgressEvent, 64)
	go func() {
		for event := range events {
			logger.InfoContext(runCtx, "Mint run progress",
				slogx.String("state", string(event.State)),
				slogx.String("stage", string(event.Stage)),
				slogx.Int("batch", event.CurrentBatch),
				slogx.Int("total_batches", event.TotalBatches),
				slogx.Int("minted", event.Current),
				slogx.Int("total", event.Total),
				slogx.String("status", event.Status),
			)
		}
	}()

	summary, err := module.Usecase().ExecuteMintRun(runCtx, usecase.RunOptions{
		TokenType:  opts.TokenType,
		SnapshotId: opts.SnapshotId,
		BatchSize:  opts.BatchSize,
		Events:     events,
		Stop:       stopFlag,
	})
	close(events)
	if err != nil {
		return errors.Wrap(err, "mint run aborted")
	}

	fmt.Printf("success: %t\n", summary.Success)
	fmt.Printf("minted:  %d\n", summary.TotalMinted)
	fmt.Printf("failed:  %d\n", summary.TotalFailed)
	for _, txHash := range summary.TransactionHashes {
		fmt.Printf("tx: %s\n", txHash)
	}
	for _, address := range summary.FailedAddresses {
		fmt.Printf("failed recipient: %s\n", address)
	}
	return nil
}
