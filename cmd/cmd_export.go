package cmd

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/questline/mint-console/common/errs"
	"github.com/questline/mint-console/internal/config"
	"github.com/questline/mint-console/modules/minter"
	"github.com/questline/mint-console/modules/minter/usecase"
	"github.com/questline/mint-console/pkg/logger"
	"github.com/questline/mint-console/pkg/logger/slogx"
	"github.com/samber/do/v2"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

type exportCmdOptions struct {
	Format    string
	TokenType string
	Output    string
}

func NewExportCommand() *cobra.Command {
	opts := &exportCmdOptions{}

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export the mint ledger as CSV or parquet",
		RunE: func(cmd *cobra.Command, args []string) error {
			return exportHandler(opts, cmd, args)
		},
	}

	flags := exportCmd.Flags()
	flags.StringVar(&opts.Format, "format", usecase.ExportFormatCSV, `Export format: "csv" | "parquet"`)
	flags.StringVar(&opts.TokenType, "token-type", "", "Restrict the export to one token type. Empty exports the whole ledger")
	flags.StringVar(&opts.Output, "output", "-", `Output file. "-" writes to stdout`)

	return exportCmd
}

func exportHandler(opts *exportCmdOptions, cmd *cobra.Command, _ []string) error {
	conf := config.Load()

	// Validate inputs and configurations
	{
		if !conf.Network.IsSupported() {
			return errors.Wrapf(errs.Unsupported, "%q network is not supported", conf.Network.String())
		}
		if !lo.Contains([]string{usecase.ExportFormatCSV, usecase.ExportFormatParquet}, opts.Format) {
			return errors.Wrapf(errs.Unsupported, "%q export format is not supported", opts.Format)
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

	var out io.Writer = os.Stdout
	if opts.Output != "-" {
		file, err := os.Create(opts.Output)
		if err != nil {
			return errors.Wrapf(err, "can't create output file %q", opts.Output)
		}
		defer func() {
			if err := file.Close(); err != nil {
				logger.Warn("Failed to close output file", slogx.Error(err))
			}
		}()
		out = file
	}

	if err := module.Usecase().ExportLedger(ctx, opts.Format, opts.TokenType, out); err != nil {
		return errors.Wrap(err, "can't export mint ledger")
	}
	return nil
}
