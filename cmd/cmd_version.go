package cmd

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/questline/mint-console/common/errs"
	"github.com/questline/mint-console/modules/minter"
	"github.com/spf13/cobra"
)

const version = "v0.1.0"

var versions = map[string]string{
	"":       version,
	"minter": minter.Version,
}

type versionCmdOptions struct {
	Module string
}

func NewVersionCommand() *cobra.Command {
	opts := &versionCmdOptions{}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show mint-console version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return versionHandler(opts, cmd, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Module, "module", "", `Show version of a specific module. E.g. "minter"`)

	return cmd
}

func versionHandler(opts *versionCmdOptions, _ *cobra.Command, _ []string) error {
	v, ok := versions[opts.Module]
	if !ok {
		return errors.Wrap(errs.Unsupported, "invalid module name")
	}
	fmt.Println(v)
	return nil
}
