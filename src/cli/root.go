package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/darcyabjones/acc-to-tax/src/dbtarget"
	"github.com/darcyabjones/acc-to-tax/src/logging"
	"github.com/darcyabjones/acc-to-tax/src/store"
)

// NewRootCmd returns the root cobra command for the acc2tax CLI.
func NewRootCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "acc2tax",
		Short: "Build and query an NCBI taxonomy database from taxdump and accession2taxid files",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			logging.Configure(logging.Config{
				Level:  cfg.LogLevel,
				Quiet:  isQuiet(cmd),
				Output: cmd.ErrOrStderr(),
			})
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	addGlobalFlags(cmd)

	cmd.AddCommand(newVersionCmd(stdout))
	cmd.AddCommand(newBuildCmd(stdout, stderr))
	cmd.AddCommand(newTaxidsCmd(stdout))
	cmd.AddCommand(newFilterCmd(stdout))
	cmd.AddCommand(newLookupCmd(stdout))
	cmd.AddCommand(newLineageCmd(stdout))
	cmd.AddCommand(newInfoCmd(stdout))

	return cmd
}

// Execute runs the CLI with the process stdio.
func Execute() int {
	root := NewRootCmd(os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// openStore resolves the database target and opens the store.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, err
	}
	tgt, err := dbtarget.Parse(cfg.DB)
	if err != nil {
		return nil, err
	}
	sc := store.DefaultConfig()
	sc.InsertBatch = cfg.BatchSize
	return store.Open(tgt.Path, sc)
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
