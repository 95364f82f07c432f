package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/darcyabjones/acc-to-tax/src/logging"
	"github.com/darcyabjones/acc-to-tax/src/taxa"
)

func newTaxidsCmd(stdout io.Writer) *cobra.Command {
	var taxids []int
	var noChildren bool
	var parents bool
	cmd := &cobra.Command{
		Use:   "taxids",
		Short: "Expand a set of taxids to include descendants and/or ancestors",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(taxids) == 0 {
				return fmt.Errorf("at least one --taxid is required")
			}
			st, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer st.Close()

			expanded, err := taxa.Expand(cmdContext(cmd), st, logging.Base(), taxids, taxa.ExpandOptions{
				Children: !noChildren,
				Parents:  parents,
			})
			if err != nil {
				return err
			}
			for _, t := range expanded {
				fmt.Fprintln(stdout, t)
			}
			return nil
		},
	}
	cmd.Flags().IntSliceVarP(&taxids, "taxid", "t", nil, "Taxids to expand (repeatable)")
	cmd.Flags().BoolVarP(&noChildren, "no-children", "c", false, "Do not include descendant taxids")
	cmd.Flags().BoolVarP(&parents, "parents", "p", false, "Include ancestor taxids up to the root")
	return cmd
}
