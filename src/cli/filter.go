package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/darcyabjones/acc-to-tax/src/accmap"
	"github.com/darcyabjones/acc-to-tax/src/logging"
	"github.com/darcyabjones/acc-to-tax/src/taxa"
)

func newFilterCmd(stdout io.Writer) *cobra.Command {
	var files []string
	var taxids []int
	var noChildren bool
	var parents bool
	var inverse bool
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Print accessions from accession2taxid files whose taxid falls under the given taxids",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(files) == 0 {
				return fmt.Errorf("at least one --file is required")
			}
			if len(taxids) == 0 {
				return fmt.Errorf("at least one --taxid is required")
			}
			st, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer st.Close()

			log := logging.Base()
			expanded, err := taxa.Expand(cmdContext(cmd), st, log, taxids, taxa.ExpandOptions{
				Children: !noChildren,
				Parents:  parents,
			})
			if err != nil {
				return err
			}
			keep := make(map[int]bool, len(expanded))
			for _, t := range expanded {
				keep[t] = true
			}

			n, err := accmap.Filter(files, keep, accmap.FilterOptions{Inverse: inverse}, stdout)
			if err != nil {
				return err
			}
			log.Info().Int("taxids", len(expanded)).Int("accessions", n).Msg("filter complete")
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&files, "file", "f", nil, "accession2taxid files to filter (.gz accepted, repeatable)")
	cmd.Flags().IntSliceVarP(&taxids, "taxid", "t", nil, "Taxids to keep (repeatable)")
	cmd.Flags().BoolVarP(&noChildren, "no-children", "c", false, "Do not include descendant taxids")
	cmd.Flags().BoolVarP(&parents, "parents", "p", false, "Include ancestor taxids up to the root")
	cmd.Flags().BoolVarP(&inverse, "inverse", "v", false, "Print accessions NOT under the given taxids")
	return cmd
}
