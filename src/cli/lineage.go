package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/darcyabjones/acc-to-tax/src/taxa"
)

type lineageResult struct {
	TaxID   int         `json:"taxid"`
	Lineage []taxa.Rank `json:"lineage"`
}

func newLineageCmd(stdout io.Writer) *cobra.Command {
	var output string
	var nameClass string
	cmd := &cobra.Command{
		Use:   "lineage TAXID...",
		Short: "Print the root-to-leaf lineage of each taxid",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			if nameClass == "" {
				nameClass = cfg.NameClass
			}
			taxids := make([]int, 0, len(args))
			for _, a := range args {
				t, err := strconv.Atoi(a)
				if err != nil {
					return fmt.Errorf("taxid %q is not an integer", a)
				}
				taxids = append(taxids, t)
			}

			st, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer st.Close()
			ctx := cmdContext(cmd)

			results := make([]lineageResult, 0, len(taxids))
			for _, t := range taxids {
				lin, err := taxa.Lineage(ctx, st, t, nameClass)
				if err != nil {
					return err
				}
				results = append(results, lineageResult{TaxID: t, Lineage: lin})
			}

			switch output {
			case "json":
				enc := json.NewEncoder(stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			case "table", "":
				tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "QUERY\tTAXID\tRANK\tNAME")
				for _, res := range results {
					for _, r := range res.Lineage {
						fmt.Fprintf(tw, "%d\t%d\t%s\t%s\n", res.TaxID, r.TaxID, r.Rank, r.Name)
					}
				}
				return tw.Flush()
			default:
				return fmt.Errorf("unsupported --output: %s", output)
			}
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table|json")
	cmd.Flags().StringVar(&nameClass, "name-class", "", "Name class to report (default from config, usually 'scientific name')")
	return cmd
}
