package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/darcyabjones/acc-to-tax/src/accmap"
	"github.com/darcyabjones/acc-to-tax/src/logging"
)

type lookupResult struct {
	accmap.Record
	Name string `json:"name"`
}

func newLookupCmd(stdout io.Writer) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "lookup ACCESSION...",
		Short: "Look up accessions in the database and print their taxid and name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			st, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer st.Close()
			ctx := cmdContext(cmd)

			records, err := st.LookupAccessions(ctx, args)
			if err != nil {
				return err
			}
			if len(records) < len(args) {
				log := logging.Base()
				log.Warn().
					Int("requested", len(args)).
					Int("found", len(records)).
					Msg("some accessions were not found")
			}

			taxids := make([]int, 0, len(records))
			for _, r := range records {
				taxids = append(taxids, r.TaxID)
			}
			names, err := st.NamesByTaxids(ctx, taxids, []string{cfg.NameClass})
			if err != nil {
				return err
			}
			nameOf := make(map[int]string, len(names))
			for _, n := range names {
				if _, ok := nameOf[n.TaxID]; !ok {
					nameOf[n.TaxID] = n.Name
				}
			}

			results := make([]lookupResult, 0, len(records))
			for _, r := range records {
				results = append(results, lookupResult{Record: r, Name: nameOf[r.TaxID]})
			}

			switch output {
			case "json":
				enc := json.NewEncoder(stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			case "table", "":
				tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "ACCESSION\tVERSION\tTAXID\tGI\tNAME")
				for _, r := range results {
					fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", r.Accession, r.AccessionVersion, r.TaxID, r.GI, r.Name)
				}
				return tw.Flush()
			default:
				return fmt.Errorf("unsupported --output: %s", output)
			}
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table|json")
	return cmd
}
