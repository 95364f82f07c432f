package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/darcyabjones/acc-to-tax/src/accmap"
	"github.com/darcyabjones/acc-to-tax/src/logging"
	"github.com/darcyabjones/acc-to-tax/src/safety"
	"github.com/darcyabjones/acc-to-tax/src/store"
	"github.com/darcyabjones/acc-to-tax/src/util/progress"
)

// dumpLoaders pairs each taxdump file with its loader. The first three are
// required; the rest are loaded when present.
type dumpLoader struct {
	file     string
	required bool
	load     func(*store.Store, context.Context, io.Reader) (int, error)
}

var dumpLoaders = []dumpLoader{
	{"nodes.dmp", true, func(s *store.Store, ctx context.Context, r io.Reader) (int, error) { return s.LoadNodes(ctx, r) }},
	{"names.dmp", true, func(s *store.Store, ctx context.Context, r io.Reader) (int, error) { return s.LoadNames(ctx, r) }},
	{"division.dmp", true, func(s *store.Store, ctx context.Context, r io.Reader) (int, error) { return s.LoadDivisions(ctx, r) }},
	{"gencode.dmp", false, func(s *store.Store, ctx context.Context, r io.Reader) (int, error) { return s.LoadGenCodes(ctx, r) }},
	{"merged.dmp", false, func(s *store.Store, ctx context.Context, r io.Reader) (int, error) { return s.LoadMerged(ctx, r) }},
	{"delnodes.dmp", false, func(s *store.Store, ctx context.Context, r io.Reader) (int, error) { return s.LoadDelNodes(ctx, r) }},
	{"citations.dmp", false, func(s *store.Store, ctx context.Context, r io.Reader) (int, error) { return s.LoadCitations(ctx, r) }},
}

func newBuildCmd(stdout, stderr io.Writer) *cobra.Command {
	var taxdumpDir string
	var accFiles []string
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the taxonomy database from an extracted taxdump directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.Base()
			if taxdumpDir == "" && len(accFiles) == 0 {
				return fmt.Errorf("nothing to load: provide --taxdump and/or --acc2taxid")
			}

			var planned []dumpLoader
			if taxdumpDir != "" {
				for _, dl := range dumpLoaders {
					path := filepath.Join(taxdumpDir, dl.file)
					if _, err := os.Stat(path); err != nil {
						if dl.required {
							return fmt.Errorf("taxdump file missing: %s", path)
						}
						log.Debug().Str("file", path).Msg("optional dump file not present, skipping")
						continue
					}
					planned = append(planned, dl)
				}
			}

			opts := getSafetyOptions(cmd)
			if opts.DryRun {
				for _, dl := range planned {
					fmt.Fprintf(stdout, "would load %s\n", filepath.Join(taxdumpDir, dl.file))
				}
				for _, f := range accFiles {
					fmt.Fprintf(stdout, "would load %s\n", f)
				}
				return nil
			}

			st, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer st.Close()
			ctx := cmdContext(cmd)

			// Reloading replaces data, so a populated database needs a
			// confirmation whichever side of it the build touches.
			overwrite := false
			if taxdumpDir != "" {
				populated, err := st.HasNodes(ctx)
				if err != nil {
					return err
				}
				overwrite = overwrite || populated
			}
			if len(accFiles) > 0 {
				hasAcc, err := st.HasAccessions(ctx)
				if err != nil {
					return err
				}
				overwrite = overwrite || hasAcc
			}
			if overwrite {
				ok, err := safety.Confirm(opts, os.Stdin, stderr,
					"Database already contains data; reload and replace it?")
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("aborted")
				}
			}

			total := len(planned) + len(accFiles)
			step := 0
			for _, dl := range planned {
				step++
				path := filepath.Join(taxdumpDir, dl.file)
				fmt.Fprintf(stdout, "[%d/%d] Loading %s\n", step, total, path)
				n, err := loadDumpFile(ctx, st, dl, path, stderr, isQuiet(cmd))
				if err != nil {
					return fmt.Errorf("load %s: %w", path, err)
				}
				log.Info().Str("file", dl.file).Int("records", n).Msg("loaded")
			}

			if len(accFiles) > 0 {
				if err := st.ClearAccessions(ctx); err != nil {
					return err
				}
			}
			for _, f := range accFiles {
				step++
				fmt.Fprintf(stdout, "[%d/%d] Loading %s\n", step, total, f)
				rc, err := accmap.Open(f)
				if err != nil {
					return err
				}
				n, err := st.LoadAccessions(ctx, rc)
				rc.Close()
				if err != nil {
					return fmt.Errorf("load %s: %w", f, err)
				}
				log.Info().Str("file", f).Int("records", n).Msg("loaded accessions")
			}

			fmt.Fprintln(stdout, "Done")
			return nil
		},
	}
	cmd.Flags().StringVarP(&taxdumpDir, "taxdump", "t", "", "Directory containing the extracted taxdump files")
	cmd.Flags().StringSliceVarP(&accFiles, "acc2taxid", "a", nil, "accession2taxid mapping files to load (.gz accepted, repeatable)")
	return cmd
}

func loadDumpFile(ctx context.Context, st *store.Store, dl dumpLoader, path string, stderr io.Writer, quiet bool) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var r io.Reader = f
	if !quiet {
		size := int64(0)
		if info, err := f.Stat(); err == nil {
			size = info.Size()
		}
		r = progress.NewReader(f, size, dl.file, stderr)
	}
	return dl.load(st, ctx, r)
}
