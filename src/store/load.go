package store

import (
	"context"
	"database/sql"
	"io"
	"strconv"
	"strings"

	"github.com/darcyabjones/acc-to-tax/src/accmap"
	"github.com/darcyabjones/acc-to-tax/src/taxdump"
)

// Loading replaces the previous contents of each table inside the same
// transaction, so re-running build is idempotent instead of duplicating rows.
// Rows are buffered and written as multi-row INSERT statements; the batch
// size comes from Config.InsertBatch, capped so a statement never exceeds
// the bound-parameter limit.

// batchInserter accumulates rows for one table and flushes them as
// multi-row INSERT statements on the enclosing transaction.
type batchInserter struct {
	ctx    context.Context
	tx     *sql.Tx
	prefix string // e.g. "INSERT INTO merged (old_taxid, new_taxid) VALUES "
	row    string // "(?, ?)" for one row
	limit  int    // rows per statement
	args   []any
	rows   int
	total  int
}

func newBatchInserter(ctx context.Context, tx *sql.Tx, prefix string, ncols, batch int) *batchInserter {
	limit := maxBindParams / ncols
	if batch > 0 && batch < limit {
		limit = batch
	}
	if limit < 1 {
		limit = 1
	}
	return &batchInserter{
		ctx:    ctx,
		tx:     tx,
		prefix: prefix,
		row:    "(" + placeholders(ncols) + ")",
		limit:  limit,
	}
}

func (b *batchInserter) add(args ...any) error {
	b.args = append(b.args, args...)
	b.rows++
	b.total++
	if b.rows >= b.limit {
		return b.flush()
	}
	return nil
}

func (b *batchInserter) flush() error {
	if b.rows == 0 {
		return nil
	}
	rows := make([]string, b.rows)
	for i := range rows {
		rows[i] = b.row
	}
	_, err := b.tx.ExecContext(b.ctx, b.prefix+strings.Join(rows, ", "), b.args...)
	b.args = b.args[:0]
	b.rows = 0
	return err
}

func (s *Store) load(ctx context.Context, table, insertPrefix string, ncols int, stream func(add func(args ...any) error) error) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return 0, err
	}

	ins := newBatchInserter(ctx, tx, insertPrefix, ncols, s.insertBatch)
	if err := stream(ins.add); err != nil {
		return 0, err
	}
	if err := ins.flush(); err != nil {
		return 0, err
	}
	return ins.total, tx.Commit()
}

// LoadNodes replaces the nodes table with the records in r (nodes.dmp).
func (s *Store) LoadNodes(ctx context.Context, r io.Reader) (int, error) {
	const insert = `INSERT INTO nodes (
		taxid, parent_taxid, rank, embl_code, division_id, inherited_div_flag,
		genetic_code_id, inherited_gc_flag, mito_genetic_code_id,
		inherited_mgc_flag, genbank_hidden_flag, hidden_subtree_root_flag,
		comments
	) VALUES `
	return s.load(ctx, "nodes", insert, 13, func(add func(args ...any) error) error {
		return taxdump.ReadNodes(r, func(node taxdump.Node) error {
			return add(
				node.TaxID, node.ParentTaxID, node.Rank, node.EMBLCode,
				node.DivisionID, node.InheritedDivision, node.GeneticCodeID,
				node.InheritedGC, node.MitoGeneticCodeID, node.InheritedMGC,
				node.GenBankHidden, node.HiddenSubtreeRoot, node.Comments,
			)
		})
	})
}

// LoadNames replaces the names table with the records in r (names.dmp).
func (s *Store) LoadNames(ctx context.Context, r io.Reader) (int, error) {
	const insert = `INSERT INTO names (taxid, name, unique_name, name_class) VALUES `
	return s.load(ctx, "names", insert, 4, func(add func(args ...any) error) error {
		return taxdump.ReadNames(r, func(name taxdump.Name) error {
			return add(name.TaxID, name.Name, name.UniqueName, name.Class)
		})
	})
}

// LoadDivisions replaces the division table with the records in r (division.dmp).
func (s *Store) LoadDivisions(ctx context.Context, r io.Reader) (int, error) {
	const insert = `INSERT INTO division (division_id, division_cde, division_name, comments) VALUES `
	return s.load(ctx, "division", insert, 4, func(add func(args ...any) error) error {
		return taxdump.ReadDivisions(r, func(d taxdump.Division) error {
			return add(d.ID, d.Code, d.Name, d.Comments)
		})
	})
}

// LoadGenCodes replaces the gencode table with the records in r (gencode.dmp).
func (s *Store) LoadGenCodes(ctx context.Context, r io.Reader) (int, error) {
	const insert = `INSERT INTO gencode (code_id, abbreviation, name, cde, starts) VALUES `
	return s.load(ctx, "gencode", insert, 5, func(add func(args ...any) error) error {
		return taxdump.ReadGenCodes(r, func(g taxdump.GenCode) error {
			return add(g.ID, g.Abbreviation, g.Name, g.CDE, g.Starts)
		})
	})
}

// LoadMerged replaces the merged table with the records in r (merged.dmp).
func (s *Store) LoadMerged(ctx context.Context, r io.Reader) (int, error) {
	const insert = `INSERT INTO merged (old_taxid, new_taxid) VALUES `
	return s.load(ctx, "merged", insert, 2, func(add func(args ...any) error) error {
		return taxdump.ReadMerged(r, func(m taxdump.Merged) error {
			return add(m.OldTaxID, m.NewTaxID)
		})
	})
}

// LoadDelNodes replaces the delnodes table with the records in r (delnodes.dmp).
func (s *Store) LoadDelNodes(ctx context.Context, r io.Reader) (int, error) {
	const insert = `INSERT INTO delnodes (taxid) VALUES `
	return s.load(ctx, "delnodes", insert, 1, func(add func(args ...any) error) error {
		return taxdump.ReadDelNodes(r, func(d taxdump.DelNode) error {
			return add(d.TaxID)
		})
	})
}

// LoadCitations replaces the citations table with the records in r
// (citations.dmp). The taxid list is stored space separated as in the dump.
func (s *Store) LoadCitations(ctx context.Context, r io.Reader) (int, error) {
	const insert = `INSERT INTO citations (cit_id, cit_key, pubmed_id, medline_id, url, text, taxid_list) VALUES `
	return s.load(ctx, "citations", insert, 7, func(add func(args ...any) error) error {
		return taxdump.ReadCitations(r, func(c taxdump.Citation) error {
			ids := make([]string, 0, len(c.TaxIDs))
			for _, t := range c.TaxIDs {
				ids = append(ids, strconv.Itoa(t))
			}
			return add(c.ID, c.Key, c.PubMedID, c.MedlineID, c.URL, c.Text, strings.Join(ids, " "))
		})
	})
}

// LoadAccessions appends the records in r (an accession2taxid mapping file)
// to the acc2tax table. Unlike the dump loaders it does not clear the table,
// because the mapping is split over several files (nucl_gb, nucl_wgs, prot,
// ...) loaded in sequence; call ClearAccessions first for a fresh build.
func (s *Store) LoadAccessions(ctx context.Context, r io.Reader) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	const insert = `INSERT OR REPLACE INTO acc2tax (accession, accession_version, taxid, gi) VALUES `
	ins := newBatchInserter(ctx, tx, insert, 4, s.insertBatch)
	err = accmap.Read(r, func(rec accmap.Record) error {
		return ins.add(rec.Accession, rec.AccessionVersion, rec.TaxID, rec.GI)
	})
	if err != nil {
		return 0, err
	}
	if err := ins.flush(); err != nil {
		return 0, err
	}
	return ins.total, tx.Commit()
}

// ClearAccessions empties the acc2tax table.
func (s *Store) ClearAccessions(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM acc2tax")
	return err
}
