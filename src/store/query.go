package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/darcyabjones/acc-to-tax/src/accmap"
	"github.com/darcyabjones/acc-to-tax/src/taxdump"
)

// SQLite caps bound parameters per statement at 999, so IN() lists are
// chunked below that.
const maxBindParams = 900

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func chunkInts(vals []int, size int) [][]int {
	if size < 1 {
		size = 1
	}
	var out [][]int
	for i := 0; i < len(vals); i += size {
		j := i + size
		if j > len(vals) {
			j = len(vals)
		}
		out = append(out, vals[i:j])
	}
	return out
}

func intArgs(vals []int) []any {
	args := make([]any, len(vals))
	for i, v := range vals {
		args[i] = v
	}
	return args
}

const nodeColumns = `taxid, parent_taxid, rank, embl_code, division_id,
	inherited_div_flag, genetic_code_id, inherited_gc_flag,
	mito_genetic_code_id, inherited_mgc_flag, genbank_hidden_flag,
	hidden_subtree_root_flag, comments`

func scanNode(rows *sql.Rows) (taxdump.Node, error) {
	var n taxdump.Node
	err := rows.Scan(
		&n.TaxID, &n.ParentTaxID, &n.Rank, &n.EMBLCode, &n.DivisionID,
		&n.InheritedDivision, &n.GeneticCodeID, &n.InheritedGC,
		&n.MitoGeneticCodeID, &n.InheritedMGC, &n.GenBankHidden,
		&n.HiddenSubtreeRoot, &n.Comments,
	)
	return n, err
}

// Node fetches a single node by taxid. The second return is false when the
// taxid is not present.
func (s *Store) Node(ctx context.Context, taxid int) (taxdump.Node, bool, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+nodeColumns+" FROM nodes WHERE taxid = ?", taxid)
	if err != nil {
		return taxdump.Node{}, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return taxdump.Node{}, false, rows.Err()
	}
	n, err := scanNode(rows)
	if err != nil {
		return taxdump.Node{}, false, err
	}
	return n, true, rows.Err()
}

// NodesByTaxids fetches the nodes for the given taxids. Unknown taxids are
// silently absent from the result.
func (s *Store) NodesByTaxids(ctx context.Context, taxids []int) ([]taxdump.Node, error) {
	var out []taxdump.Node
	for _, chunk := range chunkInts(taxids, maxBindParams) {
		query := "SELECT " + nodeColumns + " FROM nodes WHERE taxid IN (" + placeholders(len(chunk)) + ")"
		rows, err := s.db.QueryContext(ctx, query, intArgs(chunk)...)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			n, err := scanNode(rows)
			if err != nil {
				rows.Close()
				return nil, err
			}
			out = append(out, n)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TaxID < out[j].TaxID })
	return out, nil
}

// Descendants returns every taxid below the given taxids, breadth first over
// parent_taxid. The input taxids themselves are not included. The walk keeps
// a seen set so it terminates even on degenerate parent cycles.
func (s *Store) Descendants(ctx context.Context, taxids []int) ([]int, error) {
	seen := make(map[int]bool, len(taxids))
	for _, t := range taxids {
		seen[t] = true
	}
	var out []int
	frontier := append([]int(nil), taxids...)
	for len(frontier) > 0 {
		var next []int
		for _, chunk := range chunkInts(frontier, maxBindParams) {
			query := "SELECT taxid FROM nodes WHERE parent_taxid IN (" + placeholders(len(chunk)) + ")"
			rows, err := s.db.QueryContext(ctx, query, intArgs(chunk)...)
			if err != nil {
				return nil, err
			}
			for rows.Next() {
				var t int
				if err := rows.Scan(&t); err != nil {
					rows.Close()
					return nil, err
				}
				if seen[t] {
					continue
				}
				seen[t] = true
				next = append(next, t)
				out = append(out, t)
			}
			if err := rows.Err(); err != nil {
				rows.Close()
				return nil, err
			}
			rows.Close()
		}
		frontier = next
	}
	sort.Ints(out)
	return out, nil
}

// Ancestors returns every taxid above the given taxids up to the root. The
// input taxids themselves are not included. The root node is its own parent
// in nodes.dmp, so the seen set is what stops the walk.
func (s *Store) Ancestors(ctx context.Context, taxids []int) ([]int, error) {
	seen := make(map[int]bool, len(taxids))
	for _, t := range taxids {
		seen[t] = true
	}
	var out []int
	frontier := append([]int(nil), taxids...)
	for len(frontier) > 0 {
		var next []int
		for _, chunk := range chunkInts(frontier, maxBindParams) {
			query := "SELECT DISTINCT parent_taxid FROM nodes WHERE taxid IN (" + placeholders(len(chunk)) + ")"
			rows, err := s.db.QueryContext(ctx, query, intArgs(chunk)...)
			if err != nil {
				return nil, err
			}
			for rows.Next() {
				var t int
				if err := rows.Scan(&t); err != nil {
					rows.Close()
					return nil, err
				}
				if seen[t] {
					continue
				}
				seen[t] = true
				next = append(next, t)
				out = append(out, t)
			}
			if err := rows.Err(); err != nil {
				rows.Close()
				return nil, err
			}
			rows.Close()
		}
		frontier = next
	}
	sort.Ints(out)
	return out, nil
}

// NamesByTaxids fetches names for the given taxids, optionally restricted to
// the given name classes (e.g. "scientific name").
func (s *Store) NamesByTaxids(ctx context.Context, taxids []int, classes []string) ([]taxdump.Name, error) {
	chunkSize := maxBindParams - len(classes)
	if chunkSize < 1 {
		return nil, fmt.Errorf("too many name classes: %d", len(classes))
	}
	var out []taxdump.Name
	for _, chunk := range chunkInts(taxids, chunkSize) {
		query := "SELECT taxid, name, unique_name, name_class FROM names WHERE taxid IN (" + placeholders(len(chunk)) + ")"
		args := intArgs(chunk)
		if len(classes) > 0 {
			query += " AND name_class IN (" + placeholders(len(classes)) + ")"
			for _, c := range classes {
				args = append(args, c)
			}
		}
		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var n taxdump.Name
			if err := rows.Scan(&n.TaxID, &n.Name, &n.UniqueName, &n.Class); err != nil {
				rows.Close()
				return nil, err
			}
			out = append(out, n)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TaxID != out[j].TaxID {
			return out[i].TaxID < out[j].TaxID
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// ResolveMerged maps each input taxid that has been merged away to its
// replacement. Taxids without a merged entry are absent from the result.
func (s *Store) ResolveMerged(ctx context.Context, taxids []int) (map[int]int, error) {
	out := make(map[int]int)
	for _, chunk := range chunkInts(taxids, maxBindParams) {
		query := "SELECT old_taxid, new_taxid FROM merged WHERE old_taxid IN (" + placeholders(len(chunk)) + ")"
		rows, err := s.db.QueryContext(ctx, query, intArgs(chunk)...)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var oldID, newID int
			if err := rows.Scan(&oldID, &newID); err != nil {
				rows.Close()
				return nil, err
			}
			out[oldID] = newID
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return out, nil
}

// Deleted returns the subset of the given taxids recorded in delnodes.
func (s *Store) Deleted(ctx context.Context, taxids []int) ([]int, error) {
	var out []int
	for _, chunk := range chunkInts(taxids, maxBindParams) {
		query := "SELECT taxid FROM delnodes WHERE taxid IN (" + placeholders(len(chunk)) + ")"
		rows, err := s.db.QueryContext(ctx, query, intArgs(chunk)...)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var t int
			if err := rows.Scan(&t); err != nil {
				rows.Close()
				return nil, err
			}
			out = append(out, t)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	sort.Ints(out)
	return out, nil
}

// LookupAccessions fetches mapping records matching either the bare
// accession or the versioned accession.
func (s *Store) LookupAccessions(ctx context.Context, accessions []string) ([]accmap.Record, error) {
	var out []accmap.Record
	for i := 0; i < len(accessions); i += maxBindParams / 2 {
		j := i + maxBindParams/2
		if j > len(accessions) {
			j = len(accessions)
		}
		chunk := accessions[i:j]
		ph := placeholders(len(chunk))
		query := "SELECT accession, accession_version, taxid, gi FROM acc2tax" +
			" WHERE accession IN (" + ph + ") OR accession_version IN (" + ph + ")"
		args := make([]any, 0, 2*len(chunk))
		for _, a := range chunk {
			args = append(args, a)
		}
		for _, a := range chunk {
			args = append(args, a)
		}
		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var r accmap.Record
			if err := rows.Scan(&r.Accession, &r.AccessionVersion, &r.TaxID, &r.GI); err != nil {
				rows.Close()
				return nil, err
			}
			out = append(out, r)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccessionVersion < out[j].AccessionVersion })
	return out, nil
}

// TableCount is one row of the info summary.
type TableCount struct {
	Table string `json:"table"`
	Rows  int64  `json:"rows"`
}

// Tables lists the schema tables in load order.
var Tables = []string{
	"nodes", "names", "division", "gencode", "merged", "delnodes",
	"citations", "acc2tax",
}

// TableCounts reports the row count of every table.
func (s *Store) TableCounts(ctx context.Context) ([]TableCount, error) {
	out := make([]TableCount, 0, len(Tables))
	for _, table := range Tables {
		var n int64
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, TableCount{Table: table, Rows: n})
	}
	return out, nil
}

// HasNodes reports whether the nodes table contains any rows, used to decide
// whether a build would overwrite existing data.
func (s *Store) HasNodes(ctx context.Context) (bool, error) {
	return s.hasRows(ctx, "nodes")
}

// HasAccessions reports whether the acc2tax table contains any rows.
func (s *Store) HasAccessions(ctx context.Context) (bool, error) {
	return s.hasRows(ctx, "acc2tax")
}

func (s *Store) hasRows(ctx context.Context, table string) (bool, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}
