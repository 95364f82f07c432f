// Package taxa implements taxid set operations on top of the store: closure
// expansion over the taxonomy tree and lineage reconstruction.
package taxa

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/darcyabjones/acc-to-tax/src/store"
	"github.com/darcyabjones/acc-to-tax/src/taxdump"
)

// ScientificName is the name class carrying the canonical name of a node.
const ScientificName = "scientific name"

// ExpandOptions controls which closures Expand unions into its result.
type ExpandOptions struct {
	// Children includes every descendant of the input taxids.
	Children bool
	// Parents includes every ancestor up to the root.
	Parents bool
}

// Expand resolves merged taxids to their replacements, drops taxids unknown
// to the database (logging each), and returns the input taxids together with
// the requested closures, sorted and de-duplicated. Taxids recorded as
// deleted are an error rather than a silent drop.
func Expand(ctx context.Context, st *store.Store, log zerolog.Logger, taxids []int, opts ExpandOptions) ([]int, error) {
	merged, err := st.ResolveMerged(ctx, taxids)
	if err != nil {
		return nil, err
	}
	resolved := make([]int, 0, len(taxids))
	for _, t := range taxids {
		if newID, ok := merged[t]; ok {
			log.Debug().Int("old", t).Int("new", newID).Msg("taxid was merged")
			t = newID
		}
		resolved = append(resolved, t)
	}

	deleted, err := st.Deleted(ctx, resolved)
	if err != nil {
		return nil, err
	}
	if len(deleted) > 0 {
		return nil, fmt.Errorf("taxid %d has been deleted from the taxonomy", deleted[0])
	}

	nodes, err := st.NodesByTaxids(ctx, resolved)
	if err != nil {
		return nil, err
	}
	found := make(map[int]bool, len(nodes))
	base := make([]int, 0, len(nodes))
	for _, n := range nodes {
		if !found[n.TaxID] {
			found[n.TaxID] = true
			base = append(base, n.TaxID)
		}
	}
	for _, t := range resolved {
		if !found[t] {
			log.Warn().Int("taxid", t).Msg("taxid not in database, skipping")
		}
	}

	set := make(map[int]bool, len(base))
	for _, t := range base {
		set[t] = true
	}

	if opts.Children {
		children, err := st.Descendants(ctx, base)
		if err != nil {
			return nil, err
		}
		for _, t := range children {
			set[t] = true
		}
	}
	if opts.Parents {
		parents, err := st.Ancestors(ctx, base)
		if err != nil {
			return nil, err
		}
		for _, t := range parents {
			set[t] = true
		}
	}

	out := make([]int, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Ints(out)
	return out, nil
}

// Rank is one step of a lineage.
type Rank struct {
	TaxID int    `json:"taxid"`
	Rank  string `json:"rank"`
	Name  string `json:"name"`
}

// Lineage returns the chain from the root down to the given taxid, with the
// name of each node in the given name class (blank when the node has none).
func Lineage(ctx context.Context, st *store.Store, taxid int, nameClass string) ([]Rank, error) {
	var chain []taxdump.Node
	seen := make(map[int]bool)
	current := taxid
	for {
		node, ok, err := st.Node(ctx, current)
		if err != nil {
			return nil, err
		}
		if !ok {
			if current == taxid {
				return nil, fmt.Errorf("taxid %d not found", taxid)
			}
			return nil, fmt.Errorf("taxid %d: broken lineage, parent %d not found", taxid, current)
		}
		chain = append(chain, node)
		seen[current] = true
		if node.ParentTaxID == current || seen[node.ParentTaxID] {
			break
		}
		current = node.ParentTaxID
	}

	taxids := make([]int, len(chain))
	for i, n := range chain {
		taxids[i] = n.TaxID
	}
	names, err := st.NamesByTaxids(ctx, taxids, []string{nameClass})
	if err != nil {
		return nil, err
	}
	byTaxid := make(map[int]string, len(names))
	for _, n := range names {
		if _, ok := byTaxid[n.TaxID]; !ok {
			byTaxid[n.TaxID] = n.Name
		}
	}

	out := make([]Rank, 0, len(chain))
	for i := len(chain) - 1; i >= 0; i-- {
		n := chain[i]
		out = append(out, Rank{TaxID: n.TaxID, Rank: n.Rank, Name: byTaxid[n.TaxID]})
	}
	return out, nil
}
