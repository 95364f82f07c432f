package store_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darcyabjones/acc-to-tax/src/store"
	"github.com/darcyabjones/acc-to-tax/src/taxdump"
)

func dmpLines(records ...[]string) string {
	var b strings.Builder
	for _, fields := range records {
		b.WriteString(taxdump.JoinRecord(fields, taxdump.DumpSep, taxdump.DumpEnd))
	}
	return b.String()
}

// A small tree: root(1) -> Bacteria(2) -> Proteobacteria(1224) ->
// Gammaproteobacteria(1236) -> Escherichia(561) -> E. coli(562), with
// Eukaryota(2759) as a sibling branch.
func sampleNodes() string {
	return dmpLines(
		[]string{"1", "1", "no rank", "", "8", "0", "1", "0", "0", "0", "0", "0", ""},
		[]string{"2", "1", "superkingdom", "", "0", "0", "11", "0", "0", "0", "0", "0", ""},
		[]string{"1224", "2", "phylum", "", "0", "1", "11", "1", "0", "1", "0", "0", ""},
		[]string{"1236", "1224", "class", "", "0", "1", "11", "1", "0", "1", "0", "0", ""},
		[]string{"561", "1236", "genus", "", "0", "1", "11", "1", "0", "1", "0", "0", ""},
		[]string{"562", "561", "species", "EC", "0", "1", "11", "1", "0", "1", "1", "0", ""},
		[]string{"2759", "1", "superkingdom", "", "8", "0", "1", "0", "1", "0", "0", "0", ""},
	)
}

func sampleNames() string {
	return dmpLines(
		[]string{"1", "root", "", "scientific name"},
		[]string{"2", "Bacteria", "", "scientific name"},
		[]string{"2", "eubacteria", "", "synonym"},
		[]string{"1224", "Proteobacteria", "", "scientific name"},
		[]string{"1236", "Gammaproteobacteria", "", "scientific name"},
		[]string{"561", "Escherichia", "", "scientific name"},
		[]string{"562", "Escherichia coli", "", "scientific name"},
		[]string{"562", "E. coli", "", "common name"},
		[]string{"2759", "Eukaryota", "", "scientific name"},
	)
}

func sampleDivisions() string {
	return dmpLines(
		[]string{"0", "BCT", "Bacteria", ""},
		[]string{"8", "UNA", "Unassigned", "No species nodes should inherit this division assignment"},
	)
}

const sampleAccessions = "accession\taccession.version\ttaxid\tgi\n" +
	"A00001\tA00001.1\t562\t100\n" +
	"A00002\tA00002.1\t1224\t101\n" +
	"A00003\tA00003.1\t2759\t102\n"

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "db.sqlite"), store.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func newPopulatedStore(t *testing.T) *store.Store {
	t.Helper()
	st := newTestStore(t)
	ctx := context.Background()

	n, err := st.LoadNodes(ctx, strings.NewReader(sampleNodes()))
	require.NoError(t, err)
	require.Equal(t, 7, n)

	n, err = st.LoadNames(ctx, strings.NewReader(sampleNames()))
	require.NoError(t, err)
	require.Equal(t, 9, n)

	n, err = st.LoadDivisions(ctx, strings.NewReader(sampleDivisions()))
	require.NoError(t, err)
	require.Equal(t, 2, n)

	_, err = st.LoadMerged(ctx, strings.NewReader(dmpLines([]string{"666", "562"})))
	require.NoError(t, err)

	_, err = st.LoadDelNodes(ctx, strings.NewReader(dmpLines([]string{"999"})))
	require.NoError(t, err)

	n, err = st.LoadAccessions(ctx, strings.NewReader(sampleAccessions))
	require.NoError(t, err)
	require.Equal(t, 3, n)

	return st
}

func TestNodesByTaxids(t *testing.T) {
	st := newPopulatedStore(t)

	nodes, err := st.NodesByTaxids(context.Background(), []int{1224, 562, 31337})
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	assert.Equal(t, 562, nodes[0].TaxID)
	assert.Equal(t, "EC", nodes[0].EMBLCode)
	assert.True(t, nodes[0].GenBankHidden)

	assert.Equal(t, 1224, nodes[1].TaxID)
	assert.Equal(t, 2, nodes[1].ParentTaxID)
	assert.Equal(t, "phylum", nodes[1].Rank)
	assert.True(t, nodes[1].InheritedDivision)
}

func TestNode_Single(t *testing.T) {
	st := newPopulatedStore(t)

	node, ok, err := st.Node(context.Background(), 561)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "genus", node.Rank)

	_, ok, err = st.Node(context.Background(), 31337)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDescendants(t *testing.T) {
	st := newPopulatedStore(t)

	got, err := st.Descendants(context.Background(), []int{2})
	require.NoError(t, err)
	assert.Equal(t, []int{561, 562, 1224, 1236}, got)
}

func TestDescendants_Leaf(t *testing.T) {
	st := newPopulatedStore(t)

	got, err := st.Descendants(context.Background(), []int{562})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDescendants_RootSelfParentTerminates(t *testing.T) {
	st := newPopulatedStore(t)

	// The root is its own parent, so walking down from it must not loop.
	got, err := st.Descendants(context.Background(), []int{1})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 561, 562, 1224, 1236, 2759}, got)
}

func TestAncestors(t *testing.T) {
	st := newPopulatedStore(t)

	got, err := st.Ancestors(context.Background(), []int{562})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 561, 1224, 1236}, got)
}

func TestNamesByTaxids_ClassFilter(t *testing.T) {
	st := newPopulatedStore(t)
	ctx := context.Background()

	all, err := st.NamesByTaxids(ctx, []int{562}, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	sci, err := st.NamesByTaxids(ctx, []int{562}, []string{"scientific name"})
	require.NoError(t, err)
	require.Len(t, sci, 1)
	assert.Equal(t, "Escherichia coli", sci[0].Name)
}

func TestNamesByTaxids_TooManyClasses(t *testing.T) {
	st := newPopulatedStore(t)

	// A class list at or above the bind-parameter cap leaves no room for
	// taxid placeholders and must be rejected rather than looping.
	classes := make([]string, 900)
	for i := range classes {
		classes[i] = "class"
	}
	_, err := st.NamesByTaxids(context.Background(), []int{562}, classes)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name classes")
}

func TestResolveMerged(t *testing.T) {
	st := newPopulatedStore(t)

	got, err := st.ResolveMerged(context.Background(), []int{666, 562})
	require.NoError(t, err)
	assert.Equal(t, map[int]int{666: 562}, got)
}

func TestDeleted(t *testing.T) {
	st := newPopulatedStore(t)

	got, err := st.Deleted(context.Background(), []int{999, 562})
	require.NoError(t, err)
	assert.Equal(t, []int{999}, got)
}

func TestLookupAccessions(t *testing.T) {
	st := newPopulatedStore(t)
	ctx := context.Background()

	// Bare accession and versioned accession both match.
	recs, err := st.LookupAccessions(ctx, []string{"A00001", "A00002.1"})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, 562, recs[0].TaxID)
	assert.Equal(t, 1224, recs[1].TaxID)

	recs, err = st.LookupAccessions(ctx, []string{"NOPE"})
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestTableCountsAndHasNodes(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	has, err := st.HasNodes(ctx)
	require.NoError(t, err)
	assert.False(t, has)

	_, err = st.LoadNodes(ctx, strings.NewReader(sampleNodes()))
	require.NoError(t, err)

	has, err = st.HasNodes(ctx)
	require.NoError(t, err)
	assert.True(t, has)

	counts, err := st.TableCounts(ctx)
	require.NoError(t, err)
	require.Len(t, counts, len(store.Tables))
	assert.Equal(t, "nodes", counts[0].Table)
	assert.EqualValues(t, 7, counts[0].Rows)
}

func TestLoadNodes_ReloadReplaces(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.LoadNodes(ctx, strings.NewReader(sampleNodes()))
	require.NoError(t, err)
	_, err = st.LoadNodes(ctx, strings.NewReader(sampleNodes()))
	require.NoError(t, err)

	counts, err := st.TableCounts(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 7, counts[0].Rows)
}

func TestLoadNodes_SmallInsertBatch(t *testing.T) {
	cfg := store.DefaultConfig()
	cfg.InsertBatch = 2
	st, err := store.Open(filepath.Join(t.TempDir(), "db.sqlite"), cfg)
	require.NoError(t, err)
	defer st.Close()
	ctx := context.Background()

	// Seven rows with a batch of two exercises both full and partial
	// batches; every row must still land.
	n, err := st.LoadNodes(ctx, strings.NewReader(sampleNodes()))
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	node, ok, err := st.Node(ctx, 2759)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "superkingdom", node.Rank)
}

func TestHasAccessions(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	has, err := st.HasAccessions(ctx)
	require.NoError(t, err)
	assert.False(t, has)

	_, err = st.LoadAccessions(ctx, strings.NewReader(sampleAccessions))
	require.NoError(t, err)

	has, err = st.HasAccessions(ctx)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestLoadCitations(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	input := dmpLines([]string{"7", "key1", "12345", "0", "", `two\nlines`, "1 562"})
	n, err := st.LoadCitations(ctx, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestLoadGenCodes(t *testing.T) {
	st := newTestStore(t)

	input := dmpLines(
		[]string{"1", "", "Standard", "", "---M---------------M"},
	)
	n, err := st.LoadGenCodes(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestOpen_InMemory(t *testing.T) {
	st, err := store.Open(":memory:", store.DefaultConfig())
	require.NoError(t, err)
	defer st.Close()

	_, err = st.LoadNodes(context.Background(), strings.NewReader(sampleNodes()))
	require.NoError(t, err)
}
