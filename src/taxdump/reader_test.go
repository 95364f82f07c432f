package taxdump_test

import (
	"strings"
	"testing"

	"github.com/darcyabjones/acc-to-tax/src/taxdump"
)

func dmpLines(records ...[]string) string {
	var b strings.Builder
	for _, fields := range records {
		b.WriteString(taxdump.JoinRecord(fields, taxdump.DumpSep, taxdump.DumpEnd))
	}
	return b.String()
}

func TestReadNodes(t *testing.T) {
	input := dmpLines(
		[]string{"1", "1", "no rank", "", "8", "0", "1", "0", "0", "0", "0", "0", ""},
		[]string{"2", "1", "superkingdom", "", "0", "0", "11", "0", "0", "0", "0", "0", ""},
		[]string{"1224", "2", "phylum", "", "0", "1", "11", "1", "0", "1", "0", "0", ""},
	)
	var nodes []taxdump.Node
	err := taxdump.ReadNodes(strings.NewReader(input), func(n taxdump.Node) error {
		nodes = append(nodes, n)
		return nil
	})
	if err != nil {
		t.Fatalf("ReadNodes: %v", err)
	}
	if len(nodes) != 3 {
		t.Fatalf("got %d nodes, want 3", len(nodes))
	}
	got := nodes[2]
	if got.TaxID != 1224 || got.ParentTaxID != 2 || got.Rank != "phylum" {
		t.Fatalf("node = %+v, want taxid 1224 parent 2 rank phylum", got)
	}
	if !got.InheritedDivision || !got.InheritedGC || !got.InheritedMGC {
		t.Fatalf("inherited flags not parsed: %+v", got)
	}
	if got.GenBankHidden {
		t.Fatalf("genbank_hidden_flag = true, want false")
	}
}

func TestReadNodes_BadColumnCount(t *testing.T) {
	input := dmpLines([]string{"1", "1", "no rank"})
	err := taxdump.ReadNodes(strings.NewReader(input), func(taxdump.Node) error { return nil })
	if err == nil {
		t.Fatalf("expected error for truncated record")
	}
	if !strings.Contains(err.Error(), "line 1") {
		t.Fatalf("error %q does not name the line", err)
	}
}

func TestNodeFields_RoundTrip(t *testing.T) {
	fields := []string{"562", "561", "species", "EC", "0", "1", "11", "1", "0", "1", "1", "0", "model organism"}
	input := dmpLines(fields)
	var node taxdump.Node
	err := taxdump.ReadNodes(strings.NewReader(input), func(n taxdump.Node) error {
		node = n
		return nil
	})
	if err != nil {
		t.Fatalf("ReadNodes: %v", err)
	}
	got := taxdump.JoinRecord(node.Fields(), taxdump.DumpSep, taxdump.DumpEnd)
	if got != input {
		t.Fatalf("round trip = %q, want %q", got, input)
	}
}

func TestReadNames(t *testing.T) {
	input := dmpLines(
		[]string{"2", "Bacteria", "", "scientific name"},
		[]string{"2", "eubacteria", "", "synonym"},
	)
	var names []taxdump.Name
	err := taxdump.ReadNames(strings.NewReader(input), func(n taxdump.Name) error {
		names = append(names, n)
		return nil
	})
	if err != nil {
		t.Fatalf("ReadNames: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("got %d names, want 2", len(names))
	}
	if names[0].TaxID != 2 || names[0].Name != "Bacteria" || names[0].Class != "scientific name" {
		t.Fatalf("name = %+v", names[0])
	}
}

func TestReadDivisions(t *testing.T) {
	input := dmpLines([]string{"0", "BCT", "Bacteria", ""})
	var divs []taxdump.Division
	err := taxdump.ReadDivisions(strings.NewReader(input), func(d taxdump.Division) error {
		divs = append(divs, d)
		return nil
	})
	if err != nil {
		t.Fatalf("ReadDivisions: %v", err)
	}
	if len(divs) != 1 || divs[0].ID != 0 || divs[0].Code != "BCT" {
		t.Fatalf("divisions = %+v", divs)
	}
}

func TestReadGenCodes(t *testing.T) {
	input := dmpLines(
		[]string{"1", "", "Standard", "", "---M---------------M---------------M"},
		[]string{"2", "SGC1", "Vertebrate Mitochondrial", "", "--------------------------------MMMM"},
	)
	var codes []taxdump.GenCode
	err := taxdump.ReadGenCodes(strings.NewReader(input), func(g taxdump.GenCode) error {
		codes = append(codes, g)
		return nil
	})
	if err != nil {
		t.Fatalf("ReadGenCodes: %v", err)
	}
	if len(codes) != 2 {
		t.Fatalf("got %d gencodes, want 2", len(codes))
	}
	if codes[0].Abbreviation != "" || codes[1].Abbreviation != "SGC1" {
		t.Fatalf("abbreviations = %q, %q", codes[0].Abbreviation, codes[1].Abbreviation)
	}
}

func TestReadMergedAndDelNodes(t *testing.T) {
	var merged []taxdump.Merged
	err := taxdump.ReadMerged(strings.NewReader(dmpLines([]string{"666", "562"})), func(m taxdump.Merged) error {
		merged = append(merged, m)
		return nil
	})
	if err != nil {
		t.Fatalf("ReadMerged: %v", err)
	}
	if len(merged) != 1 || merged[0].OldTaxID != 666 || merged[0].NewTaxID != 562 {
		t.Fatalf("merged = %+v", merged)
	}

	var deleted []taxdump.DelNode
	err = taxdump.ReadDelNodes(strings.NewReader(dmpLines([]string{"999"})), func(d taxdump.DelNode) error {
		deleted = append(deleted, d)
		return nil
	})
	if err != nil {
		t.Fatalf("ReadDelNodes: %v", err)
	}
	if len(deleted) != 1 || deleted[0].TaxID != 999 {
		t.Fatalf("deleted = %+v", deleted)
	}
}

func TestReadCitations(t *testing.T) {
	input := dmpLines(
		[]string{"7", "key1", "12345", "0", "http://example.com", `first line\nsecond line`, "1 562"},
	)
	var cits []taxdump.Citation
	err := taxdump.ReadCitations(strings.NewReader(input), func(c taxdump.Citation) error {
		cits = append(cits, c)
		return nil
	})
	if err != nil {
		t.Fatalf("ReadCitations: %v", err)
	}
	if len(cits) != 1 {
		t.Fatalf("got %d citations, want 1", len(cits))
	}
	c := cits[0]
	if c.ID != 7 || c.PubMedID != 12345 {
		t.Fatalf("citation = %+v", c)
	}
	if c.Text != "first line\nsecond line" {
		t.Fatalf("text = %q, want unescaped newline", c.Text)
	}
	if len(c.TaxIDs) != 2 || c.TaxIDs[0] != 1 || c.TaxIDs[1] != 562 {
		t.Fatalf("taxids = %v, want [1 562]", c.TaxIDs)
	}
}

func TestReadCitations_EmptyIDColumns(t *testing.T) {
	input := dmpLines(
		[]string{"8", "key2", "", "", "", "no ids here", ""},
	)
	var cits []taxdump.Citation
	err := taxdump.ReadCitations(strings.NewReader(input), func(c taxdump.Citation) error {
		cits = append(cits, c)
		return nil
	})
	if err != nil {
		t.Fatalf("ReadCitations: %v", err)
	}
	if len(cits) != 1 {
		t.Fatalf("got %d citations, want 1", len(cits))
	}
	if cits[0].PubMedID != 0 || cits[0].MedlineID != 0 {
		t.Fatalf("blank id columns = %d/%d, want 0/0", cits[0].PubMedID, cits[0].MedlineID)
	}
}
