package taxdump

import (
	"fmt"
	"strconv"
	"strings"
)

// Node is one row of nodes.dmp. Column meanings per the NCBI taxdump readme:
// taxid, parent taxid, rank, embl locus-name prefix, division id, inherited
// division flag, genetic code id, inherited GC flag, mitochondrial genetic
// code id, inherited MGC flag, GenBank hidden flag, hidden subtree root flag,
// free-text comments.
type Node struct {
	TaxID             int
	ParentTaxID       int
	Rank              string
	EMBLCode          string
	DivisionID        int
	InheritedDivision bool
	GeneticCodeID     string
	InheritedGC       bool
	MitoGeneticCodeID string
	InheritedMGC      bool
	GenBankHidden     bool
	HiddenSubtreeRoot bool
	Comments          string
}

func parseNode(fields []string) (Node, error) {
	if len(fields) != 13 {
		return Node{}, fmt.Errorf("nodes record has %d columns, want 13", len(fields))
	}
	var n Node
	var err error
	if n.TaxID, err = parseInt(fields[0], "taxid"); err != nil {
		return Node{}, err
	}
	if n.ParentTaxID, err = parseInt(fields[1], "parent_taxid"); err != nil {
		return Node{}, err
	}
	n.Rank = fields[2]
	n.EMBLCode = fields[3]
	if n.DivisionID, err = parseInt(fields[4], "division_id"); err != nil {
		return Node{}, err
	}
	if n.InheritedDivision, err = parseFlag(fields[5], "inherited_div_flag"); err != nil {
		return Node{}, err
	}
	n.GeneticCodeID = fields[6]
	if n.InheritedGC, err = parseFlag(fields[7], "inherited_gc_flag"); err != nil {
		return Node{}, err
	}
	n.MitoGeneticCodeID = fields[8]
	if n.InheritedMGC, err = parseFlag(fields[9], "inherited_mgc_flag"); err != nil {
		return Node{}, err
	}
	if n.GenBankHidden, err = parseFlag(fields[10], "genbank_hidden_flag"); err != nil {
		return Node{}, err
	}
	if n.HiddenSubtreeRoot, err = parseFlag(fields[11], "hidden_subtree_root_flag"); err != nil {
		return Node{}, err
	}
	n.Comments = fields[12]
	return n, nil
}

// Fields renders the node back into its dump column order.
func (n Node) Fields() []string {
	return []string{
		strconv.Itoa(n.TaxID),
		strconv.Itoa(n.ParentTaxID),
		n.Rank,
		n.EMBLCode,
		strconv.Itoa(n.DivisionID),
		formatFlag(n.InheritedDivision),
		n.GeneticCodeID,
		formatFlag(n.InheritedGC),
		n.MitoGeneticCodeID,
		formatFlag(n.InheritedMGC),
		formatFlag(n.GenBankHidden),
		formatFlag(n.HiddenSubtreeRoot),
		n.Comments,
	}
}

// Name is one row of names.dmp. Class distinguishes scientific names from
// synonyms, common names and so on.
type Name struct {
	TaxID      int
	Name       string
	UniqueName string
	Class      string
}

func parseName(fields []string) (Name, error) {
	if len(fields) != 4 {
		return Name{}, fmt.Errorf("names record has %d columns, want 4", len(fields))
	}
	taxid, err := parseInt(fields[0], "taxid")
	if err != nil {
		return Name{}, err
	}
	return Name{TaxID: taxid, Name: fields[1], UniqueName: fields[2], Class: fields[3]}, nil
}

func (n Name) Fields() []string {
	return []string{strconv.Itoa(n.TaxID), n.Name, n.UniqueName, n.Class}
}

// Division is one row of division.dmp (BCT, PLN, VRT, ...).
type Division struct {
	ID       int
	Code     string
	Name     string
	Comments string
}

func parseDivision(fields []string) (Division, error) {
	if len(fields) != 4 {
		return Division{}, fmt.Errorf("division record has %d columns, want 4", len(fields))
	}
	id, err := parseInt(fields[0], "division_id")
	if err != nil {
		return Division{}, err
	}
	return Division{ID: id, Code: fields[1], Name: fields[2], Comments: fields[3]}, nil
}

func (d Division) Fields() []string {
	return []string{strconv.Itoa(d.ID), d.Code, d.Name, d.Comments}
}

// GenCode is one row of gencode.dmp. The cde and starts columns carry the
// translation table and start codons and may contain spaces.
type GenCode struct {
	ID           string
	Abbreviation string
	Name         string
	CDE          string
	Starts       string
}

func parseGenCode(fields []string) (GenCode, error) {
	if len(fields) != 5 {
		return GenCode{}, fmt.Errorf("gencode record has %d columns, want 5", len(fields))
	}
	return GenCode{
		ID:           fields[0],
		Abbreviation: fields[1],
		Name:         fields[2],
		CDE:          fields[3],
		Starts:       fields[4],
	}, nil
}

func (g GenCode) Fields() []string {
	return []string{g.ID, g.Abbreviation, g.Name, g.CDE, g.Starts}
}

// Merged is one row of merged.dmp: a taxid retired in favour of another.
type Merged struct {
	OldTaxID int
	NewTaxID int
}

func parseMerged(fields []string) (Merged, error) {
	if len(fields) != 2 {
		return Merged{}, fmt.Errorf("merged record has %d columns, want 2", len(fields))
	}
	oldID, err := parseInt(fields[0], "old_taxid")
	if err != nil {
		return Merged{}, err
	}
	newID, err := parseInt(fields[1], "new_taxid")
	if err != nil {
		return Merged{}, err
	}
	return Merged{OldTaxID: oldID, NewTaxID: newID}, nil
}

func (m Merged) Fields() []string {
	return []string{strconv.Itoa(m.OldTaxID), strconv.Itoa(m.NewTaxID)}
}

// DelNode is one row of delnodes.dmp: a taxid removed from the taxonomy.
type DelNode struct {
	TaxID int
}

func parseDelNode(fields []string) (DelNode, error) {
	if len(fields) != 1 {
		return DelNode{}, fmt.Errorf("delnodes record has %d columns, want 1", len(fields))
	}
	taxid, err := parseInt(fields[0], "taxid")
	if err != nil {
		return DelNode{}, err
	}
	return DelNode{TaxID: taxid}, nil
}

func (d DelNode) Fields() []string {
	return []string{strconv.Itoa(d.TaxID)}
}

// Citation is one row of citations.dmp. Text arrives with backslash escapes
// for newline, tab, double quote and backslash; it is stored unescaped here.
// TaxIDs lists the nodes the citation applies to.
type Citation struct {
	ID        int
	Key       string
	PubMedID  int
	MedlineID int
	URL       string
	Text      string
	TaxIDs    []int
}

func parseCitation(fields []string) (Citation, error) {
	if len(fields) != 7 {
		return Citation{}, fmt.Errorf("citations record has %d columns, want 7", len(fields))
	}
	var c Citation
	var err error
	if c.ID, err = parseInt(fields[0], "cit_id"); err != nil {
		return Citation{}, err
	}
	c.Key = fields[1]
	if c.PubMedID, err = parseInt(fields[2], "pubmed_id"); err != nil {
		return Citation{}, err
	}
	if c.MedlineID, err = parseInt(fields[3], "medline_id"); err != nil {
		return Citation{}, err
	}
	c.URL = fields[4]
	c.Text = unescapeCitation(fields[5])
	for _, f := range strings.Fields(fields[6]) {
		taxid, err := parseInt(f, "taxid_list")
		if err != nil {
			return Citation{}, err
		}
		c.TaxIDs = append(c.TaxIDs, taxid)
	}
	return c, nil
}

func (c Citation) Fields() []string {
	ids := make([]string, 0, len(c.TaxIDs))
	for _, t := range c.TaxIDs {
		ids = append(ids, strconv.Itoa(t))
	}
	return []string{
		strconv.Itoa(c.ID),
		c.Key,
		strconv.Itoa(c.PubMedID),
		strconv.Itoa(c.MedlineID),
		c.URL,
		escapeCitation(c.Text),
		strings.Join(ids, " "),
	}
}
