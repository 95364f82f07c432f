// Package accmap streams the NCBI accession2taxid mapping files. The files
// are headered TSVs (accession, accession.version, taxid, gi) and routinely
// run to tens of gigabytes, so nothing here buffers a whole file.
package accmap

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Record is one accession mapping row.
type Record struct {
	Accession        string `json:"accession"`
	AccessionVersion string `json:"accession_version"`
	TaxID            int    `json:"taxid"`
	GI               int    `json:"gi"`
}

// Fields renders the record back into its TSV column order.
func (r Record) Fields() []string {
	return []string{r.Accession, r.AccessionVersion, strconv.Itoa(r.TaxID), formatGI(r.GI)}
}

// Header is the expected first line of every mapping file.
const Header = "accession\taccession.version\ttaxid\tgi"

// Open opens a mapping file, transparently decompressing .gz files as NCBI
// distributes them compressed.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	zr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("gzip %s: %w", path, err)
	}
	return &gzipFile{zr: zr, f: f}, nil
}

type gzipFile struct {
	zr *gzip.Reader
	f  *os.File
}

func (g *gzipFile) Read(p []byte) (int, error) { return g.zr.Read(p) }

func (g *gzipFile) Close() error {
	zerr := g.zr.Close()
	ferr := g.f.Close()
	if zerr != nil {
		return zerr
	}
	return ferr
}

// Read streams records from r, validating the header row first.
func Read(r io.Reader, fn func(Record) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return err
		}
		return fmt.Errorf("mapping file is empty, expected header %q", Header)
	}
	if got := strings.TrimRight(sc.Text(), "\r\n"); got != Header {
		return fmt.Errorf("unexpected header %q, want %q", got, Header)
	}
	line := 1
	for sc.Scan() {
		line++
		raw := sc.Text()
		if raw == "" {
			continue
		}
		rec, err := parseRecord(raw)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return sc.Err()
}

func parseRecord(raw string) (Record, error) {
	fields := strings.Split(raw, "\t")
	if len(fields) != 4 {
		return Record{}, fmt.Errorf("record has %d columns, want 4", len(fields))
	}
	taxid, err := strconv.Atoi(fields[2])
	if err != nil {
		return Record{}, fmt.Errorf("taxid %q is not an integer", fields[2])
	}
	gi, err := parseGI(fields[3])
	if err != nil {
		return Record{}, err
	}
	return Record{
		Accession:        fields[0],
		AccessionVersion: fields[1],
		TaxID:            taxid,
		GI:               gi,
	}, nil
}

// Dead-accession files carry "na" in the gi column; store those as 0.
func parseGI(field string) (int, error) {
	if field == "na" {
		return 0, nil
	}
	gi, err := strconv.Atoi(field)
	if err != nil {
		return 0, fmt.Errorf("gi %q is not an integer", field)
	}
	return gi, nil
}

func formatGI(gi int) string {
	if gi == 0 {
		return "na"
	}
	return strconv.Itoa(gi)
}

// FilterOptions controls Filter.
type FilterOptions struct {
	// Inverse emits accessions whose taxid is NOT in the set.
	Inverse bool
}

// Filter streams each mapping file and writes the accession column of every
// record whose taxid membership in keep matches the options, one per line.
// It returns the number of accessions written.
func Filter(paths []string, keep map[int]bool, opts FilterOptions, out io.Writer) (int, error) {
	w := bufio.NewWriter(out)
	total := 0
	for _, path := range paths {
		rc, err := Open(path)
		if err != nil {
			return total, err
		}
		err = Read(rc, func(rec Record) error {
			if keep[rec.TaxID] == opts.Inverse {
				return nil
			}
			total++
			_, werr := fmt.Fprintln(w, rec.Accession)
			return werr
		})
		rc.Close()
		if err != nil {
			return total, fmt.Errorf("%s: %w", path, err)
		}
	}
	return total, w.Flush()
}
