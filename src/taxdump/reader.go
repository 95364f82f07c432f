package taxdump

import (
	"bufio"
	"fmt"
	"io"
)

// scanRecords reads r line by line, splits each line on the dump separators,
// and hands the fields to fn. Errors are wrapped with the 1-based line number
// so a bad row in a multi-gigabyte dump is findable.
func scanRecords(r io.Reader, fn func(fields []string) error) error {
	sc := bufio.NewScanner(r)
	// Citation text columns can run long; the default 64K token cap is not
	// enough for some rows.
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		raw := sc.Text()
		if raw == "" {
			continue
		}
		if err := fn(SplitRecord(raw, DumpSep, DumpEnd)); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
	return sc.Err()
}

// ReadNodes streams nodes.dmp records to fn.
func ReadNodes(r io.Reader, fn func(Node) error) error {
	return scanRecords(r, func(fields []string) error {
		n, err := parseNode(fields)
		if err != nil {
			return err
		}
		return fn(n)
	})
}

// ReadNames streams names.dmp records to fn.
func ReadNames(r io.Reader, fn func(Name) error) error {
	return scanRecords(r, func(fields []string) error {
		n, err := parseName(fields)
		if err != nil {
			return err
		}
		return fn(n)
	})
}

// ReadDivisions streams division.dmp records to fn.
func ReadDivisions(r io.Reader, fn func(Division) error) error {
	return scanRecords(r, func(fields []string) error {
		d, err := parseDivision(fields)
		if err != nil {
			return err
		}
		return fn(d)
	})
}

// ReadGenCodes streams gencode.dmp records to fn.
func ReadGenCodes(r io.Reader, fn func(GenCode) error) error {
	return scanRecords(r, func(fields []string) error {
		g, err := parseGenCode(fields)
		if err != nil {
			return err
		}
		return fn(g)
	})
}

// ReadMerged streams merged.dmp records to fn.
func ReadMerged(r io.Reader, fn func(Merged) error) error {
	return scanRecords(r, func(fields []string) error {
		m, err := parseMerged(fields)
		if err != nil {
			return err
		}
		return fn(m)
	})
}

// ReadDelNodes streams delnodes.dmp records to fn.
func ReadDelNodes(r io.Reader, fn func(DelNode) error) error {
	return scanRecords(r, func(fields []string) error {
		d, err := parseDelNode(fields)
		if err != nil {
			return err
		}
		return fn(d)
	})
}

// ReadCitations streams citations.dmp records to fn.
func ReadCitations(r io.Reader, fn func(Citation) error) error {
	return scanRecords(r, func(fields []string) error {
		c, err := parseCitation(fields)
		if err != nil {
			return err
		}
		return fn(c)
	})
}
