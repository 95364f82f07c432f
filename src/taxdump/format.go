package taxdump

import (
	"fmt"
	"strconv"
	"strings"
)

// NCBI taxdump files separate fields with "\t|\t" and terminate records with
// "\t|\n". The accession2taxid mapping files are plain tab-separated.
const (
	DumpSep = "\t|\t"
	DumpEnd = "\t|\n"
)

// SplitRecord strips the record terminator from a raw line and splits it into
// fields. The line may arrive with or without its trailing newline.
func SplitRecord(line, sep, end string) []string {
	line = strings.TrimSuffix(line, end)
	line = strings.TrimSuffix(line, strings.TrimSuffix(end, "\n"))
	return strings.Split(line, sep)
}

// JoinRecord renders fields back into a raw dump line, terminator included.
func JoinRecord(fields []string, sep, end string) string {
	return strings.Join(fields, sep) + end
}

// parseInt converts an integer column. Empty columns (citations.dmp leaves
// pubmed_id and medline_id blank at times) count as zero.
func parseInt(field, name string) (int, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(field)
	if err != nil {
		return 0, fmt.Errorf("column %s: %q is not an integer", name, field)
	}
	return v, nil
}

// parseFlag converts the 0/1 flag columns to bool. Anything other than "0" or
// "1" is an error rather than a silent false.
func parseFlag(field, name string) (bool, error) {
	switch strings.TrimSpace(field) {
	case "0":
		return false, nil
	case "1":
		return true, nil
	default:
		return false, fmt.Errorf("column %s: %q is not a 0/1 flag", name, field)
	}
}

func formatFlag(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

// unescapeCitation reverses the backslash escapes NCBI applies to the free
// text column of citations.dmp: \n, \t, \" and \\.
func unescapeCitation(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i == len(s)-1 {
			b.WriteByte(s[i])
			continue
		}
		switch s[i+1] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case '"':
			b.WriteByte('"')
		case '\\':
			b.WriteByte('\\')
		default:
			b.WriteByte(s[i])
			continue
		}
		i++
	}
	return b.String()
}

func escapeCitation(s string) string {
	r := strings.NewReplacer("\\", `\\`, "\n", `\n`, "\t", `\t`, `"`, `\"`)
	return r.Replace(s)
}
