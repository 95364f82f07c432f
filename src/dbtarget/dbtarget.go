package dbtarget

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Target is a parsed database target URI.
// Example: sqlite:/data/taxonomy/db.sqlite
type Target struct {
	// Raw is the original input string.
	Raw string
	// Scheme is the database scheme; only "sqlite" is supported.
	Scheme string
	// Path is the cleaned filesystem path of the database file, or
	// ":memory:" for an in-memory database.
	Path string
}

// Default is the target used when none is given, matching the historical
// default database name.
const Default = "sqlite:db.sqlite"

// Parse parses a target like "sqlite:/path/db.sqlite" into a Target. A bare
// path with no scheme is accepted and treated as sqlite.
func Parse(raw string) (Target, error) {
	t := Target{Raw: raw, Scheme: "sqlite"}
	s := strings.TrimSpace(raw)
	if s == "" {
		return t, fmt.Errorf("database target must not be empty; expected format 'sqlite:/path/db.sqlite'")
	}

	if i := strings.Index(s, ":"); i > 0 {
		scheme := strings.ToLower(strings.TrimSpace(s[:i]))
		rest := strings.TrimSpace(s[i+1:])
		switch scheme {
		case "sqlite":
			s = rest
		default:
			// Windows drive letters aside, a one-letter scheme is a path.
			if len(scheme) > 1 {
				return t, fmt.Errorf("unsupported database scheme %q; only 'sqlite' is supported", scheme)
			}
		}
	}

	if s == "" {
		return t, fmt.Errorf("database path must not be empty")
	}
	if s == ":memory:" {
		t.Path = s
		return t, nil
	}
	t.Path = filepath.Clean(s)
	return t, nil
}

// String returns the canonical string form of the target.
func (t Target) String() string {
	if t.Path != "" {
		return fmt.Sprintf("%s:%s", t.Scheme, t.Path)
	}
	return t.Raw
}
