package safety

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Options captures the global flags that gate destructive operations, such
// as rebuilding a database that already holds taxonomy data.
type Options struct {
	// DryRun reports planned actions without making changes.
	DryRun bool
	// Yes answers prompts without asking.
	Yes bool
}

// Confirm prompts the user to confirm a destructive action.
// - If opts.DryRun is true, it returns false with no error (nothing should
//   be changed).
// - If opts.Yes is true, it returns true without prompting.
// The caller decides what to do with the result.
func Confirm(opts Options, in io.Reader, out io.Writer, question string) (bool, error) {
	if opts.DryRun {
		return false, nil
	}
	if opts.Yes {
		return true, nil
	}
	if out != nil {
		fmt.Fprintf(out, "%s [y/N]: ", strings.TrimSpace(question))
	}
	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	ans := strings.TrimSpace(strings.ToLower(line))
	return ans == "y" || ans == "yes", nil
}
