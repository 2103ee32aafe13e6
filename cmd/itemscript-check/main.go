// itemscript-check: Conformance checker for item scripts.
//
// Each script is loaded into a fresh experiment with automatic responses
// and its EVAL, MATCH, PREPARE and RUN directives are compared against
// its EXPECTED lines.
//
// Usage:
//
//	itemscript-check FILE [FILE...]
//	itemscript-check --dir DIR
package main

import (
	"context"
	"fmt"
	"os"

	"nickandperla.net/itemscript/internal/conformance"
)

// checkResult holds the outcome of checking a single file.
type checkResult struct {
	path         string
	diffs        []string
	expectsError bool
}

// checkFile runs one conformance script.
func checkFile(ctx context.Context, path string) checkResult {
	c, err := conformance.ParseFile(path)
	if err != nil {
		return checkResult{
			path:  path,
			diffs: []string{fmt.Sprintf("read error: %v", err)},
		}
	}
	if len(c.Expected) == 0 {
		return checkResult{path: path, diffs: []string{"no EXPECTED lines"}}
	}
	return checkResult{
		path:         path,
		diffs:        conformance.Compare(c.Expected, c.Execute(ctx)),
		expectsError: c.ExpectsError(),
	}
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: itemscript-check [--dir DIR] FILE [FILE...]")
		os.Exit(1)
	}

	var files []string
	for i := 1; i < len(os.Args); i++ {
		if os.Args[i] == "--dir" {
			if i+1 >= len(os.Args) {
				fmt.Fprintln(os.Stderr, "Error: --dir requires an argument")
				os.Exit(1)
			}
			i++
			found, err := conformance.FindFiles(os.Args[i])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error scanning directory %s: %v\n", os.Args[i], err)
				os.Exit(1)
			}
			files = append(files, found...)
		} else {
			files = append(files, os.Args[i])
		}
	}

	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "No %s files found\n", conformance.Ext)
		os.Exit(1)
	}

	ctx := context.Background()
	passed := 0
	failed := 0
	expectedErr := 0

	for _, f := range files {
		result := checkFile(ctx, f)
		switch {
		case len(result.diffs) > 0:
			failed++
			fmt.Printf("FAIL %s\n", f)
			for _, d := range result.diffs {
				fmt.Printf("     %s\n", d)
			}
		case result.expectsError:
			expectedErr++
			fmt.Printf("OK   %s (expected error)\n", f)
		default:
			passed++
			fmt.Printf("OK   %s\n", f)
		}
	}

	fmt.Printf("\n--- Summary ---\n")
	fmt.Printf("Passed:          %d\n", passed)
	fmt.Printf("Expected errors: %d\n", expectedErr)
	fmt.Printf("Failed:          %d\n", failed)
	fmt.Printf("Total:           %d\n", len(files))

	if failed > 0 {
		os.Exit(1)
	}
}
