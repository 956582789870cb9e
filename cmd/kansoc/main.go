// SPDX-License-Identifier: Apache-2.0
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"

	"kansomid/internal/analyze"
	"kansomid/internal/driver"
	"kansomid/internal/kerrors"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: kansoc <file.irtxt>\n       kansoc -analyze <file.irtxt>")
		os.Exit(1)
	}

	analyzeOnly := os.Args[1] == "-analyze"
	path := os.Args[1]
	if analyzeOnly {
		if len(os.Args) < 3 {
			fmt.Println("Usage: kansoc -analyze <file.irtxt>")
			os.Exit(1)
		}
		path = os.Args[2]
	}

	source, err := os.ReadFile(path)
	if err != nil {
		color.Red("failed to read %s: %s", path, err)
		os.Exit(1)
	}

	res, err := driver.Compile(path, string(source), "", driver.DefaultOptions())
	if err != nil {
		reportCompileError(path, string(source), err)
		os.Exit(1)
	}

	if analyzeOnly {
		for _, fn := range res.Module.Functions {
			fmt.Print(analyze.Report(fn))
		}
		return
	}

	for name, fn := range res.Module.Functions {
		fmt.Printf("function %s: %d blocks\n", name, len(fn.Blocks))
	}

	color.Green("%s checked clean", path)
}

// reportCompileError prints a Rust-style framed diagnostic for a
// *kerrors.CompilerError, falling back to a plain message for anything
// else (a malformed-text parse failure, a structural validation error).
func reportCompileError(path, source string, err error) {
	var ce *kerrors.CompilerError
	if errors.As(err, &ce) {
		reporter := kerrors.NewReporter(path, source)
		fmt.Print(reporter.Format(ce))
		return
	}
	color.Red("%s: %s", path, err)
}
