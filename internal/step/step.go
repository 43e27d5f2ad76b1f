// Package step implements the host pipeline's output protocol: structured
// outputs through the GITHUB_OUTPUT file and failure annotations on stdout.
package step

import (
	"fmt"
	"os"
)

// Output names and result markers the workflow consumes.
const (
	OutputFileURL = "file-url"
	OutputQRURL   = "qr-url"
	OutputResult  = "result"

	ResultSuccess = "success"
	ResultFailure = "failure"
)

// SetOutput publishes a step output. When the pipeline provides an output
// file the value is appended there; otherwise it is printed so local runs
// still show the result.
func SetOutput(name, value string) error {
	path := os.Getenv("GITHUB_OUTPUT")
	if path == "" {
		fmt.Printf("%s=%s\n", name, value)
		return nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	_, werr := fmt.Fprintf(f, "%s=%s\n", name, value)
	cerr := f.Close()
	if werr != nil {
		return fmt.Errorf("write output %s: %w", name, werr)
	}
	if cerr != nil {
		return fmt.Errorf("close output file: %w", cerr)
	}
	return nil
}

// Fail surfaces the run's failure reason as a workflow error annotation.
func Fail(msg string) {
	fmt.Printf("::error::%s\n", msg)
}
