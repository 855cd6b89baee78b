package reporter

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ergotest/ergotest/pkg/results"
)

// ConsoleReporter is a simple console-based reporter
type ConsoleReporter struct {
	out io.Writer
}

// NewConsoleReporter creates a new console reporter writing to stdout.
func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{out: os.Stdout}
}

// NewConsoleReporterTo creates a console reporter writing to out.
func NewConsoleReporterTo(out io.Writer) *ConsoleReporter {
	return &ConsoleReporter{out: out}
}

func (r *ConsoleReporter) RunStarted(modulePaths []string) {
	fmt.Fprintf(r.out, "\nRunning %d test module(s)...\n\n", len(modulePaths))
}

func (r *ConsoleReporter) TestCaseFinished(result *results.TestCaseResult) {
	name := strings.Join(result.Name(), " > ")
	switch result.Status() {
	case results.StatusPass:
		fmt.Fprintf(r.out, "  ✓ %s\n", name)
	case results.StatusFail:
		fmt.Fprintf(r.out, "  ✗ %s\n", name)
		if message := failureMessage(result); message != "" {
			fmt.Fprintf(r.out, "    → %s\n", message)
		}
	case results.StatusSkip:
		fmt.Fprintf(r.out, "  ○ %s (skipped)\n", name)
	case results.StatusTimeout:
		fmt.Fprintf(r.out, "  ⧗ %s (timed out after %dms)\n", name, timeoutOf(result))
	}
}

func (r *ConsoleReporter) RunFinished(result *results.TestSuiteResult) {
	counts := result.Count()

	separator := strings.Repeat("=", 50)
	fmt.Fprintf(r.out, "\n%s\n", separator)
	fmt.Fprintln(r.out, "Test Results:")
	fmt.Fprintln(r.out, separator)
	fmt.Fprintf(r.out, "  Passed:   %d\n", counts.Pass)
	fmt.Fprintf(r.out, "  Failed:   %d\n", counts.Fail)
	fmt.Fprintf(r.out, "  Skipped:  %d\n", counts.Skip)
	fmt.Fprintf(r.out, "  Timed out: %d\n", counts.Timeout)
	fmt.Fprintln(r.out, separator)

	if counts.Fail == 0 && counts.Timeout == 0 {
		return
	}

	fmt.Fprintln(r.out, "\nFailed Tests:")
	for _, test := range result.AllMatchingTests(results.StatusFail, results.StatusTimeout) {
		fmt.Fprintf(r.out, "\n  ✗ %s\n", strings.Join(test.Name(), " > "))
		if file := test.Filename(); file != "" {
			fmt.Fprintf(r.out, "    File: %s\n", file)
		}
		if message := failureMessage(test); message != "" {
			fmt.Fprintf(r.out, "    Error: %s\n", message)
		}
	}
}

// failureMessage finds the first failing invocation in the case, hooks
// included, and returns its message.
func failureMessage(result *results.TestCaseResult) string {
	for _, hook := range result.BeforeEach() {
		if hook.IsFail() {
			return hook.ErrorMessage()
		}
	}
	if result.It().IsFail() {
		return result.It().ErrorMessage()
	}
	for _, hook := range result.AfterEach() {
		if hook.IsFail() {
			return hook.ErrorMessage()
		}
	}
	return ""
}

// timeoutOf finds the first timed-out invocation and returns its configured
// limit in milliseconds.
func timeoutOf(result *results.TestCaseResult) int64 {
	for _, hook := range result.BeforeEach() {
		if hook.IsTimeout() {
			return hook.Timeout().Milliseconds()
		}
	}
	if result.It().IsTimeout() {
		return result.It().Timeout().Milliseconds()
	}
	for _, hook := range result.AfterEach() {
		if hook.IsTimeout() {
			return hook.Timeout().Milliseconds()
		}
	}
	return 0
}
