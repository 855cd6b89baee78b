// Package reporter renders run progress and result trees for humans. The
// engine itself never prints; reporters observe results as they complete.
package reporter

import (
	"github.com/ergotest/ergotest/pkg/events"
	"github.com/ergotest/ergotest/pkg/results"
)

// Reporter is the interface for test result reporting
type Reporter interface {
	RunStarted(modulePaths []string)
	TestCaseFinished(result *results.TestCaseResult)
	RunFinished(result *results.TestSuiteResult)
}

// Attach subscribes a reporter to a runner's per-case event stream so it
// sees results as they complete, including those streamed from a worker.
// It returns a detach function.
func Attach(emitter *events.Emitter, r Reporter) (detach func()) {
	id := emitter.On(events.EventTestCaseResult, func(data events.EventData) {
		if result, ok := data.(*results.TestCaseResult); ok {
			r.TestCaseFinished(result)
		}
	})
	return func() {
		emitter.Off(events.EventTestCaseResult, id)
	}
}

// SilentReporter is a reporter that produces no output
type SilentReporter struct{}

func (r *SilentReporter) RunStarted(_ []string)                      {}
func (r *SilentReporter) TestCaseFinished(_ *results.TestCaseResult) {}
func (r *SilentReporter) RunFinished(_ *results.TestSuiteResult)     {}
