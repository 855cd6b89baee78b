package suite

import (
	"strconv"

	"github.com/ergotest/ergotest/pkg/results"
)

// BeforeAfter is a runnable used as a lifecycle hook. Before-all and
// after-all invocations are wrapped into TestCaseResults so the progress
// callback observes their failures like test failures; before-each and
// after-each invocations stay bare RunResults inside their case.
type BeforeAfter struct {
	runnable
}

func newBeforeAfter(options itemOptions, fn TestFn) *BeforeAfter {
	return &BeforeAfter{runnable: runnable{options: options, fn: fn}}
}

// runBeforeAfterAll executes the hook, wraps the outcome in a
// TestCaseResult, and emits a progress event.
func (b *BeforeAfter) runBeforeAfterAll(rc runContext, name []string) *results.TestCaseResult {
	result := results.NewTestCaseResult(results.MarkNone, nil, b.run(rc, name), nil)
	rc.onTestCaseResult(result)
	return result
}

// runBeforeAfterEach executes the hook and returns the bare RunResult.
func (b *BeforeAfter) runBeforeAfterEach(rc runContext, name []string) results.RunResult {
	return b.run(rc, name)
}

// composedHook pairs a hook with the display name it carries at a given
// nesting level.
type composedHook struct {
	hook *BeforeAfter
	name []string
}

// composeBeforeEach builds the effective before-each list for a suite:
// the parent's composed hooks first, then the suite's own, so outer hooks
// run before inner ones.
func composeBeforeEach(parent []composedHook, own []*BeforeAfter, suitePath []string) []composedHook {
	return composeHooks(parent, own, suitePath, "beforeEach", true)
}

// composeAfterEach builds the effective after-each list for a suite: the
// suite's own hooks first, then the parent's, so inner hooks run before
// outer ones.
func composeAfterEach(own []*BeforeAfter, parent []composedHook, suitePath []string) []composedHook {
	return composeHooks(parent, own, suitePath, "afterEach", false)
}

func composeHooks(parent []composedHook, own []*BeforeAfter, suitePath []string, label string, parentFirst bool) []composedHook {
	named := make([]composedHook, 0, len(parent)+len(own))
	if parentFirst {
		named = append(named, parent...)
	}
	for i, hook := range own {
		named = append(named, composedHook{
			hook: hook,
			name: childName(suitePath, hookLabel(label, i, len(own))),
		})
	}
	if !parentFirst {
		named = append(named, parent...)
	}
	return named
}

// hookLabel names a hook invocation; the index is only shown when a suite
// registers more than one hook of the same kind.
func hookLabel(label string, index, total int) string {
	if total <= 1 {
		return label
	}
	return label + " #" + strconv.Itoa(index+1)
}
