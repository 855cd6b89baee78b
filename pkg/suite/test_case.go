package suite

import (
	"github.com/ergotest/ergotest/pkg/results"
)

// node is anything a suite can contain: a nested TestSuite, a TestCase, or a
// synthetic failureTestCase.
type node interface {
	runRecursive(rc runContext, parentMark results.Mark, beforeEach, afterEach []composedHook) results.TestResult
	isDotOnly() bool
	isSkipped(parentMark results.Mark) bool
}

// TestCase is a leaf test: a name, a mark, and an optional body.
type TestCase struct {
	runnable
	name string
	mark results.Mark
}

func newTestCase(name string, mark results.Mark, options itemOptions, fn TestFn) *TestCase {
	if fn == nil && mark == results.MarkNone {
		// A bodiless it() is a placeholder; treat it as .skip.
		mark = results.MarkSkip
	}
	return &TestCase{runnable: runnable{options: options, fn: fn}, name: name, mark: mark}
}

func (tc *TestCase) isDotOnly() bool {
	return tc.mark == results.MarkOnly
}

func (tc *TestCase) isSkipped(parentMark results.Mark) bool {
	mark := tc.mark
	if mark == results.MarkNone {
		mark = parentMark
	}
	return mark == results.MarkSkip || tc.fn == nil
}

func (tc *TestCase) runRecursive(rc runContext, parentMark results.Mark, beforeEach, afterEach []composedHook) results.TestResult {
	name := childName(rc.name, tc.name)
	skipThis := tc.isSkipped(parentMark)

	beforeResults := make([]results.RunResult, 0, len(beforeEach))
	for _, hook := range beforeEach {
		var result results.RunResult
		if skipThis {
			result = results.Skip(results.RunOptions{Name: hook.name, Filename: rc.filename})
		} else {
			result = hook.hook.runBeforeAfterEach(rc, hook.name)
			if !result.IsPass() && !result.IsSkip() {
				skipThis = true
			}
		}
		beforeResults = append(beforeResults, result)
	}

	itOptions := results.RunOptions{Name: name, Filename: rc.filename}
	var itResult results.RunResult
	switch {
	case tc.fn == nil && tc.mark == results.MarkOnly:
		err := "Test is marked '.only', but it has no body"
		itResult = results.Fail(itOptions, err, render(rc, name, err))
	case skipThis:
		itResult = results.Skip(itOptions)
	default:
		itResult = tc.run(rc, name)
		if !itResult.IsPass() && !itResult.IsSkip() {
			skipThis = true
		}
	}

	afterResults := make([]results.RunResult, 0, len(afterEach))
	for _, hook := range afterEach {
		var result results.RunResult
		if skipThis {
			result = results.Skip(results.RunOptions{Name: hook.name, Filename: rc.filename})
		} else {
			// After-each failures do not cascade within the case.
			result = hook.hook.runBeforeAfterEach(rc, hook.name)
		}
		afterResults = append(afterResults, result)
	}

	caseResult := results.NewTestCaseResult(tc.mark, beforeResults, itResult, afterResults)
	rc.onTestCaseResult(caseResult)
	return caseResult
}

// failureTestCase is a synthetic case that always fails with a fixed error.
// The loader emits one when a module cannot be loaded. Its mark is always
// MarkNone, regardless of how the enclosing suite is marked.
type failureTestCase struct {
	name string
	err  any
}

func newFailureTestCase(name string, err any) *failureTestCase {
	return &failureTestCase{name: name, err: err}
}

func (f *failureTestCase) isDotOnly() bool { return false }

func (f *failureTestCase) isSkipped(results.Mark) bool { return false }

func (f *failureTestCase) runRecursive(rc runContext, _ results.Mark, _, _ []composedHook) results.TestResult {
	name := childName(rc.name, f.name)
	itResult := results.Fail(results.RunOptions{Name: name, Filename: rc.filename}, f.err, render(rc, name, f.err))
	caseResult := results.NewTestCaseResult(results.MarkNone, nil, itResult, nil)
	rc.onTestCaseResult(caseResult)
	return caseResult
}
