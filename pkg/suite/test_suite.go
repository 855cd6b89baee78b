package suite

import (
	"context"

	"github.com/ergotest/ergotest/pkg/results"
)

// TestSuite is a node of the test tree: nested tests and suites, its own
// lifecycle hooks, an optional timeout, and a mark.
type TestSuite struct {
	name       string
	mark       results.Mark
	filename   string
	options    itemOptions
	beforeAll  []*BeforeAfter
	afterAll   []*BeforeAfter
	beforeEach []*BeforeAfter
	afterEach  []*BeforeAfter
	tests      []node
}

// Name returns the suite's own name (not its full path).
func (s *TestSuite) Name() string { return s.name }

// Mark returns the suite's own mark.
func (s *TestSuite) Mark() results.Mark { return s.mark }

// Filename returns the source path annotated on this suite, if any.
func (s *TestSuite) Filename() string { return s.filename }

// SetFilename annotates the suite with the module path it was loaded from.
// Descendants that do not set their own filename inherit it during the run.
func (s *TestSuite) SetFilename(path string) { s.filename = path }

// Run executes the suite tree and returns the result tree. The zero options
// give a 2-second default timeout, an empty config, and the system clock.
func (s *TestSuite) Run(ctx context.Context, opts *RunOptions) *results.TestSuiteResult {
	rc := newRunContext(ctx, opts)
	// The root inherits .only: everything runs unless a more specific .only
	// below downgrades its unmarked siblings.
	return s.runRecursive(rc, results.MarkOnly, nil, nil).(*results.TestSuiteResult)
}

func (s *TestSuite) isDotOnly() bool {
	return s.mark == results.MarkOnly || s.hasDotOnlyDescendants()
}

func (s *TestSuite) hasDotOnlyDescendants() bool {
	for _, child := range s.tests {
		if child.isDotOnly() {
			return true
		}
	}
	return false
}

func (s *TestSuite) isSkipped(parentMark results.Mark) bool {
	mark := s.mark
	if mark == results.MarkNone {
		mark = parentMark
	}
	for _, child := range s.tests {
		if !child.isSkipped(mark) {
			return false
		}
	}
	return true
}

// resolveMark computes the mark a suite hands to its children. Own mark wins
// over the parent's; an inherited .only downgrades to .skip when a more
// specific .only exists below, so only the marked descendants run; a failed
// before-all forces the whole subtree to skip.
func resolveMark(own, parent results.Mark, hasOnlyDescendants, beforeAllFailed bool) results.Mark {
	mark := own
	if mark == results.MarkNone {
		mark = parent
	}
	if mark == results.MarkOnly && hasOnlyDescendants {
		mark = results.MarkSkip
	}
	if beforeAllFailed {
		mark = results.MarkSkip
	}
	return mark
}

func (s *TestSuite) runRecursive(rc runContext, parentMark results.Mark, parentBeforeEach, parentAfterEach []composedHook) results.TestResult {
	if s.name != "" {
		rc.name = childName(rc.name, s.name)
	}
	if s.filename != "" {
		rc.filename = s.filename
	}
	if s.options.timeout > 0 {
		rc.timeout = s.options.timeout
	}

	allSkipped := s.isSkipped(parentMark)

	beforeAllFailed := false
	beforeAllResults := make([]*results.TestCaseResult, 0, len(s.beforeAll))
	for i, hook := range s.beforeAll {
		hookName := childName(rc.name, hookLabel("beforeAll", i, len(s.beforeAll)))
		hookRC := rc
		hookRC.skipAll = rc.skipAll || allSkipped || beforeAllFailed
		result := hook.runBeforeAfterAll(hookRC, hookName)
		if !result.IsPass() && !result.IsSkip() {
			beforeAllFailed = true
		}
		beforeAllResults = append(beforeAllResults, result)
	}

	childMark := resolveMark(s.mark, parentMark, s.hasDotOnlyDescendants(), beforeAllFailed)
	effectiveBeforeEach := composeBeforeEach(parentBeforeEach, s.beforeEach, rc.name)
	effectiveAfterEach := composeAfterEach(s.afterEach, parentAfterEach, rc.name)

	// A failed before-all skips the subtree absolutely; not even a .only
	// descendant may run without its setup.
	childRC := rc
	childRC.skipAll = rc.skipAll || beforeAllFailed

	childResults := make([]results.TestResult, 0, len(s.tests))
	for _, child := range s.tests {
		childResults = append(childResults, child.runRecursive(childRC, childMark, effectiveBeforeEach, effectiveAfterEach))
	}

	afterAllResults := make([]*results.TestCaseResult, 0, len(s.afterAll))
	for i, hook := range s.afterAll {
		hookName := childName(rc.name, hookLabel("afterAll", i, len(s.afterAll)))
		hookRC := rc
		hookRC.skipAll = rc.skipAll || allSkipped || beforeAllFailed
		afterAllResults = append(afterAllResults, hook.runBeforeAfterAll(hookRC, hookName))
	}

	return results.NewTestSuiteResult(results.SuiteResultOptions{
		Name:      rc.name,
		Mark:      s.mark,
		Filename:  rc.filename,
		BeforeAll: beforeAllResults,
		AfterAll:  afterAllResults,
		Tests:     childResults,
	})
}

// GroupSuites wraps suites in a nameless outer suite. The loader uses it to
// collect per-module suites into one tree.
func GroupSuites(suites ...*TestSuite) *TestSuite {
	grouped := &TestSuite{mark: results.MarkNone}
	for _, child := range suites {
		grouped.tests = append(grouped.tests, child)
	}
	return grouped
}

// FailureSuite builds a nameless suite holding a single synthetic case that
// fails with err. The loader uses it to represent a module that could not be
// loaded; filename becomes the suite's annotated source path.
func FailureSuite(caseName string, err any, filename string) *TestSuite {
	s := &TestSuite{
		mark:     results.MarkNone,
		filename: filename,
		tests:    []node{newFailureTestCase(caseName, err)},
	}
	return s
}
