package results

// TestCaseResult is the outcome of one test case: the composed before-each
// results, the body's result, and the composed after-each results.
type TestCaseResult struct {
	mark       Mark
	beforeEach []RunResult
	it         RunResult
	afterEach  []RunResult
}

// NewTestCaseResult assembles a case result. The slices are adopted, not
// copied; callers hand over ownership.
func NewTestCaseResult(mark Mark, beforeEach []RunResult, it RunResult, afterEach []RunResult) *TestCaseResult {
	if mark == "" {
		mark = MarkNone
	}
	return &TestCaseResult{mark: mark, beforeEach: beforeEach, it: it, afterEach: afterEach}
}

func (r *TestCaseResult) isTestResult() {}

func (r *TestCaseResult) Mark() Mark { return r.mark }

// Name and Filename are those of the body's result.
func (r *TestCaseResult) Name() []string   { return r.it.Name() }
func (r *TestCaseResult) Filename() string { return r.it.Filename() }

func (r *TestCaseResult) BeforeEach() []RunResult { return r.beforeEach }
func (r *TestCaseResult) It() RunResult           { return r.it }
func (r *TestCaseResult) AfterEach() []RunResult  { return r.afterEach }

// Status folds the hook and body statuses with precedence
// fail > timeout > pass > skip. A case whose body was skipped is skipped even
// when its hooks passed.
func (r *TestCaseResult) Status() Status {
	all := make([]Status, 0, len(r.beforeEach)+len(r.afterEach)+1)
	for _, b := range r.beforeEach {
		all = append(all, b.Status())
	}
	all = append(all, r.it.Status())
	for _, a := range r.afterEach {
		all = append(all, a.Status())
	}

	for _, s := range all {
		if s == StatusFail {
			return StatusFail
		}
	}
	for _, s := range all {
		if s == StatusTimeout {
			return StatusTimeout
		}
	}
	if r.it.Status() == StatusSkip {
		return StatusSkip
	}
	for _, s := range all {
		if s == StatusPass {
			return StatusPass
		}
	}
	return StatusSkip
}

func (r *TestCaseResult) IsPass() bool    { return r.Status() == StatusPass }
func (r *TestCaseResult) IsFail() bool    { return r.Status() == StatusFail }
func (r *TestCaseResult) IsSkip() bool    { return r.Status() == StatusSkip }
func (r *TestCaseResult) IsTimeout() bool { return r.Status() == StatusTimeout }

// Equal reports structural equality with another result node.
func (r *TestCaseResult) Equal(other TestResult) bool {
	o, ok := other.(*TestCaseResult)
	if !ok {
		return false
	}
	if r.mark != o.mark || !r.it.Equal(o.it) {
		return false
	}
	if !runResultsEqual(r.beforeEach, o.beforeEach) {
		return false
	}
	return runResultsEqual(r.afterEach, o.afterEach)
}

func runResultsEqual(a, b []RunResult) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
