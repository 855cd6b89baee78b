package results

import "sort"

// TestSuiteResult is a node in the result tree. It exclusively owns its
// children; the tree is strictly a tree.
type TestSuiteResult struct {
	name      []string
	mark      Mark
	filename  string
	beforeAll []*TestCaseResult
	afterAll  []*TestCaseResult
	tests     []TestResult
}

// SuiteResultOptions configures NewTestSuiteResult. Slices are adopted.
type SuiteResultOptions struct {
	Name      []string
	Mark      Mark
	Filename  string
	BeforeAll []*TestCaseResult
	AfterAll  []*TestCaseResult
	Tests     []TestResult
}

// NewTestSuiteResult assembles a suite result node.
func NewTestSuiteResult(o SuiteResultOptions) *TestSuiteResult {
	mark := o.Mark
	if mark == "" {
		mark = MarkNone
	}
	return &TestSuiteResult{
		name:      o.Name,
		mark:      mark,
		filename:  o.Filename,
		beforeAll: o.BeforeAll,
		afterAll:  o.AfterAll,
		tests:     o.Tests,
	}
}

func (r *TestSuiteResult) isTestResult() {}

func (r *TestSuiteResult) Name() []string               { return r.name }
func (r *TestSuiteResult) Mark() Mark                   { return r.mark }
func (r *TestSuiteResult) Filename() string             { return r.filename }
func (r *TestSuiteResult) BeforeAll() []*TestCaseResult { return r.beforeAll }
func (r *TestSuiteResult) AfterAll() []*TestCaseResult  { return r.afterAll }
func (r *TestSuiteResult) Tests() []TestResult          { return r.tests }

// AllTests flattens the tree into every TestCaseResult it contains,
// including the before-all/after-all wrappers of this suite and of every
// descendant suite.
func (r *TestSuiteResult) AllTests() []*TestCaseResult {
	var all []*TestCaseResult
	r.collectTests(&all)
	return all
}

func (r *TestSuiteResult) collectTests(into *[]*TestCaseResult) {
	*into = append(*into, r.beforeAll...)
	*into = append(*into, r.afterAll...)
	for _, t := range r.tests {
		switch node := t.(type) {
		case *TestCaseResult:
			*into = append(*into, node)
		case *TestSuiteResult:
			node.collectTests(into)
		}
	}
}

// AllMatchingTests returns the flattened tests whose status is one of
// statuses.
func (r *TestSuiteResult) AllMatchingTests(statuses ...Status) []*TestCaseResult {
	var matched []*TestCaseResult
	for _, t := range r.AllTests() {
		s := t.Status()
		for _, want := range statuses {
			if s == want {
				matched = append(matched, t)
				break
			}
		}
	}
	return matched
}

// AllMarkedResults returns every result in the tree whose mark is not
// MarkNone, including this suite itself if so marked.
func (r *TestSuiteResult) AllMarkedResults() []TestResult {
	return r.AllMatchingMarks(MarkSkip, MarkOnly)
}

// AllMatchingMarks returns every result in the tree whose mark is one of
// marks. Traversal visits the suite itself, its before-all and after-all
// wrappers, then its tests; duplicates keep their first occurrence.
func (r *TestSuiteResult) AllMatchingMarks(marks ...Mark) []TestResult {
	var matched []TestResult
	seen := make(map[TestResult]bool)
	r.collectMarks(marks, seen, &matched)
	return matched
}

func (r *TestSuiteResult) collectMarks(marks []Mark, seen map[TestResult]bool, into *[]TestResult) {
	add := func(t TestResult) {
		if seen[t] {
			return
		}
		for _, want := range marks {
			if t.Mark() == want {
				seen[t] = true
				*into = append(*into, t)
				return
			}
		}
	}

	add(r)
	for _, t := range r.beforeAll {
		add(t)
	}
	for _, t := range r.afterAll {
		add(t)
	}
	for _, t := range r.tests {
		switch node := t.(type) {
		case *TestCaseResult:
			add(node)
		case *TestSuiteResult:
			node.collectMarks(marks, seen, into)
		}
	}
}

// AllPassingFiles returns the filenames whose every test passed. A file
// containing any non-passing test is excluded. The result is sorted.
func (r *TestSuiteResult) AllPassingFiles() []string {
	passing := make(map[string]bool)
	for _, t := range r.AllTests() {
		file := t.Filename()
		if file == "" {
			continue
		}
		if t.IsPass() {
			if _, seen := passing[file]; !seen {
				passing[file] = true
			}
		} else {
			passing[file] = false
		}
	}

	var files []string
	for file, ok := range passing {
		if ok {
			files = append(files, file)
		}
	}
	sort.Strings(files)
	return files
}

// Count tallies the statuses of every test in the tree.
func (r *TestSuiteResult) Count() Counts {
	var c Counts
	for _, t := range r.AllTests() {
		switch t.Status() {
		case StatusPass:
			c.Pass++
		case StatusFail:
			c.Fail++
		case StatusSkip:
			c.Skip++
		case StatusTimeout:
			c.Timeout++
		}
		c.Total++
	}
	return c
}

// Equal reports structural equality with another result node.
func (r *TestSuiteResult) Equal(other TestResult) bool {
	o, ok := other.(*TestSuiteResult)
	if !ok {
		return false
	}
	if len(r.name) != len(o.name) {
		return false
	}
	for i := range r.name {
		if r.name[i] != o.name[i] {
			return false
		}
	}
	if r.mark != o.mark || r.filename != o.filename {
		return false
	}
	if !caseResultsEqual(r.beforeAll, o.beforeAll) || !caseResultsEqual(r.afterAll, o.afterAll) {
		return false
	}
	if len(r.tests) != len(o.tests) {
		return false
	}
	for i := range r.tests {
		if !r.tests[i].Equal(o.tests[i]) {
			return false
		}
	}
	return true
}

func caseResultsEqual(a, b []*TestCaseResult) bool {
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
