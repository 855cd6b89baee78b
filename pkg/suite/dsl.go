package suite

import (
	"github.com/ergotest/ergotest/pkg/results"
)

// The DSL registers tests while a describe function executes. A stack of
// in-progress builders makes describe re-entrant: each nested describe
// pushes its own builder, evaluates its function synchronously, and pops.
// Registration is single-threaded; the stack is owned by whichever entity
// drives module loading and is torn down per loaded module.
var builderStack []*suiteBuilder

type suiteBuilder struct {
	beforeAll  []*BeforeAfter
	afterAll   []*BeforeAfter
	beforeEach []*BeforeAfter
	afterEach  []*BeforeAfter
	tests      []node
}

func currentBuilder() *suiteBuilder {
	if len(builderStack) == 0 {
		return nil
	}
	return builderStack[len(builderStack)-1]
}

// Describe registers a suite. fn runs immediately; the DSL calls it makes
// populate the suite. A nil fn auto-skips the suite. The finished suite is
// appended to the enclosing describe, if any, and returned.
func Describe(name string, fn func(), opts ...Option) *TestSuite {
	return describe(name, results.MarkNone, fn, opts)
}

// SkipDescribe registers a suite marked .skip.
func SkipDescribe(name string, fn func(), opts ...Option) *TestSuite {
	return describe(name, results.MarkSkip, fn, opts)
}

// OnlyDescribe registers a suite marked .only.
func OnlyDescribe(name string, fn func(), opts ...Option) *TestSuite {
	return describe(name, results.MarkOnly, fn, opts)
}

func describe(name string, mark results.Mark, fn func(), opts []Option) *TestSuite {
	options := applyOptions(opts)

	var s *TestSuite
	if fn == nil {
		if mark == results.MarkOnly {
			// Nothing to run, but the author asked for it exclusively; make
			// the mistake impossible to miss.
			s = &TestSuite{
				mark:    results.MarkOnly,
				options: options,
				tests:   []node{newFailureTestCase(name, "Test suite is marked '.only', but it has no body")},
			}
		} else {
			s = &TestSuite{name: name, mark: results.MarkSkip, options: options}
		}
	} else {
		builder := &suiteBuilder{}
		builderStack = append(builderStack, builder)
		func() {
			defer func() {
				builderStack = builderStack[:len(builderStack)-1]
			}()
			fn()
		}()
		s = &TestSuite{
			name:       name,
			mark:       mark,
			options:    options,
			beforeAll:  builder.beforeAll,
			afterAll:   builder.afterAll,
			beforeEach: builder.beforeEach,
			afterEach:  builder.afterEach,
			tests:      builder.tests,
		}
	}

	if parent := currentBuilder(); parent != nil {
		parent.tests = append(parent.tests, s)
	}
	return s
}

// It registers a test case in the enclosing describe. A nil fn turns the
// test into a placeholder that reports as skipped.
func It(name string, fn TestFn, opts ...Option) {
	addTest(name, results.MarkNone, fn, opts)
}

// SkipIt registers a test case marked .skip.
func SkipIt(name string, fn TestFn, opts ...Option) {
	addTest(name, results.MarkSkip, fn, opts)
}

// OnlyIt registers a test case marked .only. A bodiless .only test fails at
// execution time.
func OnlyIt(name string, fn TestFn, opts ...Option) {
	addTest(name, results.MarkOnly, fn, opts)
}

func addTest(name string, mark results.Mark, fn TestFn, opts []Option) {
	builder := mustCurrentBuilder("it")
	builder.tests = append(builder.tests, newTestCase(name, mark, applyOptions(opts), fn))
}

// BeforeAll registers a hook that runs once before the suite's descendants.
func BeforeAll(fn TestFn, opts ...Option) {
	builder := mustCurrentBuilder("beforeAll")
	builder.beforeAll = append(builder.beforeAll, newBeforeAfter(applyOptions(opts), fn))
}

// AfterAll registers a hook that runs once after the suite's descendants.
func AfterAll(fn TestFn, opts ...Option) {
	builder := mustCurrentBuilder("afterAll")
	builder.afterAll = append(builder.afterAll, newBeforeAfter(applyOptions(opts), fn))
}

// BeforeEach registers a hook that runs before every descendant test.
func BeforeEach(fn TestFn, opts ...Option) {
	builder := mustCurrentBuilder("beforeEach")
	builder.beforeEach = append(builder.beforeEach, newBeforeAfter(applyOptions(opts), fn))
}

// AfterEach registers a hook that runs after every descendant test.
func AfterEach(fn TestFn, opts ...Option) {
	builder := mustCurrentBuilder("afterEach")
	builder.afterEach = append(builder.afterEach, newBeforeAfter(applyOptions(opts), fn))
}

func mustCurrentBuilder(caller string) *suiteBuilder {
	builder := currentBuilder()
	if builder == nil {
		panic(caller + "() called outside of describe()")
	}
	return builder
}
