// Package ergotest provides a testing framework for hierarchical suites of
// test cases with lifecycle hooks, inheritable skip/only marks, per-test
// timeouts, and isolated execution in a child worker process.
//
// Test modules build a suite with the describe DSL and register it under an
// absolute path-like key:
//
//	ergotest.Register("/myapp/math_test", func() *ergotest.TestSuite {
//		return ergotest.Describe("math", func() {
//			ergotest.It("adds", func(t *ergotest.TestContext) {
//				if 1+1 != 2 {
//					panic("arithmetic is broken")
//				}
//			})
//		})
//	})
//
// A runner then executes the registered modules, in this process or in an
// isolated worker. Binaries that use the worker must call WorkerMain at the
// top of main.
package ergotest

import (
	"github.com/ergotest/ergotest/pkg/clock"
	"github.com/ergotest/ergotest/pkg/config"
	"github.com/ergotest/ergotest/pkg/loader"
	"github.com/ergotest/ergotest/pkg/reporter"
	"github.com/ergotest/ergotest/pkg/results"
	"github.com/ergotest/ergotest/pkg/runner"
	"github.com/ergotest/ergotest/pkg/suite"
)

// DefaultTimeout is the fallback deadline per hook or test body.
const DefaultTimeout = clock.DefaultTimeout

// Re-export main types and functions for convenience

// Suite and DSL types
type TestSuite = suite.TestSuite
type TestContext = suite.TestContext
type TestFn = suite.TestFn
type Option = suite.Option
type RenderErrorFn = suite.RenderErrorFn

var (
	Describe     = suite.Describe
	SkipDescribe = suite.SkipDescribe
	OnlyDescribe = suite.OnlyDescribe
	It           = suite.It
	SkipIt       = suite.SkipIt
	OnlyIt       = suite.OnlyIt
	BeforeAll    = suite.BeforeAll
	AfterAll     = suite.AfterAll
	BeforeEach   = suite.BeforeEach
	AfterEach    = suite.AfterEach
	WithTimeout  = suite.WithTimeout
)

// Result types
type Status = results.Status
type Mark = results.Mark
type RunResult = results.RunResult
type TestCaseResult = results.TestCaseResult
type TestSuiteResult = results.TestSuiteResult
type TestResult = results.TestResult
type Counts = results.Counts

type SerializedRunResult = results.SerializedRunResult
type SerializedTestCaseResult = results.SerializedTestCaseResult
type SerializedTestSuiteResult = results.SerializedTestSuiteResult

var (
	DeserializeRunResult       = results.DeserializeRunResult
	DeserializeTestCaseResult  = results.DeserializeTestCaseResult
	DeserializeTestSuiteResult = results.DeserializeTestSuiteResult
)

const (
	StatusPass    = results.StatusPass
	StatusFail    = results.StatusFail
	StatusSkip    = results.StatusSkip
	StatusTimeout = results.StatusTimeout

	MarkNone = results.MarkNone
	MarkSkip = results.MarkSkip
	MarkOnly = results.MarkOnly
)

// Module registration
type SuiteFactory = loader.SuiteFactory

var (
	Register         = loader.Register
	RegisterRenderer = loader.RegisterRenderer
)

// Runner types
type TestRunner = runner.TestRunner
type RunOptions = runner.RunOptions

var (
	NewRunner  = runner.New
	WorkerMain = runner.WorkerMain
)

// Reporter types
type Reporter = reporter.Reporter
type ConsoleReporter = reporter.ConsoleReporter

var (
	NewConsoleReporter = reporter.NewConsoleReporter
	AttachReporter     = reporter.Attach
)

// Config types
type Config = config.Config

var (
	LoadConfig         = config.LoadConfig
	LoadConfigFromFile = config.LoadConfigFromFile
	DefaultConfig      = config.DefaultConfig
	SaveConfig         = config.SaveConfig
)
