package suite

import (
	"context"
	"time"

	"github.com/ergotest/ergotest/pkg/clock"
	"github.com/ergotest/ergotest/pkg/results"
)

// RenderErrorFn produces a human-readable artifact for a failure. It is
// injected by the caller; the engine stores its output opaquely on the
// failing RunResult so results stay serializable.
type RenderErrorFn func(name []string, err any, filename string) any

// Option configures a single describe, it, or hook registration.
type Option func(*itemOptions)

type itemOptions struct {
	timeout time.Duration
}

// WithTimeout sets a timeout for this suite, test, or hook. A suite's
// timeout applies to its own hooks and is inherited by descendants that do
// not set their own.
func WithTimeout(d time.Duration) Option {
	return func(o *itemOptions) {
		o.timeout = d
	}
}

func applyOptions(opts []Option) itemOptions {
	var o itemOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// RunOptions configures a call to TestSuite.Run.
type RunOptions struct {
	// Timeout is the default deadline per hook or test body. Defaults to
	// clock.DefaultTimeout.
	Timeout time.Duration

	// Config is exposed to bodies through TestContext.GetConfig.
	Config map[string]any

	// OnTestCaseResult is invoked for every completed TestCaseResult, in
	// execution order.
	OnTestCaseResult func(*results.TestCaseResult)

	// RenderError renders failures into RunResult.ErrorRender. Optional.
	RenderError RenderErrorFn

	// Clock drives all timing. Defaults to the system clock; tests inject a
	// deterministic one.
	Clock clock.Clock
}

// runContext threads the execution state through the recursion. It is passed
// by value so each frame gets its own copy; sibling frames never share
// mutable state.
type runContext struct {
	ctx              context.Context
	clock            clock.Clock
	name             []string
	filename         string
	timeout          time.Duration
	skipAll          bool
	config           map[string]any
	onTestCaseResult func(*results.TestCaseResult)
	renderError      RenderErrorFn
}

func newRunContext(ctx context.Context, o *RunOptions) runContext {
	rc := runContext{
		ctx:              ctx,
		clock:            clock.New(),
		timeout:          clock.DefaultTimeout,
		config:           map[string]any{},
		onTestCaseResult: func(*results.TestCaseResult) {},
	}
	if o == nil {
		return rc
	}
	if o.Clock != nil {
		rc.clock = o.Clock
	}
	if o.Timeout > 0 {
		rc.timeout = o.Timeout
	}
	if o.Config != nil {
		rc.config = o.Config
	}
	if o.OnTestCaseResult != nil {
		rc.onTestCaseResult = o.OnTestCaseResult
	}
	rc.renderError = o.RenderError
	return rc
}

// childName returns path extended by name, in fresh storage so sibling
// frames cannot clobber each other.
func childName(path []string, name string) []string {
	extended := make([]string, 0, len(path)+1)
	extended = append(extended, path...)
	return append(extended, name)
}
