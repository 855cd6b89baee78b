package suite

import (
	"context"

	"github.com/ergotest/ergotest/pkg/clock"
	"github.com/ergotest/ergotest/pkg/results"
)

// runnable is one callable unit: per-call options and an optional body; the
// display name is supplied on each run. Executing it under the effective
// timeout yields a RunResult.
type runnable struct {
	options itemOptions
	fn      TestFn
}

// run executes the body under the effective timeout and converts the outcome
// to a RunResult. name is the full display path for this invocation.
func (r *runnable) run(rc runContext, name []string) results.RunResult {
	ro := results.RunOptions{Name: name, Filename: rc.filename}
	if rc.skipAll {
		return results.Skip(ro)
	}

	timeout := r.options.timeout
	if timeout <= 0 {
		timeout = rc.timeout
	}

	return clock.Timeout(rc.ctx, rc.clock, timeout,
		func(ctx context.Context) results.RunResult {
			failed, err := invoke(ctx, r.fn, rc.config)
			if !failed {
				return results.Pass(ro)
			}
			return results.Fail(ro, err, render(rc, name, err))
		},
		func() results.RunResult {
			return results.Timeout(ro, timeout)
		})
}

// invoke calls fn, converting a panic into a failure value. The failed flag
// distinguishes panic(nil) from a normal return.
func invoke(ctx context.Context, fn TestFn, config map[string]any) (failed bool, err any) {
	defer func() {
		if recovered := recover(); recovered != nil || failed {
			failed = true
			err = recovered
		}
	}()
	failed = true
	fn(&TestContext{ctx: ctx, config: config})
	failed = false
	return
}

func render(rc runContext, name []string, err any) any {
	if rc.renderError == nil {
		return nil
	}
	return rc.renderError(name, err, rc.filename)
}
