package runner

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"

	"github.com/ergotest/ergotest/pkg/clock"
	"github.com/ergotest/ergotest/pkg/loader"
	"github.com/ergotest/ergotest/pkg/results"
	"github.com/ergotest/ergotest/pkg/suite"
)

const (
	workerEnvVar = "ERGOTEST_WORKER"
	runIDEnvVar  = "ERGOTEST_RUN_ID"

	// The worker inherits the parent's message pipe as file descriptor 3,
	// the first slot after stdin/stdout/stderr.
	workerPipeFD = 3
)

// WorkerMain is the worker process entry point. User binaries call it at the
// top of main, before registering command-line flags or doing other work; it
// returns immediately unless the process was spawned as a test worker, in
// which case it runs the worker protocol and exits.
func WorkerMain() {
	if os.Getenv(workerEnvVar) == "" {
		return
	}
	pipe := os.NewFile(workerPipeFD, "ergotest-worker-pipe")
	os.Exit(runWorker(os.Stdin, pipe, clock.New(), KeepaliveInterval))
}

// runWorker is the worker protocol body: announce liveness, read the startup
// message, run the requested modules streaming progress, deliver the final
// result. Anything that escapes the engine is substituted with a synthetic
// "unhandled error" result so the parent always learns what happened.
func runWorker(stdin io.Reader, pipe io.Writer, clk clock.Clock, keepaliveInterval time.Duration) (code int) {
	var mu sync.Mutex
	encoder := json.NewEncoder(pipe)
	send := func(m workerMessage) {
		mu.Lock()
		defer mu.Unlock()
		_ = encoder.Encode(&m)
	}

	cancelKeepalive := clock.Repeat(clk, keepaliveInterval, func() {
		send(keepaliveMessage())
	})
	defer cancelKeepalive()

	defer func() {
		if recovered := recover(); recovered != nil {
			if m, err := completeMessage(unhandledErrorResult(recovered)); err == nil {
				send(m)
			} else {
				send(fatalMessage("unhandled error in test worker", results.MessageFor(recovered)))
			}
			code = 1
		}
	}()

	var startup startupMessage
	if err := json.NewDecoder(stdin).Decode(&startup); err != nil {
		send(fatalMessage("could not read startup message", err.Error()))
		return 1
	}

	var renderError suite.RenderErrorFn
	if startup.Renderer != "" {
		fn, err := loader.ResolveRenderer(startup.Renderer)
		if err != nil {
			send(fatalMessage("could not load renderer", err.Error()))
			return 1
		}
		renderError = fn
	}

	result := loader.Load(startup.ModulePaths).Run(context.Background(), &suite.RunOptions{
		Timeout:     time.Duration(startup.Timeout) * time.Millisecond,
		Config:      startup.Config,
		RenderError: renderError,
		Clock:       clk,
		OnTestCaseResult: func(t *results.TestCaseResult) {
			if m, err := progressMessage(t); err == nil {
				send(m)
			} else {
				send(fatalMessage("could not report progress", err.Error()))
			}
		},
	})

	m, err := completeMessage(result)
	if err != nil {
		send(fatalMessage("could not report final result", err.Error()))
		return 1
	}
	send(m)
	return 0
}

// unhandledErrorResult is the tree substituted when the worker itself blows
// up instead of finishing the run.
func unhandledErrorResult(err any) *results.TestSuiteResult {
	failure := results.Fail(
		results.RunOptions{Name: []string{"Unhandled error in tests"}},
		err,
		nil,
	)
	failureCase := results.NewTestCaseResult(results.MarkNone, nil, failure, nil)
	return results.NewTestSuiteResult(results.SuiteResultOptions{
		Tests: []results.TestResult{failureCase},
	})
}
