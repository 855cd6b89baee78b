// Package runner executes test modules, either in the current process or in
// an isolated child worker. The child-process path streams progress back
// over a pipe and guards against tests that never yield with a keepalive
// watchdog.
package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/google/uuid"

	"github.com/ergotest/ergotest/pkg/clock"
	"github.com/ergotest/ergotest/pkg/events"
	"github.com/ergotest/ergotest/pkg/loader"
	"github.com/ergotest/ergotest/pkg/results"
	"github.com/ergotest/ergotest/pkg/suite"
)

// KeepaliveInterval is how often the worker reports liveness.
const KeepaliveInterval = 100 * time.Millisecond

// ErrWorkerFatal wraps a fatal error reported by the worker process.
var ErrWorkerFatal = errors.New("fatal error in test worker")

// TestRunner runs suites of test modules.
type TestRunner struct {
	clock          clock.Clock
	emitter        *events.Emitter
	workerCommand  []string
	watchdogWindow time.Duration
}

// Option configures a TestRunner.
type Option func(*TestRunner)

// WithClock replaces the runner's clock. Tests inject a deterministic one.
func WithClock(c clock.Clock) Option {
	return func(r *TestRunner) { r.clock = c }
}

// WithWorkerCommand replaces the command line used to spawn the worker.
// The default re-executes the current binary.
func WithWorkerCommand(argv ...string) Option {
	return func(r *TestRunner) { r.workerCommand = argv }
}

// WithWatchdogWindow sets how long the parent tolerates silence from the
// worker before declaring an infinite loop. Defaults to the default test
// timeout.
func WithWatchdogWindow(d time.Duration) Option {
	return func(r *TestRunner) { r.watchdogWindow = d }
}

// New creates a test runner.
func New(opts ...Option) *TestRunner {
	r := &TestRunner{
		clock:          clock.New(),
		emitter:        events.NewEmitter(),
		watchdogWindow: clock.DefaultTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Events exposes the runner's event emitter. Reporters subscribe here.
func (r *TestRunner) Events() *events.Emitter {
	return r.emitter
}

// RunOptions configures a run.
type RunOptions struct {
	// Timeout is the default deadline per hook or test body.
	Timeout time.Duration

	// Config is exposed to test bodies through TestContext.GetConfig.
	Config map[string]any

	// OnTestCaseResult observes every completed test case in execution
	// order, including those streamed back from a worker.
	OnTestCaseResult func(*results.TestCaseResult)

	// Renderer names a registered error renderer. Resolution failure is
	// fatal to the run.
	Renderer string
}

// RunStarted is the EventRunStarted payload.
type RunStarted struct {
	RunID       string
	ModulePaths []string
}

// RunCompleted is the EventRunCompleted payload.
type RunCompleted struct {
	RunID  string
	Result *results.TestSuiteResult
}

// RunInCurrentProcess loads the modules and runs them in this process.
func (r *TestRunner) RunInCurrentProcess(ctx context.Context, modulePaths []string, opts *RunOptions) (*results.TestSuiteResult, error) {
	opts = normalizeOptions(opts)

	renderError, err := resolveRenderer(opts.Renderer)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	r.emitter.Emit(events.EventRunStarted, RunStarted{RunID: runID, ModulePaths: modulePaths})

	result := loader.Load(modulePaths).Run(ctx, &suite.RunOptions{
		Timeout:          opts.Timeout,
		Config:           opts.Config,
		RenderError:      renderError,
		Clock:            r.clock,
		OnTestCaseResult: r.deliver(opts),
	})

	r.emitter.Emit(events.EventRunCompleted, RunCompleted{RunID: runID, Result: result})
	return result, nil
}

// RunInChildProcess spawns a worker, streams its progress, and returns the
// final result tree. If the worker goes silent past the watchdog window it
// is killed and a synthetic watchdog failure is returned in its place.
func (r *TestRunner) RunInChildProcess(ctx context.Context, modulePaths []string, opts *RunOptions) (*results.TestSuiteResult, error) {
	opts = normalizeOptions(opts)
	runID := uuid.NewString()

	argv := r.workerCommand
	if len(argv) == 0 {
		argv = []string{os.Args[0]}
	}

	readEnd, writeEnd, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("could not create worker pipe: %w", err)
	}
	defer readEnd.Close()

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Env = append(os.Environ(), workerEnvVar+"=1", runIDEnvVar+"="+runID)
	cmd.ExtraFiles = []*os.File{writeEnd}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		writeEnd.Close()
		return nil, fmt.Errorf("could not open worker stdin: %w", err)
	}

	if err := cmd.Start(); err != nil {
		writeEnd.Close()
		return nil, fmt.Errorf("could not spawn test worker: %w", err)
	}
	writeEnd.Close()
	defer func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	}()

	startup := startupMessage{
		ModulePaths: modulePaths,
		Timeout:     opts.Timeout.Milliseconds(),
		Config:      opts.Config,
		Renderer:    opts.Renderer,
	}
	if err := json.NewEncoder(stdin).Encode(&startup); err != nil {
		return nil, fmt.Errorf("could not send startup message to test worker: %w", err)
	}

	r.emitter.Emit(events.EventRunStarted, RunStarted{RunID: runID, ModulePaths: modulePaths})
	result, err := r.conduct(ctx, readEnd, opts, func() { _ = cmd.Process.Kill() })
	if err != nil {
		return nil, err
	}
	r.emitter.Emit(events.EventRunCompleted, RunCompleted{RunID: runID, Result: result})
	return result, nil
}

// conduct drives the parent side of the worker protocol: it consumes the
// worker's message stream, feeds the watchdog, and returns the final result.
func (r *TestRunner) conduct(ctx context.Context, pipe io.Reader, opts *RunOptions, kill func()) (*results.TestSuiteResult, error) {
	messages := make(chan workerMessage)
	readFailed := make(chan error, 1)
	go func() {
		decoder := json.NewDecoder(pipe)
		for {
			var m workerMessage
			if err := decoder.Decode(&m); err != nil {
				readFailed <- err
				return
			}
			messages <- m
		}
	}()

	stalled := make(chan struct{}, 1)
	watchdog := clock.NewKeepalive(r.clock, r.watchdogWindow, func() {
		stalled <- struct{}{}
	})
	defer watchdog.Cancel()

	deliver := r.deliver(opts)
	for {
		select {
		case m := <-messages:
			watchdog.Alive()
			switch m.Type {
			case msgKeepalive:
				// Liveness only.
			case msgProgress:
				result, err := decodeProgress(m)
				if err != nil {
					return nil, err
				}
				deliver(result)
			case msgComplete:
				return decodeComplete(m)
			case msgFatal:
				return nil, fmt.Errorf("%w: %s: %v", ErrWorkerFatal, m.Message, m.Err)
			default:
				return nil, fmt.Errorf("unrecognized message from test worker: %q", m.Type)
			}

		case <-stalled:
			kill()
			r.emitter.Emit(events.EventWorkerStalled, nil)
			return watchdogResult(), nil

		case err := <-readFailed:
			kill()
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, errors.New("test worker exited without reporting results")
			}
			return nil, fmt.Errorf("could not read from test worker: %w", err)

		case <-ctx.Done():
			kill()
			return nil, ctx.Err()
		}
	}
}

// deliver fans a completed test case out to the caller's callback and the
// event stream.
func (r *TestRunner) deliver(opts *RunOptions) func(*results.TestCaseResult) {
	return func(result *results.TestCaseResult) {
		if opts.OnTestCaseResult != nil {
			opts.OnTestCaseResult(result)
		}
		r.emitter.Emit(events.EventTestCaseResult, result)
	}
}

func decodeProgress(m workerMessage) (*results.TestCaseResult, error) {
	var serialized results.SerializedTestCaseResult
	if err := json.Unmarshal(m.Result, &serialized); err != nil {
		return nil, fmt.Errorf("malformed progress message from test worker: %w", err)
	}
	result, err := results.DeserializeTestCaseResult(&serialized)
	if err != nil {
		return nil, fmt.Errorf("malformed progress message from test worker: %w", err)
	}
	return result, nil
}

func decodeComplete(m workerMessage) (*results.TestSuiteResult, error) {
	var serialized results.SerializedTestSuiteResult
	if err := json.Unmarshal(m.Result, &serialized); err != nil {
		return nil, fmt.Errorf("malformed final result from test worker: %w", err)
	}
	result, err := results.DeserializeTestSuiteResult(&serialized)
	if err != nil {
		return nil, fmt.Errorf("malformed final result from test worker: %w", err)
	}
	return result, nil
}

// watchdogResult is the tree synthesized when the worker never yields.
func watchdogResult() *results.TestSuiteResult {
	failure := results.Fail(
		results.RunOptions{Name: []string{"Test runner watchdog"}},
		"Detected infinite loop in tests",
		nil,
	)
	watchdogCase := results.NewTestCaseResult(results.MarkNone, nil, failure, nil)
	return results.NewTestSuiteResult(results.SuiteResultOptions{
		Tests: []results.TestResult{watchdogCase},
	})
}

func normalizeOptions(opts *RunOptions) *RunOptions {
	if opts == nil {
		return &RunOptions{}
	}
	return opts
}

func resolveRenderer(name string) (suite.RenderErrorFn, error) {
	if name == "" {
		return nil, nil
	}
	return loader.ResolveRenderer(name)
}
