package results

import (
	"time"

	"github.com/davecgh/go-spew/spew"
)

// RunResult is the outcome of a single invocation of a user function, either
// a hook body or a test body. Values are immutable once constructed.
type RunResult struct {
	name         []string
	filename     string
	status       Status
	errorMessage string
	errorRender  any
	timeout      time.Duration
}

// RunOptions names the function a RunResult describes.
type RunOptions struct {
	Name     []string
	Filename string
}

// Pass constructs a passing RunResult.
func Pass(o RunOptions) RunResult {
	return RunResult{name: o.Name, filename: o.Filename, status: StatusPass}
}

// Skip constructs a skipped RunResult.
func Skip(o RunOptions) RunResult {
	return RunResult{name: o.Name, filename: o.Filename, status: StatusSkip}
}

// Fail constructs a failing RunResult from the value the body panicked with.
// The message is derived from err; render is an opaque pre-rendered artifact
// produced by the injected renderer, kept alongside so results stay
// serializable without holding the original value.
func Fail(o RunOptions, err any, render any) RunResult {
	return RunResult{
		name:         o.Name,
		filename:     o.Filename,
		status:       StatusFail,
		errorMessage: errorMessageFor(err),
		errorRender:  render,
	}
}

// Timeout constructs a timed-out RunResult. timeout is the configured limit,
// not the measured time.
func Timeout(o RunOptions, timeout time.Duration) RunResult {
	return RunResult{name: o.Name, filename: o.Filename, status: StatusTimeout, timeout: timeout}
}

// MessageFor derives a human-readable message from an arbitrary panicked
// value: an error's message, a string as-is, anything else a deep
// inspection dump.
func MessageFor(err any) string {
	return errorMessageFor(err)
}

func errorMessageFor(err any) string {
	switch e := err.(type) {
	case error:
		return e.Error()
	case string:
		return e
	case nil:
		return ""
	default:
		return spew.Sprintf("%#v", e)
	}
}

// Name is the full path of the function: outermost suite first, the
// function's own label last.
func (r RunResult) Name() []string { return r.name }

// Filename is the source path of the module that defined the function, if
// known.
func (r RunResult) Filename() string { return r.filename }

func (r RunResult) Status() Status { return r.status }

// ErrorMessage is set only for failures.
func (r RunResult) ErrorMessage() string { return r.errorMessage }

// ErrorRender is the renderer's artifact for a failure; opaque to the engine.
func (r RunResult) ErrorRender() any { return r.errorRender }

// Timeout is the configured limit that expired; set only for timeouts.
func (r RunResult) Timeout() time.Duration { return r.timeout }

func (r RunResult) IsPass() bool    { return r.status == StatusPass }
func (r RunResult) IsFail() bool    { return r.status == StatusFail }
func (r RunResult) IsSkip() bool    { return r.status == StatusSkip }
func (r RunResult) IsTimeout() bool { return r.status == StatusTimeout }

// Equal reports structural equality: names, filename, status, error message,
// and timeout value. The rendered error artifact is deliberately ignored.
func (r RunResult) Equal(other RunResult) bool {
	if len(r.name) != len(other.name) {
		return false
	}
	for i := range r.name {
		if r.name[i] != other.name[i] {
			return false
		}
	}
	return r.filename == other.filename &&
		r.status == other.status &&
		r.errorMessage == other.errorMessage &&
		r.timeout == other.timeout
}
