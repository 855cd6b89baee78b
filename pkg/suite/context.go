// Package suite builds and executes the test tree: the describe/it DSL, test
// cases, lifecycle hooks, and the recursive execution engine that produces
// the result tree.
package suite

import (
	"context"
	"fmt"
)

// TestFn is the signature of test and hook bodies. A body signals failure by
// panicking; assertion helpers and require-style libraries fit naturally.
type TestFn func(t *TestContext)

// TestContext is handed to every test and hook body.
type TestContext struct {
	ctx    context.Context
	config map[string]any
}

// Context returns a context that is cancelled when the body's timeout fires.
// Cooperative bodies should watch it; interruption is best-effort.
func (t *TestContext) Context() context.Context {
	return t.ctx
}

// GetConfig returns the run configuration value registered under name. A
// missing name panics, which surfaces as a test failure.
func (t *TestContext) GetConfig(name string) any {
	value, ok := t.config[name]
	if !ok {
		panic(fmt.Sprintf("No test config found for name %q", name))
	}
	return value
}
