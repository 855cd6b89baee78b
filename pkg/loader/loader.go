// Package loader resolves module paths to test suites. Go binaries cannot
// load source files at run time, so a test module is a suite factory
// registered under an absolute path-like key, normally from the user
// binary's init or main. Registrations made there exist in the worker
// process too, because the worker re-executes the same binary.
package loader

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/ergotest/ergotest/pkg/suite"
)

// SuiteFactory produces a module's exported suite, normally by invoking the
// describe DSL.
type SuiteFactory func() *suite.TestSuite

var (
	mu        sync.RWMutex
	modules   = map[string]SuiteFactory{}
	renderers = map[string]suite.RenderErrorFn{}
)

// Register makes a test module available under path. The path must be
// absolute; Load reports a synthetic failure otherwise.
func Register(path string, factory SuiteFactory) {
	mu.Lock()
	defer mu.Unlock()
	modules[path] = factory
}

// RegisterRenderer makes an error renderer available under name.
func RegisterRenderer(name string, fn suite.RenderErrorFn) {
	mu.Lock()
	defer mu.Unlock()
	renderers[name] = fn
}

// ResolveRenderer looks up a registered renderer. A missing renderer is an
// engine-level error, fatal to the run.
func ResolveRenderer(name string) (suite.RenderErrorFn, error) {
	mu.RLock()
	defer mu.RUnlock()
	fn, ok := renderers[name]
	if !ok {
		return nil, fmt.Errorf("renderer not found: %q", name)
	}
	return fn, nil
}

// Reset forgets all registrations. Intended for tests.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	modules = map[string]SuiteFactory{}
	renderers = map[string]suite.RenderErrorFn{}
}

// Load resolves each module path, in order, into its exported suite and
// groups them under a synthetic outer suite. Load failures never abort the
// run; each becomes a suite holding a single failing case that names the
// module and carries the load error.
func Load(paths []string) *suite.TestSuite {
	suites := make([]*suite.TestSuite, 0, len(paths))
	for _, path := range paths {
		suites = append(suites, loadModule(path))
	}
	return suite.GroupSuites(suites...)
}

func loadModule(path string) *suite.TestSuite {
	errorName := "error when importing " + filepath.Base(path)

	if !filepath.IsAbs(path) {
		return suite.FailureSuite(errorName, fmt.Sprintf("Test module path must be absolute: %s", path), path)
	}

	mu.RLock()
	factory, ok := modules[path]
	mu.RUnlock()
	if !ok {
		return suite.FailureSuite(errorName, fmt.Sprintf("Test module not found: %s", path), path)
	}

	loaded, err := callFactory(factory)
	if err != nil {
		return suite.FailureSuite(errorName, err, path)
	}
	if loaded == nil {
		return suite.FailureSuite(errorName, fmt.Sprintf("Test module doesn't export a test suite: %s", path), path)
	}

	loaded.SetFilename(path)
	return loaded
}

// callFactory invokes the factory, converting a panic into the load error.
func callFactory(factory SuiteFactory) (loaded *suite.TestSuite, err any) {
	defer func() {
		if recovered := recover(); recovered != nil {
			loaded, err = nil, recovered
		}
	}()
	return factory(), nil
}
