package suite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ergotest/ergotest/pkg/results"
)

func TestHooksAndTestsRunInRegistrationOrder(t *testing.T) {
	var log []string
	record := func(entry string) TestFn {
		return func(t *TestContext) { log = append(log, entry) }
	}

	s := Describe("suite", func() {
		BeforeAll(record("X"))
		BeforeAll(record("Y"))
		AfterAll(record("P"))
		AfterAll(record("Q"))
		BeforeEach(record("a"))
		AfterEach(record("b"))
		It("t1", record("t1"))
		It("t2", record("t2"))
	})

	runPlain(s)
	assert.Equal(t, []string{"X", "Y", "a", "t1", "b", "a", "t2", "b", "P", "Q"}, log)
}

func TestProgressEventsArriveInExecutionOrder(t *testing.T) {
	s := Describe("suite", func() {
		BeforeAll(func(t *TestContext) {})
		BeforeAll(func(t *TestContext) {})
		AfterAll(func(t *TestContext) {})
		It("t1", func(t *TestContext) {})
		It("t2", func(t *TestContext) {})
	})

	var names [][]string
	s.Run(context.Background(), &RunOptions{
		OnTestCaseResult: func(result *results.TestCaseResult) {
			names = append(names, result.Name())
		},
	})

	assert.Equal(t, [][]string{
		{"suite", "beforeAll #1"},
		{"suite", "beforeAll #2"},
		{"suite", "t1"},
		{"suite", "t2"},
		{"suite", "afterAll"},
	}, names)
}

func TestHookCompositionAcrossNestedSuites(t *testing.T) {
	var log []string
	record := func(entry string) TestFn {
		return func(t *TestContext) { log = append(log, entry) }
	}

	s := Describe("A", func() {
		BeforeEach(record("A.before"))
		AfterEach(record("A.after"))
		Describe("B", func() {
			BeforeEach(record("B.before"))
			AfterEach(record("B.after"))
			Describe("C", func() {
				BeforeEach(record("C.before"))
				AfterEach(record("C.after"))
				It("test", record("test"))
			})
		})
	})

	runPlain(s)
	assert.Equal(t, []string{
		"A.before", "B.before", "C.before",
		"test",
		"C.after", "B.after", "A.after",
	}, log)
}

func TestComposedHooksCarrySuitePathNames(t *testing.T) {
	s := Describe("outer", func() {
		BeforeEach(func(t *TestContext) {})
		Describe("inner", func() {
			BeforeEach(func(t *TestContext) {})
			It("test", func(t *TestContext) {})
		})
	})

	result := runPlain(s)
	tests := result.AllTests()
	require.Len(t, tests, 1)
	before := tests[0].BeforeEach()
	require.Len(t, before, 2)
	assert.Equal(t, []string{"outer", "beforeEach"}, before[0].Name())
	assert.Equal(t, []string{"outer", "inner", "beforeEach"}, before[1].Name())
}

func TestFailedBeforeEachSkipsBodyRemainingHooksAndAfterEach(t *testing.T) {
	var log []string
	record := func(entry string) TestFn {
		return func(t *TestContext) { log = append(log, entry) }
	}

	s := Describe("suite", func() {
		BeforeEach(func(t *TestContext) { panic("setup broke") })
		BeforeEach(record("second before"))
		AfterEach(record("after"))
		It("test", record("body"))
	})

	result := runPlain(s)
	assert.Empty(t, log)

	tests := result.AllTests()
	require.Len(t, tests, 1)
	c := tests[0]
	assert.True(t, c.IsFail())
	require.Len(t, c.BeforeEach(), 2)
	assert.True(t, c.BeforeEach()[0].IsFail())
	assert.True(t, c.BeforeEach()[1].IsSkip())
	assert.True(t, c.It().IsSkip())
	require.Len(t, c.AfterEach(), 1)
	assert.True(t, c.AfterEach()[0].IsSkip())
}

func TestFailedBodySkipsAfterEach(t *testing.T) {
	var log []string

	s := Describe("suite", func() {
		AfterEach(func(t *TestContext) { log = append(log, "after") })
		It("explodes", func(t *TestContext) { panic("boom") })
	})

	result := runPlain(s)
	assert.Empty(t, log)

	c := result.AllTests()[0]
	assert.True(t, c.IsFail())
	require.Len(t, c.AfterEach(), 1)
	assert.True(t, c.AfterEach()[0].IsSkip())
}

func TestFailedAfterEachDoesNotCascade(t *testing.T) {
	var log []string
	record := func(entry string) TestFn {
		return func(t *TestContext) { log = append(log, entry) }
	}

	s := Describe("suite", func() {
		AfterEach(func(t *TestContext) { panic("teardown broke") })
		AfterEach(record("second after"))
		It("t1", record("t1"))
		It("t2", record("t2"))
	})

	result := runPlain(s)
	// The second after-each hook and the sibling test still run.
	assert.Equal(t, []string{"t1", "second after", "t2", "second after"}, log)

	tests := result.AllTests()
	require.Len(t, tests, 2)
	assert.True(t, tests[0].IsFail())
	assert.True(t, tests[1].IsFail())
}

func TestFailedBeforeAllSkipsSubtreeAndSubsequentHooks(t *testing.T) {
	var log []string
	record := func(entry string) TestFn {
		return func(t *TestContext) { log = append(log, entry) }
	}

	s := Describe("suite", func() {
		BeforeAll(func(t *TestContext) { panic("setup broke") })
		BeforeAll(record("second beforeAll"))
		AfterAll(record("afterAll"))
		It("test", record("body"))
		Describe("inner", func() {
			It("deep", record("deep body"))
		})
	})

	result := runPlain(s)
	assert.Empty(t, log)

	before := result.BeforeAll()
	require.Len(t, before, 2)
	assert.True(t, before[0].IsFail())
	assert.True(t, before[1].IsSkip())

	after := result.AfterAll()
	require.Len(t, after, 1)
	assert.True(t, after[0].IsSkip())

	for _, test := range result.AllMatchingTests(results.StatusPass, results.StatusFail, results.StatusTimeout) {
		assert.True(t, test.Equal(before[0]), "only the failed hook may be non-skip, got %v", test.Name())
	}
	counts := result.Count()
	assert.Equal(t, 1, counts.Fail)
	assert.Equal(t, counts.Total-1, counts.Skip)
}

func TestFailedBeforeAllSkipsEvenOnlyDescendants(t *testing.T) {
	var log []string

	s := Describe("suite", func() {
		BeforeAll(func(t *TestContext) { panic("setup broke") })
		Describe("inner", func() {
			OnlyIt("chosen", func(t *TestContext) { log = append(log, "chosen") })
		})
	})

	result := runPlain(s)
	assert.Empty(t, log)

	byName := map[string]results.Status{}
	for _, test := range result.AllTests() {
		byName[test.Name()[len(test.Name())-1]] = test.Status()
	}
	assert.Equal(t, results.StatusSkip, byName["chosen"])
	assert.Equal(t, results.StatusFail, byName["beforeAll"])
}

func TestAfterAllRunsWhenChildrenFail(t *testing.T) {
	var log []string

	s := Describe("suite", func() {
		AfterAll(func(t *TestContext) { log = append(log, "afterAll") })
		It("explodes", func(t *TestContext) { panic("boom") })
	})

	runPlain(s)
	assert.Equal(t, []string{"afterAll"}, log)
}

func TestSkippedSuiteSkipsItsHooks(t *testing.T) {
	var log []string

	s := SkipDescribe("suite", func() {
		BeforeAll(func(t *TestContext) { log = append(log, "beforeAll") })
		AfterAll(func(t *TestContext) { log = append(log, "afterAll") })
		It("test", func(t *TestContext) { log = append(log, "body") })
	})

	result := runPlain(s)
	assert.Empty(t, log)

	require.Len(t, result.BeforeAll(), 1)
	assert.True(t, result.BeforeAll()[0].IsSkip())
	require.Len(t, result.AfterAll(), 1)
	assert.True(t, result.AfterAll()[0].IsSkip())
}

func TestSkipTransitivity(t *testing.T) {
	s := SkipDescribe("outer", func() {
		It("direct", func(t *TestContext) {})
		Describe("inner", func() {
			It("nested", func(t *TestContext) {})
			OnlyIt("rescued", func(t *TestContext) {})
		})
	})

	result := runPlain(s)
	byName := map[string]results.Status{}
	for _, test := range result.AllTests() {
		byName[test.Name()[len(test.Name())-1]] = test.Status()
	}

	assert.Equal(t, results.StatusSkip, byName["direct"])
	assert.Equal(t, results.StatusSkip, byName["nested"])
	// A descendant's own .only overrides the inherited skip.
	assert.Equal(t, results.StatusPass, byName["rescued"])
}

func TestOnlyPruning(t *testing.T) {
	s := Describe("A", func() {
		Describe("B", func() {
			OnlyIt("keep", func(t *TestContext) {})
			It("drop", func(t *TestContext) {})
		})
		It("drop2", func(t *TestContext) {})
	})

	result := runPlain(s)
	byName := map[string]results.Status{}
	for _, test := range result.AllTests() {
		byName[test.Name()[len(test.Name())-1]] = test.Status()
	}

	assert.Equal(t, results.StatusPass, byName["keep"])
	assert.Equal(t, results.StatusSkip, byName["drop"])
	assert.Equal(t, results.StatusSkip, byName["drop2"])
}

func TestOnlyDescribeRunsItsSubtreeExclusively(t *testing.T) {
	s := Describe("root", func() {
		OnlyDescribe("chosen", func() {
			It("runs", func(t *TestContext) {})
		})
		Describe("other", func() {
			It("skipped", func(t *TestContext) {})
		})
	})

	result := runPlain(s)
	byName := map[string]results.Status{}
	for _, test := range result.AllTests() {
		byName[test.Name()[len(test.Name())-1]] = test.Status()
	}

	assert.Equal(t, results.StatusPass, byName["runs"])
	assert.Equal(t, results.StatusSkip, byName["skipped"])
}

func TestResolveMark(t *testing.T) {
	tests := []struct {
		name               string
		own, parent        results.Mark
		hasOnlyDescendants bool
		beforeAllFailed    bool
		want               results.Mark
	}{
		{"own only without only descendants", results.MarkOnly, results.MarkNone, false, false, results.MarkOnly},
		{"own only with only descendants", results.MarkOnly, results.MarkNone, true, false, results.MarkSkip},
		{"inherits parent only", results.MarkNone, results.MarkOnly, false, false, results.MarkOnly},
		{"inherits parent skip", results.MarkNone, results.MarkSkip, false, false, results.MarkSkip},
		{"own skip wins", results.MarkSkip, results.MarkOnly, false, false, results.MarkSkip},
		{"before-all failure forces skip", results.MarkOnly, results.MarkNone, false, true, results.MarkSkip},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := resolveMark(test.own, test.parent, test.hasOnlyDescendants, test.beforeAllFailed)
			assert.Equal(t, test.want, got)
		})
	}
}

func TestFilenameIsInheritedFromTheSuite(t *testing.T) {
	s := Describe("outer", func() {
		It("test", func(t *TestContext) {})
		Describe("inner", func() {
			It("deep", func(t *TestContext) {})
		})
	})
	s.SetFilename("/src/module_test")

	result := runPlain(s)
	assert.Equal(t, "/src/module_test", result.Filename())
	for _, test := range result.AllTests() {
		assert.Equal(t, "/src/module_test", test.Filename())
	}
}

func TestGetConfigExposesRunConfiguration(t *testing.T) {
	var got any
	s := Describe("suite", func() {
		It("reads config", func(t *TestContext) {
			got = t.GetConfig("port")
		})
	})

	result := s.Run(context.Background(), &RunOptions{
		Config: map[string]any{"port": 8080},
	})

	assert.Equal(t, 8080, got)
	assert.True(t, result.AllTests()[0].IsPass())
}

func TestGetConfigWithMissingNameFailsTheTest(t *testing.T) {
	s := Describe("suite", func() {
		It("reads config", func(t *TestContext) {
			t.GetConfig("missing")
		})
	})

	result := s.Run(context.Background(), &RunOptions{Config: map[string]any{}})

	c := result.AllTests()[0]
	assert.True(t, c.IsFail())
	assert.Contains(t, c.It().ErrorMessage(), "No test config found for name")
}

func TestRenderErrorArtifactIsAttachedToFailures(t *testing.T) {
	s := Describe("suite", func() {
		It("explodes", func(t *TestContext) { panic("boom") })
	})

	result := s.Run(context.Background(), &RunOptions{
		RenderError: func(name []string, err any, filename string) any {
			return map[string]any{"name": name, "message": results.MessageFor(err)}
		},
	})

	c := result.AllTests()[0]
	require.True(t, c.IsFail())
	rendered := c.It().ErrorRender().(map[string]any)
	assert.Equal(t, []string{"suite", "explodes"}, rendered["name"])
	assert.Equal(t, "boom", rendered["message"])
}

func TestGroupSuitesCollectsChildren(t *testing.T) {
	first := Describe("first", func() {
		It("a", func(t *TestContext) {})
	})
	second := Describe("second", func() {
		It("b", func(t *TestContext) {})
	})

	result := runPlain(GroupSuites(first, second))
	tests := result.AllTests()
	require.Len(t, tests, 2)
	assert.Equal(t, []string{"first", "a"}, tests[0].Name())
	assert.Equal(t, []string{"second", "b"}, tests[1].Name())
}

func TestFailureSuiteProducesASingleFailingCase(t *testing.T) {
	s := FailureSuite("error when importing mod", "Test module not found: /mod", "/mod")

	result := runPlain(s)
	tests := result.AllTests()
	require.Len(t, tests, 1)
	assert.True(t, tests[0].IsFail())
	assert.Equal(t, []string{"error when importing mod"}, tests[0].Name())
	assert.Equal(t, "/mod", tests[0].Filename())
	assert.Contains(t, tests[0].It().ErrorMessage(), "Test module not found")
	assert.Equal(t, results.MarkNone, tests[0].Mark())
}

func TestFailureCaseRunsEvenUnderOnlySelection(t *testing.T) {
	s := Describe("root", func() {
		OnlyIt("chosen", func(t *TestContext) {})
	})
	group := GroupSuites(s, FailureSuite("error when importing mod", "Test module not found: /mod", "/mod"))

	result := runPlain(group)
	byName := map[string]results.Status{}
	for _, test := range result.AllTests() {
		byName[test.Name()[len(test.Name())-1]] = test.Status()
	}

	assert.Equal(t, results.StatusPass, byName["chosen"])
	assert.Equal(t, results.StatusFail, byName["error when importing mod"])
}
