package results

import (
	"encoding/json"
	"fmt"
	"time"
)

// Serialized forms are typed bare objects: plain structs tagged with a
// "type" discriminator that survive a JSON round trip. Deserialization
// dispatches on the discriminator and fails loudly on unknown tags.
//
// The errorRender artifact rides along as-is. JSON encoding of the wire form
// fails when it holds values JSON cannot represent (channels, functions,
// cyclic structures); other values come back in their decoded JSON shape.
// Equality never depends on it.

const (
	typeRunResult       = "RunResult"
	typeTestCaseResult  = "TestCaseResult"
	typeTestSuiteResult = "TestSuiteResult"
)

// SerializedRunResult is the wire form of a RunResult.
type SerializedRunResult struct {
	Type         string   `json:"type"`
	Name         []string `json:"name"`
	Filename     string   `json:"filename,omitempty"`
	Status       Status   `json:"status"`
	ErrorMessage string   `json:"errorMessage,omitempty"`
	ErrorRender  any      `json:"errorRender,omitempty"`
	Timeout      int64    `json:"timeout,omitempty"`
}

// SerializedTestCaseResult is the wire form of a TestCaseResult.
type SerializedTestCaseResult struct {
	Type       string                 `json:"type"`
	Mark       Mark                   `json:"mark"`
	BeforeEach []*SerializedRunResult `json:"beforeEach"`
	AfterEach  []*SerializedRunResult `json:"afterEach"`
	It         *SerializedRunResult   `json:"it"`
}

// SerializedTestSuiteResult is the wire form of a TestSuiteResult. Tests
// holds *SerializedTestSuiteResult and *SerializedTestCaseResult entries.
type SerializedTestSuiteResult struct {
	Type      string                      `json:"type"`
	Name      []string                    `json:"name"`
	Mark      Mark                        `json:"mark"`
	Filename  string                      `json:"filename,omitempty"`
	Tests     []any                       `json:"tests"`
	BeforeAll []*SerializedTestCaseResult `json:"beforeAll"`
	AfterAll  []*SerializedTestCaseResult `json:"afterAll"`
}

// UnmarshalJSON decodes the heterogeneous Tests list by dispatching on each
// entry's type tag.
func (s *SerializedTestSuiteResult) UnmarshalJSON(data []byte) error {
	type plain SerializedTestSuiteResult
	raw := struct {
		*plain
		Tests []json.RawMessage `json:"tests"`
	}{plain: (*plain)(s)}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	s.Tests = nil
	for _, entry := range raw.Tests {
		var tag struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(entry, &tag); err != nil {
			return err
		}
		switch tag.Type {
		case typeTestSuiteResult:
			child := &SerializedTestSuiteResult{}
			if err := json.Unmarshal(entry, child); err != nil {
				return err
			}
			s.Tests = append(s.Tests, child)
		case typeTestCaseResult:
			child := &SerializedTestCaseResult{}
			if err := json.Unmarshal(entry, child); err != nil {
				return err
			}
			s.Tests = append(s.Tests, child)
		default:
			return fmt.Errorf("unrecognized test result type %q", tag.Type)
		}
	}
	return nil
}

// Serialize converts the result to its wire form.
func (r RunResult) Serialize() *SerializedRunResult {
	return &SerializedRunResult{
		Type:         typeRunResult,
		Name:         r.name,
		Filename:     r.filename,
		Status:       r.status,
		ErrorMessage: r.errorMessage,
		ErrorRender:  r.errorRender,
		Timeout:      r.timeout.Milliseconds(),
	}
}

// DeserializeRunResult rebuilds a RunResult from its wire form.
func DeserializeRunResult(s *SerializedRunResult) (RunResult, error) {
	if s == nil {
		return RunResult{}, fmt.Errorf("nil serialized run result")
	}
	if s.Type != typeRunResult {
		return RunResult{}, fmt.Errorf("unrecognized run result type %q", s.Type)
	}
	return RunResult{
		name:         s.Name,
		filename:     s.Filename,
		status:       s.Status,
		errorMessage: s.ErrorMessage,
		errorRender:  s.ErrorRender,
		timeout:      time.Duration(s.Timeout) * time.Millisecond,
	}, nil
}

// Serialize converts the result to its wire form.
func (r *TestCaseResult) Serialize() *SerializedTestCaseResult {
	return &SerializedTestCaseResult{
		Type:       typeTestCaseResult,
		Mark:       r.mark,
		BeforeEach: serializeRunResults(r.beforeEach),
		AfterEach:  serializeRunResults(r.afterEach),
		It:         r.it.Serialize(),
	}
}

// DeserializeTestCaseResult rebuilds a TestCaseResult from its wire form.
func DeserializeTestCaseResult(s *SerializedTestCaseResult) (*TestCaseResult, error) {
	if s == nil {
		return nil, fmt.Errorf("nil serialized test case result")
	}
	if s.Type != typeTestCaseResult {
		return nil, fmt.Errorf("unrecognized test case result type %q", s.Type)
	}
	before, err := deserializeRunResults(s.BeforeEach)
	if err != nil {
		return nil, err
	}
	after, err := deserializeRunResults(s.AfterEach)
	if err != nil {
		return nil, err
	}
	it, err := DeserializeRunResult(s.It)
	if err != nil {
		return nil, err
	}
	return NewTestCaseResult(s.Mark, before, it, after), nil
}

// Serialize converts the result tree to its wire form.
func (r *TestSuiteResult) Serialize() *SerializedTestSuiteResult {
	s := &SerializedTestSuiteResult{
		Type:      typeTestSuiteResult,
		Name:      r.name,
		Mark:      r.mark,
		Filename:  r.filename,
		Tests:     make([]any, 0, len(r.tests)),
		BeforeAll: serializeCaseResults(r.beforeAll),
		AfterAll:  serializeCaseResults(r.afterAll),
	}
	for _, t := range r.tests {
		switch node := t.(type) {
		case *TestCaseResult:
			s.Tests = append(s.Tests, node.Serialize())
		case *TestSuiteResult:
			s.Tests = append(s.Tests, node.Serialize())
		}
	}
	return s
}

// DeserializeTestSuiteResult rebuilds a result tree from its wire form.
func DeserializeTestSuiteResult(s *SerializedTestSuiteResult) (*TestSuiteResult, error) {
	if s == nil {
		return nil, fmt.Errorf("nil serialized test suite result")
	}
	if s.Type != typeTestSuiteResult {
		return nil, fmt.Errorf("unrecognized test suite result type %q", s.Type)
	}
	before, err := deserializeCaseResults(s.BeforeAll)
	if err != nil {
		return nil, err
	}
	after, err := deserializeCaseResults(s.AfterAll)
	if err != nil {
		return nil, err
	}

	tests := make([]TestResult, 0, len(s.Tests))
	for _, entry := range s.Tests {
		switch child := entry.(type) {
		case *SerializedTestSuiteResult:
			t, err := DeserializeTestSuiteResult(child)
			if err != nil {
				return nil, err
			}
			tests = append(tests, t)
		case *SerializedTestCaseResult:
			t, err := DeserializeTestCaseResult(child)
			if err != nil {
				return nil, err
			}
			tests = append(tests, t)
		default:
			return nil, fmt.Errorf("unrecognized test result entry %T", entry)
		}
	}

	return NewTestSuiteResult(SuiteResultOptions{
		Name:      s.Name,
		Mark:      s.Mark,
		Filename:  s.Filename,
		BeforeAll: before,
		AfterAll:  after,
		Tests:     tests,
	}), nil
}

func serializeRunResults(rs []RunResult) []*SerializedRunResult {
	out := make([]*SerializedRunResult, len(rs))
	for i, r := range rs {
		out[i] = r.Serialize()
	}
	return out
}

func deserializeRunResults(ss []*SerializedRunResult) ([]RunResult, error) {
	if len(ss) == 0 {
		return nil, nil
	}
	out := make([]RunResult, len(ss))
	for i, s := range ss {
		r, err := DeserializeRunResult(s)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

func serializeCaseResults(rs []*TestCaseResult) []*SerializedTestCaseResult {
	out := make([]*SerializedTestCaseResult, len(rs))
	for i, r := range rs {
		out[i] = r.Serialize()
	}
	return out
}

func deserializeCaseResults(ss []*SerializedTestCaseResult) ([]*TestCaseResult, error) {
	if len(ss) == 0 {
		return nil, nil
	}
	out := make([]*TestCaseResult, len(ss))
	for i, s := range ss {
		r, err := DeserializeTestCaseResult(s)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}
