package events

// EventName represents the type of event
type EventName string

// Run lifecycle events emitted by the test runner
const (
	EventRunStarted     EventName = "run_started"
	EventTestCaseResult EventName = "test_case_result"
	EventRunCompleted   EventName = "run_completed"
	EventWorkerStalled  EventName = "worker_stalled"
)

// EventData represents any event payload
type EventData interface{}
