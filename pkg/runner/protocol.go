package runner

import (
	"encoding/json"
	"fmt"

	"github.com/ergotest/ergotest/pkg/results"
)

// The worker protocol is a pair of JSON streams: the parent writes one
// startup message to the worker's stdin; the worker writes messages to the
// inherited pipe until it delivers exactly one complete (or fatal) message.

// startupMessage tells the worker what to run. Timeout is in milliseconds.
type startupMessage struct {
	ModulePaths []string       `json:"modulePaths"`
	Timeout     int64          `json:"timeout,omitempty"`
	Config      map[string]any `json:"config,omitempty"`
	Renderer    string         `json:"renderer,omitempty"`
}

const (
	msgKeepalive = "keepalive"
	msgProgress  = "progress"
	msgComplete  = "complete"
	msgFatal     = "fatal"
)

// workerMessage is one worker-to-parent message. Result is populated for
// progress and complete; Message and Err for fatal.
type workerMessage struct {
	Type    string          `json:"type"`
	Result  json.RawMessage `json:"result,omitempty"`
	Message string          `json:"message,omitempty"`
	Err     any             `json:"err,omitempty"`
}

func keepaliveMessage() workerMessage {
	return workerMessage{Type: msgKeepalive}
}

func progressMessage(result *results.TestCaseResult) (workerMessage, error) {
	raw, err := json.Marshal(result.Serialize())
	if err != nil {
		return workerMessage{}, fmt.Errorf("could not serialize progress result: %w", err)
	}
	return workerMessage{Type: msgProgress, Result: raw}, nil
}

func completeMessage(result *results.TestSuiteResult) (workerMessage, error) {
	raw, err := json.Marshal(result.Serialize())
	if err != nil {
		return workerMessage{}, fmt.Errorf("could not serialize final result: %w", err)
	}
	return workerMessage{Type: msgComplete, Result: raw}, nil
}

func fatalMessage(message string, err any) workerMessage {
	return workerMessage{Type: msgFatal, Message: message, Err: err}
}
