// Package status defines the document processing status and its legal transitions.
package status

import "fmt"

// Status is a document's position in the processing pipeline.
type Status string

// Pipeline statuses in order; Error is terminal and reachable from any
// non-terminal status.
const (
	Pending    Status = "pending"
	Extracting Status = "extracting"
	Embedding  Status = "embedding"
	Tagging    Status = "tagging"
	Complete   Status = "complete"
	Error      Status = "error"
)

// order maps each pipeline status to its rank. Error has no rank.
var order = map[Status]int{
	Pending:    0,
	Extracting: 1,
	Embedding:  2,
	Tagging:    3,
	Complete:   4,
}

// Parse validates a raw status string.
func Parse(s string) (Status, error) {
	switch st := Status(s); st {
	case Pending, Extracting, Embedding, Tagging, Complete, Error:
		return st, nil
	default:
		return "", fmt.Errorf("unknown status %q", s)
	}
}

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool {
	return s == Complete || s == Error
}

// CanTransition reports whether moving to next is legal: forward through the
// pipeline sequence, or a jump to Error from any non-terminal status.
func (s Status) CanTransition(next Status) bool {
	if s.Terminal() {
		return false
	}
	if next == Error {
		return true
	}
	cur, ok := order[s]
	if !ok {
		return false
	}
	nxt, ok := order[next]
	if !ok {
		return false
	}
	return nxt > cur
}

func (s Status) String() string { return string(s) }
