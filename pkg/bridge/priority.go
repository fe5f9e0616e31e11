// Package bridge implements the message pipeline between the managed
// UI layer and native rendering code: pooled message envelopes, the
// priority batching queue, request/response correlation, and the
// transport contract batches are delivered through.
package bridge

import (
	"encoding/json"
	"fmt"
)

// Priority orders messages within a batch. The zero value is
// PriorityNormal so an omitted wire priority decodes to normal.
type Priority int

const (
	// PriorityNormal is the default for UI updates.
	PriorityNormal Priority = iota
	// PriorityHigh is for input responses and anything the user is
	// waiting on; with the immediate-flush policy it also triggers an
	// early flush.
	PriorityHigh
	// PriorityLow is for diagnostics and prefetching.
	PriorityLow
)

// rank returns the flush order: high before normal before low.
func (p Priority) rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityLow:
		return 2
	default:
		return 1
	}
}

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityLow:
		return "low"
	default:
		return "normal"
	}
}

// ParsePriority converts a wire priority string. The empty string maps
// to PriorityNormal, matching the optional wire field.
func ParsePriority(s string) (Priority, error) {
	switch s {
	case "high":
		return PriorityHigh, nil
	case "normal", "":
		return PriorityNormal, nil
	case "low":
		return PriorityLow, nil
	default:
		return PriorityNormal, fmt.Errorf("unknown priority %q", s)
	}
}

// MarshalJSON encodes the priority as its wire string.
func (p Priority) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON decodes a wire priority string.
func (p *Priority) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParsePriority(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
