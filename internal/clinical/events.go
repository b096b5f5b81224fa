// Package clinical implements the safety and progress analytics engine:
// session triage, recovery scoring, progress aggregation, partial-session
// detection and the default prescription constraints. Everything in this
// package is a pure function over data handed to it; persistence and role
// checks live with the callers.
package clinical

import "encoding/json"

// SessionEvent is one entry of the opaque event log the exercise runtime
// uploads with a session. Unknown fields are ignored.
type SessionEvent struct {
	TS       string                 `json:"ts"`
	Severity string                 `json:"severity"`
	Type     string                 `json:"type"`
	Message  string                 `json:"message"`
	Data     map[string]interface{} `json:"data"`
}

// ParseEvents decodes a raw event log. It is total: anything that is not a
// JSON array of objects yields an empty slice, never an error.
func ParseEvents(raw []byte) []SessionEvent {
	if len(raw) == 0 {
		return nil
	}
	var events []SessionEvent
	if err := json.Unmarshal(raw, &events); err != nil {
		return nil
	}
	return events
}
