package clinical

import "encoding/json"

// IsPartialSession reports whether an event log marks a session as partially
// completed: either a "practice_save" event or an event whose data object has
// partial == true. The detector is total: a missing, unparseable or non-array
// log is simply not partial.
func IsPartialSession(raw []byte) bool {
	if len(raw) == 0 {
		return false
	}
	var events []json.RawMessage
	if err := json.Unmarshal(raw, &events); err != nil {
		return false
	}
	for _, rawEvent := range events {
		var e struct {
			Type string                 `json:"type"`
			Data map[string]interface{} `json:"data"`
		}
		if err := json.Unmarshal(rawEvent, &e); err != nil {
			continue
		}
		if e.Type == "practice_save" {
			return true
		}
		if partial, ok := e.Data["partial"].(bool); ok && partial {
			return true
		}
	}
	return false
}
