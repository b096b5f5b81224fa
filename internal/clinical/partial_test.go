package clinical

import "testing"

func TestIsPartialSession(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want bool
	}{
		{name: "practice_save_event", raw: `[{"type":"practice_save"}]`, want: true},
		{name: "partial_flag", raw: `[{"type":"x","data":{"partial":true}}]`, want: true},
		{name: "partial_flag_false", raw: `[{"type":"x","data":{"partial":false}}]`, want: false},
		{name: "partial_flag_not_boolean", raw: `[{"type":"x","data":{"partial":"true"}}]`, want: false},
		{name: "mixed_log", raw: `[{"type":"rep"},{"severity":"info"},{"type":"practice_save"}]`, want: true},
		{name: "empty_array", raw: `[]`, want: false},
		{name: "json_null", raw: `null`, want: false},
		{name: "not_json", raw: `not json`, want: false},
		{name: "not_an_array", raw: `{"type":"practice_save"}`, want: false},
		{name: "empty_input", raw: ``, want: false},
		{name: "array_of_scalars", raw: `[1,2,3]`, want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var raw []byte
			if tc.raw != "" {
				raw = []byte(tc.raw)
			}
			if got := IsPartialSession(raw); got != tc.want {
				t.Fatalf("IsPartialSession(%q)=%v, want %v", tc.raw, got, tc.want)
			}
		})
	}
}

func TestParseEvents(t *testing.T) {
	events := ParseEvents([]byte(`[{"ts":"t1","severity":"warning","type":"deviation","message":"drift"}]`))
	if len(events) != 1 {
		t.Fatalf("events=%d, want 1", len(events))
	}
	if events[0].Severity != "warning" || events[0].Message != "drift" {
		t.Fatalf("event=%+v", events[0])
	}
	if got := ParseEvents([]byte(`not json`)); got != nil {
		t.Fatalf("ParseEvents on garbage=%v, want nil", got)
	}
	if got := ParseEvents(nil); got != nil {
		t.Fatalf("ParseEvents(nil)=%v, want nil", got)
	}
}
