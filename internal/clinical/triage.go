package clinical

import "strings"

const (
	msgPainHigh     = "Pain level high (≥7). Session stop event logged. Clinician review recommended."
	msgPainModerate = "Pain level moderate (4–6). Clinician review recommended."
	msgStopFallback = "Stop event detected. Clinician review recommended."
	msgWarnFallback = "Deviation detected. Clinician review recommended."
)

// TriageInput carries the signals of one just-created session.
type TriageInput struct {
	PainBefore int
	PainAfter  int
	RiskEvents int
	Events     []SessionEvent
}

// Finding is the classifier verdict: a reviewable alert level plus message.
type Finding struct {
	Level   string
	Message string
}

// Classify maps one session's signals to at most one finding. Rules are a
// strict precedence; the first match wins so a single ingestion can never
// raise two alerts. The classifier observes only: it has no access to
// prescriptions and must never trigger a protocol change.
func Classify(in TriageInput) *Finding {
	painPeak := in.PainBefore
	if in.PainAfter > painPeak {
		painPeak = in.PainAfter
	}

	stop := firstEventWithSeverity(in.Events, "stop", "red")
	warn := firstEventWithSeverity(in.Events, "warning", "yellow")

	switch {
	case painPeak >= 7:
		return &Finding{Level: "red", Message: msgPainHigh}
	case stop != nil:
		msg := strings.TrimSpace(stop.Message)
		if msg == "" {
			msg = msgStopFallback
		}
		return &Finding{Level: "red", Message: msg}
	case painPeak >= 4 && painPeak <= 6:
		return &Finding{Level: "yellow", Message: msgPainModerate}
	case warn != nil || in.RiskEvents > 0:
		msg := msgWarnFallback
		if warn != nil && strings.TrimSpace(warn.Message) != "" {
			msg = strings.TrimSpace(warn.Message)
		}
		return &Finding{Level: "yellow", Message: msg}
	default:
		return nil
	}
}

func firstEventWithSeverity(events []SessionEvent, severities ...string) *SessionEvent {
	for i := range events {
		sev := strings.ToLower(strings.TrimSpace(events[i].Severity))
		for _, want := range severities {
			if sev == want {
				return &events[i]
			}
		}
	}
	return nil
}
