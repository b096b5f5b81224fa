package clinical

import (
	"testing"

	"github.com/physiotwin/backend/internal/types"
)

func makeSessions(n, adherence, risk, painAfter int) []*types.ExerciseSession {
	out := make([]*types.ExerciseSession, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, &types.ExerciseSession{
			AdherenceScore: adherence,
			RiskEvents:     risk,
			PainAfter:      painAfter,
		})
	}
	return out
}

func TestRecoveryScore(t *testing.T) {
	cases := []struct {
		name     string
		sessions []*types.ExerciseSession
		want     int
	}{
		{name: "no_sessions", sessions: nil, want: 0},
		{name: "perfect_window", sessions: makeSessions(10, 100, 0, 0), want: 100},
		{name: "worst_window", sessions: makeSessions(10, 0, 20, 10), want: 0},
		{name: "single_session", sessions: makeSessions(1, 80, 1, 2), want: 99},
		// 50*0.7 + (30-2*3) + (20-4*2) = 35+24+12 = 71
		{name: "mixed_window", sessions: makeSessions(4, 50, 2, 4), want: 71},
		// risk term floors at 0: 70*0.7 + 0 + (20-3*2) = 49+0+14 = 63
		{name: "risk_term_floored", sessions: makeSessions(3, 70, 15, 3), want: 63},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := RecoveryScore(tc.sessions)
			if got != tc.want {
				t.Fatalf("RecoveryScore=%d, want %d", got, tc.want)
			}
			if got < 0 || got > 100 {
				t.Fatalf("RecoveryScore=%d outside [0,100]", got)
			}
		})
	}
}

func TestRecoveryScoreIgnoresSessionsBeyondWindow(t *testing.T) {
	window := makeSessions(10, 90, 0, 1)
	base := RecoveryScore(window)

	// An 11th, older session with terrible numbers must not move the score.
	older := append(append([]*types.ExerciseSession{}, window...),
		&types.ExerciseSession{AdherenceScore: 0, RiskEvents: 50, PainAfter: 10})
	if got := RecoveryScore(older); got != base {
		t.Fatalf("score with 11th session=%d, want %d", got, base)
	}
}
