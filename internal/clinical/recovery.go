package clinical

import (
	"math"

	"github.com/physiotwin/backend/internal/types"
)

// RecoveryWindow is the number of newest sessions the score considers.
const RecoveryWindow = 10

// RecoveryScore maps a patient's most recent sessions (newest first) to a
// bounded 0-100 score. Sessions beyond the window are ignored, so an older
// 11th session can never move the score. Zero sessions score 0.
//
//	score = avg_adherence*0.7 + max(0, 30-avg_risk*3) + max(0, 20-avg_pain*2)
func RecoveryScore(sessions []*types.ExerciseSession) int {
	if len(sessions) > RecoveryWindow {
		sessions = sessions[:RecoveryWindow]
	}
	if len(sessions) == 0 {
		return 0
	}

	var sumAdherence, sumRisk, sumPain float64
	for _, s := range sessions {
		sumAdherence += float64(s.AdherenceScore)
		sumRisk += float64(s.RiskEvents)
		sumPain += float64(s.PainAfter)
	}
	n := float64(len(sessions))
	avgAdherence := sumAdherence / n
	avgRisk := sumRisk / n
	avgPain := sumPain / n

	score := avgAdherence*0.7 + math.Max(0, 30-avgRisk*3) + math.Max(0, 20-avgPain*2)
	return clampInt(int(math.Round(score)), 0, 100)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
