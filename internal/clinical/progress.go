package clinical

import (
	"math"
	"sort"
	"time"

	"github.com/physiotwin/backend/internal/types"
)

const (
	// ProgressDayLimit caps both trend series to the most recent distinct days.
	ProgressDayLimit = 30
	// AdherenceRepThreshold is the minimum rep count for a session to count
	// toward the adherence proxy.
	AdherenceRepThreshold = 6
	// PainTrendPoints is the length of the short summary trend.
	PainTrendPoints = 7
)

type AnglePoint struct {
	Date            string  `json:"date"`
	AvgKneeAngleDeg float64 `json:"avg_knee_angle_deg"`
}

type PainPoint struct {
	Date string `json:"date"`
	Pain int    `json:"pain"`
}

type Progress struct {
	AngleImprovement []AnglePoint `json:"angle_improvement"`
	PainVsTime       []PainPoint  `json:"pain_vs_time"`
	AdherencePct     int          `json:"adherence_pct"`
}

// BuildProgress aggregates a session history (oldest first) into day-bucketed
// trend series keyed by the UTC calendar date, plus the adherence proxy.
// Both series keep at most the 30 most recent distinct days, chronologically.
func BuildProgress(sessions []*types.ExerciseSession) Progress {
	anglesByDay := map[string][]float64{}
	painByDay := map[string][]int{}
	for _, s := range sessions {
		d := dateKey(s.CreatedAt)
		anglesByDay[d] = append(anglesByDay[d], s.AvgKneeAngleDeg)
		painByDay[d] = append(painByDay[d], s.PainAfter)
	}

	days := make([]string, 0, len(anglesByDay))
	for d := range anglesByDay {
		days = append(days, d)
	}
	sort.Strings(days)
	if len(days) > ProgressDayLimit {
		days = days[len(days)-ProgressDayLimit:]
	}

	angleSeries := make([]AnglePoint, 0, len(days))
	painSeries := make([]PainPoint, 0, len(days))
	for _, d := range days {
		angleSeries = append(angleSeries, AnglePoint{Date: d, AvgKneeAngleDeg: meanFloat(anglesByDay[d])})
		painSeries = append(painSeries, PainPoint{Date: d, Pain: int(math.Round(meanInt(painByDay[d])))})
	}

	adherencePct := 0
	if len(sessions) > 0 {
		hit := 0
		for _, s := range sessions {
			if s.RepsCompleted >= AdherenceRepThreshold {
				hit++
			}
		}
		adherencePct = clampInt(int(math.Round(float64(hit)/float64(len(sessions))*100)), 0, 100)
	}

	return Progress{
		AngleImprovement: angleSeries,
		PainVsTime:       painSeries,
		AdherencePct:     adherencePct,
	}
}

// PainTrend builds the short summary trend: one point per session for the
// newest PainTrendPoints sessions, ordered oldest to newest. Input is newest
// first, as fetched for the summary window.
func PainTrend(sessions []*types.ExerciseSession) []PainPoint {
	n := len(sessions)
	if n > PainTrendPoints {
		sessions = sessions[:PainTrendPoints]
		n = PainTrendPoints
	}
	points := make([]PainPoint, 0, n)
	for i := n - 1; i >= 0; i-- {
		s := sessions[i]
		points = append(points, PainPoint{Date: dateKey(s.CreatedAt), Pain: s.PainAfter})
	}
	return points
}

func dateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func meanFloat(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func meanInt(vals []int) float64 {
	var sum int
	for _, v := range vals {
		sum += v
	}
	return float64(sum) / float64(len(vals))
}
