package clinical

// DeviationStopDeg is the hard stop threshold applied to every prescription.
// It is fixed clinical policy and is never exposed for edit.
const DeviationStopDeg = 15

// Constraints are the clinician-editable bounds of a prescription.
type Constraints struct {
	SafeMinDeg  int
	SafeMaxDeg  int
	RepLimit    int
	DurationSec int
}

// Conservative per-exercise defaults used only when no prescription row
// exists yet. Clinicians tighten these; automated logic never changes them.
var defaultConstraints = map[string]Constraints{
	"knee_extension_seated": {SafeMinDeg: 150, SafeMaxDeg: 185, RepLimit: 10, DurationSec: 300},
	// Hip-shoulder-elbow angle commonly spans roughly 0-180; stay conservative.
	"shoulder_flexion": {SafeMinDeg: 40, SafeMaxDeg: 130, RepLimit: 8, DurationSec: 300},
	// Shoulder-elbow-wrist angle: extension ~180, full flexion ~60.
	"elbow_flexion": {SafeMinDeg: 60, SafeMaxDeg: 170, RepLimit: 10, DurationSec: 300},
}

var fallbackConstraints = Constraints{SafeMinDeg: 60, SafeMaxDeg: 170, RepLimit: 8, DurationSec: 300}

// DefaultConstraints returns the clinical defaults for an exercise, falling
// back to a generic conservative row for unknown keys.
func DefaultConstraints(exerciseKey string) Constraints {
	if c, ok := defaultConstraints[exerciseKey]; ok {
		return c
	}
	return fallbackConstraints
}

var exerciseNames = map[string]string{
	"knee_extension_seated": "Knee Extension (Seated)",
	"shoulder_flexion":      "Shoulder Flexion",
	"elbow_flexion":         "Elbow Flexion",
}

func ExerciseName(exerciseKey string) string {
	if name, ok := exerciseNames[exerciseKey]; ok {
		return name
	}
	return exerciseKey
}
