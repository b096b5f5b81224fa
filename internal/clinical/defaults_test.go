package clinical

import "testing"

func TestDefaultConstraints(t *testing.T) {
	knee := DefaultConstraints("knee_extension_seated")
	if knee.SafeMinDeg != 150 || knee.SafeMaxDeg != 185 || knee.RepLimit != 10 || knee.DurationSec != 300 {
		t.Fatalf("knee defaults=%+v", knee)
	}

	unknown := DefaultConstraints("wrist_rotation")
	if unknown != fallbackConstraints {
		t.Fatalf("unknown key defaults=%+v, want fallback", unknown)
	}
}

func TestExerciseName(t *testing.T) {
	if got := ExerciseName("knee_extension_seated"); got != "Knee Extension (Seated)" {
		t.Fatalf("name=%q", got)
	}
	if got := ExerciseName("custom_key"); got != "custom_key" {
		t.Fatalf("unknown key name=%q, want the key itself", got)
	}
}
