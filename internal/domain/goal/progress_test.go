package goal

import "testing"

func TestKeyResultProgressClamps(t *testing.T) {
	cases := []struct {
		current, target, want float64
	}{
		{0, 100, 0},
		{50, 100, 50},
		{100, 100, 100},
		{150, 100, 100}, // over-achievement clamps
		{-10, 100, 0},
		{5, 0, 0}, // unset target yields no progress
	}
	for _, c := range cases {
		if got := KeyResultProgress(c.current, c.target); got != c.want {
			t.Errorf("KeyResultProgress(%v, %v) = %v, want %v", c.current, c.target, got, c.want)
		}
	}
}

func TestProgressFromKeyResults(t *testing.T) {
	if got := ProgressFromKeyResults(nil); got != 0 {
		t.Fatalf("no key results should mean zero progress, got %v", got)
	}

	results := []KeyResult{
		{CurrentValue: 100, TargetValue: 100},
		{CurrentValue: 25, TargetValue: 50},
	}
	if got := ProgressFromKeyResults(results); got != 75 {
		t.Fatalf("expected mean of 100 and 50 to be 75, got %v", got)
	}

	// An over-achieved key result cannot push the goal past 100.
	results = []KeyResult{
		{CurrentValue: 300, TargetValue: 100},
		{CurrentValue: 100, TargetValue: 100},
	}
	if got := ProgressFromKeyResults(results); got != 100 {
		t.Fatalf("expected clamped mean of 100, got %v", got)
	}
}
