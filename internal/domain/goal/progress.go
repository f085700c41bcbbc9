package goal

// KeyResultProgress is the displayed completion of one key result.
// Over-achievement is allowed in current_value but the percentage clamps
// to [0,100].
func KeyResultProgress(current, target float64) float64 {
	if target <= 0 {
		return 0
	}
	pct := current / target * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// ProgressFromKeyResults derives the goal's progress as the mean of its key
// results' clamped percentages. No key results means no measurable progress.
func ProgressFromKeyResults(results []KeyResult) float64 {
	if len(results) == 0 {
		return 0
	}
	var sum float64
	for _, kr := range results {
		sum += KeyResultProgress(kr.CurrentValue, kr.TargetValue)
	}
	return sum / float64(len(results))
}
