package trending

// growthScore is the average daily star growth since the window's anchor.
// Negative values are legal; no smoothing or clamping is applied.
func growthScore(starsAtStart, currentStars, daysAgo int) float64 {
	if daysAgo == 0 {
		return 0
	}
	return float64(currentStars-starsAtStart) / float64(daysAgo)
}

// initialScore is the proxy score for a first-time snapshot. With no growth
// baseline yet, the raw star count stands in until the next refresh.
func initialScore(currentStars int) float64 {
	return float64(currentStars)
}
