// Package predict awards points for score predictions against a finished
// game. It reads only the final score; it knows nothing about how the game
// was simulated.
package predict

// Scoring tiers.
const (
	ExactScorePoints  = 40
	CloseMarginPoints = 15
	WinnerOnlyPoints  = 10

	marginTolerance = 3
)

// Prediction is a caller's predicted final score.
type Prediction struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// Score returns the points a prediction earns: exact score 40, correct
// winner with margin within 3 earns 15, correct winner alone 10, wrong
// winner 0. A predicted tie only scores against an actual tie.
func Score(p Prediction, actualHome, actualAway int) int {
	if p.Home == actualHome && p.Away == actualAway {
		return ExactScorePoints
	}

	if sign(p.Home-p.Away) != sign(actualHome-actualAway) {
		return 0
	}

	marginDelta := (p.Home - p.Away) - (actualHome - actualAway)
	if marginDelta < 0 {
		marginDelta = -marginDelta
	}
	if marginDelta <= marginTolerance {
		return CloseMarginPoints
	}
	return WinnerOnlyPoints
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}
