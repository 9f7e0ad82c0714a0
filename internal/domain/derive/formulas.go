package derive

import "math"

// Precision is the number of decimal digits kept in stored values.
const Precision = 3

const (
	ratingScale  = 100.0
	forty        = 40.0
	secsPerMin   = 60.0
	threeFGBonus = 0.5
)

// SafeDiv divides n by d, returning 0 when d is zero or not finite.
func SafeDiv(n, d float64) float64 {
	if d == 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return 0
	}
	q := n / d
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return 0
	}
	return q
}

// Round3 rounds half away from zero to Precision digits and folds -0 into 0.
func Round3(x float64) float64 {
	const scale = 1000.0
	r := math.Round(x*scale) / scale
	if r == 0 {
		return 0
	}
	return r
}

// Minutes converts seconds to minutes.
func Minutes(secs float64) float64 { return secs / secsPerMin }

// Rating is points per 100 possessions.
func Rating(points, poss float64) float64 { return SafeDiv(points, poss) * ratingScale }

// PerForty normalizes a plus-minus to a 40-minute basis.
func PerForty(plusMinus, minutes float64) float64 { return SafeDiv(plusMinus*forty, minutes) }

// EFG is effective field-goal percentage: (fgm + 0.5*fgm3) / fga.
func EFG(fgm, fgm3, fga float64) float64 { return SafeDiv(fgm+threeFGBonus*fgm3, fga) }
