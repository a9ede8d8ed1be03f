package scoring

import "math"

// DefaultAlpha is the default EWMA smoothing factor.
const DefaultAlpha = 0.1

// Updater incrementally revises a stored credibility score from observed
// prediction accuracy using an EWMA rule.
type Updater struct {
	alpha float64
}

// NewUpdater creates an updater with the given smoothing factor.
// Alpha outside (0, 1] falls back to DefaultAlpha.
func NewUpdater(alpha float64) *Updater {
	if alpha <= 0 || alpha > 1 {
		alpha = DefaultAlpha
	}
	return &Updater{alpha: alpha}
}

// Update blends observed accuracy into the current score.
// accuracy = clamp(1 - |predicted - actual|, 0, 1); accuracy near 1 pulls
// the score toward 10, accuracy near 0 toward the decayed prior.
// The result is rounded to 2 decimals.
func (u *Updater) Update(currentScore, predicted, actual float64) float64 {
	accuracy := clamp(1-math.Abs(predicted-actual), 0.0, 1.0)
	updated := u.alpha*accuracy*10 + (1-u.alpha)*currentScore
	return round2(updated)
}
