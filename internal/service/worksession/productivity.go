package worksession

import (
	"math"

	"github.com/cmlabs-hris/worksession-backend-go/internal/domain/worksession"
)

// Score weights. Keystrokes saturate at 1000 per 30 points; each violation
// costs half a point up to 5.
const (
	keystrokeWeight     = 30.0
	keystrokeSaturation = 1000.0
	activeWeight        = 40.0
	workRelatedWeight   = 25.0
	violationPenalty    = 0.5
	maxViolationPenalty = 5.0
)

// ProductivityScore turns activity signals into a 0-100 score. totalMinutes is
// the session's actual work duration; ratio terms are dropped when it is zero.
func ProductivityScore(m worksession.ProductivityMetrics, totalMinutes float64) float64 {
	score := math.Min(keystrokeWeight, float64(m.KeystrokeCount)/keystrokeSaturation*keystrokeWeight)

	if totalMinutes > 0 {
		score += m.ActiveTime / totalMinutes * activeWeight
		score += m.WorkRelatedTime / totalMinutes * workRelatedWeight
	}

	score -= math.Min(maxViolationPenalty, float64(m.ViolationCount)*violationPenalty)

	if math.IsNaN(score) {
		return 0
	}
	return clamp(score, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
