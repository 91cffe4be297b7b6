// Package forecast implements level/trend smoothing over inventory time
// series (Holt double exponential smoothing) and reorder-point projection.
package forecast

import "math"

// Default smoothing factors.
const (
	DefaultAlpha = 0.3
	DefaultBeta  = 0.1
)

// LeadTimeDays is the supplier lead time used to derive the reorder-by
// date from a projected stockout.
const LeadTimeDays = 3

// Model holds the fitted smoothing state and the forward projection.
type Model struct {
	Level     float64 `json:"level"`
	Trend     float64 `json:"trend"`
	Horizon   int     `json:"horizon"`
	Projected []int   `json:"projected"`
}

// FitAndProject fits a Holt level/trend model to an ordered series of daily
// stock counts and projects horizon days forward.
//
// An empty series yields a zero model with an empty projection. A single
// observation fixes the level and leaves the trend at zero. Projections are
// rounded and floored at zero; they never go negative even when the trend is
// steeply negative.
func FitAndProject(series []int, alpha, beta float64, horizon int) Model {
	if alpha <= 0 || alpha >= 1 {
		alpha = DefaultAlpha
	}
	if beta <= 0 || beta >= 1 {
		beta = DefaultBeta
	}
	if horizon < 1 {
		horizon = 1
	}

	if len(series) == 0 {
		return Model{Horizon: horizon, Projected: []int{}}
	}

	level := float64(series[0])
	trend := 0.0
	if len(series) > 1 {
		trend = float64(series[1] - series[0])
	}

	for _, x := range series[1:] {
		newLevel := alpha*float64(x) + (1-alpha)*(level+trend)
		trend = beta*(newLevel-level) + (1-beta)*trend
		level = newLevel
	}

	projected := make([]int, horizon)
	for k := 1; k <= horizon; k++ {
		projected[k-1] = int(math.Round(math.Max(0, level+float64(k)*trend)))
	}

	return Model{Level: level, Trend: trend, Horizon: horizon, Projected: projected}
}

// DaysUntilThreshold returns the smallest 1-indexed day k at which the
// projection falls to or below threshold. It only reports a crossing for a
// declining trend and a positive threshold; a flat or rising trend never
// signals an imminent reorder. ok is false when no crossing exists within
// the horizon or the preconditions do not hold.
func DaysUntilThreshold(m Model, threshold int) (int, bool) {
	if m.Trend >= 0 || threshold <= 0 {
		return 0, false
	}
	for i, q := range m.Projected {
		if q <= threshold {
			return i + 1, true
		}
	}
	return 0, false
}
