package trade

import "math"

// DefaultFairThresholdPct is the relative difference below which a trade is fair
const DefaultFairThresholdPct = 10.0

// Verdict classifies a trade from the point of view of offer A's owner
type Verdict string

const (
	VerdictEmpty Verdict = "empty"
	VerdictFair  Verdict = "fair"
	VerdictWin   Verdict = "win"
	VerdictLoss  Verdict = "loss"
)

// Message is the short human-readable label for a verdict
func (v Verdict) Message() string {
	switch v {
	case VerdictFair:
		return "Fair Trade"
	case VerdictWin:
		return "You Win"
	case VerdictLoss:
		return "You Lose"
	default:
		return "Add units to compare"
	}
}

// Result is the outcome of comparing two offers
type Result struct {
	TotalA      int64   `json:"total_a"`
	TotalB      int64   `json:"total_b"`
	Difference  int64   `json:"difference"` // TotalB - TotalA
	PercentDiff float64 `json:"percent_diff"`
	Verdict     Verdict `json:"verdict"`
}

// Evaluator classifies trades against a fairness threshold
type Evaluator struct {
	FairThresholdPct float64
}

// NewEvaluator returns an evaluator; a non-positive threshold means the default
func NewEvaluator(thresholdPct float64) Evaluator {
	if thresholdPct <= 0 {
		thresholdPct = DefaultFairThresholdPct
	}
	return Evaluator{FairThresholdPct: thresholdPct}
}

// Evaluate compares offer a (given) against offer b (received).
//
// PercentDiff is relative to TotalA and is 0 when TotalA is 0, so an
// empty A against a non-empty B is classified fair.
func (e Evaluator) Evaluate(a, b []SelectedUnit) Result {
	threshold := e.FairThresholdPct
	if threshold <= 0 {
		threshold = DefaultFairThresholdPct
	}

	r := Result{
		TotalA: Total(a),
		TotalB: Total(b),
	}
	r.Difference = r.TotalB - r.TotalA
	if r.TotalA > 0 {
		r.PercentDiff = math.Abs(float64(r.Difference)/float64(r.TotalA)) * 100
	}

	switch {
	case r.TotalA == 0 && r.TotalB == 0:
		r.Verdict = VerdictEmpty
	case r.PercentDiff < threshold:
		r.Verdict = VerdictFair
	case r.Difference > 0:
		r.Verdict = VerdictWin
	default:
		r.Verdict = VerdictLoss
	}
	return r
}

// Evaluate compares two offers with the default threshold
func Evaluate(a, b []SelectedUnit) Result {
	return NewEvaluator(DefaultFairThresholdPct).Evaluate(a, b)
}
