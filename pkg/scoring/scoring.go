// Package scoring buckets model error metrics into quality tiers.
//
// The thresholds are dashboard display conventions carried over from the
// original product, not a statistically derived quality model. Changing them
// changes user-facing badges, so they are fixed here and covered by tests.
package scoring

import "github.com/gridscope/gridscope/pkg/types"

// Tier is an ordinal quality bucket, 1 (best) through 4 (worst).
type Tier int

const (
	TierExcellent Tier = iota + 1
	TierVeryGood
	TierGood
	TierNeedsImprovement
)

// Label returns the display label for the tier.
func (t Tier) Label() string {
	switch t {
	case TierExcellent:
		return "Excellent"
	case TierVeryGood:
		return "Very Good"
	case TierGood:
		return "Good"
	default:
		return "Needs Improvement"
	}
}

// MAPETier buckets a MAPE percentage: <3 excellent, <5 very good, <10 good.
func MAPETier(mape float64) Tier {
	switch {
	case mape < 3:
		return TierExcellent
	case mape < 5:
		return TierVeryGood
	case mape < 10:
		return TierGood
	default:
		return TierNeedsImprovement
	}
}

// R2Tier buckets an R² value: >0.95 excellent, >0.90 very good, >0.80 good.
func R2Tier(r2 float64) Tier {
	switch {
	case r2 > 0.95:
		return TierExcellent
	case r2 > 0.90:
		return TierVeryGood
	case r2 > 0.80:
		return TierGood
	default:
		return TierNeedsImprovement
	}
}

// Composite averages the MAPE and R² ordinal scores and re-buckets the
// average into the same four tiers.
func Composite(m types.ModelMetrics) Tier {
	avg := (float64(MAPETier(m.MAPE)) + float64(R2Tier(m.R2))) / 2
	switch {
	case avg <= 1.5:
		return TierExcellent
	case avg <= 2.5:
		return TierVeryGood
	case avg <= 3.5:
		return TierGood
	default:
		return TierNeedsImprovement
	}
}

// Assessment is the tiered view of a metrics snapshot served by the API.
type Assessment struct {
	MAPERating    string `json:"mape_rating"`
	R2Rating      string `json:"r2_rating"`
	OverallRating string `json:"overall_rating"`
}

// Assess computes the assessment for a metrics snapshot.
func Assess(m types.ModelMetrics) Assessment {
	return Assessment{
		MAPERating:    MAPETier(m.MAPE).Label(),
		R2Rating:      R2Tier(m.R2).Label(),
		OverallRating: Composite(m).Label(),
	}
}
