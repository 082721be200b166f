package scoring

import (
	"testing"

	"github.com/gridscope/gridscope/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestMAPETier(t *testing.T) {
	tests := []struct {
		mape float64
		want Tier
	}{
		{0, TierExcellent},
		{2.9, TierExcellent},
		{3, TierVeryGood}, // boundary is exclusive
		{4.9, TierVeryGood},
		{5, TierGood},
		{9.9, TierGood},
		{10, TierNeedsImprovement},
		{50, TierNeedsImprovement},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MAPETier(tt.mape), "mape=%v", tt.mape)
	}
}

func TestR2Tier(t *testing.T) {
	tests := []struct {
		r2   float64
		want Tier
	}{
		{0.99, TierExcellent},
		{0.96, TierExcellent},
		{0.95, TierVeryGood}, // boundary is exclusive
		{0.91, TierVeryGood},
		{0.90, TierGood},
		{0.81, TierGood},
		{0.80, TierNeedsImprovement},
		{0.1, TierNeedsImprovement},
		{-1, TierNeedsImprovement},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, R2Tier(tt.r2), "r2=%v", tt.r2)
	}
}

func TestComposite(t *testing.T) {
	tests := []struct {
		name string
		mape float64
		r2   float64
		want string
	}{
		{"both excellent", 2, 0.97, "Excellent"},
		{"both good", 8, 0.85, "Good"},
		{"both worst", 12, 0.70, "Needs Improvement"},
		{"excellent mape poor r2 averages to very good", 2, 0.5, "Very Good"},
		{"good mape poor r2 rounds down to good", 8, 0.5, "Good"},
		{"very good pair", 4, 0.92, "Very Good"},
		{"excellent and very good stays excellent", 2, 0.92, "Excellent"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := types.ModelMetrics{MAPE: tt.mape, R2: tt.r2}
			assert.Equal(t, tt.want, Composite(m).Label())
		})
	}
}

func TestAssess(t *testing.T) {
	a := Assess(types.ModelMetrics{MAPE: 2, R2: 0.97})
	assert.Equal(t, Assessment{
		MAPERating:    "Excellent",
		R2Rating:      "Excellent",
		OverallRating: "Excellent",
	}, a)
}
