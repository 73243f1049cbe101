package delivery

import (
	"math/rand/v2"

	"github.com/ykvlv/etymology-bot/internal/domain"
)

// DefaultEnhancedRatio is the share of deliveries using the enhanced variant.
const DefaultEnhancedRatio = 0.4

// VariantSelector picks the content variant for one delivery.
type VariantSelector interface {
	Select() domain.Variant
}

// WeightedSelector draws the enhanced variant with probability Ratio,
// independently per call. Safe for concurrent use.
type WeightedSelector struct {
	Ratio float64
	float func() float64
}

func NewWeightedSelector(ratio float64) *WeightedSelector {
	return &WeightedSelector{Ratio: ratio, float: rand.Float64}
}

func (s *WeightedSelector) Select() domain.Variant {
	if s.float() < s.Ratio {
		return domain.VariantEnhanced
	}
	return domain.VariantStandard
}

// FixedSelector always returns the same variant.
type FixedSelector domain.Variant

func (f FixedSelector) Select() domain.Variant { return domain.Variant(f) }
