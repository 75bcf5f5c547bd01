package processor

import (
	"fmt"
	"math"

	"decision_engine/internal/config"
	"decision_engine/internal/domain"
)

// SegmentClassifier maps the last four digits of an identity code to a
// credit segment using half-open ranges.
type SegmentClassifier struct {
	bands []segmentBand
}

type segmentBand struct {
	upper   int // exclusive
	segment domain.CreditSegment
}

func NewSegmentClassifier(constants config.Constants) *SegmentClassifier {
	return &SegmentClassifier{
		bands: []segmentBand{
			{
				upper:   constants.DebtSegmentBound,
				segment: domain.CreditSegment{Name: domain.SegmentDebt},
			},
			{
				upper:   constants.Segment1Bound,
				segment: domain.CreditSegment{Name: domain.Segment1, Modifier: constants.Segment1Modifier},
			},
			{
				upper:   constants.Segment2Bound,
				segment: domain.CreditSegment{Name: domain.Segment2, Modifier: constants.Segment2Modifier},
			},
			{
				upper:   math.MaxInt,
				segment: domain.CreditSegment{Name: domain.Segment3, Modifier: constants.Segment3Modifier},
			},
		},
	}
}

func (c *SegmentClassifier) Classify(code string) (domain.CreditSegment, error) {
	if len(code) < 4 {
		return domain.CreditSegment{}, fmt.Errorf("%w: fewer than four digits", domain.ErrInvalidIdentityCode)
	}

	var digits int
	for _, r := range code[len(code)-4:] {
		if r < '0' || r > '9' {
			return domain.CreditSegment{}, fmt.Errorf("%w: trailing characters are not digits", domain.ErrInvalidIdentityCode)
		}
		digits = digits*10 + int(r-'0')
	}

	return c.segmentFor(digits), nil
}

func (c *SegmentClassifier) segmentFor(digits int) domain.CreditSegment {
	for _, band := range c.bands {
		if digits < band.upper {
			return band.segment
		}
	}
	return c.bands[len(c.bands)-1].segment
}
