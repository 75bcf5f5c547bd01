package domain

type SegmentName string

const (
	SegmentDebt SegmentName = "debt"
	Segment1    SegmentName = "segment_1"
	Segment2    SegmentName = "segment_2"
	Segment3    SegmentName = "segment_3"
)

// CreditSegment is the credit-risk bucket of an applicant together with the
// modifier used for scoring. A zero modifier means no credit is extended.
type CreditSegment struct {
	Name     SegmentName
	Modifier int
}

func (s CreditSegment) HasCredit() bool {
	return s.Modifier > 0
}

func (s CreditSegment) String() string {
	return string(s.Name)
}
