package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/rentware/lease-engine/internal/domain"
	customError "github.com/rentware/lease-engine/pkg/errors"
)

// Partition is the classification of a contract's payment set into
// settled and open payments, plus the boundary the rescheduler anchors on.
type Partition struct {
	Paid []*domain.Payment
	Open []*domain.Payment

	// PaidMonths is the whole-month length of all settled periods,
	// summed from each payment's months-per-period at creation. Day
	// counting is deliberately avoided so partitioning never drifts
	// from the generator's month arithmetic.
	PaidMonths int

	// PaidThrough is the latest period_end among settled payments, nil
	// when nothing is settled.
	PaidThrough *time.Time

	// MaxSequence is the highest sequence number across all payments,
	// settled or open. New tails continue numbering from here.
	MaxSequence int
}

// PartitionPayments classifies payments into paid and open, both ordered
// chronologically by period start.
//
// PaidThrough is the maximum period_end among paid payments, not the last
// in creation order: manually edited data can leave paid periods out of
// sequence. If any unpaid period ends on or before that boundary the
// schedule has a settlement gap and partitioning fails with an
// INCONSISTENT_SCHEDULE error rather than guessing a repair.
func PartitionPayments(contractID string, payments []*domain.Payment) (*Partition, error) {
	ordered := make([]*domain.Payment, len(payments))
	copy(ordered, payments)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].PeriodStart.Before(ordered[j].PeriodStart)
	})

	part := &Partition{}
	for _, p := range ordered {
		if p.SequenceNumber > part.MaxSequence {
			part.MaxSequence = p.SequenceNumber
		}
		if p.IsPaid() {
			part.Paid = append(part.Paid, p)
			part.PaidMonths += p.PeriodMonths
			end := DateOnly(p.PeriodEnd)
			if part.PaidThrough == nil || end.After(*part.PaidThrough) {
				part.PaidThrough = &end
			}
		} else {
			part.Open = append(part.Open, p)
		}
	}

	if part.PaidThrough != nil {
		for _, p := range part.Open {
			if !DateOnly(p.PeriodEnd).After(*part.PaidThrough) {
				detail := fmt.Sprintf(
					"unpaid period %s..%s precedes the paid-through date %s",
					p.PeriodStart.Format("2006-01-02"),
					p.PeriodEnd.Format("2006-01-02"),
					part.PaidThrough.Format("2006-01-02"),
				)
				return nil, customError.WrapInconsistentSchedule(contractID, detail)
			}
		}
	}

	return part, nil
}
