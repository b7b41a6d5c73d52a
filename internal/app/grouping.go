package app

import (
	"time"

	"github.com/google/uuid"

	"github.com/farazahmedph003/gull-backend/internal/domain"
)

// DefaultGroupingThreshold is the window within which deductions are
// considered one admin action for display.
const DefaultGroupingThreshold = 2 * time.Second

// GroupDeductions clusters deduction records that happened close together
// in time into display groups. The pass walks the records in order; each
// unconsumed record becomes a group anchor, and every later unconsumed
// record whose timestamp differs from the ANCHOR's by less than the
// threshold joins that group. Membership is measured against the anchor
// only, never chained, so a run of records each spaced just under the
// threshold still splits at the first record outside the anchor's window.
func GroupDeductions(records []domain.AdminDeduction, threshold time.Duration) []domain.DeductionGroup {
	if threshold <= 0 {
		threshold = DefaultGroupingThreshold
	}

	consumed := make([]bool, len(records))
	var groups []domain.DeductionGroup

	for i := range records {
		if consumed[i] {
			continue
		}
		anchor := records[i]
		consumed[i] = true

		group := domain.DeductionGroup{
			AnchorTime:     anchor.CreatedAt,
			AdminID:        anchor.AdminID,
			DeductedFirst:  anchor.DeductedFirst,
			DeductedSecond: anchor.DeductedSecond,
			EntryNumbers:   []string{anchor.EntryNumber},
			MemberIDs:      []uuid.UUID{anchor.ID},
			Count:          1,
		}

		for j := i + 1; j < len(records); j++ {
			if consumed[j] {
				continue
			}
			diff := records[j].CreatedAt.Sub(anchor.CreatedAt)
			if diff < 0 {
				diff = -diff
			}
			if diff >= threshold {
				continue
			}
			consumed[j] = true
			group.DeductedFirst += records[j].DeductedFirst
			group.DeductedSecond += records[j].DeductedSecond
			group.EntryNumbers = append(group.EntryNumbers, records[j].EntryNumber)
			group.MemberIDs = append(group.MemberIDs, records[j].ID)
			group.Count++
		}

		groups = append(groups, group)
	}
	return groups
}
