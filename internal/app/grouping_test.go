package app

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/farazahmedph003/gull-backend/internal/domain"
)

func deductionAt(offset time.Duration, first, second int64, number string) domain.AdminDeduction {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return domain.AdminDeduction{
		ID:             uuid.New(),
		EntryID:        uuid.New(),
		AdminID:        uuid.New(),
		EntryNumber:    number,
		DeductedFirst:  first,
		DeductedSecond: second,
		CreatedAt:      base.Add(offset),
	}
}

func TestGroupDeductions_WindowSplitsAtAnchor(t *testing.T) {
	records := []domain.AdminDeduction{
		deductionAt(0, 10, 5, "12"),
		deductionAt(500*time.Millisecond, 20, 0, "34"),
		deductionAt(3000*time.Millisecond, 7, 3, "56"),
	}

	groups := GroupDeductions(records, 2*time.Second)

	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Count != 2 {
		t.Fatalf("expected first group to hold 2 members, got %d", groups[0].Count)
	}
	if groups[0].DeductedFirst != 30 || groups[0].DeductedSecond != 5 {
		t.Fatalf("expected first group sums 30/5, got %d/%d", groups[0].DeductedFirst, groups[0].DeductedSecond)
	}
	if groups[1].Count != 1 || groups[1].EntryNumbers[0] != "56" {
		t.Fatalf("expected second group to be the lone record at 3000ms")
	}
}

func TestGroupDeductions_AnchorBasedNotTransitive(t *testing.T) {
	// 0ms, 1500ms, 3000ms: each neighbor pair is under the window, but
	// membership is measured against the anchor, so 3000ms starts a new
	// group even though it is within 2s of the 1500ms record.
	records := []domain.AdminDeduction{
		deductionAt(0, 1, 0, "1"),
		deductionAt(1500*time.Millisecond, 1, 0, "2"),
		deductionAt(3000*time.Millisecond, 1, 0, "3"),
	}

	groups := GroupDeductions(records, 2*time.Second)

	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Count != 2 {
		t.Fatalf("expected anchor group of 2, got %d", groups[0].Count)
	}
	if groups[1].AnchorTime != records[2].CreatedAt {
		t.Fatalf("expected third record to anchor the second group")
	}
}

func TestGroupDeductions_ExactThresholdExcluded(t *testing.T) {
	records := []domain.AdminDeduction{
		deductionAt(0, 1, 0, "1"),
		deductionAt(2000*time.Millisecond, 1, 0, "2"),
	}

	groups := GroupDeductions(records, 2*time.Second)

	if len(groups) != 2 {
		t.Fatalf("expected a diff of exactly the threshold to split, got %d group(s)", len(groups))
	}
}

func TestGroupDeductions_CollectsMemberIDsForBulkDelete(t *testing.T) {
	records := []domain.AdminDeduction{
		deductionAt(0, 1, 0, "1"),
		deductionAt(100*time.Millisecond, 2, 0, "2"),
		deductionAt(200*time.Millisecond, 3, 0, "3"),
	}

	groups := GroupDeductions(records, 2*time.Second)

	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	if len(groups[0].MemberIDs) != 3 {
		t.Fatalf("expected 3 member ids, got %d", len(groups[0].MemberIDs))
	}
	for i, rec := range records {
		if groups[0].MemberIDs[i] != rec.ID {
			t.Fatalf("expected member id order to follow record order")
		}
	}
}

func TestGroupDeductions_Empty(t *testing.T) {
	if groups := GroupDeductions(nil, 2*time.Second); len(groups) != 0 {
		t.Fatalf("expected no groups for no records, got %d", len(groups))
	}
}
