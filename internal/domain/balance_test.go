package domain

import "testing"

func TestApplyDelta_EntryIncreaseConsumesBalance(t *testing.T) {
	b := Balance{Balance: 1000, TotalSpent: 500}

	// Editing an entry from total 500 to total 700.
	b.ApplyDelta(EntryDelta(500, 700))

	if b.Balance != 800 {
		t.Fatalf("expected balance 800, got %d", b.Balance)
	}
	if b.TotalSpent != 700 {
		t.Fatalf("expected total spent 700, got %d", b.TotalSpent)
	}
}

func TestApplyDelta_DeletionRefunds(t *testing.T) {
	b := Balance{Balance: 1000, TotalSpent: 150}

	// Deleting an entry with first=100, second=50.
	b.ApplyDelta(EntryDelta(150, 0))

	if b.Balance != 1150 {
		t.Fatalf("expected balance 1150, got %d", b.Balance)
	}
	if b.TotalSpent != 0 {
		t.Fatalf("expected total spent 0, got %d", b.TotalSpent)
	}
}

func TestApplyDelta_TotalSpentClampedAtZero(t *testing.T) {
	b := Balance{Balance: 200, TotalSpent: 100}

	b.ApplyDelta(EntryDelta(300, 0))

	if b.Balance != 500 {
		t.Fatalf("expected balance 500, got %d", b.Balance)
	}
	if b.TotalSpent != 0 {
		t.Fatalf("expected total spent clamped to 0, got %d", b.TotalSpent)
	}
}

func TestApplyDelta_CreationChargesFullTotal(t *testing.T) {
	b := Balance{Balance: 1000, TotalSpent: 0}

	b.ApplyDelta(EntryDelta(0, 250))

	if b.Balance != 750 {
		t.Fatalf("expected balance 750, got %d", b.Balance)
	}
	if b.TotalSpent != 250 {
		t.Fatalf("expected total spent 250, got %d", b.TotalSpent)
	}
}
