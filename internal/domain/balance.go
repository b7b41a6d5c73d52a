package domain

// ApplyDelta applies the signed change in entry total to the balance
// record: creating or increasing an entry (positive delta) consumes
// balance and raises total spent; deleting or decreasing one (negative
// delta) refunds balance and lowers total spent. TotalSpent never drops
// below zero.
func (b *Balance) ApplyDelta(delta int64) {
	b.Balance -= delta
	b.TotalSpent += delta
	if b.TotalSpent < 0 {
		b.TotalSpent = 0
	}
}

// EntryDelta returns the signed change in total amount an operation
// causes: oldTotal is 0 for creation, newTotal is 0 for deletion.
func EntryDelta(oldTotal, newTotal int64) int64 {
	return newTotal - oldTotal
}
