package core

// Ledger holds the legs of one claim in three ordered partitions. Order within
// a partition is chronological trip order and is the order used for rendering
// and summing. A Ledger is owned by a single caller and is not safe for
// concurrent mutation.
type Ledger struct {
	to   []ExpenseRecord
	at   []ExpenseRecord
	from []ExpenseRecord
}

// NewLedger hydrates a ledger from persisted records, routing each one to its
// partition in the given order.
func NewLedger(records ...ExpenseRecord) *Ledger {
	l := &Ledger{}
	for _, r := range records {
		l.Add(r)
	}
	return l
}

// ReplaceAll discards every partition and routes records as NewLedger does.
func (l *Ledger) ReplaceAll(records []ExpenseRecord) {
	l.to, l.at, l.from = nil, nil, nil
	for _, r := range records {
		l.Add(r)
	}
}

func (l *Ledger) partition(d Direction) *[]ExpenseRecord {
	switch d {
	case DirectionTo:
		return &l.to
	case DirectionAt:
		return &l.at
	case DirectionFrom:
		return &l.from
	default:
		return nil
	}
}

// Add appends the record to the partition named by its direction. Records
// with an unknown direction are dropped.
func (l *Ledger) Add(r ExpenseRecord) {
	p := l.partition(r.Direction)
	if p == nil {
		return
	}
	*p = append(*p, r)
}

// Edit replaces the record with the given id in place. Partitions are searched
// in to, at, from order and the first match wins. The replacement keeps the
// id and direction of the record it replaces. Returns false, leaving the
// ledger untouched, when no record has that id.
func (l *Ledger) Edit(id string, r ExpenseRecord) bool {
	for _, d := range Directions() {
		p := l.partition(d)
		for i := range *p {
			if (*p)[i].ID != id {
				continue
			}
			r.ID = id
			r.Direction = d
			(*p)[i] = r
			return true
		}
	}
	return false
}

// Delete removes the record with the given id from whichever partition holds
// it. Deleting an absent id is a no-op and returns false.
func (l *Ledger) Delete(id string) bool {
	removed := false
	for _, d := range Directions() {
		p := l.partition(d)
		kept := (*p)[:0]
		for _, r := range *p {
			if r.ID == id {
				removed = true
				continue
			}
			kept = append(kept, r)
		}
		*p = kept
	}
	return removed
}

// Find returns the record with the given id.
func (l *Ledger) Find(id string) (ExpenseRecord, bool) {
	for _, r := range l.All() {
		if r.ID == id {
			return r, true
		}
	}
	return ExpenseRecord{}, false
}

// LastOf returns the last record of a partition. For at and from an empty
// partition falls back to the last outbound leg.
func (l *Ledger) LastOf(d Direction) (ExpenseRecord, bool) {
	if p := l.partition(d); p != nil && len(*p) > 0 {
		return (*p)[len(*p)-1], true
	}
	if d == DirectionAt || d == DirectionFrom {
		if len(l.to) > 0 {
			return l.to[len(l.to)-1], true
		}
	}
	return ExpenseRecord{}, false
}

// DefaultCarType returns the car type of the first car leg in canonical order.
func (l *Ledger) DefaultCarType() (CarType, bool) {
	for _, r := range l.All() {
		if r.HasCarType() {
			return r.CarType, true
		}
	}
	return "", false
}

// Draft returns a prefilled record for a new leg in the given direction: it
// starts where the previous leg ended and reuses the claim's car type.
func (l *Ledger) Draft(d Direction) ExpenseRecord {
	draft := ExpenseRecord{Direction: d}
	if last, ok := l.LastOf(d); ok {
		draft.StartLocation = last.EndLocation
	}
	if ct, ok := l.DefaultCarType(); ok {
		draft.CarType = ct
	}
	return draft
}

// GenerateReturnTrip overwrites the from partition with the mirrored outbound
// legs in reverse order, so the last outbound stop is the first return stop.
func (l *Ledger) GenerateReturnTrip() {
	from := make([]ExpenseRecord, len(l.to))
	for i, r := range l.to {
		from[len(l.to)-1-i] = ReturnTrip(r)
	}
	l.from = from
}

// Partition returns a copy of one partition.
func (l *Ledger) Partition(d Direction) []ExpenseRecord {
	p := l.partition(d)
	if p == nil {
		return nil
	}
	return append([]ExpenseRecord(nil), *p...)
}

// All returns to ++ at ++ from, the canonical order across the whole claim.
func (l *Ledger) All() []ExpenseRecord {
	all := make([]ExpenseRecord, 0, l.Len())
	all = append(all, l.to...)
	all = append(all, l.at...)
	all = append(all, l.from...)
	return all
}

func (l *Ledger) Len() int {
	return len(l.to) + len(l.at) + len(l.from)
}

// Sum is the total reimbursement over all partitions.
func (l *Ledger) Sum() Money {
	return SumOf(l.from).Add(SumOf(l.at)).Add(SumOf(l.to))
}

// SumOf folds TotalReimbursement over the records.
func SumOf(records []ExpenseRecord) Money {
	var total Money
	for _, r := range records {
		total = total.Add(r.TotalReimbursement())
	}
	return total
}
