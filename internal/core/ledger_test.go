package core

import (
	"reflect"
	"testing"
)

func leg(id string, d Direction, start, end string, cents int64) ExpenseRecord {
	return ExpenseRecord{ID: id, Direction: d, StartLocation: start, EndLocation: end, Cost: Money{Cents: cents}}
}

func ids(records []ExpenseRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestLedgerAddRoutesByDirection(t *testing.T) {
	l := NewLedger(
		leg("f1", DirectionFrom, "C", "A", 100),
		leg("t1", DirectionTo, "A", "B", 200),
		leg("a1", DirectionAt, "B", "B2", 50),
		leg("t2", DirectionTo, "B", "C", 300),
	)

	if got := ids(l.Partition(DirectionTo)); !reflect.DeepEqual(got, []string{"t1", "t2"}) {
		t.Errorf("to = %v", got)
	}
	if got := ids(l.Partition(DirectionAt)); !reflect.DeepEqual(got, []string{"a1"}) {
		t.Errorf("at = %v", got)
	}
	if got := ids(l.All()); !reflect.DeepEqual(got, []string{"t1", "t2", "a1", "f1"}) {
		t.Errorf("All() = %v, want to ++ at ++ from", got)
	}

	l.Add(ExpenseRecord{ID: "x", Direction: "nowhere"})
	if l.Len() != 4 {
		t.Errorf("record with unknown direction should be dropped, Len() = %d", l.Len())
	}
}

func TestLedgerSumIndependentOfOrder(t *testing.T) {
	records := []ExpenseRecord{
		leg("t1", DirectionTo, "A", "B", 1990),
		leg("a1", DirectionAt, "B", "B", 450),
		{ID: "t2", Direction: DirectionTo, StartLocation: "B", EndLocation: "C", DistanceKm: 33.3, RatePerKm: Money{Cents: 30}},
		leg("f1", DirectionFrom, "C", "A", 2100),
	}
	want := SumOf(records)

	forward := NewLedger(records...)
	backward := NewLedger(records[3], records[2], records[1], records[0])

	if forward.Sum() != want || backward.Sum() != want {
		t.Errorf("Sum() = %v / %v, want %v", forward.Sum(), backward.Sum(), want)
	}

	forward.Delete("a1")
	if forward.Len() != 3 {
		t.Errorf("Len() = %d after delete, want 3", forward.Len())
	}
	if got, want := forward.Sum(), SumOf(forward.All()); got != want {
		t.Errorf("Sum() = %v, want %v", got, want)
	}
}

func TestLedgerEdit(t *testing.T) {
	l := NewLedger(
		leg("t1", DirectionTo, "A", "B", 100),
		leg("t2", DirectionTo, "B", "C", 100),
		leg("a1", DirectionAt, "C", "D", 100),
	)

	changed := leg("ignored", DirectionFrom, "B", "Z", 999)
	if !l.Edit("t1", changed) {
		t.Fatalf("Edit(t1) should report a hit")
	}
	to := l.Partition(DirectionTo)
	if to[0].ID != "t1" || to[0].Direction != DirectionTo || to[0].EndLocation != "Z" {
		t.Errorf("edit did not replace in place: %+v", to[0])
	}
	if len(l.Partition(DirectionFrom)) != 0 {
		t.Errorf("edit must not move a record between partitions")
	}

	before := l.All()
	if l.Edit("missing", changed) {
		t.Errorf("Edit(missing) should report no hit")
	}
	if !reflect.DeepEqual(before, l.All()) {
		t.Errorf("Edit on missing id changed the ledger")
	}
}

func TestLedgerDeleteIdempotent(t *testing.T) {
	l := NewLedger(
		leg("t1", DirectionTo, "A", "B", 100),
		leg("a1", DirectionAt, "B", "C", 100),
		leg("f1", DirectionFrom, "C", "A", 100),
	)

	if !l.Delete("a1") {
		t.Fatalf("first Delete should remove the record")
	}
	once := l.All()
	if l.Delete("a1") {
		t.Errorf("second Delete should be a no-op")
	}
	if !reflect.DeepEqual(once, l.All()) {
		t.Errorf("second Delete changed the ledger")
	}
	if got := ids(l.All()); !reflect.DeepEqual(got, []string{"t1", "f1"}) {
		t.Errorf("All() = %v", got)
	}
}

func TestLedgerLastOf(t *testing.T) {
	l := NewLedger()
	if _, ok := l.LastOf(DirectionAt); ok {
		t.Errorf("empty ledger should have no last record")
	}

	l.Add(leg("t1", DirectionTo, "A", "B", 0))
	l.Add(leg("t2", DirectionTo, "B", "C", 0))

	tests := []struct {
		name string
		dir  Direction
		want string
	}{
		{"to", DirectionTo, "t2"},
		{"at falls back to to", DirectionAt, "t2"},
		{"from falls back to to", DirectionFrom, "t2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := l.LastOf(tt.dir)
			if !ok || got.ID != tt.want {
				t.Errorf("LastOf(%s) = %q, %v, want %q", tt.dir, got.ID, ok, tt.want)
			}
		})
	}

	l.Add(leg("a1", DirectionAt, "C", "D", 0))
	if got, _ := l.LastOf(DirectionAt); got.ID != "a1" {
		t.Errorf("LastOf(at) = %q, want a1", got.ID)
	}
}

func TestLedgerDefaultCarTypeAndDraft(t *testing.T) {
	l := NewLedger(leg("t1", DirectionTo, "A", "B", 0))
	if _, ok := l.DefaultCarType(); ok {
		t.Errorf("no car leg yet")
	}

	l.Add(ExpenseRecord{ID: "f1", Direction: DirectionFrom, StartLocation: "B", EndLocation: "A", Transport: TransportCar, CarType: "electric"})
	l.Add(ExpenseRecord{ID: "a1", Direction: DirectionAt, StartLocation: "B", EndLocation: "C", Transport: TransportCar, CarType: "combustion"})

	ct, ok := l.DefaultCarType()
	if !ok || ct != "combustion" {
		t.Errorf("DefaultCarType() = %q, %v, want combustion (at is scanned before from)", ct, ok)
	}

	draft := l.Draft(DirectionAt)
	if draft.Direction != DirectionAt || draft.StartLocation != "C" || draft.CarType != "combustion" {
		t.Errorf("Draft(at) = %+v", draft)
	}
}

func TestGenerateReturnTrip(t *testing.T) {
	a := leg("A", DirectionTo, "Home", "Station", 300)
	b := leg("B", DirectionTo, "Station", "Town", 1500)
	c := leg("C", DirectionTo, "Town", "Hut", 700)
	l := NewLedger(a, b, c, leg("old", DirectionFrom, "x", "y", 1))

	l.GenerateReturnTrip()
	from := l.Partition(DirectionFrom)

	want := []ExpenseRecord{ReturnTrip(c), ReturnTrip(b), ReturnTrip(a)}
	if !reflect.DeepEqual(from, want) {
		t.Fatalf("from = %+v, want %+v", from, want)
	}
	if from[0].StartLocation != c.EndLocation {
		t.Errorf("from[0].StartLocation = %q, want %q", from[0].StartLocation, c.EndLocation)
	}
	if from[len(from)-1].EndLocation != a.StartLocation {
		t.Errorf("return trip should end where the outbound trip started")
	}

	l.GenerateReturnTrip()
	if !reflect.DeepEqual(l.Partition(DirectionFrom), from) {
		t.Errorf("GenerateReturnTrip not idempotent for unchanged to")
	}
}

func TestLedgerEndToEndSum(t *testing.T) {
	to := ExpenseRecord{ID: "t", Direction: DirectionTo, StartLocation: "A", EndLocation: "B", DistanceKm: 100, RatePerKm: Money{Cents: 30}}
	at := leg("a", DirectionAt, "B", "B", 850)
	x, y := to.TotalReimbursement(), at.TotalReimbursement()

	l := NewLedger(to, at)
	if l.Sum() != x.Add(y) {
		t.Fatalf("Sum() = %v, want %v", l.Sum(), x.Add(y))
	}

	l.GenerateReturnTrip()
	xPrime := ReturnTrip(to).TotalReimbursement()
	if got, want := l.Sum(), x.Add(y).Add(xPrime); got != want {
		t.Errorf("Sum() after return trip = %v, want %v", got, want)
	}
}

func TestLedgerReplaceAll(t *testing.T) {
	l := NewLedger(leg("t1", DirectionTo, "A", "B", 200), leg("f1", DirectionFrom, "B", "A", 200))
	l.ReplaceAll([]ExpenseRecord{leg("a1", DirectionAt, "B", "C", 10)})

	if got := ids(l.All()); !reflect.DeepEqual(got, []string{"a1"}) {
		t.Errorf("All() = %v, want [a1]", got)
	}
	if l.Sum().Cents != 10 {
		t.Errorf("Sum() = %d, want 10", l.Sum().Cents)
	}
}
