package policy

import (
	"testing"

	"fka/internal/core"
)

func baseClaim() core.Claim {
	return core.Claim{
		Participant: core.Participant{Name: "Jo Berger"},
		Course:      core.Course{ID: "K1", Start: core.NewDate(2024, 6, 1), End: core.NewDate(2024, 6, 3)},
		IBAN:        "DE89370400440532013000",
		Expenses: []core.ExpenseRecord{
			{ID: "t", Direction: core.DirectionTo, StartLocation: "A", EndLocation: "B", Cost: core.Money{Cents: 1000}, Date: core.NewDate(2024, 6, 1)},
			{ID: "f", Direction: core.DirectionFrom, StartLocation: "B", EndLocation: "A", Cost: core.Money{Cents: 1000}, Date: core.NewDate(2024, 6, 3)},
		},
	}
}

func TestDefaultValidator(t *testing.T) {
	tests := []struct {
		name         string
		mutate       func(*core.Claim)
		wantErrors   int
		wantWarnings int
		wantInfos    int
	}{
		{"clean claim", func(c *core.Claim) {}, 0, 0, 0},
		{"no legs", func(c *core.Claim) { c.Expenses = nil }, 1, 0, 0},
		{"missing location", func(c *core.Claim) { c.Expenses[0].EndLocation = "" }, 1, 0, 0},
		{"negative cost", func(c *core.Claim) { c.Expenses[1].Cost = core.Money{Cents: -1} }, 1, 0, 0},
		{"car without type", func(c *core.Claim) { c.Expenses[0].Transport = core.TransportCar }, 0, 1, 0},
		{"no return trip", func(c *core.Claim) { c.Expenses = c.Expenses[:1] }, 0, 1, 0},
		{"leg long before course", func(c *core.Claim) { c.Expenses[0].Date = core.NewDate(2024, 5, 20) }, 0, 1, 0},
		{"large total", func(c *core.Claim) { c.Expenses[0].Cost = core.Money{Cents: 60000} }, 0, 0, 1},
	}

	v := DefaultValidator(core.Money{Cents: 50000})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := baseClaim()
			tt.mutate(&c)
			r := v.Validate(c)
			if len(r.Errors()) != tt.wantErrors || len(r.Warnings()) != tt.wantWarnings || len(r.Infos()) != tt.wantInfos {
				t.Errorf("findings = %+v, want %d errors %d warnings %d infos", r.Findings, tt.wantErrors, tt.wantWarnings, tt.wantInfos)
			}
			if r.IsValid != (tt.wantErrors == 0) {
				t.Errorf("IsValid = %v with %d errors", r.IsValid, tt.wantErrors)
			}
		})
	}
}

func TestReviewThresholdDisabled(t *testing.T) {
	c := baseClaim()
	c.Expenses[0].Cost = core.Money{Cents: 10_000_000}
	if infos := DefaultValidator(core.Money{}).Validate(c).Infos(); len(infos) != 0 {
		t.Errorf("zero threshold should disable the review rule, got %v", infos)
	}
}
