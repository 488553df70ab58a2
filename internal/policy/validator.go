// Package policy evaluates a claim against the reimbursement rules and reports
// categorized findings. Findings never block the ledger or the assembler by
// themselves; callers decide what an error finding means for submission.
package policy

import (
	"fmt"

	"fka/internal/core"
)

// Validator is the port the rest of the system consumes.
type Validator interface {
	Validate(claim core.Claim) core.ValidationResult
}

// Rule inspects a claim and returns zero or more findings.
type Rule func(claim core.Claim) []core.Finding

// RuleValidator runs a fixed list of rules in order.
type RuleValidator struct {
	rules []Rule
}

func NewRuleValidator(rules ...Rule) *RuleValidator {
	return &RuleValidator{rules: rules}
}

// DefaultValidator returns the standard rule set. Totals above reviewThreshold
// produce an info finding; a zero threshold disables that rule.
func DefaultValidator(reviewThreshold core.Money) *RuleValidator {
	rules := []Rule{
		RequireLegs,
		RequireLocations,
		RejectNegativeAmounts,
		CarLegsNeedCarType,
		ExpectReturnTrip,
		LegsWithinCourse,
	}
	if reviewThreshold.Cents > 0 {
		rules = append(rules, ReviewLargeTotal(reviewThreshold))
	}
	return NewRuleValidator(rules...)
}

func (v *RuleValidator) Validate(claim core.Claim) core.ValidationResult {
	var findings []core.Finding
	for _, rule := range v.rules {
		findings = append(findings, rule(claim)...)
	}
	return core.NewValidationResult(findings)
}

func RequireLegs(claim core.Claim) []core.Finding {
	if len(claim.Expenses) == 0 {
		return []core.Finding{{Severity: core.SeverityError, Message: "no travel legs entered"}}
	}
	return nil
}

func RequireLocations(claim core.Claim) []core.Finding {
	var out []core.Finding
	for i, e := range claim.Expenses {
		if e.StartLocation == "" || e.EndLocation == "" {
			out = append(out, core.Finding{
				Severity: core.SeverityError,
				Message:  fmt.Sprintf("leg %d (%s) is missing a start or end location", i+1, e.Direction),
			})
		}
	}
	return out
}

func RejectNegativeAmounts(claim core.Claim) []core.Finding {
	var out []core.Finding
	for i, e := range claim.Expenses {
		if e.TotalReimbursement().Cents < 0 || e.DistanceKm < 0 {
			out = append(out, core.Finding{
				Severity: core.SeverityError,
				Message:  fmt.Sprintf("leg %d (%s) has a negative amount", i+1, e.Direction),
			})
		}
	}
	return out
}

func CarLegsNeedCarType(claim core.Claim) []core.Finding {
	var out []core.Finding
	for i, e := range claim.Expenses {
		if e.Transport == core.TransportCar && !e.HasCarType() {
			out = append(out, core.Finding{
				Severity: core.SeverityWarning,
				Message:  fmt.Sprintf("leg %d (%s) is a car leg without a car type", i+1, e.Direction),
			})
		}
	}
	return out
}

func ExpectReturnTrip(claim core.Claim) []core.Finding {
	l := claim.Ledger()
	if len(l.Partition(core.DirectionTo)) > 0 && len(l.Partition(core.DirectionFrom)) == 0 {
		return []core.Finding{{Severity: core.SeverityWarning, Message: "outbound legs without a return trip"}}
	}
	return nil
}

// LegsWithinCourse warns about dated legs more than a day outside the course.
func LegsWithinCourse(claim core.Claim) []core.Finding {
	start, end := claim.Course.Start, claim.Course.End
	if start.IsEmpty() || end.IsEmpty() {
		return nil
	}
	earliest := start.AddDate(0, 0, -1)
	latest := end.AddDate(0, 0, 1)

	var out []core.Finding
	for i, e := range claim.Expenses {
		if e.Date.IsEmpty() {
			continue
		}
		if e.Date.Before(earliest) || e.Date.After(latest) {
			out = append(out, core.Finding{
				Severity: core.SeverityWarning,
				Message:  fmt.Sprintf("leg %d is dated %s, outside the course dates", i+1, e.Date.Format("02.01.2006")),
			})
		}
	}
	return out
}

func ReviewLargeTotal(threshold core.Money) Rule {
	return func(claim core.Claim) []core.Finding {
		if sum := claim.Sum(); sum.Cents > threshold.Cents {
			return []core.Finding{{
				Severity: core.SeverityInfo,
				Message:  fmt.Sprintf("total of %s exceeds %s and will be reviewed manually", sum, threshold),
			}}
		}
		return nil
	}
}
