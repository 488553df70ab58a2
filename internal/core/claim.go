package core

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

type (
	Participant struct {
		Name   string
		Email  string
		Street string
		City   string
	}

	Course struct {
		ID       string
		Title    string
		Location string
		Start    Date
		End      Date
	}

	// Claim is the full reimbursement snapshot: who travelled, to which
	// course, where the money goes, and the legs.
	Claim struct {
		Participant Participant
		Course      Course
		IBAN        string
		Expenses    []ExpenseRecord
	}
)

// ErrStructurallyInvalid marks a claim whose form data is not well formed.
// It says nothing about policy compliance.
var ErrStructurallyInvalid = errors.New("claim is not well formed")

// Validate checks that the claim can be rendered and submitted at all.
func (c Claim) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Participant.Name) == "" {
		problems = append(problems, "participant name is required")
	}
	if strings.TrimSpace(c.Course.ID) == "" {
		problems = append(problems, "course id is required")
	}
	if !c.Course.Start.IsEmpty() && !c.Course.End.IsEmpty() && c.Course.End.Before(c.Course.Start.Time) {
		problems = append(problems, "course end is before course start")
	}
	if err := ValidateIBAN(c.IBAN); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w:\n- %s", ErrStructurallyInvalid, strings.Join(problems, "\n- "))
	}
	return nil
}

// Ledger builds a ledger from the claim's expenses.
func (c Claim) Ledger() *Ledger {
	return NewLedger(c.Expenses...)
}

// Sum is the total reimbursement of the claim.
func (c Claim) Sum() Money {
	return SumOf(c.Expenses)
}

// ValidateIBAN checks length, country prefix and the ISO 13616 mod-97 checksum.
func ValidateIBAN(iban string) error {
	s := NormalizeIBAN(iban)
	if s == "" {
		return errors.New("IBAN is required")
	}
	if len(s) < 15 || len(s) > 34 {
		return fmt.Errorf("IBAN has invalid length %d", len(s))
	}
	if !unicode.IsLetter(rune(s[0])) || !unicode.IsLetter(rune(s[1])) ||
		!unicode.IsDigit(rune(s[2])) || !unicode.IsDigit(rune(s[3])) {
		return errors.New("IBAN must start with a country code and check digits")
	}

	rearranged := s[4:] + s[:4]
	remainder := 0
	for _, r := range rearranged {
		switch {
		case r >= '0' && r <= '9':
			remainder = (remainder*10 + int(r-'0')) % 97
		case r >= 'A' && r <= 'Z':
			remainder = (remainder*100 + int(r-'A') + 10) % 97
		default:
			return fmt.Errorf("IBAN contains invalid character %q", r)
		}
	}
	if remainder != 1 {
		return errors.New("IBAN checksum mismatch")
	}
	return nil
}

// NormalizeIBAN strips whitespace and upper-cases the IBAN.
func NormalizeIBAN(iban string) string {
	return strings.ToUpper(strings.Join(strings.Fields(iban), ""))
}
