package core

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

type (
	Severity string

	// Finding is one message produced by the policy validator.
	Finding struct {
		Severity Severity
		Message  string
	}

	ValidationResult struct {
		IsValid  bool
		Findings []Finding
	}
)

// NewValidationResult derives IsValid from the findings: a result is valid
// unless it carries at least one error.
func NewValidationResult(findings []Finding) ValidationResult {
	r := ValidationResult{Findings: findings}
	r.IsValid = !r.Blocking()
	return r
}

func (r ValidationResult) Errors() []string {
	return r.messages(SeverityError)
}

func (r ValidationResult) Warnings() []string {
	return r.messages(SeverityWarning)
}

func (r ValidationResult) Infos() []string {
	return r.messages(SeverityInfo)
}

// Blocking reports whether the claim must not be submitted.
func (r ValidationResult) Blocking() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

func (r ValidationResult) messages(s Severity) []string {
	var out []string
	for _, f := range r.Findings {
		if f.Severity == s {
			out = append(out, f.Message)
		}
	}
	return out
}
