package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldRunID       = "run_id"
	FieldClaimID     = "claim_id"
	FieldCourseID    = "course_id"
	FieldExpenseID   = "expense_id"
	FieldDirection   = "direction"
	FieldAmountCents = "amount_cents"
	FieldCount       = "count"
	FieldState       = "state"
	FieldAttachment  = "attachment"
	FieldKind        = "kind"
	FieldPages       = "pages"
	FieldWidth       = "width"
	FieldHeight      = "height"
	FieldBytes       = "bytes"
	FieldFilename    = "filename"
	FieldDuration    = "duration_ms"
)

// Components defines standard component names
const (
	ComponentApp        = "app"
	ComponentCLI        = "cli"
	ComponentLedger     = "ledger"
	ComponentSubmission = "submission"
	ComponentAssembler  = "assembler"
	ComponentPhoto      = "photo"
	ComponentStorage    = "storage"
	ComponentAMQP       = "amqp"
	ComponentCache      = "cache"
	ComponentBackend    = "backend"
)

// Operations defines standard operation names
const (
	OpAdd        = "add"
	OpEdit       = "edit"
	OpDelete     = "delete"
	OpReturnTrip = "return_trip"
	OpLoad       = "load"
	OpPersist    = "persist"
	OpValidate   = "validate"
	OpRender     = "render"
	OpNormalize  = "normalize"
	OpMerge      = "merge"
	OpSave       = "save"
	OpPublish    = "publish"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithExpense adds expense-related fields
func (f LogFields) WithExpense(id, direction string, amountCents int64) LogFields {
	f[FieldExpenseID] = id
	f[FieldDirection] = direction
	f[FieldAmountCents] = amountCents
	return f
}

// WithAttachment adds attachment-related fields
func (f LogFields) WithAttachment(name, kind string, size int) LogFields {
	f[FieldAttachment] = name
	f[FieldKind] = kind
	f[FieldBytes] = size
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
