package services

import (
	"context"
	"errors"
	"fmt"

	"fka/internal/amqp"
	"fka/internal/claims"
	"fka/internal/core"
	"fka/internal/document"
	"fka/internal/log"
	"fka/internal/policy"
)

// ErrClaimBlocked is returned when the claim has error findings and the
// submission was not forced.
var ErrClaimBlocked = errors.New("claim has blocking findings")

type (
	// Assembler builds the submission document.
	Assembler interface {
		Run(ctx context.Context, claim core.Claim, attachments []document.Attachment) (*document.Document, error)
	}

	// Publisher announces finished documents.
	Publisher interface {
		PublishDocumentAssembled(ctx context.Context, msg *amqp.DocumentAssembledMessage) error
	}
)

// Submission is the outcome of a submit call.
type Submission struct {
	Claim    core.Claim
	Result   core.ValidationResult
	Document *document.Document
}

// SubmissionService checks the stored claim against policy, assembles the
// document and announces it.
type SubmissionService struct {
	store     claims.ReimbursementReader
	validator policy.Validator
	assembler Assembler
	publisher Publisher
	logger    *log.Logger
}

// NewSubmissionService wires the submission flow. publisher may be nil.
func NewSubmissionService(store claims.ReimbursementReader, validator policy.Validator, assembler Assembler, publisher Publisher, logger *log.Logger) *SubmissionService {
	if logger == nil {
		logger = log.Discard()
	}
	return &SubmissionService{
		store:     store,
		validator: validator,
		assembler: assembler,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentSubmission),
	}
}

// Check loads the claim and runs the validator.
func (s *SubmissionService) Check(ctx context.Context) (core.Claim, core.ValidationResult, error) {
	claim, err := s.store.GetReimbursement(ctx)
	if err != nil {
		return core.Claim{}, core.ValidationResult{}, fmt.Errorf("load claim: %w", err)
	}
	result := s.validator.Validate(claim)
	s.logger.InfoContext(ctx, "Claim validated",
		log.FieldOperation, log.OpValidate,
		log.FieldCourseID, claim.Course.ID,
		"errors", len(result.Errors()),
		"warnings", len(result.Warnings()),
		"infos", len(result.Infos()))
	return claim, result, nil
}

// Submit assembles the document for the stored claim. Claims with error
// findings are refused unless force is set. A failed publish is logged and
// does not fail the submission; the document is already written.
func (s *SubmissionService) Submit(ctx context.Context, attachments []document.Attachment, force bool) (*Submission, error) {
	claim, result, err := s.Check(ctx)
	if err != nil {
		return nil, err
	}
	sub := &Submission{Claim: claim, Result: result}

	if result.Blocking() {
		if !force {
			return sub, fmt.Errorf("%w: %d error(s)", ErrClaimBlocked, len(result.Errors()))
		}
		s.logger.WarnContext(ctx, "Submitting claim with blocking findings", log.FieldCourseID, claim.Course.ID)
	}

	doc, err := s.assembler.Run(ctx, claim, attachments)
	if err != nil {
		return sub, fmt.Errorf("assemble document: %w", err)
	}
	sub.Document = doc

	if err := s.publish(ctx, claim, doc, force && result.Blocking()); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish document message",
			log.FieldOperation, log.OpPublish,
			log.FieldRunID, doc.RunID,
			log.FieldError, err)
	}
	return sub, nil
}

func (s *SubmissionService) publish(ctx context.Context, claim core.Claim, doc *document.Document, forced bool) error {
	if s.publisher == nil {
		s.logger.WarnContext(ctx, "AMQP client not available, skipping document message")
		return nil
	}
	return s.publisher.PublishDocumentAssembled(ctx, &amqp.DocumentAssembledMessage{
		RunID:      doc.RunID,
		CourseID:   claim.Course.ID,
		Filename:   doc.Name,
		Location:   doc.Location,
		Pages:      doc.Pages,
		Bytes:      len(doc.Data),
		TotalCents: claim.Sum().Cents,
		Forced:     forced,
	})
}
