// Package document assembles the submission PDF: summary pages first, then
// every attachment in the order it was added.
package document

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"fka/internal/core"
	"fka/internal/log"
	"fka/internal/photo"
)

var (
	ErrAssemblyInProgress    = errors.New("an assembly run is already in progress")
	ErrUnsupportedAttachment = errors.New("unsupported attachment type")
)

// ImageNormalizer prepares a receipt photo for a page.
type ImageNormalizer interface {
	Normalize(ctx context.Context, data []byte) (*photo.Normalized, error)
}

// Document is the result of a finalized run.
type Document struct {
	RunID    string
	Name     string
	Location string
	Data     []byte
	Pages    int
	Parts    []Part
	Skipped  []string // unrecognized attachments
}

// Part is one merged segment of a document, in page order.
type Part struct {
	Name  string
	Kind  Kind
	Pages int
}

// Assembler runs one assembly at a time. A second Run while one is active
// fails with ErrAssemblyInProgress.
type Assembler struct {
	renderer    SummaryRenderer
	normalizer  ImageNormalizer
	sink        Sink
	logger      *log.Logger
	jpegQuality int
	timeout     time.Duration
	observer    func(State)

	guard      *semaphore.Weighted
	inProgress atomic.Bool

	mu    sync.Mutex
	state State
}

type AssemblerOption func(*Assembler)

func WithAssemblerLogger(l *log.Logger) AssemblerOption {
	return func(a *Assembler) { a.logger = l }
}

// WithTimeout bounds a whole run. Zero means no bound.
func WithTimeout(d time.Duration) AssemblerOption {
	return func(a *Assembler) { a.timeout = d }
}

func WithJPEGQuality(q int) AssemblerOption {
	return func(a *Assembler) { a.jpegQuality = q }
}

// WithStateObserver is called on every state transition.
func WithStateObserver(fn func(State)) AssemblerOption {
	return func(a *Assembler) { a.observer = fn }
}

func NewAssembler(renderer SummaryRenderer, normalizer ImageNormalizer, sink Sink, opts ...AssemblerOption) *Assembler {
	a := &Assembler{
		renderer:    renderer,
		normalizer:  normalizer,
		sink:        sink,
		jpegQuality: photo.DefaultJPEGQuality,
		guard:       semaphore.NewWeighted(1),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = log.Discard()
	}
	a.logger = a.logger.WithComponent(log.ComponentAssembler)
	return a
}

// InProgress reports whether a run is active.
func (a *Assembler) InProgress() bool {
	return a.inProgress.Load()
}

// State returns the state of the current or most recent run.
func (a *Assembler) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *Assembler) setState(s State) {
	a.mu.Lock()
	a.state = s
	a.mu.Unlock()
	if a.observer != nil {
		a.observer(s)
	}
}

// Run validates the claim, renders the summary, appends the attachments and
// hands the merged document to the sink. A failure at any step aborts the
// run and nothing is written.
func (a *Assembler) Run(ctx context.Context, claim core.Claim, attachments []Attachment) (*Document, error) {
	if !a.guard.TryAcquire(1) {
		return nil, ErrAssemblyInProgress
	}
	defer a.guard.Release(1)

	a.inProgress.Store(true)
	defer a.inProgress.Store(false)

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	runID := uuid.NewString()
	logger := a.logger.With(log.FieldRunID, runID, log.FieldCourseID, claim.Course.ID)
	ctx = log.WithContext(ctx, logger)
	start := time.Now()

	a.setState(StateIdle)
	doc, err := a.run(ctx, logger, claim, attachments)
	if err != nil {
		a.setState(StateAborted)
		logger.ErrorContext(ctx, "Document assembly aborted",
			log.FieldError, err,
			log.FieldDuration, time.Since(start).Milliseconds())
		return nil, err
	}
	doc.RunID = runID

	a.setState(StateFinalized)
	logger.InfoContext(ctx, "Document assembled",
		log.FieldFilename, doc.Name,
		log.FieldPages, doc.Pages,
		log.FieldBytes, len(doc.Data),
		log.FieldDuration, time.Since(start).Milliseconds())
	return doc, nil
}

func (a *Assembler) run(ctx context.Context, logger *log.Logger, claim core.Claim, attachments []Attachment) (*Document, error) {
	if err := claim.Validate(); err != nil {
		return nil, err
	}

	a.setState(StateRendering)
	summary, err := a.renderSummary(ctx, claim)
	if err != nil {
		return nil, err
	}
	logger.DebugContext(ctx, "Summary rendered", log.FieldPages, summary.Pages)

	a.setState(StateMergingAttachments)
	segments := [][]byte{summary.PDF}
	parts := []Part{{Name: "summary", Pages: summary.Pages}}
	pages := summary.Pages
	var skipped []string
	for _, att := range attachments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		seg, n, err := a.segment(ctx, att)
		if err != nil {
			return nil, fmt.Errorf("attachment %q: %w", att.Name(), err)
		}
		if seg == nil {
			skipped = append(skipped, att.Name())
			logger.WarnContext(ctx, "Skipping unrecognized attachment",
				log.NewFields().WithAttachment(att.Name(), string(att.Kind()), att.Size()).ToSlice()...)
			continue
		}
		segments = append(segments, seg)
		parts = append(parts, Part{Name: att.Name(), Kind: att.Kind(), Pages: n})
		pages += n
		logger.DebugContext(ctx, "Attachment appended",
			log.FieldAttachment, att.Name(),
			log.FieldKind, string(att.Kind()),
			log.FieldPages, n)
	}

	merged, err := Merge(segments)
	if err != nil {
		return nil, err
	}

	name := Filename(claim)
	location, err := a.sink.Save(ctx, name, merged)
	if err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}

	return &Document{
		Name:     name,
		Location: location,
		Data:     merged,
		Pages:    pages,
		Parts:    parts,
		Skipped:  skipped,
	}, nil
}

func (a *Assembler) renderSummary(ctx context.Context, claim core.Claim) (RenderResult, error) {
	select {
	case res, ok := <-a.renderer.Render(ctx, claim):
		if !ok {
			return RenderResult{}, errors.New("summary renderer closed without a result")
		}
		if res.Err != nil {
			return RenderResult{}, res.Err
		}
		return res, nil
	case <-ctx.Done():
		return RenderResult{}, ctx.Err()
	}
}

// segment turns one attachment into PDF bytes and its page count. A nil
// segment means the attachment is skipped.
func (a *Assembler) segment(ctx context.Context, att Attachment) ([]byte, int, error) {
	switch att := att.(type) {
	case Image:
		norm, err := a.normalizer.Normalize(ctx, att.Content)
		if err != nil {
			return nil, 0, err
		}
		jpg, err := photo.EncodeJPEG(norm.Image, a.jpegQuality)
		if err != nil {
			return nil, 0, err
		}
		w, h := norm.PageSize()
		page, err := ImagePage(jpg, w, h)
		if err != nil {
			return nil, 0, err
		}
		return page, 1, nil
	case PDF:
		n, err := PageCount(att.Content)
		if err != nil {
			return nil, 0, err
		}
		return att.Content, n, nil
	case Unrecognized:
		return nil, 0, nil
	default:
		return nil, 0, fmt.Errorf("%w: %T", ErrUnsupportedAttachment, att)
	}
}
