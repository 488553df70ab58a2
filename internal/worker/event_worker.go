// Package worker handles messages consumed from the document queue.
package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"fka/internal/amqp"
	"fka/internal/core"
	"fka/internal/log"
)

// EventWorker reports assembled documents and checks that each one is
// still present where it was written.
type EventWorker struct {
	mu      sync.Mutex
	out     io.Writer
	seen    map[string]struct{}
	missing int
}

func NewEventWorker(out io.Writer) *EventWorker {
	return &EventWorker{
		out:  out,
		seen: make(map[string]struct{}),
	}
}

// HandleDocumentAssembled processes a single document.assembled message.
// Redelivered messages with a run id that was already handled are dropped.
func (w *EventWorker) HandleDocumentAssembled(ctx context.Context, msg *amqp.DocumentAssembledMessage) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.seen[msg.RunID]; ok {
		slog.DebugContext(ctx, "Skipping duplicate document event", log.FieldRunID, msg.RunID)
		return nil
	}

	slog.InfoContext(ctx, "Processing document event",
		log.FieldRunID, msg.RunID,
		log.FieldCourseID, msg.CourseID,
		log.FieldPages, msg.Pages)

	status := "ok"
	if msg.Location != "" {
		if _, err := os.Stat(msg.Location); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("stat document: %w", err)
			}
			status = "missing"
			w.missing++
			slog.WarnContext(ctx, "Assembled document no longer exists",
				log.FieldRunID, msg.RunID,
				"location", msg.Location)
		}
	}
	if msg.Forced {
		status += ", forced"
	}

	if _, err := fmt.Fprintf(w.out, "%s  %s  %s  %d pages  %s  [%s]\n",
		msg.Timestamp.Format("2006-01-02 15:04:05"),
		msg.CourseID,
		msg.Filename,
		msg.Pages,
		core.Money{Cents: msg.TotalCents},
		status); err != nil {
		return fmt.Errorf("write event: %w", err)
	}

	w.seen[msg.RunID] = struct{}{}
	return nil
}

// Stats returns how many distinct documents were reported and how many of
// them were missing on disk.
func (w *EventWorker) Stats() (handled, missing int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.seen), w.missing
}
