package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"fka/internal/core"
	"fka/internal/document"
	"fka/internal/log"
	"fka/internal/services"
	"fka/internal/worker"
)

func newValidateCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the claim against the reimbursement rules",
		Long:  "Prints findings grouped by severity. Exits with status 1 when the claim has errors.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, result, err := s.app.Submission.Check(cmd.Context())
			if err != nil {
				return err
			}
			printFindings(cmd.OutOrStdout(), result)
			if result.Blocking() {
				return services.ErrClaimBlocked
			}
			return nil
		},
	}
}

func newSubmitCommand(s *session) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "submit [attachments...]",
		Short: "Assemble the claim PDF with the given receipts",
		Long: `Renders the claim summary and appends every attachment in the given order.
Images are turned upright and scaled to the page, PDFs are appended as they are,
other files are skipped. The document is written to OUTPUT_DIR.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			attachments, err := readAttachments(args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			sub, err := s.app.Submission.Submit(cmd.Context(), attachments, force)
			if errors.Is(err, services.ErrClaimBlocked) {
				printFindings(out, sub.Result)
				return fmt.Errorf("%w (use --force to submit anyway)", err)
			}
			if err != nil {
				return err
			}

			doc := sub.Document
			for _, name := range doc.Skipped {
				fmt.Fprintf(out, "Skipped %s: not an image or PDF\n", name)
			}
			fmt.Fprintf(out, "Wrote %s (%d pages, %s)\n", doc.Location, doc.Pages, humanize.Bytes(uint64(len(doc.Data))))
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "submit even when the claim has errors")
	return cmd
}

func readAttachments(paths []string) ([]document.Attachment, error) {
	attachments := make([]document.Attachment, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read attachment: %w", err)
		}
		attachments = append(attachments, document.NewAttachment(filepath.Base(p), data))
	}
	return attachments, nil
}

func printFindings(w io.Writer, r core.ValidationResult) {
	groups := []struct {
		title    string
		messages []string
	}{
		{"Errors", r.Errors()},
		{"Warnings", r.Warnings()},
		{"Notes", r.Infos()},
	}
	printed := false
	for _, g := range groups {
		if len(g.messages) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s:\n", g.title)
		for _, m := range g.messages {
			fmt.Fprintf(w, "  - %s\n", m)
		}
		printed = true
	}
	if !printed {
		fmt.Fprintln(w, "No findings.")
	}
}

func newEventsCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "events",
		Short: "Print document events from the AMQP queue until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := s.app.Backend.AMQP
			if client == nil {
				return errors.New("AMQP is not configured or unreachable, set AMQP_URL")
			}
			w := worker.NewEventWorker(cmd.OutOrStdout())
			err := client.ConsumeDocumentAssembled(cmd.Context(), w.HandleDocumentAssembled)
			if handled, missing := w.Stats(); handled > 0 {
				s.app.Logger.Info("Stopped consuming document events", log.FieldCount, handled, "missing", missing)
			}
			if errors.Is(err, cmd.Context().Err()) {
				return nil
			}
			return err
		},
	}
}
