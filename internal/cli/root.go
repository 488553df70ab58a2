package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// session carries the lazily built App from the root hooks to subcommands.
type session struct {
	app *App
}

func NewRootCommand(s *session) *cobra.Command {
	root := &cobra.Command{
		Use:   "fka",
		Short: "Travel expense claims for course participants",
		Long: `fka records the travel legs of a course participant, checks them against
the reimbursement rules and assembles the claim PDF with all receipts.

Configuration is read from the environment and an optional .env file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			LoadEnvFile()
			cfg, err := LoadAndValidateConfig()
			if err != nil {
				return err
			}
			app, err := NewApp(cmd.Context(), cfg, SetupLogger(cfg))
			if err != nil {
				return err
			}
			s.app = app
			return nil
		},
	}

	root.AddCommand(
		newClaimCommand(s),
		newExpenseCommand(s),
		newReturnTripCommand(s),
		newValidateCommand(s),
		newSubmitCommand(s),
		newEventsCommand(s),
	)
	return root
}

// Execute runs the command tree with args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	ctx, stop := SignalContext(ctx)
	defer stop()

	s := &session{}
	root := NewRootCommand(s)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if s.app != nil {
		if cerr := s.app.Close(); cerr != nil {
			s.app.Logger.Warn("Failed to release resources", "error", cerr)
		}
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
