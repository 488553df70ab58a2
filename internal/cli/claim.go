package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fka/internal/claims"
	"fka/internal/core"
)

func newClaimCommand(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claim",
		Short: "Import, export and show the whole claim",
	}

	importCmd := &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Replace the stored claim with a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := claims.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			if err := s.app.Backend.Store.SetReimbursement(cmd.Context(), c); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported claim %s with %d legs\n", c.Course.ID, len(c.Expenses))
			return nil
		},
	}

	var output string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write the stored claim as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.app.Backend.Store.GetReimbursement(cmd.Context())
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				return claims.Encode(cmd.OutOrStdout(), c)
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := claims.Encode(f, c); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
	exportCmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print participant, course and all legs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.app.Backend.Store.GetReimbursement(cmd.Context())
			if err != nil {
				return err
			}
			printClaim(cmd.OutOrStdout(), c)
			return nil
		},
	}

	cmd.AddCommand(importCmd, exportCmd, showCmd)
	return cmd
}

func printClaim(w io.Writer, c core.Claim) {
	fmt.Fprintf(w, "Participant: %s\n", c.Participant.Name)
	if c.Participant.Email != "" {
		fmt.Fprintf(w, "Email:       %s\n", c.Participant.Email)
	}
	fmt.Fprintf(w, "Course:      %s %s\n", c.Course.ID, c.Course.Title)
	fmt.Fprintf(w, "IBAN:        %s\n\n", core.NormalizeIBAN(c.IBAN))

	ledger := c.Ledger()
	for _, d := range core.Directions() {
		legs := ledger.Partition(d)
		if len(legs) == 0 {
			continue
		}
		fmt.Fprintf(w, "[%s]\n", d)
		printLegs(w, legs)
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Total: %s\n", ledger.Sum())
}

func printLegs(w io.Writer, legs []core.ExpenseRecord) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tFROM\tTO\tTRANSPORT\tKM\tAMOUNT")
	for _, r := range legs {
		date := ""
		if !r.Date.IsEmpty() {
			date = r.Date.Format("2006-01-02")
		}
		transport := string(r.Transport)
		if r.HasCarType() {
			transport += "/" + string(r.CarType)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%g\t%s\n",
			r.ID, date, r.StartLocation, r.EndLocation, transport, r.DistanceKm, r.TotalReimbursement())
	}
	tw.Flush()
}
