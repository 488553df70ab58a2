package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"fka/internal/core"
)

type expenseFlags struct {
	direction   string
	date        string
	from        string
	to          string
	transport   string
	carType     string
	km          float64
	rate        string
	cost        string
	passengers  []string
	description string
}

func (f *expenseFlags) register(cmd *cobra.Command, withDirection bool) {
	fs := cmd.Flags()
	if withDirection {
		fs.StringVarP(&f.direction, "direction", "d", "to", "leg direction: to, at or from")
	}
	fs.StringVar(&f.date, "date", "", "travel date (YYYY-MM-DD)")
	fs.StringVar(&f.from, "from", "", "start location")
	fs.StringVar(&f.to, "to", "", "end location")
	fs.StringVar(&f.transport, "transport", "", "car, train, bus, bike, plane or other")
	fs.StringVar(&f.carType, "car-type", "", "vehicle type for car legs")
	fs.Float64Var(&f.km, "km", 0, "distance in kilometres")
	fs.StringVar(&f.rate, "rate", "", "reimbursement per kilometre, e.g. 0,30")
	fs.StringVar(&f.cost, "cost", "", "flat cost such as a ticket price")
	fs.StringSliceVar(&f.passengers, "passenger", nil, "passenger name, repeatable")
	fs.StringVar(&f.description, "description", "", "free text")
}

// apply copies every flag the user set onto r.
func (f *expenseFlags) apply(cmd *cobra.Command, r *core.ExpenseRecord) error {
	changed := cmd.Flags().Changed
	if changed("date") {
		t, err := time.Parse("2006-01-02", f.date)
		if err != nil {
			return fmt.Errorf("invalid --date %q: %w", f.date, err)
		}
		r.Date = core.Date{Time: t}
	}
	if changed("from") {
		r.StartLocation = f.from
	}
	if changed("to") {
		r.EndLocation = f.to
	}
	if changed("transport") {
		r.Transport = core.Transport(strings.ToLower(f.transport))
	}
	if changed("car-type") {
		r.CarType = core.CarType(f.carType)
	}
	if changed("km") {
		r.DistanceKm = f.km
	}
	if changed("rate") {
		cents, err := core.ParseDecimalToCents(f.rate)
		if err != nil {
			return fmt.Errorf("invalid --rate %q: %w", f.rate, err)
		}
		r.RatePerKm = core.Money{Cents: cents}
	}
	if changed("cost") {
		cents, err := core.ParseDecimalToCents(f.cost)
		if err != nil {
			return fmt.Errorf("invalid --cost %q: %w", f.cost, err)
		}
		r.Cost = core.Money{Cents: cents}
	}
	if changed("passenger") {
		r.Passengers = append([]string(nil), f.passengers...)
	}
	if changed("description") {
		r.Description = f.description
	}
	if r.Transport != core.TransportCar && !changed("car-type") {
		r.CarType = ""
	}
	return nil
}

func newExpenseCommand(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "expense",
		Aliases: []string{"leg"},
		Short:   "Add, edit, delete and list travel legs",
	}

	var addFlags expenseFlags
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a leg; start location and car type default from earlier legs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d := core.Direction(addFlags.direction)
			if !d.Valid() {
				return fmt.Errorf("%w: %q", core.ErrInvalidDirection, addFlags.direction)
			}
			r := s.app.Ledger.Draft(d)
			if err := addFlags.apply(cmd, &r); err != nil {
				return err
			}
			added, err := s.app.Ledger.Add(cmd.Context(), r)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s leg %s: %s → %s (%s)\n",
				added.Direction, added.ID, added.StartLocation, added.EndLocation, added.TotalReimbursement())
			return nil
		},
	}
	addFlags.register(addCmd, true)

	var editFlags expenseFlags
	editCmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of an existing leg",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			var current core.ExpenseRecord
			for _, r := range s.app.Ledger.All() {
				if r.ID == id {
					current = r
					break
				}
			}
			if err := editFlags.apply(cmd, &current); err != nil {
				return err
			}
			ok, err := s.app.Ledger.Edit(cmd.Context(), id, current)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintf(cmd.OutOrStdout(), "No leg with id %s\n", id)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated leg %s\n", id)
			return nil
		},
	}
	editFlags.register(editCmd, false)

	deleteCmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Remove a leg",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := s.app.Ledger.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if ok {
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted leg %s\n", args[0])
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "No leg with id %s\n", args[0])
			}
			return nil
		},
	}

	var listDirection string
	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List legs in ledger order",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if listDirection != "" {
				d := core.Direction(listDirection)
				if !d.Valid() {
					return fmt.Errorf("%w: %q", core.ErrInvalidDirection, listDirection)
				}
				legs := s.app.Ledger.Partition(d)
				printLegs(out, legs)
				fmt.Fprintf(out, "\nTotal: %s\n", core.SumOf(legs))
				return nil
			}
			printLegs(out, s.app.Ledger.All())
			fmt.Fprintf(out, "\nTotal: %s\n", s.app.Ledger.Sum())
			return nil
		},
	}
	listCmd.Flags().StringVarP(&listDirection, "direction", "d", "", "only this direction")

	cmd.AddCommand(addCmd, editCmd, deleteCmd, listCmd)
	return cmd
}

func newReturnTripCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "return-trip",
		Short: "Replace the return legs with the outbound legs mirrored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := s.app.Ledger.GenerateReturnTrip(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated %d return legs\n", len(from))
			printLegs(cmd.OutOrStdout(), from)
			return nil
		},
	}
}
