package claims

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"fka/internal/core"
)

const dateLayout = "2006-01-02"

// File is the on-disk layout of a claim for import and export.
type File struct {
	Participant ParticipantFile `yaml:"participant"`
	Course      CourseFile      `yaml:"course"`
	IBAN        string          `yaml:"iban"`
	Expenses    []ExpenseFile   `yaml:"expenses,omitempty"`
}

type ParticipantFile struct {
	Name   string `yaml:"name"`
	Email  string `yaml:"email,omitempty"`
	Street string `yaml:"street,omitempty"`
	City   string `yaml:"city,omitempty"`
}

type CourseFile struct {
	ID       string `yaml:"id"`
	Title    string `yaml:"title,omitempty"`
	Location string `yaml:"location,omitempty"`
	Start    string `yaml:"start,omitempty"`
	End      string `yaml:"end,omitempty"`
}

type ExpenseFile struct {
	ID          string   `yaml:"id,omitempty"`
	Direction   string   `yaml:"direction"`
	Date        string   `yaml:"date,omitempty"`
	From        string   `yaml:"from"`
	To          string   `yaml:"to"`
	Transport   string   `yaml:"transport,omitempty"`
	CarType     string   `yaml:"car_type,omitempty"`
	DistanceKm  float64  `yaml:"distance_km,omitempty"`
	RatePerKm   string   `yaml:"rate_per_km,omitempty"`
	Cost        string   `yaml:"cost,omitempty"`
	Passengers  []string `yaml:"passengers,omitempty"`
	Description string   `yaml:"description,omitempty"`
}

// Decode reads a claim in YAML form. Legs without an id get a fresh one.
func Decode(r io.Reader) (core.Claim, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return core.Claim{}, nil
		}
		return core.Claim{}, fmt.Errorf("decode claim: %w", err)
	}
	return f.toClaim()
}

// Encode writes the claim in YAML form.
func Encode(w io.Writer, claim core.Claim) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(fromClaim(claim)); err != nil {
		return fmt.Errorf("encode claim: %w", err)
	}
	return enc.Close()
}

// ReadFile decodes the claim stored at path.
func ReadFile(path string) (core.Claim, error) {
	f, err := os.Open(path)
	if err != nil {
		return core.Claim{}, err
	}
	defer f.Close()
	return Decode(f)
}

func (f File) toClaim() (core.Claim, error) {
	start, err := parseDate(f.Course.Start)
	if err != nil {
		return core.Claim{}, fmt.Errorf("course start: %w", err)
	}
	end, err := parseDate(f.Course.End)
	if err != nil {
		return core.Claim{}, fmt.Errorf("course end: %w", err)
	}

	c := core.Claim{
		Participant: core.Participant(f.Participant),
		Course: core.Course{
			ID:       f.Course.ID,
			Title:    f.Course.Title,
			Location: f.Course.Location,
			Start:    start,
			End:      end,
		},
		IBAN: f.IBAN,
	}
	for i, e := range f.Expenses {
		r, err := e.toRecord()
		if err != nil {
			return core.Claim{}, fmt.Errorf("expense %d: %w", i+1, err)
		}
		c.Expenses = append(c.Expenses, r)
	}
	if err := core.CheckUniqueIDs(c.Expenses); err != nil {
		return core.Claim{}, err
	}
	return c, nil
}

func (e ExpenseFile) toRecord() (core.ExpenseRecord, error) {
	d := core.Direction(e.Direction)
	if !d.Valid() {
		return core.ExpenseRecord{}, fmt.Errorf("%w: %q", core.ErrInvalidDirection, e.Direction)
	}
	date, err := parseDate(e.Date)
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("date: %w", err)
	}
	rate, err := parseMoney(e.RatePerKm)
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("rate_per_km: %w", err)
	}
	cost, err := parseMoney(e.Cost)
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("cost: %w", err)
	}

	id := e.ID
	if id == "" {
		id = core.NewID()
	}
	return core.ExpenseRecord{
		ID:            id,
		Direction:     d,
		Date:          date,
		StartLocation: e.From,
		EndLocation:   e.To,
		Transport:     core.Transport(e.Transport),
		CarType:       core.CarType(e.CarType),
		DistanceKm:    e.DistanceKm,
		RatePerKm:     rate,
		Cost:          cost,
		Passengers:    append([]string(nil), e.Passengers...),
		Description:   e.Description,
	}, nil
}

func fromClaim(c core.Claim) File {
	f := File{
		Participant: ParticipantFile(c.Participant),
		Course: CourseFile{
			ID:       c.Course.ID,
			Title:    c.Course.Title,
			Location: c.Course.Location,
			Start:    formatDate(c.Course.Start),
			End:      formatDate(c.Course.End),
		},
		IBAN: c.IBAN,
	}
	for _, r := range c.Expenses {
		f.Expenses = append(f.Expenses, ExpenseFile{
			ID:          r.ID,
			Direction:   string(r.Direction),
			Date:        formatDate(r.Date),
			From:        r.StartLocation,
			To:          r.EndLocation,
			Transport:   string(r.Transport),
			CarType:     string(r.CarType),
			DistanceKm:  r.DistanceKm,
			RatePerKm:   formatMoney(r.RatePerKm),
			Cost:        formatMoney(r.Cost),
			Passengers:  r.Passengers,
			Description: r.Description,
		})
	}
	return f
}

func parseDate(s string) (core.Date, error) {
	if s == "" {
		return core.Date{}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return core.Date{}, err
	}
	return core.Date{Time: t}, nil
}

func formatDate(d core.Date) string {
	if d.IsEmpty() {
		return ""
	}
	return d.Format(dateLayout)
}

func parseMoney(s string) (core.Money, error) {
	if s == "" {
		return core.Money{}, nil
	}
	// Negative amounts are kept so the validator can report them.
	neg := strings.HasPrefix(s, "-")
	cents, err := core.ParseDecimalToCents(strings.TrimPrefix(s, "-"))
	if err != nil {
		return core.Money{}, err
	}
	if neg {
		cents = -cents
	}
	return core.Money{Cents: cents}, nil
}

func formatMoney(m core.Money) string {
	if m.Cents == 0 {
		return ""
	}
	sign := ""
	cents := m.Cents
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
