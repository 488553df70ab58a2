package core

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DirectionTo   Direction = "to"
	DirectionAt   Direction = "at"
	DirectionFrom Direction = "from"
)

const (
	TransportCar   Transport = "car"
	TransportTrain Transport = "train"
	TransportBus   Transport = "bus"
	TransportBike  Transport = "bike"
	TransportPlane Transport = "plane"
	TransportOther Transport = "other"
)

type (
	// Direction says whether a leg leads to, happens at, or returns from the event location.
	Direction string

	Transport string

	CarType string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// ExpenseRecord is one directional leg of travel.
	ExpenseRecord struct {
		ID            string
		Direction     Direction
		Date          Date
		StartLocation string
		EndLocation   string
		Transport     Transport
		CarType       CarType // only set on car legs
		DistanceKm    float64
		RatePerKm     Money
		Cost          Money // ticket price or other flat cost
		Passengers    []string
		Description   string
	}
)

var (
	ErrInvalidDirection = errors.New("invalid direction")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyLocation    = errors.New("empty location")
	ErrDuplicateID      = errors.New("duplicate expense id")
)

// returnTripNamespace seeds the deterministic ids of mirrored return legs.
var returnTripNamespace = uuid.MustParse("5f0c4c8e-3b1e-4d8a-9c55-0d6f3e2a7b10")

// Directions returns the partitions in canonical ledger order.
func Directions() []Direction {
	return []Direction{DirectionTo, DirectionAt, DirectionFrom}
}

func (d Direction) Valid() bool {
	switch d {
	case DirectionTo, DirectionAt, DirectionFrom:
		return true
	default:
		return false
	}
}

func (d Direction) String() string {
	return string(d)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// IsEmpty returns true if the date is zero
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// NewID returns a fresh record id.
func NewID() string {
	return uuid.NewString()
}

// HasCarType reports whether the leg carries a car type.
func (e ExpenseRecord) HasCarType() bool {
	return e.CarType != ""
}

// TotalReimbursement is the amount owed for this leg: the flat cost plus
// distance times rate, rounded half away from zero to whole cents.
func (e ExpenseRecord) TotalReimbursement() Money {
	distance := int64(math.Round(e.DistanceKm * float64(e.RatePerKm.Cents)))
	return Money{Cents: e.Cost.Cents + distance}
}

func (e ExpenseRecord) Validate() error {
	if !e.Direction.Valid() {
		return ErrInvalidDirection
	}
	if strings.TrimSpace(e.StartLocation) == "" || strings.TrimSpace(e.EndLocation) == "" {
		return ErrEmptyLocation
	}
	if e.DistanceKm < 0 || e.RatePerKm.Cents < 0 || e.Cost.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// CheckUniqueIDs reports the first id that occurs more than once across all
// partitions.
func CheckUniqueIDs(records []ExpenseRecord) error {
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if _, ok := seen[r.ID]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateID, r.ID)
		}
		seen[r.ID] = struct{}{}
	}
	return nil
}

// ReturnTrip mirrors an outbound leg into its inbound counterpart. Start and
// end are swapped and every cost-relevant field is preserved. The id is derived
// from the source id, so mirroring the same leg twice yields the same record.
func ReturnTrip(e ExpenseRecord) ExpenseRecord {
	r := e
	r.ID = uuid.NewSHA1(returnTripNamespace, []byte(e.ID)).String()
	r.Direction = DirectionFrom
	r.StartLocation = e.EndLocation
	r.EndLocation = e.StartLocation
	if e.Passengers != nil {
		r.Passengers = append([]string(nil), e.Passengers...)
	}
	return r
}
