package ticketing

import (
	"strings"
	"time"

	"github.com/agence/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TicketLine is one flight segment booked for a group of passengers.
// Every mutating method validates first and writes last, so a failed call
// leaves the line untouched.
type TicketLine struct {
	ID                uuid.UUID
	HeaderID          uuid.UUID
	ProspectionLineID uuid.UUID
	Position          int
	Flight            FlightSegment
	PassengerCount    int // seats quoted; the linked passengers decide the priced count
	Status            LineStatus

	// Reservation; ReservationNumber != "" marks the line as reserved
	ReservationNumber string
	PassengerIDs      []uuid.UUID
	Reservation       *Pricing
	ReservedAt        *time.Time

	// Emission
	TicketNumber  string
	AttachmentRef string
	Emission      *Pricing
	EmittedAt     *time.Time

	// Modification / cancellation
	ConditionModif      string
	ConditionAnnul      string
	RaisonAnnul         string
	RaisonAnnulID       *uuid.UUID
	CancellationFees    *Fees
	ModificationFees    *Fees
	CancelledAt         *time.Time
	EmissionCancelledAt *time.Time

	// Revisions holds the values a reschedule replaced, oldest first
	Revisions []LineRevision

	CreatedAt time.Time
	UpdatedAt time.Time
}

// LineRevision is the state of a line right before it was rescheduled
type LineRevision struct {
	Sequence          int           `json:"sequence"`
	Status            LineStatus    `json:"status"`
	Flight            FlightSegment `json:"flight"`
	PassengerIDs      []uuid.UUID   `json:"passenger_ids"`
	ReservationNumber string        `json:"reservation_number"`
	Pricing           *Pricing      `json:"pricing,omitempty"`
	ConditionModif    string        `json:"condition_modif"`
	RecordedAt        time.Time     `json:"recorded_at"`
}

// ReserveInput is the payload of a line reservation
type ReserveInput struct {
	ReservationNumber string
	PassengerIDs      []uuid.UUID
	Prices            PriceInputs
}

// EmitInput is the payload of a line emission. The currency is the one
// captured at reservation; only the rate is taken fresh.
type EmitInput struct {
	TicketNumber  string
	ExchangeRate  decimal.Decimal
	AttachmentRef string
	Billet        CategoryPrice
	Service       CategoryPrice
	Penalite      CategoryPrice
}

// CancelReservationInput is the payload of a reservation cancellation
type CancelReservationInput struct {
	Reason         CancellationReason
	Terms          CancellationTerms
	ExchangeRate   decimal.Decimal
	ConditionAnnul string
}

// RescheduleInput is the payload of a rebooking
type RescheduleInput struct {
	Flight         FlightSegment
	PassengerIDs   []uuid.UUID
	Terms          CancellationTerms
	ConditionModif string
	ConditionAnnul string
	Prices         PriceInputs
}

// NewTicketLine creates a line in CREER from a quoted flight line
func NewTicketLine(headerID uuid.UUID, position int, q QuoteLine) *TicketLine {
	now := time.Now()
	return &TicketLine{
		ID:                uuid.New(),
		HeaderID:          headerID,
		ProspectionLineID: q.ProspectionLineID,
		Position:          position,
		Flight:            q.Flight,
		PassengerCount:    q.PassengerCount,
		Status:            LineStatusCreated,
		PassengerIDs:      make([]uuid.UUID, 0),
		Revisions:         make([]LineRevision, 0),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// IsReserved reports whether the reservation marker is set
func (l *TicketLine) IsReserved() bool {
	return l.ReservationNumber != ""
}

// Reserve books the line: status CREER or MODIFIER with no reservation -> FAIT.
// Every pricing field is replaced, nothing from an earlier reservation survives.
func (l *TicketLine) Reserve(in ReserveInput) error {
	if l.IsReserved() {
		return ErrAlreadyReserved.WithMessage("Line %s already holds reservation %s", l.ID, l.ReservationNumber)
	}
	if err := l.allow(LineStatusReserved, ErrAlreadyReserved); err != nil {
		return err
	}
	number := strings.TrimSpace(in.ReservationNumber)
	if number == "" {
		return ErrReservationRequired
	}
	passengers, err := distinctPassengers(in.PassengerIDs)
	if err != nil {
		return err
	}
	pricing, err := ComputePricing(in.Prices, len(passengers))
	if err != nil {
		return err
	}

	now := time.Now()
	l.ReservationNumber = number
	l.PassengerIDs = passengers
	l.Reservation = &pricing
	l.ReservedAt = &now
	l.setStatus(LineStatusReserved, now)
	return nil
}

// Emit issues the ticket: FAIT -> CLOTURER, only once the header left CREER
func (l *TicketLine) Emit(headerStatus HeaderStatus, in EmitInput) error {
	if err := l.allow(LineStatusEmitted, ErrNotReservedYet); err != nil {
		return err
	}
	if l.Reservation == nil {
		return ErrNotReservedYet.WithMessage("Line %s has no reservation pricing", l.ID)
	}
	if headerStatus == HeaderStatusCreated {
		return ErrHeaderNotApproved
	}
	number := strings.TrimSpace(in.TicketNumber)
	if number == "" {
		return ErrTicketNumberRequired
	}
	pricing, err := ComputePricing(PriceInputs{
		Currency:     l.Reservation.Currency,
		ExchangeRate: in.ExchangeRate,
		Billet:       in.Billet,
		Service:      in.Service,
		Penalite:     in.Penalite,
	}, len(l.PassengerIDs))
	if err != nil {
		return err
	}

	now := time.Now()
	l.TicketNumber = number
	l.AttachmentRef = strings.TrimSpace(in.AttachmentRef)
	l.Emission = &pricing
	l.EmittedAt = &now
	l.setStatus(LineStatusEmitted, now)
	return nil
}

// CancelReservation cancels a reserved, not yet emitted line: FAIT -> ANNULER.
// Fees are written only when the terms carry them.
func (l *TicketLine) CancelReservation(in CancelReservationInput) error {
	if err := l.allow(LineStatusCancelled, ErrLineNotCancellable); err != nil {
		return err
	}
	if in.Reason.IsEmpty() {
		return ErrReasonRequired
	}
	fees, err := computeFees(in.Terms, in.ExchangeRate, len(l.PassengerIDs))
	if err != nil {
		return err
	}

	now := time.Now()
	l.RaisonAnnul = strings.TrimSpace(in.Reason.Text)
	l.RaisonAnnulID = in.Reason.ID
	l.ConditionAnnul = in.ConditionAnnul
	l.CancellationFees = fees
	l.CancelledAt = &now
	l.setStatus(LineStatusCancelled, now)
	return nil
}

// CancelEmission voids an issued ticket: CLOTURER -> ANNULE_EMISSION.
// Emission amounts are kept as they were.
func (l *TicketLine) CancelEmission(reason string) error {
	if err := l.allow(LineStatusEmissionCancelled, ErrLineNotEmittedYet); err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrReasonRequired
	}

	now := time.Now()
	l.RaisonAnnul = reason
	l.EmissionCancelledAt = &now
	l.setStatus(LineStatusEmissionCancelled, now)
	return nil
}

// Reschedule rebooks the line on new flight, passenger and price data:
// FAIT or MODIFIER -> MODIFIER. The replaced values are appended to
// Revisions and the reservation marker is cleared, so the line has to be
// reserved again before it can be emitted.
func (l *TicketLine) Reschedule(in RescheduleInput) error {
	if err := l.allow(LineStatusRescheduled, ErrLineNotReschedulable); err != nil {
		return err
	}
	if err := in.Flight.Validate(); err != nil {
		return err
	}
	passengers, err := distinctPassengers(in.PassengerIDs)
	if err != nil {
		return err
	}
	pricing, err := ComputePricing(in.Prices, len(passengers))
	if err != nil {
		return err
	}
	terms := in.Terms
	if terms == nil {
		terms = SimpleCancellation{}
	}
	fees, err := computeFees(terms, in.Prices.ExchangeRate, len(passengers))
	if err != nil {
		return err
	}

	now := time.Now()
	l.Revisions = append(l.Revisions, l.revision(now))
	l.Flight = in.Flight
	l.PassengerIDs = passengers
	l.ReservationNumber = ""
	l.ReservedAt = nil
	l.Reservation = &pricing
	l.ModificationFees = fees
	l.ConditionModif = in.ConditionModif
	l.ConditionAnnul = in.ConditionAnnul
	l.setStatus(LineStatusRescheduled, now)
	return nil
}

// allow returns rejection unless the line status table permits moving to target
func (l *TicketLine) allow(target LineStatus, rejection *shared.DomainError) error {
	if l.Status.CanTransitionTo(target) {
		return nil
	}
	return rejection.WithMessage("Line %s cannot move from %s to %s", l.ID, l.Status, target)
}

func (l *TicketLine) setStatus(to LineStatus, at time.Time) {
	l.Status = to
	l.UpdatedAt = at
}

func (l *TicketLine) revision(at time.Time) LineRevision {
	rev := LineRevision{
		Sequence:          len(l.Revisions) + 1,
		Status:            l.Status,
		Flight:            l.Flight,
		PassengerIDs:      append([]uuid.UUID(nil), l.PassengerIDs...),
		ReservationNumber: l.ReservationNumber,
		ConditionModif:    l.ConditionModif,
		RecordedAt:        at,
	}
	if l.Reservation != nil {
		p := *l.Reservation
		rev.Pricing = &p
	}
	return rev
}

// Clone returns a deep copy, used to apply multi-line operations all or nothing
func (l *TicketLine) Clone() *TicketLine {
	c := *l
	c.PassengerIDs = append([]uuid.UUID(nil), l.PassengerIDs...)
	c.Revisions = append([]LineRevision(nil), l.Revisions...)
	return &c
}

func distinctPassengers(ids []uuid.UUID) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if len(out) == 0 {
		return nil, ErrPassengersRequired
	}
	return out, nil
}
