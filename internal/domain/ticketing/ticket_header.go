package ticketing

import (
	"strings"
	"time"

	"github.com/agence/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TicketHeader is the billet aggregate root: the header and all its lines.
// Header gates are evaluated over the lines held by the aggregate, which the
// repository loads and saves as one versioned unit.
type TicketHeader struct {
	shared.BaseAggregateRoot
	QuoteID             uuid.UUID
	QuoteReference      string
	ProspectionHeaderID uuid.UUID
	TicketNumber        string // assigned at emission
	Status              HeaderStatus
	TotalCompagnie      decimal.Decimal
	CommissionPropose   decimal.Decimal
	CommissionAppliquer decimal.Decimal
	TotalCommission     decimal.Decimal
	InvoiceReference    string
	RaisonAnnul         string
	ApprovedAt          *time.Time
	EmittedAt           *time.Time
	InvoicedAt          *time.Time
	SettledAt           *time.Time
	CancelledAt         *time.Time
	Lines               []*TicketLine
}

func newTicketHeaderFromQuote(q *Quote) *TicketHeader {
	h := &TicketHeader{
		BaseAggregateRoot:   shared.NewBaseAggregateRoot(),
		QuoteID:             q.ID,
		QuoteReference:      q.Reference,
		ProspectionHeaderID: q.ProspectionHeaderID,
		Status:              HeaderStatusCreated,
		TotalCompagnie:      decimal.Zero,
		CommissionPropose:   decimal.Zero,
		CommissionAppliquer: decimal.Zero,
		TotalCommission:     decimal.Zero,
		Lines:               make([]*TicketLine, 0, len(q.Lines)),
	}
	for _, ql := range q.Lines {
		h.Lines = append(h.Lines, NewTicketLine(h.ID, ql.Position, ql))
	}
	return h
}

// GetLine returns the line with the given id
func (h *TicketHeader) GetLine(lineID uuid.UUID) (*TicketLine, error) {
	for _, l := range h.Lines {
		if l.ID == lineID {
			return l, nil
		}
	}
	return nil, ErrLineNotFound.WithMessage("Line %s does not belong to ticket %s", lineID, h.ID)
}

// Progress derives the aggregate predicates from the current lines
func (h *TicketHeader) Progress() Progress {
	return ComputeProgress(h.Lines)
}

// ReserveLine reserves one line of the ticket
func (h *TicketHeader) ReserveLine(lineID uuid.UUID, in ReserveInput) error {
	line, err := h.openLine(lineID)
	if err != nil {
		return err
	}
	from := line.Status
	if err := line.Reserve(in); err != nil {
		return err
	}
	h.lineChanged(EventTypeTicketLineReserved, line, from)
	return nil
}

// EmitLine emits one line of the ticket against the header's current status
func (h *TicketHeader) EmitLine(lineID uuid.UUID, in EmitInput) error {
	line, err := h.openLine(lineID)
	if err != nil {
		return err
	}
	from := line.Status
	if err := line.Emit(h.Status, in); err != nil {
		return err
	}
	h.lineChanged(EventTypeTicketLineEmitted, line, from)
	return nil
}

// RescheduleLine rebooks one line. Rejected once the ticket is closed.
func (h *TicketHeader) RescheduleLine(lineID uuid.UUID, in RescheduleInput) error {
	line, err := h.openLine(lineID)
	if err != nil {
		return err
	}
	from := line.Status
	if err := line.Reschedule(in); err != nil {
		return err
	}
	h.lineChanged(EventTypeTicketLineRescheduled, line, from)
	return nil
}

// ApproveReservation moves CREER to BC_CLIENT_A_APPROUVER once every line is reserved
func (h *TicketHeader) ApproveReservation() error {
	if err := h.allow(HeaderStatusReservationApproved, ErrInvalidHeaderStatus); err != nil {
		return err
	}
	if !AllLinesReserved(h.Lines) {
		return ErrNotAllLinesReserved.WithMessage("%d of %d lines are not reserved yet",
			RemainingToReserve(h.Lines), len(h.Lines))
	}
	now := time.Now()
	h.ApprovedAt = &now
	h.transition(EventTypeTicketReservationApproved, HeaderStatusReservationApproved, now)
	return nil
}

// EmitHeader moves the approved ticket to BILLET_EMIS once every line is
// emitted, and recomputes the header totals from the lines.
func (h *TicketHeader) EmitHeader(ticketNumber string) error {
	if h.Status == HeaderStatusCreated {
		return ErrHeaderNotApproved
	}
	if err := h.allow(HeaderStatusEmitted, ErrInvalidHeaderStatus); err != nil {
		return err
	}
	if !AllLinesEmitted(h.Lines) {
		return ErrNotAllLinesEmitted.WithMessage("%d of %d lines are not emitted yet",
			RemainingToEmit(h.Lines), len(h.Lines))
	}
	ticketNumber = strings.TrimSpace(ticketNumber)
	if ticketNumber == "" {
		return ErrTicketNumberRequired
	}
	now := time.Now()
	h.TicketNumber = ticketNumber
	h.EmittedAt = &now
	h.recalculateTotals()
	h.transition(EventTypeTicketEmitted, HeaderStatusEmitted, now)
	return nil
}

// IssueClientInvoice moves BILLET_EMIS to FACTURE_EMISE and stores the invoice reference
func (h *TicketHeader) IssueClientInvoice(reference string) error {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return ErrInvoiceRefRequired
	}
	if err := h.allow(HeaderStatusInvoiced, ErrHeaderNotEmitted); err != nil {
		return err
	}
	if !AllLinesEmitted(h.Lines) {
		return ErrNotAllLinesEmitted.WithMessage("%d of %d lines are not emitted",
			RemainingToEmit(h.Lines), len(h.Lines))
	}
	now := time.Now()
	h.InvoiceReference = reference
	h.InvoicedAt = &now
	h.transition(EventTypeTicketInvoiced, HeaderStatusInvoiced, now)
	return nil
}

// SettleInvoice moves FACTURE_EMISE to FACTURE_REGLEE
func (h *TicketHeader) SettleInvoice() error {
	if err := h.allow(HeaderStatusSettled, ErrInvoiceNotIssued); err != nil {
		return err
	}
	now := time.Now()
	h.SettledAt = &now
	h.transition(EventTypeTicketSettled, HeaderStatusSettled, now)
	return nil
}

// CancelReservation cancels the selected lines. Either every selected line
// is cancelled or none is. When no active line remains the header itself
// moves to ANNULER with the same reason.
func (h *TicketHeader) CancelReservation(lineIDs []uuid.UUID, in CancelReservationInput) error {
	if err := h.allow(HeaderStatusCancelled, ErrHeaderNotCancellable); err != nil {
		return err
	}
	if !AllLinesReserved(h.Lines) {
		return ErrHeaderNotCancellable.WithMessage("%d of %d lines are not reserved yet",
			RemainingToReserve(h.Lines), len(h.Lines))
	}

	staged, err := h.stage(lineIDs, func(l *TicketLine) error {
		return l.CancelReservation(in)
	})
	if err != nil {
		return err
	}
	h.commit(staged, EventTypeTicketLineReservationCancelled)

	if h.allLinesCancelled() {
		now := time.Now()
		h.RaisonAnnul = reasonText(in.Reason)
		h.CancelledAt = &now
		h.transition(EventTypeTicketCancelled, HeaderStatusCancelled, now)
	}
	return nil
}

// CancelEmission voids the selected emitted lines, all or nothing
func (h *TicketHeader) CancelEmission(lineIDs []uuid.UUID, reason string) error {
	if h.Status != HeaderStatusEmitted {
		return ErrHeaderNotEmittedYet.WithMessage("Cannot cancel emission of ticket in %s status", h.Status)
	}
	staged, err := h.stage(lineIDs, func(l *TicketLine) error {
		return l.CancelEmission(reason)
	})
	if err != nil {
		return err
	}
	h.commit(staged, EventTypeTicketLineEmissionCancelled)
	return nil
}

// IsTerminal returns true if the ticket accepts no further change
func (h *TicketHeader) IsTerminal() bool {
	return h.Status.IsTerminal()
}

func (h *TicketHeader) openLine(lineID uuid.UUID) (*TicketLine, error) {
	if h.Status.IsTerminal() {
		return nil, ErrHeaderTerminal.WithMessage("Ticket %s is %s", h.ID, h.Status)
	}
	return h.GetLine(lineID)
}

type stagedLine struct {
	index int
	from  LineStatus
	line  *TicketLine
}

// stage applies op to clones of the selected lines and returns them without
// touching the aggregate.
func (h *TicketHeader) stage(lineIDs []uuid.UUID, op func(*TicketLine) error) ([]stagedLine, error) {
	if len(lineIDs) == 0 {
		return nil, ErrNoLinesSelected
	}
	seen := make(map[uuid.UUID]struct{}, len(lineIDs))
	staged := make([]stagedLine, 0, len(lineIDs))
	for _, id := range lineIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		idx := h.lineIndex(id)
		if idx < 0 {
			return nil, ErrLineNotFound.WithMessage("Line %s does not belong to ticket %s", id, h.ID)
		}
		clone := h.Lines[idx].Clone()
		if err := op(clone); err != nil {
			return nil, err
		}
		staged = append(staged, stagedLine{index: idx, from: h.Lines[idx].Status, line: clone})
	}
	return staged, nil
}

func (h *TicketHeader) commit(staged []stagedLine, eventType string) {
	for _, s := range staged {
		h.Lines[s.index] = s.line
		h.lineChanged(eventType, s.line, s.from)
	}
}

func (h *TicketHeader) lineIndex(id uuid.UUID) int {
	for i, l := range h.Lines {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func (h *TicketHeader) allLinesCancelled() bool {
	if len(h.Lines) == 0 {
		return false
	}
	for _, l := range h.Lines {
		if l.Status != LineStatusCancelled {
			return false
		}
	}
	return true
}

func (h *TicketHeader) lineChanged(eventType string, line *TicketLine, from LineStatus) {
	h.recalculateTotals()
	h.UpdatedAt = time.Now()
	h.AddDomainEvent(NewTicketLineChangedEvent(eventType, h, line, from))
}

// allow returns rejection unless the header status table permits moving to target
func (h *TicketHeader) allow(target HeaderStatus, rejection *shared.DomainError) error {
	if h.Status.CanTransitionTo(target) {
		return nil
	}
	return rejection.WithMessage("Ticket %s cannot move from %s to %s", h.ID, h.Status, target)
}

func (h *TicketHeader) transition(eventType string, to HeaderStatus, at time.Time) {
	from := h.Status
	h.Status = to
	h.UpdatedAt = at
	h.AddDomainEvent(NewTicketStatusChangedEvent(eventType, h, from))
}

// recalculateTotals derives the header financials from the lines:
// proposed commission from live reservations, applied commission and
// company total from emissions (reservation pricing until emitted), and the
// total commission adds the commission fees charged on changes and cancellations.
func (h *TicketHeader) recalculateTotals() {
	totalCompagnie := decimal.Zero
	propose := decimal.Zero
	appliquer := decimal.Zero
	fees := decimal.Zero

	for _, l := range h.Lines {
		switch l.Status {
		case LineStatusReserved, LineStatusRescheduled:
			if l.Reservation != nil {
				propose = propose.Add(l.Reservation.Commission)
				totalCompagnie = totalCompagnie.Add(l.Reservation.CompagnieTotalAriary())
			}
		case LineStatusEmitted:
			if l.Reservation != nil {
				propose = propose.Add(l.Reservation.Commission)
			}
			if l.Emission != nil {
				appliquer = appliquer.Add(l.Emission.Commission)
				totalCompagnie = totalCompagnie.Add(l.Emission.CompagnieTotalAriary())
			}
		}
		fees = fees.Add(feeCommission(l.CancellationFees)).Add(feeCommission(l.ModificationFees))
	}

	h.TotalCompagnie = totalCompagnie
	h.CommissionPropose = propose
	h.CommissionAppliquer = appliquer
	h.TotalCommission = appliquer.Add(fees)
}

func feeCommission(f *Fees) decimal.Decimal {
	if f == nil || f.Commission == nil {
		return decimal.Zero
	}
	return f.Commission.Client.TotalAriary
}

func reasonText(r CancellationReason) string {
	if text := strings.TrimSpace(r.Text); text != "" {
		return text
	}
	if r.ID != nil {
		return r.ID.String()
	}
	return ""
}
