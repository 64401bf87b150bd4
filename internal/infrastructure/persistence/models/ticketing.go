package models

import (
	"sort"
	"time"

	"github.com/agence/backoffice/internal/domain/ticketing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FlightColumns are the flight attributes stored inline on quote and ticket lines
type FlightColumns struct {
	NumeroVol       string    `gorm:"type:varchar(20);not null"`
	Itineraire      string    `gorm:"type:varchar(200)"`
	Classe          string    `gorm:"type:varchar(50);not null"`
	TypePassager    string    `gorm:"type:varchar(50)"`
	DateHeureDepart time.Time `gorm:"not null"`
	DateHeureArrive time.Time `gorm:"not null"`
}

func flightColumns(f ticketing.FlightSegment) FlightColumns {
	return FlightColumns{
		NumeroVol:       f.NumeroVol,
		Itineraire:      f.Itineraire,
		Classe:          f.Classe,
		TypePassager:    f.TypePassager,
		DateHeureDepart: f.DateHeureDepart,
		DateHeureArrive: f.DateHeureArrive,
	}
}

func (c FlightColumns) toDomain() ticketing.FlightSegment {
	return ticketing.FlightSegment{
		NumeroVol:       c.NumeroVol,
		Itineraire:      c.Itineraire,
		Classe:          c.Classe,
		TypePassager:    c.TypePassager,
		DateHeureDepart: c.DateHeureDepart,
		DateHeureArrive: c.DateHeureArrive,
	}
}

// QuoteModel is the persistence model for the Quote aggregate root
type QuoteModel struct {
	AggregateModel
	Reference           string                `gorm:"type:varchar(30);not null;uniqueIndex"`
	ProspectionHeaderID uuid.UUID             `gorm:"type:uuid;not null;index"`
	ClientName          string                `gorm:"type:varchar(200)"`
	Status              ticketing.QuoteStatus `gorm:"type:varchar(30);not null;default:'CREER';index"`
	TotalAmount         decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	TotalCommission     decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	CancelReason        string                `gorm:"type:text"`
	PDFRef              string                `gorm:"column:pdf_ref;type:varchar(500)"`
	CommissionReportRef string                `gorm:"type:varchar(500)"`
	TicketHeaderID      *uuid.UUID            `gorm:"type:uuid;uniqueIndex"`
	SentAt              *time.Time
	ApprovedAt          *time.Time
	DirectionSentAt     *time.Time
	CancelledAt         *time.Time
	Lines               []QuoteLineModel `gorm:"foreignKey:QuoteID;references:ID"`
}

// TableName returns the table name for GORM
func (QuoteModel) TableName() string {
	return "quotes"
}

// ToDomain converts the persistence model to a domain Quote
func (m *QuoteModel) ToDomain() (*ticketing.Quote, error) {
	q := &ticketing.Quote{
		BaseAggregateRoot:   m.AggregateModel.ToDomainAggregateRoot(),
		Reference:           m.Reference,
		ProspectionHeaderID: m.ProspectionHeaderID,
		ClientName:          m.ClientName,
		Status:              m.Status,
		TotalAmount:         m.TotalAmount,
		TotalCommission:     m.TotalCommission,
		CancelReason:        m.CancelReason,
		PDFRef:              m.PDFRef,
		CommissionReportRef: m.CommissionReportRef,
		TicketHeaderID:      m.TicketHeaderID,
		SentAt:              m.SentAt,
		ApprovedAt:          m.ApprovedAt,
		DirectionSentAt:     m.DirectionSentAt,
		CancelledAt:         m.CancelledAt,
		Lines:               make([]ticketing.QuoteLine, 0, len(m.Lines)),
	}
	lines := append([]QuoteLineModel(nil), m.Lines...)
	sort.Slice(lines, func(i, j int) bool { return lines[i].Position < lines[j].Position })
	for i := range lines {
		line, err := lines[i].ToDomain()
		if err != nil {
			return nil, err
		}
		q.Lines = append(q.Lines, line)
	}
	return q, nil
}

// FromDomain populates the persistence model from a domain Quote
func (m *QuoteModel) FromDomain(q *ticketing.Quote) {
	m.FromDomainAggregateRoot(q.BaseAggregateRoot)
	m.Reference = q.Reference
	m.ProspectionHeaderID = q.ProspectionHeaderID
	m.ClientName = q.ClientName
	m.Status = q.Status
	m.TotalAmount = q.TotalAmount
	m.TotalCommission = q.TotalCommission
	m.CancelReason = q.CancelReason
	m.PDFRef = q.PDFRef
	m.CommissionReportRef = q.CommissionReportRef
	m.TicketHeaderID = q.TicketHeaderID
	m.SentAt = q.SentAt
	m.ApprovedAt = q.ApprovedAt
	m.DirectionSentAt = q.DirectionSentAt
	m.CancelledAt = q.CancelledAt
	m.Lines = make([]QuoteLineModel, len(q.Lines))
	for i := range q.Lines {
		m.Lines[i] = QuoteLineModelFromDomain(q.Lines[i], q.CreatedAt)
	}
}

// QuoteModelFromDomain creates a new persistence model from a domain Quote
func QuoteModelFromDomain(q *ticketing.Quote) *QuoteModel {
	m := &QuoteModel{}
	m.FromDomain(q)
	return m
}

// QuoteLineModel is a priced line frozen into a quote
type QuoteLineModel struct {
	BaseModel
	QuoteID           uuid.UUID     `gorm:"type:uuid;not null;index"`
	ProspectionLineID uuid.UUID     `gorm:"type:uuid;not null"`
	Position          int           `gorm:"not null"`
	Flight            FlightColumns `gorm:"embedded"`
	PassengerCount    int           `gorm:"not null"`
	PricingJSON       string        `gorm:"column:pricing;type:jsonb;not null"`
}

// TableName returns the table name for GORM
func (QuoteLineModel) TableName() string {
	return "quote_lines"
}

// ToDomain converts the persistence model to a domain QuoteLine
func (m *QuoteLineModel) ToDomain() (ticketing.QuoteLine, error) {
	line := ticketing.QuoteLine{
		ID:                m.ID,
		QuoteID:           m.QuoteID,
		ProspectionLineID: m.ProspectionLineID,
		Position:          m.Position,
		Flight:            m.Flight.toDomain(),
		PassengerCount:    m.PassengerCount,
	}
	err := decodeJSON(m.PricingJSON, &line.Pricing, "pricing", m.ID)
	return line, err
}

// QuoteLineModelFromDomain creates a persistence model for a quote line.
// Quote lines are immutable so both timestamps take the quote's creation time.
func QuoteLineModelFromDomain(l ticketing.QuoteLine, createdAt time.Time) QuoteLineModel {
	return QuoteLineModel{
		BaseModel: BaseModel{
			ID:        l.ID,
			CreatedAt: createdAt,
			UpdatedAt: createdAt,
		},
		QuoteID:           l.QuoteID,
		ProspectionLineID: l.ProspectionLineID,
		Position:          l.Position,
		Flight:            flightColumns(l.Flight),
		PassengerCount:    l.PassengerCount,
		PricingJSON:       encodeJSON(l.Pricing),
	}
}

// TicketHeaderModel is the persistence model for the TicketHeader aggregate root
type TicketHeaderModel struct {
	AggregateModel
	QuoteID             uuid.UUID              `gorm:"type:uuid;not null;uniqueIndex"`
	QuoteReference      string                 `gorm:"type:varchar(30);not null"`
	ProspectionHeaderID uuid.UUID              `gorm:"type:uuid;not null;index"`
	TicketNumber        string                 `gorm:"type:varchar(30);index"`
	Status              ticketing.HeaderStatus `gorm:"type:varchar(30);not null;default:'CREER';index"`
	TotalCompagnie      decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	CommissionPropose   decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	CommissionAppliquer decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	TotalCommission     decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	InvoiceReference    string                 `gorm:"type:varchar(100)"`
	RaisonAnnul         string                 `gorm:"type:text"`
	ApprovedAt          *time.Time
	EmittedAt           *time.Time
	InvoicedAt          *time.Time
	SettledAt           *time.Time
	CancelledAt         *time.Time
	Lines               []TicketLineModel `gorm:"foreignKey:HeaderID;references:ID"`
}

// TableName returns the table name for GORM
func (TicketHeaderModel) TableName() string {
	return "ticket_headers"
}

// ToDomain converts the persistence model to a domain TicketHeader with its lines
func (m *TicketHeaderModel) ToDomain() (*ticketing.TicketHeader, error) {
	h := &ticketing.TicketHeader{
		BaseAggregateRoot:   m.AggregateModel.ToDomainAggregateRoot(),
		QuoteID:             m.QuoteID,
		QuoteReference:      m.QuoteReference,
		ProspectionHeaderID: m.ProspectionHeaderID,
		TicketNumber:        m.TicketNumber,
		Status:              m.Status,
		TotalCompagnie:      m.TotalCompagnie,
		CommissionPropose:   m.CommissionPropose,
		CommissionAppliquer: m.CommissionAppliquer,
		TotalCommission:     m.TotalCommission,
		InvoiceReference:    m.InvoiceReference,
		RaisonAnnul:         m.RaisonAnnul,
		ApprovedAt:          m.ApprovedAt,
		EmittedAt:           m.EmittedAt,
		InvoicedAt:          m.InvoicedAt,
		SettledAt:           m.SettledAt,
		CancelledAt:         m.CancelledAt,
		Lines:               make([]*ticketing.TicketLine, 0, len(m.Lines)),
	}
	lines := append([]TicketLineModel(nil), m.Lines...)
	sort.Slice(lines, func(i, j int) bool { return lines[i].Position < lines[j].Position })
	for i := range lines {
		line, err := lines[i].ToDomain()
		if err != nil {
			return nil, err
		}
		h.Lines = append(h.Lines, line)
	}
	return h, nil
}

// FromDomain populates the persistence model from a domain TicketHeader
func (m *TicketHeaderModel) FromDomain(h *ticketing.TicketHeader) {
	m.FromDomainAggregateRoot(h.BaseAggregateRoot)
	m.QuoteID = h.QuoteID
	m.QuoteReference = h.QuoteReference
	m.ProspectionHeaderID = h.ProspectionHeaderID
	m.TicketNumber = h.TicketNumber
	m.Status = h.Status
	m.TotalCompagnie = h.TotalCompagnie
	m.CommissionPropose = h.CommissionPropose
	m.CommissionAppliquer = h.CommissionAppliquer
	m.TotalCommission = h.TotalCommission
	m.InvoiceReference = h.InvoiceReference
	m.RaisonAnnul = h.RaisonAnnul
	m.ApprovedAt = h.ApprovedAt
	m.EmittedAt = h.EmittedAt
	m.InvoicedAt = h.InvoicedAt
	m.SettledAt = h.SettledAt
	m.CancelledAt = h.CancelledAt
	m.Lines = make([]TicketLineModel, len(h.Lines))
	for i, l := range h.Lines {
		m.Lines[i] = *TicketLineModelFromDomain(l)
	}
}

// TicketHeaderModelFromDomain creates a new persistence model from a domain TicketHeader
func TicketHeaderModelFromDomain(h *ticketing.TicketHeader) *TicketHeaderModel {
	m := &TicketHeaderModel{}
	m.FromDomain(h)
	return m
}

// TicketLineModel is one booked flight segment of a ticket
type TicketLineModel struct {
	BaseModel
	HeaderID          uuid.UUID            `gorm:"type:uuid;not null;index"`
	ProspectionLineID uuid.UUID            `gorm:"type:uuid;not null"`
	Position          int                  `gorm:"not null"`
	Flight            FlightColumns        `gorm:"embedded"`
	PassengerCount    int                  `gorm:"not null"`
	Status            ticketing.LineStatus `gorm:"type:varchar(30);not null;default:'CREER';index"`

	ReservationNumber string     `gorm:"type:varchar(50);index"`
	PassengerIDsJSON  string     `gorm:"column:passenger_ids;type:jsonb;not null;default:'[]'"`
	ReservationJSON   *string    `gorm:"column:reservation;type:jsonb"`
	ReservedAt        *time.Time

	TicketNumber  string     `gorm:"type:varchar(50)"`
	AttachmentRef string     `gorm:"type:varchar(500)"`
	EmissionJSON  *string    `gorm:"column:emission;type:jsonb"`
	EmittedAt     *time.Time

	ConditionModif       string     `gorm:"type:text"`
	ConditionAnnul       string     `gorm:"type:text"`
	RaisonAnnul          string     `gorm:"type:text"`
	RaisonAnnulID        *uuid.UUID `gorm:"type:uuid"`
	CancellationFeesJSON *string    `gorm:"column:cancellation_fees;type:jsonb"`
	ModificationFeesJSON *string    `gorm:"column:modification_fees;type:jsonb"`
	CancelledAt          *time.Time
	EmissionCancelledAt  *time.Time

	Revisions []TicketLineRevisionModel `gorm:"foreignKey:LineID;references:ID"`
}

// TableName returns the table name for GORM
func (TicketLineModel) TableName() string {
	return "ticket_lines"
}

// ToDomain converts the persistence model to a domain TicketLine with its revisions
func (m *TicketLineModel) ToDomain() (*ticketing.TicketLine, error) {
	l := &ticketing.TicketLine{
		ID:                  m.ID,
		HeaderID:            m.HeaderID,
		ProspectionLineID:   m.ProspectionLineID,
		Position:            m.Position,
		Flight:              m.Flight.toDomain(),
		PassengerCount:      m.PassengerCount,
		Status:              m.Status,
		ReservationNumber:   m.ReservationNumber,
		PassengerIDs:        make([]uuid.UUID, 0),
		ReservedAt:          m.ReservedAt,
		TicketNumber:        m.TicketNumber,
		AttachmentRef:       m.AttachmentRef,
		EmittedAt:           m.EmittedAt,
		ConditionModif:      m.ConditionModif,
		ConditionAnnul:      m.ConditionAnnul,
		RaisonAnnul:         m.RaisonAnnul,
		RaisonAnnulID:       m.RaisonAnnulID,
		CancelledAt:         m.CancelledAt,
		EmissionCancelledAt: m.EmissionCancelledAt,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
	var err error
	if l.Reservation, err = decodeOptionalJSON[ticketing.Pricing](m.ReservationJSON, "reservation", m.ID); err != nil {
		return nil, err
	}
	if l.Emission, err = decodeOptionalJSON[ticketing.Pricing](m.EmissionJSON, "emission", m.ID); err != nil {
		return nil, err
	}
	if l.CancellationFees, err = decodeOptionalJSON[ticketing.Fees](m.CancellationFeesJSON, "cancellation_fees", m.ID); err != nil {
		return nil, err
	}
	if l.ModificationFees, err = decodeOptionalJSON[ticketing.Fees](m.ModificationFeesJSON, "modification_fees", m.ID); err != nil {
		return nil, err
	}
	if err = decodeJSON(m.PassengerIDsJSON, &l.PassengerIDs, "passenger_ids", m.ID); err != nil {
		return nil, err
	}

	revisions := append([]TicketLineRevisionModel(nil), m.Revisions...)
	sort.Slice(revisions, func(i, j int) bool { return revisions[i].Sequence < revisions[j].Sequence })
	for i := range revisions {
		rev, err := revisions[i].ToDomain()
		if err != nil {
			return nil, err
		}
		l.Revisions = append(l.Revisions, rev)
	}
	return l, nil
}

// TicketLineModelFromDomain creates a persistence model for a ticket line and its revisions
func TicketLineModelFromDomain(l *ticketing.TicketLine) *TicketLineModel {
	passengers := l.PassengerIDs
	if passengers == nil {
		passengers = []uuid.UUID{}
	}
	m := &TicketLineModel{
		BaseModel: BaseModel{
			ID:        l.ID,
			CreatedAt: l.CreatedAt,
			UpdatedAt: l.UpdatedAt,
		},
		HeaderID:             l.HeaderID,
		ProspectionLineID:    l.ProspectionLineID,
		Position:             l.Position,
		Flight:               flightColumns(l.Flight),
		PassengerCount:       l.PassengerCount,
		Status:               l.Status,
		ReservationNumber:    l.ReservationNumber,
		PassengerIDsJSON:     encodeJSON(passengers),
		ReservationJSON:      encodeOptionalJSON(l.Reservation),
		ReservedAt:           l.ReservedAt,
		TicketNumber:         l.TicketNumber,
		AttachmentRef:        l.AttachmentRef,
		EmissionJSON:         encodeOptionalJSON(l.Emission),
		EmittedAt:            l.EmittedAt,
		ConditionModif:       l.ConditionModif,
		ConditionAnnul:       l.ConditionAnnul,
		RaisonAnnul:          l.RaisonAnnul,
		RaisonAnnulID:        l.RaisonAnnulID,
		CancellationFeesJSON: encodeOptionalJSON(l.CancellationFees),
		ModificationFeesJSON: encodeOptionalJSON(l.ModificationFees),
		CancelledAt:          l.CancelledAt,
		EmissionCancelledAt:  l.EmissionCancelledAt,
		Revisions:            make([]TicketLineRevisionModel, len(l.Revisions)),
	}
	for i, rev := range l.Revisions {
		m.Revisions[i] = TicketLineRevisionModelFromDomain(l.ID, rev)
	}
	return m
}

// TicketLineRevisionModel is an append-only snapshot taken before a reschedule
type TicketLineRevisionModel struct {
	ID          uuid.UUID            `gorm:"type:uuid;primary_key"`
	LineID      uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex:idx_line_revision_sequence"`
	Sequence    int                  `gorm:"not null;uniqueIndex:idx_line_revision_sequence"`
	Status      ticketing.LineStatus `gorm:"type:varchar(30);not null"`
	RecordedAt  time.Time            `gorm:"not null"`
	PayloadJSON string               `gorm:"column:payload;type:jsonb;not null"`
}

// TableName returns the table name for GORM
func (TicketLineRevisionModel) TableName() string {
	return "ticket_line_revisions"
}

// ToDomain converts the persistence model to a domain LineRevision
func (m *TicketLineRevisionModel) ToDomain() (ticketing.LineRevision, error) {
	rev := ticketing.LineRevision{}
	if err := decodeJSON(m.PayloadJSON, &rev, "payload", m.ID); err != nil {
		return ticketing.LineRevision{}, err
	}
	rev.Sequence = m.Sequence
	rev.Status = m.Status
	rev.RecordedAt = m.RecordedAt
	return rev, nil
}

// TicketLineRevisionModelFromDomain creates a persistence model for a line revision
func TicketLineRevisionModelFromDomain(lineID uuid.UUID, rev ticketing.LineRevision) TicketLineRevisionModel {
	return TicketLineRevisionModel{
		ID:          uuid.New(),
		LineID:      lineID,
		Sequence:    rev.Sequence,
		Status:      rev.Status,
		RecordedAt:  rev.RecordedAt,
		PayloadJSON: encodeJSON(rev),
	}
}

// TicketingModels lists every model of the ticketing context, parents first
func TicketingModels() []any {
	return []any{
		&QuoteModel{},
		&QuoteLineModel{},
		&TicketHeaderModel{},
		&TicketLineModel{},
		&TicketLineRevisionModel{},
	}
}
