package ticketing

import (
	"time"

	"github.com/agence/backoffice/internal/domain/shared/valueobject"
	"github.com/agence/backoffice/internal/domain/ticketing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Shared inputs ====================

// FlightInput carries the flight attributes of a line
type FlightInput struct {
	NumeroVol       string    `json:"numero_vol" binding:"required,max=20"`
	Itineraire      string    `json:"itineraire" binding:"max=100"`
	Classe          string    `json:"classe" binding:"required,max=20"`
	TypePassager    string    `json:"type_passager" binding:"max=20"`
	DateHeureDepart time.Time `json:"date_heure_depart" binding:"required"`
	DateHeureArrive time.Time `json:"date_heure_arrive" binding:"required"`
}

func (f FlightInput) toDomain() ticketing.FlightSegment {
	return ticketing.FlightSegment{
		NumeroVol:       f.NumeroVol,
		Itineraire:      f.Itineraire,
		Classe:          f.Classe,
		TypePassager:    f.TypePassager,
		DateHeureDepart: f.DateHeureDepart,
		DateHeureArrive: f.DateHeureArrive,
	}
}

// CategoryPriceInput is a unit price in devise for company and client
type CategoryPriceInput struct {
	Compagnie decimal.Decimal `json:"compagnie"`
	Client    decimal.Decimal `json:"client"`
}

func (c CategoryPriceInput) toDomain() ticketing.CategoryPrice {
	return ticketing.CategoryPrice{Compagnie: c.Compagnie, Client: c.Client}
}

// OptionalCategoryPriceInput is a fee that may be partially or wholly absent
type OptionalCategoryPriceInput struct {
	Compagnie *decimal.Decimal `json:"compagnie"`
	Client    *decimal.Decimal `json:"client"`
}

// toDomain returns nil unless both sides are present
func (c *OptionalCategoryPriceInput) toDomain() *ticketing.CategoryPrice {
	if c == nil || c.Compagnie == nil || c.Client == nil {
		return nil
	}
	return &ticketing.CategoryPrice{Compagnie: *c.Compagnie, Client: *c.Client}
}

// PriceInput carries currency, rate and unit prices for every category
type PriceInput struct {
	Currency     string             `json:"currency" binding:"required,len=3"`
	ExchangeRate decimal.Decimal    `json:"exchange_rate"`
	Billet       CategoryPriceInput `json:"billet"`
	Service      CategoryPriceInput `json:"service"`
	Penalite     CategoryPriceInput `json:"penalite"`
}

func (p PriceInput) toDomain() ticketing.PriceInputs {
	return ticketing.PriceInputs{
		Currency:     valueobject.Currency(p.Currency),
		ExchangeRate: p.ExchangeRate,
		Billet:       p.Billet.toDomain(),
		Service:      p.Service.toDomain(),
		Penalite:     p.Penalite.toDomain(),
	}
}

// ==================== Quote DTOs ====================

// CreateQuoteRequest creates a quote from selected prospecting lines
type CreateQuoteRequest struct {
	Reference           string                 `json:"reference" binding:"max=50"`
	ProspectionHeaderID uuid.UUID              `json:"prospection_header_id" binding:"required"`
	ClientName          string                 `json:"client_name" binding:"max=200"`
	Lines               []CreateQuoteLineInput `json:"lines" binding:"required,min=1,dive"`
}

// CreateQuoteLineInput is one selected prospecting line
type CreateQuoteLineInput struct {
	ProspectionLineID uuid.UUID   `json:"prospection_line_id" binding:"required"`
	Flight            FlightInput `json:"flight" binding:"required"`
	PassengerCount    int         `json:"passenger_count" binding:"required,min=1"`
	Prices            PriceInput  `json:"prices" binding:"required"`
}

// CancelQuoteRequest cancels a quote
type CancelQuoteRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// QuoteListFilter filters the quote list
type QuoteListFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=CREER DEVIS_A_APPROUVER DEVIS_APPROUVE ANNULER"`
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// QuoteLineResponse is a frozen quote line
type QuoteLineResponse struct {
	ID                uuid.UUID               `json:"id"`
	ProspectionLineID uuid.UUID               `json:"prospection_line_id"`
	Position          int                     `json:"position"`
	Flight            ticketing.FlightSegment `json:"flight"`
	PassengerCount    int                     `json:"passenger_count"`
	Pricing           ticketing.Pricing       `json:"pricing"`
}

// QuoteResponse represents a quote in API responses
type QuoteResponse struct {
	ID                  uuid.UUID           `json:"id"`
	Reference           string              `json:"reference"`
	ProspectionHeaderID uuid.UUID           `json:"prospection_header_id"`
	ClientName          string              `json:"client_name"`
	Status              string              `json:"status"`
	TotalAmount         decimal.Decimal     `json:"total_amount"`
	TotalCommission     decimal.Decimal     `json:"total_commission"`
	Lines               []QuoteLineResponse `json:"lines"`
	CancelReason        string              `json:"cancel_reason,omitempty"`
	PDFRef              string              `json:"pdf_ref,omitempty"`
	CommissionReportRef string              `json:"commission_report_ref,omitempty"`
	TicketHeaderID      *uuid.UUID          `json:"ticket_header_id,omitempty"`
	SentAt              *time.Time          `json:"sent_at,omitempty"`
	ApprovedAt          *time.Time          `json:"approved_at,omitempty"`
	DirectionSentAt     *time.Time          `json:"direction_sent_at,omitempty"`
	CancelledAt         *time.Time          `json:"cancelled_at,omitempty"`
	Version             int                 `json:"version"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

// ToQuoteResponse converts a domain Quote to QuoteResponse
func ToQuoteResponse(q *ticketing.Quote) QuoteResponse {
	lines := make([]QuoteLineResponse, len(q.Lines))
	for i, l := range q.Lines {
		lines[i] = QuoteLineResponse{
			ID:                l.ID,
			ProspectionLineID: l.ProspectionLineID,
			Position:          l.Position,
			Flight:            l.Flight,
			PassengerCount:    l.PassengerCount,
			Pricing:           l.Pricing,
		}
	}
	return QuoteResponse{
		ID:                  q.ID,
		Reference:           q.Reference,
		ProspectionHeaderID: q.ProspectionHeaderID,
		ClientName:          q.ClientName,
		Status:              q.Status.String(),
		TotalAmount:         q.TotalAmount,
		TotalCommission:     q.TotalCommission,
		Lines:               lines,
		CancelReason:        q.CancelReason,
		PDFRef:              q.PDFRef,
		CommissionReportRef: q.CommissionReportRef,
		TicketHeaderID:      q.TicketHeaderID,
		SentAt:              q.SentAt,
		ApprovedAt:          q.ApprovedAt,
		DirectionSentAt:     q.DirectionSentAt,
		CancelledAt:         q.CancelledAt,
		Version:             q.Version,
		CreatedAt:           q.CreatedAt,
		UpdatedAt:           q.UpdatedAt,
	}
}

// DocumentResponse points at a stored document
type DocumentResponse struct {
	Ref       string    `json:"ref"`
	URL       string    `json:"url,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// ==================== Ticket DTOs ====================

// ReserveLineRequest reserves one ticket line
type ReserveLineRequest struct {
	ReservationNumber string      `json:"reservation_number" binding:"required,max=50"`
	PassengerIDs      []uuid.UUID `json:"passenger_ids" binding:"required,min=1"`
	Prices            PriceInput  `json:"prices" binding:"required"`
}

func (r ReserveLineRequest) toDomain() ticketing.ReserveInput {
	return ticketing.ReserveInput{
		ReservationNumber: r.ReservationNumber,
		PassengerIDs:      r.PassengerIDs,
		Prices:            r.Prices.toDomain(),
	}
}

// EmitLineRequest emits one ticket line
type EmitLineRequest struct {
	TicketNumber  string             `json:"ticket_number" binding:"required,max=50"`
	ExchangeRate  decimal.Decimal    `json:"exchange_rate"`
	AttachmentRef string             `json:"attachment_ref" binding:"max=500"`
	Billet        CategoryPriceInput `json:"billet"`
	Service       CategoryPriceInput `json:"service"`
	Penalite      CategoryPriceInput `json:"penalite"`
}

func (r EmitLineRequest) toDomain() ticketing.EmitInput {
	return ticketing.EmitInput{
		TicketNumber:  r.TicketNumber,
		ExchangeRate:  r.ExchangeRate,
		AttachmentRef: r.AttachmentRef,
		Billet:        r.Billet.toDomain(),
		Service:       r.Service.toDomain(),
		Penalite:      r.Penalite.toDomain(),
	}
}

// IssueInvoiceRequest issues the client invoice
type IssueInvoiceRequest struct {
	ReferenceFacClient string `json:"reference_fac_client" binding:"required,max=100"`
}

// FeeTermsInput is the typed fee payload of a cancellation or change
type FeeTermsInput struct {
	Type       string                      `json:"type" binding:"required,oneof=SIMPLE COM PEN COM_PEN"`
	Commission *OptionalCategoryPriceInput `json:"commission"`
	Penalite   *OptionalCategoryPriceInput `json:"penalite"`
}

func (f FeeTermsInput) toDomain() (ticketing.CancellationTerms, error) {
	return ticketing.NewCancellationTerms(
		ticketing.CancellationType(f.Type),
		f.Commission.toDomain(),
		f.Penalite.toDomain(),
	)
}

// CancelReservationRequest cancels the reservation of selected lines
type CancelReservationRequest struct {
	LineIDs        []uuid.UUID     `json:"line_ids" binding:"required,min=1"`
	ReasonID       *uuid.UUID      `json:"reason_id"`
	Reason         string          `json:"reason" binding:"max=500"`
	ExchangeRate   decimal.Decimal `json:"exchange_rate"`
	ConditionAnnul string          `json:"condition_annul" binding:"max=1000"`
	FeeTermsInput
}

// CancelEmissionRequest cancels the emission of selected lines
type CancelEmissionRequest struct {
	LineIDs []uuid.UUID `json:"line_ids" binding:"required,min=1"`
	Reason  string      `json:"reason" binding:"required,max=500"`
}

// RescheduleLineRequest rebooks one ticket line
type RescheduleLineRequest struct {
	Flight         FlightInput `json:"flight" binding:"required"`
	PassengerIDs   []uuid.UUID `json:"passenger_ids" binding:"required,min=1"`
	ConditionModif string      `json:"condition_modif" binding:"max=1000"`
	ConditionAnnul string      `json:"condition_annul" binding:"max=1000"`
	Prices         PriceInput  `json:"prices" binding:"required"`
	FeeTermsInput
}

// TicketListFilter filters the ticket list
type TicketListFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=CREER BC_CLIENT_A_APPROUVER BILLET_EMIS FACTURE_EMISE FACTURE_REGLEE ANNULER"`
	QuoteID  string `form:"quote_id" binding:"omitempty,uuid"`
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// TicketLineResponse represents a ticket line in API responses
type TicketLineResponse struct {
	ID                  uuid.UUID               `json:"id"`
	ProspectionLineID   uuid.UUID               `json:"prospection_line_id"`
	Position            int                     `json:"position"`
	Flight              ticketing.FlightSegment `json:"flight"`
	PassengerCount      int                     `json:"passenger_count"`
	Status              string                  `json:"status"`
	ReservationNumber   string                  `json:"reservation_number,omitempty"`
	PassengerIDs        []uuid.UUID             `json:"passenger_ids"`
	Reservation         *ticketing.Pricing      `json:"reservation,omitempty"`
	TicketNumber        string                  `json:"ticket_number,omitempty"`
	AttachmentRef       string                  `json:"attachment_ref,omitempty"`
	Emission            *ticketing.Pricing      `json:"emission,omitempty"`
	ConditionModif      string                  `json:"condition_modif,omitempty"`
	ConditionAnnul      string                  `json:"condition_annul,omitempty"`
	RaisonAnnul         string                  `json:"raison_annul,omitempty"`
	RaisonAnnulID       *uuid.UUID              `json:"raison_annul_id,omitempty"`
	CancellationFees    *ticketing.Fees         `json:"cancellation_fees,omitempty"`
	ModificationFees    *ticketing.Fees         `json:"modification_fees,omitempty"`
	RevisionCount       int                     `json:"revision_count"`
	ReservedAt          *time.Time              `json:"reserved_at,omitempty"`
	EmittedAt           *time.Time              `json:"emitted_at,omitempty"`
	CancelledAt         *time.Time              `json:"cancelled_at,omitempty"`
	EmissionCancelledAt *time.Time              `json:"emission_cancelled_at,omitempty"`
}

// TicketResponse represents a ticket header with its lines
type TicketResponse struct {
	ID                  uuid.UUID            `json:"id"`
	QuoteID             uuid.UUID            `json:"quote_id"`
	QuoteReference      string               `json:"quote_reference"`
	ProspectionHeaderID uuid.UUID            `json:"prospection_header_id"`
	TicketNumber        string               `json:"ticket_number,omitempty"`
	Status              string               `json:"status"`
	TotalCompagnie      decimal.Decimal      `json:"total_compagnie"`
	CommissionPropose   decimal.Decimal      `json:"commission_propose"`
	CommissionAppliquer decimal.Decimal      `json:"commission_appliquer"`
	TotalCommission     decimal.Decimal      `json:"total_commission"`
	InvoiceReference    string               `json:"reference_fac_client,omitempty"`
	RaisonAnnul         string               `json:"raison_annul,omitempty"`
	ApprovedAt          *time.Time           `json:"approved_at,omitempty"`
	EmittedAt           *time.Time           `json:"emitted_at,omitempty"`
	InvoicedAt          *time.Time           `json:"invoiced_at,omitempty"`
	SettledAt           *time.Time           `json:"settled_at,omitempty"`
	CancelledAt         *time.Time           `json:"cancelled_at,omitempty"`
	Lines               []TicketLineResponse `json:"lines"`
	Progress            ticketing.Progress   `json:"progress"`
	Version             int                  `json:"version"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

// ToTicketLineResponse converts a domain TicketLine to TicketLineResponse
func ToTicketLineResponse(l *ticketing.TicketLine) TicketLineResponse {
	return TicketLineResponse{
		ID:                  l.ID,
		ProspectionLineID:   l.ProspectionLineID,
		Position:            l.Position,
		Flight:              l.Flight,
		PassengerCount:      l.PassengerCount,
		Status:              l.Status.String(),
		ReservationNumber:   l.ReservationNumber,
		PassengerIDs:        l.PassengerIDs,
		Reservation:         l.Reservation,
		TicketNumber:        l.TicketNumber,
		AttachmentRef:       l.AttachmentRef,
		Emission:            l.Emission,
		ConditionModif:      l.ConditionModif,
		ConditionAnnul:      l.ConditionAnnul,
		RaisonAnnul:         l.RaisonAnnul,
		RaisonAnnulID:       l.RaisonAnnulID,
		CancellationFees:    l.CancellationFees,
		ModificationFees:    l.ModificationFees,
		RevisionCount:       len(l.Revisions),
		ReservedAt:          l.ReservedAt,
		EmittedAt:           l.EmittedAt,
		CancelledAt:         l.CancelledAt,
		EmissionCancelledAt: l.EmissionCancelledAt,
	}
}

// ToTicketResponse converts a domain TicketHeader to TicketResponse
func ToTicketResponse(h *ticketing.TicketHeader) TicketResponse {
	lines := make([]TicketLineResponse, len(h.Lines))
	for i, l := range h.Lines {
		lines[i] = ToTicketLineResponse(l)
	}
	return TicketResponse{
		ID:                  h.ID,
		QuoteID:             h.QuoteID,
		QuoteReference:      h.QuoteReference,
		ProspectionHeaderID: h.ProspectionHeaderID,
		TicketNumber:        h.TicketNumber,
		Status:              h.Status.String(),
		TotalCompagnie:      h.TotalCompagnie,
		CommissionPropose:   h.CommissionPropose,
		CommissionAppliquer: h.CommissionAppliquer,
		TotalCommission:     h.TotalCommission,
		InvoiceReference:    h.InvoiceReference,
		RaisonAnnul:         h.RaisonAnnul,
		ApprovedAt:          h.ApprovedAt,
		EmittedAt:           h.EmittedAt,
		InvoicedAt:          h.InvoicedAt,
		SettledAt:           h.SettledAt,
		CancelledAt:         h.CancelledAt,
		Lines:               lines,
		Progress:            h.Progress(),
		Version:             h.Version,
		CreatedAt:           h.CreatedAt,
		UpdatedAt:           h.UpdatedAt,
	}
}

// ExportResponse is a rendered binary document
type ExportResponse struct {
	Filename    string
	ContentType string
	Data        []byte
}
