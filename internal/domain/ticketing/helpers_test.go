package ticketing

import (
	"testing"
	"time"

	"github.com/agence/backoffice/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testFlight(numero string) FlightSegment {
	depart := time.Date(2026, 11, 3, 8, 30, 0, 0, time.UTC)
	return FlightSegment{
		NumeroVol:       numero,
		Itineraire:      "TNR-CDG",
		Classe:          "Y",
		TypePassager:    "ADT",
		DateHeureDepart: depart,
		DateHeureArrive: depart.Add(11 * time.Hour),
	}
}

// testPrices quotes billet at unit (company) and unit+markup (client), with
// service and pénalité at zero.
func testPrices(unit, markup, rate string) PriceInputs {
	return PriceInputs{
		Currency:     valueobject.EUR,
		ExchangeRate: dec(rate),
		Billet: CategoryPrice{
			Compagnie: dec(unit),
			Client:    dec(unit).Add(dec(markup)),
		},
	}
}

func passengers(n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = uuid.New()
	}
	return ids
}

func createTestQuote(t *testing.T, lineCount int) *Quote {
	t.Helper()
	inputs := make([]QuoteLineInput, lineCount)
	for i := range inputs {
		inputs[i] = QuoteLineInput{
			ProspectionLineID: uuid.New(),
			Flight:            testFlight("MD050"),
			PassengerCount:    2,
			Prices:            testPrices("100", "10", "4500"),
		}
	}
	q, err := NewQuote("DEV-2026-00001", uuid.New(), "Société Test", inputs)
	require.NoError(t, err)
	return q
}

func createApprovedQuote(t *testing.T, lineCount int) *Quote {
	t.Helper()
	q := createTestQuote(t, lineCount)
	require.NoError(t, q.SendToClient())
	require.NoError(t, q.ClientApproves())
	return q
}

func createTestTicket(t *testing.T, lineCount int) *TicketHeader {
	t.Helper()
	q := createApprovedQuote(t, lineCount)
	h, err := q.CreateTicketHeader()
	require.NoError(t, err)
	return h
}

func reserveInput(number string) ReserveInput {
	return ReserveInput{
		ReservationNumber: number,
		PassengerIDs:      passengers(2),
		Prices:            testPrices("100", "10", "4500"),
	}
}

func emitInput(number string) EmitInput {
	return EmitInput{
		TicketNumber: number,
		ExchangeRate: dec("4600"),
		Billet:       CategoryPrice{Compagnie: dec("100"), Client: dec("115")},
	}
}

func reserveAll(t *testing.T, h *TicketHeader) {
	t.Helper()
	for i, l := range h.Lines {
		require.NoError(t, h.ReserveLine(l.ID, reserveInput("PNR"+string(rune('A'+i)))))
	}
}

func emitAll(t *testing.T, h *TicketHeader) {
	t.Helper()
	for i, l := range h.Lines {
		require.NoError(t, h.EmitLine(l.ID, emitInput("057-000000000"+string(rune('0'+i)))))
	}
}

func lineIDs(h *TicketHeader) []uuid.UUID {
	ids := make([]uuid.UUID, len(h.Lines))
	for i, l := range h.Lines {
		ids[i] = l.ID
	}
	return ids
}
