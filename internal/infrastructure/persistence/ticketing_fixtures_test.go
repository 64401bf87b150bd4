package persistence

import (
	"testing"
	"time"

	"github.com/agence/backoffice/internal/domain/shared/valueobject"
	"github.com/agence/backoffice/internal/domain/ticketing"
	"github.com/agence/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTicketingTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// every connection to :memory: is a separate database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models.TicketingModels()...))
	return db
}

func testPriceInputs() ticketing.PriceInputs {
	return ticketing.PriceInputs{
		Currency:     valueobject.EUR,
		ExchangeRate: decimal.NewFromInt(4500),
		Billet: ticketing.CategoryPrice{
			Compagnie: decimal.NewFromInt(100),
			Client:    decimal.NewFromInt(110),
		},
	}
}

func testFlightSegment(numero string) ticketing.FlightSegment {
	depart := time.Date(2026, 11, 3, 8, 30, 0, 0, time.UTC)
	return ticketing.FlightSegment{
		NumeroVol:       numero,
		Itineraire:      "TNR-CDG",
		Classe:          "Y",
		TypePassager:    "ADT",
		DateHeureDepart: depart,
		DateHeureArrive: depart.Add(11 * time.Hour),
	}
}

func newTestQuote(t *testing.T, reference string, lineCount int) *ticketing.Quote {
	t.Helper()
	inputs := make([]ticketing.QuoteLineInput, lineCount)
	for i := range inputs {
		inputs[i] = ticketing.QuoteLineInput{
			ProspectionLineID: uuid.New(),
			Flight:            testFlightSegment("MD05" + string(rune('0'+i))),
			PassengerCount:    2,
			Prices:            testPriceInputs(),
		}
	}
	q, err := ticketing.NewQuote(reference, uuid.New(), "Société Test", inputs)
	require.NoError(t, err)
	q.ClearDomainEvents()
	return q
}

func approveQuote(t *testing.T, q *ticketing.Quote) {
	t.Helper()
	require.NoError(t, q.SendToClient())
	require.NoError(t, q.ClientApproves())
	q.ClearDomainEvents()
}

func testReserveInput(pnr string) ticketing.ReserveInput {
	return ticketing.ReserveInput{
		ReservationNumber: pnr,
		PassengerIDs:      []uuid.UUID{uuid.New(), uuid.New()},
		Prices:            testPriceInputs(),
	}
}
