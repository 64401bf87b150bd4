package handler

import (
	"net/http"
	"testing"
	"time"

	apptic "github.com/agence/backoffice/internal/application/ticketing"
	"github.com/agence/backoffice/internal/domain/shared"
	"github.com/agence/backoffice/internal/domain/ticketing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupTicketRouter(tickets TicketUseCases) *gin.Engine {
	h := NewTicketHandler(tickets)
	r := gin.New()
	r.GET("/tickets", h.List)
	r.GET("/tickets/:id", h.GetByID)
	r.GET("/tickets/:id/progress", h.Progress)
	r.GET("/tickets/:id/export", h.Export)
	r.POST("/tickets/:id/approve-reservation", h.ApproveReservation)
	r.POST("/tickets/:id/emit", h.Emit)
	r.POST("/tickets/:id/invoice", h.Invoice)
	r.POST("/tickets/:id/settle", h.Settle)
	r.POST("/tickets/:id/cancel-reservation", h.CancelReservation)
	r.POST("/tickets/:id/cancel-emission", h.CancelEmission)
	r.POST("/tickets/:id/lines/:lineId/reserve", h.ReserveLine)
	r.POST("/tickets/:id/lines/:lineId/emit", h.EmitLine)
	r.POST("/tickets/:id/lines/:lineId/reschedule", h.RescheduleLine)
	r.GET("/tickets/:id/lines/:lineId/revisions", h.Revisions)
	r.GET("/tickets/:id/lines/:lineId/attachment", h.Attachment)
	return r
}

func sampleTicketResponse(status string) *apptic.TicketResponse {
	return &apptic.TicketResponse{
		ID:             uuid.New(),
		QuoteID:        uuid.New(),
		QuoteReference: "DEV-2026-00001",
		TicketNumber:   "BIL-2026-00001",
		Status:         status,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
}

func TestTicketHandler_GetByID(t *testing.T) {
	tickets := new(MockTicketUseCases)
	resp := sampleTicketResponse("CREER")
	tickets.On("GetByID", mock.Anything, resp.ID).Return(resp, nil)
	r := setupTicketRouter(tickets)

	w := perform(r, http.MethodGet, "/tickets/"+resp.ID.String(), "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "BIL-2026-00001")
}

func TestTicketHandler_List(t *testing.T) {
	tickets := new(MockTicketUseCases)
	quoteID := uuid.New()
	page := shared.NewPaginated([]apptic.TicketResponse{*sampleTicketResponse("BILLET_EMIS")}, 1, 1, 20)
	tickets.On("List", mock.Anything, apptic.TicketListFilter{Status: "BILLET_EMIS", QuoteID: quoteID.String()}).Return(&page, nil)
	r := setupTicketRouter(tickets)

	w := perform(r, http.MethodGet, "/tickets?status=BILLET_EMIS&quote_id="+quoteID.String(), "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(r, http.MethodGet, "/tickets?quote_id=nope", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	tickets.AssertNumberOfCalls(t, "List", 1)
}

func TestTicketHandler_Progress(t *testing.T) {
	tickets := new(MockTicketUseCases)
	id := uuid.New()
	tickets.On("Progress", mock.Anything, id).Return(&ticketing.Progress{
		AllLinesReserved:   true,
		RemainingToEmit:    2,
		RemainingToReserve: 0,
	}, nil)

	w := perform(setupTicketRouter(tickets), http.MethodGet, "/tickets/"+id.String()+"/progress", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"remaining_to_emit":2`)
}

func TestTicketHandler_Export(t *testing.T) {
	tickets := new(MockTicketUseCases)
	id := uuid.New()
	tickets.On("Export", mock.Anything, id).Return(&apptic.ExportResponse{
		Filename:    "BIL-2026-00001.xlsx",
		ContentType: apptic.ContentTypeXLSX,
		Data:        []byte("PK\x03\x04"),
	}, nil)

	w := perform(setupTicketRouter(tickets), http.MethodGet, "/tickets/"+id.String()+"/export", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, apptic.ContentTypeXLSX, w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="BIL-2026-00001.xlsx"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, []byte("PK\x03\x04"), w.Body.Bytes())
}

func TestTicketHandler_HeaderTransitions(t *testing.T) {
	tests := []struct {
		method string
		path   string
	}{
		{"ApproveReservation", "approve-reservation"},
		{"Emit", "emit"},
		{"Settle", "settle"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			tickets := new(MockTicketUseCases)
			id := uuid.New()
			tickets.On(tt.method, mock.Anything, id).Return(sampleTicketResponse("BILLET_EMIS"), nil)

			w := perform(setupTicketRouter(tickets), http.MethodPost, "/tickets/"+id.String()+"/"+tt.path, "")

			assert.Equal(t, http.StatusOK, w.Code)
			tickets.AssertExpectations(t)
		})
	}

	t.Run("emit before every line is emitted", func(t *testing.T) {
		tickets := new(MockTicketUseCases)
		id := uuid.New()
		tickets.On("Emit", mock.Anything, id).
			Return(nil, shared.NewTransitionError("LINES_NOT_EMITTED", "Every line must be emitted"))

		w := perform(setupTicketRouter(tickets), http.MethodPost, "/tickets/"+id.String()+"/emit", "")

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "LINES_NOT_EMITTED")
	})
}

func TestTicketHandler_Invoice(t *testing.T) {
	tickets := new(MockTicketUseCases)
	id := uuid.New()
	tickets.On("Invoice", mock.Anything, id, apptic.IssueInvoiceRequest{ReferenceFacClient: "FAC-778"}).
		Return(sampleTicketResponse("FACTURE_EMISE"), nil)
	r := setupTicketRouter(tickets)

	w := perform(r, http.MethodPost, "/tickets/"+id.String()+"/invoice", `{"reference_fac_client": "FAC-778"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(r, http.MethodPost, "/tickets/"+id.String()+"/invoice", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "reference_fac_client")
}

func TestTicketHandler_Cancellations(t *testing.T) {
	lineID := uuid.New()

	t.Run("cancel reservation", func(t *testing.T) {
		tickets := new(MockTicketUseCases)
		id := uuid.New()
		tickets.On("CancelReservation", mock.Anything, id, mock.MatchedBy(func(req apptic.CancelReservationRequest) bool {
			return len(req.LineIDs) == 1 && req.LineIDs[0] == lineID && req.Type == "PEN"
		})).Return(sampleTicketResponse("CREER"), nil)

		body := `{"line_ids": ["` + lineID.String() + `"], "reason": "Client sick", "exchange_rate": "4500",
			"type": "PEN", "penalite": {"compagnie": "20", "client": "25"}}`
		w := perform(setupTicketRouter(tickets), http.MethodPost, "/tickets/"+id.String()+"/cancel-reservation", body)

		assert.Equal(t, http.StatusOK, w.Code)
		tickets.AssertExpectations(t)
	})

	t.Run("cancel emission needs lines", func(t *testing.T) {
		tickets := new(MockTicketUseCases)
		id := uuid.New()

		w := perform(setupTicketRouter(tickets), http.MethodPost, "/tickets/"+id.String()+"/cancel-emission", `{"reason": "x"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		tickets.AssertNotCalled(t, "CancelEmission", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("cancel emission", func(t *testing.T) {
		tickets := new(MockTicketUseCases)
		id := uuid.New()
		tickets.On("CancelEmission", mock.Anything, id, apptic.CancelEmissionRequest{LineIDs: []uuid.UUID{lineID}, Reason: "Flight cancelled"}).
			Return(sampleTicketResponse("BILLET_EMIS"), nil)

		body := `{"line_ids": ["` + lineID.String() + `"], "reason": "Flight cancelled"}`
		w := perform(setupTicketRouter(tickets), http.MethodPost, "/tickets/"+id.String()+"/cancel-emission", body)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestTicketHandler_LineCommands(t *testing.T) {
	passenger := uuid.New().String()

	t.Run("reserve", func(t *testing.T) {
		tickets := new(MockTicketUseCases)
		id, lineID := uuid.New(), uuid.New()
		tickets.On("ReserveLine", mock.Anything, id, lineID, mock.MatchedBy(func(req apptic.ReserveLineRequest) bool {
			return req.ReservationNumber == "PNR001" && len(req.PassengerIDs) == 1
		})).Return(sampleTicketResponse("CREER"), nil)

		body := `{"reservation_number": "PNR001", "passenger_ids": ["` + passenger + `"],
			"prices": {"currency": "EUR", "exchange_rate": "4500", "billet": {"compagnie": "100", "client": "110"}}}`
		w := perform(setupTicketRouter(tickets), http.MethodPost, "/tickets/"+id.String()+"/lines/"+lineID.String()+"/reserve", body)

		assert.Equal(t, http.StatusOK, w.Code)
		tickets.AssertExpectations(t)
	})

	t.Run("emit", func(t *testing.T) {
		tickets := new(MockTicketUseCases)
		id, lineID := uuid.New(), uuid.New()
		tickets.On("EmitLine", mock.Anything, id, lineID, mock.MatchedBy(func(req apptic.EmitLineRequest) bool {
			return req.TicketNumber == "0572100000001"
		})).Return(nil, shared.NewTransitionError("LINE_NOT_RESERVED", "Line must be reserved"))

		body := `{"ticket_number": "0572100000001", "exchange_rate": "4500", "billet": {"compagnie": "100", "client": "110"}}`
		w := perform(setupTicketRouter(tickets), http.MethodPost, "/tickets/"+id.String()+"/lines/"+lineID.String()+"/emit", body)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("reschedule", func(t *testing.T) {
		tickets := new(MockTicketUseCases)
		id, lineID := uuid.New(), uuid.New()
		tickets.On("RescheduleLine", mock.Anything, id, lineID, mock.MatchedBy(func(req apptic.RescheduleLineRequest) bool {
			return req.Flight.NumeroVol == "MD052"
		})).Return(sampleTicketResponse("BILLET_EMIS"), nil)

		body := `{"flight": {"numero_vol": "MD052", "classe": "ECO",
				"date_heure_depart": "2026-11-04T22:30:00Z", "date_heure_arrive": "2026-11-05T09:10:00Z"},
			"passenger_ids": ["` + passenger + `"], "type": "SIMPLE",
			"prices": {"currency": "EUR", "exchange_rate": "4500", "penalite": {"compagnie": "30", "client": "40"}}}`
		w := perform(setupTicketRouter(tickets), http.MethodPost, "/tickets/"+id.String()+"/lines/"+lineID.String()+"/reschedule", body)

		assert.Equal(t, http.StatusOK, w.Code)
		tickets.AssertExpectations(t)
	})

	t.Run("bad line id", func(t *testing.T) {
		tickets := new(MockTicketUseCases)

		w := perform(setupTicketRouter(tickets), http.MethodPost, "/tickets/"+uuid.NewString()+"/lines/x/reserve", `{}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid lineId format")
	})
}

func TestTicketHandler_Revisions(t *testing.T) {
	tickets := new(MockTicketUseCases)
	id, lineID, empty := uuid.New(), uuid.New(), uuid.New()
	tickets.On("Revisions", mock.Anything, id, lineID).Return([]ticketing.LineRevision{
		{Sequence: 1, ReservationNumber: "PNR001", RecordedAt: time.Now()},
	}, nil)
	tickets.On("Revisions", mock.Anything, id, empty).Return(nil, nil)
	r := setupTicketRouter(tickets)

	w := perform(r, http.MethodGet, "/tickets/"+id.String()+"/lines/"+lineID.String()+"/revisions", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "PNR001")

	w = perform(r, http.MethodGet, "/tickets/"+id.String()+"/lines/"+empty.String()+"/revisions", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":[]`)
}

func TestTicketHandler_Attachment(t *testing.T) {
	tickets := new(MockTicketUseCases)
	id, lineID := uuid.New(), uuid.New()
	tickets.On("AttachmentURL", mock.Anything, id, lineID).Return(&apptic.DocumentResponse{
		Ref: "tickets/e-ticket.pdf",
		URL: "http://localhost/files/tickets%2Fe-ticket.pdf",
	}, nil)

	w := perform(setupTicketRouter(tickets), http.MethodGet, "/tickets/"+id.String()+"/lines/"+lineID.String()+"/attachment", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "tickets/e-ticket.pdf")
}
