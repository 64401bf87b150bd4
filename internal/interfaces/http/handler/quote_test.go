package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apptic "github.com/agence/backoffice/internal/application/ticketing"
	"github.com/agence/backoffice/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupQuoteRouter(quotes QuoteUseCases) *gin.Engine {
	h := NewQuoteHandler(quotes)
	r := gin.New()
	r.POST("/quotes", h.Create)
	r.GET("/quotes", h.List)
	r.GET("/quotes/:id", h.GetByID)
	r.POST("/quotes/:id/send-to-client", h.SendToClient)
	r.POST("/quotes/:id/client-approve", h.ClientApprove)
	r.POST("/quotes/:id/send-to-direction", h.SendToDirection)
	r.POST("/quotes/:id/cancel", h.Cancel)
	r.POST("/quotes/:id/pdf", h.GeneratePDF)
	r.POST("/quotes/:id/tickets", h.CreateTicket)
	r.GET("/quotes/:id/ticket", h.GetTicket)
	return r
}

func perform(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sampleQuoteResponse(status string) *apptic.QuoteResponse {
	return &apptic.QuoteResponse{
		ID:              uuid.New(),
		Reference:       "DEV-2026-00001",
		Status:          status,
		TotalAmount:     decimal.NewFromInt(990000),
		TotalCommission: decimal.NewFromInt(90000),
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
}

const createQuoteBody = `{
	"prospection_header_id": "6f1c1d42-94a7-4b55-9d0a-0f3c0f0b6b11",
	"client_name": "Rakoto",
	"lines": [{
		"prospection_line_id": "8a2e8a0e-33b4-4a4d-8a57-8c7d3b3b2f21",
		"passenger_count": 2,
		"flight": {
			"numero_vol": "MD050",
			"itineraire": "TNR-CDG",
			"classe": "ECO",
			"date_heure_depart": "2026-11-02T22:30:00Z",
			"date_heure_arrive": "2026-11-03T09:10:00Z"
		},
		"prices": {
			"currency": "EUR",
			"exchange_rate": "4500",
			"billet": {"compagnie": "100", "client": "110"}
		}
	}]
}`

func TestQuoteHandler_Create(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		quotes := new(MockQuoteUseCases)
		quotes.On("Create", mock.Anything, mock.MatchedBy(func(req apptic.CreateQuoteRequest) bool {
			return req.ClientName == "Rakoto" && len(req.Lines) == 1 && req.Lines[0].PassengerCount == 2
		})).Return(sampleQuoteResponse("CREER"), nil)

		w := perform(setupQuoteRouter(quotes), http.MethodPost, "/quotes", createQuoteBody)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), "DEV-2026-00001")
		quotes.AssertExpectations(t)
	})

	t.Run("missing lines", func(t *testing.T) {
		quotes := new(MockQuoteUseCases)
		body := `{"prospection_header_id": "6f1c1d42-94a7-4b55-9d0a-0f3c0f0b6b11", "lines": []}`

		w := perform(setupQuoteRouter(quotes), http.MethodPost, "/quotes", body)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
		quotes.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("malformed json", func(t *testing.T) {
		quotes := new(MockQuoteUseCases)

		w := perform(setupQuoteRouter(quotes), http.MethodPost, "/quotes", `{"lines": [`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("domain rejection", func(t *testing.T) {
		quotes := new(MockQuoteUseCases)
		quotes.On("Create", mock.Anything, mock.Anything).
			Return(nil, shared.NewValidationError("INVALID_EXCHANGE_RATE", "Exchange rate must be positive"))

		w := perform(setupQuoteRouter(quotes), http.MethodPost, "/quotes", createQuoteBody)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_EXCHANGE_RATE")
	})
}

func TestQuoteHandler_GetByID(t *testing.T) {
	quotes := new(MockQuoteUseCases)
	resp := sampleQuoteResponse("CREER")
	quotes.On("GetByID", mock.Anything, resp.ID).Return(resp, nil)
	missing := uuid.New()
	quotes.On("GetByID", mock.Anything, missing).Return(nil, shared.ErrNotFound.WithMessage("Quote %s not found", missing))
	r := setupQuoteRouter(quotes)

	w := perform(r, http.MethodGet, "/quotes/"+resp.ID.String(), "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(r, http.MethodGet, "/quotes/"+missing.String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = perform(r, http.MethodGet, "/quotes/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQuoteHandler_List(t *testing.T) {
	quotes := new(MockQuoteUseCases)
	page := shared.NewPaginated([]apptic.QuoteResponse{*sampleQuoteResponse("CREER")}, 6, 2, 5)
	quotes.On("List", mock.Anything, apptic.QuoteListFilter{Status: "CREER", Page: 2, PageSize: 5}).Return(&page, nil)
	r := setupQuoteRouter(quotes)

	w := perform(r, http.MethodGet, "/quotes?status=CREER&page=2&page_size=5", "")

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(6), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.TotalPages)

	w = perform(r, http.MethodGet, "/quotes?status=UNKNOWN", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQuoteHandler_Transitions(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
	}{
		{"send to client", "SendToClient", "send-to-client"},
		{"client approve", "ClientApprove", "client-approve"},
		{"send to direction", "SendToDirection", "send-to-direction"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quotes := new(MockQuoteUseCases)
			id := uuid.New()
			quotes.On(tt.method, mock.Anything, id).Return(sampleQuoteResponse("DEVIS_A_APPROUVER"), nil)

			w := perform(setupQuoteRouter(quotes), http.MethodPost, "/quotes/"+id.String()+"/"+tt.path, "")

			assert.Equal(t, http.StatusOK, w.Code)
			quotes.AssertExpectations(t)
		})
	}

	t.Run("invalid transition maps to 422", func(t *testing.T) {
		quotes := new(MockQuoteUseCases)
		id := uuid.New()
		quotes.On("ClientApprove", mock.Anything, id).
			Return(nil, shared.NewTransitionError("INVALID_QUOTE_STATUS", "Quote must be awaiting approval"))

		w := perform(setupQuoteRouter(quotes), http.MethodPost, "/quotes/"+id.String()+"/client-approve", "")

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("stale quote maps to 409", func(t *testing.T) {
		quotes := new(MockQuoteUseCases)
		id := uuid.New()
		quotes.On("SendToDirection", mock.Anything, id).Return(nil, shared.NewStaleAggregateError("modified"))

		w := perform(setupQuoteRouter(quotes), http.MethodPost, "/quotes/"+id.String()+"/send-to-direction", "")

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "CONCURRENT_MODIFICATION")
	})
}

func TestQuoteHandler_Cancel(t *testing.T) {
	quotes := new(MockQuoteUseCases)
	id := uuid.New()
	quotes.On("Cancel", mock.Anything, id, apptic.CancelQuoteRequest{Reason: "Client declined"}).
		Return(sampleQuoteResponse("ANNULER"), nil)
	r := setupQuoteRouter(quotes)

	w := perform(r, http.MethodPost, "/quotes/"+id.String()+"/cancel", `{"reason": "Client declined"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(r, http.MethodPost, "/quotes/"+id.String()+"/cancel", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	quotes.AssertNumberOfCalls(t, "Cancel", 1)
}

func TestQuoteHandler_GeneratePDF(t *testing.T) {
	quotes := new(MockQuoteUseCases)
	id := uuid.New()
	quotes.On("GeneratePDF", mock.Anything, id).Return(&apptic.DocumentResponse{
		Ref:       "quotes/DEV-2026-00001.pdf",
		URL:       "http://localhost/files/quotes%2FDEV-2026-00001.pdf",
		ExpiresAt: time.Now().Add(15 * time.Minute),
	}, nil)
	failing := uuid.New()
	quotes.On("GeneratePDF", mock.Anything, failing).Return(nil, shared.NewRemoteError("upload quote document", assert.AnError))
	r := setupQuoteRouter(quotes)

	w := perform(r, http.MethodPost, "/quotes/"+id.String()+"/pdf", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "quotes/DEV-2026-00001.pdf")

	w = perform(r, http.MethodPost, "/quotes/"+failing.String()+"/pdf", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestQuoteHandler_CreateTicket(t *testing.T) {
	quotes := new(MockQuoteUseCases)
	id := uuid.New()
	quotes.On("CreateTicket", mock.Anything, id).Return(&apptic.TicketResponse{ID: uuid.New(), QuoteID: id, Status: "CREER"}, nil)
	again := uuid.New()
	quotes.On("CreateTicket", mock.Anything, again).Return(nil, shared.NewConflictError("TICKET_ALREADY_CREATED", "Quote already has a ticket"))
	r := setupQuoteRouter(quotes)

	w := perform(r, http.MethodPost, "/quotes/"+id.String()+"/tickets", "")
	assert.Equal(t, http.StatusCreated, w.Code)

	w = perform(r, http.MethodPost, "/quotes/"+again.String()+"/tickets", "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestQuoteHandler_GetTicket(t *testing.T) {
	quotes := new(MockQuoteUseCases)
	id := uuid.New()
	ticketID := uuid.New()
	quotes.On("GetTicket", mock.Anything, id).Return(&apptic.TicketResponse{ID: ticketID, QuoteID: id, Status: "CREER"}, nil)
	missing := uuid.New()
	quotes.On("GetTicket", mock.Anything, missing).Return(nil, shared.ErrNotFound.WithMessage("No ticket for quote %s", missing))
	r := setupQuoteRouter(quotes)

	w := perform(r, http.MethodGet, "/quotes/"+id.String()+"/ticket", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), ticketID.String())

	w = perform(r, http.MethodGet, "/quotes/"+missing.String()+"/ticket", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
