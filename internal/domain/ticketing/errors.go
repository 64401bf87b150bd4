package ticketing

import "github.com/agence/backoffice/internal/domain/shared"

// Line transition failures
var (
	ErrAlreadyReserved      = shared.NewTransitionError("ALREADY_RESERVED", "Line is already reserved")
	ErrNotReservedYet       = shared.NewTransitionError("NOT_RESERVED_YET", "Line must be reserved before emission")
	ErrHeaderNotApproved    = shared.NewTransitionError("HEADER_NOT_APPROVED", "Ticket header reservation has not been approved")
	ErrLineNotCancellable   = shared.NewTransitionError("LINE_NOT_CANCELLABLE", "Only a reserved, not yet emitted line can be cancelled")
	ErrLineNotEmittedYet    = shared.NewTransitionError("LINE_NOT_EMITTED_YET", "Only an emitted line can have its emission cancelled")
	ErrLineNotReschedulable = shared.NewTransitionError("LINE_NOT_RESCHEDULABLE", "Only a reserved or rescheduled line can be rescheduled")
)

// Header transition failures
var (
	ErrNotAllLinesReserved  = shared.NewTransitionError("NOT_ALL_LINES_RESERVED", "Every line must be reserved or cancelled")
	ErrNotAllLinesEmitted   = shared.NewTransitionError("NOT_ALL_LINES_EMITTED", "Every line must be emitted")
	ErrHeaderNotEmitted     = shared.NewTransitionError("HEADER_NOT_EMITTED", "Tickets must be emitted before invoicing")
	ErrInvoiceNotIssued     = shared.NewTransitionError("INVOICE_NOT_ISSUED", "Client invoice has not been issued")
	ErrHeaderNotCancellable = shared.NewTransitionError("HEADER_NOT_CANCELLABLE", "Ticket reservation cannot be cancelled in its current state")
	ErrHeaderNotEmittedYet  = shared.NewTransitionError("HEADER_NOT_EMITTED_YET", "Ticket emission can only be cancelled once tickets are emitted")
	ErrHeaderTerminal       = shared.NewTransitionError("HEADER_TERMINAL", "Ticket is closed")
	ErrInvalidHeaderStatus  = shared.NewTransitionError("INVALID_HEADER_STATUS", "Operation not allowed in the ticket's current status")
	ErrLineNotFound         = shared.NewNotFoundError("LINE_NOT_FOUND", "Line does not belong to this ticket")
)

// Quote transition failures
var (
	ErrQuoteNotSent              = shared.NewTransitionError("QUOTE_NOT_SENT", "Quote has not been sent to the client")
	ErrQuoteAlreadySent          = shared.NewTransitionError("QUOTE_ALREADY_SENT", "Quote has already left the draft status")
	ErrQuoteNotApproved          = shared.NewTransitionError("QUOTE_NOT_APPROVED", "Quote has not been approved by the client")
	ErrAlreadyTerminalOrApproved = shared.NewTransitionError("ALREADY_TERMINAL_OR_APPROVED", "Quote is already approved or cancelled")
	ErrTicketAlreadyCreated      = shared.NewConflictError("TICKET_ALREADY_CREATED", "A ticket has already been created from this quote")
	ErrReferenceTaken            = shared.NewConflictError("REFERENCE_TAKEN", "Quote reference is already used")
)

// Input failures
var (
	ErrInvoiceRefRequired   = shared.NewValidationError("INVOICE_REF_REQUIRED", "Client invoice reference is required")
	ErrPassengersRequired   = shared.NewValidationError("PASSENGERS_REQUIRED", "At least one passenger is required")
	ErrReservationRequired  = shared.NewValidationError("RESERVATION_NUMBER_REQUIRED", "Reservation number is required")
	ErrTicketNumberRequired = shared.NewValidationError("TICKET_NUMBER_REQUIRED", "Ticket number is required")
	ErrReasonRequired       = shared.NewValidationError("REASON_REQUIRED", "Cancellation reason is required")
	ErrNegativeCommission   = shared.NewValidationError("NEGATIVE_COMMISSION", "Client total must not be below the company total")
	ErrInvalidFlight        = shared.NewValidationError("INVALID_FLIGHT", "Flight details are incomplete")
	ErrInvalidCancellation  = shared.NewValidationError("INVALID_CANCELLATION", "Cancellation payload does not match its type")
	ErrNoLinesSelected      = shared.NewValidationError("NO_LINES_SELECTED", "At least one line must be selected")
	ErrQuoteLinesRequired   = shared.NewValidationError("QUOTE_LINES_REQUIRED", "A quote needs at least one flight line")
	ErrReferenceRequired    = shared.NewValidationError("REFERENCE_REQUIRED", "Quote reference is required")
)
