package ticketing

// QuoteStatus represents the status of a quote (devis)
type QuoteStatus string

const (
	QuoteStatusCreated        QuoteStatus = "CREER"
	QuoteStatusAwaitingClient QuoteStatus = "DEVIS_A_APPROUVER"
	QuoteStatusClientApproved QuoteStatus = "DEVIS_APPROUVE"
	QuoteStatusCancelled      QuoteStatus = "ANNULER"
)

// IsValid checks if the status is a valid QuoteStatus
func (s QuoteStatus) IsValid() bool {
	switch s {
	case QuoteStatusCreated, QuoteStatusAwaitingClient, QuoteStatusClientApproved, QuoteStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of QuoteStatus
func (s QuoteStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s QuoteStatus) CanTransitionTo(target QuoteStatus) bool {
	switch s {
	case QuoteStatusCreated:
		return target == QuoteStatusAwaitingClient || target == QuoteStatusCancelled
	case QuoteStatusAwaitingClient:
		return target == QuoteStatusClientApproved || target == QuoteStatusCancelled
	case QuoteStatusClientApproved, QuoteStatusCancelled:
		return false
	}
	return false
}

// HeaderStatus represents the status of a ticket header (billet entête)
type HeaderStatus string

const (
	HeaderStatusCreated             HeaderStatus = "CREER"
	HeaderStatusReservationApproved HeaderStatus = "BC_CLIENT_A_APPROUVER"
	HeaderStatusEmitted             HeaderStatus = "BILLET_EMIS"
	HeaderStatusInvoiced            HeaderStatus = "FACTURE_EMISE"
	HeaderStatusSettled             HeaderStatus = "FACTURE_REGLEE"
	HeaderStatusCancelled           HeaderStatus = "ANNULER"
)

// IsValid checks if the status is a valid HeaderStatus
func (s HeaderStatus) IsValid() bool {
	switch s {
	case HeaderStatusCreated, HeaderStatusReservationApproved, HeaderStatusEmitted,
		HeaderStatusInvoiced, HeaderStatusSettled, HeaderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of HeaderStatus
func (s HeaderStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no further transition is possible
func (s HeaderStatus) IsTerminal() bool {
	return s == HeaderStatusSettled || s == HeaderStatusCancelled
}

// CanTransitionTo checks if the status can transition to the target status.
// Line-level gates are checked separately by the header operations.
func (s HeaderStatus) CanTransitionTo(target HeaderStatus) bool {
	switch s {
	case HeaderStatusCreated:
		return target == HeaderStatusReservationApproved || target == HeaderStatusCancelled
	case HeaderStatusReservationApproved:
		return target == HeaderStatusEmitted || target == HeaderStatusCancelled
	case HeaderStatusEmitted:
		return target == HeaderStatusInvoiced
	case HeaderStatusInvoiced:
		return target == HeaderStatusSettled
	case HeaderStatusSettled, HeaderStatusCancelled:
		return false
	}
	return false
}

// LineStatus represents the status of a ticket line (billet ligne)
type LineStatus string

const (
	LineStatusCreated           LineStatus = "CREER"
	LineStatusReserved          LineStatus = "FAIT"
	LineStatusRescheduled       LineStatus = "MODIFIER"
	LineStatusCancelled         LineStatus = "ANNULER"
	LineStatusEmitted           LineStatus = "CLOTURER"
	LineStatusEmissionCancelled LineStatus = "ANNULE_EMISSION"
)

// IsValid checks if the status is a valid LineStatus
func (s LineStatus) IsValid() bool {
	switch s {
	case LineStatusCreated, LineStatusReserved, LineStatusRescheduled,
		LineStatusCancelled, LineStatusEmitted, LineStatusEmissionCancelled:
		return true
	}
	return false
}

// String returns the string representation of LineStatus
func (s LineStatus) String() string {
	return string(s)
}

// CountsAsReserved reports whether the line satisfies the "all lines reserved" gate
func (s LineStatus) CountsAsReserved() bool {
	switch s {
	case LineStatusReserved, LineStatusRescheduled, LineStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status
func (s LineStatus) CanTransitionTo(target LineStatus) bool {
	switch s {
	case LineStatusCreated:
		return target == LineStatusReserved
	case LineStatusReserved:
		return target == LineStatusEmitted || target == LineStatusCancelled || target == LineStatusRescheduled
	case LineStatusRescheduled:
		return target == LineStatusReserved || target == LineStatusRescheduled
	case LineStatusEmitted:
		return target == LineStatusEmissionCancelled
	case LineStatusCancelled, LineStatusEmissionCancelled:
		return false
	}
	return false
}
