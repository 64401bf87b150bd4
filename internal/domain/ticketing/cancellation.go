package ticketing

import (
	"strings"

	"github.com/agence/backoffice/internal/domain/shared/service"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CancellationType says which fees a cancellation or change carries
type CancellationType string

const (
	CancellationSimple            CancellationType = "SIMPLE"
	CancellationCommission        CancellationType = "COM"
	CancellationPenalty           CancellationType = "PEN"
	CancellationCommissionPenalty CancellationType = "COM_PEN"
)

// IsValid checks if the type is a known CancellationType
func (t CancellationType) IsValid() bool {
	switch t {
	case CancellationSimple, CancellationCommission, CancellationPenalty, CancellationCommissionPenalty:
		return true
	}
	return false
}

// String returns the string representation of CancellationType
func (t CancellationType) String() string {
	return string(t)
}

// CancellationTerms is the payload of a cancellation or change. The concrete
// type fixes which fees are present: the commission variants always carry a
// commission, the penalty variants always carry a pénalité.
type CancellationTerms interface {
	Type() CancellationType
	fees() (commission, penalite *CategoryPrice)
}

// SimpleCancellation carries no fees, only the condition text
type SimpleCancellation struct{}

// Type returns SIMPLE
func (SimpleCancellation) Type() CancellationType { return CancellationSimple }

func (SimpleCancellation) fees() (*CategoryPrice, *CategoryPrice) { return nil, nil }

// CommissionCancellation retains an agency commission
type CommissionCancellation struct {
	Commission CategoryPrice
}

// Type returns COM
func (CommissionCancellation) Type() CancellationType { return CancellationCommission }

func (c CommissionCancellation) fees() (*CategoryPrice, *CategoryPrice) { return &c.Commission, nil }

// PenaltyCancellation passes on an airline penalty
type PenaltyCancellation struct {
	Penalite CategoryPrice
}

// Type returns PEN
func (PenaltyCancellation) Type() CancellationType { return CancellationPenalty }

func (c PenaltyCancellation) fees() (*CategoryPrice, *CategoryPrice) { return nil, &c.Penalite }

// CommissionPenaltyCancellation carries both
type CommissionPenaltyCancellation struct {
	Commission CategoryPrice
	Penalite   CategoryPrice
}

// Type returns COM_PEN
func (CommissionPenaltyCancellation) Type() CancellationType { return CancellationCommissionPenalty }

func (c CommissionPenaltyCancellation) fees() (*CategoryPrice, *CategoryPrice) {
	return &c.Commission, &c.Penalite
}

// NewCancellationTerms builds the variant for t from optional parts.
// A part required by t that is nil is a validation error; parts t does not
// use are ignored.
func NewCancellationTerms(t CancellationType, commission, penalite *CategoryPrice) (CancellationTerms, error) {
	switch t {
	case CancellationSimple:
		return SimpleCancellation{}, nil
	case CancellationCommission:
		if commission == nil {
			return nil, ErrInvalidCancellation.WithMessage("Cancellation type %s requires commission amounts", t)
		}
		return CommissionCancellation{Commission: *commission}, nil
	case CancellationPenalty:
		if penalite == nil {
			return nil, ErrInvalidCancellation.WithMessage("Cancellation type %s requires pénalité amounts", t)
		}
		return PenaltyCancellation{Penalite: *penalite}, nil
	case CancellationCommissionPenalty:
		if commission == nil || penalite == nil {
			return nil, ErrInvalidCancellation.WithMessage("Cancellation type %s requires commission and pénalité amounts", t)
		}
		return CommissionPenaltyCancellation{Commission: *commission, Penalite: *penalite}, nil
	}
	return nil, ErrInvalidCancellation.WithMessage("Unknown cancellation type %q", t)
}

// Fees is the converted, persisted form of CancellationTerms
type Fees struct {
	Type         CancellationType `json:"type"`
	ExchangeRate decimal.Decimal  `json:"exchange_rate"`
	Commission   *CategoryAmounts `json:"commission,omitempty"`
	Penalite     *CategoryAmounts `json:"penalite,omitempty"`
}

// computeFees converts the fee parts of terms for count passengers.
// The exchange rate is only checked when there is something to convert.
func computeFees(terms CancellationTerms, rate decimal.Decimal, count int) (*Fees, error) {
	if terms == nil {
		return nil, ErrInvalidCancellation.WithMessage("Cancellation terms are required")
	}
	fees := &Fees{Type: terms.Type()}
	commission, penalite := terms.fees()
	if commission == nil && penalite == nil {
		return fees, nil
	}
	if err := service.ValidateExchangeRate(rate); err != nil {
		return nil, err
	}
	fees.ExchangeRate = rate

	if commission != nil {
		amounts, err := convertCategory(*commission, rate, count)
		if err != nil {
			return nil, err
		}
		fees.Commission = &amounts
	}
	if penalite != nil {
		amounts, err := convertCategory(*penalite, rate, count)
		if err != nil {
			return nil, err
		}
		fees.Penalite = &amounts
	}
	return fees, nil
}

// CancellationReason references the reason catalog and/or carries free text
type CancellationReason struct {
	ID   *uuid.UUID `json:"id,omitempty"`
	Text string     `json:"text,omitempty"`
}

// IsEmpty reports whether neither a catalog id nor text is set
func (r CancellationReason) IsEmpty() bool {
	return (r.ID == nil || *r.ID == uuid.Nil) && strings.TrimSpace(r.Text) == ""
}
