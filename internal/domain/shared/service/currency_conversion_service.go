package service

import (
	"fmt"

	"github.com/agence/backoffice/internal/domain/shared"
	"github.com/agence/backoffice/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ConversionResult is the Ariary projection of a foreign-currency unit price
type ConversionResult struct {
	// UnitDevise is the unit price in the transaction currency (as supplied)
	UnitDevise decimal.Decimal
	// ExchangeRate is the rate applied (1 devise = ExchangeRate Ariary)
	ExchangeRate decimal.Decimal
	// Count is the number of passengers the unit price applies to
	Count int
	// UnitAriary = UnitDevise * ExchangeRate, rounded to Ariary scale
	UnitAriary decimal.Decimal
	// TotalDevise = UnitDevise * Count, exact
	TotalDevise decimal.Decimal
	// TotalAriary = UnitDevise * ExchangeRate * Count, rounded once from the exact product
	TotalAriary decimal.Decimal
}

// CurrencyConversionService converts devise prices to Ariary.
// It is stateless; every call is independent of every other.
type CurrencyConversionService struct{}

// NewCurrencyConversionService creates a new currency conversion service
func NewCurrencyConversionService() *CurrencyConversionService {
	return &CurrencyConversionService{}
}

// Convert derives the Ariary unit price and both totals.
//
// Fails with INVALID_INPUT when exchangeRate <= 0, count < 1 or unitDevise < 0.
func (s *CurrencyConversionService) Convert(
	unitDevise decimal.Decimal,
	exchangeRate decimal.Decimal,
	count int,
) (*ConversionResult, error) {
	if err := ValidateExchangeRate(exchangeRate); err != nil {
		return nil, err
	}
	if count < 1 {
		return nil, shared.ErrInvalidInput.WithMessage("Passenger count must be at least 1, got %d", count)
	}
	if unitDevise.IsNegative() {
		return nil, shared.ErrInvalidInput.WithMessage("Unit price cannot be negative, got %s", unitDevise.String())
	}

	n := decimal.NewFromInt(int64(count))
	exactUnitAriary := unitDevise.Mul(exchangeRate)

	return &ConversionResult{
		UnitDevise:   unitDevise,
		ExchangeRate: exchangeRate,
		Count:        count,
		UnitAriary:   valueobject.RoundAriary(exactUnitAriary),
		TotalDevise:  unitDevise.Mul(n),
		TotalAriary:  valueobject.RoundAriary(exactUnitAriary.Mul(n)),
	}, nil
}

// ValidateExchangeRate rejects zero and negative rates
func ValidateExchangeRate(rate decimal.Decimal) error {
	if !rate.IsPositive() {
		return shared.ErrInvalidInput.WithMessage("Exchange rate must be positive, got %s", rate.String())
	}
	return nil
}

// String renders a result for logs
func (r *ConversionResult) String() string {
	return fmt.Sprintf("%s x %d @ %s = %s MGA", r.UnitDevise, r.Count, r.ExchangeRate, r.TotalAriary.StringFixed(valueobject.AriaryScale))
}
