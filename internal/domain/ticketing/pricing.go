package ticketing

import (
	"github.com/agence/backoffice/internal/domain/shared"
	"github.com/agence/backoffice/internal/domain/shared/service"
	"github.com/agence/backoffice/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

var converter = service.NewCurrencyConversionService()

// CategoryPrice is a unit price in devise on both sides of the sale
type CategoryPrice struct {
	Compagnie decimal.Decimal `json:"compagnie"`
	Client    decimal.Decimal `json:"client"`
}

// PriceInputs are the caller-supplied unit prices for one pricing event
type PriceInputs struct {
	Currency     valueobject.Currency `json:"currency"`
	ExchangeRate decimal.Decimal      `json:"exchange_rate"`
	Billet       CategoryPrice        `json:"billet"`
	Service      CategoryPrice        `json:"service"`
	Penalite     CategoryPrice        `json:"penalite"`
}

// Amounts is one price projected in devise and Ariary, per unit and for the group
type Amounts struct {
	UnitDevise  decimal.Decimal `json:"unit_devise"`
	TotalDevise decimal.Decimal `json:"total_devise"`
	UnitAriary  decimal.Decimal `json:"unit_ariary"`
	TotalAriary decimal.Decimal `json:"total_ariary"`
}

// CategoryAmounts holds the company and client projections of one category
type CategoryAmounts struct {
	Compagnie Amounts `json:"compagnie"`
	Client    Amounts `json:"client"`
}

// Pricing is the full financial snapshot written by a reservation, emission
// or reschedule. Categories are converted independently of each other.
type Pricing struct {
	Currency     valueobject.Currency `json:"currency"`
	ExchangeRate decimal.Decimal      `json:"exchange_rate"`
	Count        int                  `json:"count"`
	Billet       CategoryAmounts      `json:"billet"`
	Service      CategoryAmounts      `json:"service"`
	Penalite     CategoryAmounts      `json:"penalite"`
	Commission   decimal.Decimal      `json:"commission"`
}

// CompagnieTotalAriary sums the company side over all categories
func (p Pricing) CompagnieTotalAriary() decimal.Decimal {
	return p.Billet.Compagnie.TotalAriary.
		Add(p.Service.Compagnie.TotalAriary).
		Add(p.Penalite.Compagnie.TotalAriary)
}

// ClientTotalAriary sums the client side over all categories
func (p Pricing) ClientTotalAriary() decimal.Decimal {
	return p.Billet.Client.TotalAriary.
		Add(p.Service.Client.TotalAriary).
		Add(p.Penalite.Client.TotalAriary)
}

// ComputePricing converts the inputs for count passengers.
// Commission is client total minus company total and must not be negative.
func ComputePricing(in PriceInputs, count int) (Pricing, error) {
	if _, err := valueobject.ParseCurrency(in.Currency.String()); err != nil {
		return Pricing{}, shared.ErrInvalidInput.WithMessage("%s", err.Error())
	}
	if err := service.ValidateExchangeRate(in.ExchangeRate); err != nil {
		return Pricing{}, err
	}

	billet, err := convertCategory(in.Billet, in.ExchangeRate, count)
	if err != nil {
		return Pricing{}, err
	}
	svc, err := convertCategory(in.Service, in.ExchangeRate, count)
	if err != nil {
		return Pricing{}, err
	}
	penalite, err := convertCategory(in.Penalite, in.ExchangeRate, count)
	if err != nil {
		return Pricing{}, err
	}

	p := Pricing{
		Currency:     in.Currency,
		ExchangeRate: in.ExchangeRate,
		Count:        count,
		Billet:       billet,
		Service:      svc,
		Penalite:     penalite,
	}
	p.Commission = p.ClientTotalAriary().Sub(p.CompagnieTotalAriary())
	if p.Commission.IsNegative() {
		return Pricing{}, ErrNegativeCommission.WithMessage(
			"Client total %s is below company total %s",
			p.ClientTotalAriary().StringFixed(valueobject.AriaryScale),
			p.CompagnieTotalAriary().StringFixed(valueobject.AriaryScale))
	}
	return p, nil
}

func convertCategory(price CategoryPrice, rate decimal.Decimal, count int) (CategoryAmounts, error) {
	compagnie, err := convertAmount(price.Compagnie, rate, count)
	if err != nil {
		return CategoryAmounts{}, err
	}
	client, err := convertAmount(price.Client, rate, count)
	if err != nil {
		return CategoryAmounts{}, err
	}
	return CategoryAmounts{Compagnie: compagnie, Client: client}, nil
}

func convertAmount(unit, rate decimal.Decimal, count int) (Amounts, error) {
	r, err := converter.Convert(unit, rate, count)
	if err != nil {
		return Amounts{}, err
	}
	return Amounts{
		UnitDevise:  r.UnitDevise,
		TotalDevise: r.TotalDevise,
		UnitAriary:  r.UnitAriary,
		TotalAriary: r.TotalAriary,
	}, nil
}
