package service

import (
	"errors"
	"testing"

	"github.com/agence/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCurrencyConversionService_Convert(t *testing.T) {
	svc := NewCurrencyConversionService()

	tests := []struct {
		name            string
		unitDevise      decimal.Decimal
		rate            decimal.Decimal
		count           int
		wantUnitAriary  string
		wantTotalDevise string
		wantTotalAriary string
	}{
		{
			name:            "two passengers at 100 EUR, rate 4500",
			unitDevise:      d("100"),
			rate:            d("4500"),
			count:           2,
			wantUnitAriary:  "450000",
			wantTotalDevise: "200",
			wantTotalAriary: "900000",
		},
		{
			name:            "zero price is allowed",
			unitDevise:      decimal.Zero,
			rate:            d("4800"),
			count:           3,
			wantUnitAriary:  "0",
			wantTotalDevise: "0",
			wantTotalAriary: "0",
		},
		{
			name:            "fractional rate rounds ariary half away from zero",
			unitDevise:      d("0.01"),
			rate:            d("0.5"),
			count:           1,
			wantUnitAriary:  "0.01",
			wantTotalDevise: "0.01",
			wantTotalAriary: "0.01",
		},
		{
			name:            "total is rounded from the exact product, not from the rounded unit",
			unitDevise:      d("0.003"),
			rate:            d("1"),
			count:           10,
			wantUnitAriary:  "0",
			wantTotalDevise: "0.03",
			wantTotalAriary: "0.03",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.Convert(tt.unitDevise, tt.rate, tt.count)
			require.NoError(t, err)
			assert.True(t, result.UnitAriary.Equal(d(tt.wantUnitAriary)), "unit ariary: %s", result.UnitAriary)
			assert.True(t, result.TotalDevise.Equal(d(tt.wantTotalDevise)), "total devise: %s", result.TotalDevise)
			assert.True(t, result.TotalAriary.Equal(d(tt.wantTotalAriary)), "total ariary: %s", result.TotalAriary)
			assert.Equal(t, tt.count, result.Count)
		})
	}
}

func TestCurrencyConversionService_Convert_InvalidInput(t *testing.T) {
	svc := NewCurrencyConversionService()

	tests := []struct {
		name  string
		unit  decimal.Decimal
		rate  decimal.Decimal
		count int
	}{
		{"zero rate", d("100"), decimal.Zero, 1},
		{"negative rate", d("100"), d("-1"), 1},
		{"zero count", d("100"), d("4500"), 0},
		{"negative count", d("100"), d("4500"), -2},
		{"negative unit price", d("-0.01"), d("4500"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.Convert(tt.unit, tt.rate, tt.count)
			assert.Nil(t, result)
			require.Error(t, err)
			assert.True(t, errors.Is(err, shared.ErrInvalidInput))
			assert.Equal(t, shared.KindValidation, shared.KindOf(err))
		})
	}
}

func TestCurrencyConversionService_TotalMatchesProduct(t *testing.T) {
	svc := NewCurrencyConversionService()
	tolerance := d("0.005")

	units := []string{"0", "1", "12.34", "99.999", "1250.5"}
	rates := []string{"0.1", "1", "4500", "4871.2345"}
	counts := []int{1, 2, 7, 40}

	for _, u := range units {
		for _, r := range rates {
			for _, c := range counts {
				result, err := svc.Convert(d(u), d(r), c)
				require.NoError(t, err)
				exact := d(u).Mul(d(r)).Mul(decimal.NewFromInt(int64(c)))
				assert.True(t, result.TotalAriary.Sub(exact).Abs().LessThanOrEqual(tolerance),
					"%s x %s x %d: got %s want %s", u, r, c, result.TotalAriary, exact)
			}
		}
	}
}

func TestCurrencyConversionService_Monotonic(t *testing.T) {
	svc := NewCurrencyConversionService()

	base, err := svc.Convert(d("100"), d("4500"), 2)
	require.NoError(t, err)

	moreUnit, err := svc.Convert(d("101"), d("4500"), 2)
	require.NoError(t, err)
	moreRate, err := svc.Convert(d("100"), d("4501"), 2)
	require.NoError(t, err)
	moreCount, err := svc.Convert(d("100"), d("4500"), 3)
	require.NoError(t, err)

	assert.True(t, moreUnit.TotalAriary.GreaterThanOrEqual(base.TotalAriary))
	assert.True(t, moreRate.TotalAriary.GreaterThanOrEqual(base.TotalAriary))
	assert.True(t, moreCount.TotalAriary.GreaterThanOrEqual(base.TotalAriary))
}

func TestCurrencyConversionService_Idempotent(t *testing.T) {
	svc := NewCurrencyConversionService()

	first, err := svc.Convert(d("123.45"), d("4711.5"), 4)
	require.NoError(t, err)
	second, err := svc.Convert(d("123.45"), d("4711.5"), 4)
	require.NoError(t, err)

	assert.Equal(t, first.TotalAriary.String(), second.TotalAriary.String())
	assert.Equal(t, first.UnitAriary.String(), second.UnitAriary.String())
}
