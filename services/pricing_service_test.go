package services

import (
	"testing"
	"time"

	"github.com/pulsegym/gym_membership/models"
	"github.com/stretchr/testify/assert"
)

func TestResolveStandardAmount(t *testing.T) {
	membership := &models.Membership{
		Type:           "basic",
		PriceMonthly:   29.99,
		PriceQuarterly: 80.99,
		PriceAnnual:    305.99,
	}

	amount, err := ResolveStandardAmount(membership, "1month")
	assert.NoError(t, err)
	assert.Equal(t, 29.99, amount)

	amount, err = ResolveStandardAmount(membership, "3month")
	assert.NoError(t, err)
	assert.Equal(t, 80.99, amount)

	amount, err = ResolveStandardAmount(membership, "1year")
	assert.NoError(t, err)
	assert.Equal(t, 305.99, amount)
}

func TestResolveStandardAmountUnknownOption(t *testing.T) {
	membership := &models.Membership{Type: "basic", PriceMonthly: 29.99}

	_, err := ResolveStandardAmount(membership, "2week")
	assert.ErrorIs(t, err, ErrUnknownPaymentOption)
}

func TestResolveCustomAmount(t *testing.T) {
	// Worked example: items (2 x 10.00) + (1 x 5.00) price out at 25.00
	// monthly; the quarterly term is 3 months at 10% off.
	pkg := models.CustomPackage{
		Items: []models.PackageItem{
			{Quantity: 2, Price: 10.00},
			{Quantity: 1, Price: 5.00},
		},
	}
	total := pkg.ComputeTotalPrice()
	assert.Equal(t, 25.00, total)

	assert.InDelta(t, 67.50, ResolveCustomAmount(total, "3month"), 0.001)
	assert.InDelta(t, 255.00, ResolveCustomAmount(total, "1year"), 0.001)
	assert.Equal(t, 25.00, ResolveCustomAmount(total, "1month"))
}

func TestCalculateEndDate(t *testing.T) {
	start := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2026, time.April, 15, 0, 0, 0, 0, time.UTC), CalculateEndDate(start, "1month"))
	assert.Equal(t, time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC), CalculateEndDate(start, "3month"))
	assert.Equal(t, time.Date(2027, time.March, 15, 0, 0, 0, 0, time.UTC), CalculateEndDate(start, "1year"))

	// Unknown options fall back to one month, mirroring booking creation
	// which validates the option before ever reaching this point.
	assert.Equal(t, time.Date(2026, time.April, 15, 0, 0, 0, 0, time.UTC), CalculateEndDate(start, "unknown"))
}

func TestCalculateEndDateIsDeterministic(t *testing.T) {
	start := time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC)

	first := CalculateEndDate(start, "3month")
	second := CalculateEndDate(start, "3month")
	assert.Equal(t, first, second)
}
