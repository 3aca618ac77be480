package services

import (
	"errors"
	"time"

	"github.com/pulsegym/gym_membership/models"
)

// Term multipliers for custom packages, applied to the monthly total.
// Quarterly is 3 months at 10% off, annual is 12 months at 15% off.
// This is the canonical discount schedule for anything that charges money.
const (
	customQuarterlyMultiplier = 2.7
	customAnnualMultiplier    = 10.2
)

var ErrUnknownPaymentOption = errors.New("unknown payment option")

// ResolveStandardAmount looks the amount up in the tier's rate row.
// The three explicit rates are authoritative; no discounting applies.
func ResolveStandardAmount(membership *models.Membership, paymentOption string) (float64, error) {
	switch paymentOption {
	case "1month":
		return membership.PriceMonthly, nil
	case "3month":
		return membership.PriceQuarterly, nil
	case "1year":
		return membership.PriceAnnual, nil
	default:
		return 0, ErrUnknownPaymentOption
	}
}

// ResolveCustomAmount prices a custom package for a billing term from
// its monthly total.
func ResolveCustomAmount(totalPrice float64, paymentOption string) float64 {
	switch paymentOption {
	case "3month":
		return totalPrice * customQuarterlyMultiplier
	case "1year":
		return totalPrice * customAnnualMultiplier
	default:
		return totalPrice
	}
}

// CalculateEndDate derives the membership end from the start and the
// billing term. The end date is never set independently of this rule.
func CalculateEndDate(startDate time.Time, paymentOption string) time.Time {
	switch paymentOption {
	case "3month":
		return startDate.AddDate(0, 3, 0)
	case "1year":
		return startDate.AddDate(1, 0, 0)
	default:
		return startDate.AddDate(0, 1, 0)
	}
}
