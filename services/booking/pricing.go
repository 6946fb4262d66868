package booking

import (
	"fmt"
	"math"
	"time"

	"workhive/models"
)

// Dual commission model: the buyer pays base + 5%, the host receives base - 5%,
// the platform keeps both fees.
const (
	buyerFeeRate = 0.05
	hostFeeRate  = 0.05
)

// ComputeBreakdown splits a base amount into buyer total, host payout and
// platform revenue. All amounts are rounded to cents.
func ComputeBreakdown(baseAmount float64) models.PaymentBreakdown {
	buyerFee := roundCents(baseAmount * buyerFeeRate)
	hostFee := roundCents(baseAmount * hostFeeRate)

	return models.PaymentBreakdown{
		BaseAmount:      baseAmount,
		BuyerFeeAmount:  buyerFee,
		BuyerTotal:      roundCents(baseAmount + buyerFee),
		HostFeeAmount:   hostFee,
		HostNetPayout:   roundCents(baseAmount - hostFee),
		PlatformRevenue: roundCents(buyerFee + hostFee),
	}
}

// ComputeHours returns the duration between two "HH:MM" times in hours.
func ComputeHours(startTime, endTime string) (float64, error) {
	start, err := time.Parse("15:04", startTime)
	if err != nil {
		return 0, fmt.Errorf("invalid start time %q: %w", startTime, err)
	}
	end, err := time.Parse("15:04", endTime)
	if err != nil {
		return 0, fmt.Errorf("invalid end time %q: %w", endTime, err)
	}
	hours := end.Sub(start).Hours()
	if hours <= 0 {
		return 0, fmt.Errorf("end time %s is not after start time %s", endTime, startTime)
	}
	return hours, nil
}

// AmountCents converts a decimal amount to integer cents for the processor.
func AmountCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
