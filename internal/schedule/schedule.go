// Package schedule turns calculation-period strings into month intervals and
// derives payment dates and per-period cashflow amounts from them. Everything
// here is pure; generation is deterministic for the same inputs.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"swapdesk-backend/internal/constants"
	"swapdesk-backend/internal/pkg/apperrors"
)

// DefaultMonths is the interval used when no schedule is supplied (quarterly).
const DefaultMonths = 3

var namedPeriods = map[string]int{
	"monthly":       1,
	"quarterly":     3,
	"semi-annually": 6,
	"semiannually":  6,
	"half-yearly":   6,
	"annually":      12,
	"yearly":        12,
}

// Parse converts a period string to a month interval. Recognized inputs are
// the named periods above (case-insensitive) and "<n>M" shorthand. Empty
// input defaults to quarterly.
func Parse(text string) (int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return DefaultMonths, nil
	}
	if months, ok := namedPeriods[strings.ToLower(text)]; ok {
		return months, nil
	}
	if strings.HasSuffix(text, "M") || strings.HasSuffix(text, "m") {
		months, err := strconv.Atoi(text[:len(text)-1])
		if err != nil || months <= 0 {
			return 0, fmt.Errorf("%w: %q", apperrors.ErrInvalidScheduleFormat, text)
		}
		return months, nil
	}
	return 0, fmt.Errorf("%w: %q (supported: Monthly, Quarterly, Semi-annually, Annually, or 1M, 3M, 6M, 12M)",
		apperrors.ErrInvalidScheduleFormat, text)
}

// PaymentDates steps from start+months to maturity inclusive in fixed month
// intervals. The first stepped date already past maturity yields no dates.
// Stepping clamps to the last day of shorter months, so a month-end start
// never rolls into the following month (Jan 31 + 1M = Feb 28, then Mar 28).
func PaymentDates(start, maturity time.Time, months int) []time.Time {
	var dates []time.Time
	for d := addMonthsClamped(start, months); !d.After(maturity); d = addMonthsClamped(d, months) {
		dates = append(dates, d)
	}
	return dates
}

// addMonthsClamped advances by whole months, clamping the day to the target
// month's length instead of letting time.AddDate normalize the overflow into
// the next month.
func addMonthsClamped(d time.Time, months int) time.Time {
	first := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, d.Location()).AddDate(0, months, 0)
	day := d.Day()
	if last := first.AddDate(0, 1, -1).Day(); day > last {
		day = last
	}
	return first.AddDate(0, 0, day-1)
}

// CashflowValue computes one period's payment for a leg. Fixed legs pay
// notional * rate/100 * months/12 rounded half-up to 2 dp, with the
// percent-to-decimal division carried at 6 dp. Floating legs have no fixing
// known at generation time and value to zero, as does a leg missing its
// rate type or notional.
func CashflowValue(legType string, notional decimal.Decimal, ratePercent float64, months int) decimal.Decimal {
	if legType != constants.LegTypeFixed {
		return decimal.Zero
	}
	rate := decimal.NewFromFloat(ratePercent).DivRound(decimal.NewFromInt(100), 6)
	return notional.
		Mul(rate).
		Mul(decimal.NewFromInt(int64(months))).
		DivRound(decimal.NewFromInt(12), 2)
}
