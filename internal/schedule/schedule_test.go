package schedule

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swapdesk-backend/internal/constants"
	"swapdesk-backend/internal/pkg/apperrors"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParse_NamedPeriods(t *testing.T) {
	cases := map[string]int{
		"Monthly":       1,
		"quarterly":     3,
		"Semi-annually": 6,
		"semiannually":  6,
		"Half-Yearly":   6,
		"Annually":      12,
		"yearly":        12,
	}
	for input, want := range cases {
		got, err := Parse(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}
}

func TestParse_MonthShorthand(t *testing.T) {
	got, err := Parse("6M")
	require.NoError(t, err)
	assert.Equal(t, 6, got)

	got, err = Parse("12m")
	require.NoError(t, err)
	assert.Equal(t, 12, got)
}

func TestParse_EmptyDefaultsToQuarterly(t *testing.T) {
	got, err := Parse("")
	require.NoError(t, err)
	assert.Equal(t, 3, got)

	got, err = Parse("   ")
	require.NoError(t, err)
	assert.Equal(t, 3, got)
}

func TestParse_Invalid(t *testing.T) {
	for _, input := range []string{"banana", "3W", "xM", "-2M", "0M"} {
		_, err := Parse(input)
		assert.ErrorIs(t, err, apperrors.ErrInvalidScheduleFormat, input)
	}
}

func TestPaymentDates_QuarterlyOverOneYear(t *testing.T) {
	start := date(2025, time.January, 15)
	maturity := date(2026, time.January, 15)

	dates := PaymentDates(start, maturity, 3)
	require.Len(t, dates, 4)
	assert.Equal(t, date(2025, time.April, 15), dates[0])
	assert.Equal(t, date(2025, time.July, 15), dates[1])
	assert.Equal(t, date(2025, time.October, 15), dates[2])
	assert.Equal(t, date(2026, time.January, 15), dates[3])
}

func TestPaymentDates_StrictlyIncreasingAndBounded(t *testing.T) {
	start := date(2025, time.March, 1)
	maturity := date(2030, time.March, 1)

	dates := PaymentDates(start, maturity, 6)
	require.Len(t, dates, 10) // floor(60 / 6)
	prev := start
	for _, d := range dates {
		assert.True(t, d.After(prev))
		assert.False(t, d.After(maturity))
		assert.Equal(t, prev.AddDate(0, 6, 0), d)
		prev = d
	}
}

func TestPaymentDates_MonthEndClampsInsteadOfRollingOver(t *testing.T) {
	start := date(2025, time.January, 31)
	maturity := date(2025, time.July, 31)

	dates := PaymentDates(start, maturity, 1)
	require.Len(t, dates, 6) // floor(6 / 1)
	assert.Equal(t, date(2025, time.February, 28), dates[0])
	assert.Equal(t, date(2025, time.March, 28), dates[1])
	assert.Equal(t, date(2025, time.April, 28), dates[2])
	assert.Equal(t, date(2025, time.July, 28), dates[5])
}

func TestPaymentDates_LeapYearFebruary(t *testing.T) {
	start := date(2024, time.January, 31)
	maturity := date(2024, time.March, 31)

	dates := PaymentDates(start, maturity, 1)
	require.Len(t, dates, 2)
	assert.Equal(t, date(2024, time.February, 29), dates[0])
	assert.Equal(t, date(2024, time.March, 29), dates[1])
}

func TestPaymentDates_FirstStepPastMaturity(t *testing.T) {
	start := date(2025, time.January, 1)
	maturity := date(2025, time.February, 1)

	assert.Empty(t, PaymentDates(start, maturity, 3))
}

func TestCashflowValue_FixedLeg(t *testing.T) {
	// 10,000,000 at 3.5% quarterly -> 87,500.00 per period
	v := CashflowValue(constants.LegTypeFixed, decimal.NewFromInt(10_000_000), 3.5, 3)
	assert.True(t, v.Equal(decimal.RequireFromString("87500.00")), v.String())
}

func TestCashflowValue_RoundsHalfUp(t *testing.T) {
	// 20 * 0.003 * 1/12 = 0.005 exactly -> rounds up to 0.01
	v := CashflowValue(constants.LegTypeFixed, decimal.NewFromInt(20), 0.3, 1)
	assert.True(t, v.Equal(decimal.RequireFromString("0.01")), v.String())
}

func TestCashflowValue_FloatingLegIsZero(t *testing.T) {
	v := CashflowValue(constants.LegTypeFloating, decimal.NewFromInt(5_000_000), 2.1, 3)
	assert.True(t, v.IsZero())
}

func TestCashflowValue_ZeroInputs(t *testing.T) {
	assert.True(t, CashflowValue(constants.LegTypeFixed, decimal.Zero, 3.5, 3).IsZero())
	assert.True(t, CashflowValue(constants.LegTypeFixed, decimal.NewFromInt(1_000_000), 0, 3).IsZero())
	assert.True(t, CashflowValue("", decimal.NewFromInt(1_000_000), 3.5, 3).IsZero())
}
