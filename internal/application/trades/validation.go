package trades

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"swapdesk-backend/internal/constants"
	"swapdesk-backend/internal/pkg/apperrors"
)

// ValidationResult accumulates business-rule violations so the caller gets
// the complete list in one round trip instead of failing on the first.
type ValidationResult struct {
	Errors []string
}

func (r *ValidationResult) Add(msg string) {
	r.Errors = append(r.Errors, msg)
}

func (r *ValidationResult) Merge(other ValidationResult) {
	r.Errors = append(r.Errors, other.Errors...)
}

func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Err converts the result into a ValidationError, or nil when valid.
func (r *ValidationResult) Err() error {
	if r.Valid() {
		return nil
	}
	return apperrors.Validation(r.Errors)
}

// maxTradeAge is how far in the past a trade date may lie before the
// booking is considered stale.
const maxTradeAge = 30 * 24 * time.Hour

// ValidateBusinessRules evaluates every booking rule and reports all
// violations together: date ordering, staleness, leg count and consistency,
// and mandatory reference data presence.
func ValidateBusinessRules(req *TradeRequest, now time.Time) ValidationResult {
	var result ValidationResult

	if req.TradeDate == nil {
		result.Add("Trade date is required")
	} else {
		if req.StartDate != nil && req.StartDate.Before(req.TradeDate.Time) {
			result.Add("Start date cannot be before trade date")
		}
		if req.MaturityDate != nil {
			beforeStart := req.StartDate != nil && req.MaturityDate.Before(req.StartDate.Time)
			if beforeStart || req.MaturityDate.Before(req.TradeDate.Time) {
				result.Add("Maturity date cannot be before start date or trade date")
			}
		}
		if req.TradeDate.Before(now.Add(-maxTradeAge)) {
			result.Add("Trade date cannot be more than 30 days in the past")
		}
	}

	if len(req.Legs) != 2 {
		result.Add("Trade must have exactly 2 legs")
	} else {
		result.Merge(ValidateLegConsistency(req.Legs))
	}

	if req.BookName == "" && req.BookID == nil {
		result.Add("Book is required")
	}
	if req.CounterpartyName == "" && req.CounterpartyID == nil {
		result.Add("Counterparty is required")
	}

	return result
}

// ValidateLegConsistency checks the leg pair: identical calculation
// schedules, opposite pay/receive directions, an index on every floating
// leg and a non-zero rate on every fixed leg.
func ValidateLegConsistency(legs []LegRequest) ValidationResult {
	var result ValidationResult

	if len(legs) != 2 {
		result.Add("Trade must have exactly 2 legs")
		return result
	}
	leg1, leg2 := legs[0], legs[1]

	if leg1.Schedule != "" && leg2.Schedule != "" && leg1.Schedule != leg2.Schedule {
		result.Add("Both legs must reference the same calculation schedule")
	}

	if leg1.PayReceive != "" && leg2.PayReceive != "" &&
		strings.EqualFold(leg1.PayReceive, leg2.PayReceive) {
		result.Add("Legs must have opposite pay/receive flags")
	}

	for _, leg := range []LegRequest{leg1, leg2} {
		if strings.EqualFold(leg.LegType, constants.LegTypeFloating) && leg.IndexName == "" {
			result.Add("Floating leg must have an index specified")
		}
		if strings.EqualFold(leg.LegType, constants.LegTypeFixed) && leg.Rate == 0 {
			result.Add("Fixed leg must have a valid rate")
		}
	}

	return result
}

var settlementPattern = regexp.MustCompile(`^[a-zA-Z0-9.,;:()\-\s]+$`)

// ValidateSettlementInstructions checks optional settlement text: 10-500
// characters from a restricted alphabet. Empty input is fine.
func ValidateSettlementInstructions(instructions string) error {
	trimmed := strings.TrimSpace(instructions)
	if trimmed == "" {
		return nil
	}
	if n := utf8.RuneCountInString(trimmed); n < 10 || n > 500 {
		return apperrors.Validation([]string{"Settlement instructions must be between 10 and 500 characters"})
	}
	if !settlementPattern.MatchString(trimmed) {
		return apperrors.Validation([]string{"Settlement instructions contain invalid characters"})
	}
	return nil
}
