// Package summary computes desk-level aggregations over the active trade
// population: status and counterparty breakdowns, notional totals, and net
// and gross exposure. Results are cached in Redis for a short TTL since the
// blotter polls these endpoints.
package summary

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"swapdesk-backend/internal/domain"
)

const (
	tradeSummaryKey = "summary:trades"
	dailySummaryKey = "summary:daily:"
)

// DefaultCacheTTL keeps summaries fresh enough for a polling blotter
// without recomputing on every request.
const DefaultCacheTTL = 60 * time.Second

type Service struct {
	DB       *gorm.DB
	Redis    *redis.Client
	CacheTTL time.Duration
}

// TradeSummary is the aggregate view over all active trade versions.
type TradeSummary struct {
	TotalTrades int64 `json:"totalTrades"`

	TradesByStatus       map[string]int64 `json:"tradesByStatus"`
	TradesByCounterparty map[string]int64 `json:"tradesByCounterparty"`
	TradesByType         map[string]int64 `json:"tradesByType"`
	TradesBySubType      map[string]int64 `json:"tradesBySubType"`
	TradesByCurrency     map[string]int64 `json:"tradesByCurrency"`

	NotionalByCurrency     map[string]decimal.Decimal `json:"notionalByCurrency"`
	NotionalByType         map[string]decimal.Decimal `json:"notionalByType"`
	NotionalByCounterparty map[string]decimal.Decimal `json:"notionalByCounterparty"`

	NetExposureByCounterparty   map[string]decimal.Decimal `json:"netExposureByCounterparty"`
	GrossExposureByCounterparty map[string]decimal.Decimal `json:"grossExposureByCounterparty"`
	NetExposureByCurrency       map[string]decimal.Decimal `json:"netExposureByCurrency"`
	GrossExposureByCurrency     map[string]decimal.Decimal `json:"grossExposureByCurrency"`
	NetExposureByBook           map[string]decimal.Decimal `json:"netExposureByBook"`
	GrossExposureByBook         map[string]decimal.Decimal `json:"grossExposureByBook"`

	TotalNetExposure   decimal.Decimal `json:"totalNetExposure"`
	TotalGrossExposure decimal.Decimal `json:"totalGrossExposure"`
}

// DailySummary reports booking activity for one trade date against the
// prior date.
type DailySummary struct {
	Date string `json:"date"`

	TodayTradeCount      int64           `json:"todayTradeCount"`
	TodayTotalNotional   decimal.Decimal `json:"todayTotalNotional"`
	TodayAverageNotional decimal.Decimal `json:"todayAverageNotional"`

	YesterdayTradeCount    int64           `json:"yesterdayTradeCount"`
	YesterdayTotalNotional decimal.Decimal `json:"yesterdayTotalNotional"`

	// Zero when yesterday had no trades, otherwise (today-yesterday)/yesterday*100.
	DayOverDayChangePercentage decimal.Decimal `json:"dayOverDayChangePercentage"`

	NewToday        int64 `json:"newToday"`
	AmendedToday    int64 `json:"amendedToday"`
	TerminatedToday int64 `json:"terminatedToday"`
	CancelledToday  int64 `json:"cancelledToday"`

	// Figures scoped to the requesting trader; zero when the caller is not
	// a trader on any of today's tickets.
	MyTradeCount    int64           `json:"myTradeCount"`
	MyTotalNotional decimal.Decimal `json:"myTotalNotional"`

	TradesByTrader   map[string]int64           `json:"tradesByTrader"`
	NotionalByTrader map[string]decimal.Decimal `json:"notionalByTrader"`
	TradesByInputter map[string]int64           `json:"tradesByInputter"`
	TradesByBook     map[string]int64           `json:"tradesByBook"`
	NotionalByBook   map[string]decimal.Decimal `json:"notionalByBook"`

	StatusByBook map[string]map[string]int64 `json:"statusByBook"`
}

// TradeSummary aggregates over every active trade version, serving from
// cache when a fresh copy exists.
func (s *Service) TradeSummary(ctx context.Context) (*TradeSummary, error) {
	var cached TradeSummary
	if s.fromCache(ctx, tradeSummaryKey, &cached) {
		return &cached, nil
	}

	trades, err := s.activeTrades(ctx)
	if err != nil {
		return nil, err
	}
	result := buildTradeSummary(trades)
	s.toCache(ctx, tradeSummaryKey, result)
	return result, nil
}

// DailySummary aggregates bookings by trade date for the given day,
// compared with the day before. requester is the calling user's login id;
// it scopes the my-desk figures and the cache key.
func (s *Service) DailySummary(ctx context.Context, day time.Time, requester string) (*DailySummary, error) {
	day = truncateDay(day)
	key := dailySummaryKey + day.Format("2006-01-02") + ":" + requester

	var cached DailySummary
	if s.fromCache(ctx, key, &cached) {
		return &cached, nil
	}

	trades, err := s.activeTrades(ctx)
	if err != nil {
		return nil, err
	}
	result := buildDailySummary(trades, day, requester)
	s.toCache(ctx, key, result)
	return result, nil
}

func (s *Service) activeTrades(ctx context.Context) ([]domain.Trade, error) {
	var trades []domain.Trade
	err := s.DB.WithContext(ctx).
		Preload("Counterparty").Preload("Book").Preload("TradeStatus").
		Preload("TradeType").Preload("TradeSubType").
		Preload("TraderUser").Preload("InputterUser").
		Preload("Legs").Preload("Legs.Currency").Preload("Legs.PayReceive").
		Where("active = ?", true).
		Find(&trades).Error
	return trades, err
}

func buildTradeSummary(trades []domain.Trade) *TradeSummary {
	s := &TradeSummary{
		TradesByStatus:              map[string]int64{},
		TradesByCounterparty:        map[string]int64{},
		TradesByType:                map[string]int64{},
		TradesBySubType:             map[string]int64{},
		TradesByCurrency:            map[string]int64{},
		NotionalByCurrency:          map[string]decimal.Decimal{},
		NotionalByType:              map[string]decimal.Decimal{},
		NotionalByCounterparty:      map[string]decimal.Decimal{},
		NetExposureByCounterparty:   map[string]decimal.Decimal{},
		GrossExposureByCounterparty: map[string]decimal.Decimal{},
		NetExposureByCurrency:       map[string]decimal.Decimal{},
		GrossExposureByCurrency:     map[string]decimal.Decimal{},
		NetExposureByBook:           map[string]decimal.Decimal{},
		GrossExposureByBook:         map[string]decimal.Decimal{},
	}

	for _, trade := range trades {
		s.TotalTrades++
		if trade.TradeStatus != nil {
			s.TradesByStatus[trade.TradeStatus.TradeStatus]++
		}
		if trade.TradeType != nil {
			s.TradesByType[trade.TradeType.TradeType]++
		}
		if trade.TradeSubType != nil {
			s.TradesBySubType[trade.TradeSubType.TradeSubType]++
		}

		cpty := counterpartyName(trade)
		book := bookName(trade)
		s.TradesByCounterparty[cpty]++

		tradeNet := decimal.Zero
		seenCurrencies := map[string]bool{}
		for _, leg := range trade.Legs {
			value := legValue(leg)
			notional := leg.Notional
			ccy := currencyCode(leg)

			if !seenCurrencies[ccy] {
				seenCurrencies[ccy] = true
				s.TradesByCurrency[ccy]++
			}
			s.NotionalByCurrency[ccy] = sum(s.NotionalByCurrency[ccy], notional)
			s.NotionalByCounterparty[cpty] = sum(s.NotionalByCounterparty[cpty], notional)
			if trade.TradeType != nil {
				s.NotionalByType[trade.TradeType.TradeType] = sum(s.NotionalByType[trade.TradeType.TradeType], notional)
			}

			// Currency exposure is per leg: a flat trade in one currency
			// still carries gross exposure there.
			s.NetExposureByCurrency[ccy] = sum(s.NetExposureByCurrency[ccy], value)
			s.GrossExposureByCurrency[ccy] = sum(s.GrossExposureByCurrency[ccy], value.Abs())

			tradeNet = tradeNet.Add(value)
		}

		// Counterparty and book gross is per trade: a matched pair of legs
		// nets out before the absolute value is taken.
		s.NetExposureByCounterparty[cpty] = sum(s.NetExposureByCounterparty[cpty], tradeNet)
		s.GrossExposureByCounterparty[cpty] = sum(s.GrossExposureByCounterparty[cpty], tradeNet.Abs())
		s.NetExposureByBook[book] = sum(s.NetExposureByBook[book], tradeNet)
		s.GrossExposureByBook[book] = sum(s.GrossExposureByBook[book], tradeNet.Abs())
	}

	for _, v := range s.NetExposureByCounterparty {
		s.TotalNetExposure = s.TotalNetExposure.Add(v)
	}
	for _, v := range s.GrossExposureByCounterparty {
		s.TotalGrossExposure = s.TotalGrossExposure.Add(v)
	}
	return s
}

func buildDailySummary(trades []domain.Trade, day time.Time, requester string) *DailySummary {
	yesterday := day.AddDate(0, 0, -1)
	s := &DailySummary{
		Date:             day.Format("2006-01-02"),
		TradesByTrader:   map[string]int64{},
		NotionalByTrader: map[string]decimal.Decimal{},
		TradesByInputter: map[string]int64{},
		TradesByBook:     map[string]int64{},
		NotionalByBook:   map[string]decimal.Decimal{},
		StatusByBook:     map[string]map[string]int64{},
	}

	for _, trade := range trades {
		if trade.TradeDate == nil {
			continue
		}
		tradeDay := truncateDay(*trade.TradeDate)
		notional := tradeNotional(trade)

		if tradeDay.Equal(yesterday) {
			s.YesterdayTradeCount++
			s.YesterdayTotalNotional = s.YesterdayTotalNotional.Add(notional)
			continue
		}
		if !tradeDay.Equal(day) {
			continue
		}

		s.TodayTradeCount++
		s.TodayTotalNotional = s.TodayTotalNotional.Add(notional)

		if trade.TradeStatus != nil {
			switch trade.TradeStatus.TradeStatus {
			case "NEW":
				s.NewToday++
			case "AMENDED":
				s.AmendedToday++
			case "TERMINATED":
				s.TerminatedToday++
			case "CANCELLED":
				s.CancelledToday++
			}
		}

		book := bookName(trade)
		s.TradesByBook[book]++
		s.NotionalByBook[book] = sum(s.NotionalByBook[book], notional)
		if trade.TradeStatus != nil {
			if s.StatusByBook[book] == nil {
				s.StatusByBook[book] = map[string]int64{}
			}
			s.StatusByBook[book][trade.TradeStatus.TradeStatus]++
		}

		if trade.TraderUser != nil {
			trader := displayName(trade.TraderUser)
			s.TradesByTrader[trader]++
			s.NotionalByTrader[trader] = sum(s.NotionalByTrader[trader], notional)
			if requester != "" && trade.TraderUser.LoginID == requester {
				s.MyTradeCount++
				s.MyTotalNotional = s.MyTotalNotional.Add(notional)
			}
		}
		if trade.InputterUser != nil {
			s.TradesByInputter[displayName(trade.InputterUser)]++
		}
	}

	if s.TodayTradeCount > 0 {
		s.TodayAverageNotional = s.TodayTotalNotional.
			DivRound(decimal.NewFromInt(s.TodayTradeCount), 2)
	}
	if s.YesterdayTradeCount > 0 {
		today := decimal.NewFromInt(s.TodayTradeCount)
		prev := decimal.NewFromInt(s.YesterdayTradeCount)
		s.DayOverDayChangePercentage = today.Sub(prev).
			Div(prev).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return s
}

// legValue signs the leg notional by direction: PAY is owed away, RECEIVE
// is owed in. A leg without a direction counts as received.
func legValue(leg domain.TradeLeg) decimal.Decimal {
	if leg.PayReceive != nil && leg.PayReceive.PayRec == "PAY" {
		return leg.Notional.Neg()
	}
	return leg.Notional
}

func tradeNotional(trade domain.Trade) decimal.Decimal {
	total := decimal.Zero
	for _, leg := range trade.Legs {
		total = total.Add(leg.Notional)
	}
	return total
}

func counterpartyName(trade domain.Trade) string {
	if trade.Counterparty != nil {
		return trade.Counterparty.Name
	}
	return "UNKNOWN"
}

func bookName(trade domain.Trade) string {
	if trade.Book != nil {
		return trade.Book.BookName
	}
	return "UNKNOWN"
}

func currencyCode(leg domain.TradeLeg) string {
	if leg.Currency != nil {
		return leg.Currency.Currency
	}
	return "UNKNOWN"
}

func displayName(user *domain.ApplicationUser) string {
	if user.LastName == "" {
		return user.FirstName
	}
	return user.FirstName + " " + user.LastName
}

func sum(current, add decimal.Decimal) decimal.Decimal {
	return current.Add(add)
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *Service) fromCache(ctx context.Context, key string, out interface{}) bool {
	if s.Redis == nil {
		return false
	}
	raw, err := s.Redis.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Discarding unreadable cached summary")
		return false
	}
	return true
}

func (s *Service) toCache(ctx context.Context, key string, value interface{}) {
	if s.Redis == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	ttl := s.CacheTTL
	if ttl == 0 {
		ttl = DefaultCacheTTL
	}
	if err := s.Redis.Set(ctx, key, raw, ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to cache summary")
	}
}
