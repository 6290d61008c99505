package trades

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"swapdesk-backend/internal/domain"
	"swapdesk-backend/internal/pkg/apperrors"
	"swapdesk-backend/internal/query"
)

// SearchFilter is the structured blotter filter. Empty fields do not
// constrain the result; all set fields are ANDed.
type SearchFilter struct {
	Counterparty string
	Book         string
	Status       string
	TraderID     *int64
	From         *time.Time
	To           *time.Time
}

func (f SearchFilter) toFilter() query.Filter {
	var children []query.Filter
	if f.Counterparty != "" {
		children = append(children, query.Cond{Field: "counterparty.name", Op: query.OpEq, Value: f.Counterparty})
	}
	if f.Book != "" {
		children = append(children, query.Cond{Field: "book.bookName", Op: query.OpEq, Value: f.Book})
	}
	if f.Status != "" {
		children = append(children, query.Cond{Field: "tradeStatus.tradeStatus", Op: query.OpEq, Value: f.Status})
	}
	if f.TraderID != nil {
		children = append(children, query.Cond{Field: "traderUser.id", Op: query.OpEq, Value: *f.TraderID})
	}
	if f.From != nil || f.To != nil {
		between := query.Between{Field: "tradeDate"}
		if f.From != nil {
			between.From = *f.From
		}
		if f.To != nil {
			between.To = *f.To
		}
		children = append(children, between)
	}
	if len(children) == 0 {
		return query.MatchAll{}
	}
	return query.And{Children: children}
}

// sortColumns whitelists the blotter sort keys. Anything else is rejected
// so client input never reaches ORDER BY.
var sortColumns = map[string]string{
	"tradeDate": "trades.trade_date",
	"tradeId":   "trades.trade_id",
	"version":   "trades.version",
}

// Search returns the active trade versions matching the structured filter.
func (s *Service) Search(ctx context.Context, filter SearchFilter) ([]domain.Trade, error) {
	return s.runFilter(ctx, filter.toFilter())
}

// SearchPaged runs a structured search with paging and a whitelisted sort.
// Page numbers start at 0; sortBy defaults to tradeDate descending.
func (s *Service) SearchPaged(ctx context.Context, filter SearchFilter, page, size int, sortBy, direction string) ([]domain.Trade, int64, error) {
	if size <= 0 {
		size = 20
	}
	if page < 0 {
		page = 0
	}
	if sortBy == "" {
		sortBy = "tradeDate"
	}
	column, ok := sortColumns[sortBy]
	if !ok {
		return nil, 0, fmt.Errorf("%w: sort field %q not supported", apperrors.ErrInvalidQueryArgument, sortBy)
	}
	order := column + " DESC"
	if direction == "asc" || direction == "ASC" {
		order = column + " ASC"
	}

	base := s.activeTrades(ctx)
	db, err := query.Apply(base, filter.toFilter())
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := db.Session(&gorm.Session{}).Model(&domain.Trade{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var results []domain.Trade
	err = db.Order(order).Offset(page * size).Limit(size).Find(&results).Error
	if err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

// SearchRSQL parses an RSQL expression and runs it against the active
// trade versions.
func (s *Service) SearchRSQL(ctx context.Context, expression string) ([]domain.Trade, error) {
	filter, err := query.ParseRSQL(expression)
	if err != nil {
		return nil, err
	}
	return s.runFilter(ctx, filter)
}

func (s *Service) runFilter(ctx context.Context, filter query.Filter) ([]domain.Trade, error) {
	db, err := query.Apply(s.activeTrades(ctx), filter)
	if err != nil {
		return nil, err
	}
	var results []domain.Trade
	if err := db.Order("trades.trade_id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) activeTrades(ctx context.Context) *gorm.DB {
	return s.DB.WithContext(ctx).
		Model(&domain.Trade{}).
		Preload("Counterparty").Preload("Book").Preload("TradeStatus").
		Where("trades.active = ?", true)
}
