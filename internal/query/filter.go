// Package query implements a small, closed filter algebra over declared
// trade fields, plus a restricted RSQL-style parser producing it. The
// algebra is storage-agnostic; Apply lowers a filter onto a GORM query.
package query

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"swapdesk-backend/internal/pkg/apperrors"
)

// Op is a comparison operator, named after its RSQL spelling.
type Op string

const (
	OpEq Op = "=="
	OpNe Op = "!="
	OpGt Op = "=gt="
	OpLt Op = "=lt="
	OpGe Op = "=ge="
	OpLe Op = "=le="
)

// Kind is the declared value type of a field.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindLong
	KindDouble
	KindBool
	KindDate
)

// Filter is the closed set of predicate variants.
type Filter interface{ isFilter() }

// MatchAll is the neutral predicate (logical true).
type MatchAll struct{}

// Cond compares one field against one value.
type Cond struct {
	Field string
	Op    Op
	Value interface{}
}

// Between restricts a field to an inclusive range; a nil bound is open.
type Between struct {
	Field    string
	From, To interface{}
}

// And conjoins child filters.
type And struct{ Children []Filter }

// Or disjoins child filters.
type Or struct{ Children []Filter }

func (MatchAll) isFilter() {}
func (Cond) isFilter()     {}
func (Between) isFilter()  {}
func (And) isFilter()      {}
func (Or) isFilter()       {}

// FieldDef declares where a queryable field lives and what type it carries.
type FieldDef struct {
	Column string
	Join   string // empty when the column is on the trades table itself
	Kind   Kind
}

// TradeFields is the registry of queryable trade fields. Names follow the
// entity paths the query language exposes.
var TradeFields = map[string]FieldDef{
	"counterparty.name": {
		Column: "counterparties.name",
		Join:   "JOIN counterparties ON counterparties.id = trades.counterparty_id",
		Kind:   KindString,
	},
	"book.bookName": {
		Column: "books.book_name",
		Join:   "JOIN books ON books.id = trades.book_id",
		Kind:   KindString,
	},
	"book.name": {
		Column: "books.book_name",
		Join:   "JOIN books ON books.id = trades.book_id",
		Kind:   KindString,
	},
	"tradeStatus.tradeStatus": {
		Column: "trade_statuses.trade_status",
		Join:   "JOIN trade_statuses ON trade_statuses.id = trades.trade_status_id",
		Kind:   KindString,
	},
	"tradeDate": {
		Column: "trades.trade_date",
		Kind:   KindDate,
	},
	"traderUser.id": {
		Column: "trades.trader_user_id",
		Kind:   KindLong,
	},
	"version": {
		Column: "trades.version",
		Kind:   KindInt,
	},
	"active": {
		Column: "trades.active",
		Kind:   KindBool,
	},
}

// Coerce converts a raw string value to the kind's Go type.
func Coerce(value string, kind Kind) (interface{}, error) {
	switch kind {
	case KindInt:
		v, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an integer", apperrors.ErrInvalidQueryArgument, value)
		}
		return v, nil
	case KindLong:
		v, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an integer", apperrors.ErrInvalidQueryArgument, value)
		}
		return v, nil
	case KindDouble:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", apperrors.ErrInvalidQueryArgument, value)
		}
		return v, nil
	case KindBool:
		v, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a boolean", apperrors.ErrInvalidQueryArgument, value)
		}
		return v, nil
	case KindDate:
		v, err := time.Parse("2006-01-02", value)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an ISO-8601 date", apperrors.ErrInvalidQueryArgument, value)
		}
		return v, nil
	default:
		return value, nil
	}
}

var sqlOps = map[Op]string{
	OpEq: "=",
	OpNe: "<>",
	OpGt: ">",
	OpLt: "<",
	OpGe: ">=",
	OpLe: "<=",
}

type lowering struct {
	joins map[string]struct{}
}

// Apply lowers the filter onto a trades query, adding the joins the used
// fields require. The zero filter (nil or MatchAll) leaves db untouched.
func Apply(db *gorm.DB, f Filter) (*gorm.DB, error) {
	if f == nil {
		return db, nil
	}
	l := &lowering{joins: map[string]struct{}{}}
	sql, args, err := l.lower(f)
	if err != nil {
		return nil, err
	}
	joins := make([]string, 0, len(l.joins))
	for j := range l.joins {
		joins = append(joins, j)
	}
	sort.Strings(joins)
	for _, j := range joins {
		db = db.Joins(j)
	}
	if sql != "" {
		db = db.Where(sql, args...)
	}
	return db, nil
}

func (l *lowering) lower(f Filter) (string, []interface{}, error) {
	switch v := f.(type) {
	case MatchAll:
		return "", nil, nil
	case Cond:
		return l.lowerCond(v)
	case Between:
		return l.lowerBetween(v)
	case And:
		return l.lowerGroup(v.Children, " AND ")
	case Or:
		return l.lowerGroup(v.Children, " OR ")
	default:
		return "", nil, fmt.Errorf("%w: unsupported filter variant %T", apperrors.ErrUnknownQueryField, f)
	}
}

func (l *lowering) lowerCond(c Cond) (string, []interface{}, error) {
	def, ok := TradeFields[c.Field]
	if !ok {
		return "", nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownQueryField, c.Field)
	}
	op, ok := sqlOps[c.Op]
	if !ok {
		return "", nil, fmt.Errorf("%w: operator %q", apperrors.ErrUnknownQueryField, c.Op)
	}
	l.need(def)
	// String equality is case-insensitive, matching how desk users type
	// counterparty and book names.
	if def.Kind == KindString && (c.Op == OpEq || c.Op == OpNe) {
		return fmt.Sprintf("LOWER(%s) %s LOWER(?)", def.Column, op), []interface{}{c.Value}, nil
	}
	return fmt.Sprintf("%s %s ?", def.Column, op), []interface{}{c.Value}, nil
}

func (l *lowering) lowerBetween(b Between) (string, []interface{}, error) {
	def, ok := TradeFields[b.Field]
	if !ok {
		return "", nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownQueryField, b.Field)
	}
	l.need(def)
	switch {
	case b.From != nil && b.To != nil:
		return fmt.Sprintf("%s BETWEEN ? AND ?", def.Column), []interface{}{b.From, b.To}, nil
	case b.From != nil:
		return fmt.Sprintf("%s >= ?", def.Column), []interface{}{b.From}, nil
	case b.To != nil:
		return fmt.Sprintf("%s <= ?", def.Column), []interface{}{b.To}, nil
	default:
		return "", nil, nil
	}
}

func (l *lowering) lowerGroup(children []Filter, sep string) (string, []interface{}, error) {
	var parts []string
	var args []interface{}
	for _, child := range children {
		sql, childArgs, err := l.lower(child)
		if err != nil {
			return "", nil, err
		}
		if sql == "" {
			continue
		}
		parts = append(parts, "("+sql+")")
		args = append(args, childArgs...)
	}
	if len(parts) == 0 {
		return "", nil, nil
	}
	return strings.Join(parts, sep), args, nil
}

func (l *lowering) need(def FieldDef) {
	if def.Join != "" {
		l.joins[def.Join] = struct{}{}
	}
}
