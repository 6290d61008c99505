package query

import (
	"fmt"
	"strings"

	"swapdesk-backend/internal/pkg/apperrors"
)

// Operator spellings, longest first so "==" never shadows "=ge=".
var rsqlOps = []Op{OpGe, OpLe, OpGt, OpLt, OpEq, OpNe}

// Date fields only support range operators; an exact-equality match on a
// trade date is never what a blotter query means.
var dateOps = map[Op]bool{OpGe: true, OpLe: true}

// ParseRSQL parses the restricted query language: clauses separated by ';'
// are ANDed, ','-separated alternatives within a clause are ORed, and each
// token is field<operator>value. Unknown fields or field/operator
// combinations are rejected rather than silently matching everything.
func ParseRSQL(q string) (Filter, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return MatchAll{}, nil
	}
	var clauses []Filter
	for _, andPart := range strings.Split(q, ";") {
		var alts []Filter
		for _, orPart := range strings.Split(andPart, ",") {
			cond, err := parseToken(orPart)
			if err != nil {
				return nil, err
			}
			alts = append(alts, cond)
		}
		if len(alts) == 1 {
			clauses = append(clauses, alts[0])
		} else {
			clauses = append(clauses, Or{Children: alts})
		}
	}
	if len(clauses) == 1 {
		return clauses[0], nil
	}
	return And{Children: clauses}, nil
}

func parseToken(token string) (Filter, error) {
	token = strings.TrimSpace(token)
	for _, op := range rsqlOps {
		idx := strings.Index(token, string(op))
		if idx <= 0 {
			continue
		}
		field := strings.TrimSpace(token[:idx])
		raw := strings.TrimSpace(token[idx+len(op):])

		def, ok := TradeFields[field]
		if !ok {
			return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownQueryField, field)
		}
		if def.Kind == KindDate && !dateOps[op] {
			return nil, fmt.Errorf("%w: operator %q on date field %q", apperrors.ErrUnknownQueryField, op, field)
		}
		value, err := Coerce(raw, def.Kind)
		if err != nil {
			return nil, err
		}
		return Cond{Field: field, Op: op, Value: value}, nil
	}
	return nil, fmt.Errorf("%w: no operator in token %q", apperrors.ErrUnknownQueryField, token)
}
