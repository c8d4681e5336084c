package database

import (
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/zatekoja/patientqueue/internal/domain/criteria"
)

// predicateTranslator turns criteria trees into goqu expressions over a fixed column set
type predicateTranslator struct {
	columns map[string]struct{}
}

func newPredicateTranslator(columns ...string) predicateTranslator {
	set := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		set[c] = struct{}{}
	}
	return predicateTranslator{columns: set}
}

func (t predicateTranslator) column(field string) (exp.IdentifierExpression, error) {
	if _, ok := t.columns[field]; !ok {
		return nil, fmt.Errorf("unknown filter field %q", field)
	}
	return goqu.C(field), nil
}

// translate converts p. A nil predicate yields a nil expression (no filter).
func (t predicateTranslator) translate(p criteria.Predicate) (exp.Expression, error) {
	switch node := p.(type) {
	case nil:
		return nil, nil
	case criteria.Comparison:
		col, err := t.column(node.Field)
		if err != nil {
			return nil, err
		}
		switch node.Op {
		case criteria.OpEq:
			return col.Eq(node.Value), nil
		case criteria.OpNe:
			return col.Neq(node.Value), nil
		case criteria.OpGt:
			return col.Gt(node.Value), nil
		case criteria.OpGte:
			return col.Gte(node.Value), nil
		case criteria.OpLt:
			return col.Lt(node.Value), nil
		case criteria.OpLte:
			return col.Lte(node.Value), nil
		}
		return nil, fmt.Errorf("unsupported operator %q", node.Op)
	case criteria.NullCheck:
		col, err := t.column(node.Field)
		if err != nil {
			return nil, err
		}
		if node.Negated {
			return col.IsNotNull(), nil
		}
		return col.IsNull(), nil
	case criteria.Junction:
		if len(node.Predicates) == 0 {
			if node.Kind == criteria.KindOr {
				return goqu.L("FALSE"), nil
			}
			return goqu.L("TRUE"), nil
		}
		children := make([]exp.Expression, 0, len(node.Predicates))
		for _, child := range node.Predicates {
			e, err := t.translate(child)
			if err != nil {
				return nil, err
			}
			if e != nil {
				children = append(children, e)
			}
		}
		if node.Kind == criteria.KindOr {
			return goqu.Or(children...), nil
		}
		return goqu.And(children...), nil
	case criteria.Negation:
		inner, err := t.translate(node.Predicate)
		if err != nil {
			return nil, err
		}
		if inner == nil {
			return goqu.L("FALSE"), nil
		}
		return goqu.L("NOT (?)", inner), nil
	}
	return nil, fmt.Errorf("unsupported predicate %T", p)
}
