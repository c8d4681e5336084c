// Package criteria describes record filters as engine-neutral predicate trees.
//
// Repositories translate a Predicate into their own query language (SQL via goqu,
// or direct evaluation with Matches for in-process stores), so services can state
// what they want without knowing which engine answers.
package criteria

import (
	"fmt"
	"time"
)

// Operator is a binary comparison operator
type Operator string

const (
	OpEq  Operator = "="
	OpNe  Operator = "<>"
	OpGt  Operator = ">"
	OpGte Operator = ">="
	OpLt  Operator = "<"
	OpLte Operator = "<="
)

// JunctionKind distinguishes conjunctions from disjunctions
type JunctionKind string

const (
	KindAnd JunctionKind = "AND"
	KindOr  JunctionKind = "OR"
)

// Predicate is a node of a filter tree
type Predicate interface {
	predicate()
}

// Comparison compares a field against a value
type Comparison struct {
	Field string
	Op    Operator
	Value interface{}
}

// NullCheck tests a field for NULL (or NOT NULL when Negated)
type NullCheck struct {
	Field   string
	Negated bool
}

// Junction combines predicates with AND / OR
type Junction struct {
	Kind       JunctionKind
	Predicates []Predicate
}

// Negation inverts a predicate
type Negation struct {
	Predicate Predicate
}

func (Comparison) predicate() {}
func (NullCheck) predicate()  {}
func (Junction) predicate()   {}
func (Negation) predicate()   {}

func Eq(field string, value interface{}) Predicate  { return Comparison{Field: field, Op: OpEq, Value: value} }
func Ne(field string, value interface{}) Predicate  { return Comparison{Field: field, Op: OpNe, Value: value} }
func Gt(field string, value interface{}) Predicate  { return Comparison{Field: field, Op: OpGt, Value: value} }
func Gte(field string, value interface{}) Predicate { return Comparison{Field: field, Op: OpGte, Value: value} }
func Lt(field string, value interface{}) Predicate  { return Comparison{Field: field, Op: OpLt, Value: value} }
func Lte(field string, value interface{}) Predicate { return Comparison{Field: field, Op: OpLte, Value: value} }

// IsNull matches records whose field is NULL
func IsNull(field string) Predicate { return NullCheck{Field: field} }

// IsNotNull matches records whose field is set
func IsNotNull(field string) Predicate { return NullCheck{Field: field, Negated: true} }

// And matches when every predicate matches. An empty And matches everything.
func And(predicates ...Predicate) Predicate {
	return Junction{Kind: KindAnd, Predicates: predicates}
}

// Or matches when any predicate matches. An empty Or matches nothing.
func Or(predicates ...Predicate) Predicate {
	return Junction{Kind: KindOr, Predicates: predicates}
}

// Not inverts p
func Not(p Predicate) Predicate { return Negation{Predicate: p} }

// InRange matches from <= field < to
func InRange(field string, from, to interface{}) Predicate {
	return And(Gte(field, from), Lt(field, to))
}

// Record exposes named field values to Matches.
// A nil value with ok=true stands for NULL.
type Record interface {
	FieldValue(field string) (value interface{}, ok bool)
}

// truth is SQL three-valued logic
type truth int

const (
	truthFalse truth = iota
	truthTrue
	truthUnknown
)

// Matches evaluates p against r with SQL semantics: comparisons involving NULL
// are unknown, and only a definite true matches.
func Matches(p Predicate, r Record) (bool, error) {
	t, err := eval(p, r)
	if err != nil {
		return false, err
	}
	return t == truthTrue, nil
}

func eval(p Predicate, r Record) (truth, error) {
	switch node := p.(type) {
	case nil:
		return truthTrue, nil
	case Comparison:
		value, ok := r.FieldValue(node.Field)
		if !ok {
			return truthFalse, fmt.Errorf("unknown field %q", node.Field)
		}
		if value == nil || node.Value == nil {
			return truthUnknown, nil
		}
		cmp, err := compare(value, node.Value)
		if err != nil {
			return truthFalse, fmt.Errorf("field %q: %w", node.Field, err)
		}
		return boolTruth(apply(node.Op, cmp)), nil
	case NullCheck:
		value, ok := r.FieldValue(node.Field)
		if !ok {
			return truthFalse, fmt.Errorf("unknown field %q", node.Field)
		}
		return boolTruth((value == nil) != node.Negated), nil
	case Junction:
		return evalJunction(node, r)
	case Negation:
		t, err := eval(node.Predicate, r)
		if err != nil {
			return truthFalse, err
		}
		switch t {
		case truthTrue:
			return truthFalse, nil
		case truthFalse:
			return truthTrue, nil
		}
		return truthUnknown, nil
	}
	return truthFalse, fmt.Errorf("unsupported predicate %T", p)
}

func evalJunction(j Junction, r Record) (truth, error) {
	// AND short-circuits on false, OR on true
	decisive, fallback := truthFalse, truthTrue
	if j.Kind == KindOr {
		decisive, fallback = truthTrue, truthFalse
	}

	result := fallback
	for _, child := range j.Predicates {
		t, err := eval(child, r)
		if err != nil {
			return truthFalse, err
		}
		if t == decisive {
			return decisive, nil
		}
		if t == truthUnknown {
			result = truthUnknown
		}
	}
	return result, nil
}

func boolTruth(b bool) truth {
	if b {
		return truthTrue
	}
	return truthFalse
}

func apply(op Operator, cmp int) bool {
	switch op {
	case OpEq:
		return cmp == 0
	case OpNe:
		return cmp != 0
	case OpGt:
		return cmp > 0
	case OpGte:
		return cmp >= 0
	case OpLt:
		return cmp < 0
	case OpLte:
		return cmp <= 0
	}
	return false
}

// compare orders two values of compatible kinds
func compare(a, b interface{}) (int, error) {
	switch av := a.(type) {
	case time.Time:
		bv, ok := b.(time.Time)
		if !ok {
			return 0, fmt.Errorf("cannot compare time with %T", b)
		}
		return av.Compare(bv), nil
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, fmt.Errorf("cannot compare string with %T", b)
		}
		return compareOrdered(av, bv), nil
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return 0, fmt.Errorf("cannot compare bool with %T", b)
		}
		if av == bv {
			return 0, nil
		}
		if !av {
			return -1, nil
		}
		return 1, nil
	case float64:
		bv, ok := toFloat(b)
		if !ok {
			return 0, fmt.Errorf("cannot compare float with %T", b)
		}
		return compareOrdered(av, bv), nil
	}

	if ai, ok := toInt(a); ok {
		if bi, ok := toInt(b); ok {
			return compareOrdered(ai, bi), nil
		}
		if bf, ok := toFloat(b); ok {
			return compareOrdered(float64(ai), bf), nil
		}
		return 0, fmt.Errorf("cannot compare integer with %T", b)
	}
	return 0, fmt.Errorf("unsupported value type %T", a)
}

func compareOrdered[T int64 | float64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func toInt(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	}
	return 0, false
}

func toFloat(v interface{}) (float64, bool) {
	if f, ok := v.(float64); ok {
		return f, true
	}
	if i, ok := toInt(v); ok {
		return float64(i), true
	}
	return 0, false
}
