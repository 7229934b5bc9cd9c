package datalog

import (
	"encoding/hex"
	"fmt"
	"regexp"
)

// Checker decides whether a ground ID satisfies some predicate over it.
// It is evaluated only once a rule body's variable has been bound to a
// concrete value during Combine.
type Checker interface {
	Check(id ID) (bool, error)
}

// Constraint pins the value bound to Name by a Checker, evaluated after
// a candidate binding set has been produced for a rule body.
type Constraint struct {
	Name    Variable
	Checker Checker
}

// Check applies the constraint's Checker to value, the ID the caller
// found bound to Name; a value of the wrong kind for the checker yields
// false and an error. A rule whose constrained variable has no binding
// treats the constraint as unsatisfied without calling Check.
func (c Constraint) Check(value ID) (bool, error) {
	return c.Checker.Check(value)
}

// IntegerComparison enumerates the orderings an IntegerComparisonChecker
// may test for.
type IntegerComparison byte

const (
	IntegerEqual IntegerComparison = iota
	IntegerLargerThan
	IntegerLargerOrEqual
	IntegerLowerThan
	IntegerLowerOrEqual
)

// IntegerComparisonChecker compares a bound Integer against Value using
// Comparison.
type IntegerComparisonChecker struct {
	Comparison IntegerComparison
	Value      Integer
}

func (c IntegerComparisonChecker) Check(id ID) (bool, error) {
	v, ok := id.(Integer)
	if !ok {
		return false, fmt.Errorf("datalog: integer comparison checker received %T", id)
	}
	switch c.Comparison {
	case IntegerEqual:
		return v == c.Value, nil
	case IntegerLargerThan:
		return v > c.Value, nil
	case IntegerLargerOrEqual:
		return v >= c.Value, nil
	case IntegerLowerThan:
		return v < c.Value, nil
	case IntegerLowerOrEqual:
		return v <= c.Value, nil
	default:
		return false, fmt.Errorf("datalog: unknown integer comparison %d", c.Comparison)
	}
}

// IntegerInChecker checks set membership (or, inverted, non-membership)
// of a bound Integer.
type IntegerInChecker struct {
	Set map[Integer]struct{}
	Not bool
}

func (c IntegerInChecker) Check(id ID) (bool, error) {
	v, ok := id.(Integer)
	if !ok {
		return false, fmt.Errorf("datalog: integer in checker received %T", id)
	}
	_, in := c.Set[v]
	return in != c.Not, nil
}

// StringComparison enumerates the string predicates a
// StringComparisonChecker may test for.
type StringComparison byte

const (
	StringEqual StringComparison = iota
	StringPrefix
	StringSuffix
)

// StringComparisonChecker tests a bound String against Value.
type StringComparisonChecker struct {
	Comparison StringComparison
	Value      String
}

func (c StringComparisonChecker) Check(id ID) (bool, error) {
	v, ok := id.(String)
	if !ok {
		return false, fmt.Errorf("datalog: string comparison checker received %T", id)
	}
	switch c.Comparison {
	case StringEqual:
		return v == c.Value, nil
	case StringPrefix:
		return len(v) >= len(c.Value) && v[:len(c.Value)] == c.Value, nil
	case StringSuffix:
		return len(v) >= len(c.Value) && v[len(v)-len(c.Value):] == c.Value, nil
	default:
		return false, fmt.Errorf("datalog: unknown string comparison %d", c.Comparison)
	}
}

// StringInChecker checks set membership (or non-membership) of a bound
// String.
type StringInChecker struct {
	Set map[String]struct{}
	Not bool
}

func (c StringInChecker) Check(id ID) (bool, error) {
	v, ok := id.(String)
	if !ok {
		return false, fmt.Errorf("datalog: string in checker received %T", id)
	}
	_, in := c.Set[v]
	return in != c.Not, nil
}

// StringRegexpChecker tests a bound String against a regular expression.
type StringRegexpChecker struct {
	Regexp *regexp.Regexp
}

func (c StringRegexpChecker) Check(id ID) (bool, error) {
	v, ok := id.(String)
	if !ok {
		return false, fmt.Errorf("datalog: string regexp checker received %T", id)
	}
	return c.Regexp.MatchString(string(v)), nil
}

// DateComparison enumerates the orderings a DateComparisonChecker may
// test for.
type DateComparison byte

const (
	DateBefore DateComparison = iota
	DateAfter
)

// DateComparisonChecker compares a bound Date against Value.
type DateComparisonChecker struct {
	Comparison DateComparison
	Value      Date
}

func (c DateComparisonChecker) Check(id ID) (bool, error) {
	v, ok := id.(Date)
	if !ok {
		return false, fmt.Errorf("datalog: date comparison checker received %T", id)
	}
	switch c.Comparison {
	case DateBefore:
		return v <= c.Value, nil
	case DateAfter:
		return v >= c.Value, nil
	default:
		return false, fmt.Errorf("datalog: unknown date comparison %d", c.Comparison)
	}
}

// SymbolInChecker checks set membership (or non-membership) of a bound
// Symbol.
type SymbolInChecker struct {
	Set map[Symbol]struct{}
	Not bool
}

func (c SymbolInChecker) Check(id ID) (bool, error) {
	v, ok := id.(Symbol)
	if !ok {
		return false, fmt.Errorf("datalog: symbol in checker received %T", id)
	}
	_, in := c.Set[v]
	return in != c.Not, nil
}

// BytesComparison enumerates the predicates a BytesComparisonChecker
// may test for.
type BytesComparison byte

const (
	BytesEqual BytesComparison = iota
)

// BytesComparisonChecker compares a bound Bytes value against Value.
type BytesComparisonChecker struct {
	Comparison BytesComparison
	Value      Bytes
}

func (c BytesComparisonChecker) Check(id ID) (bool, error) {
	v, ok := id.(Bytes)
	if !ok {
		return false, fmt.Errorf("datalog: bytes comparison checker received %T", id)
	}
	switch c.Comparison {
	case BytesEqual:
		return v.Equal(c.Value), nil
	default:
		return false, fmt.Errorf("datalog: unknown bytes comparison %d", c.Comparison)
	}
}

// BytesInChecker checks set membership (or non-membership) of a bound
// Bytes value, keyed by its plain hex encoding (no "hex:" prefix)
// since []byte is not a valid Go map key.
type BytesInChecker struct {
	Set map[string]struct{}
	Not bool
}

func (c BytesInChecker) Check(id ID) (bool, error) {
	v, ok := id.(Bytes)
	if !ok {
		return false, fmt.Errorf("datalog: bytes in checker received %T", id)
	}
	_, in := c.Set[hex.EncodeToString(v)]
	return in != c.Not, nil
}
