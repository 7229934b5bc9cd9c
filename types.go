// Package biscuit implements decentralized, offline-verifiable
// authorization tokens: an ordered chain of blocks carrying Datalog
// facts, rules and caveats, authenticated either by an aggregated
// signature chain or by a symmetric MAC.
package biscuit

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/divarvel/biscuit-go/datalog"
)

// SymbolAuthority names the privilege tier a token's first block owns.
const SymbolAuthority = Symbol("authority")

// SymbolAmbient names the privilege tier a verifier's own facts own.
const SymbolAmbient = Symbol("ambient")

// Fact is a builder-facing, string-named ground predicate.
type Fact struct {
	Predicate
}

func (f Fact) convert(symbols *datalog.SymbolTable) datalog.Fact {
	return datalog.Fact{Predicate: f.Predicate.convert(symbols)}
}

func (f Fact) String() string { return f.Predicate.String() }

func fromDatalogFact(symbols *datalog.SymbolTable, f datalog.Fact) (*Fact, error) {
	pred, err := fromDatalogPredicate(symbols, f.Predicate)
	if err != nil {
		return nil, err
	}
	return &Fact{Predicate: *pred}, nil
}

func fromDatalogPredicate(symbols *datalog.SymbolTable, p datalog.Predicate) (*Predicate, error) {
	terms := make([]Term, 0, len(p.IDs))
	for _, id := range p.IDs {
		term, err := fromDatalogID(symbols, id)
		if err != nil {
			return nil, err
		}
		terms = append(terms, term)
	}
	return &Predicate{Name: symbols.Str(p.Name), IDs: terms}, nil
}

func fromDatalogID(symbols *datalog.SymbolTable, id datalog.ID) (Term, error) {
	switch id.Type() {
	case datalog.IDTypeSymbol:
		return Symbol(symbols.Str(id.(datalog.Symbol))), nil
	case datalog.IDTypeVariable:
		return Variable(symbols.Str(datalog.Symbol(id.(datalog.Variable)))), nil
	case datalog.IDTypeInteger:
		return Integer(id.(datalog.Integer)), nil
	case datalog.IDTypeString:
		return String(id.(datalog.String)), nil
	case datalog.IDTypeDate:
		return Date(time.Unix(int64(id.(datalog.Date)), 0)), nil
	case datalog.IDTypeBytes:
		return Bytes(id.(datalog.Bytes)), nil
	default:
		return nil, fmt.Errorf("biscuit: unsupported term type %v", id.Type())
	}
}

// Rule derives Head from a conjunction of Body predicates, filtered by
// Constraints.
type Rule struct {
	Head        Predicate
	Body        []Predicate
	Constraints []Constraint
}

func (r Rule) convert(symbols *datalog.SymbolTable) datalog.Rule {
	body := make([]datalog.Predicate, len(r.Body))
	for i, p := range r.Body {
		body[i] = p.convert(symbols)
	}
	constraints := make([]datalog.Constraint, len(r.Constraints))
	for i, c := range r.Constraints {
		constraints[i] = c.convert(symbols)
	}
	return datalog.Rule{
		Head:        r.Head.convert(symbols),
		Body:        body,
		Constraints: constraints,
	}
}

func fromDatalogRule(symbols *datalog.SymbolTable, r datalog.Rule) (*Rule, error) {
	head, err := fromDatalogPredicate(symbols, r.Head)
	if err != nil {
		return nil, err
	}
	body := make([]Predicate, len(r.Body))
	for i, p := range r.Body {
		pp, err := fromDatalogPredicate(symbols, p)
		if err != nil {
			return nil, err
		}
		body[i] = *pp
	}
	return &Rule{Head: *head, Body: body}, nil
}

// Caveat is a disjunction of queries: satisfied iff at least one
// query's body matches against the verifier's World.
type Caveat struct {
	Queries []Rule
}

func (c Caveat) convert(symbols *datalog.SymbolTable) datalog.Caveat {
	queries := make([]datalog.Rule, len(c.Queries))
	for i, q := range c.Queries {
		queries[i] = q.convert(symbols)
	}
	return datalog.Caveat{Queries: queries}
}

func fromDatalogCaveat(symbols *datalog.SymbolTable, c datalog.Caveat) (*Caveat, error) {
	queries := make([]Rule, len(c.Queries))
	for i, q := range c.Queries {
		rr, err := fromDatalogRule(symbols, q)
		if err != nil {
			return nil, err
		}
		queries[i] = *rr
	}
	return &Caveat{Queries: queries}, nil
}

// Constraint pins the value a rule body binds to Name.
type Constraint struct {
	Name Variable
	Checker
}

func (c Constraint) convert(symbols *datalog.SymbolTable) datalog.Constraint {
	return datalog.Constraint{
		Name:    c.Name.convert(symbols).(datalog.Variable),
		Checker: c.Checker.convert(symbols),
	}
}

func (c Constraint) String() string { return c.Checker.String(c.Name) }

// Checker builds a datalog.Checker and renders itself for debugging.
type Checker interface {
	convert(symbols *datalog.SymbolTable) datalog.Checker
	String(name Variable) string
}

// IntegerComparisonChecker compares a bound integer term.
type IntegerComparisonChecker struct {
	Comparison datalog.IntegerComparison
	Value      Integer
}

func (c IntegerComparisonChecker) convert(symbols *datalog.SymbolTable) datalog.Checker {
	return datalog.IntegerComparisonChecker{
		Comparison: c.Comparison,
		Value:      c.Value.convert(symbols).(datalog.Integer),
	}
}

func (c IntegerComparisonChecker) String(name Variable) string {
	op := "??"
	switch c.Comparison {
	case datalog.IntegerEqual:
		op = "=="
	case datalog.IntegerLargerThan:
		op = ">"
	case datalog.IntegerLargerOrEqual:
		op = ">="
	case datalog.IntegerLowerThan:
		op = "<"
	case datalog.IntegerLowerOrEqual:
		op = "<="
	}
	return fmt.Sprintf("%s %s %s", name, op, c.Value)
}

// IntegerInChecker checks set membership of a bound integer term.
type IntegerInChecker struct {
	Set map[Integer]struct{}
	Not bool
}

func (c IntegerInChecker) convert(symbols *datalog.SymbolTable) datalog.Checker {
	set := make(map[datalog.Integer]struct{}, len(c.Set))
	for i := range c.Set {
		set[i.convert(symbols).(datalog.Integer)] = struct{}{}
	}
	return datalog.IntegerInChecker{Set: set, Not: c.Not}
}

func (c IntegerInChecker) String(name Variable) string {
	return fmt.Sprintf("%s %s", name, setString(c.Not, integerStrings(c.Set)))
}

// StringComparisonChecker compares a bound string term.
type StringComparisonChecker struct {
	Comparison datalog.StringComparison
	Value      String
}

func (c StringComparisonChecker) convert(symbols *datalog.SymbolTable) datalog.Checker {
	return datalog.StringComparisonChecker{
		Comparison: c.Comparison,
		Value:      c.Value.convert(symbols).(datalog.String),
	}
}

func (c StringComparisonChecker) String(name Variable) string {
	switch c.Comparison {
	case datalog.StringPrefix:
		return fmt.Sprintf("prefix(%s, %s)", name, c.Value)
	case datalog.StringSuffix:
		return fmt.Sprintf("suffix(%s, %s)", name, c.Value)
	default:
		return fmt.Sprintf("%s == %s", name, c.Value)
	}
}

// StringInChecker checks set membership of a bound string term.
type StringInChecker struct {
	Set map[String]struct{}
	Not bool
}

func (c StringInChecker) convert(symbols *datalog.SymbolTable) datalog.Checker {
	set := make(map[datalog.String]struct{}, len(c.Set))
	for s := range c.Set {
		set[s.convert(symbols).(datalog.String)] = struct{}{}
	}
	return datalog.StringInChecker{Set: set, Not: c.Not}
}

func (c StringInChecker) String(name Variable) string {
	strs := make([]string, 0, len(c.Set))
	for s := range c.Set {
		strs = append(strs, s.String())
	}
	return fmt.Sprintf("%s %s", name, setString(c.Not, strs))
}

// StringRegexpChecker matches a bound string term against a regular
// expression.
type StringRegexpChecker regexp.Regexp

func (c StringRegexpChecker) convert(symbols *datalog.SymbolTable) datalog.Checker {
	re := regexp.Regexp(c)
	return datalog.StringRegexpChecker{Regexp: &re}
}

func (c StringRegexpChecker) String(name Variable) string {
	re := regexp.Regexp(c)
	return fmt.Sprintf("%s match %s", name, re.String())
}

// DateComparisonChecker compares a bound date term.
type DateComparisonChecker struct {
	Comparison datalog.DateComparison
	Value      Date
}

func (c DateComparisonChecker) convert(symbols *datalog.SymbolTable) datalog.Checker {
	return datalog.DateComparisonChecker{
		Comparison: c.Comparison,
		Value:      c.Value.convert(symbols).(datalog.Date),
	}
}

func (c DateComparisonChecker) String(name Variable) string {
	op := "??"
	switch c.Comparison {
	case datalog.DateAfter:
		op = ">="
	case datalog.DateBefore:
		op = "<="
	}
	return fmt.Sprintf("%s %s %s", name, op, c.Value)
}

// SymbolInChecker checks set membership of a bound symbol term.
type SymbolInChecker struct {
	Set map[Symbol]struct{}
	Not bool
}

func (c SymbolInChecker) convert(symbols *datalog.SymbolTable) datalog.Checker {
	set := make(map[datalog.Symbol]struct{}, len(c.Set))
	for s := range c.Set {
		set[s.convert(symbols).(datalog.Symbol)] = struct{}{}
	}
	return datalog.SymbolInChecker{Set: set, Not: c.Not}
}

func (c SymbolInChecker) String(name Variable) string {
	strs := make([]string, 0, len(c.Set))
	for s := range c.Set {
		strs = append(strs, s.String())
	}
	return fmt.Sprintf("%s %s", name, setString(c.Not, strs))
}

// BytesComparisonChecker compares a bound bytes term.
type BytesComparisonChecker struct {
	Comparison datalog.BytesComparison
	Value      Bytes
}

func (c BytesComparisonChecker) convert(symbols *datalog.SymbolTable) datalog.Checker {
	return datalog.BytesComparisonChecker{
		Comparison: c.Comparison,
		Value:      c.Value.convert(symbols).(datalog.Bytes),
	}
}

func (c BytesComparisonChecker) String(name Variable) string {
	return fmt.Sprintf("%s == %s", name, c.Value)
}

// BytesInChecker checks set membership of a bound bytes term, keyed by
// hex encoding.
type BytesInChecker struct {
	Set map[string]struct{}
	Not bool
}

func (c BytesInChecker) convert(symbols *datalog.SymbolTable) datalog.Checker {
	return datalog.BytesInChecker{Set: c.Set, Not: c.Not}
}

func (c BytesInChecker) String(name Variable) string {
	strs := make([]string, 0, len(c.Set))
	for v := range c.Set {
		strs = append(strs, "hex:"+v)
	}
	return fmt.Sprintf("%s %s", name, setString(c.Not, strs))
}

func setString(not bool, elems []string) string {
	op := "in"
	if not {
		op = "not in"
	}
	sort.Strings(elems)
	return fmt.Sprintf("%s [%s]", op, strings.Join(elems, ", "))
}

func integerStrings(set map[Integer]struct{}) []string {
	out := make([]string, 0, len(set))
	for i := range set {
		out = append(out, i.String())
	}
	return out
}

// Predicate is a builder-facing, string-named predicate.
type Predicate struct {
	Name string
	IDs  []Term
}

func (p Predicate) convert(symbols *datalog.SymbolTable) datalog.Predicate {
	ids := make([]datalog.ID, len(p.IDs))
	for i, t := range p.IDs {
		ids[i] = t.convert(symbols)
	}
	return datalog.Predicate{Name: symbols.Insert(p.Name), IDs: ids}
}

func (p Predicate) String() string {
	terms := make([]string, len(p.IDs))
	for i, t := range p.IDs {
		terms[i] = t.String()
	}
	return fmt.Sprintf("%s(%s)", p.Name, strings.Join(terms, ", "))
}

// TermType discriminates the concrete kind of a builder-facing Term.
type TermType byte

const (
	TermTypeSymbol TermType = iota
	TermTypeVariable
	TermTypeInteger
	TermTypeString
	TermTypeDate
	TermTypeBytes
)

// Term is a builder-facing Datalog term, resolved against a token's
// symbol table only at conversion time.
type Term interface {
	Type() TermType
	String() string
	convert(symbols *datalog.SymbolTable) datalog.ID
}

// Symbol is a builder-facing interned symbol, named by string instead
// of by id.
type Symbol string

func (s Symbol) Type() TermType { return TermTypeSymbol }
func (s Symbol) convert(symbols *datalog.SymbolTable) datalog.ID {
	return symbols.Insert(string(s))
}
func (s Symbol) String() string { return "#" + string(s) }

// Variable is a builder-facing rule variable, named by string instead
// of by id.
type Variable string

func (v Variable) Type() TermType { return TermTypeVariable }
func (v Variable) convert(symbols *datalog.SymbolTable) datalog.ID {
	return datalog.Variable(symbols.Insert(string(v)))
}
func (v Variable) String() string { return "$" + string(v) }

// Integer is a ground integer term.
type Integer int64

func (i Integer) Type() TermType { return TermTypeInteger }
func (i Integer) convert(symbols *datalog.SymbolTable) datalog.ID {
	return datalog.Integer(i)
}
func (i Integer) String() string { return fmt.Sprintf("%d", int64(i)) }

// String is a ground text term.
type String string

func (s String) Type() TermType { return TermTypeString }
func (s String) convert(symbols *datalog.SymbolTable) datalog.ID {
	return datalog.String(s)
}
func (s String) String() string { return fmt.Sprintf("%q", string(s)) }

// Date is a ground timestamp term.
type Date time.Time

func (d Date) Type() TermType { return TermTypeDate }
func (d Date) convert(symbols *datalog.SymbolTable) datalog.ID {
	return datalog.Date(time.Time(d).Unix())
}
func (d Date) String() string { return time.Time(d).Format(time.RFC3339) }

// Bytes is a ground byte-string term.
type Bytes []byte

func (b Bytes) Type() TermType { return TermTypeBytes }
func (b Bytes) convert(symbols *datalog.SymbolTable) datalog.ID {
	return datalog.Bytes(b)
}
func (b Bytes) String() string { return "hex:" + hex.EncodeToString(b) }
