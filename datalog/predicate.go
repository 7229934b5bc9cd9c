package datalog

import (
	"fmt"
	"strings"
)

// Predicate is a named tuple of terms, e.g. right(#authority, "/f", #read).
type Predicate struct {
	Name Symbol
	IDs  []ID
}

// Equal reports whether p and p2 are identical, term for term.
func (p Predicate) Equal(p2 Predicate) bool {
	if p.Name != p2.Name || len(p.IDs) != len(p2.IDs) {
		return false
	}
	for i, id := range p.IDs {
		if !id.Equal(p2.IDs[i]) {
			return false
		}
	}
	return true
}

// Match reports whether p2 could unify with p: same name and arity,
// ignoring positions where either side is a Variable.
func (p Predicate) Match(p2 Predicate) bool {
	if p.Name != p2.Name || len(p.IDs) != len(p2.IDs) {
		return false
	}
	for i, id := range p.IDs {
		_, v1 := id.(Variable)
		_, v2 := p2.IDs[i].(Variable)
		if v1 || v2 {
			continue
		}
		if !id.Equal(p2.IDs[i]) {
			return false
		}
	}
	return true
}

// Clone returns a predicate with its own backing slice.
func (p Predicate) Clone() Predicate {
	ids := make([]ID, len(p.IDs))
	copy(ids, p.IDs)
	return Predicate{Name: p.Name, IDs: ids}
}

// Fact is a ground predicate: no Variable may appear among its terms.
type Fact struct {
	Predicate
}

// FactSet is an unordered, deduplicated collection of facts.
type FactSet []Fact

// Insert adds f if not already present, reporting whether it was new.
func (s *FactSet) Insert(f Fact) bool {
	for _, existing := range *s {
		if existing.Predicate.Equal(f.Predicate) {
			return false
		}
	}
	*s = append(*s, f)
	return true
}

// InsertAll inserts every fact in facts, skipping duplicates.
func (s *FactSet) InsertAll(facts []Fact) {
	for _, f := range facts {
		s.Insert(f)
	}
}

// Equal reports whether s and x contain the same facts, in any order.
func (s *FactSet) Equal(x *FactSet) bool {
	if len(*s) != len(*x) {
		return false
	}
	for _, f1 := range *x {
		found := false
		for _, f2 := range *s {
			if f1.Predicate.Equal(f2.Predicate) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (p Predicate) debugString(t *SymbolTable) string {
	terms := make([]string, len(p.IDs))
	for i, id := range p.IDs {
		terms[i] = debugTerm(t, id)
	}
	return fmt.Sprintf("%s(%s)", t.Str(p.Name), strings.Join(terms, ", "))
}

func debugTerm(t *SymbolTable, id ID) string {
	switch v := id.(type) {
	case Symbol:
		return "#" + t.Str(v)
	case Variable:
		return "$" + t.Str(Symbol(v))
	default:
		return id.String()
	}
}
