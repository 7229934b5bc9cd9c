package datalog

import (
	"fmt"
	"sort"
	"strings"
)

// SymbolDebugger renders facts, rules and caveats back to readable
// text using a symbol table, so error messages stay meaningful once a
// token has left the process that issued it.
type SymbolDebugger struct {
	Symbols *SymbolTable
}

// Predicate renders a single predicate, e.g. `right(#authority, "/f")`.
func (d SymbolDebugger) Predicate(p Predicate) string {
	return p.debugString(d.Symbols)
}

// Fact renders a single ground fact.
func (d SymbolDebugger) Fact(f Fact) string {
	return d.Predicate(f.Predicate)
}

// Rule renders a rule as `head <- body1, body2, ...`, appending any
// constraints as ` | @name1, @name2` (the constrained variables only;
// the checker's comparison and value are not rendered).
func (d SymbolDebugger) Rule(r Rule) string {
	body := make([]string, len(r.Body))
	for i, p := range r.Body {
		body[i] = d.Predicate(p)
	}
	s := fmt.Sprintf("%s <- %s", d.Predicate(r.Head), strings.Join(body, ", "))
	if len(r.Constraints) > 0 {
		cs := make([]string, len(r.Constraints))
		for i, c := range r.Constraints {
			cs[i] = fmt.Sprintf("@%s", c.Name.String())
		}
		s += " | " + strings.Join(cs, ", ")
	}
	return s
}

// Caveat renders a caveat as its queries joined by " || ", matching
// its disjunctive satisfaction semantics.
func (d SymbolDebugger) Caveat(c Caveat) string {
	qs := make([]string, len(c.Queries))
	for i, q := range c.Queries {
		qs[i] = d.Rule(q)
	}
	return strings.Join(qs, " || ")
}

// FactSet renders every fact, sorted for deterministic output.
func (d SymbolDebugger) FactSet(facts FactSet) string {
	lines := make([]string, len(facts))
	for i, f := range facts {
		lines[i] = d.Fact(f)
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n")
}

// World renders every fact and rule currently held by w, sorted for
// deterministic output.
func (d SymbolDebugger) World(w *World) string {
	var b strings.Builder
	b.WriteString(d.FactSet(w.facts))
	if len(w.rules) > 0 {
		rules := make([]string, len(w.rules))
		for i, r := range w.rules {
			rules[i] = d.Rule(r)
		}
		sort.Strings(rules)
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(strings.Join(rules, "\n"))
	}
	return b.String()
}
