package datalog

// Rule derives Head from a conjunction of Body predicates, filtered by
// Constraints evaluated once a candidate binding set is complete.
// forbiddenIDs, set through World.AddRuleWithForbiddenIDs, stops the
// rule from deriving any fact whose head's first term is one of those
// symbols; non-authority block rules get #authority and #ambient here so
// they cannot emit facts in a privilege tier they do not own. It gates
// rule heads only: a block's own facts are checked when the World is
// seeded, not through this field.
type Rule struct {
	Head         Predicate
	Body         []Predicate
	Constraints  []Constraint
	forbiddenIDs []Symbol
}

// bindings maps each Variable appearing in the rule to the ID it has
// been unified with so far.
type bindings map[Variable]ID

func (b bindings) clone() bindings {
	c := make(bindings, len(b))
	for k, v := range b {
		c[k] = v
	}
	return c
}

// apply substitutes every bound variable in p, leaving unbound
// variables untouched.
func (b bindings) apply(p Predicate) Predicate {
	ids := make([]ID, len(p.IDs))
	for i, id := range p.IDs {
		if v, ok := id.(Variable); ok {
			if bound, found := b[v]; found {
				ids[i] = bound
				continue
			}
		}
		ids[i] = id
	}
	return Predicate{Name: p.Name, IDs: ids}
}

// headContainsForbidden reports whether the rule's head asserts a
// symbol it is not privileged to assert.
func (r Rule) headContainsForbidden() bool {
	if len(r.forbiddenIDs) == 0 || len(r.Head.IDs) == 0 {
		return false
	}
	first, ok := r.Head.IDs[0].(Symbol)
	if !ok {
		return false
	}
	for _, forbidden := range r.forbiddenIDs {
		if first == forbidden {
			return true
		}
	}
	return false
}

// Apply runs the rule's body against facts, appending every derived
// fact (after constraint filtering) into newFacts. It returns an error
// only if a constraint check itself errors (e.g. a type mismatch
// between a checker and the value it was matched against).
func (r Rule) Apply(facts *FactSet, newFacts *FactSet) error {
	if r.headContainsForbidden() {
		return nil
	}
	c := newCombinator(r.Body, *facts)
	results, err := c.combine()
	if err != nil {
		return err
	}
	for _, b := range results {
		ok, err := r.satisfiesConstraints(b)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		head := b.apply(r.Head)
		if containsVariable(head) {
			continue
		}
		newFacts.Insert(Fact{head})
	}
	return nil
}

func (r Rule) satisfiesConstraints(b bindings) (bool, error) {
	for _, c := range r.Constraints {
		val, bound := b[c.Name]
		if !bound {
			return false, nil
		}
		ok, err := c.Check(val)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func containsVariable(p Predicate) bool {
	for _, id := range p.IDs {
		if _, ok := id.(Variable); ok {
			return true
		}
	}
	return false
}

// combinator performs recursive backtracking unification of a rule
// body's predicates against a fact set, accumulating variable
// bindings across predicates and yielding one bindings map per
// successful complete match.
type combinator struct {
	body  []Predicate
	facts FactSet
}

func newCombinator(body []Predicate, facts FactSet) *combinator {
	return &combinator{body: body, facts: facts}
}

func (c *combinator) combine() ([]bindings, error) {
	return c.combineFrom(0, bindings{})
}

func (c *combinator) combineFrom(idx int, acc bindings) ([]bindings, error) {
	if idx >= len(c.body) {
		return []bindings{acc}, nil
	}
	pred := acc.apply(c.body[idx])
	var results []bindings
	for _, f := range c.facts {
		b, ok := unify(pred, f.Predicate, acc)
		if !ok {
			continue
		}
		rest, err := c.combineFrom(idx+1, b)
		if err != nil {
			return nil, err
		}
		results = append(results, rest...)
	}
	return results, nil
}

// unify attempts to match pred (may still contain variables) against
// the ground fact f, extending base with any new bindings. It never
// mutates base.
func unify(pred, f Predicate, base bindings) (bindings, bool) {
	if pred.Name != f.Name || len(pred.IDs) != len(f.IDs) {
		return nil, false
	}
	b := base.clone()
	for i, id := range pred.IDs {
		v, isVar := id.(Variable)
		if !isVar {
			if !id.Equal(f.IDs[i]) {
				return nil, false
			}
			continue
		}
		if existing, bound := b[v]; bound {
			if !existing.Equal(f.IDs[i]) {
				return nil, false
			}
			continue
		}
		b[v] = f.IDs[i]
	}
	return b, true
}
