package datalog

import "errors"

// ErrRunLimit is returned by World.Run when saturation does not
// converge within the configured iteration or fact-count bound. Both
// causes are folded into one sentinel: callers only need to know that
// evaluation was aborted for safety, not which specific bound tripped.
var ErrRunLimit = errors.New("datalog: run limit reached before fixpoint")

const (
	defaultMaxIterations = 100
	defaultMaxFacts      = 10000
)

// Caveat is a disjunction of queries: it is satisfied iff at least one
// of its Queries yields a non-empty result set against the World's
// facts.
type Caveat struct {
	Queries []Rule
}

// World holds the transient fact base and rule set used to saturate
// and check caveats for a single verification pass. It is never
// serialized; it is rebuilt from a token's blocks and a verifier's
// ambient facts every time a check runs.
type World struct {
	facts         FactSet
	rules         []Rule
	maxIterations int
	maxFacts      int
}

// WorldOption configures a World's safety bounds at construction time.
type WorldOption func(*World)

// WithMaxIterations overrides the default saturation-loop iteration
// bound.
func WithMaxIterations(n int) WorldOption {
	return func(w *World) { w.maxIterations = n }
}

// WithMaxFacts overrides the default total fact-count bound.
func WithMaxFacts(n int) WorldOption {
	return func(w *World) { w.maxFacts = n }
}

// NewWorld returns an empty World ready to accept facts and rules.
func NewWorld(opts ...WorldOption) *World {
	w := &World{
		maxIterations: defaultMaxIterations,
		maxFacts:      defaultMaxFacts,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// AddFact inserts a ground fact into the World.
func (w *World) AddFact(f Fact) {
	w.facts.Insert(f)
}

// AddRule registers a rule to be applied during Run.
func (w *World) AddRule(r Rule) {
	w.rules = append(w.rules, r)
}

// AddRuleWithForbiddenIDs registers a rule whose head may not assert
// any of the given symbols as its first term.
func (w *World) AddRuleWithForbiddenIDs(r Rule, forbidden []Symbol) {
	r.forbiddenIDs = forbidden
	w.rules = append(w.rules, r)
}

// Run saturates the fact base by repeatedly applying every registered
// rule until a fixpoint is reached (no iteration adds a new fact), or
// aborts with ErrRunLimit if the configured iteration or fact-count
// bound is exceeded first.
func (w *World) Run() error {
	for i := 0; i < w.maxIterations; i++ {
		var newFacts FactSet
		for _, r := range w.rules {
			if err := r.Apply(&w.facts, &newFacts); err != nil {
				return err
			}
		}
		added := false
		for _, f := range newFacts {
			if w.facts.Insert(f) {
				added = true
			}
		}
		if len(w.facts) > w.maxFacts {
			return ErrRunLimit
		}
		if !added {
			return nil
		}
	}
	return ErrRunLimit
}

// Query returns every fact currently in the World matching pred (which
// may itself contain variables, treated as wildcards).
func (w *World) Query(pred Predicate) FactSet {
	var out FactSet
	for _, f := range w.facts {
		if pred.Match(f.Predicate) {
			out = append(out, f)
		}
	}
	return out
}

// QueryRule evaluates r's body against the current fact base without
// registering it, and without mutating the World, returning every
// satisfying head instantiation. This is how a Caveat's queries are
// tested: satisfaction is "at least one result", not saturation.
func (w *World) QueryRule(r Rule) ([]Fact, error) {
	c := newCombinator(r.Body, w.facts)
	results, err := c.combine()
	if err != nil {
		return nil, err
	}
	var out []Fact
	for _, b := range results {
		ok, err := r.satisfiesConstraints(b)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		out = append(out, Fact{b.apply(r.Head)})
	}
	return out, nil
}

// CheckCaveat reports whether c is satisfied against the World's
// current facts: true iff at least one of its Queries produces a
// non-empty result.
func (w *World) CheckCaveat(c Caveat) (bool, error) {
	for _, q := range c.Queries {
		results, err := w.QueryRule(q)
		if err != nil {
			return false, err
		}
		if len(results) > 0 {
			return true, nil
		}
	}
	return false, nil
}

// Facts returns the World's current fact set.
func (w *World) Facts() FactSet {
	return w.facts
}

// Clone returns a World with its own fact and rule slices, sharing no
// backing array with the receiver.
func (w *World) Clone() *World {
	facts := make(FactSet, len(w.facts))
	copy(facts, w.facts)
	rules := make([]Rule, len(w.rules))
	copy(rules, w.rules)
	return &World{
		facts:         facts,
		rules:         rules,
		maxIterations: w.maxIterations,
		maxFacts:      w.maxFacts,
	}
}
