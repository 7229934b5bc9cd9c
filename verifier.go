package biscuit

import (
	"time"

	"github.com/divarvel/biscuit-go/datalog"
)

// Verifier runs a token's caveats, plus any caveats and ambient facts
// the checking side adds of its own, against a single saturated World.
// Every caveat — the token's and the verifier's own — is checked
// exactly once per Verify call.
type Verifier interface {
	AddFact(fact Fact)
	AddRule(rule Rule)
	AddCaveat(caveat Caveat)
	SetTime(now time.Time)
	RevocationCheck(revoked []int64)
	Query(rule Rule) (FactSet, error)
	Verify() error
	PrintWorld() string
	Reset()
}

type verifier struct {
	token       *Token
	baseWorld   *datalog.World
	baseSymbols *datalog.SymbolTable
	world       *datalog.World
	symbols     *datalog.SymbolTable

	caveats []Caveat
	dirty   bool
}

var _ Verifier = (*verifier)(nil)

// NewVerifier builds a Verifier from a token whose root key or MAC has
// already been checked: this saturates the token's own World once, so
// every subsequent Verify call starts from the same authority and
// block facts.
func NewVerifier(t *Token) (Verifier, error) {
	baseWorld, err := t.generateWorld(t.symbols)
	if err != nil {
		return nil, err
	}
	return &verifier{
		token:       t,
		baseWorld:   baseWorld,
		baseSymbols: t.symbols.Clone(),
		world:       baseWorld.Clone(),
		symbols:     t.symbols.Clone(),
	}, nil
}

func (v *verifier) AddFact(fact Fact) {
	v.world.AddFact(fact.convert(v.symbols))
}

func (v *verifier) AddRule(rule Rule) {
	v.world.AddRule(rule.convert(v.symbols))
}

func (v *verifier) AddCaveat(caveat Caveat) {
	v.caveats = append(v.caveats, caveat)
}

// SetTime adds the time(#ambient, now) ambient fact that caveats use
// to constrain against the current time, e.g. a rule requiring
// time(#ambient, $t), $t < expiry.
func (v *verifier) SetTime(now time.Time) {
	v.AddFact(Fact{Predicate{
		Name: "time",
		IDs:  []Term{SymbolAmbient, Date(now)},
	}})
}

// RevocationCheck installs a caveat that is satisfied when at least one
// revocation_id fact has a value outside revoked. A token whose
// revocation_id values are all in revoked fails it, and so does a token
// carrying no revocation_id fact at all; a token carrying several
// revocation_id facts passes as soon as one of them is outside revoked,
// even if another one is in it.
func (v *verifier) RevocationCheck(revoked []int64) {
	set := make(map[Integer]struct{}, len(revoked))
	for _, id := range revoked {
		set[Integer(id)] = struct{}{}
	}
	id := Variable("revocation_check_id")
	v.AddCaveat(Caveat{
		Queries: []Rule{
			{
				Head: Predicate{Name: "revocation_check", IDs: []Term{id}},
				Body: []Predicate{
					{Name: "revocation_id", IDs: []Term{id}},
				},
				Constraints: []Constraint{
					{Name: id, Checker: IntegerInChecker{Set: set, Not: true}},
				},
			},
		},
	})
}

func (v *verifier) Query(rule Rule) (FactSet, error) {
	if err := v.world.Run(); err != nil {
		return nil, err
	}
	v.dirty = true

	facts, err := v.world.QueryRule(rule.convert(v.symbols))
	if err != nil {
		return nil, err
	}

	result := make(FactSet, 0, len(facts))
	for _, fact := range facts {
		f, err := fromDatalogFact(v.symbols, fact)
		if err != nil {
			return nil, err
		}
		result = append(result, *f)
	}
	return result, nil
}

// Verify saturates the World once, then checks every caveat carried by
// the token's blocks and every caveat added directly to the verifier,
// collecting every failure into a single FailedCaveatsError.
func (v *verifier) Verify() error {
	if v.symbols.Sym(string(SymbolAuthority)) == nil || v.symbols.Sym(string(SymbolAmbient)) == nil {
		return ErrMissingSymbols
	}

	if err := v.world.Run(); err != nil {
		return err
	}
	v.dirty = true

	var failures []CaveatFailure

	for blockID, blockCaveats := range v.token.Caveats() {
		for caveatID, c := range blockCaveats {
			ok, err := v.world.CheckCaveat(c)
			if err != nil {
				return err
			}
			if !ok {
				failures = append(failures, CaveatFailure{
					BlockID:  blockID,
					CaveatID: caveatID,
					Rule:     renderCaveat(v.symbols, c),
				})
			}
		}
	}

	for caveatID, caveat := range v.caveats {
		c := caveat.convert(v.symbols)
		ok, err := v.world.CheckCaveat(c)
		if err != nil {
			return err
		}
		if !ok {
			failures = append(failures, CaveatFailure{
				BlockID:  -1,
				CaveatID: caveatID,
				Rule:     renderCaveat(v.symbols, c),
			})
		}
	}

	if len(failures) > 0 {
		return &FailedCaveatsError{Failures: failures}
	}
	return nil
}

func (v *verifier) PrintWorld() string {
	debug := datalog.SymbolDebugger{Symbols: v.symbols}
	return debug.World(v.world)
}

// Reset discards facts, rules and caveats added since NewVerifier, so
// the same Verifier can be reused for another check against the
// token's unmodified base World.
func (v *verifier) Reset() {
	v.world = v.baseWorld.Clone()
	v.symbols = v.baseSymbols.Clone()
	v.caveats = nil
	v.dirty = false
}
