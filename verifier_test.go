package biscuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestVerifierQueryReturnsBoundFacts(t *testing.T) {
	token, root := newTestToken(t)

	v, err := token.Verify(root.Public())
	require.NoError(t, err)

	facts, err := v.Query(Rule{
		Head: Predicate{Name: "allowed", IDs: []Term{Variable("resource"), Variable("op")}},
		Body: []Predicate{
			{Name: "right", IDs: []Term{SymbolAuthority, Variable("resource"), Variable("op")}},
		},
	})
	require.NoError(t, err)
	require.Len(t, facts, 2)
	for _, f := range facts {
		require.Equal(t, "allowed", f.Predicate.Name)
	}
}

func TestVerifierSetTimeBindsAmbientTimeFact(t *testing.T) {
	token, root := newTestToken(t)

	v, err := token.Verify(root.Public())
	require.NoError(t, err)

	now := time.Unix(1700000000, 0).UTC()
	v.SetTime(now)

	facts, err := v.Query(Rule{
		Head: Predicate{Name: "seen_time", IDs: []Term{Variable("t")}},
		Body: []Predicate{
			{Name: "time", IDs: []Term{SymbolAmbient, Variable("t")}},
		},
	})
	require.NoError(t, err)
	require.Len(t, facts, 1)
	require.Equal(t, now.Unix(), time.Time(facts[0].Predicate.IDs[0].(Date)).Unix())
}

func TestVerifierResetDiscardsAddedFactsAndCaveats(t *testing.T) {
	token, root := newTestToken(t)

	v, err := token.Verify(root.Public())
	require.NoError(t, err)

	v.AddFact(Fact{Predicate: Predicate{Name: "resource", IDs: []Term{SymbolAmbient, String("/a/file1")}}})
	v.AddFact(Fact{Predicate: Predicate{Name: "operation", IDs: []Term{SymbolAmbient, Symbol("read")}}})
	require.NoError(t, v.Verify())

	v.Reset()

	// Without the ambient facts re-added, the caveat requiring a
	// matching resource/operation/right triple can no longer be
	// satisfied.
	err = v.Verify()
	require.Error(t, err)
	var failed *FailedCaveatsError
	require.ErrorAs(t, err, &failed)
}

func TestVerifierPrintWorldRendersSymbols(t *testing.T) {
	token, root := newTestToken(t)

	v, err := token.Verify(root.Public())
	require.NoError(t, err)

	rendered := v.PrintWorld()
	require.Contains(t, rendered, "right")
}

func TestVerifierAddRuleExpandsQueryResults(t *testing.T) {
	token, root := newTestToken(t)

	v, err := token.Verify(root.Public())
	require.NoError(t, err)

	v.AddRule(Rule{
		Head: Predicate{Name: "readable", IDs: []Term{Variable("resource")}},
		Body: []Predicate{
			{Name: "right", IDs: []Term{SymbolAuthority, Variable("resource"), Symbol("read")}},
		},
	})

	facts, err := v.Query(Rule{
		Head: Predicate{Name: "result", IDs: []Term{Variable("resource")}},
		Body: []Predicate{
			{Name: "readable", IDs: []Term{Variable("resource")}},
		},
	})
	require.NoError(t, err)
	require.Len(t, facts, 1)
	require.Equal(t, String("/a/file1"), facts[0].Predicate.IDs[0])
}
