package biscuit

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCaveatFailureStringFormatsOrigin(t *testing.T) {
	blockFailure := CaveatFailure{BlockID: 1, CaveatID: 0, Rule: "right(#authority, $x)"}
	require.Equal(t, "block 1, caveat 0: right(#authority, $x)", blockFailure.String())

	verifierFailure := CaveatFailure{BlockID: -1, CaveatID: 2, Rule: "resource(#ambient, $r)"}
	require.Equal(t, "verifier, caveat 2: resource(#ambient, $r)", verifierFailure.String())
}

func TestFailedCaveatsErrorJoinsEachFailure(t *testing.T) {
	err := &FailedCaveatsError{Failures: []CaveatFailure{
		{BlockID: 0, CaveatID: 0, Rule: "a"},
		{BlockID: -1, CaveatID: 0, Rule: "b"},
	}}
	msg := err.Error()
	require.Contains(t, msg, "block 0, caveat 0: a")
	require.Contains(t, msg, "verifier, caveat 0: b")
}

func TestInvalidBlockIndexErrorMessage(t *testing.T) {
	err := InvalidBlockIndexError{Expected: 2, Got: 5}
	require.Equal(t, "biscuit: invalid block index: expected 2, got 5", err.Error())
}
