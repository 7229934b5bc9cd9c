package biscuit

import (
	"errors"
	"fmt"
	"strings"

	"github.com/divarvel/biscuit-go/datalog"
)

var (
	// ErrSymbolTableOverlap is returned when a new block's local symbol
	// table shares a string with the token's existing table.
	ErrSymbolTableOverlap = errors.New("biscuit: symbol table overlap")
	// ErrInvalidAuthorityIndex occurs when the authority block's index
	// is not 0.
	ErrInvalidAuthorityIndex = errors.New("biscuit: invalid authority index")
	// ErrInvalidAuthorityFact occurs when an authority fact's first
	// term is tagged #ambient.
	ErrInvalidAuthorityFact = errors.New("biscuit: invalid authority fact")
	// ErrInvalidBlockIndex occurs when a block is appended out of
	// sequence.
	ErrInvalidBlockIndex = errors.New("biscuit: invalid block index")
	// ErrDuplicateFact is returned by a builder when a fact was already
	// added to the same block.
	ErrDuplicateFact = errors.New("biscuit: fact already exists")
	// ErrEmptyKeys is returned when verifying a token carrying no keys.
	ErrEmptyKeys = errors.New("biscuit: empty keys")
	// ErrUnknownPublicKey is returned when a token's declared root key
	// does not match the verifier's configured root key.
	ErrUnknownPublicKey = errors.New("biscuit: unknown public key")
	// ErrMissingSymbols is returned when the well-known authority or
	// ambient symbols are absent from a token's symbol table.
	ErrMissingSymbols = errors.New("biscuit: missing well-known symbols")
	// ErrFactNotFound is returned by GetBlockID when no block contains
	// the searched fact.
	ErrFactNotFound = errors.New("biscuit: fact not found")
	// ErrAlreadySealed is returned by Append/Seal when called on a
	// token that is already sealed.
	ErrAlreadySealed = errors.New("biscuit: token is sealed")
	// ErrInvalidMAC is returned when a sealed token's MAC does not
	// match the verifier's secret.
	ErrInvalidMAC = errors.New("biscuit: invalid MAC")
)

// InvalidBlockIndexError reports that a block was appended at the
// wrong position in the chain.
type InvalidBlockIndexError struct {
	Expected, Got uint32
}

func (e InvalidBlockIndexError) Error() string {
	return fmt.Sprintf("biscuit: invalid block index: expected %d, got %d", e.Expected, e.Got)
}

// Unwrap lets errors.Is match an InvalidBlockIndexError against
// ErrInvalidBlockIndex.
func (e InvalidBlockIndexError) Unwrap() error {
	return ErrInvalidBlockIndex
}

// InvalidBlockFactError reports that block BlockID carries a fact whose
// first term is tagged #authority or #ambient, which only the
// authority block may do.
type InvalidBlockFactError struct {
	BlockID uint32
}

func (e InvalidBlockFactError) Error() string {
	return fmt.Sprintf("biscuit: invalid block fact: block %d", e.BlockID)
}

// InvalidBlockRuleError reports that block BlockID carries a rule whose
// head's first term is tagged #authority or #ambient, which only the
// authority block may do.
type InvalidBlockRuleError struct {
	BlockID uint32
}

func (e InvalidBlockRuleError) Error() string {
	return fmt.Sprintf("biscuit: invalid block rule: block %d", e.BlockID)
}

// CaveatFailure identifies one caveat that failed to be satisfied
// during a check, along with its rendered rule text so the failure
// remains meaningful outside the process that produced it.
type CaveatFailure struct {
	// BlockID is 0 for the authority block, i+1 for blocks[i], or -1
	// for a caveat added directly to the verifier.
	BlockID int
	// CaveatID is the caveat's position within its block.
	CaveatID int
	// Rule is the rendered text of the caveat's first query, via
	// datalog.SymbolDebugger.
	Rule string
}

func (f CaveatFailure) String() string {
	origin := fmt.Sprintf("block %d", f.BlockID)
	if f.BlockID < 0 {
		origin = "verifier"
	}
	return fmt.Sprintf("%s, caveat %d: %s", origin, f.CaveatID, f.Rule)
}

// FailedCaveatsError reports every caveat that failed during a single
// check, across the verifier's own caveats and every block's caveats.
type FailedCaveatsError struct {
	Failures []CaveatFailure
}

func (e *FailedCaveatsError) Error() string {
	lines := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		lines[i] = f.String()
	}
	return fmt.Sprintf("biscuit: failed caveats:\n%s", strings.Join(lines, "\n"))
}

func renderCaveat(symbols *datalog.SymbolTable, c datalog.Caveat) string {
	debug := datalog.SymbolDebugger{Symbols: symbols}
	if len(c.Queries) == 0 {
		return "<empty caveat>"
	}
	return debug.Rule(c.Queries[0])
}
