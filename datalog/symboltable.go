package datalog

import "fmt"

// defaultSymbols are predefined and available in every implementation,
// so they never need to travel on the wire. Their ids (0..len-1) must
// be stable across issuer and verifier.
var defaultSymbols = []string{
	"authority",
	"ambient",
	"resource",
	"operation",
	"right",
	"current_time",
	"revocation_id",
}

// SymbolTable is an append-only ordered sequence of unique strings;
// the id of a symbol is its position in the slice.
type SymbolTable []string

// DefaultSymbolTable returns a fresh table seeded with the well-known
// symbols, constructed identically on every call so ids 0..6 are
// stable across issuer and verifier.
func DefaultSymbolTable() *SymbolTable {
	t := make(SymbolTable, len(defaultSymbols))
	copy(t, defaultSymbols)
	return &t
}

// Insert returns the existing id for s if present, otherwise appends
// s and returns its new id.
func (t *SymbolTable) Insert(s string) Symbol {
	for i, v := range *t {
		if v == s {
			return Symbol(i)
		}
	}
	*t = append(*t, s)
	return Symbol(len(*t) - 1)
}

// Add is a convenience wrapper returning the interned symbol as a Term.
func (t *SymbolTable) Add(s string) ID {
	return t.Insert(s)
}

// Get returns the id of s, if already present.
func (t *SymbolTable) Get(s string) (Symbol, bool) {
	for i, v := range *t {
		if v == s {
			return Symbol(i), true
		}
	}
	return 0, false
}

// Sym is Get rendered as an ID, or nil when absent.
func (t *SymbolTable) Sym(s string) ID {
	if id, ok := t.Get(s); ok {
		return id
	}
	return nil
}

// Str renders sym back to its string form.
func (t *SymbolTable) Str(sym Symbol) string {
	if int(sym) >= len(*t) {
		return fmt.Sprintf("<invalid symbol %d>", sym)
	}
	return (*t)[sym]
}

// Clone returns a table sharing no backing array with the receiver.
func (t *SymbolTable) Clone() *SymbolTable {
	c := make(SymbolTable, len(*t))
	copy(c, *t)
	return &c
}

// SplitOff removes and returns the elements in [at, len) as a newly
// allocated table; the receiver keeps [0, at).
func (t *SymbolTable) SplitOff(at int) *SymbolTable {
	if at > len(*t) {
		panic("datalog: split index out of bounds")
	}
	rest := make(SymbolTable, len(*t)-at)
	copy(rest, (*t)[at:])
	*t = (*t)[:at]
	return &rest
}

// Len returns the number of interned strings.
func (t *SymbolTable) Len() int {
	return len(*t)
}

// IsDisjoint reports whether the receiver and other share no strings.
func (t *SymbolTable) IsDisjoint(other *SymbolTable) bool {
	seen := make(map[string]struct{}, len(*t))
	for _, s := range *t {
		seen[s] = struct{}{}
	}
	for _, s := range *other {
		if _, ok := seen[s]; ok {
			return false
		}
	}
	return true
}

// Extend appends every string from other not already present.
// Precondition: the caller has already checked IsDisjoint; violating
// a merge's disjointness at the token boundary is reported as
// SymbolTableOverlap by the caller, not by Extend itself.
func (t *SymbolTable) Extend(other *SymbolTable) {
	for _, s := range *other {
		t.Insert(s)
	}
}
