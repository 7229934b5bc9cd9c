package biscuit

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/divarvel/biscuit-go/datalog"
	"github.com/divarvel/biscuit-go/sig"
	"github.com/divarvel/biscuit-go/wire"
)

// Token is a chain of blocks carrying Datalog facts, rules and caveats,
// authenticated either by an aggregated signature chain (the default,
// publicly verifiable) or, after Seal, by a symmetric MAC. Exactly one
// of its two containers is non-nil at any time.
type Token struct {
	authority *Block
	blocks    []*Block
	symbols   *datalog.SymbolTable

	signed *signedContainer
	sealed *sealedContainer
}

// New mints a token from a freshly built authority block, signed by
// root. baseSymbols seeds the token's symbol table before the
// authority block's own local symbols are appended; callers typically
// pass datalog.DefaultSymbolTable().
func New(rng io.Reader, root sig.Keypair, baseSymbols *datalog.SymbolTable, authority *Block) (*Token, error) {
	if rng == nil {
		rng = rand.Reader
	}

	symbols := baseSymbols.Clone()
	if !symbols.IsDisjoint(authority.symbols) {
		return nil, ErrSymbolTableOverlap
	}
	if authority.index != 0 {
		return nil, ErrInvalidAuthorityIndex
	}
	symbols.Extend(authority.symbols)

	container, err := newSignedContainer(rng, root, authority)
	if err != nil {
		return nil, err
	}

	return &Token{
		authority: authority,
		symbols:   symbols,
		signed:    container,
	}, nil
}

// CreateBlock returns a BlockBuilder for the next block to append,
// seeded with the token's current symbol table so newly interned
// strings don't collide with existing ones.
func (t *Token) CreateBlock() BlockBuilder {
	return NewBlockBuilder(uint32(len(t.blocks)+1), t.symbols.Clone())
}

// Append returns a new Token with block attached to the chain, signed
// by keypair. The receiver is left untouched. Append fails once a
// token has been Sealed.
func (t *Token) Append(rng io.Reader, keypair sig.Keypair, block *Block) (*Token, error) {
	if t.signed == nil {
		return nil, ErrAlreadySealed
	}
	if !t.symbols.IsDisjoint(block.symbols) {
		return nil, ErrSymbolTableOverlap
	}
	if int(block.index) != len(t.blocks)+1 {
		return nil, InvalidBlockIndexError{Expected: uint32(len(t.blocks) + 1), Got: block.index}
	}

	container, err := t.signed.append(rng, keypair, block)
	if err != nil {
		return nil, err
	}

	blocks := make([]*Block, len(t.blocks)+1)
	copy(blocks, t.blocks)
	blocks[len(t.blocks)] = block

	symbols := t.symbols.Clone()
	symbols.Extend(block.symbols)

	return &Token{
		authority: t.authority,
		blocks:    blocks,
		symbols:   symbols,
		signed:    container,
	}, nil
}

// Seal discards the token's signature chain in favor of a single
// HMAC-SHA256 tag computed under secret. A sealed token can no longer
// be Appended to, and is verified with VerifySealed/a Verifier built
// from FromSealed instead of a root public key.
func (t *Token) Seal(secret []byte) (*Token, error) {
	if t.signed == nil {
		return nil, ErrAlreadySealed
	}
	return &Token{
		authority: t.authority,
		blocks:    t.blocks,
		symbols:   t.symbols,
		sealed:    sealFromSigned(secret, t.signed),
	}, nil
}

// IsSealed reports whether the token has had Seal called on it.
func (t *Token) IsSealed() bool {
	return t.sealed != nil
}

// CheckRootKey verifies that root is the key that produced the
// token's first signature. It does not check the signature itself;
// call Verify for that.
func (t *Token) CheckRootKey(root sig.PublicKey) error {
	if t.signed == nil {
		return ErrAlreadySealed
	}
	return t.signed.checkRootKey(root)
}

// Verify checks the token's aggregated signature chain against root,
// then returns a Verifier ready to run caveats against the token's
// facts and rules. It fails for a sealed token; use VerifySealed
// instead.
func (t *Token) Verify(root sig.PublicKey) (Verifier, error) {
	if t.signed == nil {
		return nil, ErrAlreadySealed
	}
	if err := t.CheckRootKey(root); err != nil {
		return nil, err
	}
	if err := t.signed.verify(); err != nil {
		return nil, err
	}
	return NewVerifier(t)
}

// VerifySealed checks the token's MAC against secret, then returns a
// Verifier ready to run caveats. It fails for a non-sealed token.
func (t *Token) VerifySealed(secret []byte) (Verifier, error) {
	if t.sealed == nil {
		return nil, fmt.Errorf("biscuit: token is not sealed")
	}
	if err := t.sealed.verify(secret); err != nil {
		return nil, err
	}
	return NewVerifier(t)
}

// Caveats returns every block's caveats, authority first.
func (t *Token) Caveats() [][]datalog.Caveat {
	result := make([][]datalog.Caveat, 0, len(t.blocks)+1)
	result = append(result, t.authority.caveats)
	for _, block := range t.blocks {
		result = append(result, block.caveats)
	}
	return result
}

// ToBytes serializes a non-sealed token to its wire format.
func (t *Token) ToBytes() ([]byte, error) {
	if t.signed == nil {
		return nil, ErrAlreadySealed
	}
	wc, err := t.signed.toWire()
	if err != nil {
		return nil, err
	}
	return wire.EncodeSignedContainer(wc)
}

// FromBytes parses a non-sealed token previously produced by ToBytes.
func FromBytes(data []byte, baseSymbols *datalog.SymbolTable) (*Token, error) {
	wc, err := wire.DecodeSignedContainer(data)
	if err != nil {
		return nil, err
	}
	container, err := signedContainerFromWire(wc)
	if err != nil {
		return nil, err
	}

	authority := blockFromWire(wc.Authority)
	blocks := make([]*Block, len(wc.Blocks))
	symbols := baseSymbols.Clone()
	symbols.Extend(authority.symbols)
	for i, wb := range wc.Blocks {
		blocks[i] = blockFromWire(wb)
		symbols.Extend(blocks[i].symbols)
	}

	return &Token{
		authority: authority,
		blocks:    blocks,
		symbols:   symbols,
		signed:    container,
	}, nil
}

// ToSealedBytes serializes a sealed token to its wire format.
func (t *Token) ToSealedBytes() ([]byte, error) {
	if t.sealed == nil {
		return nil, fmt.Errorf("biscuit: token is not sealed")
	}
	wc, err := t.sealed.toWire()
	if err != nil {
		return nil, err
	}
	return wire.EncodeSealedContainer(wc)
}

// FromSealed parses a sealed token previously produced by
// ToSealedBytes.
func FromSealed(data []byte, baseSymbols *datalog.SymbolTable) (*Token, error) {
	wc, err := wire.DecodeSealedContainer(data)
	if err != nil {
		return nil, err
	}
	container, err := sealedContainerFromWire(wc)
	if err != nil {
		return nil, err
	}

	authority := blockFromWire(wc.Authority)
	blocks := make([]*Block, len(wc.Blocks))
	symbols := baseSymbols.Clone()
	symbols.Extend(authority.symbols)
	for i, wb := range wc.Blocks {
		blocks[i] = blockFromWire(wb)
		symbols.Extend(blocks[i].symbols)
	}

	return &Token{
		authority: authority,
		blocks:    blocks,
		symbols:   symbols,
		sealed:    container,
	}, nil
}

// GetBlockID returns the index of the first block containing fact,
// searching the authority block then each appended block in order.
func (t *Token) GetBlockID(fact Fact) (int, error) {
	symbols := t.symbols.Clone()
	dlFact := fact.convert(symbols)

	for _, f := range *t.authority.facts {
		if f.Equal(dlFact.Predicate) {
			return 0, nil
		}
	}
	for i, block := range t.blocks {
		for _, f := range *block.facts {
			if f.Equal(dlFact.Predicate) {
				return i + 1, nil
			}
		}
	}
	return 0, ErrFactNotFound
}

// SHA256Sum hashes the authority block, the root key, and the first
// count appended blocks with their signing keys, giving callers a
// stable fingerprint of a signed token's prefix.
func (t *Token) SHA256Sum(count int) ([]byte, error) {
	if t.signed == nil {
		return nil, ErrAlreadySealed
	}
	if count < 0 || count > len(t.signed.blockBytes) {
		return nil, fmt.Errorf("biscuit: invalid count %d for %d blocks", count, len(t.signed.blockBytes))
	}

	h := sha256.New()
	h.Write(t.signed.authorityBytes)
	h.Write(t.signed.keys[0].Bytes())
	for _, block := range t.signed.blockBytes[:count] {
		h.Write(block)
	}
	for _, key := range t.signed.keys[1 : count+1] {
		h.Write(key.Bytes())
	}
	return h.Sum(nil), nil
}

// BlockCount returns the number of appended blocks, not counting the
// authority block.
func (t *Token) BlockCount() int {
	return len(t.blocks)
}

// Authority returns the token's authority block.
func (t *Token) Authority() *Block {
	return t.authority
}

// Blocks returns the token's appended blocks, not counting the
// authority block.
func (t *Token) Blocks() []*Block {
	return t.blocks
}

// Context returns the authority block's context string, followed by
// each appended block's context string in order, so a verifier can
// inspect contextual information before deciding whether to check the
// token.
func (t *Token) Context() []string {
	contexts := make([]string, 0, len(t.blocks)+1)
	contexts = append(contexts, t.authority.context)
	for _, block := range t.blocks {
		contexts = append(contexts, block.context)
	}
	return contexts
}

// SerializedSize returns the encoded size of the token as it would be
// produced by ToBytes.
func (t *Token) SerializedSize() (int, error) {
	data, err := t.ToBytes()
	if err != nil {
		return 0, err
	}
	return len(data), nil
}

// SealedSize estimates the encoded size a token would have after
// Seal(secret) without needing the real secret: HMAC-SHA256 always
// emits a 32-byte tag regardless of key length, so a zero-filled
// placeholder of secretLen produces an identical byte count.
func (t *Token) SealedSize(secretLen int) (int, error) {
	if t.signed == nil {
		return 0, ErrAlreadySealed
	}
	return sealedSize(t.authority, t.blocks, secretLen)
}

func (t *Token) String() string {
	blocks := make([]string, len(t.blocks))
	for i, block := range t.blocks {
		blocks[i] = block.String(t.symbols)
	}
	return fmt.Sprintf(`Token{
	symbols: %+q
	authority: %s
	blocks: %v
}`,
		[]string(*t.symbols),
		t.authority.String(t.symbols),
		blocks,
	)
}

// generateWorld saturates a fresh World from the token's facts and
// rules, enforcing that authority-block facts never carry #ambient as
// their first term, and that non-authority block facts and rule heads
// never carry #authority or #ambient as their first term. This is the
// privilege-isolation boundary that keeps an attenuating block from
// forging authority-level claims.
func (t *Token) generateWorld(symbols *datalog.SymbolTable) (*datalog.World, error) {
	world := datalog.NewWorld()

	idAuthority := symbols.Sym(string(SymbolAuthority))
	if idAuthority == nil {
		return nil, fmt.Errorf("%w: %q", ErrMissingSymbols, SymbolAuthority)
	}
	idAmbient := symbols.Sym(string(SymbolAmbient))
	if idAmbient == nil {
		return nil, fmt.Errorf("%w: %q", ErrMissingSymbols, SymbolAmbient)
	}

	for _, fact := range *t.authority.facts {
		if len(fact.Predicate.IDs) == 0 || fact.Predicate.IDs[0] == idAmbient {
			return nil, ErrInvalidAuthorityFact
		}
		world.AddFact(fact)
	}
	for _, rule := range t.authority.rules {
		world.AddRule(rule)
	}

	for _, block := range t.blocks {
		for _, fact := range *block.facts {
			if len(fact.Predicate.IDs) == 0 || fact.Predicate.IDs[0] == idAuthority || fact.Predicate.IDs[0] == idAmbient {
				return nil, InvalidBlockFactError{BlockID: block.index}
			}
			world.AddFact(fact)
		}
		for _, rule := range block.rules {
			if len(rule.Head.IDs) == 0 || rule.Head.IDs[0] == idAuthority || rule.Head.IDs[0] == idAmbient {
				return nil, InvalidBlockRuleError{BlockID: block.index}
			}
			world.AddRuleWithForbiddenIDs(rule, []datalog.Symbol{idAuthority.(datalog.Symbol), idAmbient.(datalog.Symbol)})
		}
	}

	if err := world.Run(); err != nil {
		return nil, err
	}
	return world, nil
}
