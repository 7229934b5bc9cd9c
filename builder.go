package biscuit

import (
	"crypto/rand"
	"io"

	"github.com/divarvel/biscuit-go/datalog"
	"github.com/divarvel/biscuit-go/sig"
)

// Builder assembles the authority block of a new Token.
type Builder interface {
	AddFact(fact Fact) error
	AddRule(rule Rule)
	AddCaveat(caveat Caveat)
	SetContext(context string)
	Build() (*Token, error)
}

type builder struct {
	rng  io.Reader
	root sig.Keypair

	symbolsStart int
	symbols      *datalog.SymbolTable
	facts        *datalog.FactSet
	rules        []datalog.Rule
	caveats      []datalog.Caveat
	context      string
}

// NewBuilder returns a Builder that will mint a new token's authority
// block, signed by root.
func NewBuilder(root sig.Keypair, opts ...BuilderOption) Builder {
	b := &builder{
		rng:          rand.Reader,
		root:         root,
		symbols:      datalog.DefaultSymbolTable(),
		facts:        new(datalog.FactSet),
	}
	b.symbolsStart = b.symbols.Len()
	for _, o := range opts {
		o(b)
	}
	return b
}

// BuilderOption configures a Builder at construction time.
type BuilderOption func(*builder)

// WithRandom overrides the CSPRNG used to sign the authority block.
func WithRandom(rng io.Reader) BuilderOption {
	return func(b *builder) { b.rng = rng }
}

// WithBaseSymbols overrides the symbol table the authority block
// starts from, useful when the caller already knows which symbols a
// downstream verifier will need interned.
func WithBaseSymbols(symbols *datalog.SymbolTable) BuilderOption {
	return func(b *builder) {
		b.symbolsStart = symbols.Len()
		b.symbols = symbols.Clone()
	}
}

func (b *builder) AddFact(fact Fact) error {
	dlFact := fact.convert(b.symbols)
	if !b.facts.Insert(dlFact) {
		return ErrDuplicateFact
	}
	return nil
}

func (b *builder) AddRule(rule Rule) {
	b.rules = append(b.rules, rule.convert(b.symbols))
}

func (b *builder) AddCaveat(caveat Caveat) {
	b.caveats = append(b.caveats, caveat.convert(b.symbols))
}

func (b *builder) SetContext(context string) {
	b.context = context
}

func (b *builder) Build() (*Token, error) {
	return New(b.rng, b.root, b.symbols, &Block{
		index:   0,
		symbols: b.symbols.SplitOff(b.symbolsStart),
		facts:   b.facts,
		rules:   b.rules,
		caveats: b.caveats,
		context: b.context,
	})
}

// BlockBuilder assembles an attenuating block to append to an existing
// Token.
type BlockBuilder interface {
	AddFact(fact Fact) error
	AddRule(rule Rule)
	AddCaveat(caveat Caveat)
	SetContext(context string)
	Build() *Block
}

type blockBuilder struct {
	index        uint32
	symbolsStart int
	symbols      *datalog.SymbolTable
	facts        *datalog.FactSet
	rules        []datalog.Rule
	caveats      []datalog.Caveat
	context      string
}

// NewBlockBuilder returns a BlockBuilder for the block at the given
// index, starting from baseSymbols (typically the token's current
// symbol table, so newly interned strings are appended after it).
func NewBlockBuilder(index uint32, baseSymbols *datalog.SymbolTable) BlockBuilder {
	return &blockBuilder{
		index:        index,
		symbolsStart: baseSymbols.Len(),
		symbols:      baseSymbols,
		facts:        new(datalog.FactSet),
	}
}

func (b *blockBuilder) AddFact(fact Fact) error {
	dlFact := fact.convert(b.symbols)
	if !b.facts.Insert(dlFact) {
		return ErrDuplicateFact
	}
	return nil
}

func (b *blockBuilder) AddRule(rule Rule) {
	b.rules = append(b.rules, rule.convert(b.symbols))
}

func (b *blockBuilder) AddCaveat(caveat Caveat) {
	b.caveats = append(b.caveats, caveat.convert(b.symbols))
}

func (b *blockBuilder) SetContext(context string) {
	b.context = context
}

func (b *blockBuilder) Build() *Block {
	return &Block{
		index:   b.index,
		symbols: b.symbols.SplitOff(b.symbolsStart),
		facts:   b.facts,
		rules:   b.rules,
		caveats: b.caveats,
		context: b.context,
	}
}
