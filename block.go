package biscuit

import (
	"fmt"

	"github.com/divarvel/biscuit-go/datalog"
	"github.com/divarvel/biscuit-go/wire"
)

// Block is one link in a token's chain: its own local symbol table
// slice, facts, rules and caveats, plus a free-form context string.
// Index 0 is always the authority block.
type Block struct {
	index   uint32
	symbols *datalog.SymbolTable
	facts   *datalog.FactSet
	rules   []datalog.Rule
	caveats []datalog.Caveat
	context string
}

// String renders the block using the token's full symbol table, so
// symbol ids resolve to names.
func (b *Block) String(symbols *datalog.SymbolTable) string {
	debug := datalog.SymbolDebugger{Symbols: symbols}
	rules := make([]string, len(b.rules))
	for i, r := range b.rules {
		rules[i] = debug.Rule(r)
	}
	caveats := make([]string, len(b.caveats))
	for i, c := range b.caveats {
		caveats[i] = debug.Caveat(c)
	}
	return fmt.Sprintf("Block[%d]{symbols: %v, context: %q, facts: %v, rules: %v, caveats: %v}",
		b.index, []string(*b.symbols), b.context, debug.FactSet(*b.facts), rules, caveats)
}

func (b *Block) toWire() wire.Block {
	return wire.Block{
		Index:   b.index,
		Symbols: []string(*b.symbols),
		Facts:   *b.facts,
		Rules:   b.rules,
		Caveats: b.caveats,
		Context: b.context,
	}
}

func blockFromWire(wb wire.Block) *Block {
	symbols := datalog.SymbolTable(wb.Symbols)
	facts := datalog.FactSet(wb.Facts)
	return &Block{
		index:   wb.Index,
		symbols: &symbols,
		facts:   &facts,
		rules:   wb.Rules,
		caveats: wb.Caveats,
		context: wb.Context,
	}
}
