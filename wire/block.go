package wire

import (
	"fmt"

	"github.com/divarvel/biscuit-go/datalog"
)

const (
	blockFieldIndex   = 1
	blockFieldSymbols = 2
	blockFieldFacts   = 3
	blockFieldRules   = 4
	blockFieldCaveats = 5
	blockFieldContext = 6
)

// Block is the wire representation of one token block: its own symbol
// table slice, facts, rules and caveats, plus the free-form context
// string callers may attach for their own bookkeeping.
type Block struct {
	Index   uint32
	Symbols []string
	Facts   datalog.FactSet
	Rules   []datalog.Rule
	Caveats []datalog.Caveat
	Context string
}

// EncodeBlock serializes a block.
func EncodeBlock(blk Block) ([]byte, error) {
	var b []byte
	b = appendVarintField(b, blockFieldIndex, uint64(blk.Index))
	for _, s := range blk.Symbols {
		b = appendBytesField(b, blockFieldSymbols, []byte(s))
	}
	for _, f := range blk.Facts {
		enc, err := EncodeFact(f)
		if err != nil {
			return nil, err
		}
		b = appendBytesField(b, blockFieldFacts, enc)
	}
	for _, r := range blk.Rules {
		enc, err := EncodeRule(r)
		if err != nil {
			return nil, err
		}
		b = appendBytesField(b, blockFieldRules, enc)
	}
	for _, c := range blk.Caveats {
		enc, err := EncodeCaveat(c)
		if err != nil {
			return nil, err
		}
		b = appendBytesField(b, blockFieldCaveats, enc)
	}
	if blk.Context != "" {
		b = appendBytesField(b, blockFieldContext, []byte(blk.Context))
	}
	return b, nil
}

// DecodeBlock parses a block.
func DecodeBlock(data []byte) (Block, error) {
	fields, err := parseFields(data)
	if err != nil {
		return Block{}, err
	}
	var blk Block
	for _, f := range fields {
		switch f.num {
		case blockFieldIndex:
			blk.Index = uint32(f.val)
		case blockFieldSymbols:
			blk.Symbols = append(blk.Symbols, string(f.raw))
		case blockFieldFacts:
			fact, err := DecodeFact(f.raw)
			if err != nil {
				return Block{}, err
			}
			blk.Facts = append(blk.Facts, fact)
		case blockFieldRules:
			r, err := DecodeRule(f.raw)
			if err != nil {
				return Block{}, err
			}
			blk.Rules = append(blk.Rules, r)
		case blockFieldCaveats:
			c, err := DecodeCaveat(f.raw)
			if err != nil {
				return Block{}, err
			}
			blk.Caveats = append(blk.Caveats, c)
		case blockFieldContext:
			blk.Context = string(f.raw)
		default:
			return Block{}, fmt.Errorf("wire: unknown block field %d", f.num)
		}
	}
	return blk, nil
}
