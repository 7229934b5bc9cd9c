package wire

import (
	"fmt"

	"github.com/divarvel/biscuit-go/datalog"
)

const (
	predicateFieldName = 1
	predicateFieldIDs  = 2

	factFieldPredicate = 1
)

// EncodePredicate serializes a predicate, e.g. right(#authority, "/f").
func EncodePredicate(p datalog.Predicate) ([]byte, error) {
	var b []byte
	b = appendVarintField(b, predicateFieldName, uint64(p.Name))
	for _, id := range p.IDs {
		enc, err := EncodeTerm(id)
		if err != nil {
			return nil, err
		}
		b = appendBytesField(b, predicateFieldIDs, enc)
	}
	return b, nil
}

// DecodePredicate parses a predicate.
func DecodePredicate(data []byte) (datalog.Predicate, error) {
	fields, err := parseFields(data)
	if err != nil {
		return datalog.Predicate{}, err
	}
	var p datalog.Predicate
	var haveName bool
	for _, f := range fields {
		switch f.num {
		case predicateFieldName:
			p.Name = datalog.Symbol(f.val)
			haveName = true
		case predicateFieldIDs:
			id, err := DecodeTerm(f.raw)
			if err != nil {
				return datalog.Predicate{}, err
			}
			p.IDs = append(p.IDs, id)
		default:
			return datalog.Predicate{}, fmt.Errorf("wire: unknown predicate field %d", f.num)
		}
	}
	if !haveName {
		return datalog.Predicate{}, fmt.Errorf("wire: predicate missing name")
	}
	return p, nil
}

// EncodeFact serializes a ground fact.
func EncodeFact(f datalog.Fact) ([]byte, error) {
	pred, err := EncodePredicate(f.Predicate)
	if err != nil {
		return nil, err
	}
	var b []byte
	b = appendBytesField(b, factFieldPredicate, pred)
	return b, nil
}

// DecodeFact parses a ground fact.
func DecodeFact(data []byte) (datalog.Fact, error) {
	fields, err := parseFields(data)
	if err != nil {
		return datalog.Fact{}, err
	}
	for _, f := range fields {
		if f.num != factFieldPredicate {
			return datalog.Fact{}, fmt.Errorf("wire: unknown fact field %d", f.num)
		}
		pred, err := DecodePredicate(f.raw)
		if err != nil {
			return datalog.Fact{}, err
		}
		return datalog.Fact{Predicate: pred}, nil
	}
	return datalog.Fact{}, fmt.Errorf("wire: fact missing predicate")
}
