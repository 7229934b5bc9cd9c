package wire

import (
	"fmt"

	"github.com/divarvel/biscuit-go/datalog"
)

const caveatFieldQueries = 1

// EncodeCaveat serializes a caveat's disjunction of queries.
func EncodeCaveat(c datalog.Caveat) ([]byte, error) {
	var b []byte
	for _, q := range c.Queries {
		enc, err := EncodeRule(q)
		if err != nil {
			return nil, err
		}
		b = appendBytesField(b, caveatFieldQueries, enc)
	}
	return b, nil
}

// DecodeCaveat parses a caveat.
func DecodeCaveat(data []byte) (datalog.Caveat, error) {
	fields, err := parseFields(data)
	if err != nil {
		return datalog.Caveat{}, err
	}
	var c datalog.Caveat
	for _, f := range fields {
		if f.num != caveatFieldQueries {
			return datalog.Caveat{}, fmt.Errorf("wire: unknown caveat field %d", f.num)
		}
		q, err := DecodeRule(f.raw)
		if err != nil {
			return datalog.Caveat{}, err
		}
		c.Queries = append(c.Queries, q)
	}
	return c, nil
}
