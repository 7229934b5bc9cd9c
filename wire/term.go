package wire

import (
	"fmt"

	"github.com/divarvel/biscuit-go/datalog"
)

const (
	termFieldSymbol   = 1
	termFieldVariable = 2
	termFieldInteger  = 3
	termFieldString   = 4
	termFieldDate     = 5
	termFieldBytes    = 6
)

// EncodeTerm serializes a single Datalog term.
func EncodeTerm(id datalog.ID) ([]byte, error) {
	var b []byte
	switch v := id.(type) {
	case datalog.Symbol:
		b = appendVarintField(b, termFieldSymbol, uint64(v))
	case datalog.Variable:
		b = appendVarintField(b, termFieldVariable, uint64(v))
	case datalog.Integer:
		b = appendZigzagField(b, termFieldInteger, int64(v))
	case datalog.String:
		b = appendBytesField(b, termFieldString, []byte(v))
	case datalog.Date:
		b = appendVarintField(b, termFieldDate, uint64(v))
	case datalog.Bytes:
		b = appendBytesField(b, termFieldBytes, v)
	default:
		return nil, fmt.Errorf("wire: unsupported term type %T", id)
	}
	return b, nil
}

// DecodeTerm parses a single Datalog term.
func DecodeTerm(data []byte) (datalog.ID, error) {
	fields, err := parseFields(data)
	if err != nil {
		return nil, err
	}
	if len(fields) != 1 {
		return nil, fmt.Errorf("wire: term must carry exactly one field, got %d", len(fields))
	}
	f := fields[0]
	switch f.num {
	case termFieldSymbol:
		return datalog.Symbol(f.val), nil
	case termFieldVariable:
		return datalog.Variable(f.val), nil
	case termFieldInteger:
		return datalog.Integer(zigzag(f.val)), nil
	case termFieldString:
		return datalog.String(f.raw), nil
	case termFieldDate:
		return datalog.Date(f.val), nil
	case termFieldBytes:
		return datalog.Bytes(f.raw), nil
	default:
		return nil, fmt.Errorf("wire: unknown term field %d", f.num)
	}
}
