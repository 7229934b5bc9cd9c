package wire

import (
	"encoding/hex"
	"fmt"
	"regexp"

	"github.com/divarvel/biscuit-go/datalog"
)

const (
	constraintFieldVariable = 1
	constraintFieldKind     = 2
	constraintFieldPayload  = 3

	constraintKindDate   = 0
	constraintKindInt    = 1
	constraintKindString = 2
	constraintKindSymbol = 3
	constraintKindBytes  = 4
)

// EncodeConstraint serializes a named constraint and its checker.
func EncodeConstraint(c datalog.Constraint) ([]byte, error) {
	var kind uint64
	var payload []byte
	var err error

	switch checker := c.Checker.(type) {
	case datalog.DateComparisonChecker:
		kind = constraintKindDate
		payload = encodeDateConstraint(checker)
	case datalog.IntegerComparisonChecker:
		kind = constraintKindInt
		payload = encodeIntComparisonConstraint(checker)
	case datalog.IntegerInChecker:
		kind = constraintKindInt
		payload = encodeIntInConstraint(checker)
	case datalog.StringComparisonChecker:
		kind = constraintKindString
		payload = encodeStringComparisonConstraint(checker)
	case datalog.StringInChecker:
		kind = constraintKindString
		payload = encodeStringInConstraint(checker)
	case datalog.StringRegexpChecker:
		kind = constraintKindString
		payload = encodeStringRegexpConstraint(checker)
	case datalog.SymbolInChecker:
		kind = constraintKindSymbol
		payload = encodeSymbolInConstraint(checker)
	case datalog.BytesComparisonChecker:
		kind = constraintKindBytes
		payload = encodeBytesComparisonConstraint(checker)
	case datalog.BytesInChecker:
		kind = constraintKindBytes
		payload = encodeBytesInConstraint(checker)
	default:
		return nil, fmt.Errorf("wire: unsupported constraint checker %T", c.Checker)
	}
	if err != nil {
		return nil, err
	}

	var b []byte
	b = appendVarintField(b, constraintFieldVariable, uint64(c.Name))
	b = appendVarintField(b, constraintFieldKind, kind)
	b = appendBytesField(b, constraintFieldPayload, payload)
	return b, nil
}

// DecodeConstraint parses a named constraint and its checker.
func DecodeConstraint(data []byte) (datalog.Constraint, error) {
	fields, err := parseFields(data)
	if err != nil {
		return datalog.Constraint{}, err
	}
	var variable datalog.Variable
	var kind uint64
	var payload []byte
	var haveKind bool
	for _, f := range fields {
		switch f.num {
		case constraintFieldVariable:
			variable = datalog.Variable(f.val)
		case constraintFieldKind:
			kind = f.val
			haveKind = true
		case constraintFieldPayload:
			payload = f.raw
		default:
			return datalog.Constraint{}, fmt.Errorf("wire: unknown constraint field %d", f.num)
		}
	}
	if !haveKind {
		return datalog.Constraint{}, fmt.Errorf("wire: constraint missing kind")
	}

	var checker datalog.Checker
	switch kind {
	case constraintKindDate:
		checker, err = decodeDateConstraint(payload)
	case constraintKindInt:
		checker, err = decodeIntConstraint(payload)
	case constraintKindString:
		checker, err = decodeStringConstraint(payload)
	case constraintKindSymbol:
		checker, err = decodeSymbolConstraint(payload)
	case constraintKindBytes:
		checker, err = decodeBytesConstraint(payload)
	default:
		return datalog.Constraint{}, fmt.Errorf("wire: unknown constraint kind %d", kind)
	}
	if err != nil {
		return datalog.Constraint{}, err
	}
	return datalog.Constraint{Name: variable, Checker: checker}, nil
}

const (
	dateConstraintFieldComparison = 1
	dateConstraintFieldValue      = 2

	dateComparisonBefore = 0
	dateComparisonAfter  = 1
)

func encodeDateConstraint(c datalog.DateComparisonChecker) []byte {
	var comparison uint64
	switch c.Comparison {
	case datalog.DateBefore:
		comparison = dateComparisonBefore
	case datalog.DateAfter:
		comparison = dateComparisonAfter
	}
	var b []byte
	b = appendVarintField(b, dateConstraintFieldComparison, comparison)
	b = appendVarintField(b, dateConstraintFieldValue, uint64(c.Value))
	return b
}

func decodeDateConstraint(data []byte) (datalog.Checker, error) {
	fields, err := parseFields(data)
	if err != nil {
		return nil, err
	}
	var comparison uint64
	var value uint64
	for _, f := range fields {
		switch f.num {
		case dateConstraintFieldComparison:
			comparison = f.val
		case dateConstraintFieldValue:
			value = f.val
		}
	}
	switch comparison {
	case dateComparisonBefore:
		return datalog.DateComparisonChecker{Comparison: datalog.DateBefore, Value: datalog.Date(value)}, nil
	case dateComparisonAfter:
		return datalog.DateComparisonChecker{Comparison: datalog.DateAfter, Value: datalog.Date(value)}, nil
	default:
		return nil, fmt.Errorf("wire: unknown date comparison %d", comparison)
	}
}

const (
	intConstraintFieldComparison = 1
	intConstraintFieldValue      = 2
	intConstraintFieldSet        = 3

	intComparisonEqual  = 0
	intComparisonGT     = 1
	intComparisonGTE    = 2
	intComparisonLT     = 3
	intComparisonLTE    = 4
	intComparisonIn     = 5
	intComparisonNotIn  = 6
)

func encodeIntComparisonConstraint(c datalog.IntegerComparisonChecker) []byte {
	var comparison uint64
	switch c.Comparison {
	case datalog.IntegerEqual:
		comparison = intComparisonEqual
	case datalog.IntegerLargerThan:
		comparison = intComparisonGT
	case datalog.IntegerLargerOrEqual:
		comparison = intComparisonGTE
	case datalog.IntegerLowerThan:
		comparison = intComparisonLT
	case datalog.IntegerLowerOrEqual:
		comparison = intComparisonLTE
	}
	var b []byte
	b = appendVarintField(b, intConstraintFieldComparison, comparison)
	b = appendZigzagField(b, intConstraintFieldValue, int64(c.Value))
	return b
}

func encodeIntInConstraint(c datalog.IntegerInChecker) []byte {
	comparison := uint64(intComparisonIn)
	if c.Not {
		comparison = intComparisonNotIn
	}
	var b []byte
	b = appendVarintField(b, intConstraintFieldComparison, comparison)
	for v := range c.Set {
		b = appendZigzagField(b, intConstraintFieldSet, int64(v))
	}
	return b
}

func decodeIntConstraint(data []byte) (datalog.Checker, error) {
	fields, err := parseFields(data)
	if err != nil {
		return nil, err
	}
	var comparison uint64
	var value int64
	var set []int64
	for _, f := range fields {
		switch f.num {
		case intConstraintFieldComparison:
			comparison = f.val
		case intConstraintFieldValue:
			value = zigzag(f.val)
		case intConstraintFieldSet:
			set = append(set, zigzag(f.val))
		}
	}
	switch comparison {
	case intComparisonEqual:
		return datalog.IntegerComparisonChecker{Comparison: datalog.IntegerEqual, Value: datalog.Integer(value)}, nil
	case intComparisonGT:
		return datalog.IntegerComparisonChecker{Comparison: datalog.IntegerLargerThan, Value: datalog.Integer(value)}, nil
	case intComparisonGTE:
		return datalog.IntegerComparisonChecker{Comparison: datalog.IntegerLargerOrEqual, Value: datalog.Integer(value)}, nil
	case intComparisonLT:
		return datalog.IntegerComparisonChecker{Comparison: datalog.IntegerLowerThan, Value: datalog.Integer(value)}, nil
	case intComparisonLTE:
		return datalog.IntegerComparisonChecker{Comparison: datalog.IntegerLowerOrEqual, Value: datalog.Integer(value)}, nil
	case intComparisonIn, intComparisonNotIn:
		s := make(map[datalog.Integer]struct{}, len(set))
		for _, v := range set {
			s[datalog.Integer(v)] = struct{}{}
		}
		return datalog.IntegerInChecker{Set: s, Not: comparison == intComparisonNotIn}, nil
	default:
		return nil, fmt.Errorf("wire: unknown int comparison %d", comparison)
	}
}

const (
	stringConstraintFieldComparison = 1
	stringConstraintFieldValue      = 2
	stringConstraintFieldSet        = 3

	stringComparisonEqual  = 0
	stringComparisonPrefix = 1
	stringComparisonSuffix = 2
	stringComparisonIn     = 3
	stringComparisonNotIn  = 4
	stringComparisonRegexp = 5
)

func encodeStringComparisonConstraint(c datalog.StringComparisonChecker) []byte {
	var comparison uint64
	switch c.Comparison {
	case datalog.StringEqual:
		comparison = stringComparisonEqual
	case datalog.StringPrefix:
		comparison = stringComparisonPrefix
	case datalog.StringSuffix:
		comparison = stringComparisonSuffix
	}
	var b []byte
	b = appendVarintField(b, stringConstraintFieldComparison, comparison)
	b = appendBytesField(b, stringConstraintFieldValue, []byte(c.Value))
	return b
}

func encodeStringInConstraint(c datalog.StringInChecker) []byte {
	comparison := uint64(stringComparisonIn)
	if c.Not {
		comparison = stringComparisonNotIn
	}
	var b []byte
	b = appendVarintField(b, stringConstraintFieldComparison, comparison)
	for v := range c.Set {
		b = appendBytesField(b, stringConstraintFieldSet, []byte(v))
	}
	return b
}

func encodeStringRegexpConstraint(c datalog.StringRegexpChecker) []byte {
	var b []byte
	b = appendVarintField(b, stringConstraintFieldComparison, stringComparisonRegexp)
	b = appendBytesField(b, stringConstraintFieldValue, []byte(c.Regexp.String()))
	return b
}

func decodeStringConstraint(data []byte) (datalog.Checker, error) {
	fields, err := parseFields(data)
	if err != nil {
		return nil, err
	}
	var comparison uint64
	var value []byte
	var set [][]byte
	for _, f := range fields {
		switch f.num {
		case stringConstraintFieldComparison:
			comparison = f.val
		case stringConstraintFieldValue:
			value = f.raw
		case stringConstraintFieldSet:
			set = append(set, f.raw)
		}
	}
	switch comparison {
	case stringComparisonEqual:
		return datalog.StringComparisonChecker{Comparison: datalog.StringEqual, Value: datalog.String(value)}, nil
	case stringComparisonPrefix:
		return datalog.StringComparisonChecker{Comparison: datalog.StringPrefix, Value: datalog.String(value)}, nil
	case stringComparisonSuffix:
		return datalog.StringComparisonChecker{Comparison: datalog.StringSuffix, Value: datalog.String(value)}, nil
	case stringComparisonIn, stringComparisonNotIn:
		s := make(map[datalog.String]struct{}, len(set))
		for _, v := range set {
			s[datalog.String(v)] = struct{}{}
		}
		return datalog.StringInChecker{Set: s, Not: comparison == stringComparisonNotIn}, nil
	case stringComparisonRegexp:
		re, err := regexp.Compile(string(value))
		if err != nil {
			return nil, fmt.Errorf("wire: invalid regexp constraint: %w", err)
		}
		return datalog.StringRegexpChecker{Regexp: re}, nil
	default:
		return nil, fmt.Errorf("wire: unknown string comparison %d", comparison)
	}
}

const (
	symbolConstraintFieldNot = 1
	symbolConstraintFieldSet = 2
)

func encodeSymbolInConstraint(c datalog.SymbolInChecker) []byte {
	var b []byte
	not := uint64(0)
	if c.Not {
		not = 1
	}
	b = appendVarintField(b, symbolConstraintFieldNot, not)
	for v := range c.Set {
		b = appendVarintField(b, symbolConstraintFieldSet, uint64(v))
	}
	return b
}

func decodeSymbolConstraint(data []byte) (datalog.Checker, error) {
	fields, err := parseFields(data)
	if err != nil {
		return nil, err
	}
	var not bool
	var set []uint64
	for _, f := range fields {
		switch f.num {
		case symbolConstraintFieldNot:
			not = f.val != 0
		case symbolConstraintFieldSet:
			set = append(set, f.val)
		}
	}
	s := make(map[datalog.Symbol]struct{}, len(set))
	for _, v := range set {
		s[datalog.Symbol(v)] = struct{}{}
	}
	return datalog.SymbolInChecker{Set: s, Not: not}, nil
}

const (
	bytesConstraintFieldComparison = 1
	bytesConstraintFieldValue      = 2
	bytesConstraintFieldSet        = 3

	bytesComparisonEqual  = 0
	bytesComparisonIn     = 1
	bytesComparisonNotIn  = 2
)

func encodeBytesComparisonConstraint(c datalog.BytesComparisonChecker) []byte {
	var b []byte
	b = appendVarintField(b, bytesConstraintFieldComparison, bytesComparisonEqual)
	b = appendBytesField(b, bytesConstraintFieldValue, c.Value)
	return b
}

func encodeBytesInConstraint(c datalog.BytesInChecker) []byte {
	comparison := uint64(bytesComparisonIn)
	if c.Not {
		comparison = bytesComparisonNotIn
	}
	var b []byte
	b = appendVarintField(b, bytesConstraintFieldComparison, comparison)
	for hexVal := range c.Set {
		raw, err := decodeHex(hexVal)
		if err != nil {
			continue
		}
		b = appendBytesField(b, bytesConstraintFieldSet, raw)
	}
	return b
}

func decodeBytesConstraint(data []byte) (datalog.Checker, error) {
	fields, err := parseFields(data)
	if err != nil {
		return nil, err
	}
	var comparison uint64
	var value []byte
	var set [][]byte
	for _, f := range fields {
		switch f.num {
		case bytesConstraintFieldComparison:
			comparison = f.val
		case bytesConstraintFieldValue:
			value = f.raw
		case bytesConstraintFieldSet:
			set = append(set, f.raw)
		}
	}
	switch comparison {
	case bytesComparisonEqual:
		return datalog.BytesComparisonChecker{Comparison: datalog.BytesEqual, Value: datalog.Bytes(value)}, nil
	case bytesComparisonIn, bytesComparisonNotIn:
		s := make(map[string]struct{}, len(set))
		for _, v := range set {
			s[hex.EncodeToString(v)] = struct{}{}
		}
		return datalog.BytesInChecker{Set: s, Not: comparison == bytesComparisonNotIn}, nil
	default:
		return nil, fmt.Errorf("wire: unknown bytes comparison %d", comparison)
	}
}
