package wire

import (
	"encoding/hex"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// decodeHex reverses the plain hex encoding used as a BytesInChecker
// set key, needed because []byte cannot be a map key.
func decodeHex(s string) ([]byte, error) {
	return hex.DecodeString(s)
}

// field is one parsed (number, wire type, value) triple from a
// length-delimited message. Repeated fields appear as one entry per
// occurrence, in encounter order.
type field struct {
	num protowire.Number
	typ protowire.Type
	val uint64
	raw []byte
}

// parseFields walks b as a flat sequence of protobuf-framed fields,
// without interpreting field numbers against any schema; callers
// switch on field.num themselves to assemble the message they expect.
func parseFields(b []byte) ([]field, error) {
	var fields []field
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("wire: invalid tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("wire: invalid varint: %w", protowire.ParseError(n))
			}
			b = b[n:]
			fields = append(fields, field{num: num, typ: typ, val: v})
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("wire: invalid bytes: %w", protowire.ParseError(n))
			}
			b = b[n:]
			raw := make([]byte, len(v))
			copy(raw, v)
			fields = append(fields, field{num: num, typ: typ, raw: raw})
		case protowire.Fixed32Type:
			v, n := protowire.ConsumeFixed32(b)
			if n < 0 {
				return nil, fmt.Errorf("wire: invalid fixed32: %w", protowire.ParseError(n))
			}
			b = b[n:]
			fields = append(fields, field{num: num, typ: typ, val: uint64(v)})
		case protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return nil, fmt.Errorf("wire: invalid fixed64: %w", protowire.ParseError(n))
			}
			b = b[n:]
			fields = append(fields, field{num: num, typ: typ, val: v})
		default:
			return nil, fmt.Errorf("wire: unsupported wire type %v", typ)
		}
	}
	return fields, nil
}

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBytesField(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendZigzagField(b []byte, num protowire.Number, v int64) []byte {
	return appendVarintField(b, num, protowire.EncodeZigZag(v))
}

func zigzag(v uint64) int64 {
	return protowire.DecodeZigZag(v)
}
