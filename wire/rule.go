package wire

import (
	"fmt"

	"github.com/divarvel/biscuit-go/datalog"
)

const (
	ruleFieldHead        = 1
	ruleFieldBody        = 2
	ruleFieldConstraints = 3
)

// EncodeRule serializes a rule's head, body and constraints. The
// forbiddenIDs privilege gate is process-local policy, not wire state,
// and is never serialized.
func EncodeRule(r datalog.Rule) ([]byte, error) {
	head, err := EncodePredicate(r.Head)
	if err != nil {
		return nil, err
	}
	var b []byte
	b = appendBytesField(b, ruleFieldHead, head)
	for _, p := range r.Body {
		enc, err := EncodePredicate(p)
		if err != nil {
			return nil, err
		}
		b = appendBytesField(b, ruleFieldBody, enc)
	}
	for _, c := range r.Constraints {
		enc, err := EncodeConstraint(c)
		if err != nil {
			return nil, err
		}
		b = appendBytesField(b, ruleFieldConstraints, enc)
	}
	return b, nil
}

// DecodeRule parses a rule.
func DecodeRule(data []byte) (datalog.Rule, error) {
	fields, err := parseFields(data)
	if err != nil {
		return datalog.Rule{}, err
	}
	var r datalog.Rule
	var haveHead bool
	for _, f := range fields {
		switch f.num {
		case ruleFieldHead:
			head, err := DecodePredicate(f.raw)
			if err != nil {
				return datalog.Rule{}, err
			}
			r.Head = head
			haveHead = true
		case ruleFieldBody:
			p, err := DecodePredicate(f.raw)
			if err != nil {
				return datalog.Rule{}, err
			}
			r.Body = append(r.Body, p)
		case ruleFieldConstraints:
			c, err := DecodeConstraint(f.raw)
			if err != nil {
				return datalog.Rule{}, err
			}
			r.Constraints = append(r.Constraints, c)
		default:
			return datalog.Rule{}, fmt.Errorf("wire: unknown rule field %d", f.num)
		}
	}
	if !haveHead {
		return datalog.Rule{}, fmt.Errorf("wire: rule missing head")
	}
	return r, nil
}
