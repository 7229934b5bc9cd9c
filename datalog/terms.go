// Package datalog implements the bottom-up Datalog evaluator that
// underlies Biscuit's authorization checks: an interned symbol table,
// ground facts, body/constraint rules, and the caveat-satisfaction
// protocol, all evaluated inside a transient World.
package datalog

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"time"
)

// IDType discriminates the concrete kind carried by an ID.
type IDType byte

const (
	IDTypeSymbol IDType = iota
	IDTypeVariable
	IDTypeInteger
	IDTypeString
	IDTypeDate
	IDTypeBytes
)

// ID is a Datalog term: a symbol, a variable, or one of the ground
// value kinds (integer, string, date, bytes).
type ID interface {
	Type() IDType
	Equal(ID) bool
	String() string
}

// Symbol is an interned string reference; its value is the string's
// position in a SymbolTable.
type Symbol uint64

func (Symbol) Type() IDType      { return IDTypeSymbol }
func (s Symbol) Equal(o ID) bool { c, ok := o.(Symbol); return ok && s == c }
func (s Symbol) String() string  { return fmt.Sprintf("#%d", uint64(s)) }

// Variable identifies an unbound slot in a rule body; it is itself
// interned through the same SymbolTable as Symbol.
type Variable uint32

func (Variable) Type() IDType      { return IDTypeVariable }
func (v Variable) Equal(o ID) bool { c, ok := o.(Variable); return ok && v == c }
func (v Variable) String() string  { return fmt.Sprintf("$%d", uint32(v)) }

// Integer is a signed 64-bit ground value.
type Integer int64

func (Integer) Type() IDType      { return IDTypeInteger }
func (i Integer) Equal(o ID) bool { c, ok := o.(Integer); return ok && i == c }
func (i Integer) String() string  { return fmt.Sprintf("%d", int64(i)) }

// String is a ground text value, distinct from an interned Symbol.
type String string

func (String) Type() IDType      { return IDTypeString }
func (s String) Equal(o ID) bool { c, ok := o.(String); return ok && s == c }
func (s String) String() string  { return fmt.Sprintf("%q", string(s)) }

// Date is a ground epoch-second timestamp.
type Date uint64

func (Date) Type() IDType      { return IDTypeDate }
func (d Date) Equal(o ID) bool { c, ok := o.(Date); return ok && d == c }
func (d Date) String() string  { return time.Unix(int64(d), 0).UTC().Format(time.RFC3339) }

// Bytes is a ground byte string.
type Bytes []byte

func (Bytes) Type() IDType      { return IDTypeBytes }
func (b Bytes) Equal(o ID) bool { c, ok := o.(Bytes); return ok && bytes.Equal(b, c) }
func (b Bytes) String() string  { return "hex:" + hex.EncodeToString(b) }
