// Package wire implements Biscuit's block and container serialization
// using the low-level varint/length-delimited primitives from
// google.golang.org/protobuf/encoding/protowire. No .proto schema ships
// with this repository, so messages are framed and parsed by hand
// instead of through protoc-generated types; the field layout below is
// the wire contract both issuer and verifier must agree on.
//
// Term (sub-message nested wherever an datalog.ID travels):
//
//	1  symbol    varint (uint64)
//	2  variable  varint (uint32)
//	3  integer   varint (zigzag int64)
//	4  string    bytes
//	5  date      varint (uint64, unix seconds)
//	6  bytes     bytes
//
// exactly one field is set per Term.
//
// Predicate:
//
//	1  name  varint (uint64 symbol id)
//	2  ids   repeated bytes (nested Term)
//
// Fact:
//
//	1  predicate  bytes (nested Predicate)
//
// DateConstraint:
//
//	1  comparison  varint (0=before, 1=after)
//	2  value       varint (uint64)
//
// IntConstraint:
//
//	1  comparison  varint (0=equal,1=gt,2=gte,3=lt,4=lte,5=in,6=not_in)
//	2  value       varint (zigzag int64, comparison kinds only)
//	3  set         repeated varint (zigzag int64, in/not_in kinds only)
//
// StringConstraint:
//
//	1  comparison  varint (0=equal,1=prefix,2=suffix,3=in,4=not_in,5=regexp)
//	2  value       bytes (comparison/regexp kinds only)
//	3  set         repeated bytes (in/not_in kinds only)
//
// SymbolConstraint:
//
//	1  not  varint (bool)
//	2  set  repeated varint (uint64 symbol id)
//
// BytesConstraint:
//
//	1  comparison  varint (0=equal,1=in,2=not_in)
//	2  value       bytes (equal kind only)
//	3  set         repeated bytes (in/not_in kinds only)
//
// Constraint:
//
//	1  variable  varint (uint32)
//	2  kind      varint (0=date,1=int,2=string,3=symbol,4=bytes)
//	3  payload   bytes (nested *Constraint message matching kind)
//
// Rule:
//
//	1  head         bytes (nested Predicate)
//	2  body         repeated bytes (nested Predicate)
//	3  constraints  repeated bytes (nested Constraint)
//
// Caveat:
//
//	1  queries  repeated bytes (nested Rule)
//
// Block:
//
//	1  index    varint (uint32)
//	2  symbols  repeated bytes (string)
//	3  facts    repeated bytes (nested Fact)
//	4  rules    repeated bytes (nested Rule)
//	5  caveats  repeated bytes (nested Caveat)
//	6  context  bytes (string, omitted when empty)
//
// SignedContainer:
//
//	1  authority  bytes (nested Block)
//	2  blocks     repeated bytes (nested Block)
//	3  keys       repeated bytes (32-byte compressed public keys)
//	4  sig_params repeated bytes (32-byte compressed group elements)
//	5  sig_z      bytes (32-byte compressed scalar)
//
// SealedContainer:
//
//	1  authority  bytes (nested Block)
//	2  blocks     repeated bytes (nested Block)
//	3  mac        bytes (HMAC-SHA256 tag)
package wire
