package wire

import "fmt"

const (
	signedFieldAuthority = 1
	signedFieldBlocks    = 2
	signedFieldKeys      = 3
	signedFieldSigParams = 4
	signedFieldSigZ      = 5
)

// SignedContainer is the wire representation of a token authenticated
// by an aggregated multi-signature chain.
type SignedContainer struct {
	Authority Block
	Blocks    []Block
	Keys      [][]byte
	SigParams [][]byte
	SigZ      []byte
}

// EncodeSignedContainer serializes a signed container.
func EncodeSignedContainer(c SignedContainer) ([]byte, error) {
	authority, err := EncodeBlock(c.Authority)
	if err != nil {
		return nil, err
	}
	var b []byte
	b = appendBytesField(b, signedFieldAuthority, authority)
	for _, blk := range c.Blocks {
		enc, err := EncodeBlock(blk)
		if err != nil {
			return nil, err
		}
		b = appendBytesField(b, signedFieldBlocks, enc)
	}
	for _, k := range c.Keys {
		b = appendBytesField(b, signedFieldKeys, k)
	}
	for _, p := range c.SigParams {
		b = appendBytesField(b, signedFieldSigParams, p)
	}
	b = appendBytesField(b, signedFieldSigZ, c.SigZ)
	return b, nil
}

// DecodeSignedContainer parses a signed container.
func DecodeSignedContainer(data []byte) (SignedContainer, error) {
	fields, err := parseFields(data)
	if err != nil {
		return SignedContainer{}, err
	}
	var c SignedContainer
	var haveAuthority bool
	for _, f := range fields {
		switch f.num {
		case signedFieldAuthority:
			blk, err := DecodeBlock(f.raw)
			if err != nil {
				return SignedContainer{}, err
			}
			c.Authority = blk
			haveAuthority = true
		case signedFieldBlocks:
			blk, err := DecodeBlock(f.raw)
			if err != nil {
				return SignedContainer{}, err
			}
			c.Blocks = append(c.Blocks, blk)
		case signedFieldKeys:
			c.Keys = append(c.Keys, f.raw)
		case signedFieldSigParams:
			c.SigParams = append(c.SigParams, f.raw)
		case signedFieldSigZ:
			c.SigZ = f.raw
		default:
			return SignedContainer{}, fmt.Errorf("wire: unknown signed container field %d", f.num)
		}
	}
	if !haveAuthority {
		return SignedContainer{}, fmt.Errorf("wire: signed container missing authority block")
	}
	return c, nil
}

const (
	sealedFieldAuthority = 1
	sealedFieldBlocks    = 2
	sealedFieldMAC       = 3
)

// SealedContainer is the wire representation of a token authenticated
// by a symmetric MAC instead of a signature chain.
type SealedContainer struct {
	Authority Block
	Blocks    []Block
	MAC       []byte
}

// EncodeSealedContainer serializes a sealed container. MAC is appended
// as-is; callers compute it themselves (biscuit.sealedContainer computes
// it over the length-prefixed encoded blocks), since the MAC key never
// belongs to this package.
func EncodeSealedContainer(c SealedContainer) ([]byte, error) {
	authority, err := EncodeBlock(c.Authority)
	if err != nil {
		return nil, err
	}
	var b []byte
	b = appendBytesField(b, sealedFieldAuthority, authority)
	for _, blk := range c.Blocks {
		enc, err := EncodeBlock(blk)
		if err != nil {
			return nil, err
		}
		b = appendBytesField(b, sealedFieldBlocks, enc)
	}
	b = appendBytesField(b, sealedFieldMAC, c.MAC)
	return b, nil
}

// EncodeSealedContainerUnauthenticated serializes the authority and
// blocks only, omitting the MAC field. biscuit.sealedContainer does not
// use it: its MAC input is the length-prefixed concatenation of the
// encoded blocks, not this container encoding.
func EncodeSealedContainerUnauthenticated(c SealedContainer) ([]byte, error) {
	authority, err := EncodeBlock(c.Authority)
	if err != nil {
		return nil, err
	}
	var b []byte
	b = appendBytesField(b, sealedFieldAuthority, authority)
	for _, blk := range c.Blocks {
		enc, err := EncodeBlock(blk)
		if err != nil {
			return nil, err
		}
		b = appendBytesField(b, sealedFieldBlocks, enc)
	}
	return b, nil
}

// DecodeSealedContainer parses a sealed container.
func DecodeSealedContainer(data []byte) (SealedContainer, error) {
	fields, err := parseFields(data)
	if err != nil {
		return SealedContainer{}, err
	}
	var c SealedContainer
	var haveAuthority bool
	for _, f := range fields {
		switch f.num {
		case sealedFieldAuthority:
			blk, err := DecodeBlock(f.raw)
			if err != nil {
				return SealedContainer{}, err
			}
			c.Authority = blk
			haveAuthority = true
		case sealedFieldBlocks:
			blk, err := DecodeBlock(f.raw)
			if err != nil {
				return SealedContainer{}, err
			}
			c.Blocks = append(c.Blocks, blk)
		case sealedFieldMAC:
			c.MAC = f.raw
		default:
			return SealedContainer{}, fmt.Errorf("wire: unknown sealed container field %d", f.num)
		}
	}
	if !haveAuthority {
		return SealedContainer{}, fmt.Errorf("wire: sealed container missing authority block")
	}
	return c, nil
}
