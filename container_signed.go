package biscuit

import (
	"bytes"
	"crypto/rand"
	"io"

	r255 "github.com/gtank/ristretto255"

	"github.com/divarvel/biscuit-go/sig"
	"github.com/divarvel/biscuit-go/wire"
)

// signedContainer holds a token's serialized blocks, the public key
// that signed each of them, and the aggregate signature spanning all
// of them. It is the on-the-wire authentication envelope for the
// default (non-sealed) token variant.
type signedContainer struct {
	authorityBytes []byte
	blockBytes     [][]byte
	keys           []sig.PublicKey
	signature      *sig.ChainSignature
}

func newSignedContainer(rng io.Reader, root sig.Keypair, authority *Block) (*signedContainer, error) {
	if rng == nil {
		rng = rand.Reader
	}

	authorityBytes, err := wire.EncodeBlock(authority.toWire())
	if err != nil {
		return nil, err
	}

	sign := (&sig.ChainSignature{}).Sign(rng, root, authorityBytes)

	return &signedContainer{
		authorityBytes: authorityBytes,
		keys:           []sig.PublicKey{root.Public()},
		signature:      sign,
	}, nil
}

func (c *signedContainer) append(rng io.Reader, keypair sig.Keypair, block *Block) (*signedContainer, error) {
	blockBytes, err := wire.EncodeBlock(block.toWire())
	if err != nil {
		return nil, err
	}

	sign := &sig.ChainSignature{Params: append([]*r255.Element{}, c.signature.Params...), Z: c.signature.Z}
	sign.Sign(rng, keypair, blockBytes)

	return &signedContainer{
		authorityBytes: c.authorityBytes,
		blockBytes:     append(append([][]byte{}, c.blockBytes...), blockBytes),
		keys:           append(append([]sig.PublicKey{}, c.keys...), keypair.Public()),
		signature:      sign,
	}, nil
}

// verify checks the aggregate signature across the authority block and
// every appended block against the token's declared key chain.
func (c *signedContainer) verify() error {
	msgs := make([][]byte, 0, len(c.blockBytes)+1)
	msgs = append(msgs, c.authorityBytes)
	msgs = append(msgs, c.blockBytes...)
	return c.signature.Verify(c.keys, msgs)
}

func (c *signedContainer) checkRootKey(root sig.PublicKey) error {
	if len(c.keys) == 0 {
		return ErrEmptyKeys
	}
	if !c.keys[0].Equal(root) {
		return ErrUnknownPublicKey
	}
	return nil
}

func (c *signedContainer) toWire() (wire.SignedContainer, error) {
	keys := make([][]byte, len(c.keys))
	for i, k := range c.keys {
		keys[i] = k.Bytes()
	}
	params, z := c.signature.Encode()

	authorityBlk, err := wire.DecodeBlock(c.authorityBytes)
	if err != nil {
		return wire.SignedContainer{}, err
	}
	blocks := make([]wire.Block, len(c.blockBytes))
	for i, b := range c.blockBytes {
		blk, err := wire.DecodeBlock(b)
		if err != nil {
			return wire.SignedContainer{}, err
		}
		blocks[i] = blk
	}

	return wire.SignedContainer{
		Authority: authorityBlk,
		Blocks:    blocks,
		Keys:      keys,
		SigParams: params,
		SigZ:      z,
	}, nil
}

func signedContainerFromWire(wc wire.SignedContainer) (*signedContainer, error) {
	keys := make([]sig.PublicKey, len(wc.Keys))
	for i, k := range wc.Keys {
		pk, err := sig.NewPublicKey(k)
		if err != nil {
			return nil, err
		}
		keys[i] = pk
	}

	signature, err := sig.Decode(wc.SigParams, wc.SigZ)
	if err != nil {
		return nil, err
	}

	authorityBytes, err := wire.EncodeBlock(wc.Authority)
	if err != nil {
		return nil, err
	}
	blockBytes := make([][]byte, len(wc.Blocks))
	for i, b := range wc.Blocks {
		enc, err := wire.EncodeBlock(b)
		if err != nil {
			return nil, err
		}
		blockBytes[i] = enc
	}

	return &signedContainer{
		authorityBytes: authorityBytes,
		blockBytes:     blockBytes,
		keys:           keys,
		signature:      signature,
	}, nil
}

func (c *signedContainer) equalBytes(o *signedContainer) bool {
	if len(c.blockBytes) != len(o.blockBytes) {
		return false
	}
	if !bytes.Equal(c.authorityBytes, o.authorityBytes) {
		return false
	}
	for i := range c.blockBytes {
		if !bytes.Equal(c.blockBytes[i], o.blockBytes[i]) {
			return false
		}
	}
	return true
}
