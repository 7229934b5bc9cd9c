package biscuit

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"

	"github.com/divarvel/biscuit-go/wire"
)

// sealedContainer authenticates a token's blocks with a single
// HMAC-SHA256 tag over the length-prefixed concatenation of the
// authority block and every appended block, instead of a public-key
// signature chain. It trades offline-without-secret verification
// (anyone with the root public key can check a signed token) for a
// smaller, symmetric-key envelope.
type sealedContainer struct {
	authorityBytes []byte
	blockBytes     [][]byte
	mac            []byte
}

func macInput(authorityBytes []byte, blockBytes [][]byte) []byte {
	var buf []byte
	buf = appendLengthPrefixed(buf, authorityBytes)
	for _, b := range blockBytes {
		buf = appendLengthPrefixed(buf, b)
	}
	return buf
}

func appendLengthPrefixed(buf, v []byte) []byte {
	var lenBytes [4]byte
	binary.BigEndian.PutUint32(lenBytes[:], uint32(len(v)))
	buf = append(buf, lenBytes[:]...)
	return append(buf, v...)
}

func computeMAC(secret, authorityBytes []byte, blockBytes [][]byte) []byte {
	h := hmac.New(sha256.New, secret)
	h.Write(macInput(authorityBytes, blockBytes))
	return h.Sum(nil)
}

func newSealedContainer(secret []byte, authority *Block) (*sealedContainer, error) {
	authorityBytes, err := wire.EncodeBlock(authority.toWire())
	if err != nil {
		return nil, err
	}
	return &sealedContainer{
		authorityBytes: authorityBytes,
		mac:            computeMAC(secret, authorityBytes, nil),
	}, nil
}

// sealFromSigned converts a signed container's blocks into a sealed container
// authenticated under secret, discarding the signature chain. This is
// how Token.Seal is implemented.
func sealFromSigned(secret []byte, c *signedContainer) *sealedContainer {
	blockBytes := append([][]byte{}, c.blockBytes...)
	return &sealedContainer{
		authorityBytes: c.authorityBytes,
		blockBytes:     blockBytes,
		mac:            computeMAC(secret, c.authorityBytes, blockBytes),
	}
}

func (c *sealedContainer) append(secret []byte, block *Block) (*sealedContainer, error) {
	blockBytes, err := wire.EncodeBlock(block.toWire())
	if err != nil {
		return nil, err
	}
	allBlocks := append(append([][]byte{}, c.blockBytes...), blockBytes)
	return &sealedContainer{
		authorityBytes: c.authorityBytes,
		blockBytes:     allBlocks,
		mac:            computeMAC(secret, c.authorityBytes, allBlocks),
	}, nil
}

// verify recomputes the MAC under secret and compares it in constant
// time against the container's declared tag.
func (c *sealedContainer) verify(secret []byte) error {
	expected := computeMAC(secret, c.authorityBytes, c.blockBytes)
	if !hmac.Equal(expected, c.mac) {
		return ErrInvalidMAC
	}
	return nil
}

func (c *sealedContainer) toWire() (wire.SealedContainer, error) {
	authorityBlk, err := wire.DecodeBlock(c.authorityBytes)
	if err != nil {
		return wire.SealedContainer{}, err
	}
	blocks := make([]wire.Block, len(c.blockBytes))
	for i, b := range c.blockBytes {
		blk, err := wire.DecodeBlock(b)
		if err != nil {
			return wire.SealedContainer{}, err
		}
		blocks[i] = blk
	}
	return wire.SealedContainer{
		Authority: authorityBlk,
		Blocks:    blocks,
		MAC:       c.mac,
	}, nil
}

func sealedContainerFromWire(wc wire.SealedContainer) (*sealedContainer, error) {
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
	return &sealedContainer{
		authorityBytes: authorityBytes,
		blockBytes:     blockBytes,
		mac:            wc.MAC,
	}, nil
}

// sealedSize estimates the encoded size of a sealed container built
// from authority and blocks under a secret of secretLen bytes, without
// needing the real secret: HMAC-SHA256's output is always 32 bytes
// regardless of key length, so a zero-filled placeholder of the same
// length produces an identical byte count.
func sealedSize(authority *Block, blocks []*Block, secretLen int) (int, error) {
	authorityBytes, err := wire.EncodeBlock(authority.toWire())
	if err != nil {
		return 0, err
	}
	blockBytes := make([][]byte, len(blocks))
	for i, b := range blocks {
		enc, err := wire.EncodeBlock(b.toWire())
		if err != nil {
			return 0, err
		}
		blockBytes[i] = enc
	}
	placeholder := make([]byte, secretLen)
	c := &sealedContainer{
		authorityBytes: authorityBytes,
		blockBytes:     blockBytes,
		mac:            computeMAC(placeholder, authorityBytes, blockBytes),
	}
	wc, err := c.toWire()
	if err != nil {
		return 0, err
	}
	enc, err := wire.EncodeSealedContainer(wc)
	if err != nil {
		return 0, err
	}
	return len(enc), nil
}
