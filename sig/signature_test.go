package sig

import (
	"crypto/rand"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

type chain struct {
	msgs [][]byte
	keys []PublicKey
	sig  *ChainSignature
	rng  io.Reader
}

func newChain(rng io.Reader, k Keypair, msg []byte) *chain {
	return &chain{
		msgs: [][]byte{msg},
		keys: []PublicKey{k.Public()},
		sig:  (&ChainSignature{}).Sign(rng, k, msg),
		rng:  rng,
	}
}

func (c *chain) append(k Keypair, msg []byte) *chain {
	c.sig = c.sig.Sign(c.rng, k, msg)
	c.msgs = append(c.msgs, msg)
	c.keys = append(c.keys, k.Public())
	return c
}

func (c *chain) verify() error {
	return c.sig.Verify(c.keys, c.msgs)
}

func TestChainSignatureAcrossThreeBlocks(t *testing.T) {
	rng := rand.Reader

	k1 := GenerateKeypair(rng)
	c := newChain(rng, k1, []byte("authority"))
	require.NoError(t, c.verify())

	k2 := GenerateKeypair(rng)
	c.append(k2, []byte("block1"))
	require.NoError(t, c.verify())

	k3 := GenerateKeypair(rng)
	c.append(k3, []byte("block2"))
	require.NoError(t, c.verify())
}

func TestChainSignatureRejectsAlteredMessage(t *testing.T) {
	rng := rand.Reader

	k1 := GenerateKeypair(rng)
	c := newChain(rng, k1, []byte("authority"))

	k2 := GenerateKeypair(rng)
	c.append(k2, []byte("block1"))
	c.msgs[1] = []byte("tampered")

	require.ErrorIs(t, c.verify(), ErrInvalidSignature)
}

func TestChainSignatureRejectsSplicedBlock(t *testing.T) {
	rng := rand.Reader

	k1 := GenerateKeypair(rng)
	c1 := newChain(rng, k1, []byte("authority"))
	c1.append(GenerateKeypair(rng), []byte("block1"))

	k2 := GenerateKeypair(rng)
	c2 := newChain(rng, k2, []byte("authority"))
	c2.append(GenerateKeypair(rng), []byte("other-block1"))

	// Splice c2's aggregate onto c1's key/message sequence.
	spliced := &ChainSignature{Params: c2.sig.Params, Z: c2.sig.Z}
	require.ErrorIs(t, spliced.Verify(c1.keys, c1.msgs), ErrInvalidSignature)
}

func TestChainSignatureEncodeDecodeRoundTrip(t *testing.T) {
	rng := rand.Reader
	keypair := GenerateKeypair(rng)

	cs := &ChainSignature{}
	cs.Sign(rng, keypair, []byte("message"))

	params, z := cs.Encode()

	decoded, err := Decode(params, z)
	require.NoError(t, err)
	require.NoError(t, decoded.Verify([]PublicKey{keypair.Public()}, [][]byte{[]byte("message")}))
}

func TestChainSignatureDecodeRejectsMalformedInput(t *testing.T) {
	_, err := Decode(nil, make([]byte, 31))
	require.Error(t, err)

	_, err = Decode([][]byte{make([]byte, 31)}, make([]byte, 32))
	require.Error(t, err)
}

func TestChainSignatureVerifyRejectsCountMismatches(t *testing.T) {
	rng := rand.Reader

	t.Run("pubkey / msg count mismatch", func(t *testing.T) {
		cs := &ChainSignature{}
		require.Error(t, cs.Verify(
			[]PublicKey{GenerateKeypair(rng).Public()},
			[][]byte{[]byte("m1"), []byte("m2")},
		))
	})

	t.Run("params / msg count mismatch", func(t *testing.T) {
		cs := &ChainSignature{}
		k1 := GenerateKeypair(rng)
		msg1 := []byte("m1")
		cs.Sign(rng, k1, msg1)
		require.Error(t, cs.Verify(
			[]PublicKey{k1.Public(), GenerateKeypair(rng).Public()},
			[][]byte{msg1, []byte("m2")},
		))
	})

	t.Run("missing Z", func(t *testing.T) {
		cs := &ChainSignature{}
		k1 := GenerateKeypair(rng)
		msg1 := []byte("m1")
		cs.Sign(rng, k1, msg1)
		cs.Z = nil
		require.Error(t, cs.Verify([]PublicKey{k1.Public()}, [][]byte{msg1}))
	})
}

func TestPublicKeyEqualAndByteRoundTrip(t *testing.T) {
	rng := rand.Reader
	k := GenerateKeypair(rng)

	encoded := k.Public().Bytes()
	decoded, err := NewPublicKey(encoded)
	require.NoError(t, err)
	require.True(t, k.Public().Equal(decoded))

	other := GenerateKeypair(rng)
	require.False(t, k.Public().Equal(other.Public()))
}
