package biscuit

import (
	"crypto/rand"
	"testing"

	"github.com/divarvel/biscuit-go/datalog"
	"github.com/divarvel/biscuit-go/sig"
	"github.com/stretchr/testify/require"
)

func testBlock(t *testing.T, index uint32, baseSymbols *datalog.SymbolTable) *Block {
	t.Helper()
	bb := NewBlockBuilder(index, baseSymbols)
	require.NoError(t, bb.AddFact(Fact{
		Predicate: Predicate{Name: "extra", IDs: []Term{Integer(index)}},
	}))
	return bb.Build()
}

func TestSignedContainerChainAcrossThreeBlocks(t *testing.T) {
	root := sig.GenerateKeypair(rand.Reader)
	symbols := datalog.DefaultSymbolTable()
	authority := testBlock(t, 0, symbols.Clone())

	c1, err := newSignedContainer(rand.Reader, root, authority)
	require.NoError(t, err)
	require.NoError(t, c1.verify())

	k2 := sig.GenerateKeypair(rand.Reader)
	c2, err := c1.append(rand.Reader, k2, testBlock(t, 1, symbols.Clone()))
	require.NoError(t, err)
	require.NoError(t, c2.verify())

	k3 := sig.GenerateKeypair(rand.Reader)
	c3, err := c2.append(rand.Reader, k3, testBlock(t, 2, symbols.Clone()))
	require.NoError(t, err)
	require.NoError(t, c3.verify())

	require.NoError(t, c3.checkRootKey(root.Public()))
	require.ErrorIs(t, c3.checkRootKey(k2.Public()), ErrUnknownPublicKey)
}

func TestSignedContainerWireRoundTrip(t *testing.T) {
	root := sig.GenerateKeypair(rand.Reader)
	symbols := datalog.DefaultSymbolTable()
	authority := testBlock(t, 0, symbols.Clone())

	c1, err := newSignedContainer(rand.Reader, root, authority)
	require.NoError(t, err)
	k2 := sig.GenerateKeypair(rand.Reader)
	c2, err := c1.append(rand.Reader, k2, testBlock(t, 1, symbols.Clone()))
	require.NoError(t, err)

	wc, err := c2.toWire()
	require.NoError(t, err)

	back, err := signedContainerFromWire(wc)
	require.NoError(t, err)
	require.True(t, c2.equalBytes(back))
	require.NoError(t, back.verify())
}

func TestSignedContainerVerifyRejectsSplicedBlock(t *testing.T) {
	root := sig.GenerateKeypair(rand.Reader)
	symbols := datalog.DefaultSymbolTable()
	authority := testBlock(t, 0, symbols.Clone())

	c1, err := newSignedContainer(rand.Reader, root, authority)
	require.NoError(t, err)
	k2 := sig.GenerateKeypair(rand.Reader)
	c2, err := c1.append(rand.Reader, k2, testBlock(t, 1, symbols.Clone()))
	require.NoError(t, err)

	k3 := sig.GenerateKeypair(rand.Reader)
	other, err := newSignedContainer(rand.Reader, root, testBlock(t, 0, symbols.Clone()))
	require.NoError(t, err)
	foreignBlock := NewBlockBuilder(1, symbols.Clone())
	require.NoError(t, foreignBlock.AddFact(Fact{
		Predicate: Predicate{Name: "extra", IDs: []Term{Integer(999)}},
	}))
	spliced, err := other.append(rand.Reader, k3, foreignBlock.Build())
	require.NoError(t, err)

	tampered := &signedContainer{
		authorityBytes: c2.authorityBytes,
		blockBytes:     spliced.blockBytes,
		keys:           c2.keys,
		signature:      c2.signature,
	}
	require.Error(t, tampered.verify())
}
