// Package sig implements the aggregated multi-signature scheme used to
// authenticate a Biscuit token's signed block chain: a Schnorr-like
// construction over the ristretto255 group, chosen so that signatures
// across successive blocks can be combined into one constant-size
// aggregate rather than growing linearly with the chain.
package sig

import (
	"crypto/rand"
	"io"

	r255 "github.com/gtank/ristretto255"
)

// GenerateKeypair generates a new keypair. If rng is nil, a safe CSPRNG
// is used.
func GenerateKeypair(rng io.Reader) Keypair {
	return NewKeypair(PrivateKey{s: randomScalar(rng)})
}

// NewKeypair returns a new keypair derived from the provided private
// key.
func NewKeypair(k PrivateKey) Keypair {
	return Keypair{
		private: k,
		public:  PublicKey{e: (&r255.Element{}).ScalarBaseMult(k.s)},
	}
}

// Keypair holds a private and public key used to extend a signed
// block chain.
type Keypair struct {
	private PrivateKey
	public  PublicKey
}

// Private returns the private key.
func (k Keypair) Private() PrivateKey { return k.private }

// Public returns the public key.
func (k Keypair) Public() PublicKey { return k.public }

// NewPrivateKey builds a PrivateKey from a 32-byte compressed scalar
// (the output of PrivateKey.Bytes).
func NewPrivateKey(k []byte) (PrivateKey, error) {
	pk := PrivateKey{s: &r255.Scalar{}}
	return pk, pk.s.Decode(k)
}

// PrivateKey holds a scalar used to extend the signature chain.
type PrivateKey struct {
	s *r255.Scalar
}

// Bytes returns the 32-byte compressed private key.
func (k PrivateKey) Bytes() []byte {
	return k.s.Encode(nil)
}

// NewPublicKey builds a PublicKey from a 32-byte compressed group
// element (the output of PublicKey.Bytes). This is how a verifier
// decodes the root public key it is configured with.
func NewPublicKey(k []byte) (PublicKey, error) {
	pk := PublicKey{e: &r255.Element{}}
	return pk, pk.e.Decode(k)
}

// PublicKey holds a group element identifying one signer in the
// chain, including the root key a Token is checked against.
type PublicKey struct {
	e *r255.Element
}

// Bytes returns the 32-byte compressed public key.
func (k PublicKey) Bytes() []byte {
	return k.e.Encode(nil)
}

// Equal reports whether k and o encode the same point, used when a
// verifier checks a token's declared root key against its own.
func (k PublicKey) Equal(o PublicKey) bool {
	if k.e == nil || o.e == nil {
		return k.e == o.e
	}
	return k.e.Equal(o.e) == 1
}

func randomScalar(rng io.Reader) *r255.Scalar {
	var k [64]byte
	if rng == nil {
		rng = rand.Reader
	}
	if _, err := io.ReadFull(rng, k[:]); err != nil {
		panic(err)
	}
	return (&r255.Scalar{}).FromUniformBytes(k[:])
}
