package sig

import (
	"crypto/sha512"
	"errors"
	"io"

	r255 "github.com/gtank/ristretto255"
)

// ErrInvalidSignature indicates that aggregate signature verification
// failed: a message was altered, or a block was reordered or spliced
// relative to the keys it is checked against. Verify does not compare
// any key against an expected root key.
var ErrInvalidSignature = errors.New("sig: invalid signature")

var ristrettoIdentity = r255.NewElement()

// ChainSignature is an aggregated Schnorr-like signature spanning one
// message per block appended so far. Appending a block extends the
// aggregate rather than adding a parallel signature, so the encoded
// size grows by one group element per block instead of one full
// signature per block, and the result cannot be truncated, reordered
// or spliced without failing Verify.
type ChainSignature struct {
	Params []*r255.Element
	Z      *r255.Scalar
}

// Sign extends s with a signature over msg under k's private key and
// returns s. If rng is nil, a safe CSPRNG is used. It is safe to call
// Sign against a zero ChainSignature, which is how the authority
// block's signature is produced.
func (s *ChainSignature) Sign(rng io.Reader, k Keypair, msg []byte) *ChainSignature {
	r := randomScalar(rng)
	A := (&r255.Element{}).ScalarBaseMult(r)
	d := hashPoint(A)
	e := hashMessage(k.public.e, msg)
	z := &r255.Scalar{}
	z = z.Multiply(r, d).Subtract(z, e.Multiply(e, k.Private().s))
	s.Params = append(s.Params, A)
	if s.Z == nil {
		s.Z = z
	} else {
		s.Z = s.Z.Add(s.Z, z)
	}
	return s
}

// Verify checks the aggregate signature against the ordered list of
// public keys and messages it was built from. pubkeys[i] must be the
// key that signed msgs[i]; the number of keys, messages and signature
// params must all match, and a mismatch of any length is itself a
// verification failure rather than a panic.
func (s *ChainSignature) Verify(pubkeys []PublicKey, msgs [][]byte) error {
	if len(pubkeys) != len(msgs) {
		return errors.New("sig: wrong number of keys or messages")
	}
	if len(msgs) != len(s.Params) {
		return errors.New("sig: wrong number of params or messages")
	}
	if s.Z == nil {
		return errors.New("sig: missing Z")
	}

	zP := (&r255.Element{}).ScalarBaseMult(s.Z)

	pubs := make([]*r255.Element, len(pubkeys))
	hashes := make([]*r255.Scalar, len(msgs))
	for i, k := range pubkeys {
		pubs[i] = k.e
		hashes[i] = hashMessage(k.e, msgs[i])
	}
	eiXi := r255.NewElement().MultiScalarMult(hashes, pubs)

	for i, A := range s.Params {
		hashes[i] = hashPoint(A)
	}
	diAi := r255.NewElement().MultiScalarMult(hashes, s.Params)

	res := zP.Add(zP, eiXi).Subtract(zP, diAi)
	if ristrettoIdentity.Equal(res) != 1 {
		return ErrInvalidSignature
	}
	return nil
}

// Encode returns the per-block signature params and the aggregate
// scalar Z, each as compressed byte strings ready for the wire codec.
func (s *ChainSignature) Encode() ([][]byte, []byte) {
	params := make([][]byte, len(s.Params))
	for i, p := range s.Params {
		params[i] = p.Encode([]byte{})
	}
	return params, s.Z.Encode([]byte{})
}

// Decode rebuilds a ChainSignature from the encoded params and Z
// produced by Encode.
func Decode(params [][]byte, z []byte) (*ChainSignature, error) {
	decodedParams := make([]*r255.Element, len(params))
	for i, p := range params {
		e := &r255.Element{}
		if err := e.Decode(p); err != nil {
			return nil, err
		}
		decodedParams[i] = e
	}

	decodedZ := &r255.Scalar{}
	if err := decodedZ.Decode(z); err != nil {
		return nil, err
	}

	return &ChainSignature{
		Params: decodedParams,
		Z:      decodedZ,
	}, nil
}

func hashPoint(p *r255.Element) *r255.Scalar {
	h := sha512.New()
	buf := make([]byte, 0, sha512.Size)
	h.Write(p.Encode(buf[:0]))
	return (&r255.Scalar{}).FromUniformBytes(h.Sum(buf[:0]))
}

func hashMessage(point *r255.Element, data []byte) *r255.Scalar {
	h := sha512.New()
	buf := make([]byte, 0, sha512.Size)
	h.Write(point.Encode(buf))
	h.Write(data)
	return (&r255.Scalar{}).FromUniformBytes(h.Sum(buf[:0]))
}
