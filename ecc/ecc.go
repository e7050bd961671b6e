//
// Copyright (c) 2026 TikTok Pte. Ltd.
//
// All rights reserved.
//

// Package ecc implements the C4 elliptic-curve cipher used by the PSI
// column matcher: fixed-curve (NIST P-256) scalar multiplication over
// a try-and-increment hash-to-curve, following the commutative-masking
// construction used for ECDH-PSI. Grounded on the teacher's
// `crypto/elliptic` usage in `ot/co.go` and on
// isglobal-brge-dsVert's `psi_ops.go` mask/double-mask shape, with the
// hash-to-curve random oracle upgraded from SHA-256 to SHA3-256 per
// spec.
package ecc

import (
	"crypto/elliptic"
	"crypto/rand"
	"io"
	"math/big"

	"golang.org/x/crypto/sha3"

	"github.com/tiktok-privacy-innovation/PrivacyGo/dpcaerr"
)

// curve is the only accepted curve; other curve ids must be rejected
// by callers that deserialize a curve identifier.
func curve() elliptic.Curve {
	return elliptic.P256()
}

const maxHashToCurveAttempts = 4096

// eccKeyBitsLen is the required bit length of a generated scalar
// before the final +1, matching kEccKeyBitsLen.
const eccKeyBitsLen = 256

const maxScalarAttempts = 4096

// PrivateKey holds an array of k independent scalars, one per key
// column, each rejection-sampled to have exactly eccKeyBitsLen
// significant bits before being shifted into [1, n-1].
type PrivateKey struct {
	Scalars []*big.Int
}

// GenerateKey rejection-samples k scalars in [1, n-1].
func GenerateKey(k int, rnd io.Reader) (*PrivateKey, error) {
	if k <= 0 {
		return nil, dpcaerr.Paramf("ecc: key count %d must be positive", k)
	}
	if rnd == nil {
		rnd = rand.Reader
	}
	n := curve().Params().N
	scalars := make([]*big.Int, k)
	for i := 0; i < k; i++ {
		s, err := randScalar(n, rnd)
		if err != nil {
			return nil, err
		}
		scalars[i] = s
	}
	return &PrivateKey{Scalars: scalars}, nil
}

// randScalar rejection-samples a value in [0, n-1) with exactly
// eccKeyBitsLen significant bits, then shifts it into [1, n-1],
// matching the original engine's generate_private_key() rejection
// loop (while BN_num_bits(bn) != kEccKeyBitsLen).
func randScalar(n *big.Int, rnd io.Reader) (*big.Int, error) {
	nMinus1 := new(big.Int).Sub(n, big.NewInt(1))
	for attempt := 0; attempt < maxScalarAttempts; attempt++ {
		k, err := rand.Int(rnd, nMinus1)
		if err != nil {
			return nil, dpcaerr.Wrap(dpcaerr.Crypto, "ecc: scalar generation", err)
		}
		if k.BitLen() != eccKeyBitsLen {
			continue
		}
		return k.Add(k, big.NewInt(1)), nil
	}
	return nil, dpcaerr.New(dpcaerr.Crypto, "ecc: scalar rejection sampling exceeded attempt budget")
}

// randomOracle computes RO(msg, p): initialize y=0; for i=1..ceil((bits(p)+256)/256),
// y = (y<<256) + SHA3-256(byte(i) || msg); return y mod p.
func randomOracle(msg []byte, p *big.Int) *big.Int {
	iterations := (p.BitLen() + 256 + 255) / 256
	y := new(big.Int)
	block := new(big.Int)
	for i := 1; i <= iterations; i++ {
		h := sha3.New256()
		h.Write([]byte{byte(i)})
		h.Write(msg)
		block.SetBytes(h.Sum(nil))
		y.Lsh(y, 256)
		y.Add(y, block)
	}
	return y.Mod(y, p)
}

func isQuadraticResidue(w, p *big.Int) bool {
	if w.Sign() == 0 {
		return true
	}
	exp := new(big.Int).Rsh(new(big.Int).Sub(p, big.NewInt(1)), 1)
	r := new(big.Int).Exp(w, exp, p)
	return r.Cmp(big.NewInt(1)) == 0
}

// HashToCurve implements the try-and-increment hash-to-curve of §4.4,
// returning a point on P-256 with an even y-coordinate.
func HashToCurve(msg []byte) (x, y *big.Int, err error) {
	c := curve()
	params := c.Params()
	p := params.P
	a := big.NewInt(-3) // P-256's a = -3
	cur := append([]byte(nil), msg...)

	for attempt := 0; attempt < maxHashToCurveAttempts; attempt++ {
		candidateX := randomOracle(cur, p)

		x3 := new(big.Int).Mul(candidateX, candidateX)
		x3.Mul(x3, candidateX)
		x3.Mod(x3, p)

		ax := new(big.Int).Mul(a, candidateX)
		ax.Mod(ax, p)

		w := new(big.Int).Add(x3, ax)
		w.Add(w, params.B)
		w.Mod(w, p)

		if isQuadraticResidue(w, p) {
			s := new(big.Int).ModSqrt(w, p)
			if s != nil {
				if s.Bit(0) != 0 {
					s.Sub(p, s)
				}
				if (candidateX.Sign() != 0 || s.Sign() != 0) && c.IsOnCurve(candidateX, s) {
					return candidateX, s, nil
				}
			}
		}
		cur = candidateX.Bytes()
	}
	return nil, nil, dpcaerr.New(dpcaerr.Crypto, "ecc: hash-to-curve did not converge")
}

// Compress encodes a point as its 33-byte compressed form.
func Compress(x, y *big.Int) []byte {
	return elliptic.MarshalCompressed(curve(), x, y)
}

// Decompress decodes a 33-byte compressed point, rejecting anything
// not on P-256.
func Decompress(data []byte) (x, y *big.Int, err error) {
	x, y = elliptic.UnmarshalCompressed(curve(), data)
	if x == nil {
		return nil, nil, dpcaerr.New(dpcaerr.Deserialization, "ecc: invalid compressed point")
	}
	return x, y, nil
}

func scalarMult(x, y, k *big.Int) []byte {
	c := curve()
	rx, ry := c.ScalarMult(x, y, k.Bytes())
	return Compress(rx, ry)
}

// HashEncrypt returns k_i * hash_to_curve(msg) in compressed form.
func HashEncrypt(msg []byte, k *big.Int) ([]byte, error) {
	x, y, err := HashToCurve(msg)
	if err != nil {
		return nil, err
	}
	return scalarMult(x, y, k), nil
}

// Encrypt returns k_i * decompress(point) in compressed form.
func Encrypt(point []byte, k *big.Int) ([]byte, error) {
	x, y, err := Decompress(point)
	if err != nil {
		return nil, err
	}
	return scalarMult(x, y, k), nil
}

// EncryptAndDiv returns (k_a * k_b^-1 mod n) * decompress(point) in
// compressed form, used to remove one party's mask while applying
// another's in a single scalar multiplication.
func EncryptAndDiv(point []byte, ka, kb *big.Int) ([]byte, error) {
	x, y, err := Decompress(point)
	if err != nil {
		return nil, err
	}
	n := curve().Params().N
	kbInv := new(big.Int).ModInverse(kb, n)
	if kbInv == nil {
		return nil, dpcaerr.New(dpcaerr.Precondition, "ecc: scalar has no inverse mod n")
	}
	scalar := new(big.Int).Mul(ka, kbInv)
	scalar.Mod(scalar, n)
	return scalarMult(x, y, scalar), nil
}
