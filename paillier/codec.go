//
// Copyright (c) 2026 TikTok Pte. Ltd.
//
// All rights reserved.
//

package paillier

import (
	"math/big"

	"github.com/tiktok-privacy-innovation/PrivacyGo/dpcaerr"
)

func bytesOf(l KeyBits) int {
	return int(l) / 8
}

func fixedWidth(v *big.Int, width int) ([]byte, error) {
	b := v.Bytes()
	if len(b) > width {
		return nil, dpcaerr.Paramf("paillier: value does not fit in %d bytes", width)
	}
	out := make([]byte, width)
	copy(out[width-len(b):], b)
	return out, nil
}

// MarshalPublicKey encodes pk as N (L/8 bytes) followed, in DJN mode,
// by HS (2*L/8 bytes).
func (pk *PublicKey) MarshalPublicKey() ([]byte, error) {
	nw := bytesOf(pk.L)
	nBytes, err := fixedWidth(pk.N, nw)
	if err != nil {
		return nil, err
	}
	if pk.HS == nil {
		return nBytes, nil
	}
	hsBytes, err := fixedWidth(pk.HS, 2*nw)
	if err != nil {
		return nil, err
	}
	return append(nBytes, hsBytes...), nil
}

// UnmarshalPublicKey decodes a public key of known size l, inferring
// DJN mode from the buffer length.
func UnmarshalPublicKey(l KeyBits, data []byte) (*PublicKey, error) {
	if !l.valid() {
		return nil, dpcaerr.Paramf("paillier: key size %d not in {1024,2048,3072}", l)
	}
	nw := bytesOf(l)
	switch len(data) {
	case nw:
		n := new(big.Int).SetBytes(data)
		return &PublicKey{L: l, N: n, N2: new(big.Int).Mul(n, n)}, nil
	case 3 * nw:
		n := new(big.Int).SetBytes(data[:nw])
		hs := new(big.Int).SetBytes(data[nw:])
		return &PublicKey{L: l, N: n, N2: new(big.Int).Mul(n, n), HS: hs}, nil
	default:
		return nil, dpcaerr.New(dpcaerr.Deserialization, "paillier: malformed public key length")
	}
}

// MarshalPrivateKey encodes sk as N (L/8) || p (L/16) || q (L/16).
func (sk *PrivateKey) MarshalPrivateKey() ([]byte, error) {
	nw := bytesOf(sk.L)
	half := nw / 2
	nBytes, err := fixedWidth(sk.N, nw)
	if err != nil {
		return nil, err
	}
	pBytes, err := fixedWidth(sk.P, half)
	if err != nil {
		return nil, err
	}
	qBytes, err := fixedWidth(sk.Q, half)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, nw+2*half)
	out = append(out, nBytes...)
	out = append(out, pBytes...)
	out = append(out, qBytes...)
	return out, nil
}

// UnmarshalPrivateKey decodes a private key of known size l and DJN
// mode (the HS component, if any, must be supplied separately via
// UnmarshalPublicKey/recomputation since the private encoding omits it).
func UnmarshalPrivateKey(l KeyBits, djn bool, data []byte) (*PrivateKey, error) {
	if !l.valid() {
		return nil, dpcaerr.Paramf("paillier: key size %d not in {1024,2048,3072}", l)
	}
	nw := bytesOf(l)
	half := nw / 2
	if len(data) != nw+2*half {
		return nil, dpcaerr.New(dpcaerr.Deserialization, "paillier: malformed private key length")
	}
	n := new(big.Int).SetBytes(data[:nw])
	p := new(big.Int).SetBytes(data[nw : nw+half])
	q := new(big.Int).SetBytes(data[nw+half:])

	pMinus1 := new(big.Int).Sub(p, one)
	qMinus1 := new(big.Int).Sub(q, one)
	sk := &PrivateKey{
		PublicKey: PublicKey{L: l, N: n, N2: new(big.Int).Mul(n, n)},
		P:         p,
		Q:         q,
		Lambda:    lcm(pMinus1, qMinus1),
	}
	if djn {
		// HS is re-derivable only if it was transmitted alongside the
		// public key; callers needing DJN-mode decryption must set
		// sk.PublicKey.HS from the matching public key bytes before
		// use. Decryption itself does not need HS.
	}
	if err := sk.precomputeCRT(); err != nil {
		return nil, err
	}
	return sk, nil
}

// CiphertextWidth returns the fixed encoding width of a value: L/8
// bytes for a plaintext-domain value (mod N), or 2*L/8 bytes for a
// ciphertext-domain value (mod N^2).
func CiphertextWidth(l KeyBits, isNSquare bool) int {
	w := bytesOf(l)
	if isNSquare {
		return 2 * w
	}
	return w
}

// MarshalValue encodes v at the fixed width implied by isNSquare.
func MarshalValue(v *big.Int, l KeyBits, isNSquare bool) ([]byte, error) {
	return fixedWidth(v, CiphertextWidth(l, isNSquare))
}

// UnmarshalValue decodes a fixed-width value.
func UnmarshalValue(data []byte, l KeyBits, isNSquare bool) (*big.Int, error) {
	if len(data) != CiphertextWidth(l, isNSquare) {
		return nil, dpcaerr.New(dpcaerr.Deserialization, "paillier: malformed value width")
	}
	return new(big.Int).SetBytes(data), nil
}
