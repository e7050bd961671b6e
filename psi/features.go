//
// Copyright (c) 2026 TikTok Pte. Ltd.
//
// All rights reserved.
//

package psi

import (
	"crypto/rand"
	"math/big"
	"sort"

	"github.com/tiktok-privacy-innovation/PrivacyGo/dpcaerr"
	"github.com/tiktok-privacy-innovation/PrivacyGo/paillier"
)

// two64 is 2^64, used to reduce a Paillier plaintext into a 64-bit
// share.
var two64 = new(big.Int).Lsh(big.NewInt(1), 64)

func (s *Session) encryptFeatureColumn(col []uint64) ([]*big.Int, error) {
	out := make([]*big.Int, len(col))
	for i, v := range col {
		c, err := s.paiPriv.PublicKey.Encrypt(new(big.Int).SetUint64(v), s.rnd)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

func (s *Session) sendCipherColumn(col []*big.Int) error {
	items := make([][]byte, len(col))
	for i, c := range col {
		b, err := paillier.MarshalValue(c, s.params.PaillierBits, true)
		if err != nil {
			return err
		}
		items[i] = b
	}
	return sendItems(s.conn, items)
}

func (s *Session) recvCipherColumn() ([]*big.Int, error) {
	width := paillier.CiphertextWidth(s.params.PaillierBits, true)
	items, err := recvItems(s.conn, width)
	if err != nil {
		return nil, err
	}
	out := make([]*big.Int, len(items))
	for i, it := range items {
		v, err := paillier.UnmarshalValue(it, s.params.PaillierBits, true)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// blindAndReturn re-randomizes a ciphertext encrypted under peerPub
// by homomorphically adding Enc(r) for a fresh full-width mask r, so
// the peer can decrypt and learn only (value+r), not value. aShare is
// this party's corresponding additive share, computed with the
// bias-avoiding formula of §4.7 phase 9 rather than a direct r mod
// 2^64 (which would be measurably biased since N is not a multiple
// of 2^64).
func (s *Session) blindAndReturn(peerPub *paillier.PublicKey, c *big.Int) (toSend *big.Int, aShare uint64, err error) {
	r, err := rand.Int(s.rnd, peerPub.N)
	if err != nil {
		return nil, 0, dpcaerr.Wrap(dpcaerr.Crypto, "psi: blinding mask", err)
	}
	encR, err := peerPub.Encrypt(r, s.rnd)
	if err != nil {
		return nil, 0, err
	}
	toSend = peerPub.Add(c, encR)

	nMinusRMod := new(big.Int).Mod(new(big.Int).Sub(peerPub.N, r), two64)
	nMod := new(big.Int).Mod(peerPub.N, two64)
	a := new(big.Int).Sub(nMinusRMod, nMod)
	a.Mod(a, two64)
	return toSend, a.Uint64(), nil
}

// decryptShare decrypts a ciphertext under this party's own key and
// reduces the plaintext to a 64-bit share.
func (s *Session) decryptShare(c *big.Int) (uint64, error) {
	v, err := s.paiPriv.Decrypt(c)
	if err != nil {
		return 0, err
	}
	return new(big.Int).Mod(v, two64).Uint64(), nil
}

// exchangeFeatures runs §4.7 phases 8-9 over pairs, the matched rows
// discovered by matchColumns. Both parties send their full (permuted)
// feature tables unfiltered, so the receiver alone decides, from its
// own view of the match, which ciphertexts to act on; a column this
// party doesn't own is expected to be zero-filled by convention, so
// it contributes nothing to the summed share.
//
// Packing (§6 apply_packing) is negotiated for consistency in the
// handshake but is not applied to the ciphertext layout here: per-slot
// blinding under packing needs slot-aligned masks that don't reduce
// to the scheme below, and is left as a documented simplification
// (see DESIGN.md) rather than implemented partially.
func (s *Session) exchangeFeatures(table *Table, pairs []matchPair) (Shares, error) {
	for c := 0; c < featureColumns; c++ {
		col, err := s.encryptFeatureColumn(table.Features[c])
		if err != nil {
			return Shares{}, err
		}
		if err := s.sendCipherColumn(col); err != nil {
			return Shares{}, err
		}
	}
	peerCipher := make([][]*big.Int, featureColumns)
	for c := 0; c < featureColumns; c++ {
		col, err := s.recvCipherColumn()
		if err != nil {
			return Shares{}, err
		}
		peerCipher[c] = col
	}

	// Canonical row order: both parties independently discovered the
	// same set of (peerIdx, selfIdx, fingerprint) triples, each from
	// its own side, so sorting by the shared fingerprint bytes gives
	// an identical ordering on both sides without further
	// communication - unlike sorting by either party's own row
	// index, which differs between the two views.
	ordered := append([]matchPair(nil), pairs...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].fingerprint < ordered[j].fingerprint })

	n := len(ordered)
	out := Shares{T0: make([]uint64, n), T1: make([]uint64, n), Value: make([]uint64, n)}
	dst := [][]uint64{out.T0, out.T1, out.Value}

	for c := 0; c < featureColumns; c++ {
		toSend := make([]*big.Int, n)
		for m, pr := range ordered {
			ts, a, err := s.blindAndReturn(s.peerPub, peerCipher[c][pr.peerIdx])
			if err != nil {
				return Shares{}, err
			}
			toSend[m] = ts
			dst[c][m] = a
		}
		if err := s.sendCipherColumn(toSend); err != nil {
			return Shares{}, err
		}
	}

	for c := 0; c < featureColumns; c++ {
		blinded, err := s.recvCipherColumn()
		if err != nil {
			return Shares{}, err
		}
		if len(blinded) != n {
			return Shares{}, dpcaerr.New(dpcaerr.Deserialization, "psi: feature share count mismatch")
		}
		for m := range ordered {
			b, err := s.decryptShare(blinded[m])
			if err != nil {
				return Shares{}, err
			}
			dst[c][m] += b
		}
	}

	return out, nil
}
