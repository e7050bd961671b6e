//
// Copyright (c) 2026 TikTok Pte. Ltd.
//
// All rights reserved.
//

package psi

import (
	"math/big"

	"github.com/tiktok-privacy-innovation/PrivacyGo/dpcaerr"
	"github.com/tiktok-privacy-innovation/PrivacyGo/ecc"
)

// matchPair links one matched row across the two parties' private
// row spaces: peerIdx indexes the peer's (post-permutation) rows,
// selfIdx indexes this party's own. fingerprint is the shared
// 12-byte double-masked value both sides independently computed for
// the row, used as a party-symmetric key to agree on a canonical
// ordering for the feature phase without revealing either side's
// original row index to the other.
type matchPair struct {
	peerIdx     int
	selfIdx     int
	fingerprint string
}

// fingerprintBound is the size of the space of the truncated
// comparison key (§4.7 "Numeric details": 2*u*v must stay well below
// 2^(8*truncatedLen)).
var fingerprintBound = new(big.Int).Lsh(big.NewInt(1), 8*truncatedLen)

// checkFingerprintBound rejects a (self, peer) row-count pair that
// would bring the 12-byte truncated fingerprint space anywhere near
// its birthday bound, rather than silently truncating further.
func checkFingerprintBound(selfRows, peerRows int) error {
	product := new(big.Int).Mul(big.NewInt(2*int64(selfRows)+1), big.NewInt(int64(peerRows)+1))
	// product is a loose over-approximation of 2*u*v; compare against
	// a bound many orders of magnitude below fingerprintBound so the
	// check trips long before the birthday approximation stops being
	// conservative.
	margin := new(big.Int).Rsh(fingerprintBound, 32)
	if product.Cmp(margin) >= 0 {
		return dpcaerr.Paramf("psi: row counts (%d,%d) approach the fingerprint birthday bound", selfRows, peerRows)
	}
	return nil
}

func truncate(point []byte) []byte {
	return point[len(point)-truncatedLen:]
}

func encryptFull(points [][]byte, k *big.Int) ([][]byte, error) {
	out := make([][]byte, len(points))
	for i, pt := range points {
		enc, err := ecc.Encrypt(pt, k)
		if err != nil {
			return nil, err
		}
		out[i] = enc
	}
	return out, nil
}

func encryptTruncated(points [][]byte, k *big.Int) ([][]byte, error) {
	out := make([][]byte, len(points))
	for i, pt := range points {
		enc, err := ecc.Encrypt(pt, k)
		if err != nil {
			return nil, err
		}
		out[i] = append([]byte(nil), truncate(enc)...)
	}
	return out, nil
}

func encryptAndDivTruncated(points [][]byte, ka, kb *big.Int) ([][]byte, error) {
	out := make([][]byte, len(points))
	for i, pt := range points {
		enc, err := ecc.EncryptAndDiv(pt, ka, kb)
		if err != nil {
			return nil, err
		}
		out[i] = append([]byte(nil), truncate(enc)...)
	}
	return out, nil
}

// indexByValue builds a byte-string -> position map over items, used
// both to detect a match and to recover which position produced it (a
// plain sorted-slice binary search, as the original engine performs,
// would answer only the first question).
func indexByValue(items [][]byte) map[string]int {
	m := make(map[string]int, len(items))
	for i, it := range items {
		m[string(it)] = i
	}
	return m
}

// matchColumns runs §4.7 phases 4-7: universal key-0 masking of every
// key column, the phase-5/6 first match over column 0, and the
// repeated phase-7 match over columns 1..k-1 restricted to rows still
// unmatched. It returns every discovered matchPair.
//
// The original engine additionally reshuffles each exchanged blob
// under the peer's own permutation before returning it, and skips
// already-matched peer rows when building a later column's request.
// Both are bandwidth/traffic-shape hardening, not correctness
// requirements (a redundant re-check of an already-matched row is
// harmless), and are omitted here; see DESIGN.md.
func (s *Session) matchColumns(table *Table) ([]matchPair, error) {
	k := len(table.Keys)
	key0 := s.eccKey.Scalars[0]

	selfCols := make([][][]byte, k)
	for i, col := range table.Keys {
		selfCols[i] = make([][]byte, len(col))
		for r, cell := range col {
			pt, err := ecc.HashEncrypt([]byte(cell), key0)
			if err != nil {
				return nil, err
			}
			selfCols[i][r] = pt
		}
	}

	for _, col := range selfCols {
		if err := sendItems(s.conn, col); err != nil {
			return nil, err
		}
	}
	peerCols := make([][][]byte, k)
	for i := 0; i < k; i++ {
		items, err := recvItems(s.conn, compressedPointLen)
		if err != nil {
			return nil, err
		}
		peerCols[i] = items
	}

	nPeer := len(peerCols[0])
	if err := checkFingerprintBound(table.rows(), nPeer); err != nil {
		return nil, err
	}
	matched := make([]bool, nPeer)
	var pairs []matchPair

	zeroPairs, err := s.matchColumnZero(peerCols[0], key0, matched)
	if err != nil {
		return nil, err
	}
	pairs = append(pairs, zeroPairs...)

	for j := 1; j < k; j++ {
		keyJ := s.eccKey.Scalars[j]
		jPairs, err := s.matchColumnJ(keyJ, key0, peerCols[j], matched)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, jPairs...)
	}

	return pairs, nil
}

// matchColumnZero performs the phase-5/6 double-encrypt-and-match
// over column 0: this party re-encrypts every peer point with its own
// key0 and sends the truncated result; the peer does the symmetric
// thing and sends back its own truncated re-encryption of this
// party's column-0 points, which is then searched.
func (s *Session) matchColumnZero(peerCol0 [][]byte, key0 *big.Int, matched []bool) ([]matchPair, error) {
	toPeer, err := encryptTruncated(peerCol0, key0)
	if err != nil {
		return nil, err
	}
	if err := sendItems(s.conn, toPeer); err != nil {
		return nil, err
	}
	fromPeer, err := recvItems(s.conn, truncatedLen)
	if err != nil {
		return nil, err
	}

	haystack := indexByValue(fromPeer)
	var pairs []matchPair
	for i, v := range toPeer {
		if selfIdx, ok := haystack[string(v)]; ok {
			matched[i] = true
			pairs = append(pairs, matchPair{peerIdx: i, selfIdx: selfIdx, fingerprint: string(v)})
		}
	}
	return pairs, nil
}

// matchColumnJ performs one round of §4.7 phase 7 for key column j
// (j >= 1). Leg one exchanges Encrypt(peer-key0-masked point, own
// keyJ) in both directions with no cancellation yet; leg two has each
// side cancel its own key0 residue with EncryptAndDiv and exchange
// the truncated result, leaving both sides holding a clean double
// mask of their own rows that can be searched directly.
func (s *Session) matchColumnJ(keyJ, key0 *big.Int, peerColJ [][]byte, matched []bool) ([]matchPair, error) {
	toPeer, err := encryptFull(peerColJ, keyJ)
	if err != nil {
		return nil, err
	}
	if err := sendItems(s.conn, toPeer); err != nil {
		return nil, err
	}
	fromPeerFull, err := recvItems(s.conn, compressedPointLen)
	if err != nil {
		return nil, err
	}

	haystackRaw, err := encryptAndDivTruncated(fromPeerFull, keyJ, key0)
	if err != nil {
		return nil, err
	}
	if err := sendItems(s.conn, haystackRaw); err != nil {
		return nil, err
	}
	needle, err := recvItems(s.conn, truncatedLen)
	if err != nil {
		return nil, err
	}
	if len(needle) != len(peerColJ) {
		return nil, dpcaerr.New(dpcaerr.Deserialization, "psi: column match size mismatch")
	}

	haystack := indexByValue(haystackRaw)
	var pairs []matchPair
	for i, v := range needle {
		if matched[i] {
			continue
		}
		if selfIdx, ok := haystack[string(v)]; ok {
			matched[i] = true
			pairs = append(pairs, matchPair{peerIdx: i, selfIdx: selfIdx, fingerprint: string(v)})
		}
	}
	return pairs, nil
}
