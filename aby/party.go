//
// Copyright (c) 2026 TikTok Pte. Ltd.
//
// All rights reserved.
//

// Package aby implements the C11 arithmetic/boolean shared-value layer:
// fixed-point arithmetic shares, XOR boolean shares, Beaver-triple
// bit-AND, a Kogge-Stone parallel-prefix adder for A2B conversion, and
// the comparison/multiplexer primitives the attribution reducer (C12)
// composes. Grounded on the teacher's `gmw.Network`/`gmw.Peer` shape
// (a peer owns a connection, the session drives an ordered
// share/compute/reveal sequence) with the boolean-circuit evaluation
// loop replaced by the arithmetic and Beaver-based boolean operations
// of §4.11.
package aby

import (
	"crypto/rand"
	"io"

	"github.com/tiktok-privacy-innovation/PrivacyGo/beaver"
	"github.com/tiktok-privacy-innovation/PrivacyGo/bio"
	"github.com/tiktok-privacy-innovation/PrivacyGo/block"
	"github.com/tiktok-privacy-innovation/PrivacyGo/dpcaerr"
	"github.com/tiktok-privacy-innovation/PrivacyGo/prng"
)

// Scale is the fixed-point scale factor, 2^16, applied by
// float_to_fixed/fixed_to_float.
const Scale = 1 << 16

// PartyID identifies one of the two ABY parties.
type PartyID int

// The two ABY parties.
const (
	Party0 PartyID = 0
	Party1 PartyID = 1
)

// ArithVec is a row-wise vector of arithmetic shares: entry i is this
// party's uint64 share of row i's fixed-point value, mod 2^64.
type ArithVec []uint64

// BoolVec is a row-wise vector of boolean shares: entry i is this
// party's 64-bit XOR share of row i's boolean-shared word.
type BoolVec []uint64

// Party is one side of a two-party ABY session: a network connection,
// a common PRNG synchronized with the peer (used for zero-communication
// masking in Share/A2B), and a Beaver-triple generator for secure ANDs.
type Party struct {
	ID     PartyID
	conn   *bio.Conn
	common *prng.PRNG
	beaver *beaver.Generator
	mux    muxPools
	rnd    io.Reader
}

// NewParty builds a Party. commonSeed must be identical (and applied
// in the same order of draws) on both sides; beaverGen must be
// bootstrapped via beaver.NewGenerator over the same conn. The two
// sides' NewParty calls must run concurrently: construction also
// bootstraps the multiplexer's directional OT pools over conn.
func NewParty(id PartyID, conn *bio.Conn, commonSeed block.Block, beaverGen *beaver.Generator, rnd io.Reader) (*Party, error) {
	if rnd == nil {
		rnd = rand.Reader
	}
	common, err := prng.New(commonSeed, 0)
	if err != nil {
		return nil, err
	}
	mux, err := newMuxPools(conn, id, rnd)
	if err != nil {
		return nil, err
	}
	return &Party{ID: id, conn: conn, common: common, beaver: beaverGen, mux: mux, rnd: rnd}, nil
}

func floatToFixed(v float64) uint64 {
	return uint64(int64(v * Scale))
}

func fixedToFloat(v uint64) float64 {
	return float64(int64(v)) / Scale
}

// Share secret-shares plain, known only to the party identified by
// owner, using a common-PRNG draw as the zero-communication mask: the
// owner returns fixed(plain)-mask, the peer returns mask, and no
// network traffic is used.
func (p *Party) Share(owner PartyID, plain float64) uint64 {
	mask := p.common.Uint64()
	if p.ID != owner {
		return mask
	}
	return floatToFixed(plain) - mask
}

// ShareVec shares a whole column at once.
func (p *Party) ShareVec(owner PartyID, plain []float64) ArithVec {
	out := make(ArithVec, len(plain))
	for i, v := range plain {
		out[i] = p.Share(owner, v)
	}
	return out
}

// Reveal exchanges shares bilaterally and returns the dequantized
// plaintext value on both sides.
func (p *Party) Reveal(share uint64) (float64, error) {
	if err := p.conn.SendUint64(share); err != nil {
		return 0, err
	}
	if err := p.conn.Flush(); err != nil {
		return 0, err
	}
	peerShare, err := p.conn.ReceiveUint64()
	if err != nil {
		return 0, err
	}
	return fixedToFloat(share + peerShare), nil
}

// Add returns the lane-wise arithmetic sum of two share vectors.
func Add(x, y ArithVec) (ArithVec, error) {
	if len(x) != len(y) {
		return nil, dpcaerr.New(dpcaerr.Parameter, "aby: Add operand length mismatch")
	}
	out := make(ArithVec, len(x))
	for i := range x {
		out[i] = x[i] + y[i]
	}
	return out, nil
}

// Sub returns the lane-wise arithmetic difference of two share vectors.
func Sub(x, y ArithVec) (ArithVec, error) {
	if len(x) != len(y) {
		return nil, dpcaerr.New(dpcaerr.Parameter, "aby: Sub operand length mismatch")
	}
	out := make(ArithVec, len(x))
	for i := range x {
		out[i] = x[i] - y[i]
	}
	return out, nil
}

// Sum reduces an arithmetic vector to a single arithmetic share by
// local column-wise addition, no interaction required.
func Sum(x ArithVec) uint64 {
	var acc uint64
	for _, v := range x {
		acc += v
	}
	return acc
}
