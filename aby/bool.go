//
// Copyright (c) 2026 TikTok Pte. Ltd.
//
// All rights reserved.
//

package aby

import (
	"github.com/tiktok-privacy-innovation/PrivacyGo/dpcaerr"
)

// XorConst XORs a public constant into party0's share only, so both
// sides hold a share of value XOR constant.
func (p *Party) XorConst(x BoolVec, constant uint64) BoolVec {
	if p.ID != Party0 {
		return x
	}
	out := make(BoolVec, len(x))
	for i, v := range x {
		out[i] = v ^ constant
	}
	return out
}

type ubatch struct {
	e []uint64
	f []uint64
}

// ElementwiseBoolAnd computes, row by row, a fresh boolean share of
// x[i] AND y[i] (all 64 bit-lanes of the row at once) via the
// standard Beaver masked-open protocol: e=x^a, f=y^b, exchange (e,f);
// party 0 returns e*b ^ f*a ^ c, party 1 returns e*f ^ e*b ^ f*a ^ c.
func (p *Party) ElementwiseBoolAnd(x, y BoolVec) (BoolVec, error) {
	if len(x) != len(y) {
		return nil, dpcaerr.New(dpcaerr.Parameter, "aby: bool-and operand length mismatch")
	}
	n := len(x)
	if n == 0 {
		return BoolVec{}, nil
	}
	triples, err := p.beaver.Generate(n)
	if err != nil {
		return nil, err
	}

	e := make([]uint64, n)
	f := make([]uint64, n)
	for i := 0; i < n; i++ {
		e[i] = x[i] ^ triples[i].A
		f[i] = y[i] ^ triples[i].B
	}

	peer, err := p.exchangeEF(e, f)
	if err != nil {
		return nil, err
	}

	out := make(BoolVec, n)
	for i := 0; i < n; i++ {
		fullE := e[i] ^ peer.e[i]
		fullF := f[i] ^ peer.f[i]
		z := (fullE & triples[i].B) ^ (fullF & triples[i].A) ^ triples[i].C
		if p.ID == Party1 {
			z ^= fullE & fullF
		}
		out[i] = z
	}
	return out, nil
}

func (p *Party) exchangeEF(e, f []uint64) (ubatch, error) {
	if err := sendUint64Slice(p.conn, e); err != nil {
		return ubatch{}, err
	}
	if err := sendUint64Slice(p.conn, f); err != nil {
		return ubatch{}, err
	}
	if err := p.conn.Flush(); err != nil {
		return ubatch{}, err
	}
	peerE, err := recvUint64Slice(p.conn)
	if err != nil {
		return ubatch{}, err
	}
	peerF, err := recvUint64Slice(p.conn)
	if err != nil {
		return ubatch{}, err
	}
	return ubatch{e: peerE, f: peerF}, nil
}
