//
// Copyright (c) 2026 TikTok Pte. Ltd.
//
// All rights reserved.
//

package aby

import "github.com/tiktok-privacy-innovation/PrivacyGo/dpcaerr"

// keepMasks are the per-iteration bit-parallel masks for the 6-stage
// SWAR Kogge-Stone adder: {0x1, 0x3, 0xF, 0xFF, 0xFFFF, 0xFFFFFFFF}.
var keepMasks = [6]uint64{0x1, 0x3, 0xF, 0xFF, 0xFFFF, 0xFFFFFFFF}

// KoggeStonePPA adds two boolean-shared 64-bit-per-row vectors using a
// bit-parallel (SWAR) parallel-prefix carry computation: propagate
// P=x^y and generate G=x&y are refined over 6 doubling-stride stages,
// each stage combining G with a shifted copy of itself through P via a
// secure AND, so the whole 64-bit addition per row takes 6 stages (13
// sequential secure ANDs, counting the initial generate) rather than
// 64 ripple steps. The final sum is P XOR (G shifted
// left by one, i.e. the carry into each bit).
func (p *Party) KoggeStonePPA(x, y BoolVec) (BoolVec, error) {
	if len(x) != len(y) {
		return nil, dpcaerr.New(dpcaerr.Parameter, "aby: ppa operand length mismatch")
	}
	n := len(x)
	prop := make(BoolVec, n)
	for i := 0; i < n; i++ {
		prop[i] = x[i] ^ y[i]
	}
	gen, err := p.ElementwiseBoolAnd(x, y)
	if err != nil {
		return nil, err
	}

	for i := 0; i < 6; i++ {
		stride := uint(1 << i)
		shiftedProp := make(BoolVec, n)
		shiftedGen := make(BoolVec, n)
		for j := 0; j < n; j++ {
			shiftedProp[j] = prop[j] << stride
			shiftedGen[j] = gen[j] << stride
		}
		shiftedProp = p.XorConst(shiftedProp, keepMasks[i])

		genStep, err := p.ElementwiseBoolAnd(prop, shiftedGen)
		if err != nil {
			return nil, err
		}
		propStep, err := p.ElementwiseBoolAnd(prop, shiftedProp)
		if err != nil {
			return nil, err
		}
		for j := 0; j < n; j++ {
			gen[j] ^= genStep[j]
			prop[j] = propStep[j]
		}
	}

	out := make(BoolVec, n)
	for i := 0; i < n; i++ {
		carry := gen[i] << 1
		out[i] = (x[i] ^ y[i]) ^ carry
	}
	return out, nil
}

// A2B converts an arithmetic-shared vector to a boolean-shared vector
// by locally constructing, on each side, a boolean share of its own
// arithmetic share (masked with a fresh common-PRNG draw so the two
// boolean halves XOR back to the original arithmetic share), then
// adding the two boolean halves with KoggeStonePPA.
func (p *Party) A2B(x ArithVec) (BoolVec, error) {
	n := len(x)
	myBoolShare := make(BoolVec, n)
	peerBoolShare := make(BoolVec, n)
	for i := 0; i < n; i++ {
		mask := p.common.Uint64()
		myBoolShare[i] = x[i] ^ mask
		peerBoolShare[i] = mask
	}
	if p.ID == Party0 {
		return p.KoggeStonePPA(myBoolShare, peerBoolShare)
	}
	return p.KoggeStonePPA(peerBoolShare, myBoolShare)
}

// SignBit extracts bit 63 (the MSB) of each row of a boolean-shared
// vector as a single-bit boolean share (0 or 1 in bit 0).
func SignBit(x BoolVec) BoolVec {
	out := make(BoolVec, len(x))
	for i, v := range x {
		out[i] = (v >> 63) & 1
	}
	return out
}
