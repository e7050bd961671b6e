//
// Copyright (c) 2026 TikTok Pte. Ltd.
//
// All rights reserved.
//

// Package attribution implements the C12 windowed-attribution
// reducer: given row-wise arithmetic shares of (t0, t1, value), it
// computes and reveals Sum_i 1(0 < t1_i - t0_i < tau) * value_i using
// the aby share layer's comparisons and multiplexer.
package attribution

import (
	"github.com/tiktok-privacy-innovation/PrivacyGo/aby"
	"github.com/tiktok-privacy-innovation/PrivacyGo/dpcaerr"
)

// Table is one party's row-wise arithmetic shares of the three
// attribution columns produced by the PSI stage.
type Table struct {
	T0    aby.ArithVec
	T1    aby.ArithVec
	Value aby.ArithVec
}

// Reduce computes Sum_i 1(0 < t1_i - t0_i < tau) * value_i over the
// shared table and reveals the result to both parties.
func Reduce(p *aby.Party, table Table, tau float64) (float64, error) {
	n := len(table.T0)
	if len(table.T1) != n || len(table.Value) != n {
		return 0, dpcaerr.New(dpcaerr.Parameter, "attribution: column length mismatch")
	}
	if n == 0 {
		return p.Reveal(0)
	}

	delta, err := aby.Sub(table.T1, table.T0)
	if err != nil {
		return 0, err
	}

	zero := make([]uint64, n)
	thresh := make([]uint64, n)
	scaledTau := uint64(int64(tau * aby.Scale))
	for i := range thresh {
		thresh[i] = scaledTau
	}

	g, err := p.GreaterPublic(delta, zero)
	if err != nil {
		return 0, err
	}
	l, err := p.LessPublic(delta, thresh)
	if err != nil {
		return 0, err
	}

	inWindow, err := p.ElementwiseBoolAnd(g, l)
	if err != nil {
		return 0, err
	}

	gated, err := p.Multiplexer(inWindow, table.Value)
	if err != nil {
		return 0, err
	}

	total := aby.Sum(gated)
	return p.Reveal(total)
}
