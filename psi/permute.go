//
// Copyright (c) 2026 TikTok Pte. Ltd.
//
// All rights reserved.
//

package psi

import (
	"crypto/rand"
	"io"
	"math/big"
)

// generatePermutation returns a uniformly random permutation of
// [0,n) via Fisher-Yates, drawing each swap index with
// crypto/rand.Int so the private, per-party phase-4 shuffle (§4.7
// step 4) doesn't leak through a biased PRNG.
func generatePermutation(n int, rnd io.Reader) ([]int, error) {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j, err := rand.Int(rnd, big.NewInt(int64(i+1)))
		if err != nil {
			return nil, err
		}
		k := int(j.Int64())
		perm[i], perm[k] = perm[k], perm[i]
	}
	return perm, nil
}

func applyPermutationStrings(perm []int, col []string) []string {
	out := make([]string, len(col))
	for i, p := range perm {
		out[i] = col[p]
	}
	return out
}

func applyPermutationUint64(perm []int, col []uint64) []uint64 {
	out := make([]uint64, len(col))
	for i, p := range perm {
		out[i] = col[p]
	}
	return out
}

// permuteInPlace applies one fresh random permutation to every key
// and feature column of table, so no positional correlation survives
// across the two parties' inputs (§4.7 step 4).
func (s *Session) permuteInPlace(table *Table) error {
	n := table.rows()
	if n == 0 {
		return nil
	}
	perm, err := generatePermutation(n, s.rnd)
	if err != nil {
		return err
	}
	for i, col := range table.Keys {
		table.Keys[i] = applyPermutationStrings(perm, col)
	}
	for i, col := range table.Features {
		table.Features[i] = applyPermutationUint64(perm, col)
	}
	return nil
}
