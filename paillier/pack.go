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

// SlotBits returns the per-slot bit width 64+s+1 for statistical
// security parameter s.
func SlotBits(s int) int {
	return 64 + s + 1
}

// PackCapacity returns the number of uint64 slots that fit in an
// L-bit modulus at the given slot width, m = floor(L / slotBits).
func PackCapacity(l KeyBits, slotBits int) int {
	return int(l) / slotBits
}

// Pack combines up to PackCapacity(l, slotBits) uint64 values into a
// single big.Int as sum(x_j * B^(m-1-j)), B = 2^slotBits, per §4.5.
func Pack(values []uint64, l KeyBits, s int) (*big.Int, error) {
	slotBits := SlotBits(s)
	capacity := PackCapacity(l, slotBits)
	if len(values) > capacity {
		return nil, dpcaerr.Paramf("paillier: %d values exceed packing capacity %d", len(values), capacity)
	}
	acc := new(big.Int)
	for _, x := range values {
		acc.Lsh(acc, uint(slotBits))
		acc.Or(acc, new(big.Int).SetUint64(x))
	}
	return acc, nil
}

// Unpack splits a packed plaintext back into count uint64 slots.
func Unpack(packed *big.Int, count int, s int) []uint64 {
	slotBits := uint(SlotBits(s))
	mask := new(big.Int).Lsh(big.NewInt(1), slotBits)
	mask.Sub(mask, one)

	out := make([]uint64, count)
	rem := new(big.Int).Set(packed)
	slot := new(big.Int)
	for i := count - 1; i >= 0; i-- {
		slot.And(rem, mask)
		out[i] = slot.Uint64()
		rem.Rsh(rem, slotBits)
	}
	return out
}
