//
// Copyright (c) 2026 TikTok Pte. Ltd.
//
// All rights reserved.
//

package otext

import "github.com/tiktok-privacy-innovation/PrivacyGo/block"

// CRHash is the fixed-key correlation-robust hash the IKNP extension
// (§4.9) uses to turn a row of the expanded matrix into an OT output:
// H(i, x) = AES_K(x xor i), with i encoded as a 128-bit integer. One
// Schedule is set up per session and reused for every row.
type CRHash struct {
	sched *block.Schedule
}

// NewCRHash creates a correlation-robust hash keyed by key. The key
// is a public, session-wide constant agreed by both parties (it need
// not be secret: security follows from AES's correlation-robustness
// in the random-permutation model, not from hiding the key).
func NewCRHash(key block.Block) (*CRHash, error) {
	sched, err := block.NewSchedule(key)
	if err != nil {
		return nil, err
	}
	return &CRHash{sched: sched}, nil
}

// H computes AES_K(x xor tweak(i)).
func (h *CRHash) H(i uint64, x block.Block) block.Block {
	tweak := block.FromUint64(i)
	x.Xor(tweak)
	return h.sched.EncryptBlock(x)
}
