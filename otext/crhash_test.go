//
// Copyright (c) 2026 TikTok Pte. Ltd.
//
// All rights reserved.
//

package otext

import (
	"testing"

	"github.com/tiktok-privacy-innovation/PrivacyGo/block"
)

func TestCRHashDeterministicAndTweakSensitive(t *testing.T) {
	key := block.Block{D0: 1, D1: 2}
	h, err := NewCRHash(key)
	if err != nil {
		t.Fatal(err)
	}
	x := block.Block{D0: 0xaa, D1: 0xbb}

	a := h.H(3, x)
	b := h.H(3, x)
	if !a.Equal(b) {
		t.Fatal("H is not deterministic")
	}

	c := h.H(4, x)
	if a.Equal(c) {
		t.Fatal("H did not change with tweak")
	}
}
