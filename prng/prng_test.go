//
// Copyright (c) 2026 TikTok Pte. Ltd.
//
// All rights reserved.
//

package prng

import (
	"bytes"
	"testing"

	"github.com/tiktok-privacy-innovation/PrivacyGo/block"
)

// TestDeterminism checks C2's core law: two PRNGs seeded with the
// same seed emit the same n-byte prefix.
func TestDeterminism(t *testing.T) {
	seed := block.Block{D0: 42, D1: 1337}

	a, err := New(seed, 4)
	if err != nil {
		t.Fatal(err)
	}
	b, err := New(seed, 64)
	if err != nil {
		t.Fatal(err)
	}

	for _, n := range []int{1, 7, 16, 17, 1000} {
		if !bytes.Equal(a.Bytes(n), b.Bytes(n)) {
			t.Fatalf("prefixes diverge at n=%d", n)
		}
	}
}

func TestMoveLeavesSourceExhausted(t *testing.T) {
	seed := block.Block{D0: 1}
	src, err := New(seed, 2)
	if err != nil {
		t.Fatal(err)
	}
	src.Bytes(5)

	var dst PRNG
	dst.MoveFrom(src)

	if !src.Exhausted() {
		t.Fatal("source PRNG should be exhausted after move")
	}
}

func TestBoolDrawsLowBit(t *testing.T) {
	seed := block.Block{D0: 7, D1: 9}
	p, err := New(seed, 1)
	if err != nil {
		t.Fatal(err)
	}
	q, err := New(seed, 1)
	if err != nil {
		t.Fatal(err)
	}

	b := p.Bytes(1)[0]
	want := b&1 == 1
	got := q.Bool()
	if got != want {
		t.Fatalf("Bool() = %v, want %v", got, want)
	}
}
