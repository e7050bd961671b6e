//
// Copyright (c) 2026 TikTok Pte. Ltd.
//
// All rights reserved.
//

package attribution

import (
	"crypto/rand"
	"io"
	"math"
	"testing"

	"github.com/tiktok-privacy-innovation/PrivacyGo/aby"
	"github.com/tiktok-privacy-innovation/PrivacyGo/beaver"
	"github.com/tiktok-privacy-innovation/PrivacyGo/bio"
	"github.com/tiktok-privacy-innovation/PrivacyGo/block"
)

func randomSeedT(t *testing.T) block.Block {
	var data block.Data
	if _, err := io.ReadFull(rand.Reader, data[:]); err != nil {
		t.Fatal(err)
	}
	var b block.Block
	b.SetData(&data)
	return b
}

func newPartyPair(t *testing.T) (*aby.Party, *aby.Party, func()) {
	t.Helper()
	left, right := bio.Pipe()
	seed := randomSeedT(t)

	type setup struct {
		p   *aby.Party
		err error
	}
	done := make(chan setup, 2)
	go func() {
		bg, err := beaver.NewGenerator(left, true, rand.Reader)
		if err != nil {
			done <- setup{nil, err}
			return
		}
		p, err := aby.NewParty(aby.Party0, left, seed, bg, rand.Reader)
		done <- setup{p, err}
	}()
	go func() {
		bg, err := beaver.NewGenerator(right, false, rand.Reader)
		if err != nil {
			done <- setup{nil, err}
			return
		}
		p, err := aby.NewParty(aby.Party1, right, seed, bg, rand.Reader)
		done <- setup{p, err}
	}()

	var p0, p1 *aby.Party
	for i := 0; i < 2; i++ {
		r := <-done
		if r.err != nil {
			t.Fatal(r.err)
		}
		if r.p.ID == aby.Party0 {
			p0 = r.p
		} else {
			p1 = r.p
		}
	}
	return p0, p1, func() { left.Close(); right.Close() }
}

func shareColumn(owner aby.PartyID, id aby.PartyID, plain []float64) aby.ArithVec {
	out := make(aby.ArithVec, len(plain))
	for i, v := range plain {
		fixed := uint64(int64(v * aby.Scale))
		if id == owner {
			out[i] = fixed - uint64(i) // arbitrary split term
		} else {
			out[i] = uint64(i)
		}
	}
	return out
}

func TestReduceWindowedAttribution(t *testing.T) {
	p0, p1, cleanup := newPartyPair(t)
	defer cleanup()

	t0 := []float64{0, 0, 0, 0}
	t1 := []float64{3, 6, -1, 4.9}
	value := []float64{10, 20, 30, 40}
	const tau = 5.0
	// deltas: 3 (in window), 6 (outside), -1 (outside, not >0), 4.9 (in window)
	want := value[0] + value[3]

	col0 := func(id aby.PartyID, plain []float64) aby.ArithVec {
		return shareColumn(aby.Party0, id, plain)
	}

	table0 := Table{T0: col0(aby.Party0, t0), T1: col0(aby.Party0, t1), Value: col0(aby.Party0, value)}
	table1 := Table{T0: col0(aby.Party1, t0), T1: col0(aby.Party1, t1), Value: col0(aby.Party1, value)}

	type result struct {
		v   float64
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := Reduce(p0, table0, tau)
		done <- result{v, err}
	}()
	v1, err := Reduce(p1, table1, tau)
	if err != nil {
		t.Fatal(err)
	}
	r0 := <-done
	if r0.err != nil {
		t.Fatal(r0.err)
	}
	if math.Abs(r0.v-want) > 1e-3 || math.Abs(v1-want) > 1e-3 {
		t.Fatalf("got %v/%v want %v", r0.v, v1, want)
	}
}

func TestReduceEmptyTable(t *testing.T) {
	p0, p1, cleanup := newPartyPair(t)
	defer cleanup()

	type result struct {
		v   float64
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := Reduce(p0, Table{}, 5.0)
		done <- result{v, err}
	}()
	v1, err := Reduce(p1, Table{}, 5.0)
	if err != nil {
		t.Fatal(err)
	}
	r0 := <-done
	if r0.err != nil {
		t.Fatal(r0.err)
	}
	if r0.v != 0 || v1 != 0 {
		t.Fatalf("got %v/%v want 0", r0.v, v1)
	}
}
