//
// Copyright (c) 2026 TikTok Pte. Ltd.
//
// All rights reserved.
//

package aby

import (
	"crypto/rand"
	"io"
	"testing"

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

// newPartyPair bootstraps a connected pair of ABY parties (Beaver
// pools and multiplexer OT pools included) over an in-process pipe.
func newPartyPair(t *testing.T) (*Party, *Party, func()) {
	t.Helper()
	left, right := bio.Pipe()
	seed := randomSeedT(t)

	type setup struct {
		p   *Party
		err error
	}
	done := make(chan setup, 2)
	go func() {
		bg, err := beaver.NewGenerator(left, true, rand.Reader)
		if err != nil {
			done <- setup{nil, err}
			return
		}
		p, err := NewParty(Party0, left, seed, bg, rand.Reader)
		done <- setup{p, err}
	}()
	go func() {
		bg, err := beaver.NewGenerator(right, false, rand.Reader)
		if err != nil {
			done <- setup{nil, err}
			return
		}
		p, err := NewParty(Party1, right, seed, bg, rand.Reader)
		done <- setup{p, err}
	}()

	var p0, p1 *Party
	for i := 0; i < 2; i++ {
		r := <-done
		if r.err != nil {
			t.Fatal(r.err)
		}
		if r.p.ID == Party0 {
			p0 = r.p
		} else {
			p1 = r.p
		}
	}
	return p0, p1, func() { left.Close(); right.Close() }
}

// runPair runs fn on p0 and fn on p1 concurrently and returns both results.
func runPair[T any](p0, p1 *Party, fn func(p *Party) (T, error)) (T, T, error) {
	type res struct {
		v   T
		err error
	}
	ch := make(chan res, 1)
	go func() {
		v, err := fn(p0)
		ch <- res{v, err}
	}()
	v1, err1 := fn(p1)
	r0 := <-ch
	if r0.err != nil {
		return r0.v, v1, r0.err
	}
	if err1 != nil {
		return r0.v, v1, err1
	}
	return r0.v, v1, nil
}

func TestElementwiseBoolAndCorrectness(t *testing.T) {
	p0, p1, cleanup := newPartyPair(t)
	defer cleanup()

	x0 := BoolVec{0b101, 0b110, 1}
	x1 := BoolVec{0b011, 0b101, 1}
	y0 := BoolVec{0b110, 0b011, 0}
	y1 := BoolVec{0b101, 0b110, 1}

	z0, z1, err := runPair(p0, p1, func(p *Party) (BoolVec, error) {
		if p.ID == Party0 {
			return p.ElementwiseBoolAnd(x0, y0)
		}
		return p.ElementwiseBoolAnd(x1, y1)
	})
	if err != nil {
		t.Fatal(err)
	}
	for i := range z0 {
		x := x0[i] ^ x1[i]
		y := y0[i] ^ y1[i]
		got := z0[i] ^ z1[i]
		if got != x&y {
			t.Fatalf("lane %d: got %x want %x", i, got, x&y)
		}
	}
}

func TestKoggeStonePPA(t *testing.T) {
	p0, p1, cleanup := newPartyPair(t)
	defer cleanup()

	// Boolean-share each operand with a zero share on the other side
	// (lane 0: x=5, y=10; lane 1: x=2^63, y=2^62), then verify the PPA
	// output reconstructs to the arithmetic sum x+y in every lane.
	x0 := BoolVec{5, 1 << 63}
	x1 := BoolVec{0, 0}
	y0 := BoolVec{0, 0}
	y1 := BoolVec{10, 1 << 62}

	s0, s1, err := runPair(p0, p1, func(p *Party) (BoolVec, error) {
		if p.ID == Party0 {
			return p.KoggeStonePPA(x0, y0)
		}
		return p.KoggeStonePPA(x1, y1)
	})
	if err != nil {
		t.Fatal(err)
	}
	got0 := s0[0] ^ s1[0]
	if got0 != 15 {
		t.Fatalf("ppa sum lane 0: got %d want 15", got0)
	}
	got1 := s0[1] ^ s1[1]
	want1 := uint64(1<<63) + uint64(1<<62)
	if got1 != want1 {
		t.Fatalf("ppa sum lane 1: got %x want %x", got1, want1)
	}
}

func TestA2BSignBitMatchesArithmeticSign(t *testing.T) {
	p0, p1, cleanup := newPartyPair(t)
	defer cleanup()

	// value -1 mod 2^64 has its top bit set; value 1 does not.
	var zero uint64
	negOne := zero - 1
	total := []uint64{1, negOne}
	a0 := ArithVec{11111, 22222}
	a1 := make(ArithVec, 2)
	for i := range total {
		a1[i] = total[i] - a0[i]
	}

	b0, b1, err := runPair(p0, p1, func(p *Party) (BoolVec, error) {
		if p.ID == Party0 {
			return p.A2B(a0)
		}
		return p.A2B(a1)
	})
	if err != nil {
		t.Fatal(err)
	}
	sign0 := SignBit(b0)
	sign1 := SignBit(b1)
	got0 := sign0[0] ^ sign1[0]
	got1 := sign0[1] ^ sign1[1]
	if got0 != 0 {
		t.Fatalf("value 1 should have sign bit 0, got %d", got0)
	}
	if got1 != 1 {
		t.Fatalf("value -1 should have sign bit 1, got %d", got1)
	}
}

func TestGreaterLess(t *testing.T) {
	p0, p1, cleanup := newPartyPair(t)
	defer cleanup()

	// x = {10, 3}, y = {3, 10} plaintext; each shared arithmetically
	// with an arbitrary split.
	x := []uint64{10, 3}
	y := []uint64{3, 10}
	x0 := ArithVec{4, 100}
	x1 := ArithVec{x[0] - x0[0], x[1] - x0[1]}
	y0 := ArithVec{9000, 1}
	y1 := ArithVec{y[0] - y0[0], y[1] - y0[1]}

	g0, g1, err := runPair(p0, p1, func(p *Party) (BoolVec, error) {
		if p.ID == Party0 {
			return p.Greater(x0, y0)
		}
		return p.Greater(x1, y1)
	})
	if err != nil {
		t.Fatal(err)
	}
	if (g0[0] ^ g1[0]) != 1 {
		t.Fatal("expected x[0]=10 > y[0]=3")
	}
	if (g0[1] ^ g1[1]) != 0 {
		t.Fatal("expected x[1]=3 > y[1]=10 to be false")
	}

	l0, l1, err := runPair(p0, p1, func(p *Party) (BoolVec, error) {
		if p.ID == Party0 {
			return p.Less(x0, y0)
		}
		return p.Less(x1, y1)
	})
	if err != nil {
		t.Fatal(err)
	}
	if (l0[0] ^ l1[0]) != 0 {
		t.Fatal("expected x[0]=10 < y[0]=3 to be false")
	}
	if (l0[1] ^ l1[1]) != 1 {
		t.Fatal("expected x[1]=3 < y[1]=10")
	}
}

func TestMultiplexer(t *testing.T) {
	p0, p1, cleanup := newPartyPair(t)
	defer cleanup()

	// bit = {1, 0} plaintext, boolean-shared as (b0,0)/(0,b1) pairs so
	// bit's XOR equals the intended plaintext exactly.
	bit0 := BoolVec{1, 0}
	bit1 := BoolVec{0, 0}

	val := []uint64{777, 555}
	v0 := ArithVec{42, 42}
	v1 := ArithVec{val[0] - v0[0], val[1] - v0[1]}

	o0, o1, err := runPair(p0, p1, func(p *Party) (ArithVec, error) {
		if p.ID == Party0 {
			return p.Multiplexer(bit0, v0)
		}
		return p.Multiplexer(bit1, v1)
	})
	if err != nil {
		t.Fatal(err)
	}
	got0 := o0[0] + o1[0]
	got1 := o0[1] + o1[1]
	if got0 != val[0] {
		t.Fatalf("bit=1: got %d want %d", got0, val[0])
	}
	if got1 != 0 {
		t.Fatalf("bit=0: got %d want 0", got1)
	}
}

func TestShareRevealRoundtrip(t *testing.T) {
	p0, p1, cleanup := newPartyPair(t)
	defer cleanup()

	const plain = 3.5
	s0 := p0.Share(Party0, plain)
	s1 := p1.Share(Party0, plain)

	v0, v1, err := runPair(p0, p1, func(p *Party) (float64, error) {
		if p.ID == Party0 {
			return p.Reveal(s0)
		}
		return p.Reveal(s1)
	})
	if err != nil {
		t.Fatal(err)
	}
	if v0 != plain || v1 != plain {
		t.Fatalf("got %v/%v want %v", v0, v1, plain)
	}
}
