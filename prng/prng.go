//
// Copyright (c) 2026 TikTok Pte. Ltd.
//
// All rights reserved.
//

// Package prng implements the AES-CTR-based deterministic random bit
// generator (C2) used throughout the engine: every place that needs
// reproducible randomness from a 128-bit seed (dummy-row sampling,
// OT extension, mask generation) draws from a PRNG instance rather
// than from crypto/rand directly.
package prng

import (
	"encoding/binary"

	"github.com/tiktok-privacy-innovation/PrivacyGo/block"
)

// DefaultBufferBlocks is the default keystream buffer size, in
// 16-byte blocks.
const DefaultBufferBlocks = 256

// PRNG is an AES-CTR deterministic bit generator. Its output is,
// byte for byte, a prefix of AES-CTR(seed, 0, 1, 2, ...); two PRNGs
// seeded with the same Block emit the same byte prefix for any
// length drawn in the same pattern.
type PRNG struct {
	sched   *block.Schedule
	counter uint64
	buf     []byte
	pos     int
}

// New creates a PRNG seeded from seed, buffering bufBlocks blocks of
// keystream at a time (bufBlocks <= 0 selects DefaultBufferBlocks).
func New(seed block.Block, bufBlocks int) (*PRNG, error) {
	if bufBlocks <= 0 {
		bufBlocks = DefaultBufferBlocks
	}
	sched, err := block.NewSchedule(seed)
	if err != nil {
		return nil, err
	}
	return &PRNG{
		sched: sched,
		buf:   make([]byte, bufBlocks*16),
		pos:   bufBlocks * 16, // force a refill on first draw
	}, nil
}

// refill tops up the keystream buffer, advancing the counter. It
// never reuses a counter value.
func (p *PRNG) refill() {
	base := block.FromUint64(p.counter)
	p.sched.EncryptCTRBytes(base, p.buf)
	p.counter += uint64(len(p.buf) / 16)
	p.pos = 0
}

// Read fills dst with raw keystream bytes. It implements io.Reader.
func (p *PRNG) Read(dst []byte) (int, error) {
	n := 0
	for n < len(dst) {
		if p.pos >= len(p.buf) {
			p.refill()
		}
		c := copy(dst[n:], p.buf[p.pos:])
		p.pos += c
		n += c
	}
	return n, nil
}

// Bytes returns n fresh pseudorandom bytes.
func (p *PRNG) Bytes(n int) []byte {
	out := make([]byte, n)
	p.Read(out)
	return out
}

// Bool draws a single pseudorandom bit, from the low bit of a fresh
// byte.
func (p *PRNG) Bool() bool {
	var b [1]byte
	p.Read(b[:])
	return b[0]&1 == 1
}

// Uint64 draws a uniform uint64.
func (p *PRNG) Uint64() uint64 {
	var b [8]byte
	p.Read(b[:])
	return binary.BigEndian.Uint64(b[:])
}

// Block draws a uniform 128-bit block.
func (p *PRNG) Block() block.Block {
	var data block.Data
	p.Read(data[:])
	var b block.Block
	b.SetData(&data)
	return b
}

// Exhausted reports whether the PRNG has an empty buffer and a zero
// counter, i.e. it has never been drawn from.
func (p *PRNG) Exhausted() bool {
	return p.counter == 0 && p.pos >= len(p.buf)
}

// MoveFrom transfers src's state into p and leaves src exhausted
// (empty buffer, zero counter), matching C2's move semantics.
func (p *PRNG) MoveFrom(src *PRNG) {
	p.sched = src.sched
	p.counter = src.counter
	p.buf = src.buf
	p.pos = src.pos

	src.sched = nil
	src.counter = 0
	src.buf = make([]byte, len(src.buf))
	src.pos = len(src.buf)
}
