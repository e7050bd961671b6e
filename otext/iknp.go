//
// Copyright (c) 2026 TikTok Pte. Ltd.
//
// All rights reserved.
//

// Package otext implements the IKNP OT extension (C9): 128 base OTs
// are stretched into an arbitrary number of cheap 1-of-2 OTs using a
// fixed-key AES correlation-robust hash. Only the semi-honest
// variant is implemented; the malicious-secure consistency check
// (a GF(2^128) inner-product proof) is out of scope.
package otext

import (
	"crypto/rand"
	"io"

	"github.com/tiktok-privacy-innovation/PrivacyGo/block"
	"github.com/tiktok-privacy-innovation/PrivacyGo/dpcaerr"
	"github.com/tiktok-privacy-innovation/PrivacyGo/ot"
	"github.com/tiktok-privacy-innovation/PrivacyGo/prng"
)

// K is the IKNP security parameter: the number of base OTs consumed
// to bootstrap the extension.
const K = 128

// IKNPSender is the sender side of the OT extension: it plays the
// receiver role in the K base OTs, using a fixed choice vector Delta.
type IKNPSender struct {
	hash  *CRHash
	delta block.Block
	seed  [K]*prng.PRNG
}

// IKNPReceiver is the receiver side of the OT extension: it plays the
// sender role in the K base OTs, offering K random seed pairs.
type IKNPReceiver struct {
	hash  *CRHash
	seed0 [K]*prng.PRNG
	seed1 [K]*prng.PRNG
}

func randomBlock(r io.Reader) (block.Block, error) {
	var data block.Data
	if _, err := io.ReadFull(r, data[:]); err != nil {
		return block.Block{}, dpcaerr.Wrap(dpcaerr.Crypto, "otext: seed generation", err)
	}
	var b block.Block
	b.SetData(&data)
	return b, nil
}

// NewIKNPSender bootstraps the sender side by running K base OTs as
// the base-OT receiver with a fresh random choice vector Delta. base
// must already be initialized with InitReceiver(io).
func NewIKNPSender(base ot.OT, hashKey block.Block, rnd io.Reader) (*IKNPSender, error) {
	if rnd == nil {
		rnd = rand.Reader
	}
	hash, err := NewCRHash(hashKey)
	if err != nil {
		return nil, err
	}

	delta, err := randomBlock(rnd)
	if err != nil {
		return nil, err
	}
	flags := make([]bool, K)
	for i := 0; i < K; i++ {
		flags[i] = delta.Bit(i) == 1
	}

	labels := make([]block.Block, K)
	if err := base.Receive(flags, labels); err != nil {
		return nil, err
	}

	s := &IKNPSender{hash: hash, delta: delta}
	for i := 0; i < K; i++ {
		p, err := prng.New(labels[i], 0)
		if err != nil {
			return nil, err
		}
		s.seed[i] = p
	}
	return s, nil
}

// NewIKNPReceiver bootstraps the receiver side by running K base OTs
// as the base-OT sender with K fresh random seed pairs. base must
// already be initialized with InitSender(io).
func NewIKNPReceiver(base ot.OT, hashKey block.Block, rnd io.Reader) (*IKNPReceiver, error) {
	if rnd == nil {
		rnd = rand.Reader
	}
	hash, err := NewCRHash(hashKey)
	if err != nil {
		return nil, err
	}

	wires := make([]ot.Wire, K)
	seeds0 := make([]block.Block, K)
	seeds1 := make([]block.Block, K)
	for i := 0; i < K; i++ {
		l0, err := randomBlock(rnd)
		if err != nil {
			return nil, err
		}
		l1, err := randomBlock(rnd)
		if err != nil {
			return nil, err
		}
		seeds0[i], seeds1[i] = l0, l1
		wires[i] = ot.Wire{L0: l0, L1: l1}
	}
	if err := base.Send(wires); err != nil {
		return nil, err
	}

	r := &IKNPReceiver{hash: hash}
	for i := 0; i < K; i++ {
		p0, err := prng.New(seeds0[i], 0)
		if err != nil {
			return nil, err
		}
		p1, err := prng.New(seeds1[i], 0)
		if err != nil {
			return nil, err
		}
		r.seed0[i], r.seed1[i] = p0, p1
	}
	return r, nil
}

func columnBit(row []byte, j int) byte {
	return (row[j/8] >> uint(j%8)) & 1
}

func toggleColumnBit(row []byte, j int) {
	row[j/8] ^= 1 << uint(j%8)
}

// Expand runs the sender side of n extended random OTs: for each
// index j it returns a wire pair (H(j, Q_j), H(j, Q_j xor Delta)),
// exactly one half of which the peer's Expand will also compute.
func (s *IKNPSender) Expand(conn ot.IO, n int) ([]ot.Wire, error) {
	if n <= 0 {
		return nil, dpcaerr.Paramf("otext: expand size %d must be positive", n)
	}
	rowBytes := (n + 7) / 8

	q := make([][]byte, K)
	for i := 0; i < K; i++ {
		u, err := conn.ReceiveData()
		if err != nil {
			return nil, err
		}
		if len(u) != rowBytes {
			return nil, dpcaerr.New(dpcaerr.Deserialization, "otext: malformed U row")
		}
		row := s.seed[i].Bytes(rowBytes)
		if s.delta.Bit(i) == 1 {
			for b := 0; b < rowBytes; b++ {
				row[b] ^= u[b]
			}
		}
		q[i] = row
	}

	wires := make([]ot.Wire, n)
	for j := 0; j < n; j++ {
		var qCol block.Block
		for i := 0; i < K; i++ {
			qCol.SetBit(i, uint(columnBit(q[i], j)))
		}
		out0 := s.hash.H(uint64(j), qCol)
		qColD := qCol
		qColD.Xor(s.delta)
		out1 := s.hash.H(uint64(j), qColD)
		wires[j] = ot.Wire{L0: out0, L1: out1}
	}
	return wires, nil
}

// Expand runs the receiver side of len(choices) extended random OTs,
// returning the peer's H(j, T0_j) or its Delta-shifted counterpart
// selected by choices[j].
func (r *IKNPReceiver) Expand(conn ot.IO, choices []bool) ([]block.Block, error) {
	n := len(choices)
	if n <= 0 {
		return nil, dpcaerr.New(dpcaerr.Parameter, "otext: expand choices must be non-empty")
	}
	rowBytes := (n + 7) / 8

	t0 := make([][]byte, K)
	for i := 0; i < K; i++ {
		row0 := r.seed0[i].Bytes(rowBytes)
		row1 := r.seed1[i].Bytes(rowBytes)
		u := make([]byte, rowBytes)
		for b := 0; b < rowBytes; b++ {
			u[b] = row0[b] ^ row1[b]
		}
		for j := 0; j < n; j++ {
			if choices[j] {
				toggleColumnBit(u, j)
			}
		}
		if err := conn.SendData(u); err != nil {
			return nil, err
		}
		t0[i] = row0
	}
	if err := conn.Flush(); err != nil {
		return nil, err
	}

	out := make([]block.Block, n)
	for j := 0; j < n; j++ {
		var tCol block.Block
		for i := 0; i < K; i++ {
			tCol.SetBit(i, uint(columnBit(t0[i], j)))
		}
		out[j] = r.hash.H(uint64(j), tCol)
	}
	return out, nil
}
