//
// Copyright (c) 2026 TikTok Pte. Ltd.
//
// All rights reserved.
//

package ot

import (
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"math/big"

	"github.com/tiktok-privacy-innovation/PrivacyGo/block"
	"github.com/tiktok-privacy-innovation/PrivacyGo/dpcaerr"
)

// NPSender is the sender side of the Naor-Pinkas 1-out-of-2 OT (C8)
// over P-256.
type NPSender struct {
	io    IO
	curve elliptic.Curve
}

// NPReceiver is the receiver side of the Naor-Pinkas OT.
type NPReceiver struct {
	io    IO
	curve elliptic.Curve
}

var (
	_ OT = &NPSender{}
	_ OT = &NPReceiver{}
)

// NewNPSender creates an uninitialized Naor-Pinkas OT sender.
func NewNPSender() *NPSender { return &NPSender{curve: elliptic.P256()} }

// NewNPReceiver creates an uninitialized Naor-Pinkas OT receiver.
func NewNPReceiver() *NPReceiver { return &NPReceiver{curve: elliptic.P256()} }

// InitSender implements OT.
func (s *NPSender) InitSender(io IO) error {
	s.io = io
	return nil
}

// InitReceiver is not valid on a sender.
func (s *NPSender) InitReceiver(io IO) error {
	return dpcaerr.New(dpcaerr.Precondition, "np: InitReceiver called on sender")
}

// InitReceiver implements OT.
func (r *NPReceiver) InitReceiver(io IO) error {
	r.io = io
	return nil
}

// InitSender is not valid on a receiver.
func (r *NPReceiver) InitSender(io IO) error {
	return dpcaerr.New(dpcaerr.Precondition, "np: InitSender called on receiver")
}

func randScalar(curve elliptic.Curve) (*big.Int, error) {
	k, err := rand.Int(rand.Reader, curve.Params().N)
	if err != nil {
		return nil, dpcaerr.Wrap(dpcaerr.Crypto, "np: scalar generation", err)
	}
	if k.Sign() == 0 {
		return randScalar(curve)
	}
	return k, nil
}

// negate returns -P on the curve, i.e. (x, p-y mod p).
func negate(curve elliptic.Curve, x, y *big.Int) (*big.Int, *big.Int) {
	p := curve.Params().P
	ny := new(big.Int).Sub(p, y)
	ny.Mod(ny, p)
	return new(big.Int).Set(x), ny
}

// hashPoint implements the spec's symmetry-breaking hash: SHA-256 of
// the 33-byte compressed encoding of (x,y) with the first byte
// overwritten by idx (0 or 1); the first 16 bytes of the digest are
// the OT output.
func hashPoint(curve elliptic.Curve, x, y *big.Int, idx byte) block.Block {
	enc := elliptic.MarshalCompressed(curve, x, y)
	enc[0] = idx
	digest := sha256.Sum256(enc)
	var data block.Data
	copy(data[:], digest[:16])
	var b block.Block
	b.SetData(&data)
	return b
}

func sendPoint(io IO, x, y *big.Int, curve elliptic.Curve) error {
	return io.SendData(elliptic.MarshalCompressed(curve, x, y))
}

func receivePoint(io IO, curve elliptic.Curve) (*big.Int, *big.Int, error) {
	data, err := io.ReceiveData()
	if err != nil {
		return nil, nil, err
	}
	x, y := elliptic.UnmarshalCompressed(curve, data)
	if x == nil {
		return nil, nil, dpcaerr.New(dpcaerr.Deserialization, "np: invalid compressed point")
	}
	return x, y, nil
}

// Send implements OT: for each wire, run one Naor-Pinkas exchange and
// send the two labels masked under the two derived keys.
func (s *NPSender) Send(wires []Wire) error {
	curve := s.curve
	for _, w := range wires {
		rI, err := randScalar(curve)
		if err != nil {
			return err
		}
		cI, err := randScalar(curve)
		if err != nil {
			return err
		}

		cx, cy := curve.ScalarBaseMult(cI.Bytes())
		rx, ry := curve.ScalarBaseMult(rI.Bytes())

		if err := sendPoint(s.io, cx, cy, curve); err != nil {
			return err
		}
		if err := sendPoint(s.io, rx, ry, curve); err != nil {
			return err
		}
		if err := s.io.Flush(); err != nil {
			return err
		}

		pk0x, pk0y, err := receivePoint(s.io, curve)
		if err != nil {
			return err
		}

		// PK1 = C - PK0
		negX, negY := negate(curve, pk0x, pk0y)
		pk1x, pk1y := curve.Add(cx, cy, negX, negY)

		k0x, k0y := curve.ScalarMult(pk0x, pk0y, rI.Bytes())
		k1x, k1y := curve.ScalarMult(pk1x, pk1y, rI.Bytes())

		h0 := hashPoint(curve, k0x, k0y, 0)
		h1 := hashPoint(curve, k1x, k1y, 1)

		c0 := w.L0
		c0.Xor(h0)
		c1 := w.L1
		c1.Xor(h1)

		if err := s.io.SendBlock(c0); err != nil {
			return err
		}
		if err := s.io.SendBlock(c1); err != nil {
			return err
		}
	}
	return s.io.Flush()
}

// Receive implements OT: for each selection bit, run one Naor-Pinkas
// exchange and unmask the selected label.
func (r *NPReceiver) Receive(flags []bool, result []block.Block) error {
	if len(flags) != len(result) {
		return dpcaerr.New(dpcaerr.Parameter, "np: flags/result length mismatch")
	}
	curve := r.curve
	for i, sigma := range flags {
		cx, cy, err := receivePoint(r.io, curve)
		if err != nil {
			return err
		}
		rx, ry, err := receivePoint(r.io, curve)
		if err != nil {
			return err
		}

		kI, err := randScalar(curve)
		if err != nil {
			return err
		}
		gkx, gky := curve.ScalarBaseMult(kI.Bytes())

		var pk0x, pk0y *big.Int
		if sigma {
			negX, negY := negate(curve, gkx, gky)
			pk0x, pk0y = curve.Add(cx, cy, negX, negY)
		} else {
			pk0x, pk0y = gkx, gky
		}

		if err := sendPoint(r.io, pk0x, pk0y, curve); err != nil {
			return err
		}
		if err := r.io.Flush(); err != nil {
			return err
		}

		kSigmaX, kSigmaY := curve.ScalarMult(rx, ry, kI.Bytes())
		var idx byte
		if sigma {
			idx = 1
		}
		hSigma := hashPoint(curve, kSigmaX, kSigmaY, idx)

		c0, err := r.io.ReceiveBlock()
		if err != nil {
			return err
		}
		c1, err := r.io.ReceiveBlock()
		if err != nil {
			return err
		}

		chosen := c0
		if sigma {
			chosen = c1
		}
		chosen.Xor(hSigma)
		result[i] = chosen
	}
	return nil
}

// Send is not valid on a receiver.
func (r *NPReceiver) Send(wires []Wire) error {
	return dpcaerr.New(dpcaerr.Precondition, "np: Send called on receiver")
}

// Receive is not valid on a sender.
func (s *NPSender) Receive(flags []bool, result []block.Block) error {
	return dpcaerr.New(dpcaerr.Precondition, "np: Receive called on sender")
}
