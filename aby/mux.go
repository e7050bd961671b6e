//
// Copyright (c) 2026 TikTok Pte. Ltd.
//
// All rights reserved.
//

package aby

import (
	"io"

	"github.com/tiktok-privacy-innovation/PrivacyGo/block"
	"github.com/tiktok-privacy-innovation/PrivacyGo/dpcaerr"
	"github.com/tiktok-privacy-innovation/PrivacyGo/ot"
	"github.com/tiktok-privacy-innovation/PrivacyGo/otext"
)

// muxHashKey is the fixed correlation-robust-hash key for the
// multiplexer's own pair of directional OT pools, kept distinct from
// beaver's so the two extension streams never collide.
var muxHashKey = block.Block{D0: 0x4d75782d706f6f6c, D1: 0x2d646572616e642d}

// otRole holds this party's role (sender or receiver) in one
// directional OT pool. Exactly one field is non-nil. Mirrors
// beaver.otRole's shape but must be declared locally: that type is
// unexported and beaver.Generator does not expose its pools.
type otRole struct {
	sender   *otext.IKNPSender
	receiver *otext.IKNPReceiver
}

type muxPools struct {
	poolA otRole
	poolB otRole
}

func newMuxPools(conn ot.IO, id PartyID, rnd io.Reader) (muxPools, error) {
	var mp muxPools
	if id == Party0 {
		baseRecv := ot.NewNPReceiver()
		if err := baseRecv.InitReceiver(conn); err != nil {
			return mp, err
		}
		sender, err := otext.NewIKNPSender(baseRecv, muxHashKey, rnd)
		if err != nil {
			return mp, err
		}
		mp.poolA.sender = sender

		baseSend := ot.NewNPSender()
		if err := baseSend.InitSender(conn); err != nil {
			return mp, err
		}
		receiver, err := otext.NewIKNPReceiver(baseSend, muxHashKey, rnd)
		if err != nil {
			return mp, err
		}
		mp.poolB.receiver = receiver
	} else {
		baseSend := ot.NewNPSender()
		if err := baseSend.InitSender(conn); err != nil {
			return mp, err
		}
		receiver, err := otext.NewIKNPReceiver(baseSend, muxHashKey, rnd)
		if err != nil {
			return mp, err
		}
		mp.poolA.receiver = receiver

		baseRecv := ot.NewNPReceiver()
		if err := baseRecv.InitReceiver(conn); err != nil {
			return mp, err
		}
		sender, err := otext.NewIKNPSender(baseRecv, muxHashKey, rnd)
		if err != nil {
			return mp, err
		}
		mp.poolB.sender = sender
	}
	return mp, nil
}

// muxSendPass plays the OT-sender role, embedding val[j] as the
// additive correlation between the OT's two messages: a receiver
// choosing 0 recovers a share summing to zero, a receiver choosing 1
// recovers a share summing to val[j].
func (p *Party) muxSendPass(sender *otext.IKNPSender, n int, val []uint64) ([]uint64, error) {
	wires, err := sender.Expand(p.conn, n)
	if err != nil {
		return nil, err
	}
	share := make([]uint64, n)
	corr := make([]uint64, n)
	for j := 0; j < n; j++ {
		r0 := wires[j].L0.D0
		r1 := wires[j].L1.D0
		share[j] = -r0
		corr[j] = val[j] + r0 - r1
	}
	if err := sendUint64Slice(p.conn, corr); err != nil {
		return nil, err
	}
	if err := p.conn.Flush(); err != nil {
		return nil, err
	}
	return share, nil
}

// muxRecvPass plays the OT-receiver role, choosing with choice[j]'s
// low bit, and returns this party's share of choice[j]*val[j].
func (p *Party) muxRecvPass(receiver *otext.IKNPReceiver, n int, choice []uint64) ([]uint64, error) {
	flags := make([]bool, n)
	for j := 0; j < n; j++ {
		flags[j] = choice[j]&1 == 1
	}
	outputs, err := receiver.Expand(p.conn, flags)
	if err != nil {
		return nil, err
	}
	corr, err := recvUint64Slice(p.conn)
	if err != nil {
		return nil, err
	}
	if len(corr) != n {
		return nil, dpcaerr.New(dpcaerr.Deserialization, "aby: malformed mux correction buffer")
	}
	share := make([]uint64, n)
	for j := 0; j < n; j++ {
		t := outputs[j].D0
		if flags[j] {
			t += corr[j]
		}
		share[j] = t
	}
	return share, nil
}

func (p *Party) runMuxPool(role otRole, n int, adjustedVal, choice []uint64) ([]uint64, error) {
	if role.sender != nil {
		return p.muxSendPass(role.sender, n, adjustedVal)
	}
	return p.muxRecvPass(role.receiver, n, choice)
}

// Multiplexer computes an arithmetic share of bit*val (bit taken as
// its lane-0 value, 0 or 1) using two OTs per lane, one per
// direction: each party locally adjusts its own val share by
// (1-2*bit_self) and offers it as the OT sender's payload in one of
// the two pools, while selecting with its own bit as the OT receiver
// in the other. Summing the two OT-derived shares with each party's
// local bit_self*val_self term yields (b0 XOR b1)*(v0+v1).
func (p *Party) Multiplexer(bit BoolVec, val ArithVec) (ArithVec, error) {
	if len(bit) != len(val) {
		return nil, dpcaerr.New(dpcaerr.Parameter, "aby: multiplexer operand length mismatch")
	}
	n := len(bit)
	bLocal := make([]uint64, n)
	adjusted := make([]uint64, n)
	for i := 0; i < n; i++ {
		bLocal[i] = bit[i] & 1
		if bLocal[i] == 1 {
			adjusted[i] = -val[i]
		} else {
			adjusted[i] = val[i]
		}
	}

	shareA, err := p.runMuxPool(p.mux.poolA, n, adjusted, bLocal)
	if err != nil {
		return nil, err
	}
	shareB, err := p.runMuxPool(p.mux.poolB, n, adjusted, bLocal)
	if err != nil {
		return nil, err
	}

	out := make(ArithVec, n)
	for i := 0; i < n; i++ {
		out[i] = bLocal[i]*val[i] + shareA[i] + shareB[i]
	}
	return out, nil
}
