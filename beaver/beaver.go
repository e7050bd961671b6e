//
// Copyright (c) 2026 TikTok Pte. Ltd.
//
// All rights reserved.
//

// Package beaver generates random boolean AND triples (C10): shared
// (a, b, c) with c = a·b over GF(2), 64 independent bit-triples
// packed per int64 lane. Each triple consumes 128 OTs, split into two
// 64-wide passes over two independently-bootstrapped IKNP pools — one
// per direction, per spec §5's "two directional OT pools".
package beaver

import (
	"crypto/rand"
	"encoding/binary"
	"io"

	"github.com/tiktok-privacy-innovation/PrivacyGo/block"
	"github.com/tiktok-privacy-innovation/PrivacyGo/dpcaerr"
	"github.com/tiktok-privacy-innovation/PrivacyGo/ot"
	"github.com/tiktok-privacy-innovation/PrivacyGo/otext"
)

// hashKey is the fixed, public correlation-robust-hash key shared by
// both directional OT pools. It need not be secret (see CRHash).
var hashKey = block.Block{D0: 0x4265617665722d31, D1: 0x4b4e502d706f6f6c}

// Triple is one party's share of a random boolean AND triple: A, B
// are this party's own random bit-lanes; C is this party's share of
// their pairwise AND, each int64 holding 64 independent bit-triples.
type Triple struct {
	A uint64
	B uint64
	C uint64
}

// otRole holds this party's role (sender or receiver) in one
// directional OT pool. Exactly one field is non-nil.
type otRole struct {
	sender   *otext.IKNPSender
	receiver *otext.IKNPReceiver
}

// Generator produces Beaver triples over an established connection.
// Callers construct one Generator per party per session (initiator on
// one side, responder on the other) and may call Generate repeatedly.
type Generator struct {
	conn  ot.IO
	rnd   io.Reader
	pool1 otRole
	pool2 otRole
}

// NewGenerator bootstraps the two directional OT pools over conn.
// initiator must be true on exactly one side of the connection; the
// two calls (initiator, !initiator) must run concurrently, mirroring
// each other's base-OT and IKNP setup exchanges.
func NewGenerator(conn ot.IO, initiator bool, rnd io.Reader) (*Generator, error) {
	if rnd == nil {
		rnd = rand.Reader
	}
	g := &Generator{conn: conn, rnd: rnd}

	if initiator {
		baseRecv := ot.NewNPReceiver()
		if err := baseRecv.InitReceiver(conn); err != nil {
			return nil, err
		}
		sender, err := otext.NewIKNPSender(baseRecv, hashKey, rnd)
		if err != nil {
			return nil, err
		}
		g.pool1.sender = sender

		baseSend := ot.NewNPSender()
		if err := baseSend.InitSender(conn); err != nil {
			return nil, err
		}
		receiver, err := otext.NewIKNPReceiver(baseSend, hashKey, rnd)
		if err != nil {
			return nil, err
		}
		g.pool2.receiver = receiver
	} else {
		baseSend := ot.NewNPSender()
		if err := baseSend.InitSender(conn); err != nil {
			return nil, err
		}
		receiver, err := otext.NewIKNPReceiver(baseSend, hashKey, rnd)
		if err != nil {
			return nil, err
		}
		g.pool1.receiver = receiver

		baseRecv := ot.NewNPReceiver()
		if err := baseRecv.InitReceiver(conn); err != nil {
			return nil, err
		}
		sender, err := otext.NewIKNPSender(baseRecv, hashKey, rnd)
		if err != nil {
			return nil, err
		}
		g.pool2.sender = sender
	}
	return g, nil
}

func randomLanes(n int, rnd io.Reader) ([]uint64, error) {
	buf := make([]byte, n*8)
	if _, err := io.ReadFull(rnd, buf); err != nil {
		return nil, dpcaerr.Wrap(dpcaerr.Crypto, "beaver: lane generation", err)
	}
	lanes := make([]uint64, n)
	for i := range lanes {
		lanes[i] = binary.BigEndian.Uint64(buf[i*8:])
	}
	return lanes, nil
}

func laneBit(lanes []uint64, j int) uint {
	return uint((lanes[j/64] >> uint(j%64)) & 1)
}

func packedBit(buf []byte, j int) uint {
	return uint((buf[j/8] >> uint(j%8)) & 1)
}

func setPackedBit(buf []byte, j int, v uint) {
	if v != 0 {
		buf[j/8] |= 1 << uint(j%8)
	}
}

// sendPass plays the OT-sender role in one pass, embedding x's bits
// as the correlation between the two messages of each OT. It returns
// this party's n-bit share of x·(peer's choice), packed.
func (g *Generator) sendPass(sender *otext.IKNPSender, n int, x []uint64) ([]byte, error) {
	wires, err := sender.Expand(g.conn, n)
	if err != nil {
		return nil, err
	}
	share := make([]byte, (n+7)/8)
	corr := make([]byte, (n+7)/8)
	for j := 0; j < n; j++ {
		r := wires[j].L0.Bit(0)
		r1 := wires[j].L1.Bit(0)
		xj := laneBit(x, j)
		setPackedBit(share, j, r)
		setPackedBit(corr, j, r^r1^xj)
	}
	if err := g.conn.SendData(corr); err != nil {
		return nil, err
	}
	if err := g.conn.Flush(); err != nil {
		return nil, err
	}
	return share, nil
}

// recvPass plays the OT-receiver role in one pass, choosing with
// choice's bits, and returns this party's n-bit share of (peer's
// embedded value)·choice, packed.
func (g *Generator) recvPass(receiver *otext.IKNPReceiver, n int, choice []uint64) ([]byte, error) {
	flags := make([]bool, n)
	for j := 0; j < n; j++ {
		flags[j] = laneBit(choice, j) == 1
	}
	outputs, err := receiver.Expand(g.conn, flags)
	if err != nil {
		return nil, err
	}
	corr, err := g.conn.ReceiveData()
	if err != nil {
		return nil, err
	}
	if len(corr) != (n+7)/8 {
		return nil, dpcaerr.New(dpcaerr.Deserialization, "beaver: malformed correction buffer")
	}
	share := make([]byte, (n+7)/8)
	for j := 0; j < n; j++ {
		v := outputs[j].Bit(0)
		if flags[j] {
			v ^= packedBit(corr, j)
		}
		setPackedBit(share, j, v)
	}
	return share, nil
}

// runPool executes one pool's pass. A party is the OT sender in a
// pool exactly when it is contributing its "a" bits as the embedded
// correlation; it is the OT receiver exactly when it is contributing
// its "b" bits as the OT choice bits.
func (g *Generator) runPool(role otRole, n int, a, b []uint64) ([]byte, error) {
	if role.sender != nil {
		return g.sendPass(role.sender, n, a)
	}
	return g.recvPass(role.receiver, n, b)
}

// Generate produces numTriples fresh random Beaver triples.
func (g *Generator) Generate(numTriples int) ([]Triple, error) {
	if numTriples <= 0 {
		return nil, dpcaerr.Paramf("beaver: numTriples %d must be positive", numTriples)
	}
	n := numTriples * 64

	a, err := randomLanes(numTriples, g.rnd)
	if err != nil {
		return nil, err
	}
	b, err := randomLanes(numTriples, g.rnd)
	if err != nil {
		return nil, err
	}

	share1, err := g.runPool(g.pool1, n, a, b)
	if err != nil {
		return nil, err
	}
	share2, err := g.runPool(g.pool2, n, a, b)
	if err != nil {
		return nil, err
	}

	triples := make([]Triple, numTriples)
	for t := 0; t < numTriples; t++ {
		var c uint64
		for bit := 0; bit < 64; bit++ {
			j := t*64 + bit
			local := (a[t] >> uint(bit)) & (b[t] >> uint(bit)) & 1
			cj := local ^ uint64(packedBit(share1, j)) ^ uint64(packedBit(share2, j))
			if cj != 0 {
				c |= 1 << uint(bit)
			}
		}
		triples[t] = Triple{A: a[t], B: b[t], C: c}
	}
	return triples, nil
}
