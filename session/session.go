//
// Copyright (c) 2026 TikTok Pte. Ltd.
//
// All rights reserved.
//

// Package session implements the C13 end-to-end coordinator: it wires
// a validated configuration through Paillier/EC key setup inside
// psi.Session, the PSI intersection and feature resharing (C7), and
// the ABY windowed-attribution reduction (C11/C12), then reveals the
// result to both parties.
package session

import (
	"crypto/rand"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/tiktok-privacy-innovation/PrivacyGo/aby"
	"github.com/tiktok-privacy-innovation/PrivacyGo/attribution"
	"github.com/tiktok-privacy-innovation/PrivacyGo/beaver"
	"github.com/tiktok-privacy-innovation/PrivacyGo/bio"
	"github.com/tiktok-privacy-innovation/PrivacyGo/block"
	"github.com/tiktok-privacy-innovation/PrivacyGo/dpcaerr"
	"github.com/tiktok-privacy-innovation/PrivacyGo/psi"
)

// Config is the global session configuration (folding env.Config's
// "nil source falls back to crypto/rand.Reader" pattern into the
// session-wide entropy/logging fields C13 needs). The zero value is
// usable: crypto/rand and a no-op logger.
type Config struct {
	Rand   io.Reader
	Logger *zap.Logger
}

func (c Config) rand() io.Reader {
	if c.Rand != nil {
		return c.Rand
	}
	return rand.Reader
}

func (c Config) logger() *zap.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return zap.NewNop()
}

// Result is the end-to-end outcome of one run: the revealed
// attribution sum plus a byte-traffic accounting drawn from the
// underlying bio.Conn's Stats, surfaced for operational visibility
// (the dropped C3 throughput-logging concern the original engine's
// transport layer tracked internally).
type Result struct {
	Attribution float64
	BytesSent   uint64
	BytesRecvd  uint64
}

// Run drives one full session over conn: the PSI phases (§4.7), then
// an ABY common-seed handshake and the windowed attribution reduction
// (§4.12) over the PSI-produced shares. tau is the attribution
// window, in the same units as the table's t0/t1 columns. A panic
// raised inside a primitive is recovered and returned as a dpcaerr
// Crypto error.
func Run(conn *bio.Conn, isSender bool, params psi.Params, table *psi.Table, tau float64, cfg Config) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = Result{}, dpcaerr.New(dpcaerr.Crypto, fmt.Sprintf("session: primitive panic: %v", r))
		}
	}()
	rnd := cfg.rand()
	log := cfg.logger()

	role := psi.RoleReceiver
	partyID := aby.Party1
	if isSender {
		role = psi.RoleSender
		partyID = aby.Party0
	}

	psiSess, err := psi.NewSession(conn, role, params, rnd, log)
	if err != nil {
		return Result{}, err
	}
	shares, err := psiSess.Process(table)
	if err != nil {
		return Result{}, err
	}
	log.Info("session: psi phase complete", zap.Int("matched_rows", len(shares.T0)))

	seed, err := agreeSeed(conn, isSender, rnd)
	if err != nil {
		return Result{}, err
	}

	bg, err := beaver.NewGenerator(conn, isSender, rnd)
	if err != nil {
		return Result{}, err
	}
	party, err := aby.NewParty(partyID, conn, seed, bg, rnd)
	if err != nil {
		return Result{}, err
	}

	attrTable := attribution.Table{
		T0:    toArithVec(shares.T0),
		T1:    toArithVec(shares.T1),
		Value: toArithVec(shares.Value),
	}
	sum, err := attribution.Reduce(party, attrTable, tau)
	if err != nil {
		return Result{}, err
	}
	log.Info("session: attribution complete", zap.Float64("sum", sum))

	return Result{
		Attribution: sum,
		BytesSent:   conn.Stats.Sent.Load(),
		BytesRecvd:  conn.Stats.Recvd.Load(),
	}, nil
}

// toArithVec lifts integer PSI shares into aby's fixed-point encoding
// (v * aby.Scale mod 2^64), so table values and tau share one unit.
func toArithVec(s []uint64) aby.ArithVec {
	out := make(aby.ArithVec, len(s))
	for i, v := range s {
		out[i] = v * aby.Scale
	}
	return out
}

// agreeSeed exchanges the common PRF seed the aby layer uses for its
// shared randomness (§4.11): the sender generates and transmits it,
// mirroring dpsample's own sender-originated common seed (§4.7
// phase 3).
func agreeSeed(conn *bio.Conn, isSender bool, rnd io.Reader) (block.Block, error) {
	if !isSender {
		return conn.ReceiveBlock()
	}
	var buf [16]byte
	if _, err := io.ReadFull(rnd, buf[:]); err != nil {
		return block.Block{}, err
	}
	var seed block.Block
	seed.SetBytes(buf[:])
	if err := conn.SendBlock(seed); err != nil {
		return block.Block{}, err
	}
	if err := conn.Flush(); err != nil {
		return block.Block{}, err
	}
	return seed, nil
}
