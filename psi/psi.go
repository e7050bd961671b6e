//
// Copyright (c) 2026 TikTok Pte. Ltd.
//
// All rights reserved.
//

// Package psi implements the C7 DPCA-PSI orchestrator: a two-party,
// optionally differentially-private set intersection over
// multi-column keys that yields, for the intersecting rows, row-wise
// 64-bit additive shares of a three-column feature table (t0, t1,
// value) suitable for the C12 attribution reducer.
package psi

import (
	"crypto/rand"
	"io"

	"github.com/tiktok-privacy-innovation/PrivacyGo/dpcaerr"
	"github.com/tiktok-privacy-innovation/PrivacyGo/dpsample"
	"github.com/tiktok-privacy-innovation/PrivacyGo/ecc"
	"github.com/tiktok-privacy-innovation/PrivacyGo/paillier"

	"go.uber.org/zap"

	"github.com/tiktok-privacy-innovation/PrivacyGo/bio"
)

// Role names which side of the protocol this party plays. It governs
// the direction of a handful of ordering-sensitive steps (dp seed
// origin) but is otherwise symmetric.
type Role = dpsample.Role

// Role values.
const (
	RoleSender   = dpsample.RoleSender
	RoleReceiver = dpsample.RoleReceiver
)

// curveP256 is the only curve_id this implementation accepts (§6).
const curveP256 = 415

// compressedPointLen is the wire length of one compressed P-256
// point, as produced by ecc.Compress/HashEncrypt/Encrypt.
const compressedPointLen = 33

// truncatedLen is the number of low-order bytes of a compressed point
// kept for column-matching comparisons (§4.7 step 5).
const truncatedLen = 12

// featureColumns is the fixed shape of a feature table: t0, t1,
// value. A party that does not own one of the three contributes a
// zero-filled column; the additive resharing in phase 9 leaves an
// all-zero contribution without effect on the summed share.
const featureColumns = 3

// Params holds one party's negotiated protocol parameters, exchanged
// and cross-checked against the peer's during the handshake (§4.7
// phase 1, §6).
type Params struct {
	CurveID                 int
	IDsNum                  int
	InputDP                 bool
	ApplyPacking            bool
	StatisticalSecurityBits int
	PaillierBits            paillier.KeyBits
	EnableDJN               bool
	UsePrecomputedTau       bool
	PrecomputedTau          int
	Epsilon                 float64
	MaximumQueries          int
	HasZeroColumn           bool
	ZeroColumnIndex         int
}

// DefaultParams returns the §6 default configuration.
func DefaultParams() Params {
	return Params{
		CurveID:                 curveP256,
		IDsNum:                  3,
		InputDP:                 true,
		ApplyPacking:            true,
		StatisticalSecurityBits: 40,
		PaillierBits:            paillier.Bits2048,
		EnableDJN:               true,
		UsePrecomputedTau:       true,
		PrecomputedTau:          1440,
		Epsilon:                 2.0,
		MaximumQueries:          10,
		HasZeroColumn:           false,
		ZeroColumnIndex:         -1,
	}
}

// Validate checks every field against its documented range (§6).
// paillier.KeyBits.valid is unexported, so the three accepted widths
// are checked explicitly here rather than delegated.
func (p Params) Validate() error {
	if p.CurveID != curveP256 {
		return dpcaerr.Paramf("psi: unsupported curve_id %d", p.CurveID)
	}
	if p.IDsNum < 1 || p.IDsNum > 100 {
		return dpcaerr.Paramf("psi: ids_num %d out of range [1,100]", p.IDsNum)
	}
	switch p.PaillierBits {
	case paillier.Bits1024, paillier.Bits2048, paillier.Bits3072:
	default:
		return dpcaerr.Paramf("psi: unsupported paillier_n_len %d", p.PaillierBits)
	}
	if p.ApplyPacking && (p.StatisticalSecurityBits < 40 || p.StatisticalSecurityBits > 80) {
		return dpcaerr.Paramf("psi: statistical_security_bits %d out of range [40,80]", p.StatisticalSecurityBits)
	}
	if p.InputDP {
		if p.UsePrecomputedTau {
			if p.PrecomputedTau < 0 || p.PrecomputedTau > 1<<20 {
				return dpcaerr.Paramf("psi: precomputed_tau %d out of range [0,2^20]", p.PrecomputedTau)
			}
		} else {
			if p.Epsilon <= 0 {
				return dpcaerr.Paramf("psi: epsilon %v must be positive", p.Epsilon)
			}
			if p.MaximumQueries < 1 {
				return dpcaerr.Paramf("psi: maximum_queries %d must be positive", p.MaximumQueries)
			}
		}
	}
	if p.HasZeroColumn && (p.ZeroColumnIndex < 0 || p.ZeroColumnIndex >= p.IDsNum) {
		return dpcaerr.Paramf("psi: zero_column_index %d out of range [0,%d)", p.ZeroColumnIndex, p.IDsNum)
	}
	return nil
}

// Table is one party's input: IDsNum key columns of equal length,
// plus exactly featureColumns feature columns (t0, t1, value) of the
// same length as the keys. A column this party does not own is
// zero-filled.
type Table struct {
	Keys     [][]string
	Features [][]uint64
}

func (t Table) rows() int {
	if len(t.Keys) == 0 {
		return 0
	}
	return len(t.Keys[0])
}

func (t Table) validate(idsNum int) error {
	if len(t.Keys) != idsNum {
		return dpcaerr.Paramf("psi: table has %d key columns, want %d", len(t.Keys), idsNum)
	}
	if len(t.Features) != featureColumns {
		return dpcaerr.Paramf("psi: table has %d feature columns, want %d", len(t.Features), featureColumns)
	}
	n := t.rows()
	for i, col := range t.Keys {
		if len(col) != n {
			return dpcaerr.Paramf("psi: key column %d has %d rows, want %d", i, len(col), n)
		}
	}
	for i, col := range t.Features {
		if len(col) != n {
			return dpcaerr.Paramf("psi: feature column %d has %d rows, want %d", i, len(col), n)
		}
	}
	return nil
}

// Shares is this party's row-wise additive share of the intersection
// feature table: Shares.T0[m]+peer.Shares.T0[m] (mod 2^64) recovers
// the t0 value of the m-th matched row, and likewise for T1 and
// Value. Row m refers to the same underlying pair on both sides (see
// match.go) without either party learning which original row it was.
type Shares struct {
	T0    []uint64
	T1    []uint64
	Value []uint64
}

// Session drives one run of the protocol over an established
// connection.
type Session struct {
	conn    *bio.Conn
	role    Role
	params  Params
	rnd     io.Reader
	log     *zap.Logger
	eccKey  *ecc.PrivateKey
	paiPriv *paillier.PrivateKey
	peerPub *paillier.PublicKey
}

// NewSession validates params and constructs a Session ready to run
// Process. rnd defaults to crypto/rand.Reader; log defaults to a
// no-op logger.
func NewSession(conn *bio.Conn, role Role, params Params, rnd io.Reader, log *zap.Logger) (*Session, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if rnd == nil {
		rnd = rand.Reader
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{conn: conn, role: role, params: params, rnd: rnd, log: log}, nil
}

// Process runs the full ten-phase protocol against table and returns
// this party's Shares of the intersection's feature columns.
func (s *Session) Process(table *Table) (Shares, error) {
	if err := table.validate(s.params.IDsNum); err != nil {
		return Shares{}, err
	}

	if err := s.handshake(); err != nil {
		return Shares{}, err
	}

	working := *table
	working.Keys = append([][]string(nil), table.Keys...)
	working.Features = append([][]uint64(nil), table.Features...)

	if err := s.syncSizes(&working); err != nil {
		return Shares{}, err
	}

	if s.params.InputDP {
		if err := s.sampleDP(&working); err != nil {
			return Shares{}, err
		}
	}

	if err := s.permuteInPlace(&working); err != nil {
		return Shares{}, err
	}

	pairs, err := s.matchColumns(&working)
	if err != nil {
		return Shares{}, err
	}
	s.log.Info("psi: matched rows", zap.Int("count", len(pairs)))

	shares, err := s.exchangeFeatures(&working, pairs)
	if err != nil {
		return Shares{}, err
	}

	s.reset()
	return shares, nil
}

func (s *Session) reset() {
	s.eccKey = nil
	s.paiPriv = nil
	s.peerPub = nil
}
