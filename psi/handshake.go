//
// Copyright (c) 2026 TikTok Pte. Ltd.
//
// All rights reserved.
//

package psi

import (
	"github.com/tiktok-privacy-innovation/PrivacyGo/dpcaerr"
	"github.com/tiktok-privacy-innovation/PrivacyGo/ecc"
	"github.com/tiktok-privacy-innovation/PrivacyGo/paillier"
)

// checkUint64 sends val, receives the peer's, and fails if they
// disagree. Used for every scalar parameter-consistency check in
// phase 1 (§4.7).
func (s *Session) checkUint64(name string, val uint64) error {
	if err := s.conn.SendUint64(val); err != nil {
		return err
	}
	if err := s.conn.Flush(); err != nil {
		return err
	}
	peer, err := s.conn.ReceiveUint64()
	if err != nil {
		return err
	}
	if peer != val {
		return dpcaerr.Paramf("psi: %s mismatch: local %d, peer %d", name, val, peer)
	}
	return nil
}

func (s *Session) checkBool(name string, val bool) error {
	var v uint64
	if val {
		v = 1
	}
	return s.checkUint64(name, v)
}

// handshake runs §4.7 phase 1: parameter-consistency checks (failing
// fast, before either side commits any further protocol state) and
// Paillier keypair generation and exchange.
func (s *Session) handshake() error {
	if err := s.checkUint64("curve_id", uint64(s.params.CurveID)); err != nil {
		return err
	}
	if err := s.checkUint64("ids_num", uint64(s.params.IDsNum)); err != nil {
		return err
	}
	if err := s.checkBool("input_dp", s.params.InputDP); err != nil {
		return err
	}
	if err := s.checkBool("apply_packing", s.params.ApplyPacking); err != nil {
		return err
	}
	if s.params.ApplyPacking {
		if err := s.checkUint64("statistical_security_bits", uint64(s.params.StatisticalSecurityBits)); err != nil {
			return err
		}
	}
	if s.params.InputDP {
		if err := s.checkBool("use_precomputed_tau", s.params.UsePrecomputedTau); err != nil {
			return err
		}
		if s.params.UsePrecomputedTau {
			if err := s.checkUint64("precomputed_tau", uint64(s.params.PrecomputedTau)); err != nil {
				return err
			}
		} else {
			if err := s.checkUint64("epsilon_milli", uint64(s.params.Epsilon*1000)); err != nil {
				return err
			}
			if err := s.checkUint64("maximum_queries", uint64(s.params.MaximumQueries)); err != nil {
				return err
			}
		}
	}

	eccKey, err := ecc.GenerateKey(s.params.IDsNum, s.rnd)
	if err != nil {
		return err
	}
	s.eccKey = eccKey

	paiPriv, err := paillier.GenerateKey(s.params.PaillierBits, s.params.EnableDJN, s.rnd)
	if err != nil {
		return err
	}
	s.paiPriv = paiPriv

	if err := s.exchangePublicKey(); err != nil {
		return err
	}
	return nil
}

// exchangePublicKey sends this party's enable_djn flag and marshaled
// Paillier public key, then receives the peer's (§6 wire point 1).
func (s *Session) exchangePublicKey() error {
	if err := s.conn.SendBool(s.params.EnableDJN); err != nil {
		return err
	}
	pubBytes, err := s.paiPriv.PublicKey.MarshalPublicKey()
	if err != nil {
		return err
	}
	if err := s.conn.SendData(pubBytes); err != nil {
		return err
	}
	if err := s.conn.Flush(); err != nil {
		return err
	}

	if _, err := s.conn.ReceiveBool(); err != nil {
		return err
	}
	peerPubBytes, err := s.conn.ReceiveData()
	if err != nil {
		return err
	}
	peerPub, err := paillier.UnmarshalPublicKey(s.params.PaillierBits, peerPubBytes)
	if err != nil {
		return err
	}
	s.peerPub = peerPub
	return nil
}

// syncSizes exchanges row counts (§4.7 phase 2, §6 wire point 2). Row
// counts are not required to match: the intersection is computed over
// whatever each side actually holds.
func (s *Session) syncSizes(table *Table) error {
	return s.checkRowCountExchangeOnly(table)
}

// checkRowCountExchangeOnly performs the size exchange without
// asserting equality (row counts legitimately differ between
// parties).
func (s *Session) checkRowCountExchangeOnly(table *Table) error {
	if err := s.conn.SendUint64(uint64(table.rows())); err != nil {
		return err
	}
	if err := s.conn.Flush(); err != nil {
		return err
	}
	if _, err := s.conn.ReceiveUint64(); err != nil {
		return err
	}
	return nil
}
