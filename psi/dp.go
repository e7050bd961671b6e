//
// Copyright (c) 2026 TikTok Pte. Ltd.
//
// All rights reserved.
//

package psi

import (
	"io"

	"github.com/tiktok-privacy-innovation/PrivacyGo/block"
	"github.com/tiktok-privacy-innovation/PrivacyGo/dpcaerr"
	"github.com/tiktok-privacy-innovation/PrivacyGo/dpsample"
)

// sendCommonSeed and recvCommonSeed carry the shared dummy-row seed
// from the sender to the receiver (§6 wire point 3): only the sender
// generates it, so the two parties' common PRNGs stay in lockstep
// without either revealing anything about its own private seed.
func (s *Session) sendCommonSeed(seed block.Block) error {
	var data block.Data
	seed.GetData(&data)
	if err := s.conn.SendData(data[:]); err != nil {
		return err
	}
	return s.conn.Flush()
}

func (s *Session) recvCommonSeed() (block.Block, error) {
	raw, err := s.conn.ReceiveData()
	if err != nil {
		return block.Block{}, err
	}
	if len(raw) != 16 {
		return block.Block{}, dpcaerr.New(dpcaerr.Deserialization, "psi: malformed common seed")
	}
	var seed block.Block
	seed.SetBytes(raw)
	return seed, nil
}

func randomBlock(rnd io.Reader) (block.Block, error) {
	buf := make([]byte, 16)
	if _, err := io.ReadFull(rnd, buf); err != nil {
		return block.Block{}, err
	}
	var b block.Block
	b.SetBytes(buf)
	return b, nil
}

// sampleDP runs §4.7 phase 3: agree on tau, agree a common seed
// (sender-originated), sample dummy rows locally, append them, and
// re-sync row counts.
func (s *Session) sampleDP(table *Table) error {
	tau, err := dpsample.AgreeTau(s.conn, s.params.PrecomputedTau)
	if err != nil {
		return err
	}

	var seed block.Block
	if s.role == RoleSender {
		seed, err = randomBlock(s.rnd)
		if err != nil {
			return err
		}
		if err := s.sendCommonSeed(seed); err != nil {
			return err
		}
	} else {
		seed, err = s.recvCommonSeed()
		if err != nil {
			return err
		}
	}

	privateSeed, err := randomBlock(s.rnd)
	if err != nil {
		return err
	}
	sampler, err := dpsample.NewSampler(privateSeed, seed)
	if err != nil {
		return err
	}

	zeroColumn := -1
	if s.params.HasZeroColumn {
		zeroColumn = s.params.ZeroColumnIndex
	}
	result, err := sampler.Sample(s.params.IDsNum, featureColumns, zeroColumn, s.role, tau)
	if err != nil {
		return err
	}

	for k, dummy := range result.DummiedKeys {
		table.Keys[k] = append(table.Keys[k], dummy...)
	}
	for f, dummy := range result.DummiedFeatures {
		table.Features[f] = append(table.Features[f], dummy...)
	}

	return s.checkRowCountExchangeOnly(table)
}
