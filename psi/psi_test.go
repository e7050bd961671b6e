//
// Copyright (c) 2026 TikTok Pte. Ltd.
//
// All rights reserved.
//

package psi

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tiktok-privacy-innovation/PrivacyGo/bio"
	"github.com/tiktok-privacy-innovation/PrivacyGo/paillier"
)

func baseParams() Params {
	p := DefaultParams()
	p.IDsNum = 2
	p.InputDP = false
	p.ApplyPacking = false
	p.PaillierBits = paillier.Bits1024
	p.EnableDJN = false
	return p
}

type partyResult struct {
	shares Shares
	err    error
}

func runParty(conn *bio.Conn, role Role, params Params, table *Table, out chan<- partyResult) {
	sess, err := NewSession(conn, role, params, rand.Reader, nil)
	if err != nil {
		out <- partyResult{err: err}
		return
	}
	shares, err := sess.Process(table)
	out <- partyResult{shares: shares, err: err}
}

func TestProcessSingleMatch(t *testing.T) {
	left, right := bio.Pipe()
	defer left.Close()
	defer right.Close()

	senderTable := &Table{
		Keys: [][]string{
			{"a", "b", "c"},
			{"p", "q", "r"},
		},
		Features: [][]uint64{
			{0, 100, 0},
			{0, 0, 0},
			{0, 0, 0},
		},
	}
	receiverTable := &Table{
		Keys: [][]string{
			{"x", "b"},
			{"m", "q"},
		},
		Features: [][]uint64{
			{0, 0},
			{0, 110},
			{0, 55},
		},
	}

	senderCh := make(chan partyResult, 1)
	receiverCh := make(chan partyResult, 1)
	go runParty(left, RoleSender, baseParams(), senderTable, senderCh)
	go runParty(right, RoleReceiver, baseParams(), receiverTable, receiverCh)

	sr := <-senderCh
	rr := <-receiverCh
	require.NoError(t, sr.err)
	require.NoError(t, rr.err)

	require.Len(t, sr.shares.T0, 1)
	require.Len(t, rr.shares.T0, 1)

	t0 := (sr.shares.T0[0] + rr.shares.T0[0])
	t1 := (sr.shares.T1[0] + rr.shares.T1[0])
	value := (sr.shares.Value[0] + rr.shares.Value[0])
	require.Equal(t, uint64(100), t0)
	require.Equal(t, uint64(110), t1)
	require.Equal(t, uint64(55), value)
}

func TestProcessNoMatch(t *testing.T) {
	left, right := bio.Pipe()
	defer left.Close()
	defer right.Close()

	senderTable := &Table{
		Keys:     [][]string{{"a"}, {"p"}},
		Features: [][]uint64{{1}, {2}, {3}},
	}
	receiverTable := &Table{
		Keys:     [][]string{{"x"}, {"m"}},
		Features: [][]uint64{{4}, {5}, {6}},
	}

	senderCh := make(chan partyResult, 1)
	receiverCh := make(chan partyResult, 1)
	go runParty(left, RoleSender, baseParams(), senderTable, senderCh)
	go runParty(right, RoleReceiver, baseParams(), receiverTable, receiverCh)

	sr := <-senderCh
	rr := <-receiverCh
	require.NoError(t, sr.err)
	require.NoError(t, rr.err)
	require.Empty(t, sr.shares.T0)
	require.Empty(t, rr.shares.T0)
}

func TestParamsValidate(t *testing.T) {
	p := DefaultParams()
	require.NoError(t, p.Validate())

	bad := p
	bad.CurveID = 1
	require.Error(t, bad.Validate())

	bad = p
	bad.IDsNum = 0
	require.Error(t, bad.Validate())

	bad = p
	bad.InputDP = true
	bad.UsePrecomputedTau = true
	bad.PrecomputedTau = -1
	require.Error(t, bad.Validate())
}
