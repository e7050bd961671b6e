//
// Copyright (c) 2026 TikTok Pte. Ltd.
//
// All rights reserved.
//

package dpsample

import (
	"github.com/tiktok-privacy-innovation/PrivacyGo/bio"
	"github.com/tiktok-privacy-innovation/PrivacyGo/dpcaerr"
)

// maxTau is the upper bound on the agreed dummy-row budget, §6.
const maxTau = 1 << 20

// AgreeTau exchanges each party's desired precomputed_tau and returns
// the larger of the two, validated to stay within [0, maxTau]. Kept as
// its own exported step (rather than inline coordinator logic) since
// the originating dp_sampling.cpp treats max-agreement as a standalone
// operation with its own range check.
func AgreeTau(conn *bio.Conn, tau int) (int, error) {
	if err := conn.SendUint64(uint64(tau)); err != nil {
		return 0, err
	}
	if err := conn.Flush(); err != nil {
		return 0, err
	}
	peer, err := conn.ReceiveUint64()
	if err != nil {
		return 0, err
	}
	agreed := tau
	if int(peer) > agreed {
		agreed = int(peer)
	}
	if agreed < 0 || agreed > maxTau {
		return 0, dpcaerr.Paramf("dpsample: agreed tau %d out of range [0,%d]", agreed, maxTau)
	}
	return agreed, nil
}
