//
// Copyright (c) 2026 TikTok Pte. Ltd.
//
// All rights reserved.
//

package aby

import (
	"encoding/binary"

	"github.com/tiktok-privacy-innovation/PrivacyGo/bio"
	"github.com/tiktok-privacy-innovation/PrivacyGo/dpcaerr"
)

func sendUint64Slice(conn *bio.Conn, vals []uint64) error {
	buf := make([]byte, len(vals)*8)
	for i, v := range vals {
		binary.BigEndian.PutUint64(buf[i*8:], v)
	}
	return conn.SendData(buf)
}

func recvUint64Slice(conn *bio.Conn) ([]uint64, error) {
	buf, err := conn.ReceiveData()
	if err != nil {
		return nil, err
	}
	if len(buf)%8 != 0 {
		return nil, dpcaerr.New(dpcaerr.Deserialization, "aby: malformed uint64 slice")
	}
	out := make([]uint64, len(buf)/8)
	for i := range out {
		out[i] = binary.BigEndian.Uint64(buf[i*8:])
	}
	return out, nil
}
