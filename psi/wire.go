//
// Copyright (c) 2026 TikTok Pte. Ltd.
//
// All rights reserved.
//

package psi

import (
	"github.com/tiktok-privacy-innovation/PrivacyGo/bio"
	"github.com/tiktok-privacy-innovation/PrivacyGo/dpcaerr"
)

// sendItems concatenates a slice of fixed-size byte items into one
// length-prefixed blob (bio.Conn.SendData already frames it) and
// flushes it. Used for every batch exchange in the matching and
// feature phases so a whole column crosses the wire as one write.
func sendItems(conn *bio.Conn, items [][]byte) error {
	total := 0
	for _, it := range items {
		total += len(it)
	}
	buf := make([]byte, 0, total)
	for _, it := range items {
		buf = append(buf, it...)
	}
	if err := conn.SendData(buf); err != nil {
		return err
	}
	return conn.Flush()
}

// recvItems reads one length-prefixed blob and splits it into
// itemLen-sized items, rejecting a length that isn't an exact
// multiple.
func recvItems(conn *bio.Conn, itemLen int) ([][]byte, error) {
	buf, err := conn.ReceiveData()
	if err != nil {
		return nil, err
	}
	if itemLen <= 0 || len(buf)%itemLen != 0 {
		return nil, dpcaerr.New(dpcaerr.Deserialization, "psi: item blob length not a multiple of item size")
	}
	n := len(buf) / itemLen
	out := make([][]byte, n)
	for i := 0; i < n; i++ {
		out[i] = buf[i*itemLen : (i+1)*itemLen]
	}
	return out, nil
}
