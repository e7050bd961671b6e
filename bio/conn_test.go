//
// Copyright (c) 2026 TikTok Pte. Ltd.
//
// All rights reserved.
//

package bio

import (
	"testing"

	"github.com/tiktok-privacy-innovation/PrivacyGo/block"
)

func TestSendReceiveRoundtrip(t *testing.T) {
	left, right := Pipe()
	defer left.Close()
	defer right.Close()

	done := make(chan error, 1)
	go func() {
		if err := left.SendUint32(42); err != nil {
			done <- err
			return
		}
		if err := left.SendData([]byte("hello")); err != nil {
			done <- err
			return
		}
		if err := left.SendBools([]bool{true, false, true, true, false, false, false, true, true}); err != nil {
			done <- err
			return
		}
		if err := left.SendBlock(block.Block{D0: 1, D1: 2}); err != nil {
			done <- err
			return
		}
		done <- left.Flush()
	}()

	n, err := right.ReceiveUint32()
	if err != nil {
		t.Fatal(err)
	}
	if n != 42 {
		t.Fatalf("got %d want 42", n)
	}

	data, err := right.ReceiveData()
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello" {
		t.Fatalf("got %q want hello", data)
	}

	bools, err := right.ReceiveBools(9)
	if err != nil {
		t.Fatal(err)
	}
	want := []bool{true, false, true, true, false, false, false, true, true}
	for i := range want {
		if bools[i] != want[i] {
			t.Fatalf("bit %d: got %v want %v", i, bools[i], want[i])
		}
	}

	b, err := right.ReceiveBlock()
	if err != nil {
		t.Fatal(err)
	}
	if !b.Equal(block.Block{D0: 1, D1: 2}) {
		t.Fatalf("got %v want {1 2}", b)
	}

	if err := <-done; err != nil {
		t.Fatal(err)
	}
}

func TestStatsTrackBytes(t *testing.T) {
	left, right := Pipe()
	defer left.Close()
	defer right.Close()

	go func() {
		left.SendData([]byte("0123456789"))
		left.Flush()
	}()

	if _, err := right.ReceiveData(); err != nil {
		t.Fatal(err)
	}
	if left.Stats.Sent.Load() == 0 {
		t.Fatal("expected non-zero sent bytes")
	}
	if right.Stats.Recvd.Load() == 0 {
		t.Fatal("expected non-zero received bytes")
	}
}
