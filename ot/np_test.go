//
// Copyright (c) 2026 TikTok Pte. Ltd.
//
// All rights reserved.
//

package ot

import (
	"crypto/rand"
	"testing"

	"github.com/tiktok-privacy-innovation/PrivacyGo/bio"
	"github.com/tiktok-privacy-innovation/PrivacyGo/block"
)

func randomBlock(t *testing.T) block.Block {
	t.Helper()
	var data block.Data
	if _, err := rand.Read(data[:]); err != nil {
		t.Fatal(err)
	}
	var b block.Block
	b.SetData(&data)
	return b
}

func TestNaorPinkasOT(t *testing.T) {
	const n = 8
	wires := make([]Wire, n)
	flags := make([]bool, n)
	for i := range wires {
		wires[i] = Wire{L0: randomBlock(t), L1: randomBlock(t)}
		flags[i] = i%2 == 0
	}

	left, right := bio.Pipe()
	defer left.Close()
	defer right.Close()

	sender := NewNPSender()
	if err := sender.InitSender(left); err != nil {
		t.Fatal(err)
	}
	receiver := NewNPReceiver()
	if err := receiver.InitReceiver(right); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() {
		done <- sender.Send(wires)
	}()

	result := make([]block.Block, n)
	if err := receiver.Receive(flags, result); err != nil {
		t.Fatal(err)
	}
	if err := <-done; err != nil {
		t.Fatal(err)
	}

	for i := range wires {
		want := wires[i].L0
		if flags[i] {
			want = wires[i].L1
		}
		if !result[i].Equal(want) {
			t.Fatalf("ot %d: got %v want %v (flag=%v)", i, result[i], want, flags[i])
		}
	}
}
