//
// Copyright (c) 2026 TikTok Pte. Ltd.
//
// All rights reserved.
//

package block

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"testing"
)

func TestXorEqual(t *testing.T) {
	a := Block{D0: 1, D1: 2}
	b := Block{D0: 1, D1: 2}
	if !a.Equal(b) {
		t.Fatal("expected equal")
	}
	a.Xor(Block{D0: 1, D1: 0})
	if a.Equal(b) {
		t.Fatal("expected not equal after xor")
	}
	a.Xor(Block{D0: 1, D1: 0})
	if !a.Equal(b) {
		t.Fatal("xor is not an involution")
	}
}

func TestBitRoundtrip(t *testing.T) {
	var b Block
	for i := 0; i < 128; i++ {
		b.SetBit(i, 1)
		if b.Bit(i) != 1 {
			t.Fatalf("bit %d not set", i)
		}
		b.SetBit(i, 0)
		if b.Bit(i) != 0 {
			t.Fatalf("bit %d not cleared", i)
		}
	}
}

func TestDataRoundtrip(t *testing.T) {
	b := Block{D0: 0x0102030405060708, D1: 0x1112131415161718}
	var data Data
	b.GetData(&data)

	var got Block
	got.SetData(&data)
	if !got.Equal(b) {
		t.Fatalf("roundtrip mismatch: %v != %v", got, b)
	}
}

// TestEncryptCTRCorrectness checks C1's "AES-CTR correctness" law:
// EncryptCTR(k, base, n, out) yields out[i] = AES_k(base+i).
func TestEncryptCTRCorrectness(t *testing.T) {
	key := Block{D0: 0xdeadbeefcafebabe, D1: 0x0123456789abcdef}
	sched, err := NewSchedule(key)
	if err != nil {
		t.Fatal(err)
	}

	base := Block{D1: 7}
	const n = 5
	out := make([]Block, n)
	sched.EncryptCTR(base, n, out)

	var keyData Data
	key.GetData(&keyData)
	ref, err := aes.NewCipher(keyData[:])
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < n; i++ {
		ctr := base.addLow(uint64(i))
		var in, want Data
		ctr.GetData(&in)
		ref.Encrypt(want[:], in[:])

		var got Data
		out[i].GetData(&got)
		if !bytes.Equal(got[:], want[:]) {
			t.Fatalf("block %d: got %x want %x", i, got, want)
		}
	}
}

func TestEncryptCTRBytesMatchesStreamCipher(t *testing.T) {
	key := Block{D0: 1, D1: 2}
	sched, err := NewSchedule(key)
	if err != nil {
		t.Fatal(err)
	}

	var keyData Data
	key.GetData(&keyData)
	c, err := aes.NewCipher(keyData[:])
	if err != nil {
		t.Fatal(err)
	}
	var iv [16]byte
	stream := cipher.NewCTR(c, iv[:])
	want := make([]byte, 100)
	stream.XORKeyStream(want, make([]byte, 100))

	got := make([]byte, 100)
	sched.EncryptCTRBytes(Block{}, got)

	if !bytes.Equal(got, want) {
		t.Fatalf("EncryptCTRBytes diverges from crypto/cipher CTR")
	}
}
