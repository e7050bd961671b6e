//
// Copyright (c) 2026 TikTok Pte. Ltd.
//
// All rights reserved.
//

package paillier

import (
	"crypto/rand"
	"math/big"
	"testing"
)

func TestEncryptDecryptRoundtrip(t *testing.T) {
	sk, err := GenerateKey(Bits1024, false, rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range []int64{0, 1, 42, 1 << 40} {
		m := big.NewInt(v)
		c, err := sk.PublicKey.Encrypt(m, rand.Reader)
		if err != nil {
			t.Fatal(err)
		}
		got, err := sk.Decrypt(c)
		if err != nil {
			t.Fatal(err)
		}
		if got.Cmp(m) != 0 {
			t.Fatalf("roundtrip mismatch: got %v want %v", got, m)
		}
	}
}

func TestDJNEncryptDecryptRoundtrip(t *testing.T) {
	sk, err := GenerateKey(Bits1024, true, rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	m := big.NewInt(12345)
	c, err := sk.PublicKey.Encrypt(m, rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	got, err := sk.Decrypt(c)
	if err != nil {
		t.Fatal(err)
	}
	if got.Cmp(m) != 0 {
		t.Fatalf("DJN roundtrip mismatch: got %v want %v", got, m)
	}
}

func TestHomomorphicAddAndMul(t *testing.T) {
	sk, err := GenerateKey(Bits1024, false, rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	m1, m2 := big.NewInt(7), big.NewInt(35)
	c1, err := sk.PublicKey.Encrypt(m1, rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	c2, err := sk.PublicKey.Encrypt(m2, rand.Reader)
	if err != nil {
		t.Fatal(err)
	}

	sum := sk.PublicKey.Add(c1, c2)
	gotSum, err := sk.Decrypt(sum)
	if err != nil {
		t.Fatal(err)
	}
	if gotSum.Cmp(big.NewInt(42)) != 0 {
		t.Fatalf("add mismatch: got %v", gotSum)
	}

	scaled := sk.PublicKey.MulPlain(c1, big.NewInt(6))
	gotScaled, err := sk.Decrypt(scaled)
	if err != nil {
		t.Fatal(err)
	}
	if gotScaled.Cmp(big.NewInt(42)) != 0 {
		t.Fatalf("mul mismatch: got %v", gotScaled)
	}

	plainSum := sk.PublicKey.AddPlain(c1, big.NewInt(35))
	gotPlainSum, err := sk.Decrypt(plainSum)
	if err != nil {
		t.Fatal(err)
	}
	if gotPlainSum.Cmp(big.NewInt(42)) != 0 {
		t.Fatalf("add-plain mismatch: got %v", gotPlainSum)
	}
}

func TestKeyRoundtripSerialization(t *testing.T) {
	sk, err := GenerateKey(Bits1024, true, rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	pubBytes, err := sk.PublicKey.MarshalPublicKey()
	if err != nil {
		t.Fatal(err)
	}
	pub2, err := UnmarshalPublicKey(Bits1024, pubBytes)
	if err != nil {
		t.Fatal(err)
	}
	if pub2.N.Cmp(sk.N) != 0 || pub2.HS.Cmp(sk.HS) != 0 {
		t.Fatal("public key roundtrip mismatch")
	}

	privBytes, err := sk.MarshalPrivateKey()
	if err != nil {
		t.Fatal(err)
	}
	sk2, err := UnmarshalPrivateKey(Bits1024, true, privBytes)
	if err != nil {
		t.Fatal(err)
	}
	sk2.PublicKey.HS = sk.HS
	m := big.NewInt(999)
	c, err := sk.PublicKey.Encrypt(m, rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	got, err := sk2.Decrypt(c)
	if err != nil {
		t.Fatal(err)
	}
	if got.Cmp(m) != 0 {
		t.Fatalf("private key roundtrip decrypt mismatch: got %v", got)
	}
}

func TestPackUnpackRoundtrip(t *testing.T) {
	s := 40
	values := []uint64{1, 2, 3}
	packed, err := Pack(values, Bits3072, s)
	if err != nil {
		t.Fatal(err)
	}
	got := Unpack(packed, len(values), s)
	for i := range values {
		if got[i] != values[i] {
			t.Fatalf("slot %d: got %d want %d", i, got[i], values[i])
		}
	}
}
