//
// Copyright (c) 2026 TikTok Pte. Ltd.
//
// All rights reserved.
//

package ecc

import (
	"crypto/rand"
	"testing"
)

func TestHashToCurveEvenYOnCurve(t *testing.T) {
	for _, msg := range [][]byte{[]byte("alice@example.com"), []byte(""), []byte("row-42")} {
		x, y, err := HashToCurve(msg)
		if err != nil {
			t.Fatal(err)
		}
		if y.Bit(0) != 0 {
			t.Fatalf("hash-to-curve y not even for %q", msg)
		}
		if !curve().IsOnCurve(x, y) {
			t.Fatalf("hash-to-curve point off-curve for %q", msg)
		}
	}
}

func TestHashToCurveDeterministic(t *testing.T) {
	x1, y1, err := HashToCurve([]byte("same"))
	if err != nil {
		t.Fatal(err)
	}
	x2, y2, err := HashToCurve([]byte("same"))
	if err != nil {
		t.Fatal(err)
	}
	if x1.Cmp(x2) != 0 || y1.Cmp(y2) != 0 {
		t.Fatal("hash-to-curve is not deterministic")
	}
}

func TestMaskingCommutes(t *testing.T) {
	ka, err := randScalar(curve().Params().N, rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	kb, err := randScalar(curve().Params().N, rand.Reader)
	if err != nil {
		t.Fatal(err)
	}

	base, err := HashEncrypt([]byte("row-1"), ka)
	if err != nil {
		t.Fatal(err)
	}
	ab, err := Encrypt(base, kb)
	if err != nil {
		t.Fatal(err)
	}

	base2, err := HashEncrypt([]byte("row-1"), kb)
	if err != nil {
		t.Fatal(err)
	}
	ba, err := Encrypt(base2, ka)
	if err != nil {
		t.Fatal(err)
	}

	if string(ab) != string(ba) {
		t.Fatal("EC masking is not commutative")
	}
}

func TestEncryptAndDivRemovesOneMaskAppliesAnother(t *testing.T) {
	n := curve().Params().N
	ka, _ := randScalar(n, rand.Reader)
	kb, _ := randScalar(n, rand.Reader)
	kc, _ := randScalar(n, rand.Reader)

	// point masked by ka
	masked, err := HashEncrypt([]byte("row-9"), ka)
	if err != nil {
		t.Fatal(err)
	}
	// replace mask ka with kc via encrypt_and_div(point, kc, ka)
	result, err := EncryptAndDiv(masked, kc, ka)
	if err != nil {
		t.Fatal(err)
	}
	want, err := HashEncrypt([]byte("row-9"), kc)
	if err != nil {
		t.Fatal(err)
	}
	if string(result) != string(want) {
		t.Fatal("encrypt_and_div did not correctly swap masks")
	}
	_ = kb
}
