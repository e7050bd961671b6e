//
// Copyright (c) 2026 TikTok Pte. Ltd.
//
// All rights reserved.
//

package beaver

import (
	"crypto/rand"
	"testing"

	"github.com/tiktok-privacy-innovation/PrivacyGo/bio"
)

func TestGenerateTripleCorrectness(t *testing.T) {
	left, right := bio.Pipe()
	defer left.Close()
	defer right.Close()

	type setupResult struct {
		gen *Generator
		err error
	}
	done := make(chan setupResult, 2)
	go func() {
		g, err := NewGenerator(left, true, rand.Reader)
		done <- setupResult{g, err}
	}()
	go func() {
		g, err := NewGenerator(right, false, rand.Reader)
		done <- setupResult{g, err}
	}()

	results := make([]*Generator, 0, 2)
	for i := 0; i < 2; i++ {
		r := <-done
		if r.err != nil {
			t.Fatal(r.err)
		}
		results = append(results, r.gen)
	}
	// order is nondeterministic; identify by checking pool1 role
	var initGen, respGen *Generator
	for _, g := range results {
		if g.pool1.sender != nil {
			initGen = g
		} else {
			respGen = g
		}
	}
	if initGen == nil || respGen == nil {
		t.Fatal("failed to identify initiator/responder generators")
	}

	const numTriples = 4
	genDone := make(chan struct {
		triples []Triple
		err     error
	}, 1)
	go func() {
		triples, err := initGen.Generate(numTriples)
		genDone <- struct {
			triples []Triple
			err     error
		}{triples, err}
	}()

	respTriples, err := respGen.Generate(numTriples)
	if err != nil {
		t.Fatal(err)
	}
	res := <-genDone
	if res.err != nil {
		t.Fatal(res.err)
	}
	initTriples := res.triples

	for t2 := 0; t2 < numTriples; t2++ {
		a := initTriples[t2].A ^ respTriples[t2].A
		b := initTriples[t2].B ^ respTriples[t2].B
		c := initTriples[t2].C ^ respTriples[t2].C
		want := a & b
		if c != want {
			t.Fatalf("triple %d: a=%x b=%x c=%x want=%x", t2, a, b, c, want)
		}
	}
}
