//
// Copyright (c) 2026 TikTok Pte. Ltd.
//
// All rights reserved.
//

package aby

import "github.com/tiktok-privacy-innovation/PrivacyGo/dpcaerr"

// Greater returns a boolean share of x > y, row by row: y-x is
// converted to boolean shares and its sign bit extracted, since
// y-x < 0 (MSB set, two's complement) iff x > y.
func (p *Party) Greater(x, y ArithVec) (BoolVec, error) {
	diff, err := Sub(y, x)
	if err != nil {
		return nil, err
	}
	b, err := p.A2B(diff)
	if err != nil {
		return nil, err
	}
	return SignBit(b), nil
}

// Less returns a boolean share of x < y, row by row.
func (p *Party) Less(x, y ArithVec) (BoolVec, error) {
	diff, err := Sub(x, y)
	if err != nil {
		return nil, err
	}
	b, err := p.A2B(diff)
	if err != nil {
		return nil, err
	}
	return SignBit(b), nil
}

// subPublic subtracts a public constant vector from a shared vector:
// only party 0 applies the constant locally, so both sides keep a
// valid share of x[i]-pub[i].
func (p *Party) subPublic(x ArithVec, pub []uint64) ArithVec {
	out := make(ArithVec, len(x))
	for i, v := range x {
		if p.ID == Party0 {
			out[i] = v - pub[i]
		} else {
			out[i] = v
		}
	}
	return out
}

// GreaterPublic returns a boolean share of x > pub, where pub is a
// plaintext constant known identically to both parties.
func (p *Party) GreaterPublic(x ArithVec, pub []uint64) (BoolVec, error) {
	if len(x) != len(pub) {
		return nil, dpcaerr.New(dpcaerr.Parameter, "aby: GreaterPublic operand length mismatch")
	}
	diff := p.subPublic(x, pub)
	neg := make(ArithVec, len(diff))
	for i, v := range diff {
		neg[i] = -v
	}
	b, err := p.A2B(neg)
	if err != nil {
		return nil, err
	}
	return SignBit(b), nil
}

// LessPublic returns a boolean share of x < pub.
func (p *Party) LessPublic(x ArithVec, pub []uint64) (BoolVec, error) {
	if len(x) != len(pub) {
		return nil, dpcaerr.New(dpcaerr.Parameter, "aby: LessPublic operand length mismatch")
	}
	diff := p.subPublic(x, pub)
	b, err := p.A2B(diff)
	if err != nil {
		return nil, err
	}
	return SignBit(b), nil
}
