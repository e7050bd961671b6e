//
// Copyright (c) 2026 TikTok Pte. Ltd.
//
// All rights reserved.
//

// Package dpsample implements the C6 differentially-private dummy-row
// sampler: per-column synthetic identifiers and features that calibrate
// the PSI cardinality leak. Grounded on
// original_source/dpca-psi/src/dpca-psi/crypto/dp_sampling.cpp and its
// dummy_data_utils.h identifier/feature generators.
package dpsample

import (
	"math/rand"

	"github.com/tiktok-privacy-innovation/PrivacyGo/block"
	"github.com/tiktok-privacy-innovation/PrivacyGo/dpcaerr"
	"github.com/tiktok-privacy-innovation/PrivacyGo/prng"
)

// identifierLen is the fixed length of a generated dummy identifier
// before any suffix is appended.
const identifierLen = 32

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
const digits = "0123456789"

// Role distinguishes the two PSI parties for the unique-row suffix.
type Role int

// Roles per §4.6.
const (
	RoleSender Role = iota
	RoleReceiver
)

func (r Role) suffix() string {
	if r == RoleSender {
		return "DA"
	}
	return "DB"
}

// Sampler draws dummy rows: a private PRNG for this party's own
// randomness, and a common PRNG seeded identically on both sides so
// the two parties agree on a shared pool of common dummy identifiers.
type Sampler struct {
	rnd       *prng.PRNG
	commonRnd *prng.PRNG
}

// NewSampler creates a Sampler with a fresh private seed and the
// given shared commonSeed (agreed out of band between the parties).
func NewSampler(privateSeed, commonSeed block.Block) (*Sampler, error) {
	rnd, err := prng.New(privateSeed, 0)
	if err != nil {
		return nil, err
	}
	commonRnd, err := prng.New(commonSeed, 0)
	if err != nil {
		return nil, err
	}
	return &Sampler{rnd: rnd, commonRnd: commonRnd}, nil
}

// SetCommonSeed reseeds the shared PRNG, e.g. once both parties have
// exchanged the agreed common seed during the handshake phase.
func (s *Sampler) SetCommonSeed(seed block.Block) error {
	rnd, err := prng.New(seed, 0)
	if err != nil {
		return err
	}
	s.commonRnd = rnd
	return nil
}

func randomKeys(p *prng.PRNG, n int, suffix string) []string {
	out := make([]string, n)
	for i := 0; i < n; i++ {
		b := make([]byte, 0, identifierLen+len(suffix))
		raw := p.Bytes(identifierLen)
		for idx := 0; idx < identifierLen; idx++ {
			if idx&1 == 1 {
				b = append(b, alphabet[int(raw[idx])%len(alphabet)])
			} else {
				b = append(b, digits[int(raw[idx])%len(digits)])
			}
		}
		b = append(b, suffix...)
		out[i] = string(b)
	}
	return out
}

func randomFeatures(p *prng.PRNG, n int, isZero bool) []uint64 {
	out := make([]uint64, n)
	if !isZero {
		for i := range out {
			out[i] = p.Uint64()
		}
	}
	return out
}

// Result is the output of one party's multi-key dummy-row sampling:
// dummiedKeys[k] holds the dummy identifiers for key column k;
// dummiedFeatures[f] holds the dummy feature values for feature
// column f, shared across all key columns.
type Result struct {
	DummiedKeys     [][]string
	DummiedFeatures [][]uint64
}

// Sample runs the multi-key sampling of §4.6: keySize*tau dummy rows
// per column, built from (keySize-1)*tau unique per-party rows plus tau
// rows of a shuffled shared common pool inserted at offset k*tau.
func (s *Sampler) Sample(keySize, featureSize int, zeroColumn int, role Role, tau int) (*Result, error) {
	if keySize <= 0 {
		return nil, dpcaerr.Paramf("dpsample: key size %d must be positive", keySize)
	}
	if tau == 0 {
		return &Result{
			DummiedKeys:     make([][]string, keySize),
			DummiedFeatures: make([][]uint64, featureSize),
		}, nil
	}

	dummyDataSize := keySize * tau
	commonKeys := randomKeys(s.commonRnd, 2*tau, "")
	uniqueKeys := randomKeys(s.rnd, (keySize-1)*tau, role.suffix())

	features := make([][]uint64, featureSize)
	for f := 0; f < featureSize; f++ {
		features[f] = randomFeatures(s.rnd, dummyDataSize, f == zeroColumn)
	}

	keys := make([][]string, keySize)
	for k := 0; k < keySize; k++ {
		uniqueKeysI := make([]string, len(uniqueKeys))
		for i, key := range uniqueKeys {
			uniqueKeysI[i] = key + itoa(k)
		}

		commonKeysI := make([]string, len(commonKeys))
		for i, key := range commonKeys {
			commonKeysI[i] = key + itoa(k)
		}
		shuffle(commonKeysI, s.rnd)

		col := make([]string, 0, len(uniqueKeysI)+tau)
		offset := k * tau
		if offset > len(uniqueKeysI) {
			offset = len(uniqueKeysI)
		}
		col = append(col, uniqueKeysI[:offset]...)
		col = append(col, commonKeysI[:tau]...)
		col = append(col, uniqueKeysI[offset:]...)
		keys[k] = col
	}

	return &Result{DummiedKeys: keys, DummiedFeatures: features}, nil
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// shuffle performs a Fisher-Yates shuffle driven by p, matching the
// teacher's practice of drawing shuffle randomness from the same
// deterministic PRNG used for everything else in the sampler.
func shuffle(s []string, p *prng.PRNG) {
	rand.New(prngSource{p}).Shuffle(len(s), func(i, j int) {
		s[i], s[j] = s[j], s[i]
	})
}

// prngSource adapts *prng.PRNG to math/rand.Source64 so the standard
// library's Fisher-Yates Shuffle can consume deterministic keystream
// bytes instead of an independent entropy source.
type prngSource struct {
	p *prng.PRNG
}

func (s prngSource) Int63() int64 {
	return int64(s.Uint64() &^ (1 << 63))
}

func (s prngSource) Seed(int64) {}

func (s prngSource) Uint64() uint64 {
	return s.p.Uint64()
}
