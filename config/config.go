//
// Copyright (c) 2026 TikTok Pte. Ltd.
//
// All rights reserved.
//

// Package config loads and validates the four JSON parameter groups
// of §6: common, paillier_params, ecc_params, and dp_params.
package config

import (
	"encoding/json"
	"os"

	"github.com/tiktok-privacy-innovation/PrivacyGo/dpcaerr"
	"github.com/tiktok-privacy-innovation/PrivacyGo/paillier"
	"github.com/tiktok-privacy-innovation/PrivacyGo/psi"
)

// Common holds the network and I/O parameters shared by every run.
type Common struct {
	Address    string `json:"address"`
	RemotePort int    `json:"remote_port"`
	LocalPort  int    `json:"local_port"`
	Port       int    `json:"port"`
	IDsNum     int    `json:"ids_num"`
	IsSender   bool   `json:"is_sender"`
	Verbose    bool   `json:"verbose"`
	InputFile  string `json:"input_file"`
	OutputFile string `json:"output_file"`
}

// PaillierParams configures the additively-homomorphic feature
// resharing (§4.5).
type PaillierParams struct {
	PaillierNLen int  `json:"paillier_n_len"`
	EnableDJN    bool `json:"enable_djn"`
}

// ECCParams configures the elliptic-curve key-matching layer (§4.4).
type ECCParams struct {
	CurveID int `json:"curve_id"`
}

// DPParams configures the optional differentially-private dummy-row
// sampling (§4.6).
type DPParams struct {
	ApplyPacking            bool    `json:"apply_packing"`
	StatisticalSecurityBits int     `json:"statistical_security_bits"`
	Epsilon                 float64 `json:"epsilon"`
	MaximumQueries          int     `json:"maximum_queries"`
	UsePrecomputedTau       bool    `json:"use_precomputed_tau"`
	PrecomputedTau          int     `json:"precomputed_tau"`
	InputDP                 bool    `json:"input_dp"`
	HasZeroColumn           bool    `json:"has_zero_column"`
	ZeroColumnIndex         int     `json:"zero_column_index"`
}

// Config is the full on-disk configuration document.
type Config struct {
	Common         Common         `json:"common"`
	PaillierParams PaillierParams `json:"paillier_params"`
	ECCParams      ECCParams      `json:"ecc_params"`
	DPParams       DPParams       `json:"dp_params"`
}

// Default returns the §6 default configuration.
func Default() *Config {
	return &Config{
		Common: Common{
			Address: "127.0.0.1",
			Port:    0,
			IDsNum:  3,
		},
		PaillierParams: PaillierParams{
			PaillierNLen: int(paillier.Bits2048),
			EnableDJN:    true,
		},
		ECCParams: ECCParams{
			CurveID: 415,
		},
		DPParams: DPParams{
			ApplyPacking:            true,
			StatisticalSecurityBits: 40,
			Epsilon:                 2.0,
			MaximumQueries:          10,
			UsePrecomputedTau:       true,
			PrecomputedTau:          1440,
			InputDP:                 true,
			HasZeroColumn:           false,
			ZeroColumnIndex:         -1,
		},
	}
}

// Load reads and parses a JSON configuration file, applying §6
// defaults for any group entirely absent from the document.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, dpcaerr.Wrap(dpcaerr.IO, "config: read file", err)
	}
	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, dpcaerr.Wrap(dpcaerr.Deserialization, "config: parse json", err)
	}
	return cfg, nil
}

// Port returns the port to dial/listen on: the sender uses
// remote_port and the receiver local_port when that field is set,
// falling back to the single shared port field otherwise.
func (c *Config) Port() int {
	if c.Common.IsSender && c.Common.RemotePort != 0 {
		return c.Common.RemotePort
	}
	if !c.Common.IsSender && c.Common.LocalPort != 0 {
		return c.Common.LocalPort
	}
	return c.Common.Port
}

// Validate checks every field against its documented range (§6).
func (c *Config) Validate() error {
	if c.Common.Address == "" {
		return dpcaerr.New(dpcaerr.Parameter, "config: address must not be empty")
	}
	port := c.Port()
	if port < 1 || port > 65535 {
		return dpcaerr.Paramf("config: port %d out of range [1,65535]", port)
	}
	if c.Common.IDsNum < 1 || c.Common.IDsNum > 100 {
		return dpcaerr.Paramf("config: ids_num %d out of range [1,100]", c.Common.IDsNum)
	}
	switch paillier.KeyBits(c.PaillierParams.PaillierNLen) {
	case paillier.Bits1024, paillier.Bits2048, paillier.Bits3072:
	default:
		return dpcaerr.Paramf("config: paillier_n_len %d not in {1024,2048,3072}", c.PaillierParams.PaillierNLen)
	}
	if c.ECCParams.CurveID != 415 {
		return dpcaerr.Paramf("config: unsupported curve_id %d", c.ECCParams.CurveID)
	}
	if c.DPParams.ApplyPacking {
		bits := c.DPParams.StatisticalSecurityBits
		if bits < 40 || bits > 80 {
			return dpcaerr.Paramf("config: statistical_security_bits %d out of range [40,80]", bits)
		}
	}
	if c.DPParams.InputDP {
		if c.DPParams.UsePrecomputedTau {
			tau := c.DPParams.PrecomputedTau
			if tau < 0 || tau > 1<<20 {
				return dpcaerr.Paramf("config: precomputed_tau %d out of range [0,2^20]", tau)
			}
		} else {
			if c.DPParams.Epsilon <= 0 {
				return dpcaerr.New(dpcaerr.Parameter, "config: epsilon must be positive")
			}
			if c.DPParams.MaximumQueries < 1 {
				return dpcaerr.New(dpcaerr.Parameter, "config: maximum_queries must be positive")
			}
		}
	}
	if c.DPParams.HasZeroColumn {
		idx := c.DPParams.ZeroColumnIndex
		if idx < 0 || idx >= c.Common.IDsNum {
			return dpcaerr.Paramf("config: zero_column_index %d out of range [0,%d)", idx, c.Common.IDsNum)
		}
	}
	return nil
}

// PSIParams assembles the psi.Params this configuration describes.
// Callers should call Validate first; PSIParams does not re-check
// ranges psi.Params.Validate will check again on its own.
func (c *Config) PSIParams() psi.Params {
	zeroIdx := -1
	if c.DPParams.HasZeroColumn {
		zeroIdx = c.DPParams.ZeroColumnIndex
	}
	return psi.Params{
		CurveID:                 c.ECCParams.CurveID,
		IDsNum:                  c.Common.IDsNum,
		InputDP:                 c.DPParams.InputDP,
		ApplyPacking:            c.DPParams.ApplyPacking,
		StatisticalSecurityBits: c.DPParams.StatisticalSecurityBits,
		PaillierBits:            paillier.KeyBits(c.PaillierParams.PaillierNLen),
		EnableDJN:               c.PaillierParams.EnableDJN,
		UsePrecomputedTau:       c.DPParams.UsePrecomputedTau,
		PrecomputedTau:          c.DPParams.PrecomputedTau,
		Epsilon:                 c.DPParams.Epsilon,
		MaximumQueries:          c.DPParams.MaximumQueries,
		HasZeroColumn:           c.DPParams.HasZeroColumn,
		ZeroColumnIndex:         zeroIdx,
	}
}
