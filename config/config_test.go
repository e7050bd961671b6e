//
// Copyright (c) 2026 TikTok Pte. Ltd.
//
// All rights reserved.
//

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	cfg.Common.Port = 9000
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadPort(t *testing.T) {
	cfg := Default()
	cfg.Common.Port = 0
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsBadPaillierBits(t *testing.T) {
	cfg := Default()
	cfg.Common.Port = 9000
	cfg.PaillierParams.PaillierNLen = 512
	require.Error(t, cfg.Validate())
}

func TestLoadMergesWithDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"common":{"address":"127.0.0.1","port":9001,"ids_num":5,"is_sender":true}}`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 9001, cfg.Common.Port)
	require.Equal(t, 5, cfg.Common.IDsNum)
	require.True(t, cfg.Common.IsSender)
	require.Equal(t, 415, cfg.ECCParams.CurveID)
	require.NoError(t, cfg.Validate())
}

func TestPSIParams(t *testing.T) {
	cfg := Default()
	cfg.Common.Port = 9000
	params := cfg.PSIParams()
	require.NoError(t, params.Validate())
}
