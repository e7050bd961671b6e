//
// Copyright (c) 2026 TikTok Pte. Ltd.
//
// All rights reserved.
//

package csvio

import (
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tiktok-privacy-innovation/PrivacyGo/psi"
)

func TestReadTableWithHeader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	content := "id0,id1,t0,t1,value\na,p,1,2,3\nb,q,4,5,6\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	table, err := ReadTable(path, 2)
	require.NoError(t, err)
	require.Equal(t, [][]string{{"a", "b"}, {"p", "q"}}, table.Keys)
	require.Equal(t, []uint64{1, 4}, table.Features[0])
	require.Equal(t, []uint64{2, 5}, table.Features[1])
	require.Equal(t, []uint64{3, 6}, table.Features[2])
}

func TestReadTableWithoutHeader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	content := "a,p,1,2,3\nb,q,4,5,6\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	table, err := ReadTable(path, 2)
	require.NoError(t, err)
	require.Equal(t, 2, len(table.Keys[0]))
}

func TestWriteShares(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shares.csv")
	shares := psi.Shares{T0: []uint64{1, 2}, T1: []uint64{3, 4}, Value: []uint64{5, 6}}
	require.NoError(t, WriteShares(path, shares))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "1,3,5\n2,4,6\n", string(data))
}

func TestSynthesizeRoundtrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "synthetic.csv")
	require.NoError(t, Synthesize(path, 2, 5, rand.Reader))

	table, err := ReadTable(path, 2)
	require.NoError(t, err)
	require.Equal(t, 5, len(table.Keys[0]))
	require.Equal(t, 5, len(table.Features[0]))
}
