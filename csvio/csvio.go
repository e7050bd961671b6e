//
// Copyright (c) 2026 TikTok Pte. Ltd.
//
// All rights reserved.
//

// Package csvio reads and writes the plaintext CSV data files and
// shares files of §6: a data file holds idsNum string key columns
// followed by exactly three uint64 feature columns (t0, t1, value),
// with an optional header row; a shares file holds the same three
// uint64 columns with no header.
package csvio

import (
	"encoding/csv"
	"io"
	"math/rand"
	"os"
	"strconv"

	"github.com/tiktok-privacy-innovation/PrivacyGo/dpcaerr"
	"github.com/tiktok-privacy-innovation/PrivacyGo/psi"
)

const featureColumns = 3

// ReadTable reads a data file with idsNum key columns and exactly
// three feature columns. The header, if present, is detected by
// trying to parse the first row's feature columns as integers and
// skipping the row if that fails.
func ReadTable(path string, idsNum int) (*psi.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, dpcaerr.Wrap(dpcaerr.IO, "csvio: open data file", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, dpcaerr.Wrap(dpcaerr.Deserialization, "csvio: parse data file", err)
	}
	if len(records) == 0 {
		return &psi.Table{Keys: make([][]string, idsNum), Features: make([][]uint64, featureColumns)}, nil
	}

	want := idsNum + featureColumns
	start := 0
	if len(records[0]) == want {
		if _, err := parseFeatureRow(records[0], idsNum); err != nil {
			start = 1
		}
	}

	keys := make([][]string, idsNum)
	features := make([][]uint64, featureColumns)
	for _, row := range records[start:] {
		if len(row) != want {
			return nil, dpcaerr.Paramf("csvio: row has %d fields, want %d", len(row), want)
		}
		for k := 0; k < idsNum; k++ {
			keys[k] = append(keys[k], row[k])
		}
		vals, err := parseFeatureRow(row, idsNum)
		if err != nil {
			return nil, dpcaerr.Wrap(dpcaerr.Deserialization, "csvio: parse feature row", err)
		}
		for c := 0; c < featureColumns; c++ {
			features[c] = append(features[c], vals[c])
		}
	}
	return &psi.Table{Keys: keys, Features: features}, nil
}

func parseFeatureRow(row []string, idsNum int) ([featureColumns]uint64, error) {
	var out [featureColumns]uint64
	for c := 0; c < featureColumns; c++ {
		v, err := strconv.ParseUint(row[idsNum+c], 10, 64)
		if err != nil {
			return out, err
		}
		out[c] = v
	}
	return out, nil
}

// WriteShares writes a headerless shares file: one row per matched
// row, three uint64 columns (t0, t1, value).
func WriteShares(path string, shares psi.Shares) error {
	f, err := os.Create(path)
	if err != nil {
		return dpcaerr.Wrap(dpcaerr.IO, "csvio: create shares file", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	for i := range shares.T0 {
		row := []string{
			strconv.FormatUint(shares.T0[i], 10),
			strconv.FormatUint(shares.T1[i], 10),
			strconv.FormatUint(shares.Value[i], 10),
		}
		if err := w.Write(row); err != nil {
			return dpcaerr.Wrap(dpcaerr.IO, "csvio: write shares row", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return dpcaerr.Wrap(dpcaerr.IO, "csvio: flush shares file", err)
	}
	return nil
}

// Synthesize writes a synthetic data file of rows rows with idsNum
// key columns, mirroring the original engine's gen_data.py: random
// alphanumeric keys and uniform random uint64 features.
func Synthesize(path string, idsNum, rows int, rnd io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return dpcaerr.Wrap(dpcaerr.IO, "csvio: create synthetic file", err)
	}
	defer f.Close()

	src := rand.New(readerSource{rnd})
	w := csv.NewWriter(f)
	for i := 0; i < rows; i++ {
		row := make([]string, 0, idsNum+featureColumns)
		for k := 0; k < idsNum; k++ {
			row = append(row, randomKey(src, 16))
		}
		for c := 0; c < featureColumns; c++ {
			row = append(row, strconv.FormatUint(src.Uint64(), 10))
		}
		if err := w.Write(row); err != nil {
			return dpcaerr.Wrap(dpcaerr.IO, "csvio: write synthetic row", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return dpcaerr.Wrap(dpcaerr.IO, "csvio: flush synthetic file", err)
	}
	return nil
}

const keyAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

func randomKey(src *rand.Rand, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = keyAlphabet[src.Intn(len(keyAlphabet))]
	}
	return string(b)
}

// readerSource adapts an io.Reader to math/rand.Source64 so
// Synthesize can be seeded from a caller-supplied entropy source
// (crypto/rand.Reader by default) instead of an independent one.
type readerSource struct {
	r io.Reader
}

func (s readerSource) Int63() int64 {
	return int64(s.Uint64() &^ (1 << 63))
}

func (s readerSource) Seed(int64) {}

func (s readerSource) Uint64() uint64 {
	var buf [8]byte
	if _, err := io.ReadFull(s.r, buf[:]); err != nil {
		return 0
	}
	var v uint64
	for _, b := range buf {
		v = v<<8 | uint64(b)
	}
	return v
}
