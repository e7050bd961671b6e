//
// Copyright (c) 2026 TikTok Pte. Ltd.
//
// All rights reserved.
//

package ot

import (
	"math/big"

	"github.com/tiktok-privacy-innovation/PrivacyGo/block"
)

// IO is the byte channel an OT sender/receiver pair communicates
// over. *bio.Conn satisfies this interface; tests use bio.Pipe.
type IO interface {
	SendByte(v byte) error
	ReceiveByte() (byte, error)

	SendUint32(val int) error
	ReceiveUint32() (int, error)

	SendData(val []byte) error
	ReceiveData() ([]byte, error)

	SendBlock(b block.Block) error
	ReceiveBlock() (block.Block, error)

	Flush() error
}

// SendString sends a string value.
func SendString(io IO, str string) error {
	return io.SendData([]byte(str))
}

// ReceiveString receives a string value.
func ReceiveString(io IO) (string, error) {
	data, err := io.ReceiveData()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// SendBigInt sends a big.Int as a length-prefixed big-endian blob.
func SendBigInt(io IO, v *big.Int) error {
	return io.SendData(v.Bytes())
}

// ReceiveBigInt receives a big.Int from the connection.
func ReceiveBigInt(io IO) (*big.Int, error) {
	data, err := io.ReceiveData()
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(data), nil
}
