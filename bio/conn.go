//
// Copyright (c) 2026 TikTok Pte. Ltd.
//
// All rights reserved.
//

// Package bio implements the byte-level I/O channel (C3): an
// ordered, length-prefixed message channel over any io.ReadWriter,
// with byte/bit/block/value send-receive helpers and byte counters.
package bio

import (
	"encoding/binary"
	"io"
	"sync/atomic"

	"github.com/tiktok-privacy-innovation/PrivacyGo/block"
	"github.com/tiktok-privacy-innovation/PrivacyGo/dpcaerr"
)

const (
	numBuffers   = 3
	writeBufSize = 64 * 1024
	readBufSize  = 1024 * 1024
)

// Stats holds atomic byte counters for a Conn.
type Stats struct {
	Sent    *atomic.Uint64
	Recvd   *atomic.Uint64
	Flushed *atomic.Uint64
}

// NewStats creates a zeroed Stats.
func NewStats() Stats {
	return Stats{
		Sent:    new(atomic.Uint64),
		Recvd:   new(atomic.Uint64),
		Flushed: new(atomic.Uint64),
	}
}

// Sum returns the total bytes sent plus received.
func (s Stats) Sum() uint64 {
	return s.Sent.Load() + s.Recvd.Load()
}

// Conn implements the ordered, length-prefixed byte channel of C3
// over an arbitrary io.ReadWriter. Writes are buffered and flushed
// explicitly by the caller (matching the protocol's lock-step
// send/flush/recv discipline); a background goroutine drains filled
// write buffers (up to numBuffers in flight) to the underlying
// connection, so Flush does not wait for the write while a free
// buffer remains.
type Conn struct {
	conn      io.ReadWriter
	writeBuf  []byte
	writePos  int
	readBuf   []byte
	readStart int
	readEnd   int
	Stats     Stats

	fromWriter chan []byte
	toWriter   chan []byte
	writerErr  error
}

// NewConn wraps conn in a buffered, byte-counted Conn.
func NewConn(conn io.ReadWriter) *Conn {
	c := &Conn{
		conn:       conn,
		readBuf:    make([]byte, readBufSize),
		fromWriter: make(chan []byte, numBuffers),
		toWriter:   make(chan []byte, numBuffers),
		Stats:      NewStats(),
	}
	go c.writer()
	c.writeBuf = <-c.fromWriter
	return c
}

func (c *Conn) writer() {
	for i := 0; i < numBuffers; i++ {
		c.fromWriter <- make([]byte, writeBufSize)
	}
	for buf := range c.toWriter {
		if _, err := c.conn.Write(buf); err != nil {
			c.writerErr = err
		}
		c.fromWriter <- buf[0:cap(buf)]
	}
	close(c.fromWriter)
}

func (c *Conn) needSpace(n int) error {
	if c.writePos+n > len(c.writeBuf) {
		return c.Flush()
	}
	return nil
}

// Flush flushes any pending write data to the underlying connection.
func (c *Conn) Flush() error {
	if c.writePos > 0 {
		c.Stats.Sent.Add(uint64(c.writePos))
		c.toWriter <- c.writeBuf[0:c.writePos]

		next := <-c.fromWriter
		if c.writerErr != nil {
			return dpcaerr.Wrap(dpcaerr.IO, "flush", c.writerErr)
		}
		c.writeBuf = next
		c.writePos = 0
		c.Stats.Flushed.Add(1)
	}
	return nil
}

func (c *Conn) fill(n int) error {
	if c.readStart < c.readEnd {
		copy(c.readBuf, c.readBuf[c.readStart:c.readEnd])
		c.readEnd -= c.readStart
		c.readStart = 0
	} else {
		c.readStart = 0
		c.readEnd = 0
	}
	for c.readStart+n > c.readEnd {
		if c.readEnd >= len(c.readBuf) {
			return dpcaerr.New(dpcaerr.IO, "read buffer exhausted")
		}
		got, err := c.conn.Read(c.readBuf[c.readEnd:])
		if err != nil {
			return dpcaerr.Wrap(dpcaerr.IO, "read", err)
		}
		if got == 0 {
			return dpcaerr.New(dpcaerr.IO, "connection closed")
		}
		c.Stats.Recvd.Add(uint64(got))
		c.readEnd += got
	}
	return nil
}

// Close flushes pending data and closes the underlying connection, if
// it implements io.Closer.
func (c *Conn) Close() error {
	if err := c.Flush(); err != nil {
		return err
	}
	close(c.toWriter)
	for range <-c.fromWriter {
	}
	if c.writerErr != nil {
		return dpcaerr.Wrap(dpcaerr.IO, "close", c.writerErr)
	}
	if closer, ok := c.conn.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// SendByte sends a single byte.
func (c *Conn) SendByte(v byte) error {
	if err := c.needSpace(1); err != nil {
		return err
	}
	c.writeBuf[c.writePos] = v
	c.writePos++
	return nil
}

// ReceiveByte receives a single byte.
func (c *Conn) ReceiveByte() (byte, error) {
	if c.readStart+1 > c.readEnd {
		if err := c.fill(1); err != nil {
			return 0, err
		}
	}
	v := c.readBuf[c.readStart]
	c.readStart++
	return v, nil
}

// SendUint32 sends val as a native-endian-on-the-wire (big-endian)
// uint32.
func (c *Conn) SendUint32(val int) error {
	if err := c.needSpace(4); err != nil {
		return err
	}
	binary.BigEndian.PutUint32(c.writeBuf[c.writePos:], uint32(val))
	c.writePos += 4
	return nil
}

// ReceiveUint32 receives a uint32.
func (c *Conn) ReceiveUint32() (int, error) {
	if c.readStart+4 > c.readEnd {
		if err := c.fill(4); err != nil {
			return 0, err
		}
	}
	v := binary.BigEndian.Uint32(c.readBuf[c.readStart:])
	c.readStart += 4
	return int(v), nil
}

// SendUint64 sends a uint64 value.
func (c *Conn) SendUint64(val uint64) error {
	if err := c.needSpace(8); err != nil {
		return err
	}
	binary.BigEndian.PutUint64(c.writeBuf[c.writePos:], val)
	c.writePos += 8
	return nil
}

// ReceiveUint64 receives a uint64 value.
func (c *Conn) ReceiveUint64() (uint64, error) {
	if c.readStart+8 > c.readEnd {
		if err := c.fill(8); err != nil {
			return 0, err
		}
	}
	v := binary.BigEndian.Uint64(c.readBuf[c.readStart:])
	c.readStart += 8
	return v, nil
}

// SendData sends len(val) as a uint32 length prefix, then val.
func (c *Conn) SendData(val []byte) error {
	if err := c.SendUint32(len(val)); err != nil {
		return err
	}
	ofs := 0
	for ofs < len(val) {
		if err := c.needSpace(1); err != nil {
			return err
		}
		n := copy(c.writeBuf[c.writePos:], val[ofs:])
		c.writePos += n
		ofs += n
	}
	return nil
}

// ReceiveData receives a length-prefixed byte blob.
func (c *Conn) ReceiveData() ([]byte, error) {
	n, err := c.ReceiveUint32()
	if err != nil {
		return nil, err
	}
	result := make([]byte, n)
	ofs := 0
	for ofs < n {
		if c.readStart >= c.readEnd {
			if err := c.fill(1); err != nil {
				return nil, err
			}
		}
		k := copy(result[ofs:], c.readBuf[c.readStart:c.readEnd])
		c.readStart += k
		ofs += k
	}
	return result, nil
}

// SendString sends a string value.
func (c *Conn) SendString(s string) error {
	return c.SendData([]byte(s))
}

// ReceiveString receives a string value.
func (c *Conn) ReceiveString() (string, error) {
	data, err := c.ReceiveData()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// SendBool sends a single boolean as one byte (1 for true, 0 for
// false; see SendBools for bulk transfer); provided for single-value
// protocol steps like the enable_djn handshake flag.
func (c *Conn) SendBool(v bool) error {
	var b byte
	if v {
		b = 1
	}
	return c.SendByte(b)
}

// ReceiveBool receives a single boolean.
func (c *Conn) ReceiveBool() (bool, error) {
	b, err := c.ReceiveByte()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

// SendBools packs the booleans eight to a byte, least significant bit
// first (a final partial group fills the low bits of the last byte),
// and sends the packed buffer length-prefixed.
func (c *Conn) SendBools(vals []bool) error {
	packed := make([]byte, (len(vals)+7)/8)
	for i, v := range vals {
		if v {
			packed[i/8] |= 1 << uint(i%8)
		}
	}
	return c.SendData(packed)
}

// ReceiveBools receives n booleans packed by SendBools.
func (c *Conn) ReceiveBools(n int) ([]bool, error) {
	packed, err := c.ReceiveData()
	if err != nil {
		return nil, err
	}
	if len(packed) < (n+7)/8 {
		return nil, dpcaerr.New(dpcaerr.Deserialization, "truncated bool buffer")
	}
	out := make([]bool, n)
	for i := range out {
		out[i] = (packed[i/8]>>uint(i%8))&1 == 1
	}
	return out, nil
}

// SendBlock sends a 128-bit block.
func (c *Conn) SendBlock(b block.Block) error {
	var data block.Data
	return c.sendFixed(b.Bytes(&data))
}

func (c *Conn) sendFixed(data []byte) error {
	if err := c.needSpace(len(data)); err != nil {
		return err
	}
	copy(c.writeBuf[c.writePos:], data)
	c.writePos += len(data)
	return nil
}

// ReceiveBlock receives a 128-bit block.
func (c *Conn) ReceiveBlock() (block.Block, error) {
	var b block.Block
	var data block.Data
	if c.readStart+len(data) > c.readEnd {
		if err := c.fill(len(data)); err != nil {
			return b, err
		}
	}
	copy(data[:], c.readBuf[c.readStart:c.readStart+len(data)])
	c.readStart += len(data)
	b.SetData(&data)
	return b, nil
}
