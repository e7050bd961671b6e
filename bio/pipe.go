//
// Copyright (c) 2026 TikTok Pte. Ltd.
//
// All rights reserved.
//

package bio

import "io"

// Pipe creates a pair of in-memory Conns connected back to back, for
// tests and same-process simulation of the two-party protocol.
func Pipe() (*Conn, *Conn) {
	ar, aw := io.Pipe()
	br, bw := io.Pipe()

	left := NewConn(&pipeHalf{r: ar, w: bw})
	right := NewConn(&pipeHalf{r: br, w: aw})
	return left, right
}

// pipeHalf adapts a pair of *io.Pipe halves (one for reading, one for
// writing) to an io.ReadWriter.
type pipeHalf struct {
	r *io.PipeReader
	w *io.PipeWriter
}

func (p *pipeHalf) Read(b []byte) (int, error)  { return p.r.Read(b) }
func (p *pipeHalf) Write(b []byte) (int, error) { return p.w.Write(b) }

func (p *pipeHalf) Close() error {
	rerr := p.r.Close()
	werr := p.w.Close()
	if rerr != nil {
		return rerr
	}
	return werr
}
