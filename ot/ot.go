//
// Copyright (c) 2026 TikTok Pte. Ltd.
//
// All rights reserved.
//

// Package ot implements the base 1-out-of-2 oblivious transfer (C8):
// the Naor-Pinkas protocol over P-256, used both standalone and as
// the base OT underlying the IKNP extension in package otext.
package ot

import "github.com/tiktok-privacy-innovation/PrivacyGo/block"

// Wire carries a pair of 128-bit labels, indexed by selection bit.
type Wire struct {
	L0 block.Block
	L1 block.Block
}

// OT defines the base 1-out-of-2 oblivious transfer protocol. The
// sender uses Send to transmit a []Wire array where each wire has a
// zero and a one label. The receiver calls Receive with a []bool
// array of selection bits and gets back the label each bit selected.
// The caller must ensure the []Wire and []bool/[]block.Block array
// lengths match.
type OT interface {
	// InitSender initializes the OT sender.
	InitSender(io IO) error

	// InitReceiver initializes the OT receiver.
	InitReceiver(io IO) error

	// Send sends the wire labels with OT.
	Send(wires []Wire) error

	// Receive receives the wire labels with OT based on the flag
	// values.
	Receive(flags []bool, result []block.Block) error
}
