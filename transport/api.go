// Package transport provides the byte-level backends a msg.Message packs
// into or unpacks from: an in-memory null sink for size-only measurement, a
// memsys-backed buffer for the buffered façade, a file for save/load, and a
// long-lived fasthttp connection (or an in-process cluster/sim rank) for
// direct and broadcast sends.
/*
 * Copyright (c) 2018-2023, NVIDIA CORPORATION. All rights reserved.
 */
package transport

import (
	"io"

	"github.com/NVIDIA/deepmsg/cmn/cos"
)

// Direction pins a Message (and, transitively, every Transport it packs
// into) to one of the two roles the wire format is asymmetric about: a
// Source only ever writes, a Sink only ever reads and allocates.
type Direction int

const (
	Pack Direction = iota // Source: traverse+serialize
	Unpack                // Sink: allocate+deserialize
)

func (d Direction) String() string {
	if d == Pack {
		return "pack"
	}
	return "unpack"
}

// Transport is the narrow contract msg.Message packs scalars, pointers and
// containers through. Implementations are one-directional: a Pack-mode
// Transport's Read and an Unpack-mode Transport's Write both return
// ErrClosedStream.
type Transport interface {
	io.Writer
	io.Reader
	Direction() Direction
	// Flush pushes any buffered bytes out; a no-op for transports that
	// write through immediately.
	Flush() error
	Close() error
}

var errWrongDirection = &cos.ErrClosedStream{Stream: "wrong-direction transport"}

// baseDir is embedded by every concrete Transport so Direction() doesn't
// need repeating.
type baseDir struct{ dir Direction }

func (b baseDir) Direction() Direction { return b.dir }
