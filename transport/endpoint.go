/*
 * Copyright (c) 2018-2023, NVIDIA CORPORATION. All rights reserved.
 */
package transport

import "context"

// Sender, Receiver and Broadcaster are the message-passing primitives a
// SendStream/RecvStream/BcastStream rides on top of. This module never
// implements the distributed runtime behind them from scratch; it adapts
// two concrete collaborators - cluster/sim's in-process ranks for tests and
// demos, and HTTPEndpoint (fasthttp) for a real network path - to this same
// narrow interface.
type (
	Sender interface {
		// SendBlock ships one chunked-stream block (header + payload) to
		// peer rank dst. Blocks until accepted by the transport.
		SendBlock(ctx context.Context, dst int, sessionID string, hdr, payload []byte) error
	}

	Receiver interface {
		// RecvBlock blocks until a block addressed to this rank for
		// sessionID arrives, and copies header+payload into hdr/payload.
		RecvBlock(ctx context.Context, sessionID string, hdr, payload []byte) (hn, pn int, err error)
	}

	Broadcaster interface {
		// BcastBlock is Rank 0's fan-out of one block to every peer.
		BcastBlock(ctx context.Context, sessionID string, hdr, payload []byte) error
		// RecvBcastBlock is a peer's receipt of one root-sent block.
		RecvBcastBlock(ctx context.Context, sessionID string, hdr, payload []byte) (hn, pn int, err error)
	}

	Endpoint interface {
		Sender
		Receiver
		Broadcaster
		Rank() int
		Size() int
	}
)
