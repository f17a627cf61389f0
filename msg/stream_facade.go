// Streaming façade: packs/unpacks straight through a chunked
// transport.SendStream/RecvStream/BcastStream, for messages too large (or
// too latency-sensitive) to materialize in full before sending.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package msg

import (
	"context"

	"github.com/NVIDIA/deepmsg/transport"
)

// SendObj streams v to rank dst over a stream tagged sessionID - the
// caller is responsible for getting the same sessionID to the RecvObj call
// on the other end (out-of-band rendezvous; see cluster/sim for a demo).
func SendObj[T any, PT descriptorPtr[T]](ctx context.Context, sender transport.Sender, dst int, sessionID string, v *T) error {
	ss := transport.OpenSendStream(ctx, sender, dst, sessionID)
	m := NewMessage(ss)
	if err := seedRoot[T, PT](m, v); err != nil {
		ss.Close()
		return err
	}
	if err := PT(v).Declare(m); err != nil {
		ss.Close()
		return err
	}
	return m.Close()
}

// RecvObj receives a value streamed via SendObj. sessionID must be the one
// the sender opened (out-of-band rendezvous is the caller's job - see
// cluster/sim for the in-process demo wiring).
func RecvObj[T any, PT descriptorPtr[T]](ctx context.Context, recver transport.Receiver, sessionID string, v *T) error {
	rs := transport.OpenRecvStream(ctx, recver, sessionID)
	m := NewMessage(rs)
	if err := seedRoot[T, PT](m, v); err != nil {
		rs.Close()
		return err
	}
	if err := PT(v).Declare(m); err != nil {
		rs.Close()
		return err
	}
	return m.Close()
}

// BcastObjRoot streams v from rank 0 to every peer.
func BcastObjRoot[T any, PT descriptorPtr[T]](ctx context.Context, bcaster transport.Broadcaster, sessionID string, v *T) error {
	bs := transport.OpenBcastStream(ctx, bcaster, sessionID, true)
	m := NewMessage(bs)
	if err := seedRoot[T, PT](m, v); err != nil {
		bs.Close()
		return err
	}
	if err := PT(v).Declare(m); err != nil {
		bs.Close()
		return err
	}
	return m.Close()
}

// BcastObjPeer receives a value broadcast via BcastObjRoot.
func BcastObjPeer[T any, PT descriptorPtr[T]](ctx context.Context, bcaster transport.Broadcaster, sessionID string, v *T) error {
	bs := transport.OpenBcastStream(ctx, bcaster, sessionID, false)
	m := NewMessage(bs)
	if err := seedRoot[T, PT](m, v); err != nil {
		bs.Close()
		return err
	}
	if err := PT(v).Declare(m); err != nil {
		bs.Close()
		return err
	}
	return m.Close()
}
