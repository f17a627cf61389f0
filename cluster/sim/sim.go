// Package sim is an in-process stand-in for the message-passing runtime
// this module rides on top of (send/recv/broadcast/rank/size) - a
// goroutine-and-channel simulation used by tests and cmd/graphtool, where
// no real cluster is available. transport.HTTPEndpoint is the real,
// network-based alternative implementing the same transport.Endpoint
// interface.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package sim

import (
	"context"
	"sync"

	"github.com/NVIDIA/deepmsg/transport"
)

type block struct {
	hdr, payload []byte
}

// Cluster is the shared in-process fabric; each Rank is one simulated
// process's view of it.
type Cluster struct {
	size int

	mu      sync.Mutex
	inboxes []map[string]chan block // inboxes[dst][sessionID]
	bcasts  []map[string]chan block // bcasts[dst][sessionID], root fan-out only
}

func NewCluster(size int) *Cluster {
	c := &Cluster{
		size:    size,
		inboxes: make([]map[string]chan block, size),
		bcasts:  make([]map[string]chan block, size),
	}
	for r := range c.inboxes {
		c.inboxes[r] = make(map[string]chan block, 8)
		c.bcasts[r] = make(map[string]chan block, 8)
	}
	return c
}

// Rank returns rank r's view of the cluster, implementing
// transport.Endpoint.
func (c *Cluster) Rank(r int) *Rank { return &Rank{c: c, rank: r} }

func (c *Cluster) inbox(set []map[string]chan block, dst int, sessionID string) chan block {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch, ok := set[dst][sessionID]
	if !ok {
		ch = make(chan block, 16)
		set[dst][sessionID] = ch
	}
	return ch
}

type Rank struct {
	c    *Cluster
	rank int
}

var _ transport.Endpoint = (*Rank)(nil)

func (r *Rank) Rank() int { return r.rank }
func (r *Rank) Size() int { return r.c.size }

func cp(b block) block {
	return block{hdr: append([]byte(nil), b.hdr...), payload: append([]byte(nil), b.payload...)}
}

func (r *Rank) SendBlock(ctx context.Context, dst int, sessionID string, hdr, payload []byte) error {
	ch := r.c.inbox(r.c.inboxes, dst, sessionID)
	select {
	case ch <- cp(block{hdr: hdr, payload: payload}):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Rank) RecvBlock(ctx context.Context, sessionID string, hdr, payload []byte) (int, int, error) {
	ch := r.c.inbox(r.c.inboxes, r.rank, sessionID)
	select {
	case b := <-ch:
		return copy(hdr, b.hdr), copy(payload, b.payload), nil
	case <-ctx.Done():
		return 0, 0, ctx.Err()
	}
}

func (r *Rank) BcastBlock(ctx context.Context, sessionID string, hdr, payload []byte) error {
	for dst := 0; dst < r.c.size; dst++ {
		if dst == r.rank {
			continue
		}
		ch := r.c.inbox(r.c.bcasts, dst, sessionID)
		select {
		case ch <- cp(block{hdr: hdr, payload: payload}):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (r *Rank) RecvBcastBlock(ctx context.Context, sessionID string, hdr, payload []byte) (int, int, error) {
	ch := r.c.inbox(r.c.bcasts, r.rank, sessionID)
	select {
	case b := <-ch:
		return copy(hdr, b.hdr), copy(payload, b.payload), nil
	case <-ctx.Done():
		return 0, 0, ctx.Err()
	}
}
