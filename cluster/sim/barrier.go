/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package sim

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// RunOnAllRanks runs f once per rank concurrently and waits for every rank
// to finish, returning the first error (if any). This only fans out
// independent top-level calls across simulated peers - it never
// parallelizes the traversal inside a single Pack/Unpack call.
func RunOnAllRanks(ctx context.Context, size int, f func(ctx context.Context, rank int) error) error {
	g, ctx := errgroup.WithContext(ctx)
	for r := 0; r < size; r++ {
		r := r
		g.Go(func() error { return f(ctx, r) })
	}
	return g.Wait()
}

// Barrier is a simple reusable rendezvous point for `size` simulated ranks.
type Barrier struct {
	mu   sync.Mutex
	cond *sync.Cond
	size int
	n    int
	gen  int
}

func NewBarrier(size int) *Barrier {
	b := &Barrier{size: size}
	b.cond = sync.NewCond(&b.mu)
	return b
}

func (b *Barrier) Wait() {
	b.mu.Lock()
	defer b.mu.Unlock()
	gen := b.gen
	b.n++
	if b.n == b.size {
		b.n = 0
		b.gen++
		b.cond.Broadcast()
		return
	}
	for gen == b.gen {
		b.cond.Wait()
	}
}
