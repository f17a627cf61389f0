// HTTPEndpoint is a real (non-simulated) Endpoint: each rank runs a
// fasthttp server accepting blocks posted to /block with the session in a
// "sid" query argument, and posts
// outgoing blocks over long-lived fasthttp client connections, mirroring
// the teacher's long-lived-HTTP-connection design for intra-cluster
// transport.
/*
 * Copyright (c) 2018-2023, NVIDIA CORPORATION. All rights reserved.
 */
package transport

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"sync"

	"github.com/NVIDIA/deepmsg/cmn/cos"
	"github.com/valyala/fasthttp"
)

// HTTPEndpoint maps cluster ranks to "host:port" addresses and exchanges
// blocks as POST bodies: a big-endian uint32 header length, the header,
// then the payload.
type HTTPEndpoint struct {
	rank, size int
	addrs      []string // addrs[rank] is that peer's listen address
	clients    []*fasthttp.HostClient

	mu      sync.Mutex
	inboxes map[string]chan rawBlock // sessionID -> delivered blocks
}

type rawBlock struct {
	hdr, payload []byte
}

func NewHTTPEndpoint(rank int, addrs []string) *HTTPEndpoint {
	ep := &HTTPEndpoint{
		rank:    rank,
		size:    len(addrs),
		addrs:   addrs,
		clients: make([]*fasthttp.HostClient, len(addrs)),
		inboxes: make(map[string]chan rawBlock, 16),
	}
	for i, a := range addrs {
		ep.clients[i] = &fasthttp.HostClient{Addr: a}
	}
	return ep
}

func (ep *HTTPEndpoint) Rank() int { return ep.rank }
func (ep *HTTPEndpoint) Size() int { return ep.size }

// ListenAndServe runs this rank's block-receiving server; call in its own
// goroutine. addrs[rank] must be the address it binds.
func (ep *HTTPEndpoint) ListenAndServe() error {
	return fasthttp.ListenAndServe(ep.addrs[ep.rank], ep.handle)
}

func (ep *HTTPEndpoint) handle(c *fasthttp.RequestCtx) {
	body := c.PostBody()
	if len(body) < 4 {
		c.Error("short body", fasthttp.StatusBadRequest)
		return
	}
	hlen := binary.BigEndian.Uint32(body[:4])
	if uint32(len(body)) < 4+hlen {
		c.Error("truncated header", fasthttp.StatusBadRequest)
		return
	}
	hdr := body[4 : 4+hlen]
	payload := body[4+hlen:]
	sessionID := string(c.URI().QueryArgs().Peek("sid"))

	ep.mu.Lock()
	ch, ok := ep.inboxes[sessionID]
	if !ok {
		ch = make(chan rawBlock, 8)
		ep.inboxes[sessionID] = ch
	}
	ep.mu.Unlock()

	ch <- rawBlock{hdr: append([]byte(nil), hdr...), payload: append([]byte(nil), payload...)}
}

func (ep *HTTPEndpoint) inbox(sessionID string) chan rawBlock {
	ep.mu.Lock()
	defer ep.mu.Unlock()
	ch, ok := ep.inboxes[sessionID]
	if !ok {
		ch = make(chan rawBlock, 8)
		ep.inboxes[sessionID] = ch
	}
	return ch
}

func (ep *HTTPEndpoint) post(ctx context.Context, dst int, sessionID string, hdr, payload []byte) error {
	body := make([]byte, 4+len(hdr)+len(payload))
	binary.BigEndian.PutUint32(body[:4], uint32(len(hdr)))
	copy(body[4:], hdr)
	copy(body[4+len(hdr):], payload)

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fmt.Sprintf("http://%s/block?sid=%s", ep.addrs[dst], sessionID))
	req.Header.SetMethod(fasthttp.MethodPost)
	req.SetBody(body)

	if err := ep.clients[dst].Do(req, resp); err != nil {
		if cos.IsRetriableConnErr(err) {
			return fmt.Errorf("transient send failure to rank %d: %w", dst, err)
		}
		return err
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return fmt.Errorf("rank %d rejected block: status %d", dst, resp.StatusCode())
	}
	return nil
}

func (ep *HTTPEndpoint) SendBlock(ctx context.Context, dst int, sessionID string, hdr, payload []byte) error {
	return ep.post(ctx, dst, sessionID, hdr, payload)
}

func (ep *HTTPEndpoint) RecvBlock(ctx context.Context, sessionID string, hdr, payload []byte) (int, int, error) {
	select {
	case <-ctx.Done():
		return 0, 0, ctx.Err()
	case b := <-ep.inbox(sessionID):
		return copy(hdr, b.hdr), copy(payload, b.payload), nil
	}
}

func (ep *HTTPEndpoint) BcastBlock(ctx context.Context, sessionID string, hdr, payload []byte) error {
	for r := 0; r < ep.size; r++ {
		if r == ep.rank {
			continue
		}
		if err := ep.post(ctx, r, sessionID, hdr, payload); err != nil {
			return err
		}
	}
	return nil
}

func (ep *HTTPEndpoint) RecvBcastBlock(ctx context.Context, sessionID string, hdr, payload []byte) (int, int, error) {
	return ep.RecvBlock(ctx, sessionID, hdr, payload)
}

var _ Endpoint = (*HTTPEndpoint)(nil)
var _ io.Closer = (*HTTPEndpoint)(nil)

func (ep *HTTPEndpoint) Close() error { return nil }
