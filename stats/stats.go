// Package stats tracks per-process counters for the transport and msg
// packages and exposes them to Prometheus.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package stats

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Tracker is the narrow interface transport depends on, so tests can
// substitute a no-op implementation without pulling in Prometheus.
type Tracker interface {
	Add(name string, val int64)
	AddMany(namedVal ...NamedVal64)
}

type NamedVal64 struct {
	Name string
	Val  int64
}

const (
	BytesSent     = "transport.bytes.sent"
	BytesRecv     = "transport.bytes.recv"
	BlocksFlushed = "transport.blocks.flushed"
	SessionsOpen  = "transport.sessions.opened"
	SessionsClose = "transport.sessions.closed"
	IdentityHits  = "msg.identity.hits"
	IdentityMiss  = "msg.identity.misses"
)

// Trunner ("tracker runner") is the concrete Tracker: one Prometheus
// Counter per named stat, registered lazily on first Add.
type Trunner struct {
	reg      *prometheus.Registry
	counters map[string]prometheus.Counter
}

func NewTrunner(reg *prometheus.Registry) *Trunner {
	return &Trunner{reg: reg, counters: make(map[string]prometheus.Counter, 8)}
}

func (tr *Trunner) Add(name string, val int64) {
	c, ok := tr.counters[name]
	if !ok {
		c = prometheus.NewCounter(prometheus.CounterOpts{
			Name: sanitize(name),
			Help: name,
		})
		tr.reg.MustRegister(c)
		tr.counters[name] = c
	}
	c.Add(float64(val))
}

func (tr *Trunner) AddMany(namedVal ...NamedVal64) {
	for _, nv := range namedVal {
		tr.Add(nv.Name, nv.Val)
	}
}

func sanitize(name string) string {
	out := make([]byte, len(name))
	for i := range len(name) {
		c := name[i]
		if c == '.' || c == '-' {
			c = '_'
		}
		out[i] = c
	}
	return "deepmsg_" + string(out)
}
