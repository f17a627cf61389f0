// Package hk provides a mechanism for registering cleanup/idle-teardown
// functions invoked periodically, on their own schedule. SendStream
// registers here to close itself after IdleTeardown of no traffic.
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package hk

import (
	"container/heap"
	"sync"
	"time"
)

const (
	// DefaultIval is how long this package's background goroutine sleeps
	// when no cleanup func is registered.
	DefaultIval = 2 * time.Second
)

// CleanupFunc runs when its timer fires; the returned duration schedules
// the next run. Returning <= 0 unregisters the entry.
type CleanupFunc func() time.Duration

type timer struct {
	name string
	f    CleanupFunc
	due  time.Time
	idx  int
}

type timerHeap []*timer

func (h timerHeap) Len() int            { return len(h) }
func (h timerHeap) Less(i, j int) bool  { return h[i].due.Before(h[j].due) }
func (h timerHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].idx, h[j].idx = i, j }
func (h *timerHeap) Push(x any)         { t := x.(*timer); t.idx = len(*h); *h = append(*h, t) }
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}

// Housekeeper runs registered CleanupFuncs on their own schedule from a
// single background goroutine.
type Housekeeper struct {
	mu      sync.Mutex
	byName  map[string]*timer
	h       timerHeap
	wake    chan struct{}
	stopCh  chan struct{}
	started chan struct{}
	once    sync.Once
}

func New() *Housekeeper {
	return &Housekeeper{
		byName:  make(map[string]*timer, 16),
		wake:    make(chan struct{}, 1),
		stopCh:  make(chan struct{}),
		started: make(chan struct{}),
	}
}

// DefaultHK is the process-wide instance; registered funcs fire only once
// something runs it via `go DefaultHK.Run()`.
var DefaultHK = New()

func Reg(name string, f CleanupFunc, initial time.Duration) { DefaultHK.Reg(name, f, initial) }
func Unreg(name string)                                     { DefaultHK.Unreg(name) }

func (hk *Housekeeper) Reg(name string, f CleanupFunc, initial time.Duration) {
	t := &timer{name: name, f: f, due: time.Now().Add(initial)}
	hk.mu.Lock()
	if old, ok := hk.byName[name]; ok {
		heap.Fix(&hk.h, old.idx)
		heap.Remove(&hk.h, old.idx)
	}
	hk.byName[name] = t
	heap.Push(&hk.h, t)
	hk.mu.Unlock()
	hk.poke()
}

func (hk *Housekeeper) Unreg(name string) {
	hk.mu.Lock()
	if t, ok := hk.byName[name]; ok {
		delete(hk.byName, name)
		heap.Remove(&hk.h, t.idx)
	}
	hk.mu.Unlock()
}

func (hk *Housekeeper) poke() {
	select {
	case hk.wake <- struct{}{}:
	default:
	}
}

// Run drives the heap until Stop is called; start it once via `go hk.Run()`.
func (hk *Housekeeper) Run() {
	hk.once.Do(func() { close(hk.started) })
	for {
		hk.mu.Lock()
		var sleep time.Duration
		if len(hk.h) == 0 {
			sleep = DefaultIval
		} else {
			sleep = time.Until(hk.h[0].due)
			if sleep < 0 {
				sleep = 0
			}
		}
		hk.mu.Unlock()

		select {
		case <-hk.stopCh:
			return
		case <-hk.wake:
			continue
		case <-time.After(sleep):
		}
		hk.fireDue()
	}
}

func (hk *Housekeeper) fireDue() {
	now := time.Now()
	for {
		hk.mu.Lock()
		if len(hk.h) == 0 || hk.h[0].due.After(now) {
			hk.mu.Unlock()
			return
		}
		t := heap.Pop(&hk.h).(*timer)
		delete(hk.byName, t.name)
		hk.mu.Unlock()

		next := t.f()
		if next > 0 {
			hk.Reg(t.name, t.f, next)
		}
	}
}

func (hk *Housekeeper) Stop() { close(hk.stopCh) }

func (hk *Housekeeper) WaitStarted() { <-hk.started }
func WaitStarted()                   { DefaultHK.WaitStarted() }

// TestInit resets DefaultHK for test isolation.
func TestInit() { DefaultHK = New() }
