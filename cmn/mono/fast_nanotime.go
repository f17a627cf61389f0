//go:build mono

// Package mono provides a low-level monotonic clock for hot paths (stream
// idle-teardown ticks, stats sampling) where the allocation and wall-clock
// parsing in time.Now() show up in profiles. Build with the "mono" tag to
// opt into the linkname fast path; otherwise nanotime.go's time.Now() based
// fallback is used.
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package mono

import (
	_ "unsafe" // for go:linkname
)

// https://golang.org/pkg/runtime/?m=all#nanotime
//
//go:linkname NanoTime runtime.nanotime
func NanoTime() int64
