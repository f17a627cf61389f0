//go:build !mono

/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package mono

import "time"

// NanoTime is the portable fallback for the "mono" build-tagged linkname
// trick in fast_nanotime.go. Still monotonic: time.Now() on every supported
// Go platform reads the monotonic reading alongside the wall clock.
func NanoTime() int64 { return int64(time.Since(start)) }

var start = time.Now()
