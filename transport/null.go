/*
 * Copyright (c) 2018-2023, NVIDIA CORPORATION. All rights reserved.
 */
package transport

// NullTransport discards everything written to it and only counts bytes -
// the backend for the msg package's size-only façade (BufferSize).
type NullTransport struct {
	baseDir
	n int64
}

func NewNullTransport() *NullTransport { return &NullTransport{baseDir: baseDir{dir: Pack}} }

func (t *NullTransport) Write(p []byte) (int, error) {
	t.n += int64(len(p))
	return len(p), nil
}

func (t *NullTransport) Read([]byte) (int, error) { return 0, errWrongDirection }
func (t *NullTransport) Flush() error              { return nil }
func (t *NullTransport) Close() error              { return nil }

// Size returns the number of bytes a real Pack would have emitted.
func (t *NullTransport) Size() int64 { return t.n }
