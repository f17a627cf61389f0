/*
 * Copyright (c) 2018-2023, NVIDIA CORPORATION. All rights reserved.
 */
package transport

import "github.com/NVIDIA/deepmsg/cmn/cos"

// NewSessionID tags one SendStream/RecvStream (or BcastStream) pair on the
// wire, so a Receiver fed by multiple concurrent senders can demux blocks
// back into the right in-flight message.
func NewSessionID() string { return cos.GenSessionID() }
