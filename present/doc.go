// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package present provides CPU implementations of grain.Buffer.
//
// ImageBuffer keeps an *image.RGBA mirror of what a Volume pushed and
// records every push, which makes it the buffer of choice for tests,
// headless tools and screenshots:
//
//	buf := present.NewImageBuffer(0, 0)
//	_ = volume.Synchronize(buf)
//	img := buf.Snapshot()
//
// GPU and window backed buffers live in integration/gpubuffer and
// integration/ebitenbuffer.
package present
