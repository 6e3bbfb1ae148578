// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gpubuffer presents a grain.Volume through a gogpu GPU texture.
//
// Usage in integrated mode:
//
//	app.OnDraw(func(dc *gogpu.Context) {
//	    td := dc.AsTextureDrawer()
//	    if buf == nil {
//	        buf, _ = gpubuffer.New(creator) // wraps td.TextureCreator()
//	        volume.MarkAll()
//	    }
//	    _ = volume.Synchronize(buf)
//	    _ = buf.DrawTo(td, 0, 0)
//	})
//
// The texture receives premultiplied pixels and is marked premultiplied
// when it supports SetPremultiplied.
//
// The texture is created lazily by the first full push, so a volume whose
// first synchronization is a region push must call MarkAll after creating
// the buffer.
package gpubuffer
