// Package sprite provides a 2D sprite batcher for GPU rendering.
//
// # Overview
//
// sprite collects textured quads, lines, polygons, triangles and glyph runs
// between Begin and End, sorts them to minimize texture binds, and writes the
// transformed vertices into a GPU-mapped buffer in as few indexed draw calls
// as the texture changes allow. Many small images can be packed into shared
// atlas pages (see package atlas) and drawn from a single texture array.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/sprite"
//	    "github.com/gogpu/sprite/backend/wgpu"
//	)
//
//	dev, _ := wgpu.New(halDevice, halQueue, wgpu.Config{})
//	batch, _ := sprite.NewBatch(dev)
//	batch.Resize(800, 600)
//
//	dev.BeginFrame(wgpu.FrameTarget{View: view, Width: 800, Height: 600})
//	batch.Begin(sprite.BeginOptions{SortMode: sprite.SortTexture})
//	batch.DrawAt(player, sprite.Vec2{X: 100, Y: 80}, sprite.White)
//	batch.DrawLine(sprite.Vec2{}, sprite.Vec2{X: 200, Y: 0}, sprite.RGB(1, 0, 0), 2, 1)
//	batch.End()
//	dev.EndFrame()
//
// Draw takes every DrawOptions field as given, so a zero Opacity or Color
// draws nothing visible. Start from DefaultDrawOptions:
//
//	o := sprite.DefaultDrawOptions()
//	o.Position = sprite.Vec2{X: 10, Y: 10}
//	o.Opacity = fade
//	batch.Draw(enemy, o)
//
// # Sessions
//
// A session is the interval between Begin and End. Draw calls outside a
// session fail with [ErrNotBegun]; a second Begin fails with [ErrAlreadyBegun].
// Textures passed to Draw must stay alive until End returns.
//
// Draw calls may be issued from several goroutines inside one session. Begin
// and End belong to a single orchestrating goroutine.
//
// # Sort Modes
//
//   - [SortDeferred]: submission order
//   - [SortTexture]: grouped by texture identity, stable
//   - [SortBackToFront]: descending depth, stable
//   - [SortFrontToBack]: ascending depth, stable
//
// # Coordinate System
//
// Origin (0,0) at top-left, X right, Y down, angles in radians. The projection
// follows [Batch.Resize].
package sprite
