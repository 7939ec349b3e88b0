package sprite

import (
	"errors"
	"image"
	"image/color"
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/sprite/atlas"
)

func newTestBatch(t *testing.T, opts ...Option) (*Batch, *fakeDevice) {
	t.Helper()
	dev := &fakeDevice{}
	b, err := NewBatch(dev, opts...)
	if err != nil {
		t.Fatalf("NewBatch: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b, dev
}

func mustBegin(t *testing.T, b *Batch, opts BeginOptions) {
	t.Helper()
	if err := b.Begin(opts); err != nil {
		t.Fatalf("Begin: %v", err)
	}
}

func mustEnd(t *testing.T, b *Batch) {
	t.Helper()
	if err := b.End(); err != nil {
		t.Fatalf("End: %v", err)
	}
}

func mustDraw(t *testing.T, b *Batch, tex Texture, o DrawOptions) {
	t.Helper()
	if err := b.Draw(tex, o); err != nil {
		t.Fatalf("Draw: %v", err)
	}
}

func mustDrawAt(t *testing.T, b *Batch, tex Texture, pos Vec2) {
	t.Helper()
	if err := b.DrawAt(tex, pos, White); err != nil {
		t.Fatalf("DrawAt: %v", err)
	}
}

func TestNewBatchErrors(t *testing.T) {
	if _, err := NewBatch(nil); !errors.Is(err, ErrNilDevice) {
		t.Errorf("nil device: err = %v, want ErrNilDevice", err)
	}
	cfg := DefaultConfig()
	cfg.MaxBatchSize = MaxQuadsPerDraw + 1
	_, err := NewBatch(&fakeDevice{}, WithConfig(cfg))
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Field != "MaxBatchSize" {
		t.Errorf("oversized batch: err = %v, want MaxBatchSize ConfigError", err)
	}
}

func TestSessionProtocol(t *testing.T) {
	b, _ := newTestBatch(t)
	tex := newFakeTexture(1, 8, 8)

	if err := b.End(); !errors.Is(err, ErrNotBegun) {
		t.Errorf("End before Begin: err = %v, want ErrNotBegun", err)
	}
	if err := b.DrawAt(tex, Vec2{}, White); !errors.Is(err, ErrNotBegun) {
		t.Errorf("Draw before Begin: err = %v, want ErrNotBegun", err)
	}
	if err := b.DrawLine(Vec2{}, Vec2{X: 1}, White, 1, 1); !errors.Is(err, ErrNotBegun) {
		t.Errorf("DrawLine before Begin: err = %v, want ErrNotBegun", err)
	}
	if err := b.Begin(BeginOptions{SortMode: SortMode(42)}); !errors.Is(err, ErrUnknownSortMode) {
		t.Errorf("unknown sort mode: err = %v, want ErrUnknownSortMode", err)
	}

	mustBegin(t, b, BeginOptions{})
	if err := b.Begin(BeginOptions{}); !errors.Is(err, ErrAlreadyBegun) {
		t.Errorf("second Begin: err = %v, want ErrAlreadyBegun", err)
	}
	if err := b.Draw(nil, DrawOptions{}); !errors.Is(err, ErrNilTexture) {
		t.Errorf("nil texture: err = %v, want ErrNilTexture", err)
	}
	var typedNil *fakeTexture
	if err := b.Draw(typedNil, DefaultDrawOptions()); !errors.Is(err, ErrNilTexture) {
		t.Errorf("typed nil texture: err = %v, want ErrNilTexture", err)
	}
	if err := b.DrawAt(typedNil, Vec2{}, White); !errors.Is(err, ErrNilTexture) {
		t.Errorf("typed nil DrawAt: err = %v, want ErrNilTexture", err)
	}
	mustEnd(t, b)

	if err := b.End(); !errors.Is(err, ErrNotBegun) {
		t.Errorf("second End: err = %v, want ErrNotBegun", err)
	}

	_ = b.Close()
	if err := b.Begin(BeginOptions{}); !errors.Is(err, ErrBatchClosed) {
		t.Errorf("Begin after Close: err = %v, want ErrBatchClosed", err)
	}
}

func TestEmptySessionDrawsNothing(t *testing.T) {
	b, dev := newTestBatch(t)
	mustBegin(t, b, BeginOptions{})
	mustEnd(t, b)
	if len(dev.draws) != 0 {
		t.Errorf("draws = %d, want 0", len(dev.draws))
	}
}

func TestDeferredKeepsSubmissionOrder(t *testing.T) {
	b, dev := newTestBatch(t)
	texA := newFakeTexture(1, 8, 8)
	texB := newFakeTexture(2, 8, 8)

	mustBegin(t, b, BeginOptions{SortMode: SortDeferred})
	for i, tex := range []*fakeTexture{texA, texB, texA} {
		if err := b.DrawAt(tex, Vec2{X: float32(i * 10)}, White); err != nil {
			t.Fatal(err)
		}
	}
	mustEnd(t, b)

	if len(dev.draws) != 3 {
		t.Fatalf("draws = %d, want 3", len(dev.draws))
	}
	want := []any{texA, texB, texA}
	for i, dc := range dev.draws {
		if dc.binding != want[i] {
			t.Errorf("draw %d bound %v, want %v", i, dc.binding, want[i])
		}
	}
	if s := b.Stats(); s.Runs != 3 || s.DrawCalls != 3 || s.Sprites != 3 {
		t.Errorf("Stats() = %v", s)
	}
}

func TestTextureSortGroupsStably(t *testing.T) {
	b, dev := newTestBatch(t)
	texA := newFakeTexture(1, 8, 8)
	texB := newFakeTexture(2, 8, 8)

	mustBegin(t, b, BeginOptions{SortMode: SortTexture})
	mustDrawAt(t, b, texB, Vec2{X: 0})
	mustDrawAt(t, b, texA, Vec2{X: 10})
	mustDrawAt(t, b, texB, Vec2{X: 20})
	mustDrawAt(t, b, texA, Vec2{X: 30})
	mustEnd(t, b)

	if len(dev.draws) != 2 {
		t.Fatalf("draws = %d, want 2", len(dev.draws))
	}
	if dev.draws[0].binding != texA || dev.draws[1].binding != texB {
		t.Errorf("run order = %v, %v; want texA then texB", dev.draws[0].binding, dev.draws[1].binding)
	}
	// Within a run the submission order is kept.
	wantX := [][]float32{{10, 30}, {0, 20}}
	for run, dc := range dev.draws {
		for i, x := range wantX[run] {
			if got := dc.vertices[i*VerticesPerSprite].X; got != x {
				t.Errorf("run %d sprite %d x = %v, want %v", run, i, got, x)
			}
		}
	}
}

func TestDepthSortModes(t *testing.T) {
	tests := []struct {
		mode SortMode
		want []float32
	}{
		{SortBackToFront, []float32{0.9, 0.5, 0.5, 0.1}},
		{SortFrontToBack, []float32{0.1, 0.5, 0.5, 0.9}},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			b, dev := newTestBatch(t)
			tex := newFakeTexture(1, 8, 8)
			mustBegin(t, b, BeginOptions{SortMode: tt.mode})
			for i, depth := range []float32{0.1, 0.5, 0.9, 0.5} {
				o := DefaultDrawOptions()
				o.Position = Vec2{X: float32(i)}
				o.Depth = depth
				mustDraw(t, b, tex, o)
			}
			mustEnd(t, b)

			if len(dev.draws) != 1 {
				t.Fatalf("draws = %d, want 1", len(dev.draws))
			}
			vs := dev.draws[0].vertices
			for i, want := range tt.want {
				if got := vs[i*VerticesPerSprite].Depth; got != want {
					t.Errorf("sprite %d depth = %v, want %v", i, got, want)
				}
			}
			// Equal depths keep submission order: x=1 before x=3.
			x1, x2 := vs[1*VerticesPerSprite].X, vs[2*VerticesPerSprite].X
			if x1 != 1 || x2 != 3 {
				t.Errorf("equal-depth order x = %v, %v; want 1, 3", x1, x2)
			}
		})
	}
}

func TestVertexAndIndexCounts(t *testing.T) {
	modes := []SortMode{SortDeferred, SortTexture, SortBackToFront, SortFrontToBack}
	for _, mode := range modes {
		t.Run(mode.String(), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.MaxBatchSize = 7
			b, dev := newTestBatch(t, WithConfig(cfg))
			textures := []*fakeTexture{newFakeTexture(1, 4, 4), newFakeTexture(2, 4, 4), newFakeTexture(3, 4, 4)}

			const n = 50
			mustBegin(t, b, BeginOptions{SortMode: mode})
			for i := range n {
				o := DefaultDrawOptions()
				o.Depth = float32(i%5) / 5
				mustDraw(t, b, textures[i%3], o)
			}
			mustEnd(t, b)

			indices, vertices := dev.totals()
			if indices != IndicesPerSprite*n || vertices != VerticesPerSprite*n {
				t.Errorf("indices=%d vertices=%d, want %d and %d", indices, vertices, IndicesPerSprite*n, VerticesPerSprite*n)
			}
			for i, dc := range dev.draws {
				if dc.indexCount > IndicesPerSprite*cfg.MaxBatchSize {
					t.Errorf("draw %d has %d indices, over MaxBatchSize", i, dc.indexCount)
				}
			}
		})
	}
}

func TestSubBatchSplit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxBatchSize = 3
	b, dev := newTestBatch(t, WithConfig(cfg))
	tex := newFakeTexture(1, 4, 4)

	mustBegin(t, b, BeginOptions{})
	for range 7 {
		mustDrawAt(t, b, tex, Vec2{})
	}
	mustEnd(t, b)

	want := []int{18, 18, 6}
	if len(dev.draws) != len(want) {
		t.Fatalf("draws = %d, want %d", len(dev.draws), len(want))
	}
	for i, dc := range dev.draws {
		if dc.indexCount != want[i] {
			t.Errorf("draw %d indexCount = %d, want %d", i, dc.indexCount, want[i])
		}
	}
	if s := b.Stats(); s.Runs != 1 || s.DrawCalls != 3 {
		t.Errorf("Stats() = %v, want 1 run and 3 draws", s)
	}
}

func TestParallelFillMatchesSequential(t *testing.T) {
	draw := func(threshold int) []Vertex {
		cfg := DefaultConfig()
		cfg.ParallelThreshold = threshold
		b, dev := newTestBatch(t, WithConfig(cfg))
		tex := newFakeTexture(1, 16, 16)
		mustBegin(t, b, BeginOptions{})
		for i := range 101 {
			o := DefaultDrawOptions()
			o.Position = Vec2{X: float32(i), Y: float32(2 * i)}
			o.Rotation = float32(i) * 0.1
			o.Origin = Vec2{X: 8, Y: 8}
			mustDraw(t, b, tex, o)
		}
		mustEnd(t, b)
		if len(dev.draws) != 1 {
			t.Fatalf("draws = %d, want 1", len(dev.draws))
		}
		return dev.draws[0].vertices
	}

	sequential := draw(1 << 20)
	parallel := draw(2)
	if len(sequential) != len(parallel) {
		t.Fatalf("vertex counts differ: %d vs %d", len(sequential), len(parallel))
	}
	for i := range sequential {
		if sequential[i] != parallel[i] {
			t.Fatalf("vertex %d differs: %+v vs %+v", i, sequential[i], parallel[i])
		}
	}
}

func TestQueueGrowth(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitialQueueCapacity = 4
	b, dev := newTestBatch(t, WithConfig(cfg))
	tex := newFakeTexture(1, 4, 4)

	mustBegin(t, b, BeginOptions{})
	for i := range 5 {
		mustDrawAt(t, b, tex, Vec2{X: float32(i)})
	}
	if got := b.queue.capacity(); got != 8 {
		t.Errorf("capacity = %d, want 8", got)
	}
	if b.queue.grows != 1 {
		t.Errorf("grows = %d, want 1", b.queue.grows)
	}
	for i := range 5 {
		if got := b.queue.sprites[i].Destination.X; got != float32(i) {
			t.Errorf("entry %d x = %v, want %d", i, got, i)
		}
	}
	mustEnd(t, b)

	if _, vertices := dev.totals(); vertices != 20 {
		t.Errorf("vertices = %d, want 20", vertices)
	}

	// Storage is kept across sessions.
	mustBegin(t, b, BeginOptions{})
	if b.Len() != 0 || b.queue.capacity() != 8 {
		t.Errorf("after End: len=%d cap=%d, want 0 and 8", b.Len(), b.queue.capacity())
	}
	mustEnd(t, b)
}

func TestConcurrentDraws(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitialQueueCapacity = 1
	b, dev := newTestBatch(t, WithConfig(cfg))
	textures := []*fakeTexture{newFakeTexture(1, 4, 4), newFakeTexture(2, 4, 4)}

	const goroutines, perGoroutine = 8, 250
	mustBegin(t, b, BeginOptions{SortMode: SortTexture})

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := range goroutines {
		go func() {
			defer wg.Done()
			for i := range perGoroutine {
				if err := b.DrawAt(textures[g%2], Vec2{X: float32(i)}, White); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	if got := b.Len(); got != goroutines*perGoroutine {
		t.Fatalf("Len() = %d, want %d", got, goroutines*perGoroutine)
	}
	mustEnd(t, b)

	if _, vertices := dev.totals(); vertices != goroutines*perGoroutine*VerticesPerSprite {
		t.Errorf("vertices = %d, want %d", vertices, goroutines*perGoroutine*VerticesPerSprite)
	}
	if s := b.Stats(); s.Runs != 2 {
		t.Errorf("runs = %d, want 2", s.Runs)
	}
}

func TestResizeIdempotent(t *testing.T) {
	b, _ := newTestBatch(t)
	if err := b.Resize(800, 600); err != nil {
		t.Fatal(err)
	}
	first := b.Projection()
	if err := b.Resize(800, 600); err != nil {
		t.Fatal(err)
	}
	if b.Projection() != first {
		t.Error("second Resize changed the projection")
	}
	if b.xRatio != 1.0/800 || b.yRatio != -1.0/600 {
		t.Errorf("ratios = %v, %v", b.xRatio, b.yRatio)
	}
	if err := b.Resize(0, 600); !errors.Is(err, ErrInvalidViewport) {
		t.Errorf("Resize(0, 600): err = %v, want ErrInvalidViewport", err)
	}
	if w, h := b.Viewport(); w != 800 || h != 600 {
		t.Errorf("Viewport() = %dx%d after rejected resize", w, h)
	}
}

func TestProjectionMapsViewportCorners(t *testing.T) {
	p := Projection(1.0/800, -1.0/600)
	tests := []struct {
		in   mgl32.Vec4
		want mgl32.Vec2
	}{
		{mgl32.Vec4{0, 0, 0, 1}, mgl32.Vec2{-1, 1}},
		{mgl32.Vec4{800, 600, 0, 1}, mgl32.Vec2{1, -1}},
		{mgl32.Vec4{400, 300, 0, 1}, mgl32.Vec2{0, 0}},
	}
	for _, tt := range tests {
		got := p.Mul4x1(tt.in)
		if !mgl32.FloatEqualThreshold(got.X(), tt.want.X(), 1e-6) ||
			!mgl32.FloatEqualThreshold(got.Y(), tt.want.Y(), 1e-6) {
			t.Errorf("Projection * %v = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestEndSetsStateAndTransform(t *testing.T) {
	b, dev := newTestBatch(t)
	_ = b.Resize(100, 100)
	state := State{Blend: BlendAdditive, Sampler: SamplerPointClamp, Scissor: image.Rect(0, 0, 10, 10)}

	mustBegin(t, b, BeginOptions{State: state, Transform: Translate(5, 0)})
	mustDrawAt(t, b, newFakeTexture(1, 4, 4), Vec2{})
	mustEnd(t, b)

	if len(dev.states) != 1 || dev.states[0] != state {
		t.Errorf("states = %v, want [%v]", dev.states, state)
	}
	want := Projection(0.01, -0.01).Mul4(Translate(5, 0))
	if dev.transform != want {
		t.Errorf("transform = %v, want %v", dev.transform, want)
	}
}

func TestWorldViewProjectionOrder(t *testing.T) {
	b, dev := newTestBatch(t)
	_ = b.Resize(100, 100)
	world := Scale(2, 2)
	view := Translate(10, 0)

	mustBegin(t, b, BeginOptions{Transform: world, View: view})
	mustDrawAt(t, b, newFakeTexture(1, 4, 4), Vec2{})
	mustEnd(t, b)

	want := Projection(0.01, -0.01).Mul4(view).Mul4(world)
	if dev.transform != want {
		t.Errorf("transform = %v, want projection * view * world %v", dev.transform, want)
	}
	// World applies first: x=5 scales to 10, then the view moves it to 20.
	p := dev.transform.Mul4x1(mgl32.Vec4{5, 0, 0, 1})
	if !mgl32.FloatEqualThreshold(p.X(), 20*0.02-1, 1e-6) {
		t.Errorf("clip x = %v, want %v", p.X(), 20*0.02-1)
	}

	mustBegin(t, b, BeginOptions{View: view})
	mustDrawAt(t, b, newFakeTexture(1, 4, 4), Vec2{})
	mustEnd(t, b)
	if want := Projection(0.01, -0.01).Mul4(view); dev.transform != want {
		t.Errorf("view only: transform = %v, want %v", dev.transform, want)
	}
}

func TestMapFailureUnwinds(t *testing.T) {
	b, dev := newTestBatch(t)
	dev.mapErr = errors.New("device lost")
	mustBegin(t, b, BeginOptions{})
	mustDrawAt(t, b, newFakeTexture(1, 4, 4), Vec2{})
	if err := b.End(); err == nil {
		t.Fatal("End succeeded with failing map")
	}
	// The session is closed and the queue emptied.
	if b.Len() != 0 {
		t.Errorf("Len() = %d after failed End", b.Len())
	}
	dev.mapErr = nil
	mustBegin(t, b, BeginOptions{})
	mustEnd(t, b)
}

func TestDrawNegativeDestinationFlips(t *testing.T) {
	b, _ := newTestBatch(t)
	tex := newFakeTexture(1, 10, 10)
	mustBegin(t, b, BeginOptions{})
	if err := b.DrawRect(tex, Rect{X: 20, Y: 0, Width: -10, Height: 10}, White); err != nil {
		t.Fatal(err)
	}

	s := b.queue.sprites[0]
	if s.Destination.Width != 10 || s.Effects != FlipHorizontal || s.Origin.X != 1 {
		t.Errorf("folded sprite = %+v", s)
	}
	var vs [4]Vertex
	writeSprite(vs[:], &s, &b.queue.textures[0], false)
	// Covers x in [10, 20] with the texture mirrored.
	if vs[0].X != 10 || vs[1].X != 20 {
		t.Errorf("x range = %v..%v, want 10..20", vs[0].X, vs[1].X)
	}
	if vs[0].U != 1 || vs[1].U != 0 {
		t.Errorf("u range = %v..%v, want 1..0", vs[0].U, vs[1].U)
	}
	mustEnd(t, b)
}

func TestDrawLineGeometry(t *testing.T) {
	b, _ := newTestBatch(t)
	mustBegin(t, b, BeginOptions{})
	if err := b.DrawLine(Vec2{}, Vec2{X: 10}, White, 2, 1); err != nil {
		t.Fatal(err)
	}
	s := b.queue.sprites[0]
	if s.Destination != (Rect{Width: 10, Height: 2}) {
		t.Errorf("destination = %v, want 10x2 at origin", s.Destination)
	}
	if s.Rotation != 0 {
		t.Errorf("rotation = %v, want 0", s.Rotation)
	}
	if s.Origin != (Vec2{Y: 0.5}) {
		t.Errorf("origin = %v, want (0, 0.5)", s.Origin)
	}
	mustEnd(t, b)
}

func TestZeroColorAndOpacityAreTransparent(t *testing.T) {
	b, dev := newTestBatch(t)
	tex := newFakeTexture(1, 4, 4)
	mustBegin(t, b, BeginOptions{})
	if err := b.DrawFillRectangle(R(0, 0, 10, 10), Transparent, 1); err != nil {
		t.Fatal(err)
	}
	mustDraw(t, b, tex, DrawOptions{Destination: R(0, 0, 4, 4), Color: RGBA(1, 0, 0, 1), Opacity: 0})
	if err := b.DrawLine(Vec2{}, Vec2{X: 10}, White, 2, 0); err != nil {
		t.Fatal(err)
	}
	if err := b.DrawFillTriangle(Vec2{}, Vec2{X: 5}, Vec2{Y: 5}, White, 0); err != nil {
		t.Fatal(err)
	}
	half := DefaultDrawOptions()
	half.Color = RGBA(1, 0, 0, 1)
	half.Opacity = 0.5
	mustDraw(t, b, tex, half)
	mustEnd(t, b)

	var vs []Vertex
	for _, dc := range dev.draws {
		vs = append(vs, dc.vertices...)
	}
	if len(vs) != 5*VerticesPerSprite {
		t.Fatalf("vertices = %d, want %d", len(vs), 5*VerticesPerSprite)
	}
	for i, v := range vs[:4*VerticesPerSprite] {
		if v.A != 0 || v.R != 0 {
			t.Errorf("vertex %d color = (%v,%v,%v,%v), want transparent", i, v.R, v.G, v.B, v.A)
		}
	}
	if v := vs[4*VerticesPerSprite]; v.A != 0.5 || v.R != 0.5 {
		t.Errorf("half opacity color = (%v,%v,%v,%v), want premultiplied red at 0.5", v.R, v.G, v.B, v.A)
	}
}

func TestDefaultDrawOptions(t *testing.T) {
	b, _ := newTestBatch(t)
	mustBegin(t, b, BeginOptions{})
	o := DefaultDrawOptions()
	o.Position = Vec2{X: 3, Y: 4}
	mustDraw(t, b, newFakeTexture(1, 8, 6), o)
	s := b.queue.sprites[0]
	if s.Destination != R(3, 4, 8, 6) {
		t.Errorf("destination = %v, want 8x6 at (3,4)", s.Destination)
	}
	if s.Color != White || s.Opacity != 1 {
		t.Errorf("color = %v opacity = %v, want White and 1", s.Color, s.Opacity)
	}
	mustEnd(t, b)
}

func TestShapeVertexCountErrors(t *testing.T) {
	b, _ := newTestBatch(t)
	mustBegin(t, b, BeginOptions{})
	defer mustEnd(t, b)

	if err := b.DrawPolygon([]Vec2{{}}, White, 1, 1); !errors.Is(err, ErrVertexCount) {
		t.Errorf("1-point polygon: err = %v, want ErrVertexCount", err)
	}
	if err := b.DrawFillPolygon([]Vec2{{}, {X: 1}}, White, 1); !errors.Is(err, ErrVertexCount) {
		t.Errorf("2-point fill: err = %v, want ErrVertexCount", err)
	}
	if err := b.DrawCircle(Vec2{}, 5, 2, White, 1, 1); !errors.Is(err, ErrInvalidSegments) {
		t.Errorf("2-segment circle: err = %v, want ErrInvalidSegments", err)
	}
	if err := b.DrawArc(Vec2{}, 5, 0, 1, 0, White, 1, 1); !errors.Is(err, ErrInvalidSegments) {
		t.Errorf("0-segment arc: err = %v, want ErrInvalidSegments", err)
	}
	if b.Len() != 0 {
		t.Errorf("failed shapes queued %d entries", b.Len())
	}
}

func TestShapeEntryCounts(t *testing.T) {
	square := []Vec2{{}, {X: 10}, {X: 10, Y: 10}, {Y: 10}}
	pentagon := arcPoints(Vec2{}, 10, 0, 6.2831855, 5, false)

	tests := []struct {
		name string
		draw func(b *Batch) error
		want int
	}{
		{"line", func(b *Batch) error { return b.DrawLine(Vec2{}, Vec2{X: 5}, White, 1, 1) }, 1},
		{"fill rectangle", func(b *Batch) error { return b.DrawFillRectangle(R(0, 0, 5, 5), White, 1) }, 1},
		{"rectangle", func(b *Batch) error { return b.DrawRectangle(R(0, 0, 10, 10), White, 1, 1) }, 4},
		{"polygon 2", func(b *Batch) error { return b.DrawPolygon(square[:2], White, 1, 1) }, 1},
		{"polygon 4", func(b *Batch) error { return b.DrawPolygon(square, White, 1, 1) }, 4},
		{"fill polygon 4", func(b *Batch) error { return b.DrawFillPolygon(square, White, 1) }, 2},
		{"fill polygon 5", func(b *Batch) error { return b.DrawFillPolygon(pentagon, White, 1) }, 3},
		{"triangle", func(b *Batch) error { return b.DrawTriangle(square[0], square[1], square[2], White, 1, 1) }, 3},
		{"fill triangle", func(b *Batch) error { return b.DrawFillTriangle(square[0], square[1], square[2], White, 1) }, 1},
		{"circle", func(b *Batch) error { return b.DrawCircle(Vec2{}, 10, 12, White, 1, 1) }, 12},
		{"fill circle", func(b *Batch) error { return b.DrawFillCircle(Vec2{}, 10, 12, White, 1) }, 10},
		{"arc", func(b *Batch) error { return b.DrawArc(Vec2{}, 10, 0, 1, 4, White, 1, 1) }, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, dev := newTestBatch(t)
			mustBegin(t, b, BeginOptions{})
			if err := tt.draw(b); err != nil {
				t.Fatal(err)
			}
			if got := b.Len(); got != tt.want {
				t.Errorf("queued %d entries, want %d", got, tt.want)
			}
			mustEnd(t, b)
			if indices, _ := dev.totals(); indices != tt.want*IndicesPerSprite {
				t.Errorf("indices = %d, want %d", indices, tt.want*IndicesPerSprite)
			}
		})
	}
}

func TestShapesWithoutDeviceResources(t *testing.T) {
	b, err := NewBatch(bareDevice{d: &fakeDevice{}})
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()
	mustBegin(t, b, BeginOptions{})
	if err := b.DrawFillRectangle(R(0, 0, 1, 1), White, 1); !errors.Is(err, ErrNoDeviceResources) {
		t.Errorf("err = %v, want ErrNoDeviceResources", err)
	}
	mustEnd(t, b)
}

func TestSharedDeviceResources(t *testing.T) {
	dev := &fakeDevice{}
	res, err := NewDeviceResources(dev)
	if err != nil {
		t.Fatal(err)
	}
	b1, _ := NewBatch(dev, WithDeviceResources(res))
	b2, _ := NewBatch(dev, WithDeviceResources(res))
	if b1.Resources().WhiteTexture() != b2.Resources().WhiteTexture() {
		t.Error("batches do not share the white texture")
	}
	_ = b1.Close()
	_ = b2.Close()
	white := res.WhiteTexture().(*fakeTexture)
	if white.released {
		t.Error("batch closed shared resources")
	}
	if err := res.Close(); err != nil {
		t.Fatal(err)
	}
	if !white.released {
		t.Error("Close did not release the white texture")
	}
}

type fakeGlyphs struct {
	tex *fakeTexture
}

func (g fakeGlyphs) Glyphs(text string, fn func(Glyph) error) error {
	x := float32(0)
	for _, r := range text {
		if r == ' ' {
			x += 4
			continue
		}
		if err := fn(Glyph{
			Texture: g.tex,
			Source:  R(0, 0, 4, 6),
			Bounds:  R(x, -6, 4, 6),
		}); err != nil {
			return err
		}
		x += 5
	}
	return nil
}

func TestDrawText(t *testing.T) {
	b, _ := newTestBatch(t)
	src := fakeGlyphs{tex: newFakeTexture(9, 64, 64)}

	if err := b.DrawText(src, "hi", Vec2{}, White); !errors.Is(err, ErrNotBegun) {
		t.Errorf("DrawText before Begin: err = %v, want ErrNotBegun", err)
	}

	mustBegin(t, b, BeginOptions{})
	if err := b.DrawText(src, "ab c", Vec2{X: 100, Y: 50}, Black); err != nil {
		t.Fatal(err)
	}
	if b.Len() != 3 {
		t.Fatalf("queued %d glyphs, want 3", b.Len())
	}
	third := b.queue.sprites[2]
	if third.Destination != R(114, 44, 4, 6) {
		t.Errorf("third glyph destination = %v", third.Destination)
	}
	mustEnd(t, b)
}

type stubArray struct {
	id       uint64
	released bool
}

func (a *stubArray) Binding() any   { return a }
func (a *stubArray) ID() uint64     { return a.id }
func (a *stubArray) Layers() int    { return 1 }
func (a *stubArray) Release() error { a.released = true; return nil }

type stubArrayCreator struct{}

func (stubArrayCreator) NewTextureArray(pages []*image.RGBA, _ string) (atlas.TextureArray, error) {
	return &stubArray{id: 77}, nil
}

func packedImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.White)
	return img
}

func TestArrayResolverSharesOneRun(t *testing.T) {
	mgr, err := atlas.NewManager(atlas.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	resolver := NewArrayResolver(mgr)
	b, dev := newTestBatch(t, WithResolver(resolver))

	for _, name := range []string{"a", "b"} {
		if _, err := mgr.AddImage(packedImage(16, 16), name, 0); err != nil {
			t.Fatal(err)
		}
	}

	texA, ok := resolver.Texture("a")
	if !ok {
		t.Fatal("Texture(a) not found")
	}
	mustBegin(t, b, BeginOptions{})
	if err := b.DrawAt(texA, Vec2{}, White); !errors.Is(err, ErrNoTextureArray) {
		t.Errorf("draw before array: err = %v, want ErrNoTextureArray", err)
	}
	mustEnd(t, b)

	if err := mgr.GenerateTextureArray(stubArrayCreator{}); err != nil {
		t.Fatal(err)
	}
	texB, _ := resolver.Texture("b")
	plain := newFakeTexture(5, 4, 4)

	mustBegin(t, b, BeginOptions{SortMode: SortTexture})
	mustDrawAt(t, b, texA, Vec2{})
	mustDrawAt(t, b, plain, Vec2{})
	mustDrawAt(t, b, texB, Vec2{})
	mustEnd(t, b)

	if len(dev.draws) != 2 {
		t.Fatalf("draws = %d, want 2 (one array run, one plain)", len(dev.draws))
	}
	var arrayDraw drawCall
	for _, dc := range dev.draws {
		if _, ok := dc.binding.(*stubArray); ok {
			arrayDraw = dc
		}
	}
	if arrayDraw.indexCount != 2*IndicesPerSprite {
		t.Fatalf("array draw has %d indices, want %d", arrayDraw.indexCount, 2*IndicesPerSprite)
	}

	// Texture coordinates address the packed rectangles on the page.
	w, h := mgr.PageSize()
	for i, name := range []string{"a", "b"} {
		hd, _ := mgr.Lookup(name)
		u0, v0, u1, v1 := hd.UV(w, h)
		vs := arrayDraw.vertices[i*VerticesPerSprite:]
		if vs[0].U != u0 || vs[0].V != v0 || vs[2].U != u1 || vs[2].V != v1 {
			t.Errorf("%s uv = (%v,%v)-(%v,%v), want (%v,%v)-(%v,%v)",
				name, vs[0].U, vs[0].V, vs[2].U, vs[2].V, u0, v0, u1, v1)
		}
		if vs[0].Layer != float32(hd.PageIndex) {
			t.Errorf("%s layer = %v, want %d", name, vs[0].Layer, hd.PageIndex)
		}
		// Drawn at its packed size.
		if vs[2].X-vs[0].X != 16 {
			t.Errorf("%s width = %v, want 16", name, vs[2].X-vs[0].X)
		}
	}
}

func TestDirectResolverCaches(t *testing.T) {
	r := NewDirectResolver()
	tex := newFakeTexture(3, 20, 10)
	info, err := r.Resolve(tex)
	if err != nil {
		t.Fatal(err)
	}
	if info.ID != 3 || info.Width != 20 || info.TexelScale != (Vec2{X: 0.05, Y: 0.1}) {
		t.Errorf("info = %+v", info)
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
	r.Forget(tex)
	if r.Len() != 0 {
		t.Errorf("Len() after Forget = %d", r.Len())
	}
	if _, err := r.Resolve(AtlasTexture{}); !errors.Is(err, ErrUnboundTexture) {
		t.Errorf("unbound texture: err = %v, want ErrUnboundTexture", err)
	}
}
