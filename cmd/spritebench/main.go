// Command spritebench measures batch throughput on a headless device.
//
// It draws random sprites (and optionally text) for a number of frames on
// the noop HAL device and reports CPU-side cost per frame:
//
//	spritebench -sprites 20000 -frames 120 -sort texture -text
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/sprite"
	"github.com/gogpu/sprite/atlas"
	"github.com/gogpu/sprite/backend/wgpu"
	"github.com/gogpu/sprite/text"
)

type options struct {
	sprites   int
	frames    int
	textures  int
	width     int
	height    int
	sort      string
	workers   int
	threshold int
	useAtlas  bool
	drawText  bool
	out       string
	seed      uint64
}

var sortModes = map[string]sprite.SortMode{
	"deferred":    sprite.SortDeferred,
	"texture":     sprite.SortTexture,
	"backtofront": sprite.SortBackToFront,
	"fronttoback": sprite.SortFrontToBack,
}

func main() {
	var o options
	flag.IntVar(&o.sprites, "sprites", 10000, "sprites per frame")
	flag.IntVar(&o.frames, "frames", 60, "frames to draw")
	flag.IntVar(&o.textures, "textures", 8, "distinct textures")
	flag.IntVar(&o.width, "width", 1280, "target width")
	flag.IntVar(&o.height, "height", 720, "target height")
	flag.StringVar(&o.sort, "sort", "texture", "sort mode: deferred, texture, backtofront, fronttoback")
	flag.IntVar(&o.workers, "workers", 2, "fill workers")
	flag.IntVar(&o.threshold, "threshold", 512, "parallel fill threshold")
	flag.BoolVar(&o.useAtlas, "atlas", false, "pack textures into an atlas texture array")
	flag.BoolVar(&o.drawText, "text", false, "draw a line of text per frame")
	flag.StringVar(&o.out, "out", "", "write the last frame to this PNG")
	flag.Uint64Var(&o.seed, "seed", 1, "random seed")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	sprite.SetLogger(logger)

	if err := run(o, logger); err != nil {
		logger.Error("spritebench failed", "err", err)
		os.Exit(1)
	}
}

// openNoop opens the first adapter of the noop HAL.
func openNoop() (hal.Device, hal.Queue, func(), error) {
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, nil, nil, errors.New("no adapters")
	}
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, nil, nil, fmt.Errorf("open adapter: %w", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup, nil
}

// result summarizes a benchmark run.
type result struct {
	frames    int
	sprites   int
	drawCalls int
	elapsed   time.Duration
}

func (r result) perFrame() time.Duration {
	if r.frames == 0 {
		return 0
	}
	return r.elapsed / time.Duration(r.frames)
}

func (r result) spritesPerSecond() float64 {
	if r.elapsed <= 0 {
		return 0
	}
	return float64(r.sprites) / r.elapsed.Seconds()
}

func run(o options, logger *slog.Logger) error {
	mode, ok := sortModes[o.sort]
	if !ok {
		return fmt.Errorf("unknown sort mode %q", o.sort)
	}
	halDev, halQueue, cleanup, err := openNoop()
	if err != nil {
		return err
	}
	defer cleanup()

	dev, err := wgpu.New(halDev, halQueue, wgpu.Config{})
	if err != nil {
		return err
	}
	defer dev.Close()

	textures, resolver, err := makeTextures(dev, o.textures, o.useAtlas)
	if err != nil {
		return err
	}

	cfg := sprite.DefaultConfig()
	cfg.Workers = o.workers
	cfg.ParallelThreshold = o.threshold
	opts := []sprite.Option{sprite.WithConfig(cfg)}
	if resolver != nil {
		opts = append(opts, sprite.WithResolver(resolver))
	}
	batch, err := sprite.NewBatch(dev, opts...)
	if err != nil {
		return err
	}
	defer batch.Close()
	if err := batch.Resize(o.width, o.height); err != nil {
		return err
	}

	var face *text.Face
	if o.drawText {
		face, err = newFace(dev)
		if err != nil {
			return err
		}
		defer face.Close()
	}

	target, err := dev.NewOffscreen(o.width, o.height, false)
	if err != nil {
		return err
	}
	defer target.Release()

	rng := rand.New(rand.NewPCG(o.seed, o.seed^0x9e3779b97f4a7c15))
	res, err := benchmark(o, mode, dev, batch, target, textures, face, rng)
	if err != nil {
		return err
	}

	hits, misses := dev.PipelineStats()
	logger.Info("spritebench done",
		"frames", res.frames,
		"sprites", res.sprites,
		"draw_calls", res.drawCalls,
		"frame_time", res.perFrame(),
		"sprites_per_sec", fmt.Sprintf("%.0f", res.spritesPerSecond()),
		"pipeline_hits", hits, "pipeline_misses", misses,
		"sort", mode.String())

	if o.out != "" {
		return writeFrame(dev, target, o.out)
	}
	return nil
}

func benchmark(o options, mode sprite.SortMode, dev *wgpu.Device, batch *sprite.Batch,
	target *wgpu.Offscreen, textures []sprite.Texture, face *text.Face, rng *rand.Rand,
) (result, error) {
	var res result
	w, h := float32(o.width), float32(o.height)
	start := time.Now()
	for frame := range o.frames {
		if err := dev.BeginFrame(target.Target(true, sprite.Color{A: 1})); err != nil {
			return res, err
		}
		// Slow camera sway around the target center.
		angle := float32(math.Sin(float64(frame)*0.05)) * 0.05
		camera := mgl32.Translate3D(w/2, h/2, 0).
			Mul4(mgl32.HomogRotate3DZ(angle)).
			Mul4(mgl32.Translate3D(-w/2, -h/2, 0))
		if err := batch.Begin(sprite.BeginOptions{SortMode: mode, Transform: camera}); err != nil {
			return res, err
		}
		for range o.sprites {
			tex := textures[rng.IntN(len(textures))]
			err := batch.Draw(tex, sprite.DrawOptions{
				Position: sprite.Vec2{X: rng.Float32() * w, Y: rng.Float32() * h},
				Origin:   sprite.Vec2{X: 8, Y: 8},
				Rotation: rng.Float32() * 2 * math.Pi,
				Depth:    rng.Float32(),
				Scale:    sprite.Vec2{X: 1, Y: 1},
				Color:    sprite.Color{R: rng.Float32(), G: rng.Float32(), B: rng.Float32(), A: 1},
				Opacity:  1,
			})
			if err != nil {
				return res, err
			}
		}
		if face != nil {
			label := fmt.Sprintf("frame %d: %d sprites", frame, o.sprites)
			if err := batch.DrawText(face, label, sprite.Vec2{X: 8, Y: 24}, sprite.White); err != nil {
				return res, err
			}
		}
		if err := batch.End(); err != nil {
			return res, err
		}
		if err := dev.EndFrame(); err != nil {
			return res, err
		}
		stats := batch.Stats()
		res.frames++
		res.sprites += stats.Sprites
		res.drawCalls += stats.DrawCalls
	}
	res.elapsed = time.Since(start)
	return res, nil
}

// makeTextures creates n 16x16 textures. With useAtlas the images are packed
// into one atlas page and drawn through an array resolver.
func makeTextures(dev *wgpu.Device, n int, useAtlas bool) ([]sprite.Texture, sprite.TextureResolver, error) {
	if n < 1 {
		return nil, nil, fmt.Errorf("need at least one texture, got %d", n)
	}
	images := make([]*image.RGBA, n)
	for i := range images {
		images[i] = checker(16, color.RGBA{
			R: uint8(40 + i*53%200),
			G: uint8(80 + i*97%160),
			B: uint8(120 + i*31%120),
			A: 255,
		})
	}

	textures := make([]sprite.Texture, n)
	if !useAtlas {
		for i, img := range images {
			t, err := dev.NewTexture(img, fmt.Sprintf("bench_%d", i))
			if err != nil {
				return nil, nil, err
			}
			textures[i] = t
		}
		return textures, nil, nil
	}

	m, err := atlas.NewManager(atlas.DefaultConfig())
	if err != nil {
		return nil, nil, err
	}
	for i, img := range images {
		if _, err := m.AddImage(img, fmt.Sprintf("bench_%d", i), 0); err != nil {
			return nil, nil, err
		}
	}
	if err := m.GenerateTextureArray(dev); err != nil {
		return nil, nil, err
	}
	resolver := sprite.NewArrayResolver(m)
	for i := range textures {
		t, ok := resolver.Texture(fmt.Sprintf("bench_%d", i))
		if !ok {
			return nil, nil, fmt.Errorf("atlas lost bench_%d", i)
		}
		textures[i] = t
	}
	return textures, resolver, nil
}

func checker(size int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := range size {
		for x := range size {
			if (x/4+y/4)%2 == 0 {
				img.SetRGBA(x, y, c)
			} else {
				img.SetRGBA(x, y, color.RGBA{R: c.R / 2, G: c.G / 2, B: c.B / 2, A: 255})
			}
		}
	}
	return img
}

func newFace(creator sprite.TextureCreator) (*text.Face, error) {
	f, err := text.NewFont(goregular.TTF)
	if err != nil {
		return nil, err
	}
	return text.NewFace(f, creator, text.FaceOptions{Size: 16})
}

func writeFrame(dev *wgpu.Device, target *wgpu.Offscreen, path string) error {
	img, err := dev.ReadPixels(target)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
