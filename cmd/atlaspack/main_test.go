package main

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/sprite/atlas"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), A: 255})
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestRunPacksDirectory(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "atlas")
	writePNG(t, filepath.Join(in, "hero.png"), 32, 48)
	writePNG(t, filepath.Join(in, "tiles", "grass.png"), 16, 16)
	if err := os.WriteFile(filepath.Join(in, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(in, "broken.png"), []byte("not a png"), 0o644); err != nil {
		t.Fatal(err)
	}

	o := options{
		in:       in,
		out:      out,
		width:    atlas.MinAtlasDim,
		height:   atlas.MinAtlasDim,
		maxPages: 2,
		thumb:    64,
		manifest: "atlas.yaml",
		quiet:    true,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := run(o, logger); err != nil {
		t.Fatalf("run: %v", err)
	}

	for _, name := range []string{"page_0.png", "page_0_thumb.png", "atlas.yaml"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	f, err := os.Open(filepath.Join(out, "atlas.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	man, err := atlas.DecodeManifest(f)
	if err != nil {
		t.Fatalf("DecodeManifest: %v", err)
	}
	if len(man.Images) != 2 {
		t.Fatalf("images = %d, want 2 (broken.png skipped)", len(man.Images))
	}
	if man.Images[0].Name != "hero" || man.Images[1].Name != "tiles/grass" {
		t.Errorf("names = %q, %q", man.Images[0].Name, man.Images[1].Name)
	}
	if man.Images[0].Width != 32 || man.Images[0].Height != 48 {
		t.Errorf("hero size = %dx%d, want 32x48", man.Images[0].Width, man.Images[0].Height)
	}
	if man.Pages[0].Thumbnail != "page_0_thumb.png" {
		t.Errorf("thumbnail = %q", man.Pages[0].Thumbnail)
	}
}

func TestRunEmptyDirectory(t *testing.T) {
	o := options{in: t.TempDir(), out: t.TempDir(), width: 2048, height: 2048, maxPages: 1, quiet: true}
	if err := run(o, slog.New(slog.NewTextHandler(io.Discard, nil))); err == nil {
		t.Error("run on an empty directory should fail")
	}
}
