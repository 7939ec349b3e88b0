package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunModes(t *testing.T) {
	tests := []struct {
		name     string
		sort     string
		useAtlas bool
		drawText bool
	}{
		{"deferred direct", "deferred", false, false},
		{"texture atlas", "texture", true, false},
		{"back to front with text", "backtofront", false, true},
		{"front to back atlas text", "fronttoback", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := options{
				sprites:   200,
				frames:    2,
				textures:  3,
				width:     320,
				height:    240,
				sort:      tt.sort,
				workers:   2,
				threshold: 64,
				useAtlas:  tt.useAtlas,
				drawText:  tt.drawText,
				seed:      7,
			}
			if err := run(o, quietLogger()); err != nil {
				t.Fatalf("run: %v", err)
			}
		})
	}
}

func TestRunWritesFrame(t *testing.T) {
	out := filepath.Join(t.TempDir(), "frame.png")
	o := options{
		sprites: 10, frames: 1, textures: 1, width: 64, height: 64,
		sort: "deferred", workers: 2, threshold: 512, out: out, seed: 1,
	}
	if err := run(o, quietLogger()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("frame not written: %v", err)
	}
}

func TestRunRejectsBadOptions(t *testing.T) {
	if err := run(options{sort: "random", textures: 1, width: 8, height: 8, workers: 1}, quietLogger()); err == nil {
		t.Error("unknown sort mode should fail")
	}
	if err := run(options{sort: "deferred", textures: 0, width: 8, height: 8, workers: 2, threshold: 512}, quietLogger()); err == nil {
		t.Error("zero textures should fail")
	}
}

func TestResultRates(t *testing.T) {
	var r result
	if r.perFrame() != 0 || r.spritesPerSecond() != 0 {
		t.Error("empty result should report zero rates")
	}
}
