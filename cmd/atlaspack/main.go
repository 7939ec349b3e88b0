// Command atlaspack packs a directory of images into atlas pages.
//
// It writes one PNG per page, optional thumbnails, and a YAML manifest
// listing every packed image:
//
//	atlaspack -in sprites/ -out build/atlas -width 4096 -thumb 256
package main

import (
	"errors"
	"flag"
	"fmt"
	"image/png"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/schollz/progressbar/v3"

	"github.com/gogpu/sprite/atlas"
)

type options struct {
	in       string
	out      string
	width    int
	height   int
	maxPages int
	thumb    int
	manifest string
	quiet    bool
}

func main() {
	var o options
	flag.StringVar(&o.in, "in", ".", "input directory")
	flag.StringVar(&o.out, "out", "atlas", "output directory")
	flag.IntVar(&o.width, "width", atlas.MinAtlasDim, "page width")
	flag.IntVar(&o.height, "height", atlas.MinAtlasDim, "page height")
	flag.IntVar(&o.maxPages, "max-pages", 16, "maximum number of pages")
	flag.IntVar(&o.thumb, "thumb", 0, "thumbnail size in pixels (0 disables)")
	flag.StringVar(&o.manifest, "manifest", "atlas.yaml", "manifest file name")
	flag.BoolVar(&o.quiet, "q", false, "no progress bar")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	atlas.SetLogger(logger)

	if err := run(o, logger); err != nil {
		logger.Error("atlaspack failed", "err", err)
		os.Exit(1)
	}
}

func run(o options, logger *slog.Logger) error {
	files, err := collect(o.in)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no images in %s", o.in)
	}

	cfg := atlas.Config{Width: o.width, Height: o.height, MaxPages: o.maxPages}.Clamped()
	m, err := atlas.NewManager(cfg)
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	if !o.quiet {
		bar = progressbar.Default(int64(len(files)), "packing")
		defer bar.Close()
	}
	var skipped int
	for _, f := range files {
		err := pack(m, o.in, f)
		if bar != nil {
			_ = bar.Add(1)
		}
		var full *atlas.FullError
		switch {
		case err == nil:
		case errors.As(err, &full):
			return err
		default:
			skipped++
			logger.Warn("image skipped", "file", f, "err", err)
		}
	}

	if err := os.MkdirAll(o.out, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	man := m.BuildManifest(func(i int) string { return fmt.Sprintf("page_%d.png", i) })
	for i := range man.Pages {
		if err := writePage(m.Page(i), filepath.Join(o.out, man.Pages[i].File)); err != nil {
			return err
		}
		if o.thumb > 0 {
			name := fmt.Sprintf("page_%d_thumb.png", i)
			thumb := imaging.Fit(m.Page(i).Image(), o.thumb, o.thumb, imaging.Lanczos)
			if err := imaging.Save(thumb, filepath.Join(o.out, name)); err != nil {
				return fmt.Errorf("save thumbnail %s: %w", name, err)
			}
			man.Pages[i].Thumbnail = name
		}
	}
	if err := writeManifest(filepath.Join(o.out, o.manifest), man); err != nil {
		return err
	}

	logger.Info("atlas packed",
		"images", m.Len(), "skipped", skipped, "pages", m.Pages(),
		"utilization", fmt.Sprintf("%.1f%%", m.Utilization()*100), "out", o.out)
	return nil
}

// imageExts lists the extensions atlas.Decode understands.
var imageExts = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp"}

// collect returns the image files under dir, relative and sorted.
func collect(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !slices.Contains(imageExts, strings.ToLower(filepath.Ext(path))) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	slices.Sort(files)
	return files, nil
}

// pack adds one file under its extension-less relative path.
func pack(m *atlas.Manager, dir, rel string) error {
	f, err := os.Open(filepath.Join(dir, filepath.FromSlash(rel)))
	if err != nil {
		return err
	}
	defer f.Close()
	name := strings.TrimSuffix(rel, filepath.Ext(rel))
	_, err = m.AddTexture(f, name, 0)
	return err
}

func writePage(p *atlas.Atlas, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, p.Image()); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

func writeManifest(path string, man atlas.Manifest) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := atlas.EncodeManifest(f, man); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
