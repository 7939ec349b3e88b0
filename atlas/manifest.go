package atlas

import (
	"fmt"
	"image"
	"io"

	"gopkg.in/yaml.v3"
)

// ManifestVersion is the version written by EncodeManifest.
const ManifestVersion = 1

// Manifest describes packed pages and the images inside them. It is the
// on-disk index written next to exported page images.
type Manifest struct {
	Version    int             `yaml:"version"`
	PageWidth  int             `yaml:"page_width"`
	PageHeight int             `yaml:"page_height"`
	Pages      []ManifestPage  `yaml:"pages"`
	Images     []ManifestImage `yaml:"images"`
}

// ManifestPage is one exported page.
type ManifestPage struct {
	File        string  `yaml:"file"`
	Thumbnail   string  `yaml:"thumbnail,omitempty"`
	Images      int     `yaml:"images"`
	Utilization float64 `yaml:"utilization"`
}

// ManifestImage is one packed image.
type ManifestImage struct {
	Name   string     `yaml:"name"`
	Page   int        `yaml:"page"`
	X      int        `yaml:"x"`
	Y      int        `yaml:"y"`
	Width  int        `yaml:"width"`
	Height int        `yaml:"height"`
	UV     [4]float32 `yaml:"uv,flow"`
}

// Handle returns the handle described by the entry.
func (e ManifestImage) Handle() Handle {
	return Handle{
		PageIndex: e.Page,
		Name:      e.Name,
		Source:    image.Rect(e.X, e.Y, e.X+e.Width, e.Y+e.Height),
	}
}

// BuildManifest describes the current contents of m. pageFile names the
// exported image of page i.
func (m *Manager) BuildManifest(pageFile func(i int) string) Manifest {
	w, h := m.PageSize()
	man := Manifest{
		Version:    ManifestVersion,
		PageWidth:  w,
		PageHeight: h,
	}
	for i := range m.Pages() {
		p := m.Page(i)
		man.Pages = append(man.Pages, ManifestPage{
			File:        pageFile(i),
			Images:      p.Len(),
			Utilization: p.Utilization(),
		})
	}
	for _, hd := range m.Handles() {
		u0, v0, u1, v1 := hd.UV(w, h)
		man.Images = append(man.Images, ManifestImage{
			Name:   hd.Name,
			Page:   hd.PageIndex,
			X:      hd.Source.Min.X,
			Y:      hd.Source.Min.Y,
			Width:  hd.Source.Dx(),
			Height: hd.Source.Dy(),
			UV:     [4]float32{u0, v0, u1, v1},
		})
	}
	return man
}

// EncodeManifest writes man as YAML.
func EncodeManifest(w io.Writer, man Manifest) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&man); err != nil {
		return fmt.Errorf("atlas: encode manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("atlas: close manifest: %w", err)
	}
	return nil
}

// DecodeManifest reads a YAML manifest and checks its version and page
// references.
func DecodeManifest(r io.Reader) (Manifest, error) {
	var man Manifest
	if err := yaml.NewDecoder(r).Decode(&man); err != nil {
		return Manifest{}, fmt.Errorf("atlas: decode manifest: %w", err)
	}
	if man.Version != ManifestVersion {
		return Manifest{}, fmt.Errorf("%w: version %d", ErrInvalidManifest, man.Version)
	}
	for _, img := range man.Images {
		if img.Page < 0 || img.Page >= len(man.Pages) {
			return Manifest{}, fmt.Errorf("%w: image %q on page %d of %d",
				ErrInvalidManifest, img.Name, img.Page, len(man.Pages))
		}
	}
	return man, nil
}
