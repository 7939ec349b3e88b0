package text

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/go-text/typesetting/language"
	"github.com/gogpu/sprite"
	"github.com/gogpu/sprite/atlas"
	"github.com/gogpu/sprite/internal/cache"
	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// FaceOptions configures a Face.
type FaceOptions struct {
	// Size in points. Required.
	Size float64

	// DPI converts points to pixels. Default: 72, one pixel per point.
	DPI float64

	// Direction is the paragraph base direction. Default: DirectionAuto.
	Direction Direction

	// Language is a BCP 47 tag passed to the shaper. Default: "en".
	Language string

	// CacheSize bounds the number of rasterized glyphs kept in the glyph
	// atlas. Default: 1024.
	CacheSize int

	// Atlas configures the glyph atlas. Default: one 2048x2048 page, at
	// most 4.
	Atlas atlas.Config
}

func (o *FaceOptions) setDefaults() {
	if o.DPI == 0 {
		o.DPI = 72
	}
	if o.Language == "" {
		o.Language = "en"
	}
	if o.CacheSize == 0 {
		o.CacheSize = 1024
	}
	if o.Atlas == (atlas.Config{}) {
		o.Atlas = atlas.DefaultConfig()
		o.Atlas.MaxPages = 4
	}
}

// Metrics are vertical font metrics in pixels.
type Metrics struct {
	Ascent     float32
	Descent    float32
	LineHeight float32
}

// Face is a Font at one size. It implements sprite.GlyphSource.
//
// Face is safe for concurrent use.
type Face struct {
	font    *Font
	opts    FaceOptions
	ppem    fixed.Int26_6
	lang    language.Language
	creator sprite.TextureCreator

	mu     sync.Mutex
	buf    sfnt.Buffer
	glyphs *atlas.Manager
	pages  []sprite.BoundTexture
	cache  *cache.Cache[uint16, glyphEntry]
	seq    int
	closed bool

	// evicted collects glyphs dropped from the cache during one layout.
	// retired holds evicted glyphs the previous layout still drew; they
	// are erased when the next layout starts.
	evicted []evictedGlyph
	retired []string
}

type evictedGlyph struct {
	gid  uint16
	name string
}

// glyphEntry is the cached placement of a rasterized glyph.
type glyphEntry struct {
	handle atlas.Handle
	bounds sprite.Rect
	empty  bool
}

// NewFace creates a face drawing glyph pages through creator.
func NewFace(f *Font, creator sprite.TextureCreator, opts FaceOptions) (*Face, error) {
	if f == nil {
		return nil, ErrNilFont
	}
	if creator == nil {
		return nil, ErrNilCreator
	}
	opts.setDefaults()
	if opts.Size <= 0 || opts.DPI <= 0 {
		return nil, fmt.Errorf("%w: size %v at %v dpi", ErrInvalidSize, opts.Size, opts.DPI)
	}
	glyphs, err := atlas.NewManager(opts.Atlas)
	if err != nil {
		return nil, fmt.Errorf("text: glyph atlas: %w", err)
	}

	face := &Face{
		font:    f,
		opts:    opts,
		ppem:    floatToFixed(opts.Size * opts.DPI / 72),
		lang:    language.NewLanguage(opts.Language),
		creator: creator,
		glyphs:  glyphs,
		cache:   cache.New[uint16, glyphEntry](opts.CacheSize),
	}
	// Evicted glyphs are erased from their page once no layout draws
	// them. The space is reclaimed when the atlas fills up and is reset.
	face.cache.OnEvict(func(gid uint16, e glyphEntry) {
		if !e.empty {
			face.evicted = append(face.evicted, evictedGlyph{gid: gid, name: e.handle.Name})
		}
	})
	return face, nil
}

// Size returns the face size in points.
func (f *Face) Size() float64 {
	return f.opts.Size
}

// Metrics returns the vertical metrics of the face.
func (f *Face) Metrics() Metrics {
	f.mu.Lock()
	defer f.mu.Unlock()

	m, err := f.font.outlines.Metrics(&f.buf, f.ppem, font.HintingNone)
	if err != nil {
		return Metrics{}
	}
	return Metrics{
		Ascent:     fixedToFloat(m.Ascent),
		Descent:    fixedToFloat(m.Descent),
		LineHeight: fixedToFloat(m.Height),
	}
}

// Measure returns the advance width of s in pixels.
func (f *Face) Measure(s string) float32 {
	var w float32
	for _, r := range segment(s, f.opts.Direction) {
		for _, g := range shapeRun(f.font, r, f.ppem, f.lang) {
			w += g.advance
		}
	}
	return w
}

// placedGlyph is a laid out glyph waiting for its page texture.
type placedGlyph struct {
	page   int
	source sprite.Rect
	bounds sprite.Rect
}

// Glyphs lays out s on a baseline starting at the pen origin and calls fn
// for every visible glyph in visual order. New glyphs are rasterized into
// the glyph atlas and changed pages are uploaded before fn is called.
func (f *Face) Glyphs(s string, fn func(sprite.Glyph) error) error {
	placed, pages, err := f.layout(s)
	if err != nil {
		return err
	}
	for _, p := range placed {
		if err := fn(sprite.Glyph{
			Texture: pages[p.page],
			Source:  p.source,
			Bounds:  p.bounds,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (f *Face) layout(s string) ([]placedGlyph, []sprite.BoundTexture, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, nil, ErrFaceClosed
	}

	for _, name := range f.retired {
		f.glyphs.RemoveTexture(name)
	}
	f.retired = f.retired[:0]

	placed, used, err := f.place(s)
	if errors.Is(err, atlas.ErrAtlasFull) {
		// Start over with an empty atlas; the string alone must fit.
		sprite.Logger().Debug("text: glyph atlas full, resetting",
			"pages", f.glyphs.Pages(), "glyphs", f.cache.Len())
		f.cache.Clear()
		f.glyphs.Reset()
		f.evicted = f.evicted[:0]
		placed, used, err = f.place(s)
	}
	if err != nil {
		f.evicted = f.evicted[:0]
		return nil, nil, err
	}
	for _, ev := range f.evicted {
		if used[ev.gid] {
			f.retired = append(f.retired, ev.name)
		} else {
			f.glyphs.RemoveTexture(ev.name)
		}
	}
	f.evicted = f.evicted[:0]
	if err := f.upload(); err != nil {
		return nil, nil, err
	}
	return placed, f.pages, nil
}

// place shapes s and makes sure every glyph is in the atlas. It also
// returns the set of glyph ids s draws.
func (f *Face) place(s string) ([]placedGlyph, map[uint16]bool, error) {
	var placed []placedGlyph
	used := make(map[uint16]bool)
	var pen float32
	for _, r := range segment(s, f.opts.Direction) {
		for _, g := range shapeRun(f.font, r, f.ppem, f.lang) {
			e, err := f.glyph(g.gid)
			if err != nil {
				return nil, nil, err
			}
			used[g.gid] = true
			if !e.empty {
				placed = append(placed, placedGlyph{
					page:   e.handle.PageIndex,
					source: sprite.RectFromImage(e.handle.Source),
					bounds: e.bounds.Offset(sprite.Vec2{X: pen + g.xOff, Y: g.yOff}),
				})
			}
			pen += g.advance
		}
	}
	return placed, used, nil
}

// glyph returns the cached entry of gid, rasterizing it on a miss.
func (f *Face) glyph(gid uint16) (glyphEntry, error) {
	if e, ok := f.cache.Get(gid); ok {
		return e, nil
	}
	gi, err := rasterizeGlyph(f.font.outlines, &f.buf, gid, f.ppem)
	if err != nil {
		return glyphEntry{}, err
	}
	if gi.img == nil {
		e := glyphEntry{empty: true}
		f.cache.Set(gid, e)
		return e, nil
	}

	// A glyph evicted and rasterized again within one layout is packed
	// twice, so names carry a sequence number.
	f.seq++
	name := strconv.Itoa(int(gid)) + "_" + strconv.Itoa(f.seq)
	h, err := f.glyphs.AddImage(gi.img, name, 0)
	if err != nil {
		return glyphEntry{}, fmt.Errorf("text: pack glyph %d: %w", gid, err)
	}
	e := glyphEntry{handle: h, bounds: sprite.RectFromImage(gi.bounds)}
	f.cache.Set(gid, e)
	return e, nil
}

// upload creates or updates the page textures of dirty atlas pages.
func (f *Face) upload() error {
	for _, i := range f.glyphs.DirtyPages() {
		img := f.glyphs.Page(i).Image()
		if i < len(f.pages) {
			if err := f.creator.UpdateTexture(f.pages[i], img); err != nil {
				return fmt.Errorf("text: update glyph page %d: %w", i, err)
			}
		} else {
			tex, err := f.creator.NewTexture(img, "text_glyphs_"+strconv.Itoa(i))
			if err != nil {
				return fmt.Errorf("text: create glyph page %d: %w", i, err)
			}
			f.pages = append(f.pages, tex)
		}
		f.glyphs.MarkClean(i)
	}
	return nil
}

// CachedGlyphs returns the number of glyphs in the glyph cache.
func (f *Face) CachedGlyphs() int {
	return f.cache.Len()
}

// Close releases the glyph page textures.
func (f *Face) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}
	f.closed = true

	var errs []error
	for _, p := range f.pages {
		if r, ok := p.(sprite.Releaser); ok {
			errs = append(errs, r.Release())
		}
	}
	f.pages = nil
	f.evicted = nil
	f.retired = nil
	f.cache.Clear()
	f.glyphs.Reset()
	return errors.Join(errs...)
}
