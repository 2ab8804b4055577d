package glimmer

import (
	"bytes"
	"image"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/goregular"
)

const defaultFontSize = 16

// Renderer draws a scene to an ebiten image. It owns the session's image
// asset cache and the ebiten-side texture cache built from it; both live
// exactly as long as the renderer (one editor session or one player run),
// never as process-wide globals.
//
// Draw order: all non-UI entities in scene order under the camera transform,
// each immediately followed by its own live particles, then all UI entities
// in scene order anchored to the canvas. UI is always on top. Entities whose
// sprite or tileset has not finished loading are skipped without placeholder.
type Renderer struct {
	Assets *AssetCache
	logger *Logger

	images     map[string]*ebiten.Image
	whitePixel *ebiten.Image
	fontSource *text.GoTextFaceSource
}

// NewRenderer creates a renderer with a fresh asset cache.
func NewRenderer(logger *Logger) *Renderer {
	src, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		// goregular.TTF is embedded and well-formed; reaching this means a
		// toolchain problem, not a runtime condition worth plumbing.
		log.Printf("glimmer: load embedded font: %v", err)
	}
	return &Renderer{
		Assets:     NewAssetCache(logger),
		logger:     logger,
		images:     make(map[string]*ebiten.Image),
		fontSource: src,
	}
}

// Draw renders the scene. sim may be nil (editor, stopped); particles are
// drawn only when a live simulation provides pools.
func (r *Renderer) Draw(screen *ebiten.Image, scene *Scene, sim *Sim) {
	screen.Fill(scene.Background.toRGBA())

	bounds := screen.Bounds()
	cw, ch := float64(bounds.Dx()), float64(bounds.Dy())
	cam := ResolveCamera(scene)

	for _, e := range scene.Entities {
		if e.Transform.IsUI {
			continue
		}
		r.drawEntity(screen, cam, e, cw, ch)
		if sim != nil {
			if pool := sim.Pool(e.ID); pool != nil {
				r.drawParticles(screen, cam, e, pool, cw, ch)
			}
		}
	}
	for _, e := range scene.Entities {
		if !e.Transform.IsUI {
			continue
		}
		r.drawEntity(screen, cam, e, cw, ch)
	}
}

// drawEntity dispatches on the renderer descriptor. Entities without one are
// invisible but still simulate.
func (r *Renderer) drawEntity(screen *ebiten.Image, cam Camera, e *Entity, cw, ch float64) {
	if e.Tilemap != nil {
		r.drawTilemap(screen, cam, e, cw, ch)
	}
	spec := e.Render
	if spec == nil {
		return
	}

	pos := cam.ScreenPosition(e, cw, ch)
	zoom := cam.Zoom
	if e.Transform.IsUI {
		zoom = 1
	}

	switch spec.Shape {
	case ShapeCircle:
		radius := spec.Width * e.Transform.Scale.X / 2 * zoom
		vector.DrawFilledCircle(screen, float32(pos.X), float32(pos.Y), float32(radius), spec.Color.toRGBA(), true)
	case ShapeSprite:
		r.drawSprite(screen, e, pos, zoom)
	case ShapeText:
		r.drawText(screen, spec.Text, spec, pos, zoom)
	case ShapeButton:
		r.drawQuad(screen, e, pos, zoom)
		r.drawText(screen, spec.Text, spec, pos, zoom)
	default:
		r.drawQuad(screen, e, pos, zoom)
	}
}

// drawQuad draws a solid rectangle centered on pos, honoring rotation and
// non-uniform scale, by transforming the shared 1x1 white pixel.
func (r *Renderer) drawQuad(screen *ebiten.Image, e *Entity, pos Vec2, zoom float64) {
	spec := e.Render
	w := spec.Width * e.Transform.Scale.X * zoom
	h := spec.Height * e.Transform.Scale.Y * zoom
	if w <= 0 || h <= 0 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(w, h)
	op.GeoM.Translate(-w/2, -h/2)
	op.GeoM.Rotate(Deg2Rad(e.Transform.Rotation))
	op.GeoM.Translate(pos.X, pos.Y)
	op.ColorScale.ScaleWithColor(spec.Color.toRGBA())
	screen.DrawImage(r.white(), op)
}

// drawSprite draws the current sheet frame sized to the descriptor's
// width/height. Skipped until the sheet image is cached.
func (r *Renderer) drawSprite(screen *ebiten.Image, e *Entity, pos Vec2, zoom float64) {
	spec := e.Render
	img := r.texture(spec.Sprite)
	if img == nil {
		return
	}

	frame := img
	fw, fh := float64(img.Bounds().Dx()), float64(img.Bounds().Dy())
	if spec.Cols > 0 && spec.Rows > 0 {
		frame = sheetFrame(img, spec.Cols, spec.Rows, spec.Frame)
		fw = float64(img.Bounds().Dx()) / float64(spec.Cols)
		fh = float64(img.Bounds().Dy()) / float64(spec.Rows)
	}
	if fw <= 0 || fh <= 0 {
		return
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(
		spec.Width/fw*e.Transform.Scale.X*zoom,
		spec.Height/fh*e.Transform.Scale.Y*zoom,
	)
	op.GeoM.Translate(
		-spec.Width*e.Transform.Scale.X*zoom/2,
		-spec.Height*e.Transform.Scale.Y*zoom/2,
	)
	op.GeoM.Rotate(Deg2Rad(e.Transform.Rotation))
	op.GeoM.Translate(pos.X, pos.Y)
	screen.DrawImage(frame, op)
}

// drawText renders a centered label with the embedded default face.
func (r *Renderer) drawText(screen *ebiten.Image, label string, spec *RenderSpec, pos Vec2, zoom float64) {
	if label == "" || r.fontSource == nil {
		return
	}
	size := spec.FontSize
	if size <= 0 {
		size = defaultFontSize
	}
	face := &text.GoTextFace{Source: r.fontSource, Size: size * zoom}
	w, h := text.Measure(label, face, 0)

	op := &text.DrawOptions{}
	op.GeoM.Translate(pos.X-w/2, pos.Y-h/2)
	op.ColorScale.ScaleWithColor(spec.Color.toRGBA())
	text.Draw(screen, label, face, op)
}

// drawParticles draws an entity's live particles in world space, sharing the
// owning entity's parallax adjustment. Color is the emitter's start color;
// alpha follows remaining life, size interpolates over elapsed life.
func (r *Renderer) drawParticles(screen *ebiten.Image, cam Camera, e *Entity, pool *emitterPool, cw, ch float64) {
	spec := e.Emitter
	parallax := 1.0
	if e.Render != nil {
		parallax = e.Render.ParallaxFactor()
	}
	view := cam.viewMatrix(cw, ch)
	offset := cam.Follow.Mul(parallax)

	for i := 0; i < pool.alive; i++ {
		pt := &pool.particles[i]
		size, alpha := pt.visual(spec)
		if size <= 0 || alpha <= 0 {
			continue
		}
		sx, sy := transformPoint(view, pt.x-offset.X, pt.y-offset.Y)
		clr := spec.StartColor.WithAlpha(alpha)
		vector.DrawFilledCircle(screen, float32(sx), float32(sy), float32(size/2*cam.Zoom), clr.toRGBA(), true)
	}
}

// texture returns the ebiten image for a URL, materializing it from the asset
// cache on first use. nil while the fetch is pending or failed.
func (r *Renderer) texture(url string) *ebiten.Image {
	if url == "" {
		return nil
	}
	if img, ok := r.images[url]; ok {
		return img
	}
	decoded := r.Assets.Image(url)
	if decoded == nil {
		return nil
	}
	img := ebiten.NewImageFromImage(decoded)
	r.images[url] = img
	return img
}

func (r *Renderer) white() *ebiten.Image {
	if r.whitePixel == nil {
		r.whitePixel = ebiten.NewImage(1, 1)
		r.whitePixel.Fill(ColorWhite.toRGBA())
	}
	return r.whitePixel
}

// sheetFrame returns the sub-image for one frame of a cols x rows sprite
// sheet. Out-of-range frame indices wrap.
func sheetFrame(img *ebiten.Image, cols, rows, frame int) *ebiten.Image {
	total := cols * rows
	if total <= 0 {
		return img
	}
	frame = ((frame % total) + total) % total
	fw := img.Bounds().Dx() / cols
	fh := img.Bounds().Dy() / rows
	x := img.Bounds().Min.X + (frame%cols)*fw
	y := img.Bounds().Min.Y + (frame/cols)*fh
	return img.SubImage(image.Rect(x, y, x+fw, y+fh)).(*ebiten.Image)
}
