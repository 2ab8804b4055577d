package glimmer

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// drawTilemap draws an entity's tile layers in order. The map's top-left
// corner sits at the entity position; entity scale and rotation apply to the
// whole map. Drawing is skipped until the tileset image is cached.
//
// Empty cells are marked with a negative index. Indices address the tileset
// left-to-right, top-to-bottom.
func (r *Renderer) drawTilemap(screen *ebiten.Image, cam Camera, e *Entity, cw, ch float64) {
	tm := e.Tilemap
	if tm.TileSize <= 0 || tm.Cols <= 0 || tm.Rows <= 0 {
		return
	}
	tileset := r.texture(tm.Tileset)
	if tileset == nil {
		return
	}
	setCols := tileset.Bounds().Dx() / tm.TileSize
	if setCols <= 0 {
		return
	}

	pos := cam.ScreenPosition(e, cw, ch)
	zoom := cam.Zoom
	if e.Transform.IsUI {
		zoom = 1
	}
	size := float64(tm.TileSize)
	rot := Deg2Rad(e.Transform.Rotation)

	for _, layer := range tm.Layers {
		for i, idx := range layer {
			if idx < 0 || i >= tm.Cols*tm.Rows {
				continue
			}
			sx := tileset.Bounds().Min.X + (idx%setCols)*tm.TileSize
			sy := tileset.Bounds().Min.Y + (idx/setCols)*tm.TileSize
			tile := tileset.SubImage(image.Rect(sx, sy, sx+tm.TileSize, sy+tm.TileSize)).(*ebiten.Image)

			col := float64(i % tm.Cols)
			row := float64(i / tm.Cols)

			op := &ebiten.DrawImageOptions{}
			op.GeoM.Translate(col*size, row*size)
			op.GeoM.Scale(e.Transform.Scale.X*zoom, e.Transform.Scale.Y*zoom)
			op.GeoM.Rotate(rot)
			op.GeoM.Translate(pos.X, pos.Y)
			screen.DrawImage(tile, op)
		}
	}
}
