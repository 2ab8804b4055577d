// The player runs an exported bundle stand-alone: it loads the self-contained
// document, hydrates every embedded asset, and drives the same simulation and
// render core as the editor inside a letterboxed fixed-virtual-resolution
// canvas, with an on-screen joystick and action button feeding the input
// contract.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"

	"github.com/phanxgames/glimmer"
	"github.com/phanxgames/glimmer/export"
)

type player struct {
	scene  *glimmer.Scene
	sim    *glimmer.Sim
	render *glimmer.Renderer
	input  *glimmer.Input
	stick  *glimmer.Joystick

	virtualW, virtualH int
	windowW, windowH   int
	canvas             *ebiten.Image
	fit                glimmer.Rect
}

func newPlayer(bundle *export.Bundle) (*player, error) {
	logger := &glimmer.Logger{Sink: func(rec glimmer.LogRecord) {
		log.Printf("[%s] %s", rec.Kind, rec.Text)
	}}

	scene, err := bundle.DecodeScene()
	if err != nil {
		return nil, err
	}

	render := glimmer.NewRenderer(logger)
	if err := bundle.Hydrate(render.Assets); err != nil {
		return nil, err
	}

	audioCtx := audio.NewContext(glimmer.DefaultSampleRate)
	audioPlayer := glimmer.NewAudioPlayer(audioCtx, render.Assets, logger)
	scripts := glimmer.NewScriptHost(logger, audioPlayer, glimmer.HostBridge{}, glimmer.ScriptContextPlayer)

	p := &player{
		scene:    scene,
		sim:      glimmer.NewSim(scene, logger, scripts),
		render:   render,
		input:    glimmer.NewInput(),
		stick:    glimmer.NewJoystick(),
		virtualW: bundle.VirtualWidth,
		virtualH: bundle.VirtualHeight,
		canvas:   ebiten.NewImage(bundle.VirtualWidth, bundle.VirtualHeight),
	}
	p.stick.Layout(float64(p.virtualW), float64(p.virtualH))
	p.stick.Transform = func(x, y float64) (float64, float64) {
		if p.fit.Width <= 0 {
			return x, y
		}
		scale := float64(p.virtualW) / p.fit.Width
		return (x - p.fit.X) * scale, (y - p.fit.Y) * scale
	}
	p.sim.Play()
	return p, nil
}

func (p *player) Update() error {
	p.input.ReadKeyboard()
	p.mapPointerToCanvas()
	p.stick.Update(p.input)
	p.sim.Step(p.input, 1.0/float64(ebiten.TPS()))
	return nil
}

// mapPointerToCanvas converts the window-space pointer position into virtual
// canvas coordinates so scripts and the joystick see one coordinate system
// regardless of the letterbox placement.
func (p *player) mapPointerToCanvas() {
	if p.fit.Width <= 0 || p.fit.Height <= 0 {
		return
	}
	scale := float64(p.virtualW) / p.fit.Width
	p.input.Pointer.X = (p.input.Pointer.X - p.fit.X) * scale
	p.input.Pointer.Y = (p.input.Pointer.Y - p.fit.Y) * scale
}

func (p *player) Draw(screen *ebiten.Image) {
	p.render.Draw(p.canvas, p.scene, p.sim)
	p.stick.Draw(p.canvas)

	// Scale-to-fit is recomputed every frame from the current window size,
	// so any resize immediately reflows the letterbox.
	p.fit = glimmer.FitRect(
		float64(p.windowW), float64(p.windowH),
		float64(p.virtualW), float64(p.virtualH),
	)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(p.fit.Width/float64(p.virtualW), p.fit.Height/float64(p.virtualH))
	op.GeoM.Translate(p.fit.X, p.fit.Y)
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(p.canvas, op)
}

func (p *player) Layout(outsideW, outsideH int) (int, int) {
	p.windowW, p.windowH = outsideW, outsideH
	return outsideW, outsideH
}

func main() {
	bundlePath := flag.String("bundle", "bundle.json", "exported bundle document")
	flag.Parse()

	data, err := os.ReadFile(*bundlePath)
	if err != nil {
		log.Fatalf("read bundle: %v", err)
	}
	bundle, err := export.Decode(data)
	if err != nil {
		log.Fatal(err)
	}

	p, err := newPlayer(bundle)
	if err != nil {
		log.Fatal(err)
	}

	ebiten.SetWindowTitle(bundle.Title)
	ebiten.SetWindowSize(bundle.VirtualWidth, bundle.VirtualHeight)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(p); err != nil {
		log.Fatal(err)
	}
}
