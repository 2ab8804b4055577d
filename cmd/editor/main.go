// The editor hosts the glimmer core interactively: a scene canvas with
// pointer-driven select/drag/resize/pan/zoom, play-in-place simulation, bundle
// export, and autosave through cross-platform local storage.
//
// Keys: Tab play/stop, N new entity, D duplicate selection as prefab copy,
// Backspace delete selection, Ctrl+S save, Ctrl+E export bundle.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/pkg/profile"
	"github.com/quasilyte/gdata/v2"

	"github.com/phanxgames/glimmer"
	"github.com/phanxgames/glimmer/export"
)

const (
	autosaveObject = "scenes"
	autosaveProp   = "autosave"
)

func audioContext() *audio.Context {
	if ctx := audio.CurrentContext(); ctx != nil {
		return ctx
	}
	return audio.NewContext(glimmer.DefaultSampleRate)
}

type editor struct {
	cfg     Config
	scene   *glimmer.Scene
	sim     *glimmer.Sim
	logger  *glimmer.Logger
	render  *glimmer.Renderer
	input   *glimmer.Input
	interac *glimmer.Interaction

	scenePath string
	storage   *gdata.Manager
	lastSave  time.Time
}

func newEditor(cfg Config, scenePath string, storage *gdata.Manager) *editor {
	logger := &glimmer.Logger{Sink: func(rec glimmer.LogRecord) {
		log.Printf("[%s] %s", rec.Kind, rec.Text)
	}}

	scene := loadScene(scenePath, storage, logger)
	render := glimmer.NewRenderer(logger)
	sounds := glimmer.NewAudioPlayer(audioContext(), render.Assets, logger)
	scripts := glimmer.NewScriptHost(logger, sounds, glimmer.HostBridge{}, glimmer.ScriptContextEditor)
	scripts.Budget = time.Duration(cfg.ScriptBudgetMillis) * time.Millisecond

	return &editor{
		cfg:       cfg,
		scene:     scene,
		sim:       glimmer.NewSim(scene, logger, scripts),
		logger:    logger,
		render:    render,
		input:     glimmer.NewInput(),
		interac:   glimmer.NewInteraction(scene),
		scenePath: scenePath,
		storage:   storage,
		lastSave:  time.Now(),
	}
}

func loadScene(path string, storage *gdata.Manager, logger *glimmer.Logger) *glimmer.Scene {
	var data []byte
	switch {
	case path != "":
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			log.Fatalf("read scene: %v", err)
		}
	case storage != nil && storage.ObjectPropExists(autosaveObject, autosaveProp):
		var err error
		data, err = storage.LoadObjectProp(autosaveObject, autosaveProp)
		if err != nil {
			logger.Warn("autosave load failed: %v", err)
		}
	}
	if data == nil {
		return glimmer.NewScene()
	}
	scene, err := glimmer.DecodeScene(data)
	if err != nil {
		log.Fatalf("decode scene: %v", err)
	}
	return scene
}

func (ed *editor) Update() error {
	ed.input.ReadKeyboard()
	ed.handleKeys()

	if ed.sim.Playing() {
		ed.sim.Step(ed.input, 1.0/float64(ebiten.TPS()))
	} else {
		ed.handlePointer()
		ed.autosave()
	}
	return nil
}

func (ed *editor) handleKeys() {
	ctrl := ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyMeta)

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyTab):
		if ed.sim.Playing() {
			ed.sim.Stop()
		} else {
			ed.sim.Play()
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyN) && !ed.sim.Playing():
		e := glimmer.NewEntity(fmt.Sprintf("entity %d", len(ed.scene.Entities)+1))
		cx, cy := float64(ed.cfg.WindowWidth)/2, float64(ed.cfg.WindowHeight)/2
		e.Transform.Position = glimmer.ResolveCamera(ed.scene).ScreenToWorld(cx, cy,
			float64(ed.cfg.WindowWidth), float64(ed.cfg.WindowHeight))
		if err := ed.scene.Add(e); err == nil {
			ed.interac.Selected = e.ID
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyD) && !ed.sim.Playing():
		if sel := ed.scene.Find(ed.interac.Selected); sel != nil {
			ed.interac.Selected = ed.scene.Instantiate(sel).ID
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyBackspace) && !ed.sim.Playing():
		if ed.scene.Remove(ed.interac.Selected) {
			ed.interac.Selected = ""
		}
	case ctrl && inpututil.IsKeyJustPressed(ebiten.KeyS):
		ed.save()
	case ctrl && inpututil.IsKeyJustPressed(ebiten.KeyE):
		ed.exportBundle()
	}
}

func (ed *editor) handlePointer() {
	ed.interac.CanvasW = float64(ed.cfg.WindowWidth)
	ed.interac.CanvasH = float64(ed.cfg.WindowHeight)
	ed.interac.DPR = ebiten.Monitor().DeviceScaleFactor()

	x, y := ed.input.Pointer.X, ed.input.Pointer.Y
	switch {
	case ed.input.PointerPressed:
		ed.interac.PointerDown(x, y)
	case ed.input.PointerDown:
		ed.interac.PointerMove(x, y)
	default:
		ed.interac.PointerUp()
	}

	if _, wy := ebiten.Wheel(); wy != 0 {
		ed.interac.Wheel(wy)
	}
}

func (ed *editor) autosave() {
	if ed.storage == nil || ed.cfg.AutosaveSeconds <= 0 {
		return
	}
	if time.Since(ed.lastSave) < time.Duration(ed.cfg.AutosaveSeconds)*time.Second {
		return
	}
	ed.lastSave = time.Now()
	data, err := ed.scene.Encode()
	if err != nil {
		ed.logger.Error("autosave: %v", err)
		return
	}
	if err := ed.storage.SaveObjectProp(autosaveObject, autosaveProp, data); err != nil {
		ed.logger.Error("autosave: %v", err)
	}
}

func (ed *editor) save() {
	data, err := ed.scene.Encode()
	if err != nil {
		ed.logger.Error("save: %v", err)
		return
	}
	path := ed.scenePath
	if path == "" {
		path = "scene.json"
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		ed.logger.Error("save: %v", err)
		return
	}
	ed.logger.Log("saved %s", path)
}

func (ed *editor) exportBundle() {
	bundle, err := export.Build(ed.scene, export.Options{
		Title:         ed.cfg.Export.Title,
		VirtualWidth:  ed.cfg.Export.VirtualWidth,
		VirtualHeight: ed.cfg.Export.VirtualHeight,
		ExtraAudio:    ed.cfg.Export.Audio,
	})
	if err != nil {
		ed.logger.Error("export: %v", err)
		return
	}
	if err := bundle.WriteFile("bundle.json"); err != nil {
		ed.logger.Error("export: %v", err)
		return
	}
	ed.logger.Log("exported bundle.json")
}

func (ed *editor) Draw(screen *ebiten.Image) {
	ed.render.Draw(screen, ed.scene, ed.sim)

	if !ed.sim.Playing() {
		ed.drawSelection(screen)
	}

	status := "editing — Tab to play"
	if ed.sim.Playing() {
		status = "playing — Tab to stop"
	}
	ebitenutil.DebugPrint(screen, status)
}

// drawSelection outlines the selected entity (its live working copy while a
// gesture is in flight) and draws the four resize handles.
func (ed *editor) drawSelection(screen *ebiten.Image) {
	sel := ed.interac.Working()
	if sel == nil {
		sel = ed.scene.Find(ed.interac.Selected)
	}
	if sel == nil {
		return
	}
	for _, p := range ed.interac.Handles(sel) {
		vector.DrawFilledCircle(screen, float32(p.X), float32(p.Y), 5, selectionColor, true)
	}
}

var selectionColor = color.RGBA{R: 90, G: 180, B: 255, A: 255}

func (ed *editor) Layout(outsideW, outsideH int) (int, int) {
	ed.cfg.WindowWidth = outsideW
	ed.cfg.WindowHeight = outsideH
	return outsideW, outsideH
}

func main() {
	scenePath := flag.String("scene", "", "scene JSON file to open (default: autosave)")
	configPath := flag.String("config", "editor.yaml", "editor config file")
	profileMode := flag.String("profile", "", "enable profiling: cpu or mem")
	flag.Parse()

	switch *profileMode {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	storage, err := gdata.Open(gdata.Config{AppName: "glimmer-editor"})
	if err != nil {
		// Degraded mode: no autosave, everything else works.
		log.Printf("local storage unavailable: %v", err)
		storage = nil
	}

	ed := newEditor(cfg, *scenePath, storage)

	ebiten.SetWindowTitle("glimmer editor")
	ebiten.SetWindowSize(cfg.WindowWidth, cfg.WindowHeight)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(ed); err != nil {
		log.Fatal(err)
	}
}
