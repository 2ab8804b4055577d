package glimmer

import (
	"strings"
	"testing"
	"time"
)

func newTestHost(ctx ScriptContext) (*ScriptHost, *Logger) {
	logger := &Logger{}
	return NewScriptHost(logger, nil, HostBridge{}, ctx), logger
}

func scriptedEntity(t *testing.T, s *Scene, name, script string) *Entity {
	t.Helper()
	e := NewEntity(name)
	e.Script = script
	if err := s.Add(e); err != nil {
		t.Fatal(err)
	}
	return e
}

func TestScriptMutatesEntity(t *testing.T) {
	h, _ := newTestHost(ScriptContextEditor)
	defer h.Close()

	s := NewScene()
	e := scriptedEntity(t, s, "mover", "entity.x = entity.x + 10 * dt\nentity.rotation = 90")
	e.Transform.Position = Vec2{5, 0}

	h.Run(s, NewInput(), 0.5)
	if !approx(e.Transform.Position.X, 10) {
		t.Errorf("x = %v, want 10", e.Transform.Position.X)
	}
	if e.Transform.Rotation != 90 {
		t.Errorf("rotation = %v, want 90", e.Transform.Rotation)
	}
}

func TestScriptFaultDoesNotBlockSiblings(t *testing.T) {
	h, logger := newTestHost(ScriptContextEditor)
	defer h.Close()

	s := NewScene()
	scriptedEntity(t, s, "broken", "error('boom')")
	ok := scriptedEntity(t, s, "fine", "entity.x = entity.x + 1")

	for i := 0; i < 3; i++ {
		h.Run(s, NewInput(), 1.0/60.0)
	}

	if ok.Transform.Position.X != 3 {
		t.Errorf("sibling ran %v frames, want 3", ok.Transform.Position.X)
	}
	found := false
	for _, r := range logger.Records() {
		if r.Kind == LogError && strings.Contains(r.Text, "broken") {
			found = true
		}
	}
	if !found {
		t.Error("script fault was not logged")
	}
}

func TestScriptCompileErrorIsIsolated(t *testing.T) {
	h, logger := newTestHost(ScriptContextEditor)
	defer h.Close()

	s := NewScene()
	scriptedEntity(t, s, "syntax", "this is not lua")
	ok := scriptedEntity(t, s, "fine", "entity.y = 7")

	h.Run(s, NewInput(), 1.0/60.0)
	if ok.Transform.Position.Y != 7 {
		t.Error("sibling blocked by a compile error")
	}
	if len(logger.Records()) == 0 {
		t.Error("compile error was not logged")
	}
}

func TestScriptVelocityRequiresPhysics(t *testing.T) {
	h, _ := newTestHost(ScriptContextEditor)
	defer h.Close()

	s := NewScene()
	e := scriptedEntity(t, s, "body", "entity.vx = 42")
	h.Run(s, NewInput(), 1.0/60.0)
	// No physics component: the write is dropped, not a fault.

	e.Physics = &PhysicsSpec{}
	h.Run(s, NewInput(), 1.0/60.0)
	if e.Physics.Velocity.X != 42 {
		t.Errorf("vx = %v, want 42", e.Physics.Velocity.X)
	}
}

func TestScriptPoolSpawn(t *testing.T) {
	h, _ := newTestHost(ScriptContextEditor)
	defer h.Close()

	s := NewScene()
	template := NewEntity("bullet")
	template.Transform.Position = Vec2{1, 2}
	if err := s.Add(template); err != nil {
		t.Fatal(err)
	}
	spawner := scriptedEntity(t, s, "gun",
		"local b = pool.spawn('"+template.ID+"')\nb.x = 99\nentity.y = pool.count()")

	h.Run(s, NewInput(), 1.0/60.0)
	if len(s.Entities) != 3 {
		t.Fatalf("entities = %d, want 3 after spawn", len(s.Entities))
	}
	spawned := s.Entities[2]
	if spawned.PrefabID != template.ID {
		t.Error("spawned entity does not record its prefab origin")
	}
	if spawned.Transform.Position.X != 99 {
		t.Error("spawned entity view is not writable")
	}
	if spawner.Transform.Position.Y != 3 {
		t.Errorf("pool.count() = %v, want 3", spawner.Transform.Position.Y)
	}
}

func TestScriptPrintGoesToLog(t *testing.T) {
	h, logger := newTestHost(ScriptContextEditor)
	defer h.Close()

	s := NewScene()
	scriptedEntity(t, s, "talker", "print('hello', 42)")
	h.Run(s, NewInput(), 1.0/60.0)

	recs := logger.Records()
	if len(recs) != 1 || recs[0].Text != "hello\t42" {
		t.Errorf("records = %+v, want one 'hello\\t42'", recs)
	}
}

func TestScriptSandboxStripsLoaders(t *testing.T) {
	h, _ := newTestHost(ScriptContextEditor)
	defer h.Close()

	s := NewScene()
	e := scriptedEntity(t, s, "probe",
		"if dofile == nil and loadfile == nil and load == nil and require == nil then entity.x = 1 end")
	h.Run(s, NewInput(), 1.0/60.0)
	if e.Transform.Position.X != 1 {
		t.Error("loading facilities leaked into the sandbox")
	}
}

func TestScriptAmbientGameOnlyInPlayerContext(t *testing.T) {
	probe := "if game == nil then entity.x = -1 else entity.x = 1 end"

	editor, _ := newTestHost(ScriptContextEditor)
	defer editor.Close()
	s := NewScene()
	e := scriptedEntity(t, s, "probe", probe)
	editor.Run(s, NewInput(), 1.0/60.0)
	if e.Transform.Position.X != -1 {
		t.Error("editor context should not expose the game global")
	}

	player, _ := newTestHost(ScriptContextPlayer)
	defer player.Close()
	s2 := NewScene()
	e2 := scriptedEntity(t, s2, "probe", probe)
	player.Run(s2, NewInput(), 1.0/60.0)
	if e2.Transform.Position.X != 1 {
		t.Error("player context should expose the game global")
	}
}

func TestScriptGameFindByName(t *testing.T) {
	h, _ := newTestHost(ScriptContextPlayer)
	defer h.Close()

	s := NewScene()
	other := NewEntity("door")
	other.Transform.Position = Vec2{77, 0}
	if err := s.Add(other); err != nil {
		t.Fatal(err)
	}
	e := scriptedEntity(t, s, "key", "local d = game.find('door')\nif d then entity.x = d.x end")

	h.Run(s, NewInput(), 1.0/60.0)
	if e.Transform.Position.X != 77 {
		t.Errorf("x = %v, want 77 via game.find", e.Transform.Position.X)
	}
}

func TestScriptRecompilesOnSourceChange(t *testing.T) {
	h, _ := newTestHost(ScriptContextEditor)
	defer h.Close()

	s := NewScene()
	e := scriptedEntity(t, s, "edit", "entity.x = 1")
	h.Run(s, NewInput(), 1.0/60.0)
	if e.Transform.Position.X != 1 {
		t.Fatal("initial script did not run")
	}

	e.Script = "entity.x = 2"
	h.Run(s, NewInput(), 1.0/60.0)
	if e.Transform.Position.X != 2 {
		t.Error("edited script source was not recompiled")
	}
}

func TestScriptBudgetStopsRunawayScript(t *testing.T) {
	h, logger := newTestHost(ScriptContextEditor)
	defer h.Close()
	h.Budget = 20 * time.Millisecond

	s := NewScene()
	scriptedEntity(t, s, "spin", "while true do end")

	done := make(chan struct{})
	go func() {
		h.Run(s, NewInput(), 1.0/60.0)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("budgeted script did not stop")
	}
	if len(logger.Records()) == 0 {
		t.Error("budget overrun was not logged")
	}
}
