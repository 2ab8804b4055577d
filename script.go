package glimmer

import (
	"context"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// HostBridge is the capability-restricted surface scripts reach the host
// through. All fields are optional; absent capabilities are no-ops.
type HostBridge struct {
	// Haptic triggers device vibration for the given duration.
	Haptic func(d time.Duration)
}

// ScriptHost runs per-entity scripts inside an embedded Lua interpreter with
// a fixed, whitelisted capability set. One interpreter is shared by all
// entities of a session; scripts receive their arguments explicitly on every
// call and have no ambient access to the host beyond what the sandbox opens.
//
// Faults are isolated per entity, per frame: a script that throws is logged
// and skipped, and the remaining entities still run this frame and every
// frame after.
type ScriptHost struct {
	L       *lua.LState
	logger  *Logger
	audio   *AudioPlayer
	bridge  HostBridge
	scene   *Scene
	input   *Input
	ambient bool

	// Budget bounds the interpreter time spent per frame across all scripts.
	// Zero means unbounded (the documented single-threaded contract); hosts
	// may opt in as a mitigation against non-returning scripts.
	Budget time.Duration

	compiled map[string]compiledScript
}

type compiledScript struct {
	source string
	fn     *lua.LFunction
}

// ScriptContext selects which ambient globals a session's scripts see.
type ScriptContext uint8

const (
	// ScriptContextEditor withholds ambient host globals.
	ScriptContextEditor ScriptContext = iota
	// ScriptContextPlayer exposes the ambient "game" table to scripts, as the
	// exported bundle does.
	ScriptContextPlayer
)

// NewScriptHost creates the sandboxed interpreter. Only the base, table,
// string, and math libraries are opened; loading facilities (dofile, load,
// loadstring) are stripped, and print is rerouted to the log stream.
func NewScriptHost(logger *Logger, audio *AudioPlayer, bridge HostBridge, ctx ScriptContext) *ScriptHost {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "collectgarbage"} {
		L.SetGlobal(name, lua.LNil)
	}

	h := &ScriptHost{
		L:        L,
		logger:   logger,
		audio:    audio,
		bridge:   bridge,
		ambient:  ctx == ScriptContextPlayer,
		compiled: make(map[string]compiledScript),
	}

	L.SetGlobal("print", L.NewFunction(func(L *lua.LState) int {
		top := L.GetTop()
		text := ""
		for i := 1; i <= top; i++ {
			if i > 1 {
				text += "\t"
			}
			text += L.ToStringMeta(L.Get(i)).String()
		}
		logger.Log("%s", text)
		return 0
	}))

	return h
}

// Close releases the interpreter.
func (h *ScriptHost) Close() {
	h.L.Close()
}

// Run executes every non-empty entity script in scene order. The scene and
// input snapshot are captured for the duration of the call so sandbox
// callbacks (pool, ambient globals) resolve against the live frame state.
func (h *ScriptHost) Run(s *Scene, in *Input, dt float64) {
	h.scene = s
	h.input = in
	defer func() { h.scene = nil; h.input = nil }()

	if h.ambient {
		h.L.SetGlobal("game", h.gameTable(s))
	}

	var cancel context.CancelFunc
	if h.Budget > 0 {
		var ctx context.Context
		ctx, cancel = context.WithTimeout(context.Background(), h.Budget)
		h.L.SetContext(ctx)
	}

	inputTable := h.inputTable(in)
	bridgeTable := h.bridgeTable()
	audioTable := h.audioTable()
	poolTable := h.poolTable()

	// Instantiation during the walk appends to s.Entities; iterate by index
	// over the original length so freshly pooled entities first run next
	// frame.
	n := len(s.Entities)
	for i := 0; i < n; i++ {
		e := s.Entities[i]
		if e.Script == "" {
			continue
		}
		fn, err := h.compile(e)
		if err != nil {
			h.logger.Error("script %s: %v", e.Name, err)
			continue
		}
		h.L.Push(fn)
		h.L.Push(h.entityTable(e))
		h.L.Push(inputTable)
		h.L.Push(lua.LNumber(dt))
		h.L.Push(bridgeTable)
		h.L.Push(audioTable)
		h.L.Push(poolTable)
		if err := h.L.PCall(6, 0, nil); err != nil {
			h.logger.Error("script %s: %v", e.Name, err)
		}
	}

	if cancel != nil {
		cancel()
		h.L.RemoveContext()
	}
}

// compile wraps the script body in a function taking the fixed parameter
// list and caches the result until the source changes.
func (h *ScriptHost) compile(e *Entity) (*lua.LFunction, error) {
	if c, ok := h.compiled[e.ID]; ok && c.source == e.Script {
		return c.fn, nil
	}
	wrapped := "return function(entity, input, dt, bridge, audio, pool)\n" + e.Script + "\nend"
	chunk, err := h.L.LoadString(wrapped)
	if err != nil {
		return nil, err
	}
	h.L.Push(chunk)
	if err := h.L.PCall(0, 1, nil); err != nil {
		return nil, err
	}
	fn, ok := h.L.Get(-1).(*lua.LFunction)
	h.L.Pop(1)
	if !ok {
		return nil, errNotAFunction
	}
	h.compiled[e.ID] = compiledScript{source: e.Script, fn: fn}
	return fn, nil
}

var errNotAFunction = &scriptError{"script did not compile to a function"}

type scriptError struct{ msg string }

func (e *scriptError) Error() string { return e.msg }

// entityTable exposes a mutable view of the entity: transform fields plus
// velocity and emitter toggles where those components exist. Reads and
// writes go straight to the entity through closures; scripts never hold a
// Go pointer.
func (h *ScriptHost) entityTable(e *Entity) *lua.LTable {
	L := h.L
	t := L.NewTable()

	mt := L.NewTable()
	L.SetField(mt, "__index", L.NewFunction(func(L *lua.LState) int {
		key := L.CheckString(2)
		switch key {
		case "id":
			L.Push(lua.LString(e.ID))
		case "name":
			L.Push(lua.LString(e.Name))
		case "x":
			L.Push(lua.LNumber(e.Transform.Position.X))
		case "y":
			L.Push(lua.LNumber(e.Transform.Position.Y))
		case "rotation":
			L.Push(lua.LNumber(e.Transform.Rotation))
		case "scaleX":
			L.Push(lua.LNumber(e.Transform.Scale.X))
		case "scaleY":
			L.Push(lua.LNumber(e.Transform.Scale.Y))
		case "vx":
			if e.Physics != nil {
				L.Push(lua.LNumber(e.Physics.Velocity.X))
			} else {
				L.Push(lua.LNil)
			}
		case "vy":
			if e.Physics != nil {
				L.Push(lua.LNumber(e.Physics.Velocity.Y))
			} else {
				L.Push(lua.LNil)
			}
		case "emitting":
			if e.Emitter != nil {
				L.Push(lua.LBool(e.Emitter.Emitting))
			} else {
				L.Push(lua.LNil)
			}
		default:
			L.Push(lua.LNil)
		}
		return 1
	}))
	L.SetField(mt, "__newindex", L.NewFunction(func(L *lua.LState) int {
		key := L.CheckString(2)
		switch key {
		case "x":
			e.Transform.Position.X = float64(L.CheckNumber(3))
		case "y":
			e.Transform.Position.Y = float64(L.CheckNumber(3))
		case "rotation":
			e.Transform.Rotation = float64(L.CheckNumber(3))
		case "scaleX":
			e.Transform.Scale.X = float64(L.CheckNumber(3))
		case "scaleY":
			e.Transform.Scale.Y = float64(L.CheckNumber(3))
		case "vx":
			if e.Physics != nil {
				e.Physics.Velocity.X = float64(L.CheckNumber(3))
			}
		case "vy":
			if e.Physics != nil {
				e.Physics.Velocity.Y = float64(L.CheckNumber(3))
			}
		case "emitting":
			if e.Emitter != nil {
				e.Emitter.Emitting = lua.LVAsBool(L.Get(3))
			}
		}
		return 0
	}))
	L.SetMetatable(t, mt)
	return t
}

// inputTable exposes the frame's input snapshot: x, y, action fields plus
// down(name) and pressed(name) queries and pointer coordinates.
func (h *ScriptHost) inputTable(in *Input) *lua.LTable {
	L := h.L
	t := L.NewTable()
	L.SetField(t, "x", lua.LNumber(in.Axis.X))
	L.SetField(t, "y", lua.LNumber(in.Axis.Y))
	L.SetField(t, "action", lua.LBool(in.Action))
	L.SetField(t, "actionPressed", lua.LBool(in.ActionPressed))
	L.SetField(t, "pointerX", lua.LNumber(in.Pointer.X))
	L.SetField(t, "pointerY", lua.LNumber(in.Pointer.Y))
	L.SetField(t, "down", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(in.Down(L.CheckString(1))))
		return 1
	}))
	L.SetField(t, "pressed", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(in.Pressed(L.CheckString(1))))
		return 1
	}))
	return t
}

func (h *ScriptHost) bridgeTable() *lua.LTable {
	L := h.L
	t := L.NewTable()
	L.SetField(t, "haptic", L.NewFunction(func(L *lua.LState) int {
		ms := L.OptInt(1, 50)
		if h.bridge.Haptic != nil {
			h.bridge.Haptic(time.Duration(ms) * time.Millisecond)
		}
		return 0
	}))
	return t
}

func (h *ScriptHost) audioTable() *lua.LTable {
	L := h.L
	t := L.NewTable()
	L.SetField(t, "play", L.NewFunction(func(L *lua.LState) int {
		if h.audio != nil {
			h.audio.Play(L.CheckString(1))
		}
		return 0
	}))
	return t
}

// poolTable exposes prefab instantiation: pool.spawn(id) deep-copies the
// entity with that id into the scene and returns the copy's view, and
// pool.count() reports the live entity count.
func (h *ScriptHost) poolTable() *lua.LTable {
	L := h.L
	t := L.NewTable()
	L.SetField(t, "spawn", L.NewFunction(func(L *lua.LState) int {
		if h.scene == nil {
			L.Push(lua.LNil)
			return 1
		}
		template := h.scene.Find(L.CheckString(1))
		if template == nil {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(h.entityTable(h.scene.Instantiate(template)))
		return 1
	}))
	L.SetField(t, "count", L.NewFunction(func(L *lua.LState) int {
		n := 0
		if h.scene != nil {
			n = len(h.scene.Entities)
		}
		L.Push(lua.LNumber(n))
		return 1
	}))
	return t
}

// gameTable is the ambient global available only in the player context.
func (h *ScriptHost) gameTable(s *Scene) *lua.LTable {
	L := h.L
	t := L.NewTable()
	L.SetField(t, "find", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		for _, e := range s.Entities {
			if e.Name == name {
				L.Push(h.entityTable(e))
				return 1
			}
		}
		L.Push(lua.LNil)
		return 1
	}))
	L.SetField(t, "time", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(float64(time.Now().UnixMilli()) / 1000.0))
		return 1
	}))
	return t
}
